package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"beamclip/config"
	"beamclip/internal/code"
	"beamclip/internal/expiry"
	"beamclip/internal/metrics"
	"beamclip/models"
	"beamclip/storage"

	"github.com/google/uuid"
)

// createAttempts bounds code regeneration when CreateRoom hits a collision.
const createAttempts = 3

// Lifecycle implements the four room/item operations. Every operation first
// gives the reaper a chance to run, so storage hygiene needs no scheduler.
type Lifecycle struct {
	store  storage.Store
	config *config.Config
	codes  *code.Generator
	reaper *Reaper
	logger *slog.Logger
}

// NewLifecycle creates the lifecycle service over an injected store.
func NewLifecycle(store storage.Store, cfg *config.Config, logger *slog.Logger) *Lifecycle {
	return &Lifecycle{
		store:  store,
		config: cfg,
		codes:  code.New(cfg.CodeLength),
		reaper: NewReaper(store, cfg.RetentionWindow, cfg.MinSweepInterval, logger),
		logger: logger,
	}
}

// Reaper exposes the cleanup capability so the server can schedule it.
func (s *Lifecycle) Reaper() *Reaper {
	return s.reaper
}

// RoomView is a room plus its derived expiry state, evaluated at read time.
type RoomView struct {
	Room    *models.Room
	Expired bool
}

// NormalizeCode uppercases a user-entered room code.
func NormalizeCode(roomCode string) string {
	return strings.ToUpper(strings.TrimSpace(roomCode))
}

// CreateRoom allocates a code and inserts a room with a fixed TTL. A code
// collision triggers regeneration, bounded by createAttempts.
func (s *Lifecycle) CreateRoom(ctx context.Context) (*models.Room, error) {
	s.reaper.MaybeSweep(ctx)

	now := time.Now()
	for attempt := 0; attempt < createAttempts; attempt++ {
		roomCode, err := s.codes.Generate()
		if err != nil {
			return nil, fmt.Errorf("failed to generate room code: %w", err)
		}

		room := &models.Room{
			ID:        uuid.NewString(),
			Code:      roomCode,
			CreatedAt: now,
			ExpiresAt: expiry.Timestamp(now, s.config.RoomTTL),
		}

		err = s.store.CreateRoom(ctx, room)
		if err == storage.ErrCodeTaken {
			s.logger.Warn("Room code collision, regenerating", "code", roomCode)
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to create room: %w", err)
		}

		metrics.RoomsCreated.Inc()
		return room, nil
	}

	return nil, ErrCodeExhausted
}

// GetRoom looks up a room by code. A missing row is ErrRoomNotFound; a
// present-but-expired row comes back as a view with Expired set, and its
// deletion is left to the cleanup pass.
func (s *Lifecycle) GetRoom(ctx context.Context, roomCode string) (*RoomView, error) {
	s.reaper.MaybeSweep(ctx)

	room, err := s.store.GetRoomByCode(ctx, NormalizeCode(roomCode))
	if err != nil {
		return nil, fmt.Errorf("failed to look up room: %w", err)
	}
	if room == nil {
		return nil, ErrRoomNotFound
	}

	return &RoomView{
		Room:    room,
		Expired: room.IsExpiredAt(time.Now()),
	}, nil
}

// SendText validates and stores a new clipboard item. The room is re-fetched
// here regardless of what the caller already checked: the lookup and the send
// are separate requests, so liveness must be re-established.
func (s *Lifecycle) SendText(ctx context.Context, roomID, content string) (*models.ClipboardItem, error) {
	s.reaper.MaybeSweep(ctx)

	content = strings.TrimSpace(content)
	if content == "" {
		return nil, ErrEmptyContent
	}
	if utf8.RuneCountInString(content) > s.config.MaxContentChars {
		return nil, ErrContentTooLarge
	}

	room, err := s.store.GetRoomByID(ctx, roomID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up room: %w", err)
	}
	if room == nil || room.IsExpired() {
		return nil, ErrRoomGone
	}

	item := &models.ClipboardItem{
		ID:        models.NewItemID(),
		RoomID:    roomID,
		Content:   content,
		CreatedAt: time.Now(),
		Consumed:  false,
	}
	if err := s.store.CreateItem(ctx, item); err != nil {
		return nil, fmt.Errorf("failed to store item: %w", err)
	}

	metrics.ItemsSent.Inc()
	return item, nil
}

// ReceiveLatest returns the newest unconsumed item for the room, or nil if
// the mailbox is empty. With consume set, the item is marked consumed before
// it is returned, so a later receive never surfaces it again. Room liveness
// is the caller's concern on this path; the room lookup is a separate call.
func (s *Lifecycle) ReceiveLatest(ctx context.Context, roomID string, consume bool) (*models.ClipboardItem, error) {
	s.reaper.MaybeSweep(ctx)

	item, err := s.store.LatestUnconsumed(ctx, roomID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up item: %w", err)
	}
	if item == nil {
		return nil, nil
	}

	if consume {
		if err := s.store.MarkConsumed(ctx, item.ID); err != nil {
			return nil, fmt.Errorf("failed to mark item consumed: %w", err)
		}
		item.Consumed = true
		metrics.ItemsConsumed.Inc()
	}

	return item, nil
}
