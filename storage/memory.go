package storage

import (
	"context"
	"strings"
	"sync"
	"time"

	"beamclip/models"
)

// MemoryStore implements Store with in-process maps. It is the default
// backend for local runs and the test double for the service layer. Items are
// kept in insertion order so created_at ties resolve to the newest insert.
type MemoryStore struct {
	mu    sync.RWMutex
	rooms map[string]*models.Room // keyed by id
	codes map[string]string       // uppercase code -> room id
	items []*models.ClipboardItem
}

// NewMemoryStore creates an empty in-memory storage backend.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		rooms: make(map[string]*models.Room),
		codes: make(map[string]string),
	}
}

// CreateRoom inserts a new room, enforcing code uniqueness among live rows.
func (m *MemoryStore) CreateRoom(_ context.Context, room *models.Room) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	code := strings.ToUpper(room.Code)
	if _, taken := m.codes[code]; taken {
		return ErrCodeTaken
	}

	stored := *room
	m.rooms[stored.ID] = &stored
	m.codes[code] = stored.ID
	return nil
}

// GetRoomByCode looks up a room by its (case-insensitive) code.
func (m *MemoryStore) GetRoomByCode(_ context.Context, code string) (*models.Room, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	id, ok := m.codes[strings.ToUpper(code)]
	if !ok {
		return nil, nil
	}
	return m.copyRoom(m.rooms[id]), nil
}

// GetRoomByID looks up a room by id.
func (m *MemoryStore) GetRoomByID(_ context.Context, id string) (*models.Room, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.copyRoom(m.rooms[id]), nil
}

// DeleteExpiredRooms removes rooms whose expires_at has passed.
func (m *MemoryStore) DeleteExpiredRooms(_ context.Context, now time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var count int64
	for id, room := range m.rooms {
		if room.ExpiresAt.Before(now) {
			delete(m.rooms, id)
			delete(m.codes, strings.ToUpper(room.Code))
			count++
		}
	}
	return count, nil
}

// CreateItem appends a new clipboard item.
func (m *MemoryStore) CreateItem(_ context.Context, item *models.ClipboardItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored := *item
	m.items = append(m.items, &stored)
	return nil
}

// LatestUnconsumed scans from the newest insert backwards.
func (m *MemoryStore) LatestUnconsumed(_ context.Context, roomID string) (*models.ClipboardItem, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var latest *models.ClipboardItem
	for i := len(m.items) - 1; i >= 0; i-- {
		it := m.items[i]
		if it.RoomID != roomID || it.Consumed {
			continue
		}
		if latest == nil || it.CreatedAt.After(latest.CreatedAt) {
			latest = it
		}
	}
	if latest == nil {
		return nil, nil
	}
	out := *latest
	return &out, nil
}

// MarkConsumed flips the consumed flag. Already-consumed items are a no-op.
func (m *MemoryStore) MarkConsumed(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, it := range m.items {
		if it.ID == id {
			it.Consumed = true
			return nil
		}
	}
	return ErrNotFound
}

// DeleteConsumedBefore removes consumed items created before cutoff.
func (m *MemoryStore) DeleteConsumedBefore(_ context.Context, cutoff time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var count int64
	kept := m.items[:0]
	for _, it := range m.items {
		if it.Consumed && it.CreatedAt.Before(cutoff) {
			count++
			continue
		}
		kept = append(kept, it)
	}
	// Clear the tail of the shared backing array so deleted items are collectible
	for i := len(kept); i < len(m.items); i++ {
		m.items[i] = nil
	}
	m.items = kept
	return count, nil
}

// Close is a no-op for the in-memory backend.
func (m *MemoryStore) Close() error {
	return nil
}

func (m *MemoryStore) copyRoom(room *models.Room) *models.Room {
	if room == nil {
		return nil
	}
	out := *room
	return &out
}
