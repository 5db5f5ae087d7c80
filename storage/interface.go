package storage

import (
	"context"
	"errors"
	"time"

	"beamclip/models"
)

// ErrCodeTaken is returned by CreateRoom when the code collides with a live room.
var ErrCodeTaken = errors.New("room code already taken")

// ErrNotFound is returned by MarkConsumed when no item has the given id.
var ErrNotFound = errors.New("not found")

// RoomStore defines room persistence.
//
// Lookup methods return (nil, nil) when no row exists; a deleted room is
// indistinguishable from one that never existed.
type RoomStore interface {
	// CreateRoom inserts a new room. Returns ErrCodeTaken on code collision.
	CreateRoom(ctx context.Context, room *models.Room) error

	// GetRoomByCode looks up a room by its code. Codes are matched
	// case-insensitively (normalized to uppercase).
	GetRoomByCode(ctx context.Context, code string) (*models.Room, error)

	// GetRoomByID looks up a room by its opaque id.
	GetRoomByID(ctx context.Context, id string) (*models.Room, error)

	// DeleteExpiredRooms removes all rooms with expires_at before now and
	// returns the number deleted. Safe to call concurrently and repeatedly;
	// deleting zero rows is a normal outcome.
	DeleteExpiredRooms(ctx context.Context, now time.Time) (int64, error)
}

// ItemStore defines clipboard item persistence.
type ItemStore interface {
	// CreateItem inserts a new item. The caller is responsible for having
	// validated room liveness.
	CreateItem(ctx context.Context, item *models.ClipboardItem) error

	// LatestUnconsumed returns the unconsumed item with the greatest
	// created_at for the room, or (nil, nil) if none exists. Ties on
	// created_at resolve to the most recently inserted item.
	LatestUnconsumed(ctx context.Context, roomID string) (*models.ClipboardItem, error)

	// MarkConsumed flips consumed to true. The update only transitions rows
	// where consumed is still false, so concurrent calls produce exactly one
	// state change; re-marking an already-consumed item succeeds as a no-op.
	// Returns ErrNotFound if the id does not exist.
	MarkConsumed(ctx context.Context, id string) error

	// DeleteConsumedBefore removes consumed items created before cutoff and
	// returns the number deleted.
	DeleteConsumedBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// Store is the full persistence contract for the relay.
type Store interface {
	RoomStore
	ItemStore

	// Close releases the backing connection.
	Close() error
}
