package services

import "errors"

// Typed errors returned by the lifecycle service. Handlers map these to HTTP
// statuses; anything else is a backing-store failure and maps to 500.
var (
	// ErrRoomNotFound means no room row exists for the code.
	ErrRoomNotFound = errors.New("room not found")

	// ErrRoomGone means the room re-check on the send path found the room
	// missing or expired. The two lookups are not atomic, so this can fire
	// even after a caller just saw the room live.
	ErrRoomGone = errors.New("room expired or not found")

	// ErrEmptyContent means the content was empty or whitespace-only after trimming.
	ErrEmptyContent = errors.New("content is empty")

	// ErrContentTooLarge means the content exceeds the configured character limit.
	ErrContentTooLarge = errors.New("content too large")

	// ErrCodeExhausted means code generation kept colliding with live rooms.
	ErrCodeExhausted = errors.New("could not allocate a unique room code")
)
