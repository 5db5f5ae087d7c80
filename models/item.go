package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ClipboardItem is a single text payload submitted to a room. Many items may
// exist per room over time, but readers only ever see the most recently
// created unconsumed one.
type ClipboardItem struct {
	ID        string    `json:"id" bson:"_id"`
	RoomID    string    `json:"room_id" bson:"room_id"`
	Content   string    `json:"content" bson:"content"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
	Consumed  bool      `json:"consumed" bson:"consumed"`
}

// NewItemID returns a new item identifier. ObjectIDs are generation-ordered,
// so identical created_at timestamps still resolve to a stable "latest".
func NewItemID() string {
	return primitive.NewObjectID().Hex()
}
