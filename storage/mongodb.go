package storage

import (
	"context"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"beamclip/models"
)

// MongoStore implements Store using MongoDB.
type MongoStore struct {
	client *mongo.Client
	rooms  *mongo.Collection
	items  *mongo.Collection
}

// NewMongoStore creates a new MongoDB storage backend.
func NewMongoStore(url, dbName string) (*MongoStore, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(url))
	if err != nil {
		return nil, err
	}

	// Test the connection
	if err := client.Ping(ctx, nil); err != nil {
		return nil, err
	}

	database := client.Database(dbName)
	store := &MongoStore{
		client: client,
		rooms:  database.Collection("rooms"),
		items:  database.Collection("items"),
	}

	if err := store.createIndexes(); err != nil {
		return nil, err
	}

	return store, nil
}

// createIndexes creates the indexes backing code uniqueness and the
// latest-unconsumed and cleanup queries. No TTL index on rooms: reaping is an
// explicit, countable delete so an expired-but-present room stays observable.
func (m *MongoStore) createIndexes() error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	_, err := m.rooms.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "code", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "expires_at", Value: 1}},
		},
	})
	if err != nil {
		return err
	}

	_, err = m.items.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "room_id", Value: 1}, {Key: "created_at", Value: -1}},
		},
		{
			Keys: bson.D{{Key: "consumed", Value: 1}, {Key: "created_at", Value: 1}},
		},
	})
	return err
}

// CreateRoom inserts a new room. The unique code index turns a collision into
// ErrCodeTaken for the caller to handle.
func (m *MongoStore) CreateRoom(ctx context.Context, room *models.Room) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	_, err := m.rooms.InsertOne(ctx, room)
	if mongo.IsDuplicateKeyError(err) {
		return ErrCodeTaken
	}
	return err
}

// GetRoomByCode retrieves a room by its uppercase-normalized code.
func (m *MongoStore) GetRoomByCode(ctx context.Context, code string) (*models.Room, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	var room models.Room
	err := m.rooms.FindOne(ctx, bson.M{"code": strings.ToUpper(code)}).Decode(&room)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &room, nil
}

// GetRoomByID retrieves a room by its id.
func (m *MongoStore) GetRoomByID(ctx context.Context, id string) (*models.Room, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	var room models.Room
	err := m.rooms.FindOne(ctx, bson.M{"_id": id}).Decode(&room)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &room, nil
}

// DeleteExpiredRooms removes all rooms past their expiry.
func (m *MongoStore) DeleteExpiredRooms(ctx context.Context, now time.Time) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	result, err := m.rooms.DeleteMany(ctx, bson.M{"expires_at": bson.M{"$lt": now}})
	if err != nil {
		return 0, err
	}
	return result.DeletedCount, nil
}

// CreateItem inserts a new clipboard item.
func (m *MongoStore) CreateItem(ctx context.Context, item *models.ClipboardItem) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	_, err := m.items.InsertOne(ctx, item)
	return err
}

// LatestUnconsumed returns the newest unconsumed item for the room. The _id
// sort key breaks created_at ties in id generation order.
func (m *MongoStore) LatestUnconsumed(ctx context.Context, roomID string) (*models.ClipboardItem, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	opts := options.FindOne().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}})
	var item models.ClipboardItem
	err := m.items.FindOne(ctx, bson.M{"room_id": roomID, "consumed": false}, opts).Decode(&item)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &item, nil
}

// MarkConsumed transitions an item to consumed. The filter only matches
// unconsumed rows, so two racing consumers commit exactly one update.
func (m *MongoStore) MarkConsumed(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	result, err := m.items.UpdateOne(
		ctx,
		bson.M{"_id": id, "consumed": false},
		bson.M{"$set": bson.M{"consumed": true}},
	)
	if err != nil {
		return err
	}
	if result.MatchedCount > 0 {
		return nil
	}

	// Nothing matched: either the item is already consumed (a no-op) or it
	// does not exist at all.
	count, err := m.items.CountDocuments(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if count == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteConsumedBefore removes consumed items created before cutoff.
func (m *MongoStore) DeleteConsumedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	result, err := m.items.DeleteMany(ctx, bson.M{"consumed": true, "created_at": bson.M{"$lt": cutoff}})
	if err != nil {
		return 0, err
	}
	return result.DeletedCount, nil
}

// Close closes the MongoDB connection.
func (m *MongoStore) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return m.client.Disconnect(ctx)
}
