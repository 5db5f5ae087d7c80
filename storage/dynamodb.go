package storage

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"beamclip/models"
)

// DynamoStore implements Store using DynamoDB. It backs Lambda deployments.
//
// Expected schema:
//   - rooms table: partition key "code"; GSI "id-index" on "id".
//   - items table: partition key "id"; GSI "room_id-created_at-index" with
//     partition key "room_id" and numeric sort key "created_at".
//
// Timestamps are stored as Unix nanoseconds so item ordering keeps sub-second
// resolution.
type DynamoStore struct {
	client     *dynamodb.Client
	roomsTable string
	itemsTable string
}

// NewDynamoStore creates a new DynamoDB storage backend.
func NewDynamoStore(roomsTable, itemsTable, region string) (*DynamoStore, error) {
	cfg, err := config.LoadDefaultConfig(context.TODO(),
		config.WithRegion(region),
	)
	if err != nil {
		return nil, err
	}

	return &DynamoStore{
		client:     dynamodb.NewFromConfig(cfg),
		roomsTable: roomsTable,
		itemsTable: itemsTable,
	}, nil
}

// CreateRoom inserts a new room. A conditional put on the code key turns a
// collision with a live room into ErrCodeTaken.
func (d *DynamoStore) CreateRoom(ctx context.Context, room *models.Room) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	_, err := d.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(d.roomsTable),
		Item: map[string]types.AttributeValue{
			"code":       &types.AttributeValueMemberS{Value: strings.ToUpper(room.Code)},
			"id":         &types.AttributeValueMemberS{Value: room.ID},
			"created_at": &types.AttributeValueMemberN{Value: strconv.FormatInt(room.CreatedAt.UnixNano(), 10)},
			"expires_at": &types.AttributeValueMemberN{Value: strconv.FormatInt(room.ExpiresAt.UnixNano(), 10)},
		},
		ConditionExpression: aws.String("attribute_not_exists(code)"),
	})
	var condFailed *types.ConditionalCheckFailedException
	if errors.As(err, &condFailed) {
		return ErrCodeTaken
	}
	return err
}

// GetRoomByCode retrieves a room by its uppercase-normalized code.
func (d *DynamoStore) GetRoomByCode(ctx context.Context, code string) (*models.Room, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	result, err := d.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(d.roomsTable),
		Key: map[string]types.AttributeValue{
			"code": &types.AttributeValueMemberS{Value: strings.ToUpper(code)},
		},
	})
	if err != nil {
		return nil, err
	}
	if result.Item == nil {
		return nil, nil
	}
	return roomFromAttributes(result.Item), nil
}

// GetRoomByID retrieves a room via the id GSI.
func (d *DynamoStore) GetRoomByID(ctx context.Context, id string) (*models.Room, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	result, err := d.client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(d.roomsTable),
		IndexName:              aws.String("id-index"),
		KeyConditionExpression: aws.String("id = :id"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":id": &types.AttributeValueMemberS{Value: id},
		},
		Limit: aws.Int32(1),
	})
	if err != nil {
		return nil, err
	}
	if len(result.Items) == 0 {
		return nil, nil
	}
	return roomFromAttributes(result.Items[0]), nil
}

// DeleteExpiredRooms scans for rooms past expiry and deletes them.
func (d *DynamoStore) DeleteExpiredRooms(ctx context.Context, now time.Time) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	var count int64
	var startKey map[string]types.AttributeValue
	for {
		result, err := d.client.Scan(ctx, &dynamodb.ScanInput{
			TableName:        aws.String(d.roomsTable),
			FilterExpression: aws.String("expires_at < :now"),
			ExpressionAttributeValues: map[string]types.AttributeValue{
				":now": &types.AttributeValueMemberN{Value: strconv.FormatInt(now.UnixNano(), 10)},
			},
			ProjectionExpression: aws.String("code"),
			ExclusiveStartKey:    startKey,
		})
		if err != nil {
			return count, err
		}
		for _, item := range result.Items {
			_, err := d.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
				TableName: aws.String(d.roomsTable),
				Key:       map[string]types.AttributeValue{"code": item["code"]},
			})
			if err != nil {
				return count, err
			}
			count++
		}
		if result.LastEvaluatedKey == nil {
			break
		}
		startKey = result.LastEvaluatedKey
	}
	return count, nil
}

// CreateItem inserts a new clipboard item.
func (d *DynamoStore) CreateItem(ctx context.Context, item *models.ClipboardItem) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	_, err := d.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(d.itemsTable),
		Item: map[string]types.AttributeValue{
			"id":         &types.AttributeValueMemberS{Value: item.ID},
			"room_id":    &types.AttributeValueMemberS{Value: item.RoomID},
			"content":    &types.AttributeValueMemberS{Value: item.Content},
			"created_at": &types.AttributeValueMemberN{Value: strconv.FormatInt(item.CreatedAt.UnixNano(), 10)},
			"consumed":   &types.AttributeValueMemberBOOL{Value: item.Consumed},
		},
	})
	return err
}

// LatestUnconsumed queries the room GSI newest-first and returns the first
// unconsumed item.
func (d *DynamoStore) LatestUnconsumed(ctx context.Context, roomID string) (*models.ClipboardItem, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	var startKey map[string]types.AttributeValue
	for {
		result, err := d.client.Query(ctx, &dynamodb.QueryInput{
			TableName:              aws.String(d.itemsTable),
			IndexName:              aws.String("room_id-created_at-index"),
			KeyConditionExpression: aws.String("room_id = :room"),
			FilterExpression:       aws.String("consumed = :false"),
			ExpressionAttributeValues: map[string]types.AttributeValue{
				":room":  &types.AttributeValueMemberS{Value: roomID},
				":false": &types.AttributeValueMemberBOOL{Value: false},
			},
			ScanIndexForward:  aws.Bool(false),
			ExclusiveStartKey: startKey,
		})
		if err != nil {
			return nil, err
		}
		if len(result.Items) > 0 {
			return itemFromAttributes(result.Items[0]), nil
		}
		if result.LastEvaluatedKey == nil {
			return nil, nil
		}
		startKey = result.LastEvaluatedKey
	}
}

// MarkConsumed transitions an item to consumed with a conditional update, so
// two racing consumers commit exactly one state change.
func (d *DynamoStore) MarkConsumed(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	_, err := d.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName: aws.String(d.itemsTable),
		Key: map[string]types.AttributeValue{
			"id": &types.AttributeValueMemberS{Value: id},
		},
		UpdateExpression:    aws.String("SET consumed = :true"),
		ConditionExpression: aws.String("attribute_exists(id) AND consumed = :false"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":true":  &types.AttributeValueMemberBOOL{Value: true},
			":false": &types.AttributeValueMemberBOOL{Value: false},
		},
	})
	var condFailed *types.ConditionalCheckFailedException
	if errors.As(err, &condFailed) {
		// Either the item is already consumed (a no-op) or it is gone.
		result, err := d.client.GetItem(ctx, &dynamodb.GetItemInput{
			TableName: aws.String(d.itemsTable),
			Key: map[string]types.AttributeValue{
				"id": &types.AttributeValueMemberS{Value: id},
			},
		})
		if err != nil {
			return err
		}
		if result.Item == nil {
			return ErrNotFound
		}
		return nil
	}
	return err
}

// DeleteConsumedBefore scans for consumed items older than cutoff and deletes them.
func (d *DynamoStore) DeleteConsumedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	var count int64
	var startKey map[string]types.AttributeValue
	for {
		result, err := d.client.Scan(ctx, &dynamodb.ScanInput{
			TableName:        aws.String(d.itemsTable),
			FilterExpression: aws.String("consumed = :true AND created_at < :cutoff"),
			ExpressionAttributeValues: map[string]types.AttributeValue{
				":true":   &types.AttributeValueMemberBOOL{Value: true},
				":cutoff": &types.AttributeValueMemberN{Value: strconv.FormatInt(cutoff.UnixNano(), 10)},
			},
			ProjectionExpression: aws.String("id"),
			ExclusiveStartKey:    startKey,
		})
		if err != nil {
			return count, err
		}
		for _, item := range result.Items {
			_, err := d.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
				TableName: aws.String(d.itemsTable),
				Key:       map[string]types.AttributeValue{"id": item["id"]},
			})
			if err != nil {
				return count, err
			}
			count++
		}
		if result.LastEvaluatedKey == nil {
			break
		}
		startKey = result.LastEvaluatedKey
	}
	return count, nil
}

// Close is a no-op; the DynamoDB client is stateless.
func (d *DynamoStore) Close() error {
	return nil
}

func roomFromAttributes(attrs map[string]types.AttributeValue) *models.Room {
	room := &models.Room{}
	if v, ok := attrs["id"].(*types.AttributeValueMemberS); ok {
		room.ID = v.Value
	}
	if v, ok := attrs["code"].(*types.AttributeValueMemberS); ok {
		room.Code = v.Value
	}
	if v, ok := attrs["created_at"].(*types.AttributeValueMemberN); ok {
		room.CreatedAt = timeFromNanos(v.Value)
	}
	if v, ok := attrs["expires_at"].(*types.AttributeValueMemberN); ok {
		room.ExpiresAt = timeFromNanos(v.Value)
	}
	return room
}

func itemFromAttributes(attrs map[string]types.AttributeValue) *models.ClipboardItem {
	item := &models.ClipboardItem{}
	if v, ok := attrs["id"].(*types.AttributeValueMemberS); ok {
		item.ID = v.Value
	}
	if v, ok := attrs["room_id"].(*types.AttributeValueMemberS); ok {
		item.RoomID = v.Value
	}
	if v, ok := attrs["content"].(*types.AttributeValueMemberS); ok {
		item.Content = v.Value
	}
	if v, ok := attrs["created_at"].(*types.AttributeValueMemberN); ok {
		item.CreatedAt = timeFromNanos(v.Value)
	}
	if v, ok := attrs["consumed"].(*types.AttributeValueMemberBOOL); ok {
		item.Consumed = v.Value
	}
	return item
}

func timeFromNanos(s string) time.Time {
	nanos, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return time.Time{}
	}
	return time.Unix(0, nanos).UTC()
}
