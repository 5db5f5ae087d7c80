package storage

import (
	"fmt"
	"log/slog"

	"beamclip/config"
)

// NewStore creates a storage backend based on the configuration.
func NewStore(cfg *config.Config, logger *slog.Logger) (Store, error) {
	switch cfg.StorageBackend {
	case "memory":
		logger.Warn("Using in-memory storage; rooms will not survive a restart")
		return NewMemoryStore(), nil

	case "mongodb":
		logger.Info("Using MongoDB storage",
			"url", cfg.MongoURL,
			"database", cfg.MongoDatabase)
		return NewMongoStore(cfg.MongoURL, cfg.MongoDatabase)

	case "dynamodb":
		logger.Info("Using DynamoDB storage",
			"rooms_table", cfg.DynamoRoomsTable,
			"items_table", cfg.DynamoItemsTable,
			"region", cfg.AWSRegion)
		return NewDynamoStore(cfg.DynamoRoomsTable, cfg.DynamoItemsTable, cfg.AWSRegion)

	default:
		return nil, fmt.Errorf("unsupported storage backend: %s (supported: memory, mongodb, dynamodb)", cfg.StorageBackend)
	}
}
