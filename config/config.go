package config

import (
	"flag"
	"os"
	"strconv"
	"time"
)

// Config holds all configuration for the beamclip service
type Config struct {
	Port             int           `json:"port"`
	URL              string        `json:"url"`
	CodeLength       int           `json:"code_length"`
	RoomTTL          time.Duration `json:"room_ttl"`
	RetentionWindow  time.Duration `json:"retention_window"`
	MaxContentChars  int           `json:"max_content_chars"`
	CleanupInterval  time.Duration `json:"cleanup_interval"`
	MinSweepInterval time.Duration `json:"min_sweep_interval"`
	StorageBackend   string        `json:"storage_backend"`
	MongoURL         string        `json:"mongo_url"`
	MongoDatabase    string        `json:"mongo_database"`
	DynamoRoomsTable string        `json:"dynamo_rooms_table"`
	DynamoItemsTable string        `json:"dynamo_items_table"`
	AWSRegion        string        `json:"aws_region"`
	LogLevel         string        `json:"log_level"`
	LogFormat        string        `json:"log_format"`
	Version          string        `json:"version"`
	BuildTime        string        `json:"build_time"`
	CommitHash       string        `json:"commit_hash"`
}

// LoadConfig loads configuration from CLI flags and environment variables.
// Environment variables win over flags.
func LoadConfig() *Config {
	config := &Config{
		Port:             8080,
		URL:              "",
		CodeLength:       6,
		RoomTTL:          10 * time.Minute,
		RetentionWindow:  time.Hour,
		MaxContentChars:  10000,
		CleanupInterval:  time.Minute,
		MinSweepInterval: 10 * time.Second,
		StorageBackend:   "memory",
		MongoURL:         "",
		MongoDatabase:    "beamclip",
		DynamoRoomsTable: "beamclip-rooms",
		DynamoItemsTable: "beamclip-items",
		AWSRegion:        "us-east-1",
		LogLevel:         "info",
		LogFormat:        "text",
	}

	// Parse CLI flags on a dedicated FlagSet so repeated loads (tests) do not
	// redefine flags on the global set.
	fs := flag.NewFlagSet("beamclip", flag.ContinueOnError)
	fs.IntVar(&config.Port, "port", config.Port, "Port to listen on")
	fs.StringVar(&config.URL, "url", config.URL, "Base URL for room links and QR codes")
	fs.DurationVar(&config.RoomTTL, "room-ttl", config.RoomTTL, "Room time-to-live")
	fs.DurationVar(&config.RetentionWindow, "retention", config.RetentionWindow, "How long consumed items are retained")
	fs.DurationVar(&config.CleanupInterval, "cleanup-interval", config.CleanupInterval, "Background cleanup interval (0 disables)")
	fs.StringVar(&config.StorageBackend, "storage", config.StorageBackend, "Storage backend: memory, mongodb, dynamodb")
	fs.StringVar(&config.MongoURL, "mongo-url", config.MongoURL, "MongoDB connection URL")
	fs.StringVar(&config.LogLevel, "log-level", config.LogLevel, "Log level: debug, info, warn, error")
	fs.StringVar(&config.LogFormat, "log-format", config.LogFormat, "Log format: text, json")
	_ = fs.Parse(os.Args[1:])

	// Override with environment variables if present
	if val := os.Getenv("BEAMCLIP_PORT"); val != "" {
		if port, err := strconv.Atoi(val); err == nil {
			config.Port = port
		}
	}
	if val := os.Getenv("BEAMCLIP_URL"); val != "" {
		config.URL = val
	}
	if val := os.Getenv("BEAMCLIP_ROOM_TTL"); val != "" {
		if ttl, err := time.ParseDuration(val); err == nil {
			config.RoomTTL = ttl
		}
	}
	if val := os.Getenv("BEAMCLIP_RETENTION"); val != "" {
		if window, err := time.ParseDuration(val); err == nil {
			config.RetentionWindow = window
		}
	}
	if val := os.Getenv("BEAMCLIP_MAX_CONTENT_CHARS"); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			config.MaxContentChars = n
		}
	}
	if val := os.Getenv("BEAMCLIP_CLEANUP_INTERVAL"); val != "" {
		if interval, err := time.ParseDuration(val); err == nil {
			config.CleanupInterval = interval
		}
	}
	if val := os.Getenv("BEAMCLIP_STORAGE"); val != "" {
		config.StorageBackend = val
	}
	if val := os.Getenv("BEAMCLIP_MONGO_URL"); val != "" {
		config.MongoURL = val
	}
	if val := os.Getenv("BEAMCLIP_MONGO_DATABASE"); val != "" {
		config.MongoDatabase = val
	}
	if val := os.Getenv("BEAMCLIP_DYNAMO_ROOMS_TABLE"); val != "" {
		config.DynamoRoomsTable = val
	}
	if val := os.Getenv("BEAMCLIP_DYNAMO_ITEMS_TABLE"); val != "" {
		config.DynamoItemsTable = val
	}
	if val := os.Getenv("AWS_REGION"); val != "" {
		config.AWSRegion = val
	}
	if val := os.Getenv("BEAMCLIP_LOG_LEVEL"); val != "" {
		config.LogLevel = val
	}
	if val := os.Getenv("BEAMCLIP_LOG_FORMAT"); val != "" {
		config.LogFormat = val
	}

	return config
}
