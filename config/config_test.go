package config

import (
	"os"
	"testing"
	"time"
)

func TestLoadConfig_Defaults(t *testing.T) {
	os.Clearenv()
	cfg := LoadConfig()
	if cfg.Port != 8080 {
		t.Errorf("expected default port 8080, got %d", cfg.Port)
	}
	if cfg.CodeLength != 6 {
		t.Errorf("expected default code length 6, got %d", cfg.CodeLength)
	}
	if cfg.RoomTTL != 10*time.Minute {
		t.Errorf("expected default room TTL 10m, got %v", cfg.RoomTTL)
	}
	if cfg.RetentionWindow != time.Hour {
		t.Errorf("expected default retention 1h, got %v", cfg.RetentionWindow)
	}
	if cfg.MaxContentChars != 10000 {
		t.Errorf("expected default content limit 10000, got %d", cfg.MaxContentChars)
	}
	if cfg.StorageBackend != "memory" {
		t.Errorf("expected default storage memory, got %s", cfg.StorageBackend)
	}
	if cfg.LogFormat != "text" {
		t.Errorf("expected default log format text, got %s", cfg.LogFormat)
	}
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	os.Clearenv()
	t.Setenv("BEAMCLIP_PORT", "9090")
	t.Setenv("BEAMCLIP_URL", "https://clip.example.com")
	t.Setenv("BEAMCLIP_ROOM_TTL", "5m")
	t.Setenv("BEAMCLIP_RETENTION", "30m")
	t.Setenv("BEAMCLIP_STORAGE", "mongodb")
	t.Setenv("BEAMCLIP_MONGO_URL", "mongodb://localhost:27017")
	t.Setenv("BEAMCLIP_LOG_FORMAT", "json")

	cfg := LoadConfig()
	if cfg.Port != 9090 {
		t.Errorf("expected port 9090, got %d", cfg.Port)
	}
	if cfg.URL != "https://clip.example.com" {
		t.Errorf("expected URL override, got %s", cfg.URL)
	}
	if cfg.RoomTTL != 5*time.Minute {
		t.Errorf("expected TTL 5m, got %v", cfg.RoomTTL)
	}
	if cfg.RetentionWindow != 30*time.Minute {
		t.Errorf("expected retention 30m, got %v", cfg.RetentionWindow)
	}
	if cfg.StorageBackend != "mongodb" {
		t.Errorf("expected storage mongodb, got %s", cfg.StorageBackend)
	}
	if cfg.MongoURL != "mongodb://localhost:27017" {
		t.Errorf("expected mongo URL override, got %s", cfg.MongoURL)
	}
	if cfg.LogFormat != "json" {
		t.Errorf("expected log format json, got %s", cfg.LogFormat)
	}
}

func TestLoadConfig_IgnoresMalformedEnv(t *testing.T) {
	os.Clearenv()
	t.Setenv("BEAMCLIP_PORT", "not-a-port")
	t.Setenv("BEAMCLIP_ROOM_TTL", "eleven minutes")

	cfg := LoadConfig()
	if cfg.Port != 8080 {
		t.Errorf("malformed port should keep default, got %d", cfg.Port)
	}
	if cfg.RoomTTL != 10*time.Minute {
		t.Errorf("malformed TTL should keep default, got %v", cfg.RoomTTL)
	}
}
