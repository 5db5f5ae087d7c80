package services

import (
	"context"
	"testing"
	"time"

	"beamclip/models"
	"beamclip/storage"
)

func TestSweepDeletesExpiredRoomsAndAgedItems(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	reaper := NewReaper(store, time.Hour, time.Hour, testLogger())

	seedExpiredRoom(t, store, "dead", "DEADRM")
	now := time.Now()
	live := &models.Room{ID: "live", Code: "LIVERM", CreatedAt: now, ExpiresAt: now.Add(10 * time.Minute)}
	if err := store.CreateRoom(ctx, live); err != nil {
		t.Fatalf("seed live room failed: %v", err)
	}

	aged := &models.ClipboardItem{ID: "aged", RoomID: "dead", Content: "x", CreatedAt: now.Add(-2 * time.Hour), Consumed: true}
	fresh := &models.ClipboardItem{ID: "fresh", RoomID: "live", Content: "y", CreatedAt: now}
	for _, it := range []*models.ClipboardItem{aged, fresh} {
		if err := store.CreateItem(ctx, it); err != nil {
			t.Fatalf("seed item failed: %v", err)
		}
	}

	reaper.Sweep(ctx)

	if room, _ := store.GetRoomByID(ctx, "dead"); room != nil {
		t.Error("expected expired room to be reaped")
	}
	if room, _ := store.GetRoomByID(ctx, "live"); room == nil {
		t.Error("live room must survive the sweep")
	}
	if item, _ := store.LatestUnconsumed(ctx, "live"); item == nil || item.ID != "fresh" {
		t.Errorf("fresh item must survive the sweep, got %+v", item)
	}
	// The aged consumed item is gone: re-marking it reports not found
	if err := store.MarkConsumed(ctx, "aged"); err != storage.ErrNotFound {
		t.Errorf("expected aged consumed item reaped, got %v", err)
	}
}

func TestMaybeSweepThrottles(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	reaper := NewReaper(store, time.Hour, time.Hour, testLogger())

	// First call sweeps
	reaper.MaybeSweep(ctx)

	seedExpiredRoom(t, store, "dead", "DEADRM")

	// Within the throttle window nothing runs
	reaper.MaybeSweep(ctx)
	if room, _ := store.GetRoomByID(ctx, "dead"); room == nil {
		t.Fatal("throttled MaybeSweep must not delete")
	}

	// A direct sweep is never throttled
	reaper.Sweep(ctx)
	if room, _ := store.GetRoomByID(ctx, "dead"); room != nil {
		t.Fatal("expected direct sweep to delete the expired room")
	}
}
