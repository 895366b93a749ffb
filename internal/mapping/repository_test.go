package mapping

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	_ "github.com/mattn/go-sqlite3"

	"github.com/nerrad567/babycare-core/internal/event"
)

// setupTestDB creates an in-memory SQLite database with the mappings table.
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	schema := `
		CREATE TABLE device_mappings (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			device_id TEXT NOT NULL,
			device_name TEXT,
			trigger_type TEXT NOT NULL,
			baby_care_action TEXT NOT NULL,
			enabled INTEGER NOT NULL DEFAULT 1,
			created_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ', 'now')),
			updated_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ', 'now'))
		) STRICT;
	`

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		t.Fatalf("failed to create test schema: %v", err)
	}

	t.Cleanup(func() {
		db.Close()
	})

	return db
}

// addMapping registers a mapping and returns its id.
func addMapping(t *testing.T, repo *SQLiteRepository, deviceID, triggerType, action string) int64 {
	t.Helper()

	id, err := repo.Add(context.Background(), NewMapping{
		DeviceID:    deviceID,
		TriggerType: triggerType,
		Action:      action,
	})
	if err != nil {
		t.Fatalf("Add(%s/%s): %v", deviceID, triggerType, err)
	}
	return id
}

func TestAddValidation(t *testing.T) {
	repo := NewSQLiteRepository(setupTestDB(t))
	ctx := context.Background()

	tests := []struct {
		name    string
		mapping NewMapping
	}{
		{"missing device id", NewMapping{TriggerType: "action_single", Action: event.TypeSleepStart}},
		{"missing trigger type", NewMapping{DeviceID: "zigbee2mqtt_button", Action: event.TypeSleepStart}},
		{"unknown action", NewMapping{DeviceID: "zigbee2mqtt_button", TriggerType: "action_single", Action: "nap_time"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := repo.Add(ctx, tt.mapping)
			if !errors.Is(err, ErrInvalidMapping) {
				t.Errorf("expected ErrInvalidMapping, got %v", err)
			}
		})
	}
}

func TestResolveNoMatch(t *testing.T) {
	repo := NewSQLiteRepository(setupTestDB(t))

	action, ok, err := repo.Resolve(context.Background(), "zigbee2mqtt_button", "action_single")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if ok {
		t.Errorf("expected no match, got action %q", action)
	}
}

func TestResolveMatch(t *testing.T) {
	repo := NewSQLiteRepository(setupTestDB(t))
	ctx := context.Background()

	addMapping(t, repo, "zigbee2mqtt_front_door_button", "action_single", event.TypeSleepStart)

	action, ok, err := repo.Resolve(ctx, "zigbee2mqtt_front_door_button", "action_single")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if !ok {
		t.Fatal("expected a match")
	}
	if action != event.TypeSleepStart {
		t.Errorf("action: got %q, want %q", action, event.TypeSleepStart)
	}
}

func TestResolveSkipsDisabled(t *testing.T) {
	repo := NewSQLiteRepository(setupTestDB(t))
	ctx := context.Background()

	id := addMapping(t, repo, "zigbee2mqtt_button", "action_single", event.TypeSleepStart)
	if err := repo.SetEnabled(ctx, id, false); err != nil {
		t.Fatalf("SetEnabled: %v", err)
	}

	_, ok, err := repo.Resolve(ctx, "zigbee2mqtt_button", "action_single")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if ok {
		t.Error("disabled mapping should not resolve")
	}
}

func TestResolveFirstMatchWins(t *testing.T) {
	repo := NewSQLiteRepository(setupTestDB(t))
	ctx := context.Background()

	// Two enabled rows for the same pair: the lowest id must win.
	addMapping(t, repo, "zigbee2mqtt_button", "action_single", event.TypeSleepStart)
	addMapping(t, repo, "zigbee2mqtt_button", "action_single", event.TypeWakeUp)

	action, ok, err := repo.Resolve(ctx, "zigbee2mqtt_button", "action_single")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if !ok {
		t.Fatal("expected a match")
	}
	if action != event.TypeSleepStart {
		t.Errorf("action: got %q, want %q (first registered)", action, event.TypeSleepStart)
	}
}

func TestResolveFallsBackWhenFirstDisabled(t *testing.T) {
	repo := NewSQLiteRepository(setupTestDB(t))
	ctx := context.Background()

	first := addMapping(t, repo, "zigbee2mqtt_button", "action_single", event.TypeSleepStart)
	addMapping(t, repo, "zigbee2mqtt_button", "action_single", event.TypeWakeUp)

	if err := repo.SetEnabled(ctx, first, false); err != nil {
		t.Fatalf("SetEnabled: %v", err)
	}

	action, ok, err := repo.Resolve(ctx, "zigbee2mqtt_button", "action_single")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if !ok {
		t.Fatal("expected a match")
	}
	if action != event.TypeWakeUp {
		t.Errorf("action: got %q, want %q", action, event.TypeWakeUp)
	}
}

func TestGetAll(t *testing.T) {
	repo := NewSQLiteRepository(setupTestDB(t))
	ctx := context.Background()

	addMapping(t, repo, "zigbee2mqtt_a", "action_single", event.TypeSleepStart)
	id := addMapping(t, repo, "zigbee2mqtt_b", "action_double", event.TypeWakeUp)
	if err := repo.SetEnabled(ctx, id, false); err != nil {
		t.Fatalf("SetEnabled: %v", err)
	}

	all, err := repo.GetAll(ctx, false)
	if err != nil {
		t.Fatalf("GetAll: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 mappings, got %d", len(all))
	}

	enabled, err := repo.GetAll(ctx, true)
	if err != nil {
		t.Fatalf("GetAll(enabledOnly): %v", err)
	}
	if len(enabled) != 1 {
		t.Fatalf("expected 1 enabled mapping, got %d", len(enabled))
	}
	if enabled[0].DeviceID != "zigbee2mqtt_a" {
		t.Errorf("enabled mapping: got %q", enabled[0].DeviceID)
	}
}

func TestDeleteMapping(t *testing.T) {
	repo := NewSQLiteRepository(setupTestDB(t))
	ctx := context.Background()

	id := addMapping(t, repo, "zigbee2mqtt_button", "action_single", event.TypeSleepStart)

	if err := repo.Delete(ctx, id); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := repo.Delete(ctx, id); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound on second delete, got %v", err)
	}

	_, err := repo.Get(ctx, id)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound from Get, got %v", err)
	}
}
