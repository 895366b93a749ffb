package mapping

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/nerrad567/babycare-core/internal/event"
)

// SQLiteRepository stores device mappings in SQLite and resolves
// (device, trigger) pairs to baby care actions.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository creates a new SQLite mapping repository.
//
// Parameters:
//   - db: Open SQLite connection used for queries
//
// Returns:
//   - *SQLiteRepository: Repository instance ready for use
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// Add registers a new mapping and returns its assigned id.
// New mappings are enabled by default.
//
// Parameters:
//   - ctx: Context for cancellation and timeout
//   - m: Mapping to register
//
// Returns:
//   - int64: The assigned mapping id
//   - error: ErrInvalidMapping for bad input, otherwise the underlying
//     database error
func (r *SQLiteRepository) Add(ctx context.Context, m NewMapping) (int64, error) {
	if m.DeviceID == "" || m.TriggerType == "" {
		return 0, fmt.Errorf("%w: device id and trigger type are required", ErrInvalidMapping)
	}
	if !event.ValidType(m.Action) {
		return 0, fmt.Errorf("%w: unknown action %q", ErrInvalidMapping, m.Action)
	}

	now := time.Now().UTC().Format(time.RFC3339)
	result, err := r.db.ExecContext(ctx,
		`INSERT INTO device_mappings
		 (device_id, device_name, trigger_type, baby_care_action, enabled, created_at, updated_at)
		 VALUES (?, ?, ?, ?, 1, ?, ?)`,
		m.DeviceID,
		m.DeviceName,
		m.TriggerType,
		m.Action,
		now,
		now,
	)
	if err != nil {
		return 0, fmt.Errorf("inserting mapping: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("reading mapping id: %w", err)
	}

	return id, nil
}

// Resolve looks up the baby care action for an enabled
// (deviceID, triggerType) pair.
//
// Absence is a normal outcome, not an error. When multiple enabled rows
// match the same pair, the lowest id wins - a stable first-match order;
// uniqueness is not enforced at write time.
//
// Parameters:
//   - ctx: Context for cancellation and timeout
//   - deviceID: Dialect-prefixed device identifier
//   - triggerType: Device-side event classifier
//
// Returns:
//   - string: The mapped baby care action ("" when no match)
//   - bool: Whether an enabled mapping matched
//   - error: nil on success or no-match, otherwise the underlying query error
func (r *SQLiteRepository) Resolve(ctx context.Context, deviceID, triggerType string) (string, bool, error) {
	var action string
	err := r.db.QueryRowContext(ctx,
		`SELECT baby_care_action FROM device_mappings
		 WHERE device_id = ? AND trigger_type = ? AND enabled = 1
		 ORDER BY id LIMIT 1`,
		deviceID,
		triggerType,
	).Scan(&action)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("resolving mapping: %w", err)
	}

	return action, true, nil
}

// Get returns a single mapping by id.
//
// Returns:
//   - error: ErrNotFound if the mapping does not exist
func (r *SQLiteRepository) Get(ctx context.Context, id int64) (Mapping, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, device_id, device_name, trigger_type, baby_care_action, enabled, created_at, updated_at
		 FROM device_mappings WHERE id = ?`,
		id,
	)

	m, err := scanMapping(row)
	if err == sql.ErrNoRows {
		return Mapping{}, fmt.Errorf("%w: id %d", ErrNotFound, id)
	}
	if err != nil {
		return Mapping{}, err
	}

	return m, nil
}

// GetAll returns mappings ordered newest first.
//
// Parameters:
//   - ctx: Context for cancellation and timeout
//   - enabledOnly: When true, disabled mappings are excluded
//
// Returns:
//   - []Mapping: Mappings ordered by created_at DESC (may be empty)
//   - error: nil on success, otherwise the underlying query error
func (r *SQLiteRepository) GetAll(ctx context.Context, enabledOnly bool) ([]Mapping, error) {
	query := `SELECT id, device_id, device_name, trigger_type, baby_care_action, enabled, created_at, updated_at
		 FROM device_mappings`
	if enabledOnly {
		query += " WHERE enabled = 1"
	}
	query += " ORDER BY created_at DESC, id DESC"

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying mappings: %w", err)
	}
	defer rows.Close()

	var mappings []Mapping
	for rows.Next() {
		m, err := scanMapping(rows)
		if err != nil {
			return nil, err
		}
		mappings = append(mappings, m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating mappings: %w", err)
	}

	return mappings, nil
}

// SetEnabled toggles a mapping without removing it.
//
// Returns:
//   - error: ErrNotFound if the mapping does not exist
func (r *SQLiteRepository) SetEnabled(ctx context.Context, id int64, enabled bool) error {
	result, err := r.db.ExecContext(ctx,
		"UPDATE device_mappings SET enabled = ?, updated_at = ? WHERE id = ?",
		enabled,
		time.Now().UTC().Format(time.RFC3339),
		id,
	)
	if err != nil {
		return fmt.Errorf("updating mapping: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: id %d", ErrNotFound, id)
	}

	return nil
}

// Delete removes a mapping by id.
//
// Returns:
//   - error: ErrNotFound if the mapping does not exist
func (r *SQLiteRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM device_mappings WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting mapping: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: id %d", ErrNotFound, id)
	}

	return nil
}

// scanner abstracts sql.Row and sql.Rows for scanMapping.
type scanner interface {
	Scan(dest ...any) error
}

// scanMapping reads one mapping row.
func scanMapping(s scanner) (Mapping, error) {
	var m Mapping
	var deviceName sql.NullString
	var createdAt, updatedAt string

	if err := s.Scan(&m.ID, &m.DeviceID, &deviceName, &m.TriggerType, &m.Action, &m.Enabled, &createdAt, &updatedAt); err != nil {
		if err == sql.ErrNoRows {
			return Mapping{}, err
		}
		return Mapping{}, fmt.Errorf("scanning mapping: %w", err)
	}

	m.DeviceName = deviceName.String

	var err error
	if m.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
		return Mapping{}, fmt.Errorf("parsing created_at: %w", err)
	}
	if m.UpdatedAt, err = time.Parse(time.RFC3339, updatedAt); err != nil {
		return Mapping{}, fmt.Errorf("parsing updated_at: %w", err)
	}

	return m, nil
}
