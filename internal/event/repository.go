package event

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"
)

const (
	defaultQueryLimit = 50
	maxQueryLimit     = 1000
)

// SQLiteRepository implements the append-only event store using SQLite.
//
// Rows live in the baby_care_events table. Timestamps are stored as UTC
// RFC3339 strings. Ids are assigned by AUTOINCREMENT, so they are unique
// and strictly increasing even under concurrent appends (the connection
// pool serialises writers).
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository creates a new SQLite event repository.
//
// Parameters:
//   - db: Open SQLite connection used for queries
//
// Returns:
//   - *SQLiteRepository: Repository instance ready for use
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// Add appends a new domain event and returns its assigned id.
//
// Append failures propagate to the caller: domain events are the
// system's durable record and silent loss is unacceptable.
//
// Parameters:
//   - ctx: Context for cancellation and timeout
//   - e: Event to append (zero OccurredAt means now)
//
// Returns:
//   - int64: The assigned event id
//   - error: ErrInvalidType for unknown types, otherwise the underlying
//     database error
func (r *SQLiteRepository) Add(ctx context.Context, e NewEvent) (int64, error) {
	if !ValidType(e.Type) {
		return 0, fmt.Errorf("%w: %q", ErrInvalidType, e.Type)
	}

	occurredAt := e.OccurredAt
	if occurredAt.IsZero() {
		occurredAt = time.Now()
	}
	now := time.Now().UTC().Format(time.RFC3339)

	var triggerData any
	if len(e.TriggerData) > 0 {
		triggerData = string(e.TriggerData)
	}

	result, err := r.db.ExecContext(ctx,
		`INSERT INTO baby_care_events
		 (event_type, occurred_at, duration_minutes, notes, device_source, trigger_data, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		e.Type,
		occurredAt.UTC().Format(time.RFC3339),
		e.DurationMinutes,
		nullableString(e.Notes),
		nullableString(e.DeviceSource),
		triggerData,
		now,
		now,
	)
	if err != nil {
		return 0, fmt.Errorf("inserting event: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("reading event id: %w", err)
	}

	return id, nil
}

// Get returns events matching the filter, ordered by occurred_at
// descending (newest first), paginated by limit/offset.
//
// Parameters:
//   - ctx: Context for cancellation and timeout
//   - f: Query filter (zero value returns the newest 50 events)
//
// Returns:
//   - []Event: Matching events, newest first (may be empty)
//   - error: nil on success, otherwise the underlying query error
func (r *SQLiteRepository) Get(ctx context.Context, f Filter) ([]Event, error) {
	limit := f.Limit
	if limit <= 0 {
		limit = defaultQueryLimit
	}
	if limit > maxQueryLimit {
		limit = maxQueryLimit
	}
	offset := f.Offset
	if offset < 0 {
		offset = 0
	}

	var conditions []string
	var args []any

	if f.Type != "" {
		conditions = append(conditions, "event_type = ?")
		args = append(args, f.Type)
	}
	if f.Start != nil {
		conditions = append(conditions, "occurred_at >= ?")
		args = append(args, f.Start.UTC().Format(time.RFC3339))
	}
	if f.End != nil {
		conditions = append(conditions, "occurred_at <= ?")
		args = append(args, f.End.UTC().Format(time.RFC3339))
	}

	query := `SELECT id, event_type, occurred_at, duration_minutes, notes, device_source, trigger_data, created_at, updated_at
		 FROM baby_care_events`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY occurred_at DESC LIMIT ? OFFSET ?"
	args = append(args, limit, offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying events: %w", err)
	}
	defer rows.Close()

	events := make([]Event, 0, limit)
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating events: %w", err)
	}

	return events, nil
}

// GetByRange returns all events with occurred_at within [start, end],
// newest first. It is a convenience wrapper used by the analytics engine.
func (r *SQLiteRepository) GetByRange(ctx context.Context, start, end time.Time) ([]Event, error) {
	return r.Get(ctx, Filter{
		Start: &start,
		End:   &end,
		Limit: maxQueryLimit,
	})
}

// Update edits the notes and/or duration of an existing event.
// Nil fields in u are left unchanged; updated_at is always refreshed.
//
// Returns:
//   - error: ErrNotFound if the event does not exist, otherwise the
//     underlying database error
func (r *SQLiteRepository) Update(ctx context.Context, id int64, u Update) error {
	sets := []string{"updated_at = ?"}
	args := []any{time.Now().UTC().Format(time.RFC3339)}

	if u.DurationMinutes != nil {
		sets = append(sets, "duration_minutes = ?")
		args = append(args, *u.DurationMinutes)
	}
	if u.Notes != nil {
		sets = append(sets, "notes = ?")
		args = append(args, *u.Notes)
	}

	args = append(args, id)
	result, err := r.db.ExecContext(ctx,
		"UPDATE baby_care_events SET "+strings.Join(sets, ", ")+" WHERE id = ?",
		args...,
	)
	if err != nil {
		return fmt.Errorf("updating event: %w", err)
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

// Delete removes an event by id.
//
// Returns:
//   - error: ErrNotFound if the event does not exist, otherwise the
//     underlying database error
func (r *SQLiteRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM baby_care_events WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting event: %w", err)
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

// Count returns the total number of stored events.
func (r *SQLiteRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM baby_care_events").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting events: %w", err)
	}
	return count, nil
}

// Cleanup deletes events with occurred_at older than now minus olderThan.
// It is advisory maintenance run by the retention loop, not part of the
// ingestion hot path.
//
// Parameters:
//   - ctx: Context for cancellation and timeout
//   - olderThan: Retention horizon (events older than now-olderThan are deleted)
//
// Returns:
//   - int64: Number of rows deleted
//   - error: nil on success, otherwise the underlying database error
func (r *SQLiteRepository) Cleanup(ctx context.Context, olderThan time.Duration) (int64, error) {
	if olderThan <= 0 {
		return 0, fmt.Errorf("olderThan must be positive")
	}

	cutoff := time.Now().UTC().Add(-olderThan).Format(time.RFC3339)
	result, err := r.db.ExecContext(ctx,
		"DELETE FROM baby_care_events WHERE occurred_at < ?",
		cutoff,
	)
	if err != nil {
		return 0, fmt.Errorf("deleting old events: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("checking rows affected: %w", err)
	}

	return rowsAffected, nil
}

// scanEvent reads one event row.
func scanEvent(rows *sql.Rows) (Event, error) {
	var e Event
	var occurredAt, createdAt, updatedAt string
	var duration sql.NullInt64
	var notes, deviceSource, triggerData sql.NullString

	if err := rows.Scan(&e.ID, &e.Type, &occurredAt, &duration, &notes, &deviceSource, &triggerData, &createdAt, &updatedAt); err != nil {
		return Event{}, fmt.Errorf("scanning event: %w", err)
	}

	if duration.Valid {
		d := int(duration.Int64)
		e.DurationMinutes = &d
	}
	e.Notes = notes.String
	e.DeviceSource = deviceSource.String
	if triggerData.Valid && triggerData.String != "" {
		e.TriggerData = []byte(triggerData.String)
	}

	var err error
	if e.OccurredAt, err = parseTimestamp(occurredAt); err != nil {
		return Event{}, fmt.Errorf("parsing occurred_at: %w", err)
	}
	if e.CreatedAt, err = parseTimestamp(createdAt); err != nil {
		return Event{}, fmt.Errorf("parsing created_at: %w", err)
	}
	if e.UpdatedAt, err = parseTimestamp(updatedAt); err != nil {
		return Event{}, fmt.Errorf("parsing updated_at: %w", err)
	}

	return e, nil
}

// parseTimestamp parses a timestamp stored in SQLite.
func parseTimestamp(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, fmt.Errorf("timestamp is empty")
	}
	return time.Parse(time.RFC3339, value)
}

// nullableString converts an empty string to NULL.
func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
