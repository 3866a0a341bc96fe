package sqlstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/julianstephens/tracked/internal/models"
)

const entryColumns = `id, tracker_id, date, binary_value, number_value, rating_value, duration_minutes, time_value, text_value, prayer_values, updated_at`

func scanEntry(row rowScanner) (models.Entry, error) {
	var (
		e         models.Entry
		binary    sql.NullBool
		number    sql.NullFloat64
		rating    sql.NullInt64
		duration  sql.NullInt64
		clock     sql.NullString
		text      sql.NullString
		prayers   sql.NullString
		updatedAt string
	)
	if err := row.Scan(&e.ID, &e.TrackerID, &e.Date, &binary, &number, &rating, &duration, &clock, &text, &prayers, &updatedAt); err != nil {
		return models.Entry{}, err
	}

	if binary.Valid {
		e.BinaryValue = &binary.Bool
	}
	e.NumberValue = floatPtr(number)
	if rating.Valid {
		v := int(rating.Int64)
		e.RatingValue = &v
	}
	if duration.Valid {
		v := int(duration.Int64)
		e.DurationMinutes = &v
	}
	if clock.Valid {
		e.TimeValue = &clock.String
	}
	if text.Valid {
		e.TextValue = &text.String
	}
	if prayers.Valid {
		e.PrayerValues = models.NormalizePrayerValues([]byte(prayers.String))
	}

	var err error
	e.UpdatedAt, err = parseTime(updatedAt)
	if err != nil {
		return models.Entry{}, fmt.Errorf("failed to parse updated_at: %w", err)
	}
	return e, nil
}

func (q *Queries) EntriesBetween(ctx context.Context, startDate, endDate string) ([]models.Entry, error) {
	rows, err := q.db.QueryContext(ctx, q.rebind(`
		SELECT `+entryColumns+` FROM entries
		WHERE date >= ? AND date <= ?
		ORDER BY date, tracker_id`), startDate, endDate)
	if err != nil {
		return nil, fmt.Errorf("failed to query entries: %w", err)
	}
	defer rows.Close()

	entries := []models.Entry{}
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (q *Queries) SaveEntry(ctx context.Context, e models.Entry) (models.Entry, error) {
	var prayers sql.NullString
	if compact := e.PrayerValues.Compact(); compact != nil {
		data, err := json.Marshal(compact)
		if err != nil {
			return models.Entry{}, fmt.Errorf("failed to encode prayer values: %w", err)
		}
		prayers = sql.NullString{String: string(data), Valid: true}
	}

	e.UpdatedAt = time.Now().UTC()
	_, err := q.db.ExecContext(ctx, q.rebind(`
		INSERT INTO entries (`+entryColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (tracker_id, date) DO UPDATE SET
			binary_value = excluded.binary_value,
			number_value = excluded.number_value,
			rating_value = excluded.rating_value,
			duration_minutes = excluded.duration_minutes,
			time_value = excluded.time_value,
			text_value = excluded.text_value,
			prayer_values = excluded.prayer_values,
			updated_at = excluded.updated_at`),
		uuid.NewString(), e.TrackerID, e.Date,
		nullBool(e.BinaryValue), nullFloat(e.NumberValue), nullInt(e.RatingValue), nullInt(e.DurationMinutes),
		nullString(e.TimeValue), nullString(e.TextValue), prayers, formatTime(e.UpdatedAt))
	if err != nil {
		return models.Entry{}, fmt.Errorf("failed to save entry: %w", err)
	}

	row := q.db.QueryRowContext(ctx, q.rebind(`SELECT `+entryColumns+` FROM entries WHERE tracker_id = ? AND date = ?`), e.TrackerID, e.Date)
	saved, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Entry{}, fmt.Errorf("entry vanished after save")
	}
	return saved, err
}

func (q *Queries) DeleteEntry(ctx context.Context, trackerID, date string) (bool, error) {
	res, err := q.db.ExecContext(ctx, q.rebind(`DELETE FROM entries WHERE tracker_id = ? AND date = ?`), trackerID, date)
	if err != nil {
		return false, fmt.Errorf("failed to delete entry: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to check affected rows: %w", err)
	}
	return n > 0, nil
}

func nullBool(p *bool) sql.NullBool {
	if p == nil {
		return sql.NullBool{}
	}
	return sql.NullBool{Bool: *p, Valid: true}
}

func nullInt(p *int) sql.NullInt64 {
	if p == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*p), Valid: true}
}

func nullString(p *string) sql.NullString {
	if p == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *p, Valid: true}
}
