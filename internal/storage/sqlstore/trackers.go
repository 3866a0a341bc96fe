package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/julianstephens/tracked/internal/models"
	"github.com/julianstephens/tracked/internal/storage"
)

const trackerColumns = `id, name, tracker_type, unit, display_order, is_active, min_value, max_value, created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTracker(row rowScanner) (models.Tracker, error) {
	var (
		t         models.Tracker
		typ       string
		minV      sql.NullFloat64
		maxV      sql.NullFloat64
		createdAt string
	)
	if err := row.Scan(&t.ID, &t.Name, &typ, &t.Unit, &t.DisplayOrder, &t.IsActive, &minV, &maxV, &createdAt); err != nil {
		return models.Tracker{}, err
	}
	t.Type = models.TrackerType(typ)
	t.MinValue = floatPtr(minV)
	t.MaxValue = floatPtr(maxV)

	var err error
	t.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return models.Tracker{}, fmt.Errorf("failed to parse created_at: %w", err)
	}
	return t, nil
}

func (q *Queries) ListTrackers(ctx context.Context, includeInactive bool) ([]models.Tracker, error) {
	query := `SELECT ` + trackerColumns + ` FROM trackers`
	if !includeInactive {
		query += ` WHERE is_active = ?`
	}
	query += ` ORDER BY is_active DESC, display_order, name`

	var args []any
	if !includeInactive {
		args = append(args, true)
	}
	rows, err := q.db.QueryContext(ctx, q.rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list trackers: %w", err)
	}
	defer rows.Close()

	trackers := []models.Tracker{}
	for rows.Next() {
		t, err := scanTracker(rows)
		if err != nil {
			return nil, err
		}
		trackers = append(trackers, t)
	}
	return trackers, rows.Err()
}

func (q *Queries) GetTracker(ctx context.Context, id string) (models.Tracker, error) {
	row := q.db.QueryRowContext(ctx, q.rebind(`SELECT `+trackerColumns+` FROM trackers WHERE id = ?`), id)
	t, err := scanTracker(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Tracker{}, fmt.Errorf("tracker %s: %w", id, storage.ErrNotFound)
	}
	return t, err
}

func (q *Queries) CreateTracker(ctx context.Context, t models.Tracker) (models.Tracker, error) {
	tx, err := q.db.BeginTx(ctx, nil)
	if err != nil {
		return models.Tracker{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var maxOrder sql.NullInt64
	if err := tx.QueryRowContext(ctx, `SELECT MAX(display_order) FROM trackers`).Scan(&maxOrder); err != nil {
		return models.Tracker{}, fmt.Errorf("failed to read display order: %w", err)
	}

	t.ID = uuid.NewString()
	t.DisplayOrder = 0
	if maxOrder.Valid {
		t.DisplayOrder = int(maxOrder.Int64) + 1
	}
	t.CreatedAt = time.Now().UTC()

	_, err = tx.ExecContext(ctx, q.rebind(`
		INSERT INTO trackers (`+trackerColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`),
		t.ID, t.Name, string(t.Type), t.Unit, t.DisplayOrder, t.IsActive,
		nullFloat(t.MinValue), nullFloat(t.MaxValue), formatTime(t.CreatedAt))
	if err != nil {
		return models.Tracker{}, fmt.Errorf("failed to insert tracker: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return models.Tracker{}, fmt.Errorf("failed to commit tracker: %w", err)
	}
	return t, nil
}

func (q *Queries) UpdateTracker(ctx context.Context, t models.Tracker) error {
	res, err := q.db.ExecContext(ctx, q.rebind(`
		UPDATE trackers
		SET name = ?, tracker_type = ?, unit = ?, display_order = ?, is_active = ?, min_value = ?, max_value = ?
		WHERE id = ?`),
		t.Name, string(t.Type), t.Unit, t.DisplayOrder, t.IsActive,
		nullFloat(t.MinValue), nullFloat(t.MaxValue), t.ID)
	if err != nil {
		return fmt.Errorf("failed to update tracker: %w", err)
	}
	return expectRow(res, "tracker", t.ID)
}

func (q *Queries) DeleteTracker(ctx context.Context, id string) error {
	tx, err := q.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	// Entries are removed explicitly since SQLite only cascades with the
	// foreign_keys pragma enabled.
	if _, err := tx.ExecContext(ctx, q.rebind(`DELETE FROM entries WHERE tracker_id = ?`), id); err != nil {
		return fmt.Errorf("failed to delete entries: %w", err)
	}
	res, err := tx.ExecContext(ctx, q.rebind(`DELETE FROM trackers WHERE id = ?`), id)
	if err != nil {
		return fmt.Errorf("failed to delete tracker: %w", err)
	}
	if err := expectRow(res, "tracker", id); err != nil {
		return err
	}
	return tx.Commit()
}

func (q *Queries) ReorderTrackers(ctx context.Context, ids []string) error {
	tx, err := q.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, q.rebind(`UPDATE trackers SET display_order = ? WHERE id = ?`))
	if err != nil {
		return fmt.Errorf("failed to prepare reorder: %w", err)
	}
	defer stmt.Close()

	for i, id := range ids {
		res, err := stmt.ExecContext(ctx, i, id)
		if err != nil {
			return fmt.Errorf("failed to reorder tracker %s: %w", id, err)
		}
		if err := expectRow(res, "tracker", id); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func expectRow(res sql.Result, kind, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check affected rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%s %s: %w", kind, id, storage.ErrNotFound)
	}
	return nil
}
