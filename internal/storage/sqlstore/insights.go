package sqlstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/julianstephens/tracked/internal/constants"
	"github.com/julianstephens/tracked/internal/models"
	"github.com/julianstephens/tracked/internal/storage"
)

const insightColumns = `id, report_type, period_start, period_end, content, generated_at`

func scanInsight(row rowScanner) (models.Insight, error) {
	var (
		in          models.Insight
		reportType  string
		content     string
		generatedAt string
	)
	if err := row.Scan(&in.ID, &reportType, &in.PeriodStart, &in.PeriodEnd, &content, &generatedAt); err != nil {
		return models.Insight{}, err
	}
	in.ReportType = models.ReportType(reportType)
	if err := json.Unmarshal([]byte(content), &in.Content); err != nil {
		return models.Insight{}, fmt.Errorf("failed to decode insight content: %w", err)
	}
	var err error
	in.GeneratedAt, err = parseTime(generatedAt)
	if err != nil {
		return models.Insight{}, fmt.Errorf("failed to parse generated_at: %w", err)
	}
	return in, nil
}

func (q *Queries) SaveInsight(ctx context.Context, in models.Insight) (models.Insight, bool, error) {
	content, err := json.Marshal(in.Content)
	if err != nil {
		return models.Insight{}, false, fmt.Errorf("failed to encode insight content: %w", err)
	}

	tx, err := q.db.BeginTx(ctx, nil)
	if err != nil {
		return models.Insight{}, false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var existingID string
	err = tx.QueryRowContext(ctx, q.rebind(`
		SELECT id FROM insights WHERE report_type = ? AND period_start = ? AND period_end = ?`),
		string(in.ReportType), in.PeriodStart, in.PeriodEnd).Scan(&existingID)
	created := errors.Is(err, sql.ErrNoRows)
	if err != nil && !created {
		return models.Insight{}, false, fmt.Errorf("failed to look up insight: %w", err)
	}

	in.GeneratedAt = time.Now().UTC()
	if created {
		in.ID = uuid.NewString()
		_, err = tx.ExecContext(ctx, q.rebind(`
			INSERT INTO insights (`+insightColumns+`) VALUES (?, ?, ?, ?, ?, ?)`),
			in.ID, string(in.ReportType), in.PeriodStart, in.PeriodEnd, string(content), formatTime(in.GeneratedAt))
	} else {
		in.ID = existingID
		_, err = tx.ExecContext(ctx, q.rebind(`
			UPDATE insights SET content = ?, generated_at = ? WHERE id = ?`),
			string(content), formatTime(in.GeneratedAt), in.ID)
	}
	if err != nil {
		return models.Insight{}, false, fmt.Errorf("failed to save insight: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return models.Insight{}, false, fmt.Errorf("failed to commit insight: %w", err)
	}
	return in, created, nil
}

func (q *Queries) LatestInsight(ctx context.Context, reportType models.ReportType) (models.Insight, error) {
	row := q.db.QueryRowContext(ctx, q.rebind(`
		SELECT `+insightColumns+` FROM insights
		WHERE report_type = ?
		ORDER BY period_end DESC, generated_at DESC
		LIMIT 1`), string(reportType))
	in, err := scanInsight(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Insight{}, fmt.Errorf("%s insight: %w", reportType, storage.ErrNotFound)
	}
	return in, err
}

func (q *Queries) InsightHistory(ctx context.Context, reportType models.ReportType, limit int) ([]models.Insight, error) {
	if limit <= 0 {
		limit = constants.DefaultHistoryLimit
	}
	rows, err := q.db.QueryContext(ctx, q.rebind(`
		SELECT `+insightColumns+` FROM insights
		WHERE report_type = ?
		ORDER BY period_end DESC, generated_at DESC
		LIMIT ?`), string(reportType), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query insights: %w", err)
	}
	defer rows.Close()

	history := []models.Insight{}
	for rows.Next() {
		in, err := scanInsight(rows)
		if err != nil {
			return nil, err
		}
		history = append(history, in)
	}
	return history, rows.Err()
}
