package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	_ "github.com/lib/pq"
)

type PostgresTimesheetRepository struct {
	db *sql.DB
}

func NewPostgresTimesheetRepository(connectionString string) (*PostgresTimesheetRepository, error) {
	db, err := sql.Open("postgres", connectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping PostgreSQL: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	return &PostgresTimesheetRepository{db: db}, nil
}

func (r *PostgresTimesheetRepository) SaveEntries(ctx context.Context, entries []Entry) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if rollbackErr := tx.Rollback(); rollbackErr != nil && rollbackErr != sql.ErrTxDone {
			log.Printf("failed to roll back entry transaction: %v", rollbackErr)
		}
	}()

	query := `
		INSERT INTO time_entries (id, task_id, active_ms, break_ms, submitted_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO NOTHING
	`

	for _, e := range entries {
		if _, err := tx.ExecContext(ctx, query, e.ID, e.TaskID, e.ActiveMs, e.BreakMs, e.SubmittedAt); err != nil {
			return fmt.Errorf("failed to save entry for task %s: %w", e.TaskID, err)
		}
	}

	return tx.Commit()
}

func (r *PostgresTimesheetRepository) SaveCatalogTasks(ctx context.Context, tasks []CatalogTask) error {
	query := `
		INSERT INTO catalog_tasks (id, name, client, billable)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			client = EXCLUDED.client,
			billable = EXCLUDED.billable
	`

	for _, t := range tasks {
		if _, err := r.db.ExecContext(ctx, query, t.ID, t.Name, t.Client, t.Billable); err != nil {
			return fmt.Errorf("failed to save catalog task %s: %w", t.ID, err)
		}
	}

	return nil
}

func (r *PostgresTimesheetRepository) GetRecentEntries(ctx context.Context, limit int) ([]Entry, error) {
	query := `
		SELECT id, task_id, active_ms, break_ms, submitted_at
		FROM time_entries
		ORDER BY submitted_at DESC
		LIMIT $1
	`

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			log.Printf("failed to close rows: %v", closeErr)
		}
	}()

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.TaskID, &e.ActiveMs, &e.BreakMs, &e.SubmittedAt); err != nil {
			return nil, fmt.Errorf("scan failed: %w", err)
		}
		entries = append(entries, e)
	}

	return entries, rows.Err()
}

func (r *PostgresTimesheetRepository) GetDailyTotals(ctx context.Context, since time.Time) ([]DailyTotal, error) {
	query := `
		SELECT
			DATE_TRUNC('day', submitted_at) as day,
			COALESCE(SUM(active_ms), 0) as active_ms,
			COALESCE(SUM(break_ms), 0) as break_ms,
			COUNT(*) as entry_count
		FROM time_entries
		WHERE submitted_at >= $1
		GROUP BY DATE_TRUNC('day', submitted_at)
		ORDER BY day DESC
	`

	rows, err := r.db.QueryContext(ctx, query, since)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			log.Printf("failed to close rows: %v", closeErr)
		}
	}()

	var totals []DailyTotal
	for rows.Next() {
		var d DailyTotal
		if err := rows.Scan(&d.Day, &d.ActiveMs, &d.BreakMs, &d.EntryCount); err != nil {
			return nil, fmt.Errorf("scan failed: %w", err)
		}
		totals = append(totals, d)
	}

	return totals, rows.Err()
}

func (r *PostgresTimesheetRepository) Close() error {
	return r.db.Close()
}
