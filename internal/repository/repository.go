// Package repository provides PostgreSQL persistence for submitted time
// entries and the imported task catalog.
package repository

import (
	"context"
	"time"
)

// TimesheetRepository is what the API layer depends on; the engine itself
// never touches it. Implementations: PostgresTimesheetRepository and the
// in-memory MockTimesheetRepository for tests.
type TimesheetRepository interface {
	SaveEntries(ctx context.Context, entries []Entry) error
	SaveCatalogTasks(ctx context.Context, tasks []CatalogTask) error
	GetRecentEntries(ctx context.Context, limit int) ([]Entry, error)
	GetDailyTotals(ctx context.Context, since time.Time) ([]DailyTotal, error)
}
