package repository

import (
	"context"
	"sync"
	"time"
)

// MockTimesheetRepository is an in-memory TimesheetRepository for tests in
// other packages.
type MockTimesheetRepository struct {
	mu                  sync.Mutex
	Entries             []Entry
	CatalogTasks        map[string]CatalogTask
	SaveEntriesCalls    int
	SaveCatalogCalls    int
	SaveEntriesError    error
	SaveCatalogError    error
	GetRecentError      error
	GetDailyTotalsError error
}

func NewMockTimesheetRepository() *MockTimesheetRepository {
	return &MockTimesheetRepository{
		CatalogTasks: make(map[string]CatalogTask),
	}
}

func (m *MockTimesheetRepository) SaveEntries(ctx context.Context, entries []Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.SaveEntriesCalls++
	if m.SaveEntriesError != nil {
		return m.SaveEntriesError
	}

	m.Entries = append(m.Entries, entries...)
	return nil
}

func (m *MockTimesheetRepository) SaveCatalogTasks(ctx context.Context, tasks []CatalogTask) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.SaveCatalogCalls++
	if m.SaveCatalogError != nil {
		return m.SaveCatalogError
	}

	for _, t := range tasks {
		m.CatalogTasks[t.ID] = t
	}
	return nil
}

func (m *MockTimesheetRepository) GetRecentEntries(ctx context.Context, limit int) ([]Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.GetRecentError != nil {
		return nil, m.GetRecentError
	}

	if limit > len(m.Entries) {
		limit = len(m.Entries)
	}

	recent := make([]Entry, limit)
	copy(recent, m.Entries[len(m.Entries)-limit:])
	return recent, nil
}

func (m *MockTimesheetRepository) GetDailyTotals(ctx context.Context, since time.Time) ([]DailyTotal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.GetDailyTotalsError != nil {
		return nil, m.GetDailyTotalsError
	}

	byDay := make(map[time.Time]*DailyTotal)
	for _, e := range m.Entries {
		if e.SubmittedAt.Before(since) {
			continue
		}
		day := e.SubmittedAt.Truncate(24 * time.Hour)
		t, ok := byDay[day]
		if !ok {
			t = &DailyTotal{Day: day}
			byDay[day] = t
		}
		t.ActiveMs += e.ActiveMs
		t.BreakMs += e.BreakMs
		t.EntryCount++
	}

	totals := make([]DailyTotal, 0, len(byDay))
	for _, t := range byDay {
		totals = append(totals, *t)
	}
	return totals, nil
}

// EntryForTask returns the saved entry for taskID, for assertions.
func (m *MockTimesheetRepository) EntryForTask(taskID string) (Entry, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, e := range m.Entries {
		if e.TaskID == taskID {
			return e, true
		}
	}
	return Entry{}, false
}
