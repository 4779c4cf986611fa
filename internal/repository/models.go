package repository

import "time"

// Entry is one submitted slice of tracked time for a task, written at
// day-end submission.
type Entry struct {
	ID          string    `json:"id"`
	TaskID      string    `json:"task_id"`
	ActiveMs    int64     `json:"active_ms"`
	BreakMs     int64     `json:"break_ms"`
	SubmittedAt time.Time `json:"submitted_at"`
}

// CatalogTask is a row of the task catalog the admin screens edit, fed by
// CSV bulk import.
type CatalogTask struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Client   string `json:"client"`
	Billable bool   `json:"billable"`
}

// DailyTotal aggregates submitted entries per calendar day.
type DailyTotal struct {
	Day        time.Time `json:"day"`
	ActiveMs   int64     `json:"active_ms"`
	BreakMs    int64     `json:"break_ms"`
	EntryCount int       `json:"entry_count"`
}
