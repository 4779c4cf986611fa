// Package dashboard implements the monitoring endpoints for timer state and
// submitted-entry history.
package dashboard

import (
	"net/http"
	"time"

	"github.com/stintapp/stint/internal/httputil"
	"github.com/stintapp/stint/internal/repository"
	"github.com/stintapp/stint/internal/timer"
)

type Dashboard struct {
	engine *timer.Engine
	repo   repository.TimesheetRepository
}

type Stats struct {
	TotalTasks         int       `json:"total_tasks"`
	RunningTasks       int       `json:"running_tasks"`
	PausedTasks        int       `json:"paused_tasks"`
	OnBreakTasks       int       `json:"on_break_tasks"`
	RunningTaskID      string    `json:"running_task_id,omitempty"`
	TotalActiveSeconds int64     `json:"total_active_seconds"`
	TotalBreakSeconds  int64     `json:"total_break_seconds"`
	LastUpdated        time.Time `json:"last_updated"`
}

// NewDashboard wires the stats endpoints. repo may be nil when the service
// runs without Postgres; history then reports unavailable.
func NewDashboard(e *timer.Engine, repo repository.TimesheetRepository) *Dashboard {
	return &Dashboard{engine: e, repo: repo}
}

func (d *Dashboard) GetStats(w http.ResponseWriter, r *http.Request) {
	stats := Stats{LastUpdated: time.Now()}

	for _, s := range d.engine.Snapshot() {
		stats.TotalTasks++
		switch s.Status {
		case timer.StatusRunning:
			stats.RunningTasks++
			stats.RunningTaskID = s.TaskID
		case timer.StatusPaused:
			stats.PausedTasks++
		case timer.StatusOnBreak:
			stats.OnBreakTasks++
		}

		stats.TotalActiveSeconds += d.engine.CurrentTime(s.TaskID)
		stats.TotalBreakSeconds += d.engine.BreakTime(s.TaskID)
	}

	httputil.WriteJSON(w, http.StatusOK, stats)
}

// GetTotals reports per-day aggregates of submitted entries over the last
// 30 days.
func (d *Dashboard) GetTotals(w http.ResponseWriter, r *http.Request) {
	if d.repo == nil {
		httputil.WriteJSONError(w, "daily totals require a database", http.StatusServiceUnavailable)
		return
	}

	since := time.Now().Add(-30 * 24 * time.Hour)
	totals, err := d.repo.GetDailyTotals(r.Context(), since)
	if err != nil {
		httputil.WriteJSONError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if totals == nil {
		totals = []repository.DailyTotal{}
	}

	httputil.WriteJSON(w, http.StatusOK, totals)
}

func (d *Dashboard) GetHistory(w http.ResponseWriter, r *http.Request) {
	if d.repo == nil {
		httputil.WriteJSONError(w, "entry history requires a database", http.StatusServiceUnavailable)
		return
	}

	entries, err := d.repo.GetRecentEntries(r.Context(), 50)
	if err != nil {
		httputil.WriteJSONError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if entries == nil {
		entries = []repository.Entry{}
	}

	httputil.WriteJSON(w, http.StatusOK, entries)
}
