// Package api exposes the timer engine and its timesheet collaborators over
// HTTP. Rendering lives in the clients; these handlers only move state.
package api

import (
	"encoding/json"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/stintapp/stint/internal/dashboard"
	"github.com/stintapp/stint/internal/httputil"
	"github.com/stintapp/stint/internal/importer"
	"github.com/stintapp/stint/internal/metrics"
	"github.com/stintapp/stint/internal/report"
	"github.com/stintapp/stint/internal/repository"
	"github.com/stintapp/stint/internal/snapshot"
	"github.com/stintapp/stint/internal/timer"
)

// SummaryMailer sends the day-end summary. *report.Mailer satisfies it.
type SummaryMailer interface {
	SendSummary(to string, data [][]string, day time.Time) error
}

// API routes requests to the engine and the optional collaborators. repo,
// snaps and mailer may each be nil; the endpoints needing them degrade to
// 503 or skip the step.
type API struct {
	engine *timer.Engine
	repo   repository.TimesheetRepository
	snaps  *snapshot.Store
	mailer SummaryMailer
	mux    *http.ServeMux
}

type TimerView struct {
	TaskID        string       `json:"task_id"`
	Status        timer.Status `json:"status"`
	ActiveSeconds int64        `json:"active_seconds"`
	BreakSeconds  int64        `json:"break_seconds"`
}

type BreakEndRequest struct {
	Target string `json:"target"`
}

type SubmitRequest struct {
	EmailTo string `json:"email_to"`
}

type SubmitResponse struct {
	SubmittedAt time.Time          `json:"submitted_at"`
	Entries     []repository.Entry `json:"entries"`
	ReportPath  string             `json:"report_path,omitempty"`
}

type ImportResponse struct {
	Imported int `json:"imported"`
}

func NewAPI(e *timer.Engine, repo repository.TimesheetRepository, snaps *snapshot.Store, mailer SummaryMailer) *API {
	api := &API{
		engine: e,
		repo:   repo,
		snaps:  snaps,
		mailer: mailer,
		mux:    http.NewServeMux(),
	}

	api.setupRoutes()
	return api
}

func (a *API) setupRoutes() {
	a.mux.HandleFunc("/api/timers", a.handleTimers)
	a.mux.HandleFunc("/api/timers/", a.handleTimerByID)
	a.mux.HandleFunc("/api/timesheets/submit", a.submitTimesheet)
	a.mux.HandleFunc("/api/import/tasks", a.importTasks)

	dash := dashboard.NewDashboard(a.engine, a.repo)
	a.mux.HandleFunc("/api/dashboard/stats", dash.GetStats)
	a.mux.HandleFunc("/api/dashboard/history", dash.GetHistory)
	a.mux.HandleFunc("/api/dashboard/totals", dash.GetTotals)
}

func (a *API) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.mux.ServeHTTP(w, r)
}

func (a *API) handleTimers(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.WriteJSONError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	states := a.engine.Snapshot()
	views := make([]TimerView, 0, len(states))
	for _, s := range states {
		views = append(views, a.viewOf(s.TaskID))
	}

	httputil.WriteJSON(w, http.StatusOK, views)
}

func (a *API) handleTimerByID(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/timers/")
	if rest == "" {
		httputil.WriteJSONError(w, "Task ID is required", http.StatusBadRequest)
		return
	}

	id, action, _ := strings.Cut(rest, "/")

	if action == "" {
		switch r.Method {
		case http.MethodGet:
			httputil.WriteJSON(w, http.StatusOK, a.viewOf(id))
		case http.MethodDelete:
			a.engine.Remove(id)
			metrics.RecordTransition("remove")
			w.WriteHeader(http.StatusNoContent)
		default:
			httputil.WriteJSONError(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
		return
	}

	if r.Method != http.MethodPost {
		httputil.WriteJSONError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	switch action {
	case "start":
		a.engine.Start(id)
	case "pause":
		a.engine.Pause(id)
	case "resume":
		a.engine.Resume(id)
	case "reset":
		a.engine.Reset(id)
	case "break/start":
		a.engine.BreakStart(id)
	case "break/end":
		var req BreakEndRequest
		if r.Body != nil {
			// A missing or malformed body means the default target;
			// break ending never fails.
			_ = json.NewDecoder(r.Body).Decode(&req)
		}
		a.engine.BreakEnd(id, timer.ParseTarget(req.Target))
	default:
		httputil.WriteJSONError(w, "Unknown timer action", http.StatusNotFound)
		return
	}

	metrics.RecordTransition(action)
	httputil.WriteJSON(w, http.StatusOK, a.viewOf(id))
}

// submitTimesheet is the day-end flow: flush open spans, persist one entry
// per task with accrued time, reset the accumulators, drop the crash
// snapshot, export a CSV summary, and optionally email it.
func (a *API) submitTimesheet(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httputil.WriteJSONError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if a.repo == nil {
		httputil.WriteJSONError(w, "timesheet submission requires a database", http.StatusServiceUnavailable)
		return
	}

	var req SubmitRequest
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&req)
	}

	a.engine.Flush()
	states := a.engine.Snapshot()
	submittedAt := time.Now()

	entries := make([]repository.Entry, 0, len(states))
	contributing := make([]timer.State, 0, len(states))
	for _, s := range states {
		if s.ActiveMs == 0 && s.BreakMs == 0 {
			continue
		}
		contributing = append(contributing, s)
		entries = append(entries, repository.Entry{
			ID:          uuid.New().String(),
			TaskID:      s.TaskID,
			ActiveMs:    s.ActiveMs,
			BreakMs:     s.BreakMs,
			SubmittedAt: submittedAt,
		})
	}

	if err := a.repo.SaveEntries(r.Context(), entries); err != nil {
		httputil.WriteJSONError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	// The day is closed: accumulators restart from zero, entries stay in
	// the map for tomorrow.
	for _, s := range states {
		a.engine.Reset(s.TaskID)
	}

	if a.snaps != nil {
		if err := a.snaps.Clear(); err != nil {
			log.Printf("failed to clear snapshot after submission: %v", err)
		}
	}

	// One summary table feeds both deliveries: the CSV export on disk and
	// the optional email. All spans are closed by the flush above, so the
	// totals are final regardless of when the summary is rendered.
	summary := report.BuildSummary(contributing, submittedAt)

	reportPath, err := report.SaveCSV(reportDir(), summary, submittedAt)
	if err != nil {
		log.Printf("failed to export timesheet CSV: %v", err)
		reportPath = ""
	}

	if a.mailer != nil && req.EmailTo != "" {
		if err := a.mailer.SendSummary(req.EmailTo, summary, submittedAt); err != nil {
			log.Printf("failed to email timesheet summary: %v", err)
		}
	}

	metrics.RecordSubmission(len(entries))
	httputil.WriteJSON(w, http.StatusOK, SubmitResponse{
		SubmittedAt: submittedAt,
		Entries:     entries,
		ReportPath:  reportPath,
	})
}

func reportDir() string {
	if dir := os.Getenv("REPORT_DIR"); dir != "" {
		return dir
	}

	return "./reports"
}

func (a *API) importTasks(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httputil.WriteJSONError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if a.repo == nil {
		httputil.WriteJSONError(w, "task import requires a database", http.StatusServiceUnavailable)
		return
	}

	defer func() {
		if err := r.Body.Close(); err != nil {
			log.Printf("failed to close request body: %v", err)
		}
	}()

	tasks, err := importer.ParseTasks(r.Body)
	if err != nil {
		httputil.WriteJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := a.repo.SaveCatalogTasks(r.Context(), tasks); err != nil {
		httputil.WriteJSONError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	metrics.RecordTasksImported(len(tasks))
	httputil.WriteJSON(w, http.StatusCreated, ImportResponse{Imported: len(tasks)})
}

func (a *API) viewOf(id string) TimerView {
	return TimerView{
		TaskID:        id,
		Status:        a.engine.Status(id),
		ActiveSeconds: a.engine.CurrentTime(id),
		BreakSeconds:  a.engine.BreakTime(id),
	}
}

