// Package report builds day-end timesheet summaries from an engine snapshot
// and delivers them as CSV files or email.
package report

import (
	"encoding/csv"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/stintapp/stint/internal/timer"
)

// BuildSummary renders a snapshot as a table: header, one row per task, and
// a totals row. Seconds are computed against now so tasks still running or
// on break are reported with their open span included.
func BuildSummary(states []timer.State, now time.Time) [][]string {
	data := [][]string{
		{"Task ID", "Status", "Active (s)", "Break (s)"},
	}

	var totalActive, totalBreak int64
	for i := range states {
		s := &states[i]
		active := timer.ActiveSeconds(s, now)
		brk := timer.BreakSeconds(s, now)
		totalActive += active
		totalBreak += brk

		data = append(data, []string{
			s.TaskID,
			string(s.Status),
			fmt.Sprintf("%d", active),
			fmt.Sprintf("%d", brk),
		})
	}

	data = append(data, []string{
		"TOTAL",
		"",
		fmt.Sprintf("%d", totalActive),
		fmt.Sprintf("%d", totalBreak),
	})

	return data
}

// SaveCSV writes data under dir with a timestamped filename and returns the
// full path.
func SaveCSV(dir string, data [][]string, now time.Time) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}

	filename := fmt.Sprintf("stint_timesheet_%s.csv", now.Format("20060102_150405"))
	fullPath := filepath.Join(dir, filename)

	file, err := os.Create(fullPath)
	if err != nil {
		return "", err
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			log.Printf("failed to close report file: %v", closeErr)
		}
	}()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	if err := writer.WriteAll(data); err != nil {
		return "", err
	}

	return fullPath, nil
}
