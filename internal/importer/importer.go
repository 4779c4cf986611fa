// Package importer parses CSV bulk uploads for the task catalog. The admin
// screens feed the parsed rows straight into the repository.
package importer

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/stintapp/stint/internal/repository"
)

var expectedHeader = []string{"id", "name", "client", "billable"}

// ParseTasks reads catalog task rows from r. The first record must be the
// header "id,name,client,billable"; every following record becomes one task.
// The first malformed record aborts the import with its line number so the
// uploader can fix the file, rather than silently importing half of it.
func ParseTasks(r io.Reader) ([]repository.CatalogTask, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, errors.New("empty file")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}
	if err := validateHeader(header); err != nil {
		return nil, err
	}

	var tasks []repository.CatalogTask
	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		task, err := parseRecord(record)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		tasks = append(tasks, task)
	}

	if len(tasks) == 0 {
		return nil, errors.New("no task rows after header")
	}

	return tasks, nil
}

func validateHeader(header []string) error {
	if len(header) != len(expectedHeader) {
		return fmt.Errorf("expected header %q, got %d columns", strings.Join(expectedHeader, ","), len(header))
	}
	for i, col := range header {
		if !strings.EqualFold(strings.TrimSpace(col), expectedHeader[i]) {
			return fmt.Errorf("expected header column %q, got %q", expectedHeader[i], col)
		}
	}

	return nil
}

func parseRecord(record []string) (repository.CatalogTask, error) {
	var task repository.CatalogTask

	id := strings.TrimSpace(record[0])
	if id == "" {
		return task, errors.New("missing task id")
	}

	name := strings.TrimSpace(record[1])
	if name == "" {
		return task, errors.New("missing task name")
	}

	billable, err := strconv.ParseBool(strings.TrimSpace(record[3]))
	if err != nil {
		return task, fmt.Errorf("invalid billable flag %q", record[3])
	}

	task.ID = id
	task.Name = name
	task.Client = strings.TrimSpace(record[2])
	task.Billable = billable
	return task, nil
}
