package domain

import (
	"fmt"
	"strings"
)

// BatchID groups tasks that were ingested together. Replacing the task pool
// mints a new value, so at any steady state all stored tasks share one.
type BatchID string

type Task struct {
	ID         int64
	URL        string
	TargetType string
	Batch      BatchID
	Used       bool
}

// TaskRow is an ingestion-validated task row, pre-persistence.
type TaskRow struct {
	URL        string
	TargetType string
}

func (r TaskRow) Validate() error {
	if strings.TrimSpace(r.URL) == "" {
		return fmt.Errorf("task url is required")
	}
	return nil
}
