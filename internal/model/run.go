package model

import "time"

// RunStatus is the lifecycle state of a scoring run.
type RunStatus string

const (
	RunStatusRunning  RunStatus = "running"
	RunStatusComplete RunStatus = "complete"
	RunStatusFailed   RunStatus = "failed"
)

// Run records one execution of the pipeline, so fused outputs can be
// compared across reruns.
type Run struct {
	ID        string    `json:"id"`
	Label     string    `json:"label"`
	Status    RunStatus `json:"status"`
	RowCount  int       `json:"row_count"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
