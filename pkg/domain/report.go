package domain

import "time"

// CycleReport summarizes one fetch-select-deliver pass for a single feed
type CycleReport struct {
	Feed      string        `json:"feed"`
	Delivered int           `json:"delivered"`
	StoppedAt string        `json:"stopped_at,omitempty"` // entry id where delivery halted, if any
	Err       string        `json:"error,omitempty"`
	StartedAt time.Time     `json:"started_at"`
	Elapsed   time.Duration `json:"elapsed"`
}

// Failed reports whether the cycle ended with any error or a halted entry
func (r CycleReport) Failed() bool { return r.Err != "" || r.StoppedAt != "" }

// RunReport aggregates cycle reports for one orchestrator run
type RunReport struct {
	Cycles    []CycleReport `json:"cycles"`
	Delivered int           `json:"delivered"`
	Failed    int           `json:"failed"`
	StartedAt time.Time     `json:"started_at"`
	Elapsed   time.Duration `json:"elapsed"`
}
