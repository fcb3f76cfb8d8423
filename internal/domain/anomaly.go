package domain

import "time"

type Severity string

const (
	SeverityWarning  Severity = "Warning"
	SeverityCritical Severity = "Critical"
)

// AnomalyRecord is immutable once created.
type AnomalyRecord struct {
	ID          string    `json:"id"`
	MachineID   string    `json:"machine_id"`
	MachineName string    `json:"machine_name"`
	Parameter   string    `json:"parameter"`
	Value       float64   `json:"value"`
	Expected    string    `json:"expected"`
	Severity    Severity  `json:"severity"`
	Timestamp   time.Time `json:"ts"`
}

// Frame is the result of one tick as seen by subscribers.
type Frame struct {
	Seq       uint64          `json:"seq"`
	Timestamp time.Time       `json:"ts"`
	Machines  []Machine       `json:"machines"`
	Anomalies []AnomalyRecord `json:"anomalies"`
	Fresh     []AnomalyRecord `json:"fresh"`
	Skipped   []string        `json:"skipped,omitempty"`
}
