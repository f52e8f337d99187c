package domain

import "time"

// Entry represents one deliverable unit of feed content
type Entry struct {
	ID        string // opaque, unique within a feed
	Title     string
	Link      string
	Body      string
	Published time.Time
}

// DeliveryStatus is the outcome of delivering a single entry
type DeliveryStatus int

// delivery outcomes
const (
	StatusDelivered DeliveryStatus = iota
	StatusSkippedTerminal
	StatusRetryExhausted
)

// String returns a human readable status name
func (s DeliveryStatus) String() string {
	switch s {
	case StatusDelivered:
		return "delivered"
	case StatusSkippedTerminal:
		return "skipped-terminal"
	case StatusRetryExhausted:
		return "retry-exhausted"
	}
	return "unknown"
}
