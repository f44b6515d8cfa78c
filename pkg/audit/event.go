// Package audit provides audit logging for bridge management operations.
package audit

import (
	"time"

	"github.com/google/uuid"

	"github.com/virtbr-net/virtbr/pkg/bridge"
)

// Event represents one auditable bridge management operation
type Event struct {
	ID         string          `json:"id"`
	Timestamp  time.Time       `json:"timestamp"`
	User       string          `json:"user"`
	Operation  string          `json:"operation"`
	Connection string          `json:"connection,omitempty"`
	Interface  string          `json:"interface,omitempty"`
	Changes    []bridge.Change `json:"changes,omitempty"`
	Success    bool            `json:"success"`
	Error      string          `json:"error,omitempty"`
	DryRun     bool            `json:"dry_run"`
	Duration   time.Duration   `json:"duration"`
}

// Filter defines criteria for querying audit events
type Filter struct {
	User        string
	Operation   string
	Connection  string
	Interface   string
	StartTime   time.Time
	EndTime     time.Time
	SuccessOnly bool
	FailureOnly bool
	Limit       int
	Offset      int
}

// NewEvent creates a new audit event
func NewEvent(user, operation string) *Event {
	return &Event{
		ID:        uuid.NewString(),
		Timestamp: time.Now(),
		User:      user,
		Operation: operation,
	}
}

// WithConnection sets the connection profile name
func (e *Event) WithConnection(name string) *Event {
	e.Connection = name
	return e
}

// WithInterface sets the interface name
func (e *Event) WithInterface(iface string) *Event {
	e.Interface = iface
	return e
}

// WithChanges sets the executed or planned changes
func (e *Event) WithChanges(changes []bridge.Change) *Event {
	e.Changes = changes
	return e
}

// WithSuccess marks the event as successful
func (e *Event) WithSuccess() *Event {
	e.Success = true
	return e
}

// WithError marks the event as failed
func (e *Event) WithError(err error) *Event {
	e.Success = false
	if err != nil {
		e.Error = err.Error()
	}
	return e
}

// WithDuration sets the operation duration
func (e *Event) WithDuration(d time.Duration) *Event {
	e.Duration = d
	return e
}

// WithDryRun marks whether the operation ran in dry-run mode
func (e *Event) WithDryRun(dryRun bool) *Event {
	e.DryRun = dryRun
	return e
}
