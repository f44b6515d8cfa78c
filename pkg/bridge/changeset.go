package bridge

import (
	"fmt"
	"strings"
	"time"
)

// ChangeType classifies a planned profile operation.
type ChangeType string

const (
	ChangeAdd        ChangeType = "add"
	ChangeDelete     ChangeType = "delete"
	ChangeActivate   ChangeType = "activate"
	ChangeDeactivate ChangeType = "deactivate"
)

// Change is a single profile operation, planned or executed.
type Change struct {
	Type      ChangeType `json:"type"`
	Profile   string     `json:"profile"`
	Interface string     `json:"interface,omitempty"`
	Detail    string     `json:"detail,omitempty"`
}

// ChangeSet is the ordered list of profile operations behind one command.
type ChangeSet struct {
	Operation string    `json:"operation"`
	Target    string    `json:"target"`
	Timestamp time.Time `json:"timestamp"`
	Changes   []Change  `json:"changes"`
}

// NewChangeSet creates an empty ChangeSet for an operation on a target
// connection profile.
func NewChangeSet(operation, target string) *ChangeSet {
	return &ChangeSet{
		Operation: operation,
		Target:    target,
		Timestamp: time.Now(),
		Changes:   make([]Change, 0),
	}
}

// Add appends a change to the set.
func (cs *ChangeSet) Add(changeType ChangeType, profile, iface, detail string) {
	cs.Changes = append(cs.Changes, Change{
		Type:      changeType,
		Profile:   profile,
		Interface: iface,
		Detail:    detail,
	})
}

// IsEmpty returns true if there are no changes.
func (cs *ChangeSet) IsEmpty() bool {
	return len(cs.Changes) == 0
}

// String returns a human-readable representation of the changes.
func (cs *ChangeSet) String() string {
	if cs.IsEmpty() {
		return "No changes"
	}

	var sb strings.Builder
	for _, c := range cs.Changes {
		typeStr := ""
		switch c.Type {
		case ChangeAdd:
			typeStr = "[ADD]"
		case ChangeDelete:
			typeStr = "[DEL]"
		case ChangeActivate:
			typeStr = "[UP]"
		case ChangeDeactivate:
			typeStr = "[DOWN]"
		}

		sb.WriteString(fmt.Sprintf("  %-6s %s", typeStr, c.Profile))
		if c.Interface != "" {
			sb.WriteString(fmt.Sprintf(" (%s)", c.Interface))
		}
		if c.Detail != "" {
			sb.WriteString(": " + c.Detail)
		}
		sb.WriteString("\n")
	}

	return sb.String()
}

// Preview returns a formatted preview of the changes.
func (cs *ChangeSet) Preview() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Operation: %s\n", cs.Operation))
	sb.WriteString(fmt.Sprintf("Target: %s\n", cs.Target))
	sb.WriteString(fmt.Sprintf("Changes:\n%s", cs.String()))
	return sb.String()
}
