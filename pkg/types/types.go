// Package types holds the shared data model of the OST rebalancing daemon.
package types

import (
	"fmt"
	"strings"
)

// FieldSeparator is the reserved token used by the executor wire format to
// separate message fields. Intake lines containing it are rejected as unsafe.
const FieldSeparator = ";"

// CorrelationSeparator joins the source and destination target names into a
// task correlation ID.
const CorrelationSeparator = ":"

// TargetState describes the scheduling eligibility of a storage target in a
// single role (source or destination).
type TargetState int

const (
	// StateReady marks a target eligible to participate in a new pairing.
	StateReady TargetState = iota + 1

	// StateLocked marks a target whose fill level makes it currently
	// ineligible, with no task in flight.
	StateLocked

	// StateBlocked marks a target that is the subject of an in-flight task.
	StateBlocked

	// StatePendingLock marks a blocked target whose fill level crossed into
	// ineligible territory while its task was in flight. It becomes locked
	// instead of ready once the task completes.
	StatePendingLock
)

func (s TargetState) String() string {
	switch s {
	case StateReady:
		return "ready"
	case StateLocked:
		return "locked"
	case StateBlocked:
		return "blocked"
	case StatePendingLock:
		return "pending_lock"
	default:
		return fmt.Sprintf("unknown(%d)", int(s))
	}
}

// MigrateItem is a single file awaiting migration off a specific source
// target. Items are immutable once created; ownership moves from the item
// cache into a task when the pairing engine pops them.
type MigrateItem struct {
	Target string `json:"target"`
	Path   string `json:"path"`
}

// FillLevels maps target names to their capacity utilization in percent.
// The mapping is replaced wholesale on every sampler refresh.
type FillLevels map[string]int

// Task is a single file migration handed to the executor pool. Noop tasks
// carry the full pairing information but the executor acknowledges them
// without touching the filesystem.
type Task struct {
	ID     string `json:"id"`
	Source string `json:"source"`
	Target string `json:"target"`
	Path   string `json:"path"`
	Noop   bool   `json:"noop,omitempty"`
}

// CorrelationID returns the "<source>:<target>" key that matches a completion
// signal back to the pairing that produced this task.
func (t *Task) CorrelationID() string {
	return t.Source + CorrelationSeparator + t.Target
}

// SplitCorrelationID decomposes a completion signal into its source and
// destination target names.
func SplitCorrelationID(id string) (source, target string, err error) {
	parts := strings.Split(id, CorrelationSeparator)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("malformed correlation id: %q", id)
	}
	return parts[0], parts[1], nil
}
