package state

import (
	"fmt"

	"github.com/gsi-hpc/ostbalance/pkg/types"
)

// Role selects the comparison direction for fill-level eligibility. A target
// is a useful migration source while it sits above the fill threshold and a
// useful destination while it sits below it.
type Role int

const (
	RoleSource Role = iota
	RoleDestination
)

func (r Role) String() string {
	if r == RoleSource {
		return "source"
	}
	return "destination"
}

// eligible reports whether a target at the given fill level may participate
// in a new pairing in this role.
func (r Role) eligible(fillLevel, threshold int) bool {
	if r == RoleSource {
		return fillLevel > threshold
	}
	return fillLevel < threshold
}

// Tracker holds the state machine for every target that has been evaluated at
// least once in a single role. It is owned by the generator loop and is not
// safe for concurrent use.
type Tracker struct {
	role      Role
	threshold int
	states    map[string]types.TargetState
}

// NewTracker creates an empty tracker for one role.
func NewTracker(role Role, threshold int) *Tracker {
	return &Tracker{
		role:      role,
		threshold: threshold,
		states:    make(map[string]types.TargetState),
	}
}

// Evaluate applies a fresh fill-level classification to target. In-flight
// targets keep precedence: a blocked target that turns ineligible becomes
// pending-lock instead of locked, so that its completion lands on locked.
// A target absent from the sample indicates the filesystem and the tracker
// have diverged, which is unrecoverable.
func (t *Tracker) Evaluate(target string, levels types.FillLevels) error {
	fillLevel, ok := levels[target]
	if !ok {
		return fmt.Errorf("%s target %s missing from fill level sample", t.role, target)
	}

	current, tracked := t.states[target]

	if t.role.eligible(fillLevel, t.threshold) {
		if !tracked || current == types.StateLocked {
			t.states[target] = types.StateReady
		}
		return nil
	}

	switch {
	case !tracked, current == types.StateReady:
		t.states[target] = types.StateLocked
	case current == types.StateBlocked:
		t.states[target] = types.StatePendingLock
	}
	return nil
}

// Complete advances target past a finished task: blocked becomes ready,
// pending-lock becomes locked. Any other observed state means a completion
// arrived for a target that was never blocked, which indicates corrupted
// bookkeeping.
func (t *Tracker) Complete(target string) error {
	switch t.states[target] {
	case types.StateBlocked:
		t.states[target] = types.StateReady
	case types.StatePendingLock:
		t.states[target] = types.StateLocked
	default:
		return fmt.Errorf("%s target %s reported completion in state %s",
			t.role, target, t.states[target])
	}
	return nil
}

// Block marks target as the subject of an in-flight task.
func (t *Tracker) Block(target string) {
	t.states[target] = types.StateBlocked
}

// State returns the tracked state of target. The second return value is false
// if the target has never been evaluated in this role.
func (t *Tracker) State(target string) (types.TargetState, bool) {
	s, ok := t.states[target]
	return s, ok
}

// Remove forgets target entirely.
func (t *Tracker) Remove(target string) {
	delete(t.states, target)
}

// Targets returns the names of all tracked targets in map iteration order.
func (t *Tracker) Targets() []string {
	targets := make([]string, 0, len(t.states))
	for target := range t.states {
		targets = append(targets, target)
	}
	return targets
}

// FirstReady returns the first target in map iteration order whose state is
// ready, or false if none currently is.
func (t *Tracker) FirstReady() (string, bool) {
	for target, s := range t.states {
		if s == types.StateReady {
			return target, true
		}
	}
	return "", false
}

// Len returns the number of tracked targets.
func (t *Tracker) Len() int {
	return len(t.states)
}
