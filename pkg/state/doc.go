/*
Package state implements the per-target eligibility state machine that drives
OST pairing decisions.

Every storage target is tracked independently in two roles, because the same
physical target can simultaneously be a valid migration source (fill level
above the threshold) and a valid destination (fill level below it). Each role
has its own Tracker with the opposite comparison direction.

# States

	READY         eligible for a new pairing
	LOCKED        fill level makes it ineligible, no task in flight
	BLOCKED       subject of an in-flight task, must not be paired again
	PENDING_LOCK  blocked, and turned ineligible while in flight;
	              becomes LOCKED (not READY) on completion

# Transitions

Fill-level evaluation (Evaluate) classifies a target against the threshold
and moves LOCKED or untracked targets to READY when eligible, and READY or
untracked targets to LOCKED when not. In-flight targets take precedence: an
ineligible BLOCKED target becomes PENDING_LOCK, and eligible BLOCKED or
PENDING_LOCK targets stay untouched until their completion arrives.

Completion evaluation (Complete) is a pure state advance with no fill-level
input: BLOCKED becomes READY and PENDING_LOCK becomes LOCKED. A completion
observed in any other state is an unrecoverable consistency violation.

Trackers are owned by the single generator goroutine and perform no locking.
*/
package state
