/*
Package generator implements the scheduling loop that drives OST rebalancing.

The generator continuously turns ingested (target, path) records into
migration tasks for the executor pool, constrained by per-target fill levels:
a target qualifies as a migration source while it sits above the configured
fill threshold and as a destination while it sits below it.

# Loop structure

	          ┌─────────────────────────────────────────────┐
	          │              Generator Loop                 │
	          └──────────────────┬──────────────────────────┘
	                             │ each iteration
	                             ▼
	   1. Pairing pass: for every READY source with pending
	      items, pick the first READY destination, pop one
	      item (LIFO), push a task, mark both BLOCKED
	   2. Drain completion signals, advancing both state
	      machines of each finished pair
	   3. Fire due maintenance timers (independent cadences):
	        • fill-level refresh + full state re-derivation
	        • intake re-scan + source bookkeeping
	        • cache-size snapshot + checkpoint save
	   4. Yield briefly (bounded sleep, no busy-spin)

The pairing algorithm is a greedy first-fit: destinations are taken in map
iteration order with no weighting or fairness. This is a known limitation,
kept intentionally simple.

# Ownership

The item cache, both role trackers and the fill-level sample are owned by the
single goroutine running Run. The outbound task queue and the inbound
completion queue are the only shared structures; each guards itself with its
own lock and is never held across an iteration.

A fatal condition (a sampled fill-level mapping missing a tracked target, a
malformed correlation ID, or a completion for a target that was never
blocked) aborts Run with an error. There is no retry logic; restart is left
to the process supervisor.
*/
package generator
