package generator

import (
	"fmt"
	"sort"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/gsi-hpc/ostbalance/pkg/cache"
	"github.com/gsi-hpc/ostbalance/pkg/config"
	"github.com/gsi-hpc/ostbalance/pkg/intake"
	"github.com/gsi-hpc/ostbalance/pkg/log"
	"github.com/gsi-hpc/ostbalance/pkg/lustre"
	"github.com/gsi-hpc/ostbalance/pkg/metrics"
	"github.com/gsi-hpc/ostbalance/pkg/queue"
	"github.com/gsi-hpc/ostbalance/pkg/state"
	"github.com/gsi-hpc/ostbalance/pkg/storage"
	"github.com/gsi-hpc/ostbalance/pkg/task"
	"github.com/gsi-hpc/ostbalance/pkg/types"
)

// idleSleep is the bounded yield between loop iterations.
const idleSleep = time.Millisecond

// Generator pairs pending migration items with destination targets and emits
// migration tasks. All mutable state (the item cache, both role trackers and
// the fill-level sample) is owned by the single goroutine running Run;
// concurrency crosses the boundary only at the two queues.
type Generator struct {
	cfg *config.Config

	tasks   *queue.Queue[*types.Task]
	results *queue.Queue[string]

	sampler lustre.Sampler
	issuer  task.Issuer

	cache        *cache.Cache
	sources      *state.Tracker
	destinations *state.Tracker
	levels       types.FillLevels

	scanner    *intake.Scanner
	checkpoint *storage.CheckpointStore

	stopped atomic.Bool
	logger  zerolog.Logger
}

// New creates a generator wired to the given queues, sampler and issuer.
func New(cfg *config.Config, tasks *queue.Queue[*types.Task], results *queue.Queue[string],
	sampler lustre.Sampler, issuer task.Issuer) *Generator {

	itemCache := cache.New()
	threshold := cfg.Migration.OSTFillThreshold

	return &Generator{
		cfg:          cfg,
		tasks:        tasks,
		results:      results,
		sampler:      sampler,
		issuer:       issuer,
		cache:        itemCache,
		sources:      state.NewTracker(state.RoleSource, threshold),
		destinations: state.NewTracker(state.RoleDestination, threshold),
		levels:       make(types.FillLevels),
		scanner:      intake.NewScanner(cfg.Migration.InputDir, itemCache),
		logger:       log.WithComponent("generator"),
	}
}

// WithCheckpoint attaches a checkpoint store that preserves pending items
// across restarts.
func (g *Generator) WithCheckpoint(cs *storage.CheckpointStore) *Generator {
	g.checkpoint = cs
	return g
}

// Stop requests a cooperative shutdown. The loop observes the request at the
// top of its next iteration and exits cleanly.
func (g *Generator) Stop() {
	g.stopped.Store(true)
}

// Run executes the scheduling loop until Stop is called. It returns a non-nil
// error only on an unrecoverable internal failure; the caller decides the
// process exit code.
func (g *Generator) Run() error {
	g.logger.Info().Msg("task generator started")

	if err := g.restoreCheckpoint(); err != nil {
		return err
	}
	if err := g.refreshFillLevels(); err != nil {
		return err
	}
	if err := g.initDestinations(); err != nil {
		return err
	}
	if err := g.ingest(); err != nil {
		return err
	}

	now := time.Now()
	refreshDue := now.Add(g.cfg.FillLevelRefreshInterval())
	rescanDue := now.Add(g.cfg.InputRescanInterval())
	snapshotDue := now.Add(g.cfg.CacheSnapshotInterval())

	for !g.stopped.Load() {
		g.pairOnce()

		if err := g.drainResults(); err != nil {
			return err
		}

		now = time.Now()

		if !now.Before(refreshDue) {
			refreshDue = now.Add(g.cfg.FillLevelRefreshInterval())
			if err := g.refreshFillLevels(); err != nil {
				return err
			}
			if err := g.reevaluateAll(); err != nil {
				return err
			}
		}

		if !now.Before(rescanDue) {
			rescanDue = now.Add(g.cfg.InputRescanInterval())
			if err := g.ingest(); err != nil {
				return err
			}
		}

		if !now.Before(snapshotDue) {
			snapshotDue = now.Add(g.cfg.CacheSnapshotInterval())
			g.snapshotCaches()
			if err := g.saveCheckpoint(); err != nil {
				g.logger.Warn().Err(err).Msg("checkpoint save failed")
			}
		}

		time.Sleep(idleSleep)
	}

	if err := g.saveCheckpoint(); err != nil {
		g.logger.Warn().Err(err).Msg("checkpoint save on shutdown failed")
	}

	g.logger.Info().Msg("task generator finished")
	return nil
}

// pairOnce runs one pairing pass: every ready source with pending items is
// matched with the first ready destination in iteration order. This is a
// greedy first-fit with no load balancing across destinations beyond map
// iteration order.
func (g *Generator) pairOnce() {
	for _, source := range g.cache.Sources() {
		if st, ok := g.sources.State(source); !ok || st != types.StateReady {
			continue
		}
		if g.cache.Size(source) == 0 {
			continue
		}

		dest, ok := g.destinations.FirstReady()
		if !ok {
			continue
		}

		item, ok := g.cache.Pop(source)
		if !ok {
			continue
		}

		t := g.issuer.Issue(source, dest, item.Path)

		g.logger.Debug().
			Str("task_id", t.ID).
			Str("correlation_id", t.CorrelationID()).
			Str("path", t.Path).
			Msg("pushing migration task")

		// The queue push and both state transitions form one logical step:
		// no observer ever sees a queued task without its blocked pair.
		g.tasks.Push(t)
		g.sources.Block(source)
		g.destinations.Block(dest)

		metrics.TasksGenerated.Inc()
	}
}

// drainResults consumes every queued completion signal and advances both
// state machines of the finished pair. Malformed correlation IDs and
// completions for targets that were never blocked are unrecoverable.
func (g *Generator) drainResults() error {
	for {
		id, ok := g.results.TryPop()
		if !ok {
			return nil
		}

		g.logger.Debug().Str("correlation_id", id).Msg("popped completion signal")

		source, dest, err := types.SplitCorrelationID(id)
		if err != nil {
			return err
		}
		if err := g.sources.Complete(source); err != nil {
			return err
		}
		if err := g.destinations.Complete(dest); err != nil {
			return err
		}

		metrics.TasksCompleted.Inc()
	}
}

// refreshFillLevels replaces the fill-level sample wholesale.
func (g *Generator) refreshFillLevels() error {
	timer := prometheus.NewTimer(metrics.FillLevelRefreshDuration)
	start := time.Now()

	levels, err := g.sampler.Sample()
	if err != nil {
		return fmt.Errorf("fill level sampling failed: %w", err)
	}
	timer.ObserveDuration()

	g.levels = levels

	g.logger.Info().
		Dur("elapsed", time.Since(start)).
		Int("targets", len(levels)).
		Msg("fill level update")

	for target, level := range levels {
		g.logger.Debug().Str("target", target).Int("fill_level", level).Msg("target fill level")
		metrics.TargetFillLevel.WithLabelValues(target).Set(float64(level))
	}
	return nil
}

// reevaluateAll re-derives the state of every tracked target in both roles
// from the current sample.
func (g *Generator) reevaluateAll() error {
	for _, target := range g.sources.Targets() {
		if err := g.sources.Evaluate(target, g.levels); err != nil {
			return err
		}
	}
	for _, target := range g.destinations.Targets() {
		if err := g.destinations.Evaluate(target, g.levels); err != nil {
			return err
		}
	}
	return nil
}

// initDestinations seeds the destination tracker from the configured target
// list before the first loop iteration.
func (g *Generator) initDestinations() error {
	for _, target := range g.cfg.DestinationTargets() {
		if err := g.destinations.Evaluate(target, g.levels); err != nil {
			return err
		}
	}
	return nil
}

// ingest scans the intake directory and reconciles the source bookkeeping
// afterwards, whether or not new files arrived, so drained sources are pruned
// on every rescan cycle.
func (g *Generator) ingest() error {
	if _, err := g.scanner.Scan(); err != nil {
		return err
	}
	return g.reconcileSources()
}

// reconcileSources gives newly non-empty sources their first state evaluation
// and prunes drained sources with no task in flight, together with their
// state entries.
func (g *Generator) reconcileSources() error {
	for _, source := range g.cache.Sources() {
		if g.cache.Size(source) > 0 {
			if _, tracked := g.sources.State(source); !tracked {
				if err := g.sources.Evaluate(source, g.levels); err != nil {
					return err
				}
			}
			metrics.CacheItems.WithLabelValues(source).Set(float64(g.cache.Size(source)))
			continue
		}

		st, tracked := g.sources.State(source)
		if tracked && (st == types.StateReady || st == types.StateLocked) {
			g.cache.Delete(source)
			g.sources.Remove(source)
			metrics.CacheItems.DeleteLabelValues(source)
		}
	}
	return nil
}

// snapshotCaches logs the per-source cache sizes for diagnostics.
func (g *Generator) snapshotCaches() {
	sources := g.cache.Sources()
	if len(sources) == 0 {
		g.logger.Info().Msg("no migration item caches")
		return
	}

	sort.Strings(sources)
	for _, source := range sources {
		size := g.cache.Size(source)
		g.logger.Info().Str("source", source).Int("items", size).Msg("cache size")
		metrics.CacheItems.WithLabelValues(source).Set(float64(size))
	}
}

func (g *Generator) restoreCheckpoint() error {
	if g.checkpoint == nil {
		return nil
	}

	items, err := g.checkpoint.Load()
	if err != nil {
		return fmt.Errorf("failed to load checkpoint: %w", err)
	}

	restored := 0
	for _, pending := range items {
		for _, item := range pending {
			g.cache.Add(item)
			restored++
		}
	}
	if restored > 0 {
		g.logger.Info().Int("items", restored).Msg("restored pending items from checkpoint")
	}
	return nil
}

func (g *Generator) saveCheckpoint() error {
	if g.checkpoint == nil {
		return nil
	}
	return g.checkpoint.Save(g.cache.Snapshot())
}
