package main

import (
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/gsi-hpc/ostbalance/pkg/config"
	"github.com/gsi-hpc/ostbalance/pkg/generator"
	"github.com/gsi-hpc/ostbalance/pkg/log"
	"github.com/gsi-hpc/ostbalance/pkg/lustre"
	"github.com/gsi-hpc/ostbalance/pkg/metrics"
	"github.com/gsi-hpc/ostbalance/pkg/queue"
	"github.com/gsi-hpc/ostbalance/pkg/storage"
	"github.com/gsi-hpc/ostbalance/pkg/task"
	"github.com/gsi-hpc/ostbalance/pkg/types"
)

var (
	// Version information (set via ldflags during build)
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "ostbalanced",
	Short: "Background scheduler that rebalances files across Lustre OSTs",
	Long: `ostbalanced generates file migration tasks for a Lustre filesystem.

It ingests lists of files pending migration, tracks per-OST fill levels
against a configurable threshold, pairs overfull source OSTs with underfull
destination OSTs, and hands the resulting migration tasks to an executor
worker pool.`,
	Version: Version,
}

var configFile string

func init() {
	rootCmd.SetVersionTemplate(fmt.Sprintf(
		"ostbalanced version %s\nCommit: %s\nBuilt: %s\n",
		Version, Commit, BuildTime,
	))

	runCmd.Flags().StringVarP(&configFile, "config", "c",
		"/etc/ostbalance/ostbalance.yaml", "path to the configuration file")
	rootCmd.AddCommand(runCmd)
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the migration task generator",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(configFile)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		log.Init(log.Config{
			Level:      log.Level(cfg.Log.Level),
			JSONOutput: cfg.Log.JSON,
		})

		tasks := queue.New[*types.Task]()
		results := queue.New[string]()

		var sampler lustre.Sampler
		var issuer task.Issuer
		if cfg.LocalMode {
			sampler = lustre.NewRandomSampler(lustre.DefaultSyntheticTargets)
			issuer = task.NoopIssuer{}
		} else {
			sampler = lustre.NewLfsSampler(cfg.Lustre.LfsBin, cfg.Lustre.FSPath)
			issuer = task.MigrateIssuer{}
		}

		gen := generator.New(cfg, tasks, results, sampler, issuer)

		if cfg.Migration.CheckpointPath != "" {
			cs, err := storage.Open(cfg.Migration.CheckpointPath)
			if err != nil {
				return err
			}
			defer cs.Close()
			gen.WithCheckpoint(cs)
		}

		if cfg.Metrics.ListenAddr != "" {
			go func() {
				mux := http.NewServeMux()
				mux.Handle("/metrics", metrics.Handler())
				if err := http.ListenAndServe(cfg.Metrics.ListenAddr, mux); err != nil {
					log.Logger.Error().Err(err).Msg("metrics listener failed")
				}
			}()
		}

		// In local mode nothing real consumes the task queue, so a stand-in
		// executor acknowledges every task to keep the pairing cycle moving.
		if cfg.LocalMode {
			go echoExecutor(tasks, results)
		}

		errCh := make(chan error, 1)
		go func() {
			errCh <- gen.Run()
		}()

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

		select {
		case sig := <-sigCh:
			log.Logger.Info().Str("signal", sig.String()).Msg("received termination signal")
			gen.Stop()
			err = <-errCh
		case err = <-errCh:
		}

		if err != nil {
			log.Logger.Error().Err(err).Msg("task generator failed")
			return err
		}
		return nil
	},
}

// echoExecutor pops queued tasks and immediately reports them complete.
func echoExecutor(tasks *queue.Queue[*types.Task], results *queue.Queue[string]) {
	for {
		t, ok := tasks.TryPop()
		if !ok {
			time.Sleep(10 * time.Millisecond)
			continue
		}
		results.Push(t.CorrelationID())
	}
}
