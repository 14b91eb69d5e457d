// Package intake ingests newly submitted migration lists into the item cache.
package intake

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/gsi-hpc/ostbalance/pkg/cache"
	"github.com/gsi-hpc/ostbalance/pkg/log"
	"github.com/gsi-hpc/ostbalance/pkg/metrics"
	"github.com/gsi-hpc/ostbalance/pkg/types"
)

const (
	// PendingSuffix marks intake files awaiting ingestion.
	PendingSuffix = ".input"

	// DoneSuffix is appended to a processed file's name. Processed files are
	// never deleted, supporting audit and replay.
	DoneSuffix = ".done"
)

// Scanner discovers pending intake files and merges their contents into the
// migration item cache. A file is renamed with the done suffix only after its
// content is fully merged: a crash mid-merge reprocesses the file safely, and
// a fully merged file is never read twice.
type Scanner struct {
	dir    string
	cache  *cache.Cache
	logger zerolog.Logger
}

// NewScanner creates a scanner over dir feeding c.
func NewScanner(dir string, c *cache.Cache) *Scanner {
	return &Scanner{
		dir:    dir,
		cache:  c,
		logger: log.WithComponent("intake"),
	}
}

// Scan processes every pending intake file exactly once and returns the
// number of files merged.
func (s *Scanner) Scan() (int, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return 0, fmt.Errorf("failed to read intake dir: %w", err)
	}

	processed := 0
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), PendingSuffix) {
			continue
		}
		path := filepath.Join(s.dir, entry.Name())
		if err := s.loadFile(path); err != nil {
			return processed, err
		}
		if err := os.Rename(path, path+DoneSuffix); err != nil {
			return processed, fmt.Errorf("failed to mark %s processed: %w", path, err)
		}
		processed++
		metrics.InputFilesProcessed.Inc()
	}

	s.logger.Info().Int("files", processed).Msg("processed intake files")
	return processed, nil
}

// loadFile merges one intake file. Each line must decompose into exactly two
// whitespace-separated tokens (target, path) and must not contain the wire
// field separator; violating lines are counted and skipped, never fatal.
func (s *Scanner) loadFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open intake file: %w", err)
	}
	defer f.Close()

	loaded, skipped := 0, 0

	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())

		if strings.Contains(line, types.FieldSeparator) {
			s.logger.Warn().Str("line", line).Msg("skipped line containing field separator")
			skipped++
			metrics.InputLinesSkipped.Inc()
			continue
		}

		fields := strings.Fields(line)
		if len(fields) != 2 {
			s.logger.Warn().Str("line", line).Msg("skipped malformed line")
			skipped++
			metrics.InputLinesSkipped.Inc()
			continue
		}

		s.cache.Add(&types.MigrateItem{Target: fields[0], Path: fields[1]})
		loaded++
		metrics.InputLinesLoaded.Inc()
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("failed to read intake file %s: %w", path, err)
	}

	s.logger.Info().
		Str("file", path).
		Int("loaded", loaded).
		Int("skipped", skipped).
		Msg("loaded intake file")
	return nil
}
