// Package task creates the migration tasks handed to the executor pool.
package task

import (
	"github.com/google/uuid"

	"github.com/gsi-hpc/ostbalance/pkg/types"
)

// Issuer builds a migration task for a chosen (source, destination, file)
// triple. The implementation is selected once at construction time and
// decides whether the task carries a real migration payload.
type Issuer interface {
	Issue(source, target, path string) *types.Task
}

// MigrateIssuer creates tasks that migrate a file off its source OST.
type MigrateIssuer struct{}

func (MigrateIssuer) Issue(source, target, path string) *types.Task {
	return &types.Task{
		ID:     uuid.New().String(),
		Source: source,
		Target: target,
		Path:   path,
	}
}

// NoopIssuer creates tasks that the executor acknowledges without touching
// the filesystem. Used when running without a real Lustre mount.
type NoopIssuer struct{}

func (NoopIssuer) Issue(source, target, path string) *types.Task {
	return &types.Task{
		ID:     uuid.New().String(),
		Source: source,
		Target: target,
		Path:   path,
		Noop:   true,
	}
}
