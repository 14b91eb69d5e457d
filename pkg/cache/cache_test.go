package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gsi-hpc/ostbalance/pkg/types"
)

func TestPopIsLIFO(t *testing.T) {
	c := New()
	c.Add(&types.MigrateItem{Target: "ost0", Path: "dir/a"})
	c.Add(&types.MigrateItem{Target: "ost0", Path: "dir/b"})
	c.Add(&types.MigrateItem{Target: "ost0", Path: "dir/c"})

	for _, want := range []string{"dir/c", "dir/b", "dir/a"} {
		item, ok := c.Pop("ost0")
		require.True(t, ok)
		assert.Equal(t, want, item.Path)
	}

	_, ok := c.Pop("ost0")
	assert.False(t, ok)
}

func TestSizeAndSources(t *testing.T) {
	c := New()
	assert.Equal(t, 0, c.Len())
	assert.Empty(t, c.Sources())

	c.Add(&types.MigrateItem{Target: "ost0", Path: "a"})
	c.Add(&types.MigrateItem{Target: "ost1", Path: "b"})
	c.Add(&types.MigrateItem{Target: "ost1", Path: "c"})

	assert.Equal(t, 2, c.Len())
	assert.Equal(t, 1, c.Size("ost0"))
	assert.Equal(t, 2, c.Size("ost1"))
	assert.Equal(t, 0, c.Size("ost9"))
	assert.ElementsMatch(t, []string{"ost0", "ost1"}, c.Sources())
}

// A drained entry stays visible until deleted, so the generator can decide
// when to prune it.
func TestDrainedEntryRemainsUntilDeleted(t *testing.T) {
	c := New()
	c.Add(&types.MigrateItem{Target: "ost0", Path: "a"})

	_, ok := c.Pop("ost0")
	require.True(t, ok)

	assert.Equal(t, []string{"ost0"}, c.Sources())
	assert.Equal(t, 0, c.Size("ost0"))

	c.Delete("ost0")
	assert.Empty(t, c.Sources())
}

func TestSnapshotIsIndependent(t *testing.T) {
	c := New()
	c.Add(&types.MigrateItem{Target: "ost0", Path: "a"})
	c.Add(&types.MigrateItem{Target: "ost0", Path: "b"})

	snap := c.Snapshot()
	require.Len(t, snap["ost0"], 2)

	_, ok := c.Pop("ost0")
	require.True(t, ok)

	// the snapshot must not shrink with the cache
	assert.Len(t, snap["ost0"], 2)
}
