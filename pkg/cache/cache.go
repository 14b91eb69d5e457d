// Package cache groups pending migration items by their source target.
package cache

import "github.com/gsi-hpc/ostbalance/pkg/types"

// Cache maps a source target to its pending migration items. Items are popped
// in LIFO order; the order among pending items carries no meaning beyond
// that. The cache is owned by the generator loop and is not safe for
// concurrent use.
type Cache struct {
	items map[string][]*types.MigrateItem
}

// New creates an empty cache.
func New() *Cache {
	return &Cache{items: make(map[string][]*types.MigrateItem)}
}

// Add appends item to its source target's collection, creating the entry on
// first sight of that target.
func (c *Cache) Add(item *types.MigrateItem) {
	c.items[item.Target] = append(c.items[item.Target], item)
}

// Pop removes and returns the most recently added item for target.
func (c *Cache) Pop(target string) (*types.MigrateItem, bool) {
	stack := c.items[target]
	if len(stack) == 0 {
		return nil, false
	}
	item := stack[len(stack)-1]
	c.items[target] = stack[:len(stack)-1]
	return item, true
}

// Size returns the number of pending items for target.
func (c *Cache) Size(target string) int {
	return len(c.items[target])
}

// Delete removes target's entry entirely, drained or not.
func (c *Cache) Delete(target string) {
	delete(c.items, target)
}

// Sources returns the source targets currently present, including drained
// entries that have not been pruned yet.
func (c *Cache) Sources() []string {
	sources := make([]string, 0, len(c.items))
	for target := range c.items {
		sources = append(sources, target)
	}
	return sources
}

// Len returns the number of source entries.
func (c *Cache) Len() int {
	return len(c.items)
}

// Snapshot returns a deep copy of the pending items per source, suitable for
// checkpointing while the cache keeps mutating.
func (c *Cache) Snapshot() map[string][]*types.MigrateItem {
	snap := make(map[string][]*types.MigrateItem, len(c.items))
	for target, pending := range c.items {
		copied := make([]*types.MigrateItem, len(pending))
		copy(copied, pending)
		snap[target] = copied
	}
	return snap
}
