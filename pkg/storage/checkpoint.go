// Package storage persists the pending migration item cache across restarts.
package storage

import (
	"encoding/json"
	"fmt"

	bolt "go.etcd.io/bbolt"

	"github.com/gsi-hpc/ostbalance/pkg/types"
)

var bucketPendingItems = []byte("pending_items")

// CheckpointStore is a BoltDB-backed snapshot of the migration item cache.
// Intake files are renamed once their content is merged, so the checkpoint is
// the only durable copy of items that have been ingested but not yet paired.
type CheckpointStore struct {
	db *bolt.DB
}

// Open opens or creates the checkpoint database at path.
func Open(path string) (*CheckpointStore, error) {
	db, err := bolt.Open(path, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open checkpoint db: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketPendingItems)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create checkpoint bucket: %w", err)
	}

	return &CheckpointStore{db: db}, nil
}

// Save replaces the stored snapshot with the given per-source pending items.
func (s *CheckpointStore) Save(items map[string][]*types.MigrateItem) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		if err := tx.DeleteBucket(bucketPendingItems); err != nil {
			return err
		}
		b, err := tx.CreateBucket(bucketPendingItems)
		if err != nil {
			return err
		}
		for source, pending := range items {
			data, err := json.Marshal(pending)
			if err != nil {
				return err
			}
			if err := b.Put([]byte(source), data); err != nil {
				return err
			}
		}
		return nil
	})
}

// Load returns the stored snapshot.
func (s *CheckpointStore) Load() (map[string][]*types.MigrateItem, error) {
	items := make(map[string][]*types.MigrateItem)
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketPendingItems)
		return b.ForEach(func(k, v []byte) error {
			var pending []*types.MigrateItem
			if err := json.Unmarshal(v, &pending); err != nil {
				return fmt.Errorf("corrupt checkpoint entry for %s: %w", k, err)
			}
			items[string(k)] = pending
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return items, nil
}

// Close closes the database.
func (s *CheckpointStore) Close() error {
	return s.db.Close()
}
