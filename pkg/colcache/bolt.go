package colcache

import (
	"encoding/json"
	"fmt"

	"go.etcd.io/bbolt"
)

var collectionsBucket = []byte("collections")

// BoltStore persists cache entries in a bbolt database so warm collections
// survive process restarts, e.g. between CLI invocations.
type BoltStore struct {
	db *bbolt.DB
}

func NewBoltStore(db *bbolt.DB) *BoltStore {
	return &BoltStore{db: db}
}

func (s *BoltStore) Load(key string) (*Entry, bool, error) {
	var entry *Entry
	err := s.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(collectionsBucket)
		if bucket == nil {
			return nil
		}
		val := bucket.Get([]byte(key))
		if val == nil {
			return nil
		}
		entry = &Entry{}
		return json.Unmarshal(val, entry)
	})
	if err != nil {
		return nil, false, fmt.Errorf("loading cache entry %q: %w", key, err)
	}
	return entry, entry != nil, nil
}

func (s *BoltStore) Save(key string, entry *Entry) error {
	err := s.db.Update(func(tx *bbolt.Tx) error {
		bucket, err := tx.CreateBucketIfNotExists(collectionsBucket)
		if err != nil {
			return err
		}
		if val := bucket.Get([]byte(key)); val != nil {
			var existing Entry
			if err := json.Unmarshal(val, &existing); err == nil && existing.FetchedAt.After(entry.FetchedAt) {
				return nil
			}
		}
		data, err := json.Marshal(entry)
		if err != nil {
			return err
		}
		return bucket.Put([]byte(key), data)
	})
	if err != nil {
		return fmt.Errorf("saving cache entry %q: %w", key, err)
	}
	return nil
}

var _ Store = (*BoltStore)(nil)
