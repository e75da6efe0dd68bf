package store

import (
	"encoding/json"
	"time"

	bolt "github.com/boltdb/bolt"

	"github.com/vantagepay/payment-engine/internal/model"
)

const bucketName = "payments"

// BoltStore persists payment results in a single-file BoltDB database. No
// external database process is required to resume in-flight payments after
// a restart.
type BoltStore struct {
	db *bolt.DB
}

// NewBoltStore opens (or creates) the database at path and ensures the
// payments bucket exists.
func NewBoltStore(path string) (*BoltStore, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, err
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucketName))
		return err
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &BoltStore{db: db}, nil
}

// Close releases the database file lock.
func (s *BoltStore) Close() error {
	return s.db.Close()
}

// Save upserts the record keyed by result id. Writing an identical payload
// is skipped entirely, so replayed saves cause no extra disk traffic.
func (s *BoltStore) Save(result *model.PaymentResult) error {
	data, err := json.Marshal(result)
	if err != nil {
		return err
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucketName))
		if existing := b.Get([]byte(result.ID)); existing != nil && string(existing) == string(data) {
			return nil
		}
		return b.Put([]byte(result.ID), data)
	})
}

// Get retrieves a record by id.
func (s *BoltStore) Get(id string) (*model.PaymentResult, bool, error) {
	var result model.PaymentResult
	found := false

	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucketName))
		v := b.Get([]byte(id))
		if v == nil {
			return nil
		}
		found = true
		return json.Unmarshal(v, &result)
	})
	if err != nil {
		return nil, false, err
	}
	if !found {
		return nil, false, nil
	}
	return &result, true, nil
}
