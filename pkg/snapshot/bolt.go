package snapshot

import (
	"context"
	"time"

	bolt "go.etcd.io/bbolt"
)

// BucketName is the bolt bucket snapshots are kept in.
const BucketName = "snapshots"

// BoltStore keeps snapshots in a bolt database file.
type BoltStore struct {
	db *bolt.DB
}

// OpenBolt opens or creates the database at path.
func OpenBolt(path string) (*BoltStore, error) {
	db, err := bolt.Open(path, 0644, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, backendError("open", err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(BucketName))
		return err
	})
	if err != nil {
		db.Close()
		return nil, backendError("open", err)
	}
	return &BoltStore{db: db}, nil
}

// Save stores the encoded snapshot.
func (s *BoltStore) Save(ctx context.Context, id string, snap Snapshot) error {
	data := Encode(snap)
	err := s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(BucketName)).Put([]byte(id), data)
	})
	if err != nil {
		return backendError("save", err)
	}
	return nil
}

// Load reads and decodes a snapshot.
func (s *BoltStore) Load(ctx context.Context, id string) (Snapshot, error) {
	var data []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket([]byte(BucketName)).Get([]byte(id))
		if v != nil {
			// v is only valid for the life of the transaction
			data = append([]byte(nil), v...)
		}
		return nil
	})
	if err != nil {
		return Snapshot{}, backendError("load", err)
	}
	if data == nil {
		return Snapshot{}, ErrNotFound
	}
	return Decode(data)
}

// Delete removes a snapshot.
func (s *BoltStore) Delete(ctx context.Context, id string) error {
	err := s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(BucketName)).Delete([]byte(id))
	})
	if err != nil {
		return backendError("delete", err)
	}
	return nil
}

// Close closes the database file.
func (s *BoltStore) Close() error {
	return s.db.Close()
}
