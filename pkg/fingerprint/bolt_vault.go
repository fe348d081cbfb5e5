package fingerprint

import (
	"encoding/json"
	"fmt"

	bolt "go.etcd.io/bbolt"
)

var fingerprintBucket = []byte("fingerprints")

// BoltVault stores fingerprints in a go.etcd.io/bbolt database, giving the
// "object store or similar" language of spec.md §4.9 a durable,
// single-process-safe implementation. Keyed by Hash, so Publish's
// existence check is a plain bucket Get rather than a full scan.
type BoltVault struct {
	db *bolt.DB
}

// OpenBoltVault opens (creating if necessary) a bbolt database at path and
// ensures the fingerprint bucket exists.
func OpenBoltVault(path string) (*BoltVault, error) {
	db, err := bolt.Open(path, 0o600, nil)
	if err != nil {
		return nil, fmt.Errorf("open bolt vault: %w", err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(fingerprintBucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("init fingerprint bucket: %w", err)
	}
	return &BoltVault{db: db}, nil
}

// Close releases the underlying bbolt database file.
func (v *BoltVault) Close() error {
	return v.db.Close()
}

// Publish appends fp if its hash is not already present, keyed by Hash.
func (v *BoltVault) Publish(fp SecretFingerprint) error {
	return v.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(fingerprintBucket)
		key := []byte(fp.Hash)
		if b.Get(key) != nil {
			return nil
		}
		data, err := json.Marshal(fp)
		if err != nil {
			return err
		}
		return b.Put(key, data)
	})
}

// FetchAll returns every fingerprint stored in the bucket.
func (v *BoltVault) FetchAll() ([]SecretFingerprint, error) {
	var all []SecretFingerprint
	err := v.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(fingerprintBucket)
		return b.ForEach(func(_, data []byte) error {
			var fp SecretFingerprint
			if err := json.Unmarshal(data, &fp); err != nil {
				return err
			}
			all = append(all, fp)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return all, nil
}
