package history

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.etcd.io/bbolt"

	"github.com/mtanaka/pricewise/internal/analysis"
	"github.com/mtanaka/pricewise/internal/apperr"
)

const bucketName = "history"

// Entry is one locally cached snapshot of a result. ID and Timestamp are
// immutable once created.
type Entry struct {
	ID        string           `json:"id"`
	Timestamp time.Time        `json:"timestamp"`
	Result    *analysis.Result `json:"result"`
}

// IDGenerator generates unique ids for stored entries.
type IDGenerator interface {
	Generate() string
}

// TimeSource provides the current time.
type TimeSource interface {
	Now() time.Time
}

type uuidGenerator struct{}

func (g *uuidGenerator) Generate() string {
	return uuid.NewString()
}

type defaultTimeSource struct{}

func (t *defaultTimeSource) Now() time.Time {
	return time.Now()
}

// Store is an append-only log of saved results backed by bbolt. Entries are
// keyed internally by insertion sequence so List returns append order;
// membership changes only through Append, Remove and Clear.
type Store struct {
	db          *bbolt.DB
	idGenerator IDGenerator
	timeSource  TimeSource
}

// Open opens (creating if needed) the history database at path.
func Open(path string) (*Store, error) {
	return OpenWithDeps(path, &uuidGenerator{}, &defaultTimeSource{})
}

// OpenWithDeps opens the history database with custom id and time sources for
// testing.
func OpenWithDeps(path string, idGen IDGenerator, timeSrc TimeSource) (*Store, error) {
	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("opening history database: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucketName))
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating history bucket: %w", err)
	}

	return &Store{db: db, idGenerator: idGen, timeSource: timeSrc}, nil
}

// Append stores a snapshot of result under a freshly generated id and returns
// the new entry. Later mutation of the caller's result does not affect the
// stored copy.
func (s *Store) Append(result *analysis.Result) (*Entry, error) {
	entry := &Entry{
		ID:        s.idGenerator.Generate(),
		Timestamp: s.timeSource.Now(),
		Result:    result.Clone(),
	}

	err := s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(bucketName))
		seq, err := bucket.NextSequence()
		if err != nil {
			return fmt.Errorf("allocating sequence: %w", err)
		}
		data, err := json.Marshal(entry)
		if err != nil {
			return fmt.Errorf("marshaling entry: %w", err)
		}
		return bucket.Put(seqKey(seq), data)
	})
	if err != nil {
		return nil, err
	}
	return entry, nil
}

// List returns all entries in append order.
func (s *Store) List() ([]*Entry, error) {
	entries := make([]*Entry, 0)
	err := s.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(bucketName))
		return bucket.ForEach(func(k, v []byte) error {
			var entry Entry
			if err := json.Unmarshal(v, &entry); err != nil {
				return fmt.Errorf("unmarshaling entry: %w", err)
			}
			entries = append(entries, &entry)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// Get retrieves one entry by id.
func (s *Store) Get(id string) (*Entry, error) {
	var found *Entry
	err := s.db.View(func(tx *bbolt.Tx) error {
		_, entry, err := findByID(tx, id)
		if err != nil {
			return err
		}
		found = entry
		return nil
	})
	if err != nil {
		return nil, err
	}
	return found, nil
}

// Update replaces the stored result for id with a snapshot of result. The
// entry's id and timestamp are preserved.
func (s *Store) Update(id string, result *analysis.Result) (*Entry, error) {
	var updated *Entry
	err := s.db.Update(func(tx *bbolt.Tx) error {
		key, entry, err := findByID(tx, id)
		if err != nil {
			return err
		}
		entry.Result = result.Clone()
		data, err := json.Marshal(entry)
		if err != nil {
			return fmt.Errorf("marshaling entry: %w", err)
		}
		if err := tx.Bucket([]byte(bucketName)).Put(key, data); err != nil {
			return err
		}
		updated = entry
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Remove deletes the entry with the given id. A missing id reports
// apperr.ErrNotFound.
func (s *Store) Remove(id string) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		key, _, err := findByID(tx, id)
		if err != nil {
			return err
		}
		return tx.Bucket([]byte(bucketName)).Delete(key)
	})
}

// Clear removes all entries.
func (s *Store) Clear() error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		if err := tx.DeleteBucket([]byte(bucketName)); err != nil {
			return fmt.Errorf("dropping history bucket: %w", err)
		}
		_, err := tx.CreateBucket([]byte(bucketName))
		return err
	})
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func seqKey(seq uint64) []byte {
	key := make([]byte, 8)
	binary.BigEndian.PutUint64(key, seq)
	return key
}

func findByID(tx *bbolt.Tx, id string) ([]byte, *Entry, error) {
	bucket := tx.Bucket([]byte(bucketName))
	cursor := bucket.Cursor()
	for k, v := cursor.First(); k != nil; k, v = cursor.Next() {
		var entry Entry
		if err := json.Unmarshal(v, &entry); err != nil {
			return nil, nil, fmt.Errorf("unmarshaling entry: %w", err)
		}
		if entry.ID == id {
			key := make([]byte, len(k))
			copy(key, k)
			return key, &entry, nil
		}
	}
	return nil, nil, fmt.Errorf("history entry %s: %w", id, apperr.ErrNotFound)
}
