// Package storage persists conversion outputs in a pebble database keyed by
// ksuid, so the HTTP service can hand back an id instead of the payload.
package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/cockroachdb/pebble"
	"github.com/segmentio/ksuid"
)

// ErrNotFound is returned when no result exists for an id
var ErrNotFound = errors.New("result not found")

var (
	metaPrefix = []byte("meta/")
	dataPrefix = []byte("data/")
)

// Metadata describes a stored result
type Metadata struct {
	ID          ksuid.KSUID `json:"id"`
	RunID       ksuid.KSUID `json:"run_id"`
	Direction   string      `json:"direction"`
	Records     int         `json:"records"`
	Skipped     int         `json:"skipped"`
	ContentType string      `json:"content_type"`
	Size        int64       `json:"size"`
	CreatedAt   time.Time   `json:"created_at"`
}

// Result is a stored conversion output and its metadata
type Result struct {
	Metadata
	Data []byte `json:"-"`
}

// DefaultStorage is the pebble-backed result store
type DefaultStorage struct {
	db *pebble.DB
}

// NewDefaultStorage opens or creates a store in path
func NewDefaultStorage(path string) (*DefaultStorage, error) {
	db, err := pebble.Open(path, &pebble.Options{})
	if err != nil {
		return nil, fmt.Errorf("failed to open result store: %w", err)
	}
	return &DefaultStorage{db: db}, nil
}

func key(prefix []byte, id ksuid.KSUID) []byte {
	k := make([]byte, 0, len(prefix)+len(id))
	k = append(k, prefix...)
	return append(k, id.Bytes()...)
}

// Create stores res under a new id. ID, Size and CreatedAt are filled in.
func (s *DefaultStorage) Create(res *Result) (ksuid.KSUID, error) {
	id := ksuid.New()
	res.ID = id
	res.Size = int64(len(res.Data))
	if res.CreatedAt.IsZero() {
		res.CreatedAt = time.Now().UTC()
	}

	meta, err := json.Marshal(res.Metadata)
	if err != nil {
		return ksuid.Nil, fmt.Errorf("failed to marshal metadata: %w", err)
	}

	batch := s.db.NewBatch()
	defer batch.Close()
	if err := batch.Set(key(metaPrefix, id), meta, nil); err != nil {
		return ksuid.Nil, err
	}
	if err := batch.Set(key(dataPrefix, id), res.Data, nil); err != nil {
		return ksuid.Nil, err
	}
	if err := batch.Commit(pebble.NoSync); err != nil {
		return ksuid.Nil, fmt.Errorf("failed to store result: %w", err)
	}

	return id, nil
}

// Stat returns the metadata of a result without its data
func (s *DefaultStorage) Stat(id ksuid.KSUID) (*Metadata, error) {
	raw, err := s.get(key(metaPrefix, id))
	if err != nil {
		return nil, err
	}
	var meta Metadata
	if err := json.Unmarshal(raw, &meta); err != nil {
		return nil, fmt.Errorf("failed to unmarshal metadata for %s: %w", id, err)
	}
	return &meta, nil
}

// Read returns a stored result
func (s *DefaultStorage) Read(id ksuid.KSUID) (*Result, error) {
	meta, err := s.Stat(id)
	if err != nil {
		return nil, err
	}
	data, err := s.get(key(dataPrefix, id))
	if err != nil {
		return nil, err
	}
	return &Result{Metadata: *meta, Data: data}, nil
}

// Delete removes a result
func (s *DefaultStorage) Delete(id ksuid.KSUID) error {
	if _, err := s.get(key(metaPrefix, id)); err != nil {
		return err
	}

	batch := s.db.NewBatch()
	defer batch.Close()
	if err := batch.Delete(key(metaPrefix, id), nil); err != nil {
		return err
	}
	if err := batch.Delete(key(dataPrefix, id), nil); err != nil {
		return err
	}
	return batch.Commit(pebble.NoSync)
}

// Close flushes and closes the database
func (s *DefaultStorage) Close() error {
	return s.db.Close()
}

// get copies the value out; pebble only guarantees it until closer.Close.
func (s *DefaultStorage) get(k []byte) ([]byte, error) {
	data, closer, err := s.db.Get(k)
	if err != nil {
		if errors.Is(err, pebble.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	defer closer.Close()

	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}
