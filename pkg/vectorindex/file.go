package vectorindex

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"go.etcd.io/bbolt"
)

var (
	bucketRecords = []byte("records")
	bucketMeta    = []byte("meta")
	keyDimension  = []byte("dimension")
)

// FileIndex is a bbolt-backed vector index. Records are stored as JSON
// values keyed by id; searches scan the full bucket and score in memory.
type FileIndex struct {
	db *bbolt.DB
}

func NewFileIndex(path string) (*FileIndex, error) {
	db, err := bbolt.Open(path, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open vector index file: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		for _, b := range [][]byte{bucketRecords, bucketMeta} {
			if _, err := tx.CreateBucketIfNotExists(b); err != nil {
				return fmt.Errorf("failed to create bucket %s: %w", b, err)
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &FileIndex{db: db}, nil
}

func (f *FileIndex) Close() error {
	return f.db.Close()
}

func (f *FileIndex) Add(ctx context.Context, rec Record) error {
	return f.db.Update(func(tx *bbolt.Tx) error {
		meta := tx.Bucket(bucketMeta)

		// First write establishes the index dimensionality.
		if raw := meta.Get(keyDimension); raw == nil {
			if err := meta.Put(keyDimension, []byte(fmt.Sprintf("%d", len(rec.Embedding)))); err != nil {
				return err
			}
		} else {
			var dim int
			fmt.Sscanf(string(raw), "%d", &dim)
			if dim != len(rec.Embedding) {
				return fmt.Errorf("embedding dimension mismatch: got %d, index has %d", len(rec.Embedding), dim)
			}
		}

		data, err := json.Marshal(rec)
		if err != nil {
			return err
		}
		return tx.Bucket(bucketRecords).Put([]byte(rec.ID), data)
	})
}

func (f *FileIndex) Search(ctx context.Context, vector []float32, topK int) ([]Candidate, error) {
	if topK <= 0 {
		topK = 5
	}

	var candidates []Candidate
	err := f.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketRecords).ForEach(func(k, v []byte) error {
			var rec Record
			if err := json.Unmarshal(v, &rec); err != nil {
				// Skip unreadable entries rather than failing the search.
				return nil
			}
			score := CosineSimilarity(vector, rec.Embedding)
			candidates = append(candidates, Candidate{
				Record:      rec,
				Score:       score,
				VectorScore: score,
			})
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Score > candidates[j].Score
	})
	if len(candidates) > topK {
		candidates = candidates[:topK]
	}
	return candidates, nil
}

func (f *FileIndex) List(ctx context.Context, limit, offset int) ([]Record, error) {
	records := []Record{}
	skipped := 0
	err := f.db.View(func(tx *bbolt.Tx) error {
		c := tx.Bucket(bucketRecords).Cursor()
		for k, v := c.First(); k != nil; k, v = c.Next() {
			if skipped < offset {
				skipped++
				continue
			}
			if limit > 0 && len(records) >= limit {
				return nil
			}
			var rec Record
			if err := json.Unmarshal(v, &rec); err != nil {
				continue
			}
			records = append(records, rec)
		}
		return nil
	})
	return records, err
}

func (f *FileIndex) Delete(ctx context.Context, id string) error {
	return f.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketRecords)
		if b.Get([]byte(id)) == nil {
			return ErrNotFound
		}
		return b.Delete([]byte(id))
	})
}

func (f *FileIndex) Clear(ctx context.Context) error {
	return f.db.Update(func(tx *bbolt.Tx) error {
		if err := tx.DeleteBucket(bucketRecords); err != nil {
			return err
		}
		if err := tx.Bucket(bucketMeta).Delete(keyDimension); err != nil {
			return err
		}
		_, err := tx.CreateBucket(bucketRecords)
		return err
	})
}

func (f *FileIndex) Count(ctx context.Context) (int64, error) {
	var count int64
	err := f.db.View(func(tx *bbolt.Tx) error {
		count = int64(tx.Bucket(bucketRecords).Stats().KeyN)
		return nil
	})
	return count, err
}
