package store

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"go.etcd.io/bbolt"

	"exhibitrag/internal/domain"
)

// Builder writes a fresh corpus database. Ingestion builds to a scratch
// path, commits, then renames the file over the live database so in-flight
// queries only ever see a complete corpus.
type Builder struct {
	db    *bbolt.DB
	path  string
	model string
	dim   int
	count int
}

// NewBuilder creates a new corpus database at path, replacing any partial
// file left behind by an earlier failed build.
func NewBuilder(path, model string, dimension int) (*Builder, error) {
	if dimension <= 0 {
		return nil, fmt.Errorf("invalid dimension: %d", dimension)
	}

	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to clear stale build file: %w", err)
	}

	db, err := bbolt.Open(path, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create corpus db: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		for _, b := range [][]byte{bucketWorks, bucketVectors, bucketManifest} {
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

	return &Builder{db: db, path: path, model: model, dim: dimension}, nil
}

// Add stores one work together with its embedding. The work and its vector
// are written in the same transaction so the two buckets stay in lock-step.
// A duplicate id is an error: overwriting would desync the manifest count
// from the number of stored works.
func (b *Builder) Add(work domain.Work, vector []float32) error {
	if work.ID == "" {
		return fmt.Errorf("work has no identifier")
	}
	if len(vector) != b.dim {
		return fmt.Errorf("%w: work %s has %d, builder wants %d",
			domain.ErrDimensionMismatch, work.ID, len(vector), b.dim)
	}

	workData, err := json.Marshal(work)
	if err != nil {
		return fmt.Errorf("failed to encode work %s: %w", work.ID, err)
	}
	vecData, err := json.Marshal(vector)
	if err != nil {
		return fmt.Errorf("failed to encode vector %s: %w", work.ID, err)
	}

	err = b.db.Update(func(tx *bbolt.Tx) error {
		works := tx.Bucket(bucketWorks)
		if works.Get([]byte(work.ID)) != nil {
			return fmt.Errorf("duplicate work id: %s", work.ID)
		}
		if err := works.Put([]byte(work.ID), workData); err != nil {
			return err
		}
		return tx.Bucket(bucketVectors).Put([]byte(work.ID), vecData)
	})
	if err != nil {
		return err
	}

	b.count++
	return nil
}

// Commit writes the manifest and closes the database file.
func (b *Builder) Commit() error {
	manifest := Manifest{
		SchemaVersion: CurrentSchemaVersion,
		Model:         b.model,
		Dimension:     b.dim,
		Count:         b.count,
		BuiltAt:       time.Now().Unix(),
	}
	data, err := json.Marshal(manifest)
	if err != nil {
		return err
	}

	err = b.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketManifest).Put(keyManifest, data)
	})
	if err != nil {
		b.db.Close()
		return err
	}

	return b.db.Close()
}

// Abort discards the build, closing and removing the scratch file.
func (b *Builder) Abort() error {
	b.db.Close()
	if err := os.Remove(b.path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
