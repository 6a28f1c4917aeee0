package store

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"sort"
	"sync"

	"go.etcd.io/bbolt"

	"exhibitrag/internal/domain"
)

var (
	bucketWorks    = []byte("works")
	bucketVectors  = []byte("vectors")
	bucketManifest = []byte("manifest")
	keyManifest    = []byte("info")
)

// CurrentSchemaVersion is the on-disk schema version. Increment when making
// breaking changes to the storage format.
const CurrentSchemaVersion = 1

// Manifest describes how a corpus database was built. The embedder used for
// queries must match the recorded model and dimension.
type Manifest struct {
	SchemaVersion int    `json:"schema_version"`
	Model         string `json:"model"`
	Dimension     int    `json:"dimension"`
	Count         int    `json:"count"`
	BuiltAt       int64  `json:"built_at"`
}

// Store is a read-only view over a persisted corpus database: work records,
// their embeddings, and the build manifest. Vectors are loaded into memory
// at open time; search is brute-force cosine over the full corpus.
type Store struct {
	db       *bbolt.DB
	path     string
	manifest Manifest

	mu      sync.RWMutex
	vectors map[string][]float32
}

// Open opens an existing corpus database for querying. A missing or
// unopenable file fails with domain.ErrIndexUnavailable.
func Open(path string) (*Store, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrIndexUnavailable, path)
	}

	db, err := bbolt.Open(path, 0600, &bbolt.Options{ReadOnly: true})
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %v", domain.ErrIndexUnavailable, path, err)
	}

	s := &Store{
		db:      db,
		path:    path,
		vectors: make(map[string][]float32),
	}

	if err := s.load(); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: %v", domain.ErrIndexUnavailable, err)
	}

	return s, nil
}

// load reads the manifest and all vectors into memory.
func (s *Store) load() error {
	return s.db.View(func(tx *bbolt.Tx) error {
		mb := tx.Bucket(bucketManifest)
		if mb == nil {
			return fmt.Errorf("manifest bucket missing (database never built?)")
		}
		data := mb.Get(keyManifest)
		if data == nil {
			return fmt.Errorf("manifest entry missing")
		}
		if err := json.Unmarshal(data, &s.manifest); err != nil {
			return fmt.Errorf("corrupt manifest: %w", err)
		}
		if s.manifest.SchemaVersion != CurrentSchemaVersion {
			return fmt.Errorf("schema version %d not supported (want %d), rebuild the database",
				s.manifest.SchemaVersion, CurrentSchemaVersion)
		}

		if tx.Bucket(bucketWorks) == nil {
			return fmt.Errorf("works bucket missing")
		}
		vb := tx.Bucket(bucketVectors)
		if vb == nil {
			return fmt.Errorf("vectors bucket missing")
		}
		return vb.ForEach(func(k, v []byte) error {
			var vec []float32
			if err := json.Unmarshal(v, &vec); err != nil {
				return fmt.Errorf("corrupt vector %s: %w", k, err)
			}
			if len(vec) != s.manifest.Dimension {
				return fmt.Errorf("vector %s has dimension %d, manifest says %d", k, len(vec), s.manifest.Dimension)
			}
			s.vectors[string(k)] = vec
			return nil
		})
	})
}

// Get returns the work stored under id.
func (s *Store) Get(id string) (domain.Work, error) {
	var work domain.Work
	err := s.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(bucketWorks).Get([]byte(id))
		if data == nil {
			return &domain.RecordNotFoundError{ID: id}
		}
		return json.Unmarshal(data, &work)
	})
	return work, err
}

// Size returns the total number of stored works.
func (s *Store) Size() (int, error) {
	var n int
	err := s.db.View(func(tx *bbolt.Tx) error {
		n = tx.Bucket(bucketWorks).Stats().KeyN
		return nil
	})
	return n, err
}

// Search finds the k nearest vectors to the query by cosine similarity.
// Results are ordered by descending score; equal scores are broken by
// ascending identifier so output is reproducible across runs.
func (s *Store) Search(query []float32, k int) ([]domain.Hit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(query) != s.manifest.Dimension {
		return nil, fmt.Errorf("%w: query has %d, index has %d",
			domain.ErrDimensionMismatch, len(query), s.manifest.Dimension)
	}

	if k <= 0 || len(s.vectors) == 0 {
		return nil, nil
	}

	hits := make([]domain.Hit, 0, len(s.vectors))
	for id, vec := range s.vectors {
		hits = append(hits, domain.Hit{ID: id, Score: cosineSimilarity(query, vec)})
	}

	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Score != hits[j].Score {
			return hits[i].Score > hits[j].Score
		}
		return hits[i].ID < hits[j].ID
	})

	if k > len(hits) {
		k = len(hits)
	}
	return hits[:k], nil
}

// Dimension returns the vector dimension the database was built with.
func (s *Store) Dimension() int {
	return s.manifest.Dimension
}

// Count returns the number of indexed vectors.
func (s *Store) Count() (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.vectors), nil
}

// Manifest returns the build manifest.
func (s *Store) Manifest() Manifest {
	return s.manifest
}

// Path returns the database file location.
func (s *Store) Path() string {
	return s.path
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// cosineSimilarity calculates the cosine similarity between two vectors.
func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) {
		return 0
	}

	var dotProduct, normA, normB float64
	for i := range a {
		dotProduct += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0
	}

	return dotProduct / (math.Sqrt(normA) * math.Sqrt(normB))
}
