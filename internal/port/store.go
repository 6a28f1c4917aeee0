package port

import "exhibitrag/internal/domain"

// WorkStore holds the structured attributes of every indexed work.
type WorkStore interface {
	// Get returns the work for the given identifier. A missing identifier
	// fails with domain.ErrRecordNotFound.
	Get(id string) (domain.Work, error)

	// Size returns the total number of stored works.
	Size() (int, error)
}

// VectorIndex holds one embedding per work identifier and supports
// nearest-neighbor lookup by cosine similarity.
type VectorIndex interface {
	// Search returns up to k hits ordered by strictly descending score,
	// ties broken by ascending identifier. k <= 0 yields an empty result;
	// k larger than the corpus yields every stored vector.
	Search(query []float32, k int) ([]domain.Hit, error)

	// Dimension returns the vector dimension the index was built with.
	Dimension() int

	// Count returns the number of indexed vectors.
	Count() (int, error)
}

// Formatter renders works into a fixed human-readable text block.
type Formatter interface {
	Format(works []domain.Work) string
}
