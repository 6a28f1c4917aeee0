package usecase

import (
	"context"
	"fmt"
	"os"
	"sync"

	"golang.org/x/sync/errgroup"

	"exhibitrag/internal/adapter/dataset"
	"exhibitrag/internal/adapter/store"
	"exhibitrag/internal/domain"
	"exhibitrag/internal/port"
	"exhibitrag/internal/render"
)

// embedWorkers bounds concurrent embedding batches during ingest.
const embedWorkers = 4

// Ingestor builds the corpus database from the works catalog. It is the
// write path: it never touches a live database in place, but builds a fresh
// file and renames it over the old one, so concurrent readers always see a
// complete corpus.
type Ingestor struct {
	loader    *dataset.Loader
	embedder  port.Embedder
	batchSize int
	progress  func(done, total int)
}

// NewIngestor creates an ingestor. progress may be nil.
func NewIngestor(loader *dataset.Loader, embedder port.Embedder, batchSize int, progress func(done, total int)) *Ingestor {
	if batchSize <= 0 {
		batchSize = 32
	}
	return &Ingestor{
		loader:    loader,
		embedder:  embedder,
		batchSize: batchSize,
		progress:  progress,
	}
}

// IngestResult summarizes a completed build.
type IngestResult struct {
	WorksIndexed int
	Zones        int
	DBPath       string
}

// Ingest loads the catalog under dataDir, embeds every work, and writes the
// corpus database to dbPath via an atomic rename.
func (u *Ingestor) Ingest(ctx context.Context, dataDir, dbPath string) (*IngestResult, error) {
	works, err := u.loader.Load(dataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}
	if len(works) == 0 {
		return nil, fmt.Errorf("catalog contains no works")
	}

	docs := make([]string, len(works))
	for i, w := range works {
		docs[i] = render.Document(w)
	}

	vectors, err := u.embedAll(ctx, docs)
	if err != nil {
		return nil, err
	}

	tmpPath := dbPath + ".building"
	builder, err := store.NewBuilder(tmpPath, u.embedder.ModelName(), u.embedder.Dimension())
	if err != nil {
		return nil, err
	}

	for i, w := range works {
		if err := builder.Add(w, vectors[i]); err != nil {
			builder.Abort()
			return nil, err
		}
	}
	if err := builder.Commit(); err != nil {
		os.Remove(tmpPath)
		return nil, err
	}

	if err := os.Rename(tmpPath, dbPath); err != nil {
		os.Remove(tmpPath)
		return nil, fmt.Errorf("failed to activate new corpus: %w", err)
	}

	zones := make(map[string]struct{})
	for _, w := range works {
		zones[w.Zone] = struct{}{}
	}

	return &IngestResult{
		WorksIndexed: len(works),
		Zones:        len(zones),
		DBPath:       dbPath,
	}, nil
}

// embedAll encodes all documents in bounded concurrent batches, preserving
// input order.
func (u *Ingestor) embedAll(ctx context.Context, docs []string) ([][]float32, error) {
	vectors := make([][]float32, len(docs))

	var mu sync.Mutex
	done := 0

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(embedWorkers)

	for start := 0; start < len(docs); start += u.batchSize {
		start := start
		end := start + u.batchSize
		if end > len(docs) {
			end = len(docs)
		}

		g.Go(func() error {
			batch, err := u.embedder.Embed(ctx, docs[start:end])
			if err != nil {
				return fmt.Errorf("failed to embed works %d-%d: %w", start, end-1, err)
			}
			if len(batch) != end-start {
				return fmt.Errorf("%w: got %d vectors for %d documents",
					domain.ErrModelUnavailable, len(batch), end-start)
			}
			copy(vectors[start:end], batch)

			if u.progress != nil {
				mu.Lock()
				done += end - start
				u.progress(done, len(docs))
				mu.Unlock()
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return vectors, nil
}
