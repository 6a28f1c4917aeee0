package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"exhibitrag/config"
	"exhibitrag/internal/adapter/cache"
	"exhibitrag/internal/adapter/embedding"
	"exhibitrag/internal/adapter/store"
	"exhibitrag/internal/domain"
	"exhibitrag/internal/port"
	"exhibitrag/internal/render"
)

// Retriever answers natural-language queries against the works corpus:
// encode -> vector search -> record resolution -> formatting. Loading
// happens once at construction; a failed load is recorded and re-reported
// on every query instead of being retried. Safe for concurrent callers.
type Retriever struct {
	embedder  port.Embedder
	formatter port.Formatter
	cache     *cache.QueryCache
	dbPath    string

	// corpus is the active store handle. Reload swaps it atomically so
	// in-flight queries see either the old or the new corpus, never a mix.
	corpus atomic.Pointer[store.Store]

	mu      sync.RWMutex
	status  domain.Status
	loadErr error
	// retired holds pre-swap handles until Close. A query that grabbed the
	// old handle before a swap must be able to finish against it.
	retired []*store.Store
}

// Load constructs a retriever for the corpus database under dir, performing
// the full loading step: embedder construction, database open, and
// model/index consistency check. Errors are captured in the returned
// instance; inspect Stats().Status or call Err().
func Load(cfg *config.Config, dir string) *Retriever {
	r := &Retriever{
		formatter: render.NewTextFormatter(),
		cache: cache.NewQueryCache(cfg.Retrieve.CacheSize,
			time.Duration(cfg.Retrieve.CacheTTLSecs)*time.Second),
		dbPath: config.IndexDBPath(dir),
		status: domain.StatusLoading,
	}

	emb, err := embedding.FromConfig(cfg.Embedding)
	if err != nil {
		r.fail(err)
		return r
	}
	r.embedder = emb

	st, err := store.Open(r.dbPath)
	if err != nil {
		r.fail(err)
		return r
	}

	if st.Dimension() != emb.Dimension() {
		st.Close()
		r.fail(fmt.Errorf("%w: index built with %d dimensions (model %s), embedder produces %d",
			domain.ErrModelUnavailable, st.Dimension(), st.Manifest().Model, emb.Dimension()))
		return r
	}

	r.corpus.Store(st)
	r.mu.Lock()
	r.status = domain.StatusReady
	r.mu.Unlock()

	slog.Debug("corpus loaded",
		"path", r.dbPath,
		"works", st.Manifest().Count,
		"model", st.Manifest().Model,
		"dimension", st.Dimension())
	return r
}

// New assembles a retriever from already-constructed parts and an open
// store. Used by in-process callers that manage their own adapters.
func New(emb port.Embedder, st *store.Store, formatter port.Formatter, queryCache *cache.QueryCache) (*Retriever, error) {
	if st.Dimension() != emb.Dimension() {
		return nil, fmt.Errorf("%w: index dimension %d, embedder dimension %d",
			domain.ErrDimensionMismatch, st.Dimension(), emb.Dimension())
	}
	if formatter == nil {
		formatter = render.NewTextFormatter()
	}
	if queryCache == nil {
		queryCache = cache.NewQueryCache(100, 5*time.Minute)
	}

	r := &Retriever{
		embedder:  emb,
		formatter: formatter,
		cache:     queryCache,
		dbPath:    st.Path(),
		status:    domain.StatusReady,
	}
	r.corpus.Store(st)
	return r, nil
}

func (r *Retriever) fail(err error) {
	r.mu.Lock()
	r.status = domain.StatusFailed
	r.loadErr = err
	r.mu.Unlock()
	slog.Error("retriever load failed", "path", r.dbPath, "err", err)
}

// Err returns the recorded loading failure, or nil when the instance is
// usable.
func (r *Retriever) Err() error {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.loadErr
}

func (r *Retriever) ready() error {
	r.mu.RLock()
	defer r.mu.RUnlock()
	switch r.status {
	case domain.StatusReady:
		return nil
	case domain.StatusLoading:
		return fmt.Errorf("retriever is still loading")
	default:
		return r.loadErr
	}
}

// Retrieve runs the full query path and returns the formatted knowledge
// text for the topK most similar works. An empty or whitespace-only query
// fails with domain.ErrInvalidQuery; a valid query with topK <= 0 returns
// an empty text without error. Query validation takes precedence over the
// topK short-circuit.
func (r *Retriever) Retrieve(ctx context.Context, query string, topK int) (string, error) {
	results, err := r.Search(ctx, query, topK)
	if err != nil {
		return "", err
	}

	works := make([]domain.Work, len(results))
	for i, sw := range results {
		works[i] = sw.Work
	}
	return r.formatter.Format(works), nil
}

// Search is the score-carrying variant of Retrieve, used by the interactive
// surface and by in-process callers that want raw rankings.
//
// Readiness and query validation run before topK is considered: an empty
// or whitespace-only query fails with domain.ErrInvalidQuery even when
// topK <= 0. Only a valid query with topK <= 0 yields the empty result.
func (r *Retriever) Search(ctx context.Context, query string, topK int) ([]domain.ScoredWork, error) {
	if err := r.ready(); err != nil {
		return nil, err
	}

	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("%w: query is empty", domain.ErrInvalidQuery)
	}

	// Negative topK is treated as zero: an empty result, not an error.
	if topK <= 0 {
		return nil, nil
	}

	if results, hit := r.cache.Get(query, topK); hit {
		return results, nil
	}

	vectors, err := r.embedder.Embed(ctx, []string{query})
	if err != nil {
		return nil, fmt.Errorf("failed to encode query: %w", err)
	}
	if len(vectors) == 0 {
		return nil, fmt.Errorf("%w: encoder returned no vector", domain.ErrModelUnavailable)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	st := r.corpus.Load()
	hits, err := st.Search(vectors[0], topK)
	if err != nil {
		return nil, fmt.Errorf("vector search failed: %w", err)
	}

	results := make([]domain.ScoredWork, 0, len(hits))
	for _, hit := range hits {
		// A hit without a stored record means the index and the record
		// store are desynchronized; surface it rather than skipping.
		work, err := st.Get(hit.ID)
		if err != nil {
			return nil, err
		}
		results = append(results, domain.ScoredWork{Work: work, Score: hit.Score})
	}

	r.cache.Put(query, topK, results)
	return results, nil
}

// Stats reports the retriever's actual current state. On a failed instance
// the status says so; it never claims ready.
func (r *Retriever) Stats() domain.RetrieverStats {
	r.mu.RLock()
	status := r.status
	r.mu.RUnlock()

	stats := domain.RetrieverStats{
		EmbeddingModel: "unknown",
		Status:         status,
		DatabasePath:   r.dbPath,
	}
	if r.embedder != nil {
		stats.EmbeddingModel = r.embedder.ModelName()
	}
	if st := r.corpus.Load(); st != nil && status == domain.StatusReady {
		n, err := st.Size()
		if err != nil {
			slog.Warn("failed to count indexed works", "path", r.dbPath, "error", err)
		} else {
			stats.TotalDocuments = n
		}
	}
	return stats
}

// Reload reopens the database file and atomically swaps it in, so a freshly
// ingested corpus becomes visible without reconstructing the retriever.
// Queries already in flight keep the handle they started with.
func (r *Retriever) Reload() error {
	if err := r.ready(); err != nil {
		return err
	}

	st, err := store.Open(r.dbPath)
	if err != nil {
		return err
	}
	if st.Dimension() != r.embedder.Dimension() {
		st.Close()
		return fmt.Errorf("%w: rebuilt index has %d dimensions, embedder produces %d",
			domain.ErrDimensionMismatch, st.Dimension(), r.embedder.Dimension())
	}

	old := r.corpus.Swap(st)
	r.cache.Invalidate()
	if old != nil {
		r.mu.Lock()
		r.retired = append(r.retired, old)
		r.mu.Unlock()
	}
	slog.Info("corpus swapped", "path", r.dbPath, "works", st.Manifest().Count)
	return nil
}

// Close releases the active corpus handle and any handles retired by
// earlier reloads.
func (r *Retriever) Close() error {
	var firstErr error
	if st := r.corpus.Load(); st != nil {
		firstErr = st.Close()
	}
	r.mu.Lock()
	retired := r.retired
	r.retired = nil
	r.mu.Unlock()
	for _, st := range retired {
		if err := st.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
