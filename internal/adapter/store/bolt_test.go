package store

import (
	"errors"
	"path/filepath"
	"testing"

	"exhibitrag/internal/domain"
)

func buildTestStore(t *testing.T, works []domain.Work, vectors [][]float32) *Store {
	t.Helper()

	path := filepath.Join(t.TempDir(), "works.db")
	b, err := NewBuilder(path, "test-model", len(vectors[0]))
	if err != nil {
		t.Fatal(err)
	}
	for i, w := range works {
		if err := b.Add(w, vectors[i]); err != nil {
			t.Fatal(err)
		}
	}
	if err := b.Commit(); err != nil {
		t.Fatal(err)
	}

	s, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestOpen_MissingDatabase(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "never-built.db"))
	if !errors.Is(err, domain.ErrIndexUnavailable) {
		t.Fatalf("expected ErrIndexUnavailable, got %v", err)
	}
}

func TestGet_NotFound(t *testing.T) {
	s := buildTestStore(t,
		[]domain.Work{{ID: "zoneA_0", Name: "作品一"}},
		[][]float32{{1, 0, 0}},
	)

	if _, err := s.Get("zoneA_99"); !errors.Is(err, domain.ErrRecordNotFound) {
		t.Fatalf("expected ErrRecordNotFound, got %v", err)
	}

	var nf *domain.RecordNotFoundError
	_, err := s.Get("zoneA_99")
	if !errors.As(err, &nf) || nf.ID != "zoneA_99" {
		t.Fatalf("expected RecordNotFoundError carrying the id, got %v", err)
	}
}

func TestGet_RoundTrip(t *testing.T) {
	want := domain.Work{
		ID:      "zoneA_0",
		Name:    "永栖所",
		Authors: "张三",
		Zone:    "环境设计",
	}
	s := buildTestStore(t, []domain.Work{want}, [][]float32{{1, 0, 0}})

	got, err := s.Get("zoneA_0")
	if err != nil {
		t.Fatal(err)
	}
	if got != want {
		t.Errorf("got %+v, want %+v", got, want)
	}
}

func TestSearch_Ordering(t *testing.T) {
	s := buildTestStore(t,
		[]domain.Work{{ID: "a", Name: "一"}, {ID: "b", Name: "二"}, {ID: "c", Name: "三"}},
		[][]float32{
			{1, 0, 0},
			{0.9, 0.1, 0},
			{0, 1, 0},
		},
	)

	hits, err := s.Search([]float32{1, 0, 0}, 3)
	if err != nil {
		t.Fatal(err)
	}
	if len(hits) != 3 {
		t.Fatalf("expected 3 hits, got %d", len(hits))
	}
	if hits[0].ID != "a" || hits[1].ID != "b" || hits[2].ID != "c" {
		t.Errorf("unexpected order: %v", hits)
	}
	for i := 1; i < len(hits); i++ {
		if hits[i].Score > hits[i-1].Score {
			t.Errorf("scores not non-increasing at %d: %v", i, hits)
		}
	}
}

func TestSearch_TieBreakByID(t *testing.T) {
	// Identical vectors produce identical scores; order must fall back to
	// ascending identifier.
	s := buildTestStore(t,
		[]domain.Work{{ID: "z", Name: "丙"}, {ID: "a", Name: "甲"}, {ID: "m", Name: "乙"}},
		[][]float32{
			{1, 0},
			{1, 0},
			{1, 0},
		},
	)

	hits, err := s.Search([]float32{1, 0}, 3)
	if err != nil {
		t.Fatal(err)
	}
	if hits[0].ID != "a" || hits[1].ID != "m" || hits[2].ID != "z" {
		t.Errorf("tie-break by id failed: %v", hits)
	}
}

func TestSearch_KSemantics(t *testing.T) {
	s := buildTestStore(t,
		[]domain.Work{{ID: "a"}, {ID: "b"}},
		[][]float32{{1, 0}, {0, 1}},
	)

	hits, err := s.Search([]float32{1, 0}, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(hits) != 0 {
		t.Errorf("k=0 should return empty, got %d hits", len(hits))
	}

	hits, err = s.Search([]float32{1, 0}, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(hits) != 2 {
		t.Errorf("k beyond corpus should return all 2, got %d", len(hits))
	}
}

func TestSearch_DimensionMismatch(t *testing.T) {
	s := buildTestStore(t,
		[]domain.Work{{ID: "a"}},
		[][]float32{{1, 0, 0}},
	)

	if _, err := s.Search([]float32{1, 0}, 1); !errors.Is(err, domain.ErrDimensionMismatch) {
		t.Fatalf("expected ErrDimensionMismatch, got %v", err)
	}
}

func TestBuilder_RejectsWrongDimension(t *testing.T) {
	path := filepath.Join(t.TempDir(), "works.db")
	b, err := NewBuilder(path, "test-model", 3)
	if err != nil {
		t.Fatal(err)
	}
	defer b.Abort()

	err = b.Add(domain.Work{ID: "a"}, []float32{1, 0})
	if !errors.Is(err, domain.ErrDimensionMismatch) {
		t.Fatalf("expected ErrDimensionMismatch, got %v", err)
	}
}

func TestBuilder_RejectsDuplicateID(t *testing.T) {
	path := filepath.Join(t.TempDir(), "works.db")
	b, err := NewBuilder(path, "test-model", 2)
	if err != nil {
		t.Fatal(err)
	}

	if err := b.Add(domain.Work{ID: "a", Name: "甲作"}, []float32{1, 0}); err != nil {
		t.Fatal(err)
	}
	if err := b.Add(domain.Work{ID: "a", Name: "乙作"}, []float32{0, 1}); err == nil {
		t.Fatal("expected error adding duplicate id")
	}
	if err := b.Commit(); err != nil {
		t.Fatal(err)
	}

	// The rejected add must not count: manifest and stored works agree.
	s, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()
	n, err := s.Size()
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 || s.Manifest().Count != 1 {
		t.Errorf("expected 1 stored work and manifest count 1, got %d and %d", n, s.Manifest().Count)
	}
	if w, err := s.Get("a"); err != nil || w.Name != "甲作" {
		t.Errorf("first write must survive: %+v, %v", w, err)
	}
}

func TestManifest(t *testing.T) {
	s := buildTestStore(t,
		[]domain.Work{{ID: "a"}, {ID: "b"}},
		[][]float32{{1, 0}, {0, 1}},
	)

	m := s.Manifest()
	if m.Model != "test-model" {
		t.Errorf("expected model test-model, got %s", m.Model)
	}
	if m.Dimension != 2 {
		t.Errorf("expected dimension 2, got %d", m.Dimension)
	}
	if m.Count != 2 {
		t.Errorf("expected count 2, got %d", m.Count)
	}

	n, err := s.Size()
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Errorf("expected size 2, got %d", n)
	}
}
