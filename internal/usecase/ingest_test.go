package usecase

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"exhibitrag/internal/adapter/dataset"
	"exhibitrag/internal/adapter/embedding"
	"exhibitrag/internal/adapter/store"
)

func writeTestCatalog(t *testing.T, dir string) {
	t.Helper()
	catalog := `
zone: 环境设计
works:
  - name: 永栖所
    authors: 张三
    description: 永栖所是一个关于栖居与自然共生的环境设计作品
  - name: 城市绿洲
    authors: 李四
`
	if err := os.WriteFile(filepath.Join(dir, "env.yaml"), []byte(catalog), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestIngest_BuildsQueryableCorpus(t *testing.T) {
	dataDir := t.TempDir()
	writeTestCatalog(t, dataDir)
	dbPath := filepath.Join(t.TempDir(), "works.db")

	emb := embedding.NewHashEmbedder(testDim)
	ing := NewIngestor(dataset.NewLoader(nil, nil), emb, 8, nil)

	result, err := ing.Ingest(context.Background(), dataDir, dbPath)
	if err != nil {
		t.Fatal(err)
	}
	if result.WorksIndexed != 2 {
		t.Errorf("expected 2 works indexed, got %d", result.WorksIndexed)
	}
	if result.Zones != 1 {
		t.Errorf("expected 1 zone, got %d", result.Zones)
	}

	st, err := store.Open(dbPath)
	if err != nil {
		t.Fatal(err)
	}
	defer st.Close()

	m := st.Manifest()
	if m.Model != "hash-runes" {
		t.Errorf("manifest model: %s", m.Model)
	}
	if m.Count != 2 {
		t.Errorf("manifest count: %d", m.Count)
	}

	work, err := st.Get("环境设计_0")
	if err != nil {
		t.Fatal(err)
	}
	if work.Name != "永栖所" {
		t.Errorf("unexpected work: %+v", work)
	}
}

func TestIngest_SameZoneSplitAcrossFiles(t *testing.T) {
	dataDir := t.TempDir()
	files := map[string]string{
		"env-1.yaml": "zone: 环境设计\nworks:\n  - name: 永栖所\n    authors: 张三\n",
		"env-2.yaml": "zone: 环境设计\nworks:\n  - name: 城市绿洲\n    authors: 李四\n",
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dataDir, name), []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}
	dbPath := filepath.Join(t.TempDir(), "works.db")

	ing := NewIngestor(dataset.NewLoader(nil, nil), embedding.NewHashEmbedder(testDim), 8, nil)
	result, err := ing.Ingest(context.Background(), dataDir, dbPath)
	if err != nil {
		t.Fatal(err)
	}

	st, err := store.Open(dbPath)
	if err != nil {
		t.Fatal(err)
	}
	defer st.Close()

	// Every loaded work must land in the store; a second file with the same
	// zone must not shadow the first file's records.
	n, err := st.Size()
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 || result.WorksIndexed != 2 || st.Manifest().Count != 2 {
		t.Errorf("store, result and manifest disagree: size=%d indexed=%d manifest=%d",
			n, result.WorksIndexed, st.Manifest().Count)
	}
	for _, id := range []string{"环境设计_0", "环境设计_1"} {
		if _, err := st.Get(id); err != nil {
			t.Errorf("missing work %s: %v", id, err)
		}
	}
}

func TestIngest_ReportsProgress(t *testing.T) {
	dataDir := t.TempDir()
	writeTestCatalog(t, dataDir)
	dbPath := filepath.Join(t.TempDir(), "works.db")

	var lastDone, lastTotal int
	progress := func(done, total int) {
		lastDone, lastTotal = done, total
	}

	ing := NewIngestor(dataset.NewLoader(nil, nil), embedding.NewHashEmbedder(testDim), 1, progress)
	if _, err := ing.Ingest(context.Background(), dataDir, dbPath); err != nil {
		t.Fatal(err)
	}

	if lastDone != 2 || lastTotal != 2 {
		t.Errorf("expected final progress 2/2, got %d/%d", lastDone, lastTotal)
	}
}

func TestIngest_EmptyDataDir(t *testing.T) {
	ing := NewIngestor(dataset.NewLoader(nil, nil), embedding.NewHashEmbedder(testDim), 8, nil)
	_, err := ing.Ingest(context.Background(), t.TempDir(), filepath.Join(t.TempDir(), "works.db"))
	if err == nil {
		t.Error("expected error for empty data directory")
	}
}

func TestIngest_LeavesNoScratchFileOnSuccess(t *testing.T) {
	dataDir := t.TempDir()
	writeTestCatalog(t, dataDir)
	dbDir := t.TempDir()
	dbPath := filepath.Join(dbDir, "works.db")

	ing := NewIngestor(dataset.NewLoader(nil, nil), embedding.NewHashEmbedder(testDim), 8, nil)
	if _, err := ing.Ingest(context.Background(), dataDir, dbPath); err != nil {
		t.Fatal(err)
	}

	if _, err := os.Stat(dbPath + ".building"); !os.IsNotExist(err) {
		t.Error("scratch build file left behind")
	}
	if _, err := os.Stat(dbPath); err != nil {
		t.Errorf("expected database at final path: %v", err)
	}
}
