package corpus

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
)

func openTestCorpus(t *testing.T) *Corpus {
	t.Helper()
	c, err := Open(context.Background(), filepath.Join(t.TempDir(), "corpus.db"))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { c.Close() })
	return c
}

func mustInsertRepo(t *testing.T, c *Corpus, owner, name, license string) {
	t.Helper()
	if err := c.InsertRepository(context.Background(), Repository{Owner: owner, Name: name, License: license}); err != nil {
		t.Fatalf("InsertRepository failed: %v", err)
	}
}

func TestInsertAndGetSource(t *testing.T) {
	ctx := context.Background()
	c := openTestCorpus(t)
	mustInsertRepo(t, c, "owner", "name", "mit")

	source := []byte("import sys\n\nprint(\"hello, world\")\n")
	hash, err := c.InsertSource(ctx, source, Provenance{Owner: "owner", Name: "name", Path: "hello.py"})
	if err != nil {
		t.Fatalf("InsertSource failed: %v", err)
	}
	if hash != HashOf(source) {
		t.Fatalf("Expected hash %s, got %s", HashOf(source), hash)
	}

	got, err := c.GetSource(ctx, hash)
	if err != nil {
		t.Fatalf("GetSource failed: %v", err)
	}
	if string(got) != string(source) {
		t.Fatalf("Expected source roundtrip, got %q", got)
	}

	// Second read comes from the cache and must match too.
	got, err = c.GetSource(ctx, hash)
	if err != nil {
		t.Fatalf("GetSource (cached) failed: %v", err)
	}
	if string(got) != string(source) {
		t.Fatalf("Expected cached source roundtrip, got %q", got)
	}
}

func TestGetSourceNotFound(t *testing.T) {
	c := openTestCorpus(t)
	_, err := c.GetSource(context.Background(), "deadbeef")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("Expected ErrNotFound, got %v", err)
	}
}

func TestContentDeduplication(t *testing.T) {
	ctx := context.Background()
	c := openTestCorpus(t)
	mustInsertRepo(t, c, "alice", "tools", "mit")
	mustInsertRepo(t, c, "bob", "forks", "apache-2.0")

	source := []byte("def f(): pass\n")

	h1, err := c.InsertSource(ctx, source, Provenance{Owner: "alice", Name: "tools", Path: "a.py"})
	if err != nil {
		t.Fatalf("first ingest failed: %v", err)
	}
	h2, err := c.InsertSource(ctx, source, Provenance{Owner: "bob", Name: "forks", Path: "lib/b.py"})
	if err != nil {
		t.Fatalf("second ingest failed: %v", err)
	}
	if h1 != h2 {
		t.Fatalf("Expected identical content to share a hash, got %s and %s", h1, h2)
	}

	stats, err := c.CorpusStats(ctx)
	if err != nil {
		t.Fatalf("CorpusStats failed: %v", err)
	}
	if stats.Files != 1 {
		t.Fatalf("Expected one source_file row, got %d", stats.Files)
	}

	info, err := c.FileInfo(ctx, h1)
	if err != nil {
		t.Fatalf("FileInfo failed: %v", err)
	}
	if len(info.Locations) != 2 {
		t.Fatalf("Expected 2 provenance entries, got %d", len(info.Locations))
	}
	if info.Locations[0].License != "mit" || info.Locations[1].License != "apache-2.0" {
		t.Fatalf("Expected per-repository licenses, got %+v", info.Locations)
	}
}

func TestDuplicateProvenanceRejected(t *testing.T) {
	ctx := context.Background()
	c := openTestCorpus(t)
	mustInsertRepo(t, c, "owner", "name", "mit")

	source := []byte("def f(): pass\n")
	prov := Provenance{Owner: "owner", Name: "name", Path: "same.py"}

	if _, err := c.InsertSource(ctx, source, prov); err != nil {
		t.Fatalf("first ingest failed: %v", err)
	}
	// The sentinel lets callers skip a re-ingested checkout while still
	// aborting on real storage errors.
	if _, err := c.InsertSource(ctx, source, prov); !errors.Is(err, ErrDuplicateProvenance) {
		t.Fatalf("Expected ErrDuplicateProvenance for identical (hash, repo, path) ingestion, got %v", err)
	}

	// Same content under a different path is fine.
	if _, err := c.InsertSource(ctx, source, Provenance{Owner: "owner", Name: "name", Path: "other.py"}); err != nil {
		t.Fatalf("ingest under new path failed: %v", err)
	}
}

func TestFileInfoNotFound(t *testing.T) {
	c := openTestCorpus(t)
	_, err := c.FileInfo(context.Background(), "deadbeef")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("Expected ErrNotFound, got %v", err)
	}
}

func TestMeta(t *testing.T) {
	ctx := context.Background()
	c := openTestCorpus(t)

	got, err := c.GetMeta(ctx, "language")
	if err != nil {
		t.Fatalf("GetMeta failed: %v", err)
	}
	if got != "" {
		t.Fatalf("Expected empty value for absent key, got %q", got)
	}

	if err := c.SetMeta(ctx, "language", "python"); err != nil {
		t.Fatalf("SetMeta failed: %v", err)
	}
	if err := c.SetMeta(ctx, "language", "javascript"); err != nil {
		t.Fatalf("SetMeta overwrite failed: %v", err)
	}
	got, err = c.GetMeta(ctx, "language")
	if err != nil {
		t.Fatalf("GetMeta failed: %v", err)
	}
	if got != "javascript" {
		t.Fatalf("Expected overwritten value, got %q", got)
	}
}
