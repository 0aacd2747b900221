package pipeline

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"codemine/internal/corpus"
	"codemine/internal/language"
)

// stubLang approximates a grammar for tests: source containing "(:" is a
// syntax error, source containing "boom" makes the summarizer blow up, and
// everything else summarizes to whitespace-token counts.
type stubLang struct{}

func (stubLang) Name() string         { return "stub" }
func (stubLang) Extensions() []string { return []string{".py"} }

func (stubLang) CheckSyntax(_ context.Context, source []byte) (bool, error) {
	return !strings.Contains(string(source), "(:"), nil
}

func (s stubLang) Tokenize(_ context.Context, source []byte) ([]language.Token, error) {
	var tokens []language.Token
	for i, line := range strings.Split(strings.TrimRight(string(source), "\n"), "\n") {
		for range strings.Fields(line) {
			tokens = append(tokens, language.Token{
				Start: language.Position{Line: i + 1},
				End:   language.Position{Line: i + 1},
			})
		}
	}
	return tokens, nil
}

func (s stubLang) Summarize(ctx context.Context, source []byte) (language.Summary, error) {
	if strings.Contains(string(source), "boom") {
		return language.Summary{}, errors.New("tokenizer exploded")
	}
	tokens, err := s.Tokenize(ctx, source)
	if err != nil {
		return language.Summary{}, err
	}
	return language.SummarizeTokens(tokens), nil
}

func (s stubLang) Vocabularize(ctx context.Context, source []byte) ([]string, error) {
	return nil, nil
}

func openTestCorpus(t *testing.T) *corpus.Corpus {
	t.Helper()
	c, err := corpus.Open(context.Background(), filepath.Join(t.TempDir(), "corpus.db"))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { c.Close() })
	return c
}

func ingest(t *testing.T, c *corpus.Corpus, path string, source string) string {
	t.Helper()
	ctx := context.Background()
	if err := c.InsertRepository(ctx, corpus.Repository{Owner: "owner", Name: "name", License: "mit"}); err != nil {
		t.Fatalf("InsertRepository failed: %v", err)
	}
	h, err := c.InsertSource(ctx, []byte(source), corpus.Provenance{Owner: "owner", Name: "name", Path: path})
	if err != nil {
		t.Fatalf("InsertSource failed: %v", err)
	}
	return h
}

func runDriver(t *testing.T, c *corpus.Corpus, hashes ...string) Stats {
	t.Helper()
	d := &Driver{Corpus: c, Language: stubLang{}}
	stats, err := d.Run(context.Background(), strings.NewReader(strings.Join(hashes, "\n")+"\n"))
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	return stats
}

func TestDriverOutcomes(t *testing.T) {
	ctx := context.Background()
	c := openTestCorpus(t)

	valid := ingest(t, c, "valid.py", "def f(): pass\n")
	invalid := ingest(t, c, "invalid.py", "def f(:\n")

	stats := runDriver(t, c, valid, invalid)
	if stats.Scanned != 2 || stats.Summarized != 1 || stats.Failed != 1 {
		t.Fatalf("Expected 2 scanned / 1 summarized / 1 failed, got %+v", stats)
	}

	info, err := c.FileInfo(ctx, valid)
	if err != nil {
		t.Fatalf("FileInfo failed: %v", err)
	}
	if !info.Summarized || info.NTokens <= 0 || info.SLOC != 1 {
		t.Fatalf("Expected summary with n_tokens > 0 and sloc = 1, got %+v", info)
	}

	info, err = c.FileInfo(ctx, invalid)
	if err != nil {
		t.Fatalf("FileInfo failed: %v", err)
	}
	if info.Summarized || !info.Failed {
		t.Fatalf("Expected failure row and no summary, got %+v", info)
	}
}

func TestDriverBatchResilience(t *testing.T) {
	c := openTestCorpus(t)

	exploding := ingest(t, c, "a.py", "boom\n")
	fine := ingest(t, c, "b.py", "x = 1\n")

	// The adapter error on the first hash must not stop the second.
	stats := runDriver(t, c, exploding, fine)
	if stats.Summarized != 1 || stats.Failed != 1 {
		t.Fatalf("Expected the batch to survive an adapter error, got %+v", stats)
	}

	info, err := c.FileInfo(context.Background(), exploding)
	if err != nil {
		t.Fatalf("FileInfo failed: %v", err)
	}
	if !info.Failed || !strings.Contains(info.FailReason, "summarize") {
		t.Fatalf("Expected adapter error converted to a failure record, got %+v", info)
	}
}

func TestDriverMissingHash(t *testing.T) {
	c := openTestCorpus(t)
	fine := ingest(t, c, "b.py", "x = 1\n")

	stats := runDriver(t, c, "deadbeef", fine)
	if stats.Missing != 1 || stats.Summarized != 1 {
		t.Fatalf("Expected missing hash skipped and batch continued, got %+v", stats)
	}
}

func TestDriverIdempotence(t *testing.T) {
	ctx := context.Background()
	c := openTestCorpus(t)

	valid := ingest(t, c, "valid.py", "def f(): pass\n")
	invalid := ingest(t, c, "invalid.py", "def f(:\n")

	runDriver(t, c, valid, invalid)
	// Feeding already-processed hashes again must not create second rows
	// nor abort the batch.
	stats := runDriver(t, c, valid, invalid)
	if stats.Duplicates != 2 || stats.Summarized != 0 || stats.Failed != 0 {
		t.Fatalf("Expected both rerun hashes rejected as duplicates, got %+v", stats)
	}

	corpusStats, err := c.CorpusStats(ctx)
	if err != nil {
		t.Fatalf("CorpusStats failed: %v", err)
	}
	if corpusStats.Summarized != 1 || corpusStats.Failed != 1 {
		t.Fatalf("Expected exactly one outcome row per hash, got %+v", corpusStats)
	}
}

func TestDriverTotality(t *testing.T) {
	ctx := context.Background()
	c := openTestCorpus(t)

	ingest(t, c, "a.py", "def f(): pass\n")
	ingest(t, c, "b.py", "def g(:\n")
	ingest(t, c, "c.py", "boom boom\n")

	unprocessed, err := c.ListUnprocessed(ctx)
	if err != nil {
		t.Fatalf("ListUnprocessed failed: %v", err)
	}
	runDriver(t, c, unprocessed...)

	remaining, err := c.ListUnprocessed(ctx)
	if err != nil {
		t.Fatalf("ListUnprocessed failed: %v", err)
	}
	if len(remaining) != 0 {
		t.Fatalf("Expected every hash to reach an outcome, %d remain", len(remaining))
	}
}

func TestDriverParallel(t *testing.T) {
	ctx := context.Background()
	c := openTestCorpus(t)

	hashes := []string{
		ingest(t, c, "a.py", "a = 1\n"),
		ingest(t, c, "b.py", "b = 2\n"),
		ingest(t, c, "c.py", "c(:\n"),
		ingest(t, c, "d.py", "d = 4\n"),
	}

	d := &Driver{Corpus: c, Language: stubLang{}, Jobs: 4}
	stats, err := d.Run(ctx, strings.NewReader(strings.Join(hashes, "\n")))
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if stats.Summarized != 3 || stats.Failed != 1 {
		t.Fatalf("Expected 3 summarized / 1 failed under parallel workers, got %+v", stats)
	}
}
