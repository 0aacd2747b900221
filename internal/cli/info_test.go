package cli

import (
	"strings"
	"testing"

	"codemine/internal/corpus"
)

func TestWriteFileInfo(t *testing.T) {
	t.Run("summarized file lists every location and the summary", func(t *testing.T) {
		info := &corpus.FileInfo{
			Hash: "abc123",
			Locations: []corpus.Location{
				{Owner: "octocat", Name: "hello", Path: "lib/a.js", License: "MIT"},
				{Owner: "torvalds", Name: "world", Path: "src/a.js", License: ""},
			},
			Summarized: true,
			NTokens:    42,
			SLOC:       7,
		}

		var b, diag strings.Builder
		writeFileInfo(&b, &diag, info, "javascript")
		out := b.String()

		for _, want := range []string{
			"hash: abc123",
			"language: javascript",
			"octocat/hello",
			"torvalds/world",
			"https://github.com/octocat/hello",
			"lib/a.js",
			"tokens: 42",
			"sloc: 7",
		} {
			if !strings.Contains(out, want) {
				t.Fatalf("Expected output to contain %q, got:\n%s", want, out)
			}
		}
		if !strings.Contains(diag.String(), "content exists in 2 locations") {
			t.Fatalf("Expected a duplication warning for 2 locations, got:\n%s", diag.String())
		}
		if strings.Contains(out, "content exists") {
			t.Fatalf("Expected the warning on the diagnostic writer only, got:\n%s", out)
		}
	})

	t.Run("failed file shows the recorded reason", func(t *testing.T) {
		info := &corpus.FileInfo{
			Hash:       "def456",
			Locations:  []corpus.Location{{Owner: "o", Name: "r", Path: "x.js"}},
			Failed:     true,
			FailReason: "syntax error",
		}

		var b, diag strings.Builder
		writeFileInfo(&b, &diag, info, "")
		out := b.String()

		if !strings.Contains(out, "failed: syntax error") {
			t.Fatalf("Expected failure reason in output, got:\n%s", out)
		}
		if strings.Contains(out, "tokens:") {
			t.Fatalf("Expected no summary for a failed file, got:\n%s", out)
		}
		if diag.Len() != 0 {
			t.Fatalf("Expected no warning for a single location, got:\n%s", diag.String())
		}
	})

	t.Run("unprocessed file says so", func(t *testing.T) {
		info := &corpus.FileInfo{Hash: "0ff", Locations: []corpus.Location{{Owner: "o", Name: "r", Path: "x.js"}}}

		var b, diag strings.Builder
		writeFileInfo(&b, &diag, info, "")

		if !strings.Contains(b.String(), "unprocessed") {
			t.Fatalf("Expected unprocessed marker, got:\n%s", b.String())
		}
	})
}

func TestHasExtension(t *testing.T) {
	exts := []string{".js", ".mjs"}

	cases := []struct {
		path string
		want bool
	}{
		{"lib/index.js", true},
		{"lib/Index.JS", true},
		{"mod.mjs", true},
		{"mod.mjs.map", false},
		{"README.md", false},
		{"noext", false},
	}
	for _, c := range cases {
		if got := hasExtension(c.path, exts); got != c.want {
			t.Fatalf("Expected hasExtension(%q) = %v, got %v", c.path, c.want, got)
		}
	}
}
