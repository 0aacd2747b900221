package vocab

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"codemine/internal/corpus"
	"codemine/internal/language"
)

// fieldsLang vocabularizes a source to its whitespace-separated fields.
type fieldsLang struct{}

func (fieldsLang) Name() string         { return "fields" }
func (fieldsLang) Extensions() []string { return nil }
func (fieldsLang) CheckSyntax(context.Context, []byte) (bool, error) {
	return true, nil
}
func (fieldsLang) Tokenize(context.Context, []byte) ([]language.Token, error) {
	return nil, nil
}
func (fieldsLang) Summarize(context.Context, []byte) (language.Summary, error) {
	return language.Summary{}, nil
}
func (fieldsLang) Vocabularize(_ context.Context, source []byte) ([]string, error) {
	return strings.Fields(string(source)), nil
}

func TestDiscover(t *testing.T) {
	ctx := context.Background()
	c, err := corpus.Open(ctx, filepath.Join(t.TempDir(), "corpus.db"))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer c.Close()

	if err := c.InsertRepository(ctx, corpus.Repository{Owner: "owner", Name: "name"}); err != nil {
		t.Fatalf("InsertRepository failed: %v", err)
	}
	hashA, err := c.InsertSource(ctx, []byte("var x = y\n"), corpus.Provenance{Owner: "owner", Name: "name", Path: "a.js"})
	if err != nil {
		t.Fatalf("InsertSource failed: %v", err)
	}
	hashB, err := c.InsertSource(ctx, []byte("var y = z\n"), corpus.Provenance{Owner: "owner", Name: "name", Path: "b.js"})
	if err != nil {
		t.Fatalf("InsertSource failed: %v", err)
	}

	t.Run("sorted deduplicated union", func(t *testing.T) {
		got, err := Discover(ctx, c, fieldsLang{}, []string{hashA, hashB})
		if err != nil {
			t.Fatalf("Discover failed: %v", err)
		}
		want := []string{"=", "var", "x", "y", "z"}
		if len(got) != len(want) {
			t.Fatalf("Expected %v, got %v", want, got)
		}
		for i := range want {
			if got[i] != want[i] {
				t.Fatalf("Expected %v, got %v", want, got)
			}
		}
	})

	t.Run("deterministic across runs", func(t *testing.T) {
		first, err := Discover(ctx, c, fieldsLang{}, []string{hashA, hashB})
		if err != nil {
			t.Fatalf("Discover failed: %v", err)
		}
		second, err := Discover(ctx, c, fieldsLang{}, []string{hashB, hashA})
		if err != nil {
			t.Fatalf("Discover failed: %v", err)
		}
		if strings.Join(first, " ") != strings.Join(second, " ") {
			t.Fatalf("Expected identical output, got %v then %v", first, second)
		}
	})

	t.Run("missing hash propagates", func(t *testing.T) {
		_, err := Discover(ctx, c, fieldsLang{}, []string{"deadbeef"})
		if !errors.Is(err, corpus.ErrNotFound) {
			t.Fatalf("Expected ErrNotFound, got %v", err)
		}
	})
}
