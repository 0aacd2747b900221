// Package language defines the capability surface consumed by the
// processing pipeline: shallow syntax checking, tokenization, structural
// summarization, and vocabulary extraction. One implementation exists per
// supported grammar; callers select one by name through the registry.
package language

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
)

type Position struct {
	Line   int // 1-based
	Column int // 0-based, esprima convention
}

type Token struct {
	Name  string // token class, e.g. "Identifier", "Keyword", "Numeric"
	Value string
	Start Position
	End   Position
}

// Summary is the structural summary persisted for a parsed file.
type Summary struct {
	NTokens int
	SLOC    int // distinct lines spanned by at least one token
}

type Language interface {
	Name() string
	Extensions() []string

	// CheckSyntax reports whether the source parses under the grammar.
	// The error return is for adapter malfunction only; a plain parse
	// failure is (false, nil).
	CheckSyntax(ctx context.Context, source []byte) (bool, error)

	Tokenize(ctx context.Context, source []byte) ([]Token, error)
	Summarize(ctx context.Context, source []byte) (Summary, error)

	// Vocabularize returns the abstracted vocabulary entry for each
	// token, in source order. Open-class lexemes collapse to a category
	// marker; closed-class lexemes stay verbatim.
	Vocabularize(ctx context.Context, source []byte) ([]string, error)
}

// SummarizeTokens derives a Summary from a token stream: token count and
// the number of distinct lines any token touches.
func SummarizeTokens(tokens []Token) Summary {
	lines := make(map[int]struct{})
	for _, tok := range tokens {
		for l := tok.Start.Line; l <= tok.End.Line; l++ {
			lines[l] = struct{}{}
		}
	}
	return Summary{NTokens: len(tokens), SLOC: len(lines)}
}

var (
	registryMu sync.RWMutex
	registry   = make(map[string]Language)
)

// Register makes a language available by name. It panics on a duplicate
// registration, which indicates a wiring bug.
func Register(l Language) {
	registryMu.Lock()
	defer registryMu.Unlock()
	name := strings.ToLower(l.Name())
	if _, dup := registry[name]; dup {
		panic(fmt.Sprintf("language: Register called twice for %q", name))
	}
	registry[name] = l
}

// Lookup returns the language registered under name (case-insensitive).
func Lookup(name string) (Language, error) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	l, ok := registry[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, fmt.Errorf("unknown language %q (known: %s)", name, strings.Join(names(), ", "))
	}
	return l, nil
}

// Names lists registered languages in sorted order.
func Names() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	return names()
}

func names() []string {
	out := make([]string, 0, len(registry))
	for name := range registry {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
