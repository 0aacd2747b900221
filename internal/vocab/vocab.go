// Package vocab builds the deduplicated vocabulary of a corpus: the union
// of every distinct vocabulary entry the language adapter emits across a
// set of eligible files.
package vocab

import (
	"context"
	"fmt"
	"sort"

	"codemine/internal/corpus"
	"codemine/internal/language"
)

// Discover returns the sorted union of vocabulary entries over the given
// hashes. The output is deterministic: the same inputs always produce the
// same sorted set.
func Discover(ctx context.Context, c *corpus.Corpus, lang language.Language, hashes []string) ([]string, error) {
	seen := make(map[string]struct{})

	for _, hash := range hashes {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		source, err := c.GetSource(ctx, hash)
		if err != nil {
			return nil, err
		}
		entries, err := lang.Vocabularize(ctx, source)
		if err != nil {
			return nil, fmt.Errorf("vocabularize %s: %w", hash, err)
		}
		for _, e := range entries {
			seen[e] = struct{}{}
		}
	}

	out := make([]string, 0, len(seen))
	for e := range seen {
		out = append(out, e)
	}
	sort.Strings(out)
	return out, nil
}
