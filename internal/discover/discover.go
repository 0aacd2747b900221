// Package discover enumerates GitHub repositories for a language above a
// star threshold. A single search query returns at most a fixed number of
// results, so the enumeration repeatedly narrows a star-count window from
// the top instead of paginating past the cap.
package discover

import (
	"context"
	"errors"
	"fmt"
)

// Repo is one discovered repository.
type Repo struct {
	FullName string // "owner/name"
	Stars    int
}

// Searcher issues one search query for a star window and returns
// repositories ordered by descending star count. Implementations must not
// retry internally; transport errors propagate to the caller.
type Searcher interface {
	Search(ctx context.Context, language string, w Window) ([]Repo, error)
}

// Limiter blocks until a request is safe to issue (rate-limit headroom).
type Limiter interface {
	Wait(ctx context.Context) error
}

type Discoverer struct {
	Searcher Searcher
	Limiter  Limiter // optional
	Language string
	MinStars int
	MaxRepos int // 0 = unlimited
}

// Each yields every discovered repository, in descending star order within
// each window, until the star range is exhausted, MaxRepos is reached, fn
// returns an error, or ctx is canceled. Search errors abort enumeration;
// the caller decides whether to retry or abandon.
func (d *Discoverer) Each(ctx context.Context, fn func(Repo) error) error {
	if d.Searcher == nil {
		return errors.New("discover: nil Searcher")
	}
	if d.Language == "" {
		return errors.New("discover: language is required")
	}
	if d.MinStars < 0 {
		return fmt.Errorf("discover: min stars must be >= 0 (got %d)", d.MinStars)
	}

	w := StartWindow(d.MinStars)
	yielded := 0

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.Limiter != nil {
			if err := d.Limiter.Wait(ctx); err != nil {
				return err
			}
		}

		repos, err := d.Searcher.Search(ctx, d.Language, w)
		if err != nil {
			return err
		}
		if len(repos) == 0 {
			return nil
		}

		for _, r := range repos {
			if err := fn(r); err != nil {
				return err
			}
			yielded++
			if d.MaxRepos > 0 && yielded >= d.MaxRepos {
				return nil
			}
		}

		next, ok := w.Next(repos[len(repos)-1].Stars)
		if !ok {
			return nil
		}
		w = next
	}
}
