// Package pipeline drives content hashes through parse, tokenize and
// summarize, recording exactly one outcome per hash in the corpus ledger.
package pipeline

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"codemine/internal/corpus"
	"codemine/internal/language"
)

type Driver struct {
	Corpus   *corpus.Corpus
	Language language.Language

	// Jobs is the number of hashes processed in parallel. 1 (the
	// default) processes the input stream sequentially.
	Jobs int

	Log *slog.Logger
}

// Stats summarize one batch run. A batch "succeeds" when every input hash
// was scanned; individual parse failures are recorded data, not errors.
type Stats struct {
	Scanned    int64
	Summarized int64
	Failed     int64
	Missing    int64 // hashes with no source_file row
	Duplicates int64 // hashes that already had an outcome
}

type outcome int

const (
	outcomeSummarized outcome = iota
	outcomeFailed
	outcomeMissing
	outcomeDuplicate
)

// Run consumes newline-delimited content hashes and processes each one.
// A single hash's parse or summarize failure never stops the batch; only
// infrastructure errors (storage unavailable, canceled context) abort the
// run and are returned.
func (d *Driver) Run(ctx context.Context, in io.Reader) (Stats, error) {
	log := d.Log
	if log == nil {
		log = slog.Default()
	}
	jobs := d.Jobs
	if jobs < 1 {
		jobs = 1
	}

	var scanned, summarized, failed, missing, duplicates atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(jobs)

	sc := bufio.NewScanner(in)
	for sc.Scan() {
		hash := strings.TrimSpace(sc.Text())
		if hash == "" {
			continue
		}
		if gctx.Err() != nil {
			break
		}
		scanned.Add(1)
		g.Go(func() error {
			res, err := d.processOne(gctx, log, hash)
			if err != nil {
				return err
			}
			switch res {
			case outcomeSummarized:
				summarized.Add(1)
			case outcomeFailed:
				failed.Add(1)
			case outcomeMissing:
				missing.Add(1)
			case outcomeDuplicate:
				duplicates.Add(1)
			}
			return nil
		})
	}

	err := g.Wait()
	if scanErr := sc.Err(); scanErr != nil && err == nil {
		err = fmt.Errorf("read hash stream: %w", scanErr)
	}

	return Stats{
		Scanned:    scanned.Load(),
		Summarized: summarized.Load(),
		Failed:     failed.Load(),
		Missing:    missing.Load(),
		Duplicates: duplicates.Load(),
	}, err
}

func (d *Driver) processOne(ctx context.Context, log *slog.Logger, hash string) (outcome, error) {
	source, err := d.Corpus.GetSource(ctx, hash)
	if errors.Is(err, corpus.ErrNotFound) {
		log.Warn("hash not in corpus", "hash", hash)
		return outcomeMissing, nil
	}
	if err != nil {
		return 0, err
	}

	ok, err := d.Language.CheckSyntax(ctx, source)
	if err != nil {
		if ctx.Err() != nil {
			return 0, ctx.Err()
		}
		return d.recordFailure(ctx, log, hash, fmt.Sprintf("syntax check: %v", err))
	}
	if !ok {
		log.Info("syntax error", "hash", hash)
		return d.recordFailure(ctx, log, hash, "syntax error")
	}

	sum, err := d.Language.Summarize(ctx, source)
	if err != nil {
		if ctx.Err() != nil {
			return 0, ctx.Err()
		}
		log.Error("summarize failed", "hash", hash, "error", err)
		return d.recordFailure(ctx, log, hash, fmt.Sprintf("summarize: %v", err))
	}

	if err := d.Corpus.InsertSummary(ctx, hash, sum.NTokens, sum.SLOC); err != nil {
		if errors.Is(err, corpus.ErrDuplicateOutcome) {
			// Should not happen when the input comes from
			// ListUnprocessed; worth a loud report either way.
			log.Error("duplicate outcome", "hash", hash, "error", err)
			return outcomeDuplicate, nil
		}
		return 0, err
	}

	log.Info("summarized", "hash", hash, "n_tokens", sum.NTokens, "sloc", sum.SLOC)
	return outcomeSummarized, nil
}

func (d *Driver) recordFailure(ctx context.Context, log *slog.Logger, hash, reason string) (outcome, error) {
	if err := d.Corpus.InsertFailure(ctx, hash, reason); err != nil {
		if errors.Is(err, corpus.ErrDuplicateOutcome) {
			log.Error("duplicate outcome", "hash", hash, "error", err)
			return outcomeDuplicate, nil
		}
		return 0, err
	}
	return outcomeFailed, nil
}
