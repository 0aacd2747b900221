package corpus

import (
	"context"
	"fmt"
	"time"
)

// ListUnprocessed returns hashes present in source_file with no recorded
// outcome yet, in stable (sorted) order.
func (c *Corpus) ListUnprocessed(ctx context.Context) ([]string, error) {
	return c.listHashes(ctx, `
		SELECT hash FROM source_file
		WHERE hash NOT IN (SELECT hash FROM source_summary)
		  AND hash NOT IN (SELECT hash FROM failure)
		ORDER BY hash`)
}

// ListEligible returns summarized hashes with a non-zero token count, in
// stable (sorted) order. Trivial or empty files are excluded from
// downstream vocabulary and training use.
func (c *Corpus) ListEligible(ctx context.Context) ([]string, error) {
	return c.listHashes(ctx, `
		SELECT hash FROM source_summary
		WHERE n_tokens > 0
		ORDER BY hash`)
}

func (c *Corpus) listHashes(ctx context.Context, query string) ([]string, error) {
	rows, err := c.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list hashes: %w", err)
	}
	defer rows.Close()

	var hashes []string
	for rows.Next() {
		var h string
		if err := rows.Scan(&h); err != nil {
			return nil, fmt.Errorf("list hashes: %w", err)
		}
		hashes = append(hashes, h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list hashes: %w", err)
	}
	return hashes, nil
}

// InsertSummary records a successful parse outcome for a hash. The write
// is one transaction: a concurrent reader never sees the hash as both
// unprocessed and processed. Returns ErrDuplicateOutcome if any outcome
// already exists for the hash.
func (c *Corpus) InsertSummary(ctx context.Context, hash string, nTokens, sloc int) error {
	return c.insertOutcome(ctx, hash, "failure", `
		INSERT INTO source_summary (hash, n_tokens, sloc) VALUES (?, ?, ?)
		ON CONFLICT (hash) DO NOTHING`,
		hash, nTokens, sloc)
}

// InsertFailure records a parse or summarize failure for a hash. Same
// atomicity and duplicate semantics as InsertSummary.
func (c *Corpus) InsertFailure(ctx context.Context, hash, reason string) error {
	return c.insertOutcome(ctx, hash, "source_summary", `
		INSERT INTO failure (hash, reason, recorded_at) VALUES (?, ?, ?)
		ON CONFLICT (hash) DO NOTHING`,
		hash, reason, time.Now().UTC())
}

// insertOutcome performs the outcome write under a transaction, first
// checking the opposite outcome table so a hash can never be both
// summarized and failed. The primary key on the target table backstops
// races between concurrent drivers: a lost race surfaces as zero rows
// affected, never as a silent double count.
func (c *Corpus) insertOutcome(ctx context.Context, hash, otherTable, insert string, args ...any) error {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("record outcome %s: %w", hash, err)
	}
	defer tx.Rollback()

	// Under READ COMMITTED two drivers recording opposite verdicts would
	// each check the opposite table before either commits, and the
	// inserts land in different tables so no primary key collides. A row
	// lock on source_file serializes writers per hash. SQLite allows one
	// writer at a time and does not parse FOR UPDATE, so it skips this.
	if c.driver == driverPostgres {
		if _, err := tx.ExecContext(ctx, c.rebind(
			`SELECT hash FROM source_file WHERE hash = ? FOR UPDATE`), hash); err != nil {
			return fmt.Errorf("record outcome %s: lock: %w", hash, err)
		}
	}

	var exists bool
	check := fmt.Sprintf(`SELECT EXISTS (SELECT 1 FROM %s WHERE hash = ?)`, otherTable)
	if err := tx.QueryRowContext(ctx, c.rebind(check), hash).Scan(&exists); err != nil {
		return fmt.Errorf("record outcome %s: %w", hash, err)
	}
	if exists {
		return fmt.Errorf("record outcome %s: %w", hash, ErrDuplicateOutcome)
	}

	res, err := tx.ExecContext(ctx, c.rebind(insert), args...)
	if err != nil {
		return fmt.Errorf("record outcome %s: %w", hash, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("record outcome %s: %w", hash, err)
	}
	if affected == 0 {
		return fmt.Errorf("record outcome %s: %w", hash, ErrDuplicateOutcome)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("record outcome %s: %w", hash, err)
	}
	return nil
}

// CorpusStats returns corpus-wide processing counts.
func (c *Corpus) CorpusStats(ctx context.Context) (Stats, error) {
	var s Stats
	row := c.db.QueryRowContext(ctx, `
		SELECT
			(SELECT COUNT(*) FROM source_file),
			(SELECT COUNT(*) FROM source_summary),
			(SELECT COUNT(*) FROM failure)`)
	if err := row.Scan(&s.Files, &s.Summarized, &s.Failed); err != nil {
		return Stats{}, fmt.Errorf("corpus stats: %w", err)
	}
	return s, nil
}
