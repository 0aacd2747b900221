// Package corpus is the content-addressed store and processing ledger for
// mined source files. Raw bytes are keyed by a digest of their content, so
// identical files from different repositories collapse to one row with one
// provenance entry per origin. Outcome tables record, exactly once per
// hash, whether a file parsed (source_summary) or not (failure).
package corpus

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

var (
	// ErrNotFound is returned when a hash has no source_file row.
	ErrNotFound = errors.New("not found in corpus")

	// ErrDuplicateOutcome is returned when an outcome row already exists
	// for a hash. Under correct sequencing this never happens; observing
	// it is a bug to report, not to paper over.
	ErrDuplicateOutcome = errors.New("hash already has a recorded outcome")

	// ErrDuplicateProvenance is returned when the exact (hash, owner,
	// name, path) provenance is already recorded, as happens when a
	// checkout is ingested twice.
	ErrDuplicateProvenance = errors.New("provenance already recorded")
)

const (
	driverSQLite   = "sqlite"
	driverPostgres = "pgx"

	// sourceCacheSize bounds the in-process LRU of raw source blobs.
	// Vocabulary passes re-read the same deduplicated hashes often.
	sourceCacheSize = 256

	// MetaLanguage records which grammar a corpus was ingested with.
	// A corpus is monolingual.
	MetaLanguage = "language"
)

type Corpus struct {
	db     *sql.DB
	driver string
	cache  *lru.Cache[string, []byte]
}

// Open connects to the corpus database and migrates its schema. A
// postgres:// or postgresql:// DSN selects PostgreSQL via pgx; anything
// else is treated as a SQLite database path.
func Open(ctx context.Context, dsn string) (*Corpus, error) {
	driver := driverSQLite
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		driver = driverPostgres
	} else if !strings.HasPrefix(dsn, "file:") {
		// Pragmas ride the DSN so every pooled connection gets them, not
		// just the first. Immediate transactions take the write lock at
		// BEGIN, so concurrent outcome writers queue on the busy timeout
		// instead of failing a read-to-write upgrade mid-transaction.
		dsn = "file:" + dsn +
			"?_txlock=immediate" +
			"&_pragma=journal_mode(WAL)" +
			"&_pragma=foreign_keys(1)" +
			"&_pragma=busy_timeout(5000)"
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open corpus db: %w", err)
	}

	cache, err := lru.New[string, []byte](sourceCacheSize)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("source cache: %w", err)
	}

	c := &Corpus{db: db, driver: driver, cache: cache}
	if err := c.migrate(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate corpus schema: %w", err)
	}
	return c, nil
}

func (c *Corpus) Close() error {
	return c.db.Close()
}

// rebind rewrites ? placeholders to the $N form PostgreSQL expects.
// Queries in this package are written with ? (the SQLite form).
func (c *Corpus) rebind(query string) string {
	if c.driver != driverPostgres {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// SetMeta stores one corpus-level key (language, started timestamp).
func (c *Corpus) SetMeta(ctx context.Context, key, value string) error {
	_, err := c.db.ExecContext(ctx, c.rebind(`
		INSERT INTO meta (key, value) VALUES (?, ?)
		ON CONFLICT (key) DO UPDATE SET value = excluded.value`),
		key, value)
	if err != nil {
		return fmt.Errorf("set meta %s: %w", key, err)
	}
	return nil
}

// GetMeta returns the stored value, or "" when the key is absent.
func (c *Corpus) GetMeta(ctx context.Context, key string) (string, error) {
	var value string
	err := c.db.QueryRowContext(ctx,
		c.rebind(`SELECT value FROM meta WHERE key = ?`), key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("get meta %s: %w", key, err)
	}
	return value, nil
}
