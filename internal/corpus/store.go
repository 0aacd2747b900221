package corpus

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// InsertRepository records repository metadata. Re-inserting the same
// owner/name is a no-op.
func (c *Corpus) InsertRepository(ctx context.Context, r Repository) error {
	_, err := c.db.ExecContext(ctx, c.rebind(`
		INSERT INTO repository (owner, name, license) VALUES (?, ?, ?)
		ON CONFLICT (owner, name) DO NOTHING`),
		r.Owner, r.Name, r.License)
	if err != nil {
		return fmt.Errorf("insert repository %s/%s: %w", r.Owner, r.Name, err)
	}
	return nil
}

// InsertSource ingests one file. Identical content already in the corpus
// gains a new provenance row instead of a second copy; re-ingesting the
// exact same (hash, owner, name, path) returns ErrDuplicateProvenance.
// Returns the content hash.
func (c *Corpus) InsertSource(ctx context.Context, source []byte, prov Provenance) (string, error) {
	hash := HashOf(source)

	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("ingest %s: %w", hash, err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, c.rebind(`
		INSERT INTO source_file (hash, source) VALUES (?, ?)
		ON CONFLICT (hash) DO NOTHING`),
		hash, source); err != nil {
		return "", fmt.Errorf("ingest %s: store bytes: %w", hash, err)
	}

	res, err := tx.ExecContext(ctx, c.rebind(`
		INSERT INTO repository_source (hash, owner, name, path) VALUES (?, ?, ?, ?)
		ON CONFLICT (hash, owner, name, path) DO NOTHING`),
		hash, prov.Owner, prov.Name, prov.Path)
	if err != nil {
		return "", fmt.Errorf("ingest %s: provenance %s/%s:%s: %w",
			hash, prov.Owner, prov.Name, prov.Path, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return "", fmt.Errorf("ingest %s: %w", hash, err)
	}
	if affected == 0 {
		return "", fmt.Errorf("ingest %s: provenance %s/%s:%s: %w",
			hash, prov.Owner, prov.Name, prov.Path, ErrDuplicateProvenance)
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("ingest %s: %w", hash, err)
	}
	return hash, nil
}

// GetSource returns the raw bytes for a hash, or ErrNotFound.
func (c *Corpus) GetSource(ctx context.Context, hash string) ([]byte, error) {
	if src, ok := c.cache.Get(hash); ok {
		return src, nil
	}

	var src []byte
	err := c.db.QueryRowContext(ctx,
		c.rebind(`SELECT source FROM source_file WHERE hash = ?`), hash).Scan(&src)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("source %s: %w", hash, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("source %s: %w", hash, err)
	}

	c.cache.Add(hash, src)
	return src, nil
}

// FileInfo returns provenance and processing outcome for one hash, or
// ErrNotFound when the hash was never ingested.
func (c *Corpus) FileInfo(ctx context.Context, hash string) (*FileInfo, error) {
	var exists bool
	if err := c.db.QueryRowContext(ctx, c.rebind(
		`SELECT EXISTS (SELECT 1 FROM source_file WHERE hash = ?)`), hash).Scan(&exists); err != nil {
		return nil, fmt.Errorf("file info %s: %w", hash, err)
	}
	if !exists {
		return nil, fmt.Errorf("file info %s: %w", hash, ErrNotFound)
	}

	info := &FileInfo{Hash: hash}

	rows, err := c.db.QueryContext(ctx, c.rebind(`
		SELECT rs.owner, rs.name, rs.path, COALESCE(r.license, '')
		FROM repository_source rs
		LEFT JOIN repository r ON r.owner = rs.owner AND r.name = rs.name
		WHERE rs.hash = ?
		ORDER BY rs.owner, rs.name, rs.path`), hash)
	if err != nil {
		return nil, fmt.Errorf("file info %s: provenance: %w", hash, err)
	}
	defer rows.Close()
	for rows.Next() {
		var loc Location
		if err := rows.Scan(&loc.Owner, &loc.Name, &loc.Path, &loc.License); err != nil {
			return nil, fmt.Errorf("file info %s: provenance: %w", hash, err)
		}
		info.Locations = append(info.Locations, loc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("file info %s: provenance: %w", hash, err)
	}

	err = c.db.QueryRowContext(ctx, c.rebind(
		`SELECT n_tokens, sloc FROM source_summary WHERE hash = ?`), hash).
		Scan(&info.NTokens, &info.SLOC)
	switch {
	case err == nil:
		info.Summarized = true
	case errors.Is(err, sql.ErrNoRows):
	default:
		return nil, fmt.Errorf("file info %s: summary: %w", hash, err)
	}

	err = c.db.QueryRowContext(ctx, c.rebind(
		`SELECT reason FROM failure WHERE hash = ?`), hash).Scan(&info.FailReason)
	switch {
	case err == nil:
		info.Failed = true
	case errors.Is(err, sql.ErrNoRows):
	default:
		return nil, fmt.Errorf("file info %s: failure: %w", hash, err)
	}

	return info, nil
}
