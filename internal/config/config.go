package config

import (
	"errors"
	"fmt"
	"strings"
)

type Config struct {
	Storage   Storage
	Discovery Discovery
	Runtime   Runtime
}

type Storage struct {
	// DSN locates the corpus database (see --db).
	// A plain path opens a SQLite database file; a postgres:// or
	// postgresql:// URL opens a PostgreSQL database.
	DSN string
}

type Discovery struct {
	// MinStars is the minimum stargazer count for repository discovery
	// (see --min-stars). Repositories below this threshold are not
	// enumerated.
	MinStars int

	// MaxRepos limits how many repository names discovery yields
	// (see --max-repos). 0 means unlimited.
	MaxRepos int
}

type Runtime struct {
	// Language names the grammar used for syntax checking, tokenization
	// and vocabulary extraction (see --language).
	Language string

	// Jobs controls how many files the batch driver processes in
	// parallel (see --jobs). Must be >= 1; 1 means sequential.
	Jobs int

	// Verbose enables debug diagnostics on stderr in addition to the
	// log file (see --verbose).
	Verbose bool

	// LogFile is the rotating diagnostic log path (see --log-file).
	LogFile string
}

func New() *Config {
	return &Config{
		Storage: Storage{
			DSN: "corpus.db",
		},
		Discovery: Discovery{
			MinStars: 10,
		},
		Runtime: Runtime{
			Jobs:    1,
			LogFile: ".codemine.log",
		},
	}
}

func (c *Config) Validate() error {
	c.Storage.DSN = strings.TrimSpace(c.Storage.DSN)
	if c.Storage.DSN == "" {
		return errors.New("--db must not be empty")
	}

	c.Runtime.Language = strings.ToLower(strings.TrimSpace(c.Runtime.Language))

	if c.Discovery.MinStars < 0 {
		return fmt.Errorf("--min-stars must be >= 0 (got %d)", c.Discovery.MinStars)
	}
	if c.Discovery.MaxRepos < 0 {
		return fmt.Errorf("--max-repos must be >= 0 (got %d)", c.Discovery.MaxRepos)
	}
	if c.Runtime.Jobs < 1 {
		return fmt.Errorf("--jobs must be >= 1 (got %d)", c.Runtime.Jobs)
	}
	return nil
}
