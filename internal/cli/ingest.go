package cli

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"codemine/internal/corpus"
	"codemine/internal/flags"
	gh "codemine/internal/github"
	"codemine/internal/language"
)

var ingestOpts struct {
	owner   string
	repo    string
	license string
}

var ingestCmd = &cobra.Command{
	Use:   "ingest <dir>",
	Short: "Ingest a repository checkout into the corpus",
	Long: `Walk a local repository checkout and store every file matching the
language's extensions. Content is addressed by hash, so a file already
present from another repository only gains a provenance entry. Paths
are recorded relative to the checkout root, with forward slashes.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		setup()
		if ingestOpts.owner == "" || ingestOpts.repo == "" {
			fatal(exitConfig, "ingest needs --%s and --%s", flags.FlagOwner, flags.FlagRepo)
		}
		if cfg.Runtime.Language == "" {
			fatal(exitConfig, "ingest needs --%s", flags.FlagLanguage)
		}
		lang, err := language.Lookup(cfg.Runtime.Language)
		if err != nil {
			fatal(exitConfig, "%v", err)
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		c := openCorpus(ctx)
		defer c.Close()

		if ingestOpts.license == "" {
			ingestOpts.license = lookupLicense(ctx)
		}

		// A corpus holds one language; the first ingest pins it.
		recorded, err := c.GetMeta(ctx, corpus.MetaLanguage)
		if err != nil {
			fatal(exitInfra, "reading corpus metadata: %v", err)
		}
		if recorded != "" && recorded != lang.Name() {
			fatal(exitConfig, "corpus is a %s corpus; refusing to ingest %s files", recorded, lang.Name())
		}
		if recorded == "" {
			if err := c.SetMeta(ctx, corpus.MetaLanguage, lang.Name()); err != nil {
				fatal(exitInfra, "recording corpus language: %v", err)
			}
		}

		if err := c.InsertRepository(ctx, corpus.Repository{
			Owner:   ingestOpts.owner,
			Name:    ingestOpts.repo,
			License: ingestOpts.license,
		}); err != nil {
			fatal(exitInfra, "%v", err)
		}

		root := args[0]
		var ingested, skipped int
		walkErr := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if err := ctx.Err(); err != nil {
				return err
			}
			if d.IsDir() {
				if d.Name() == ".git" {
					return filepath.SkipDir
				}
				return nil
			}
			if !hasExtension(path, lang.Extensions()) {
				return nil
			}

			rel, err := filepath.Rel(root, path)
			if err != nil {
				return err
			}
			rel = filepath.ToSlash(rel)

			source, err := os.ReadFile(path)
			if err != nil {
				return err
			}

			hash, err := c.InsertSource(ctx, source, corpus.Provenance{
				Owner: ingestOpts.owner,
				Name:  ingestOpts.repo,
				Path:  rel,
			})
			if errors.Is(err, corpus.ErrDuplicateProvenance) {
				// Re-running ingest over the same checkout; not worth
				// aborting for.
				slog.Warn("already ingested", "path", rel)
				skipped++
				return nil
			}
			if err != nil {
				return err
			}

			slog.Debug("ingested", "path", rel, "hash", hash)
			ingested++
			return nil
		})
		if walkErr != nil {
			fatal(exitInfra, "walking %s: %v", root, walkErr)
		}

		slog.Info("ingest finished",
			"repository", ingestOpts.owner+"/"+ingestOpts.repo,
			"ingested", ingested, "skipped", skipped)
		color.New(color.FgGreen).Fprintf(os.Stderr, "ingested %d files (%d skipped) from %s/%s\n",
			ingested, skipped, ingestOpts.owner, ingestOpts.repo)
	},
}

// lookupLicense asks GitHub for the repository's detected license when
// none was given on the command line. Best effort: ingestion of a local
// checkout must work offline, so any failure just leaves it empty.
func lookupLicense(ctx context.Context) string {
	token, _, err := gh.ResolveToken(ctx)
	if err != nil {
		slog.Debug("license lookup skipped", "error", err)
		return ""
	}
	client, err := gh.NewClient(ctx, token)
	if err != nil {
		slog.Debug("license lookup skipped", "error", err)
		return ""
	}
	license, err := client.RepositoryLicense(ctx, ingestOpts.owner, ingestOpts.repo)
	if err != nil {
		slog.Debug("license lookup failed", "error", err)
		return ""
	}
	return license
}

func hasExtension(path string, exts []string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, want := range exts {
		if ext == want {
			return true
		}
	}
	return false
}

func init() {
	ingestCmd.Flags().StringVar(&ingestOpts.owner, flags.FlagOwner, "", "repository owner")
	ingestCmd.Flags().StringVar(&ingestOpts.repo, flags.FlagRepo, "", "repository name")
	ingestCmd.Flags().StringVar(&ingestOpts.license, flags.FlagLicense, "", "repository license as an SPDX identifier (looked up via GitHub when omitted)")
	rootCmd.AddCommand(ingestCmd)
}
