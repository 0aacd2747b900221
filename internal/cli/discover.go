package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"codemine/internal/discover"
	"codemine/internal/flags"
	gh "codemine/internal/github"
)

var discoverCmd = &cobra.Command{
	Use:   "discover",
	Short: "Enumerate popular GitHub repositories for a language",
	Long: `Enumerate GitHub repositories written in the configured language,
best-rated first, and print one owner/name per line to stdout.

The search API caps how many results a query may return, so discovery
narrows a star-count window from the top: each round searches
stars:min..max, then lowers max below the least-starred repository it
has seen. Repositories tied at a window boundary may be skipped; that
loss is accepted. Rate-limit headers steer the pace between queries.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		setup()
		if cfg.Runtime.Language == "" {
			fatal(exitConfig, "discovery needs --%s", flags.FlagLanguage)
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		token, source, err := gh.ResolveToken(ctx)
		if err != nil {
			fatal(exitInfra, "resolving GitHub token: %v", err)
		}
		if token == "" {
			color.New(color.FgYellow).Fprintln(os.Stderr,
				"no GitHub token found; continuing unauthenticated at a much lower rate limit")
		} else {
			slog.Debug("github token resolved", "source", string(source))
		}

		client, err := gh.NewClient(ctx, token, gh.WithVerbose(cfg.Runtime.Verbose, os.Stderr))
		if err != nil {
			fatal(exitInfra, "creating GitHub client: %v", err)
		}

		d := &discover.Discoverer{
			Searcher: discover.NewSearchClient(client),
			Limiter:  client.Budget,
			Language: cfg.Runtime.Language,
			MinStars: cfg.Discovery.MinStars,
			MaxRepos: cfg.Discovery.MaxRepos,
		}

		count := 0
		err = d.Each(ctx, func(r discover.Repo) error {
			fmt.Fprintln(cmd.OutOrStdout(), r.FullName)
			count++
			return nil
		})
		if err != nil {
			slog.Error("discovery aborted", "error", err, "discovered", count)
			fatal(exitInfra, "discovery aborted after %d repositories: %v", count, err)
		}

		slog.Info("discovery finished", "language", cfg.Runtime.Language, "discovered", count)
		color.New(color.FgGreen).Fprintf(os.Stderr, "discovered %d repositories\n", count)
	},
}

func init() {
	discoverCmd.Flags().IntVar(&cfg.Discovery.MinStars, flags.FlagMinStars, viper.GetInt(keyMinStars),
		"least-starred repository to include")
	bindToConfig(discoverCmd.Flags(), flags.FlagMinStars, keyMinStars)
	discoverCmd.Flags().IntVar(&cfg.Discovery.MaxRepos, flags.FlagMaxRepos, cfg.Discovery.MaxRepos,
		"stop after this many repositories (0 = exhaust the star range)")
	rootCmd.AddCommand(discoverCmd)
}
