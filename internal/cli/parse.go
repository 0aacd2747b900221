package cli

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"codemine/internal/flags"
	"codemine/internal/pipeline"
)

var parseCmd = &cobra.Command{
	Use:   "parse",
	Short: "Parse and summarize hashes read from stdin",
	Long: `Read newline-delimited content hashes from stdin and decide each
file's fate: a file that parses gets a summary (token count, source
lines of code), a file that does not gets a failure record. Either way
the verdict for a hash is recorded exactly once.

A single file's parse failure never stops the batch. Pipe the output
of "codemine list unprocessed" in to drain the backlog:

  codemine list unprocessed | codemine parse`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		setup()

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		c := openCorpus(ctx)
		defer c.Close()

		d := &pipeline.Driver{
			Corpus:   c,
			Language: corpusLanguage(ctx, c),
			Jobs:     cfg.Runtime.Jobs,
			Log:      slog.Default(),
		}

		stats, err := d.Run(ctx, cmd.InOrStdin())
		if err != nil {
			fatal(exitInfra, "batch aborted after %d hashes: %v", stats.Scanned, err)
		}

		slog.Info("batch finished",
			"scanned", stats.Scanned, "summarized", stats.Summarized,
			"failed", stats.Failed, "missing", stats.Missing,
			"duplicates", stats.Duplicates)
		color.New(color.FgGreen).Fprintf(os.Stderr,
			"scanned %d hashes: %d summarized, %d failed, %d missing, %d already decided\n",
			stats.Scanned, stats.Summarized, stats.Failed, stats.Missing, stats.Duplicates)
	},
}

func init() {
	parseCmd.Flags().IntVar(&cfg.Runtime.Jobs, flags.FlagJobs, cfg.Runtime.Jobs, "hashes to process in parallel")
	rootCmd.AddCommand(parseCmd)
}
