package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"codemine/internal/vocab"
)

var vocabCmd = &cobra.Command{
	Use:   "vocab [hash...]",
	Short: "Print the vocabulary over summarized files",
	Long: `Print the abstracted vocabulary (sorted, deduplicated) drawn from the
given hashes, one entry per line. Open-class lexemes appear as category
markers like <IDENTIFIER>; keywords and punctuation appear verbatim.
With no arguments, the vocabulary covers every eligible file: every
summarized hash with at least one token.`,
	Run: func(cmd *cobra.Command, args []string) {
		setup()

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		c := openCorpus(ctx)
		defer c.Close()

		hashes := args
		if len(hashes) == 0 {
			var err error
			hashes, err = c.ListEligible(ctx)
			if err != nil {
				fatal(exitInfra, "%v", err)
			}
		}

		entries, err := vocab.Discover(ctx, c, corpusLanguage(ctx, c), hashes)
		if err != nil {
			fatal(exitInfra, "%v", err)
		}

		for _, entry := range entries {
			fmt.Fprintln(cmd.OutOrStdout(), entry)
		}
	},
}

func init() {
	rootCmd.AddCommand(vocabCmd)
}
