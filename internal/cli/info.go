package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"codemine/internal/corpus"
)

var infoCmd = &cobra.Command{
	Use:   "info <hash>",
	Short: "Show provenance and processing outcome for one hash",
	Long: `Show everything the corpus knows about one content hash: every
repository and path the content was seen at, and whether it parsed.
Exits with status 1 when the hash was never ingested.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		setup()

		ctx := context.Background()
		c := openCorpus(ctx)
		defer c.Close()

		hash := args[0]
		info, err := c.FileInfo(ctx, hash)
		if errors.Is(err, corpus.ErrNotFound) {
			fatal(exitDomain, "hash %s is not in the corpus", hash)
		}
		if err != nil {
			fatal(exitInfra, "%v", err)
		}

		lang, err := c.GetMeta(ctx, corpus.MetaLanguage)
		if err != nil {
			fatal(exitInfra, "reading corpus metadata: %v", err)
		}

		writeFileInfo(cmd.OutOrStdout(), os.Stderr, info, lang)
	},
}

// writeFileInfo renders one hash's record: identity, every location the
// content was seen at, and the recorded outcome. Duplicated content is
// flagged on the diagnostic writer so it stands out even when stdout is
// piped.
func writeFileInfo(w, diag io.Writer, info *corpus.FileInfo, lang string) {
	fmt.Fprintf(w, "hash: %s\n", info.Hash)
	if lang != "" {
		fmt.Fprintf(w, "language: %s\n", lang)
	}

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Repository", "Path", "License", "URL"})
	for _, loc := range info.Locations {
		table.Append([]string{
			loc.Owner + "/" + loc.Name,
			loc.Path,
			loc.License,
			fmt.Sprintf("https://github.com/%s/%s", loc.Owner, loc.Name),
		})
	}
	table.Render()

	if n := len(info.Locations); n > 1 {
		color.New(color.FgYellow).Fprintf(diag, "content exists in %d locations\n", n)
	}

	switch {
	case info.Summarized:
		fmt.Fprintf(w, "tokens: %d\nsloc: %d\n", info.NTokens, info.SLOC)
	case info.Failed:
		fmt.Fprintf(w, "failed: %s\n", info.FailReason)
	default:
		fmt.Fprintln(w, "unprocessed")
	}
}

func init() {
	rootCmd.AddCommand(infoCmd)
}
