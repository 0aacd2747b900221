package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"codemine/internal/config"
	"codemine/internal/corpus"
	"codemine/internal/flags"
	"codemine/internal/language"
)

// Exit codes. Zero means success; cobra handles its own usage errors.
const (
	exitOK     = 0
	exitDomain = 1
	exitConfig = 2
	exitInfra  = 3
)

var cfg = config.New()

var rootCmd = &cobra.Command{
	Use:   "codemine",
	Short: "Mine a parsable source-code corpus from GitHub",
	Long: `codemine builds a corpus of real-world source files.

It discovers popular repositories on GitHub one star window at a time,
ingests their files into a content-addressed database, and classifies
every file as parsable or not with a language grammar. Results feed
token counts, line counts, and vocabulary extraction.`,
	SilenceUsage: true,
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfg.Storage.DSN, flags.FlagDB, viper.GetString(keyDB),
		"corpus database: a SQLite path or a postgres:// URL")
	bindToConfig(pf, flags.FlagDB, keyDB)
	pf.StringVar(&cfg.Runtime.Language, flags.FlagLanguage, viper.GetString(keyLanguage),
		"language grammar to use (go, javascript)")
	bindToConfig(pf, flags.FlagLanguage, keyLanguage)
	pf.BoolVarP(&cfg.Runtime.Verbose, flags.FlagVerbose, "v", false,
		"echo diagnostics to stderr in addition to the log file")
	pf.StringVar(&cfg.Runtime.LogFile, flags.FlagLogFile, viper.GetString(keyLogFile),
		"diagnostic log file")
	bindToConfig(pf, flags.FlagLogFile, keyLogFile)
}

func bindToConfig(pf *pflag.FlagSet, name, key string) {
	if err := viper.BindPFlag(key, pf.Lookup(name)); err != nil {
		panic(fmt.Sprintf("binding flag %q: %v", name, err))
	}
}

// setup finishes configuration after flag parsing. It terminates the
// process on invalid configuration.
func setup() {
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(exitConfig)
	}
	configureLogger(cfg.Runtime.LogFile, cfg.Runtime.Verbose)
}

func fatal(code int, format string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	os.Exit(code)
}

func openCorpus(ctx context.Context) *corpus.Corpus {
	c, err := corpus.Open(ctx, cfg.Storage.DSN)
	if err != nil {
		fatal(exitInfra, "opening corpus %s: %v", cfg.Storage.DSN, err)
	}
	return c
}

// corpusLanguage resolves the grammar for an already-populated corpus.
// The --language flag wins; otherwise the language recorded at ingest
// time applies. A corpus is monolingual, so a flag that contradicts the
// recorded language is refused.
func corpusLanguage(ctx context.Context, c *corpus.Corpus) language.Language {
	recorded, err := c.GetMeta(ctx, corpus.MetaLanguage)
	if err != nil {
		fatal(exitInfra, "reading corpus metadata: %v", err)
	}

	name := cfg.Runtime.Language
	switch {
	case name == "" && recorded == "":
		fatal(exitConfig, "no language recorded in the corpus; pass --%s", flags.FlagLanguage)
	case name == "":
		name = recorded
	case recorded != "" && recorded != name:
		fatal(exitConfig, "corpus is a %s corpus; refusing --%s=%s", recorded, flags.FlagLanguage, name)
	}

	lang, err := language.Lookup(name)
	if err != nil {
		fatal(exitConfig, "%v", err)
	}
	return lang
}

// Execute runs the command tree and exits the process on failure.
// Commands terminate themselves with the proper code via fatal, so the
// only errors surfacing here are cobra's own: unknown commands, bad
// flags, wrong argument counts.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(exitConfig)
	}
}
