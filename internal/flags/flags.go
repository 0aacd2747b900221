// Package flags defines canonical CLI flag names shared across the CLI.
// Keeping these as constants helps avoid drift between Cobra flag wiring,
// viper config keys, and help text that references other flags.
// IMPORTANT: These are flag *names* without leading dashes.
package flags

const (
	// Storage
	FlagDB = "db"

	// Language selection
	FlagLanguage = "language"

	// Discovery
	FlagMinStars = "min-stars"
	FlagMaxRepos = "max-repos"

	// Ingestion
	FlagOwner   = "owner"
	FlagRepo    = "repo"
	FlagLicense = "license"

	// Processing
	FlagJobs = "jobs"

	// Runtime
	FlagVerbose = "verbose"
	FlagLogFile = "log-file"
)
