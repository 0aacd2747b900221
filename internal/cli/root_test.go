package cli

import (
	"bytes"
	"testing"
)

// Usage mistakes must surface as errors from Execute, where they map to
// the configuration exit code rather than the domain one. Cobra rejects
// these before any command body runs.
func TestUsageErrorsSurface(t *testing.T) {
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})

	t.Run("unknown command", func(t *testing.T) {
		rootCmd.SetArgs([]string{"no-such-command"})
		if err := rootCmd.Execute(); err == nil {
			t.Fatalf("Expected an error for an unknown command")
		}
	})

	t.Run("unknown flag", func(t *testing.T) {
		rootCmd.SetArgs([]string{"list", "unprocessed", "--no-such-flag"})
		if err := rootCmd.Execute(); err == nil {
			t.Fatalf("Expected an error for an unknown flag")
		}
	})
}
