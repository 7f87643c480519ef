// Package main provides the privacy parrot command line.
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/olegrjumin/privacyparrot/internal/config"
	"github.com/olegrjumin/privacyparrot/internal/logging"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "parrot",
		Short:         "Privacy risk analysis for web pages",
		Long:          "parrot scores how much a web page collects, tracks and shares, and explains the findings in plain language.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(newAnalyzeCmd(), newExplainCmd(), newGraphCmd(), newServeCmd())
	return root
}

func main() {
	// Load .env file if it exists
	_ = config.LoadDotEnv()

	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// cliLogger keeps stdout for command output
func cliLogger(cmd *cobra.Command, verbose bool) *logging.Logger {
	if verbose {
		return logging.NewWithWriter(cmd.ErrOrStderr())
	}
	return logging.Discard()
}

func writeIndented(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
