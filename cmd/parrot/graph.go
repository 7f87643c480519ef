package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/olegrjumin/privacyparrot/internal/analysis"
	"github.com/olegrjumin/privacyparrot/internal/explain"
	"github.com/olegrjumin/privacyparrot/internal/graph"
)

func newGraphCmd() *cobra.Command {
	var input string

	cmd := &cobra.Command{
		Use:   "graph",
		Short: "Build the data-sharing graph of an analysis result",
		Long:  "graph reads a result printed by 'analyze --json' from --input or stdin and prints its node-link graph.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			var r io.Reader = cmd.InOrStdin()
			if input != "" && input != "-" {
				f, err := os.Open(input)
				if err != nil {
					return fmt.Errorf("failed to open result: %w", err)
				}
				defer f.Close()
				r = f
			}

			var result analysis.Result
			if err := json.NewDecoder(r).Decode(&result); err != nil {
				return fmt.Errorf("failed to decode result: %w", err)
			}

			store, err := explain.Default()
			if err != nil {
				return err
			}
			return writeIndented(cmd.OutOrStdout(), graph.NewBuilder(store).Build(&result))
		},
	}
	cmd.Flags().StringVarP(&input, "input", "i", "", "Result JSON file; stdin when empty or -")

	return cmd
}
