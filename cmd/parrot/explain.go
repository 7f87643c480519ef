package main

import (
	"github.com/spf13/cobra"

	"github.com/olegrjumin/privacyparrot/internal/explain"
)

func newExplainCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "explain",
		Short: "Explain a data type or tracker",
	}

	dataType := &cobra.Command{
		Use:   "data-type NAME",
		Short: "Explain why a collected data type matters",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := explain.Default()
			if err != nil {
				return err
			}
			return writeIndented(cmd.OutOrStdout(), store.DataType(args[0]))
		},
	}

	var trackerType string
	tracker := &cobra.Command{
		Use:   "tracker NAME",
		Short: "Explain what a tracker does",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := explain.Default()
			if err != nil {
				return err
			}
			return writeIndented(cmd.OutOrStdout(), store.Tracker(args[0], trackerType))
		},
	}
	tracker.Flags().StringVar(&trackerType, "type", "", "Tracker type, e.g. Analytics or Advertising")

	cmd.AddCommand(dataType, tracker)
	return cmd
}
