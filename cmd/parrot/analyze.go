package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/olegrjumin/privacyparrot/internal/app"
	"github.com/olegrjumin/privacyparrot/internal/config"
	"github.com/olegrjumin/privacyparrot/internal/report"
	"github.com/olegrjumin/privacyparrot/internal/service"
)

type analyzeOptions struct {
	url     string
	file    string
	cookies string
	browser bool
	asJSON  bool
	strict  bool
	verbose bool
}

func newAnalyzeCmd() *cobra.Command {
	var opts analyzeOptions

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Analyze a page's privacy risk",
		Long: `Analyze fetches a page (or reads saved HTML with --file) and reports the
data it collects, its trackers and data sharing, a risk level and protection tips.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runAnalyze(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.url, "url", "", "Page URL (required)")
	cmd.Flags().StringVar(&opts.file, "file", "", "Read page HTML from a file instead of fetching it")
	cmd.Flags().StringVar(&opts.cookies, "cookies", "", "Cookie string to analyze with --file")
	cmd.Flags().BoolVar(&opts.browser, "browser", false, "Render the page in headless Chrome")
	cmd.Flags().BoolVar(&opts.asJSON, "json", false, "Print the result as JSON")
	cmd.Flags().BoolVar(&opts.strict, "strict", false, "Fail unless the result matches the published schema")
	cmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false, "Log progress to stderr")
	_ = cmd.MarkFlagRequired("url")

	return cmd
}

func runAnalyze(cmd *cobra.Command, opts analyzeOptions) error {
	cfg := config.Load()
	if opts.browser {
		cfg.UseBrowser = true
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	req := service.Request{URL: opts.url}
	if opts.file != "" {
		html, err := os.ReadFile(opts.file)
		if err != nil {
			return fmt.Errorf("failed to read page file: %w", err)
		}
		req.HTML = string(html)
		req.Cookies = opts.cookies
	}

	a, err := app.New(cfg, cliLogger(cmd, opts.verbose))
	if err != nil {
		return err
	}
	defer a.Close()

	result, err := a.Service.Analyze(cmd.Context(), req)
	if err != nil {
		return fmt.Errorf("%s", service.UserMessage(err))
	}

	if opts.strict {
		if err := report.Validate(result); err != nil {
			return err
		}
	}

	if opts.asJSON {
		return writeIndented(cmd.OutOrStdout(), result)
	}
	return report.Summary(cmd.OutOrStdout(), result, a.Store)
}
