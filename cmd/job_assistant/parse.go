package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jonathan/job-assistant/internal/analysis"
	"github.com/jonathan/job-assistant/internal/extract"
	"github.com/jonathan/job-assistant/internal/intake"
	"github.com/jonathan/job-assistant/internal/observability"
	"github.com/spf13/cobra"
)

var (
	parseInputFile string
	parseVerbose   bool
)

var parseCmd = &cobra.Command{
	Use:   "parse",
	Short: "Extract and analyze a local PDF résumé",
	Long:  "Run the text extractor and entity analyzer on a local PDF and print the upload response JSON. No rate limit or authentication applies.",
	RunE:  runParse,
}

func init() {
	parseCmd.Flags().StringVarP(&parseInputFile, "in", "i", "", "Path to PDF file (required)")
	parseCmd.Flags().BoolVarP(&parseVerbose, "verbose", "v", false, "Print a summary box to stderr")
	_ = parseCmd.MarkFlagRequired("in")
	rootCmd.AddCommand(parseCmd)
}

func runParse(cmd *cobra.Command, _ []string) error {
	data, err := os.ReadFile(parseInputFile)
	if err != nil {
		return fmt.Errorf("failed to read input file: %w", err)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	// Same pipeline as the upload endpoint, minus the limiter.
	svc := intake.NewService(nil, extract.New(), analysis.New(nil), 1)
	resp, err := svc.Intake(ctx, intake.Upload{
		Caller:   "cli",
		Filename: filepath.Base(parseInputFile),
		Data:     data,
	})
	if err != nil {
		return err
	}

	if parseVerbose {
		observability.NewPrinter(cmd.ErrOrStderr()).PrintAnalysis(resp.Filename, resp.ParsedData)
	}

	jsonBytes, err := json.MarshalIndent(resp, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(jsonBytes))
	return nil
}
