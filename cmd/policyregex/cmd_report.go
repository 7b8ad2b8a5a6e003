package main

import (
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/hyperifyio/policyregex/internal/report"
	"github.com/hyperifyio/policyregex/internal/stats"
	"github.com/hyperifyio/policyregex/internal/store"
)

var reportFlags struct {
	company string
	output  string
	raw     bool
}

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Export results as PDF or XLSX",
}

var reportPDFCmd = &cobra.Command{
	Use:   "pdf",
	Short: "Write a PDF field coverage report",
	Args:  cobra.NoArgs,
	RunE:  func(cmd *cobra.Command, _ []string) error { return runReport(cmd, ".pdf") },
}

var reportXLSXCmd = &cobra.Command{
	Use:   "xlsx",
	Short: "Write an XLSX workbook of results and coverage",
	Args:  cobra.NoArgs,
	RunE:  func(cmd *cobra.Command, _ []string) error { return runReport(cmd, ".xlsx") },
}

func init() {
	pf := reportCmd.PersistentFlags()
	pf.StringVar(&reportFlags.company, "company", "", "Company directory name (required)")
	pf.StringVarP(&reportFlags.output, "output", "o", "", "Output file (default <data-dir>/04_reports/<company>.<ext>)")
	pf.BoolVar(&reportFlags.raw, "raw", false, "Use raw results instead of normalized results")
	_ = reportCmd.MarkPersistentFlagRequired("company")
	reportCmd.AddCommand(reportPDFCmd)
	reportCmd.AddCommand(reportXLSXCmd)
}

func runReport(cmd *cobra.Command, ext string) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()
	stage := store.StageNormalized
	if reportFlags.raw {
		stage = store.StageRaw
	}
	set, err := a.Results(cmd.Context(), reportFlags.company, stage)
	if err != nil {
		return err
	}
	path := reportFlags.output
	if path == "" {
		path = filepath.Join(a.Layout().ReportsDir(), reportFlags.company+ext)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	switch ext {
	case ".pdf":
		err = report.WriteCoveragePDF(path, reportFlags.company, stats.Summarize(set), time.Now())
	default:
		err = report.WriteXLSX(path, set)
	}
	if err != nil {
		return err
	}
	log.Info().Str("company", reportFlags.company).Str("output", path).Msg("report written")
	return nil
}
