package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hyperifyio/policyregex/internal/report"
	"github.com/hyperifyio/policyregex/internal/stats"
	"github.com/hyperifyio/policyregex/internal/store"
)

var checkFlags struct {
	companies    []string
	allCompanies bool
	fields       []string
	normalized   bool
}

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Report per-field success rates of extraction results",
	Long: "check prints, for every field, how many documents produced a value.\n" +
		"With several companies a summary line per company follows.",
	Args: cobra.NoArgs,
	RunE: runCheck,
}

func init() {
	f := checkCmd.Flags()
	f.StringSliceVar(&checkFlags.companies, "company", nil, "Company directory names (repeatable)")
	f.BoolVar(&checkFlags.allCompanies, "all-companies", false, "Check every company under the documents directory")
	f.StringSliceVar(&checkFlags.fields, "field", nil, "Restrict to these fields (repeatable)")
	f.BoolVar(&checkFlags.normalized, "normalized", false, "Check normalized results instead of raw results")
}

func runCheck(cmd *cobra.Command, _ []string) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()
	companies := checkFlags.companies
	if checkFlags.allCompanies {
		if len(companies) > 0 {
			return fmt.Errorf("--company and --all-companies are mutually exclusive")
		}
		if companies, err = a.Companies(); err != nil {
			return err
		}
	}
	if len(companies) == 0 {
		return fmt.Errorf("one of --company or --all-companies is required")
	}
	stage := store.StageRaw
	if checkFlags.normalized {
		stage = store.StageNormalized
	}

	out := cmd.OutOrStdout()
	summaries := make(map[string]stats.Summary, len(companies))
	for _, c := range companies {
		sum, err := a.Check(cmd.Context(), c, stage, checkFlags.fields)
		if err != nil {
			return err
		}
		summaries[c] = sum
		if err := report.WriteText(out, c, sum); err != nil {
			return err
		}
		fmt.Fprintln(out)
	}
	if len(companies) > 1 {
		fmt.Fprintf(out, "%-30s %10s %8s\n", "COMPANY", "WORKING", "DONE")
		for _, c := range companies {
			s := summaries[c]
			fmt.Fprintf(out, "%-30s %4d/%-5d %7.1f%%\n", c, s.Working, len(s.Fields), s.Completion)
		}
	}
	return nil
}
