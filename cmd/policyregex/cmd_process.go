package main

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/hyperifyio/policyregex/internal/app"
	"github.com/hyperifyio/policyregex/internal/report"
	"github.com/hyperifyio/policyregex/internal/store"
)

var processFlags struct {
	company        string
	allCompanies   bool
	skipExtraction bool
	report         bool
}

var processCmd = &cobra.Command{
	Use:   "process",
	Short: "Extract then normalize, skipping normalization when no mapping exists",
	Args:  cobra.NoArgs,
	RunE:  runProcess,
}

func init() {
	f := processCmd.Flags()
	f.StringVar(&processFlags.company, "company", "", "Company directory name (e.g. ak_E)")
	f.BoolVar(&processFlags.allCompanies, "all-companies", false, "Process every company under the documents directory")
	f.BoolVar(&processFlags.skipExtraction, "skip-extraction", false, "Normalize the existing raw results only")
	f.BoolVar(&processFlags.report, "report", false, "Print field statistics after processing")
}

func runProcess(cmd *cobra.Command, _ []string) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()
	companies, err := selectCompanies(processFlags.company, processFlags.allCompanies, a.Companies)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	var errs []error
	for _, c := range companies {
		pr, err := a.Process(cmd.Context(), c, app.ProcessOptions{SkipExtraction: processFlags.skipExtraction})
		if err != nil {
			log.Error().Err(err).Str("company", c).Msg("processing failed")
			errs = append(errs, fmt.Errorf("%s: %w", c, err))
			continue
		}
		if pr.Extracted != nil {
			fmt.Fprintf(out, "%s: extracted %d documents -> %s\n", c, len(pr.Extracted.Results), pr.Extracted.Output)
		}
		if pr.Normalized != nil {
			fmt.Fprintf(out, "%s: normalized -> %s\n", c, pr.Normalized.Output)
		}
		if processFlags.report {
			sum, err := a.Check(cmd.Context(), c, store.StageRaw, nil)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", c, err))
				continue
			}
			if err := report.WriteText(out, c, sum); err != nil {
				return err
			}
		}
	}
	return errors.Join(errs...)
}
