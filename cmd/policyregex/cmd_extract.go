package main

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/hyperifyio/policyregex/internal/app"
)

var extractFlags struct {
	company      string
	allCompanies bool
	output       string
}

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Extract raw field values from a company's documents",
	Args:  cobra.NoArgs,
	RunE:  runExtract,
}

func init() {
	f := extractCmd.Flags()
	f.StringVar(&extractFlags.company, "company", "", "Company directory name (e.g. ak_E)")
	f.BoolVar(&extractFlags.allCompanies, "all-companies", false, "Extract every company under the documents directory")
	f.StringVarP(&extractFlags.output, "output", "o", "", "Raw results file (single company only)")
}

func runExtract(cmd *cobra.Command, _ []string) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()
	companies, err := selectCompanies(extractFlags.company, extractFlags.allCompanies, a.Companies)
	if err != nil {
		return err
	}
	if extractFlags.output != "" && len(companies) > 1 {
		return fmt.Errorf("--output requires a single --company")
	}
	out := cmd.OutOrStdout()
	var errs []error
	for _, c := range companies {
		res, err := a.Extract(cmd.Context(), c, app.ExtractOptions{Output: extractFlags.output})
		if err != nil {
			log.Error().Err(err).Str("company", c).Msg("extraction failed")
			errs = append(errs, fmt.Errorf("%s: %w", c, err))
			continue
		}
		fmt.Fprintf(out, "%s: %d documents -> %s\n", c, len(res.Results), res.Output)
	}
	return errors.Join(errs...)
}
