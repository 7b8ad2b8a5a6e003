package main

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/hyperifyio/policyregex/internal/app"
)

var normalizeFlags struct {
	company      string
	allCompanies bool
	input        string
	output       string
	mapping      string
}

var normalizeCmd = &cobra.Command{
	Use:   "normalize",
	Short: "Apply mapping rules to raw results",
	Args:  cobra.NoArgs,
	RunE:  runNormalize,
}

func init() {
	f := normalizeCmd.Flags()
	f.StringVar(&normalizeFlags.company, "company", "", "Company directory name (e.g. ak_E)")
	f.BoolVar(&normalizeFlags.allCompanies, "all-companies", false, "Normalize every company with a mapping resource")
	f.StringVar(&normalizeFlags.input, "input", "", "Raw results file (single company only)")
	f.StringVarP(&normalizeFlags.output, "output", "o", "", "Normalized results file (single company only)")
	f.StringVar(&normalizeFlags.mapping, "mapping", "", "Mapping resource (single company only)")
}

func runNormalize(cmd *cobra.Command, _ []string) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()
	companies, err := selectCompanies(normalizeFlags.company, normalizeFlags.allCompanies, a.Layout().MappedCompanies)
	if err != nil {
		return err
	}
	opts := app.NormalizeOptions{Input: normalizeFlags.input, Output: normalizeFlags.output, Mapping: normalizeFlags.mapping}
	if opts != (app.NormalizeOptions{}) && len(companies) > 1 {
		return fmt.Errorf("--input, --output and --mapping require a single --company")
	}
	out := cmd.OutOrStdout()
	var errs []error
	for _, c := range companies {
		res, err := a.Normalize(cmd.Context(), c, opts)
		if err != nil {
			log.Error().Err(err).Str("company", c).Msg("normalization failed")
			errs = append(errs, fmt.Errorf("%s: %w", c, err))
			continue
		}
		st := res.Metadata.ProcessingStats
		fmt.Fprintf(out, "%s: %d documents, %d/%d fields mapped -> %s\n", c, len(res.Results), st.MappedFields, st.TotalFields, res.Output)
	}
	return errors.Join(errs...)
}
