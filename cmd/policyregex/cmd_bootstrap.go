package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/hyperifyio/policyregex/internal/bootstrap"
)

var bootstrapFlags struct {
	samples string
	fields  []string
	company string
	output  string
}

var bootstrapCmd = &cobra.Command{
	Use:   "bootstrap",
	Short: "Build pattern_to_value mapping rules from observed samples",
	Long: "bootstrap reads a CSV of field,raw_value,output,count samples, keeps the\n" +
		"most frequent output for every raw value and writes a 1:1 mapping resource.",
	Args: cobra.NoArgs,
	RunE: runBootstrap,
}

func init() {
	f := bootstrapCmd.Flags()
	f.StringVar(&bootstrapFlags.samples, "samples", "", "Samples CSV (required)")
	f.StringSliceVar(&bootstrapFlags.fields, "field", nil, "Only these fields (repeatable)")
	f.StringVar(&bootstrapFlags.company, "company", "", "Company recorded in the resource")
	f.StringVarP(&bootstrapFlags.output, "output", "o", "", "Mapping resource to write (required)")
	_ = bootstrapCmd.MarkFlagRequired("samples")
	_ = bootstrapCmd.MarkFlagRequired("output")
}

func runBootstrap(cmd *cobra.Command, _ []string) error {
	f, err := os.Open(bootstrapFlags.samples)
	if err != nil {
		return err
	}
	defer f.Close()
	samples, err := bootstrap.ReadSamples(f)
	if err != nil {
		return err
	}
	if len(bootstrapFlags.fields) > 0 {
		keep := map[string]bool{}
		for _, name := range bootstrapFlags.fields {
			keep[name] = true
		}
		filtered := samples[:0]
		for _, s := range samples {
			if keep[s.Field] {
				filtered = append(filtered, s)
			}
		}
		samples = filtered
	}
	if len(samples) == 0 {
		return fmt.Errorf("no samples to build rules from")
	}
	rf, conflicts := bootstrap.Build(bootstrapFlags.company, samples)
	for _, c := range conflicts {
		raw := "null"
		if c.Raw != nil {
			raw = *c.Raw
		}
		ev := log.Warn().Str("field", c.Field).Str("raw", raw).Str("kept", c.Kept.Output).Int("count", c.Kept.Count).Int("dropped", len(c.Dropped))
		if c.Tie {
			ev = ev.Bool("tie", true)
		}
		ev.Msg("conflicting outputs resolved")
	}
	if err := bootstrap.Write(bootstrapFlags.output, rf); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%d fields, %d conflicts resolved -> %s\n", len(rf.FieldMappings), len(conflicts), bootstrapFlags.output)
	return nil
}
