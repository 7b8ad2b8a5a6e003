package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hyperifyio/policyregex/internal/company"
)

var detectFlags struct {
	phrases string
}

var detectCmd = &cobra.Command{
	Use:   "detect <file|dir>...",
	Short: "Guess the issuing company of documents by phrase frequency",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runDetect,
}

func init() {
	detectCmd.Flags().StringVar(&detectFlags.phrases, "phrases", "", "Phrase table (YAML) replacing the built-in one")
}

func runDetect(cmd *cobra.Command, args []string) error {
	table := company.DefaultTable()
	if detectFlags.phrases != "" {
		t, err := company.LoadTable(detectFlags.phrases)
		if err != nil {
			return err
		}
		table = t
	}
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()
	found, err := a.Detect(cmd.Context(), table, args...)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	for _, d := range found {
		if !d.Found {
			fmt.Fprintf(out, "%s\t-\n", d.Path)
			continue
		}
		fmt.Fprintf(out, "%s\t%s%s\t%d\n", d.Path, d.Company, company.DirSuffix, d.Count)
	}
	return nil
}
