package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hyperifyio/policyregex/internal/probe"
)

var fieldFlags struct {
	company string
	context int
	lines   int
	max     int
	pattern string
	group   int
	show    int
}

var fieldCmd = &cobra.Command{
	Use:   "field",
	Short: "Helpers for developing field patterns",
}

var fieldSearchCmd = &cobra.Command{
	Use:   "search <text>",
	Short: "Find a label in a company's documents and show its surroundings",
	Args:  cobra.ExactArgs(1),
	RunE:  runFieldSearch,
}

var fieldTestCmd = &cobra.Command{
	Use:   "test",
	Short: "Try a pattern against a company's documents",
	Args:  cobra.NoArgs,
	RunE:  runFieldTest,
}

func init() {
	pf := fieldCmd.PersistentFlags()
	pf.StringVar(&fieldFlags.company, "company", "", "Company directory name (required)")
	_ = fieldCmd.MarkPersistentFlagRequired("company")

	sf := fieldSearchCmd.Flags()
	sf.IntVar(&fieldFlags.context, "context", 80, "Characters of context around each hit")
	sf.IntVar(&fieldFlags.lines, "lines", 0, "Show this many lines before and after instead of inline context")
	sf.IntVar(&fieldFlags.max, "max", 3, "Hits per document (0 for all)")

	tf := fieldTestCmd.Flags()
	tf.StringVar(&fieldFlags.pattern, "pattern", "", "Regular expression (required)")
	tf.IntVar(&fieldFlags.group, "group", 1, "Capture group")
	tf.IntVar(&fieldFlags.show, "show", 10, "Documents to list with their captures")
	_ = fieldTestCmd.MarkFlagRequired("pattern")

	fieldCmd.AddCommand(fieldSearchCmd)
	fieldCmd.AddCommand(fieldTestCmd)
}

func sortedIDs(docs map[string]string) []string {
	ids := make([]string, 0, len(docs))
	for id := range docs {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func runFieldSearch(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()
	docs, err := a.Texts(cmd.Context(), fieldFlags.company)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	found := 0
	for _, id := range sortedIDs(docs) {
		if fieldFlags.lines > 0 {
			snippets := probe.Lines(docs[id], args[0], fieldFlags.lines, fieldFlags.lines)
			if len(snippets) == 0 {
				continue
			}
			found++
			for i, s := range snippets {
				if fieldFlags.max > 0 && i >= fieldFlags.max {
					break
				}
				fmt.Fprintf(out, "== %s line %d\n%s\n", id, s.Line, strings.Join(s.Lines, "\n"))
			}
			continue
		}
		hits := probe.Search(docs[id], args[0], fieldFlags.context, fieldFlags.max)
		if len(hits) == 0 {
			continue
		}
		found++
		for _, h := range hits {
			fmt.Fprintf(out, "%s@%d: %s\n", id, h.Offset, h.Context)
		}
	}
	fmt.Fprintf(out, "found in %d/%d documents\n", found, len(docs))
	return nil
}

func runFieldTest(cmd *cobra.Command, _ []string) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()
	docs, err := a.Texts(cmd.Context(), fieldFlags.company)
	if err != nil {
		return err
	}
	rep, err := probe.TestPattern(docs, fieldFlags.pattern, fieldFlags.group)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	shown := 0
	for _, d := range rep.Documents {
		if len(d.Matches) == 0 {
			continue
		}
		if shown >= fieldFlags.show {
			break
		}
		shown++
		fmt.Fprintf(out, "%s: %s\n", d.Document, strings.Join(d.Matches, " | "))
	}
	fmt.Fprintf(out, "matched %d/%d documents (%.1f%%) %s\n", rep.WithMatches, rep.Total, rep.Rate, rep.Status)
	return nil
}
