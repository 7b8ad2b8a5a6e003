// Package probe holds field development helpers: finding a label in
// document text with its surroundings and trying a candidate pattern
// against a corpus before it goes into a configuration.
package probe

import (
	"regexp"
	"sort"
	"strings"

	"github.com/hyperifyio/policyregex/internal/extract"
	"github.com/hyperifyio/policyregex/internal/stats"
)

// Hit is one occurrence of a searched literal.
type Hit struct {
	Offset  int
	Match   string
	Context string
}

// Search finds up to max case-insensitive occurrences of literal in text and
// returns each with width characters of context on both sides, newlines
// flattened. max <= 0 means no limit.
func Search(text, literal string, width, max int) []Hit {
	if strings.TrimSpace(literal) == "" {
		return nil
	}
	re := regexp.MustCompile(`(?i)` + regexp.QuoteMeta(literal))
	n := max
	if n <= 0 {
		n = -1
	}
	var hits []Hit
	for _, loc := range re.FindAllStringIndex(text, n) {
		start := backRunes(text, loc[0], width)
		end := forwardRunes(text, loc[1], width)
		ctx := strings.Join(strings.Fields(text[start:end]), " ")
		hits = append(hits, Hit{Offset: loc[0], Match: text[loc[0]:loc[1]], Context: ctx})
	}
	return hits
}

func backRunes(s string, i, n int) int {
	for ; n > 0 && i > 0; n-- {
		i--
		for i > 0 && !isRuneStart(s[i]) {
			i--
		}
	}
	return i
}

func forwardRunes(s string, i, n int) int {
	for ; n > 0 && i < len(s); n-- {
		i++
		for i < len(s) && !isRuneStart(s[i]) {
			i++
		}
	}
	return i
}

func isRuneStart(b byte) bool { return b&0xC0 != 0x80 }

// Snippet is a block of lines around a line containing the literal.
type Snippet struct {
	Line  int
	Lines []string
}

// Lines returns, for every line containing literal (case-insensitive), the
// surrounding before and after lines. Line numbers are 1-based.
func Lines(text, literal string, before, after int) []Snippet {
	if strings.TrimSpace(literal) == "" {
		return nil
	}
	re := regexp.MustCompile(`(?i)` + regexp.QuoteMeta(literal))
	lines := strings.Split(text, "\n")
	var out []Snippet
	for i, l := range lines {
		if !re.MatchString(l) {
			continue
		}
		from, to := i-before, i+after+1
		if from < 0 {
			from = 0
		}
		if to > len(lines) {
			to = len(lines)
		}
		block := make([]string, 0, to-from)
		for _, b := range lines[from:to] {
			block = append(block, strings.TrimSpace(b))
		}
		out = append(out, Snippet{Line: i + 1, Lines: block})
	}
	return out
}

// DocMatches lists a pattern's captures in one document.
type DocMatches struct {
	Document string
	Matches  []string
}

// PatternReport is the outcome of trying one pattern over a corpus.
type PatternReport struct {
	Documents   []DocMatches
	WithMatches int
	Total       int
	Rate        float64
	Status      stats.Status
}

// TestPattern compiles pattern the way field specs are compiled and
// collects its captures in every document of docs (id -> text).
func TestPattern(docs map[string]string, pattern string, group int) (PatternReport, error) {
	p, err := extract.CompilePattern(pattern, group)
	if err != nil {
		return PatternReport{}, err
	}
	ids := make([]string, 0, len(docs))
	for id := range docs {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	rep := PatternReport{Total: len(ids)}
	for _, id := range ids {
		m := p.All(docs[id])
		if len(m) > 0 {
			rep.WithMatches++
		}
		rep.Documents = append(rep.Documents, DocMatches{Document: id, Matches: m})
	}
	if rep.Total > 0 {
		rep.Rate = float64(rep.WithMatches) / float64(rep.Total) * 100
	}
	rep.Status = stats.StatusFor(rep.Rate)
	return rep, nil
}
