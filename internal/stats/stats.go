// Package stats computes per-field success rates over a result set.
package stats

import (
	"sort"

	"github.com/hyperifyio/policyregex/internal/record"
)

// Status grades a field's success rate.
type Status string

const (
	OK   Status = "OK"
	Warn Status = "WARN"
	Fail Status = "FAIL"
)

// Threshold is the success rate (percent) at which a field counts as working.
const Threshold = 80.0

// MaxSamples bounds Field.Samples.
const MaxSamples = 5

// StatusFor grades a success rate in percent.
func StatusFor(rate float64) Status {
	switch {
	case rate >= Threshold:
		return OK
	case rate > 0:
		return Warn
	}
	return Fail
}

// Sample is one successful value for display.
type Sample struct {
	Document string
	Value    record.Value
}

// Field is the outcome of one field across all documents. A document counts
// as successful when its value is not null; an empty list from an all-mode
// field is a success with nothing found.
type Field struct {
	Name       string
	Successful int
	Total      int
	Rate       float64
	Status     Status
	Samples    []Sample
	Failed     []string
}

// ForField computes the statistics of one field. Documents whose record
// lacks the field count as failures.
func ForField(s record.Set, field string) Field {
	f := Field{Name: field, Total: len(s)}
	for _, doc := range s.Documents() {
		v, ok := s[doc][field]
		if !ok || v.IsNull() {
			f.Failed = append(f.Failed, doc)
			continue
		}
		f.Successful++
		if len(f.Samples) < MaxSamples {
			f.Samples = append(f.Samples, Sample{Document: doc, Value: v})
		}
	}
	if f.Total > 0 {
		f.Rate = float64(f.Successful) / float64(f.Total) * 100
	}
	f.Status = StatusFor(f.Rate)
	return f
}

// Summary covers every field of a set.
type Summary struct {
	Fields     []Field
	Working    int
	Completion float64
}

// Summarize computes statistics for every field, ordered by descending
// success rate then name.
func Summarize(s record.Set) Summary {
	return SummarizeFields(s, s.Fields())
}

// SummarizeFields is Summarize restricted to fields. A named field that no
// document carries is reported with a zero rate.
func SummarizeFields(s record.Set, fields []string) Summary {
	var sum Summary
	for _, name := range fields {
		f := ForField(s, name)
		if f.Status == OK {
			sum.Working++
		}
		sum.Fields = append(sum.Fields, f)
	}
	sort.SliceStable(sum.Fields, func(i, j int) bool {
		if sum.Fields[i].Rate != sum.Fields[j].Rate {
			return sum.Fields[i].Rate > sum.Fields[j].Rate
		}
		return sum.Fields[i].Name < sum.Fields[j].Name
	})
	if n := len(sum.Fields); n > 0 {
		sum.Completion = float64(sum.Working) / float64(n) * 100
	}
	return sum
}
