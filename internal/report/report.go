// Package report renders evaluation results as text tables, YAML or JSON
// documents and Prometheus textfiles.
package report

import (
	"math"
	"time"

	"github.com/google/uuid"

	sedeval "github.com/jamesainslie/go-sedeval"
)

// Section is one named set of engine results, such as
// "segment_based_metrics" or "event_based_metrics".
type Section struct {
	Name    string
	Results sedeval.Results
}

// Document is one evaluation run ready for export.
type Document struct {
	RunID       string
	GeneratedAt time.Time
	Command     string
	Parameters  map[string]any
	Summary     map[string]float64
	Sections    []Section
}

// NewDocument stamps a new run id and the current time.
func NewDocument(command string) *Document {
	return &Document{
		RunID:       uuid.NewString(),
		GeneratedAt: time.Now().UTC(),
		Command:     command,
		Parameters:  make(map[string]any),
		Summary:     make(map[string]float64),
	}
}

// AddSection appends engine results under name.
func (d *Document) AddSection(name string, r sedeval.Results) {
	d.Sections = append(d.Sections, Section{Name: name, Results: r})
}

// tree converts the document into nested maps. nan replaces every NaN score;
// pass math.NaN() to keep them.
func (d *Document) tree(nan any) map[string]any {
	num := func(v float64) any {
		if math.IsNaN(v) {
			return nan
		}
		return v
	}

	params := make(map[string]any, len(d.Parameters))
	for k, v := range d.Parameters {
		params[k] = normalize(v)
	}
	summary := make(map[string]any, len(d.Summary))
	for k, v := range d.Summary {
		summary[k] = num(v)
	}

	sections := make(map[string]any, len(d.Sections))
	for _, s := range d.Sections {
		classWise := make(map[string]any, len(s.Results.ClassWise))
		for _, c := range s.Results.ClassWise {
			classWise[c.Label] = classTree(c, num)
		}
		sections[s.Name] = map[string]any{
			sedeval.OverallLabel:          classTree(s.Results.Overall, num),
			sedeval.ClassWiseAverageLabel: classTree(s.Results.ClassWiseAverage, num),
			"class_wise":                  classWise,
		}
	}

	return map[string]any{
		"run_id":       d.RunID,
		"generated_at": d.GeneratedAt.Format(time.RFC3339),
		"command":      d.Command,
		"parameters":   params,
		"summary":      summary,
		"results":      sections,
	}
}

func classTree(c sedeval.ClassMetrics, num func(float64) any) map[string]any {
	out := map[string]any{
		"evaluated": c.Evaluated,
	}
	for k, v := range c.Values() {
		out[k] = num(v)
	}
	out["counts"] = map[string]any{
		"nref": c.Counts.Ref,
		"nsys": c.Counts.Sys,
		"ntp":  c.Counts.TruePositive,
		"ntn":  c.Counts.TrueNegative,
		"nfp":  c.Counts.FalsePositive,
		"nfn":  c.Counts.FalseNegative,
		"s":    c.Counts.Substitutions,
		"d":    c.Counts.Deletions,
		"i":    c.Counts.Insertions,
	}
	return out
}

// normalize turns typed slices into []any so the tree can be encoded as a
// protobuf Struct.
func normalize(v any) any {
	switch t := v.(type) {
	case []string:
		out := make([]any, len(t))
		for i, s := range t {
			out[i] = s
		}
		return out
	case []float64:
		out := make([]any, len(t))
		for i, f := range t {
			out[i] = f
		}
		return out
	case float64:
		if math.IsNaN(t) {
			return nil
		}
		return t
	case time.Duration:
		return t.Seconds()
	case interface{ String() string }:
		return t.String()
	default:
		return v
	}
}
