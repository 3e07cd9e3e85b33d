package report

import (
	"fmt"
	"io"
	"math"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	sedeval "github.com/jamesainslie/go-sedeval"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("99"))
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	borderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

// Percent formats a score in [0, 1] as a percentage. NaN prints as "-".
func Percent(v float64) string {
	if math.IsNaN(v) {
		return "-"
	}
	return fmt.Sprintf("%.2f %%", 100*v)
}

// Rate formats an unbounded rate such as the error rate. NaN prints as "-".
func Rate(v float64) string {
	if math.IsNaN(v) {
		return "-"
	}
	return fmt.Sprintf("%.2f", v)
}

func newTable() *table.Table {
	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(borderStyle).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
}

// OverallTable renders the overall and class-wise average scores side by
// side, one metric per row.
func OverallTable(r sedeval.Results) string {
	t := newTable().Headers("Metric", "Overall", "Class-wise average")

	overall, average := r.Overall.Values(), r.ClassWiseAverage.Values()
	for _, m := range metricOrder {
		v, ok := overall[m.key]
		if !ok {
			continue
		}
		avg, ok := average[m.key]
		if !ok {
			avg = math.NaN()
		}
		t.Row(m.title, m.format(v), m.format(avg))
	}
	c := r.Overall.Counts
	t.Row("Reference (Nref)", fmt.Sprint(c.Ref), "")
	t.Row("System (Nsys)", fmt.Sprint(c.Sys), "")
	return t.String()
}

// ClassTable renders one row per class.
func ClassTable(r sedeval.Results) string {
	if len(r.ClassWise) == 0 {
		return ""
	}

	present := make(map[string]bool)
	for _, c := range r.ClassWise {
		for k := range c.Values() {
			present[k] = true
		}
	}
	var cols []metricColumn
	for _, m := range metricOrder {
		if present[m.key] && m.inClassTable {
			cols = append(cols, m)
		}
	}

	headers := []string{"Class", "Nref", "Nsys"}
	for _, m := range cols {
		headers = append(headers, m.short)
	}
	t := newTable().Headers(headers...)

	for _, c := range r.ClassWise {
		values := c.Values()
		row := []string{c.Label, fmt.Sprint(c.Counts.Ref), fmt.Sprint(c.Counts.Sys)}
		for _, m := range cols {
			v, ok := values[m.key]
			if !ok {
				v = math.NaN()
			}
			row = append(row, m.format(v))
		}
		t.Row(row...)
	}
	return t.String()
}

// ConfusionTable renders a scene confusion matrix, references as rows.
func ConfusionTable(labels []string, matrix [][]int) string {
	t := newTable().Headers(append([]string{"ref \\ est"}, labels...)...)
	for i, label := range labels {
		row := []string{label}
		for _, n := range matrix[i] {
			row = append(row, fmt.Sprint(n))
		}
		t.Row(row...)
	}
	return t.String()
}

// WriteText renders every section of d as tables.
func WriteText(w io.Writer, d *Document) error {
	var b strings.Builder

	if len(d.Summary) > 0 {
		keys := make([]string, 0, len(d.Summary))
		for k := range d.Summary {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		t := newTable().Headers("Summary", "Value")
		for _, k := range keys {
			t.Row(k, Rate(d.Summary[k]))
		}
		b.WriteString(t.String())
		b.WriteString("\n")
	}

	for _, s := range d.Sections {
		b.WriteString(titleStyle.Render(sectionTitle(s.Name)))
		b.WriteString("\n")
		b.WriteString(OverallTable(s.Results))
		b.WriteString("\n")
		if ct := ClassTable(s.Results); ct != "" {
			b.WriteString(ct)
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	if _, err := io.WriteString(w, b.String()); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}

func sectionTitle(name string) string {
	words := strings.Split(name, "_")
	for i, w := range words {
		if w != "" {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " ")
}

type metricColumn struct {
	key          string
	title        string
	short        string
	inClassTable bool
	format       func(float64) string
}

var metricOrder = []metricColumn{
	{"f_measure", "F-measure", "F", true, Percent},
	{"precision", "Precision", "Pre", true, Percent},
	{"recall", "Recall", "Rec", true, Percent},
	{"error_rate", "Error rate", "ER", true, Rate},
	{"substitution_rate", "Substitution rate", "Sub", false, Rate},
	{"deletion_rate", "Deletion rate", "Del", true, Rate},
	{"insertion_rate", "Insertion rate", "Ins", true, Rate},
	{"accuracy", "Accuracy", "Acc", true, Percent},
	{"balanced_accuracy", "Balanced accuracy", "BAcc", false, Percent},
	{"sensitivity", "Sensitivity", "Sens", true, Percent},
	{"specificity", "Specificity", "Spec", true, Percent},
	{"eer", "Equal error rate", "EER", true, Rate},
}
