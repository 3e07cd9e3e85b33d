package report

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"
	"gopkg.in/yaml.v3"
)

// Format selects the encoding of an exported document.
type Format string

// Supported export formats.
const (
	FormatText Format = "text"
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// ParseFormat validates a format name. An empty name selects text.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case "":
		return FormatText, nil
	case FormatText, FormatYAML, FormatJSON:
		return f, nil
	default:
		return "", fmt.Errorf("unknown report format %q", s)
	}
}

// FormatFromPath infers the format from a file extension, falling back to
// YAML.
func FormatFromPath(path string) Format {
	switch {
	case strings.HasSuffix(path, ".json"):
		return FormatJSON
	case strings.HasSuffix(path, ".txt"):
		return FormatText
	default:
		return FormatYAML
	}
}

// Write encodes d to w in format f.
func Write(w io.Writer, d *Document, f Format) error {
	switch f {
	case FormatYAML:
		return WriteYAML(w, d)
	case FormatJSON:
		return WriteJSON(w, d)
	case FormatText, "":
		return WriteText(w, d)
	default:
		return fmt.Errorf("unknown report format %q", f)
	}
}

// WriteYAML encodes d as YAML. NaN scores are written as .nan.
func WriteYAML(w io.Writer, d *Document) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(d.tree(math.NaN())); err != nil {
		return fmt.Errorf("encode yaml: %w", err)
	}
	return enc.Close()
}

// WriteJSON encodes d as a google.protobuf.Struct in JSON form. NaN scores
// are written as null.
func WriteJSON(w io.Writer, d *Document) error {
	s, err := structpb.NewStruct(d.tree(nil))
	if err != nil {
		return fmt.Errorf("build document: %w", err)
	}
	data, err := protojson.MarshalOptions{Multiline: true, Indent: "  "}.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode json: %w", err)
	}
	if _, err := w.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("write json: %w", err)
	}
	return nil
}

// WriteTextfile writes every score of d as a gauge to path in the
// Prometheus text exposition format, for the node exporter textfile
// collector.
func WriteTextfile(path string, d *Document) error {
	reg := prometheus.NewRegistry()

	scores := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "sedeval",
		Name:      "score",
		Help:      "Evaluation score by section, class and metric.",
	}, []string{"section", "label", "metric"})
	summary := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "sedeval",
		Name:      "summary",
		Help:      "Run-level evaluation values.",
	}, []string{"name"})
	info := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "sedeval",
		Name:      "run_info",
		Help:      "Evaluation run metadata.",
	}, []string{"run_id", "command"})
	reg.MustRegister(scores, summary, info)

	for _, s := range d.Sections {
		for label, values := range s.Results.Map() {
			for metric, v := range values {
				scores.WithLabelValues(s.Name, label, metric).Set(v)
			}
		}
	}
	for name, v := range d.Summary {
		summary.WithLabelValues(name).Set(v)
	}
	info.WithLabelValues(d.RunID, d.Command).Set(float64(d.GeneratedAt.Unix()))

	if err := prometheus.WriteToTextfile(path, reg); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
