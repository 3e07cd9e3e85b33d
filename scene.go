package sedeval

import (
	"fmt"
	"slices"

	"github.com/jamesainslie/go-sedeval/metric"
)

// SceneClassificationMetrics accumulates a multi-class confusion matrix over
// files carrying exactly one scene label each.
//
// Class-wise accuracy is the share of a class's reference files classified
// correctly. Overall accuracy is correct files over estimated files. The
// one-vs-rest precision, recall, sensitivity and specificity of each class
// are reported beside it.
type SceneClassificationMetrics struct {
	cfg    config
	labels []string
	index  map[string]int

	// confusion[ref][est]
	confusion [][]int
	files     int
}

// NewSceneClassificationMetrics returns an engine for the given scene labels.
func NewSceneClassificationMetrics(labels []string, opts ...Option) (*SceneClassificationMetrics, error) {
	cfg := newConfig(opts)
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if err := checkVocabulary(labels); err != nil {
		return nil, err
	}

	labels = slices.Clone(labels)
	confusion := make([][]int, len(labels))
	for i := range confusion {
		confusion[i] = make([]int, len(labels))
	}
	return &SceneClassificationMetrics{
		cfg:       cfg,
		labels:    labels,
		index:     labelIndex(labels),
		confusion: confusion,
	}, nil
}

// Evaluate adds every estimated file. Each must have a reference; reference
// files without an estimate are skipped. Nothing is accumulated when an
// error is returned.
func (m *SceneClassificationMetrics) Evaluate(reference, estimated SceneList) error {
	type pair struct{ ref, est int }
	pairs := make([]pair, 0, len(estimated))
	for _, e := range estimated {
		r, ok := reference.Lookup(e.File)
		if !ok {
			err := fmt.Errorf("%w: %q", ErrMissingReference, e.File)
			m.cfg.logger.Warn("scene evaluation rejected", "error", err)
			return err
		}
		ri, ok := m.index[r.Label]
		if !ok {
			return fmt.Errorf("reference: %w: %q", ErrLabelMismatch, r.Label)
		}
		ei, ok := m.index[e.Label]
		if !ok {
			return fmt.Errorf("estimated: %w: %q", ErrLabelMismatch, e.Label)
		}
		pairs = append(pairs, pair{ri, ei})
	}

	for _, p := range pairs {
		m.confusion[p.ref][p.est]++
	}
	m.files += len(pairs)

	m.cfg.logger.Debug("scene evaluation",
		"estimated_files", len(estimated),
		"reference_files", len(reference),
	)
	return nil
}

// Merge adds the confusion matrix of other, which must share the vocabulary.
func (m *SceneClassificationMetrics) Merge(other *SceneClassificationMetrics) error {
	if !slices.Equal(m.labels, other.labels) {
		return fmt.Errorf("%w: cannot merge engines with different vocabularies", ErrLabelMismatch)
	}
	for i := range m.confusion {
		for j := range m.confusion[i] {
			m.confusion[i][j] += other.confusion[i][j]
		}
	}
	m.files += other.files
	return nil
}

// Labels returns the scene vocabulary.
func (m *SceneClassificationMetrics) Labels() []string {
	return slices.Clone(m.labels)
}

// EvaluatedFiles returns the number of estimated files evaluated.
func (m *SceneClassificationMetrics) EvaluatedFiles() int {
	return m.files
}

// ConfusionMatrix returns a copy of the counts indexed [reference][estimated]
// in vocabulary order.
func (m *SceneClassificationMetrics) ConfusionMatrix() [][]int {
	out := make([][]int, len(m.confusion))
	for i, row := range m.confusion {
		out[i] = slices.Clone(row)
	}
	return out
}

// counts returns the one-vs-rest counts of class i.
func (m *SceneClassificationMetrics) counts(i int) Counts {
	var c Counts
	for r, row := range m.confusion {
		for e, n := range row {
			switch {
			case r == i && e == i:
				c.TruePositive += n
			case r == i:
				c.FalseNegative += n
			case e == i:
				c.FalsePositive += n
			default:
				c.TrueNegative += n
			}
			if r == i {
				c.Ref += n
			}
			if e == i {
				c.Sys += n
			}
		}
	}
	c.Correct = c.TruePositive
	c.Deletions = c.FalseNegative
	c.Insertions = c.FalsePositive
	return c
}

// Results derives the metrics from the files accumulated so far.
func (m *SceneClassificationMetrics) Results() Results {
	s := newScorer(m.cfg)

	classes := make([]ClassMetrics, len(m.labels))
	var overall Counts
	for i, label := range m.labels {
		c := m.counts(i)
		overall = overall.Add(c)

		acc := s.accuracy(c)
		acc.Accuracy = metric.AccuracyCorr(float64(c.Correct), float64(c.Ref))
		classes[i] = ClassMetrics{
			Label:     label,
			Evaluated: !c.empty(),
			Counts:    c,
			FMeasure:  s.fMeasure(c),
			Accuracy:  acc,
		}
		if !classes[i].Evaluated {
			classes[i] = notEvaluated(classes[i])
		}
	}

	acc := s.accuracy(overall)
	acc.Accuracy = metric.AccuracyCorr(float64(overall.Correct), float64(overall.Sys))
	res := Results{
		Overall: ClassMetrics{
			Label:     OverallLabel,
			Evaluated: m.files > 0,
			Counts:    overall,
			FMeasure:  s.fMeasure(overall),
			Accuracy:  acc,
		},
		ClassWise: classes,
	}
	res.ClassWiseAverage = macroAverage(classes, res.Overall)
	return res
}
