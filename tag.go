package sedeval

import (
	"fmt"
	"slices"

	"github.com/jamesainslie/go-sedeval/metric"
)

// AudioTaggingMetrics scores file-level multi-label tagging. Every reference
// file contributes one TP/TN/FP/FN decision per tag. When per-tag
// probabilities are supplied, the equal error rate is derived from them.
//
// Tags without reference occurrences are reported but are left out of the
// class-wise average.
type AudioTaggingMetrics struct {
	cfg    config
	labels []string
	index  map[string]int

	classes []Counts
	overall Counts
	files   int

	// present counts reference occurrences per tag whether or not estimated
	// tags were given; tagged records that some were.
	present []int
	tagged  bool

	// truth and scores are per tag, in reference file order, and only grow
	// when probabilities are given.
	truth  [][]bool
	scores [][]float64
}

// NewAudioTaggingMetrics returns an engine for the given tag vocabulary.
func NewAudioTaggingMetrics(tags []string, opts ...Option) (*AudioTaggingMetrics, error) {
	cfg := newConfig(opts)
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if err := checkVocabulary(tags); err != nil {
		return nil, err
	}

	tags = slices.Clone(tags)
	return &AudioTaggingMetrics{
		cfg:     cfg,
		labels:  tags,
		index:   labelIndex(tags),
		classes: make([]Counts, len(tags)),
		present: make([]int, len(tags)),
		truth:   make([][]bool, len(tags)),
		scores:  make([][]float64, len(tags)),
	}, nil
}

// Evaluate adds estimated tags for every reference file.
func (m *AudioTaggingMetrics) Evaluate(reference, estimated TagList) error {
	return m.EvaluateWithProbabilities(reference, estimated, nil)
}

// EvaluateWithProbabilities adds estimated tags and per-tag probabilities for
// every reference file. A nil estimated list scores probabilities only; nil
// probabilities score tags only. Nothing is accumulated when an error is
// returned.
func (m *AudioTaggingMetrics) EvaluateWithProbabilities(reference, estimated TagList, probabilities []TagProbability) error {
	if estimated == nil && probabilities == nil {
		return fmt.Errorf("%w: nothing to evaluate", ErrInvalidConfiguration)
	}
	if err := m.check(reference, estimated, probabilities); err != nil {
		m.cfg.logger.Warn("tag evaluation rejected", "error", err)
		return err
	}

	prob := make(map[[2]string]float64, len(probabilities))
	for _, p := range probabilities {
		prob[[2]string{p.File, p.Tag}] = p.Probability
	}

	files := reference.Files()
	for col, tag := range m.labels {
		c := &m.classes[col]
		for _, file := range files {
			ref, _ := reference.Lookup(file)
			r := ref.Has(tag)
			if r {
				m.present[col]++
			}

			if estimated != nil {
				est, _ := estimated.Lookup(file)
				e := est.Has(tag)
				switch {
				case r && e:
					c.TruePositive++
				case r:
					c.FalseNegative++
				case e:
					c.FalsePositive++
				default:
					c.TrueNegative++
				}
				if r {
					c.Ref++
				}
				if e {
					c.Sys++
				}
			}

			if probabilities != nil {
				m.truth[col] = append(m.truth[col], r)
				m.scores[col] = append(m.scores[col], prob[[2]string{file, tag}])
			}
		}
	}

	m.overall = Counts{}
	for _, c := range m.classes {
		m.overall = m.overall.Add(c)
	}
	m.files += len(files)
	m.tagged = m.tagged || estimated != nil

	m.cfg.logger.Debug("tag evaluation",
		"files", len(files),
		"probabilities", len(probabilities),
	)
	return nil
}

func (m *AudioTaggingMetrics) check(reference, estimated TagList, probabilities []TagProbability) error {
	known := func(side string, tags []string) error {
		for _, t := range tags {
			if _, ok := m.index[t]; !ok {
				return fmt.Errorf("%s: %w: %q", side, ErrLabelMismatch, t)
			}
		}
		return nil
	}

	for _, r := range reference {
		if err := known("reference", r.Tags); err != nil {
			return err
		}
	}
	for _, e := range estimated {
		if err := known("estimated", e.Tags); err != nil {
			return err
		}
		if _, ok := reference.Lookup(e.File); !ok {
			return fmt.Errorf("%w: %q", ErrMissingReference, e.File)
		}
	}

	scored := make(map[[2]string]bool, len(probabilities))
	for _, p := range probabilities {
		if err := known("probabilities", []string{p.Tag}); err != nil {
			return err
		}
		scored[[2]string{p.File, p.Tag}] = true
	}

	for _, file := range reference.Files() {
		if estimated != nil {
			if _, ok := estimated.Lookup(file); !ok {
				return fmt.Errorf("%w: %q", ErrMissingEstimate, file)
			}
		}
		if probabilities != nil {
			for _, tag := range m.labels {
				if !scored[[2]string{file, tag}] {
					return fmt.Errorf("%w: probability of %q in %q", ErrMissingEstimate, tag, file)
				}
			}
		}
	}
	return nil
}

// Merge adds the counts and scores of other, which must share the vocabulary.
func (m *AudioTaggingMetrics) Merge(other *AudioTaggingMetrics) error {
	if !slices.Equal(m.labels, other.labels) {
		return fmt.Errorf("%w: cannot merge engines with different vocabularies", ErrLabelMismatch)
	}
	for i := range m.classes {
		m.classes[i] = m.classes[i].Add(other.classes[i])
		m.present[i] += other.present[i]
		m.truth[i] = append(m.truth[i], other.truth[i]...)
		m.scores[i] = append(m.scores[i], other.scores[i]...)
	}
	m.overall = m.overall.Add(other.overall)
	m.files += other.files
	m.tagged = m.tagged || other.tagged
	return nil
}

// Labels returns the tag vocabulary.
func (m *AudioTaggingMetrics) Labels() []string {
	return slices.Clone(m.labels)
}

// EvaluatedFiles returns the number of reference files evaluated.
func (m *AudioTaggingMetrics) EvaluatedFiles() int {
	return m.files
}

// Results derives the metrics accumulated so far. F-measure scores appear
// once estimated tags were evaluated; equal error rates once probabilities
// were.
func (m *AudioTaggingMetrics) Results() Results {
	s := newScorer(m.cfg)
	score := func(label string, c Counts, present int) ClassMetrics {
		cm := ClassMetrics{Label: label, Evaluated: present > 0, Counts: c}
		if m.tagged {
			cm.FMeasure = s.fMeasure(c)
		}
		if !cm.Evaluated {
			cm = notEvaluated(cm)
		}
		return cm
	}

	var allTruth []bool
	var allScores []float64
	var present int
	classes := make([]ClassMetrics, len(m.labels))
	for i, tag := range m.labels {
		classes[i] = score(tag, m.classes[i], m.present[i])
		present += m.present[i]
		if len(m.scores[i]) > 0 {
			eer := metric.EqualErrorRate(m.truth[i], m.scores[i])
			classes[i].EER = &eer
			allTruth = append(allTruth, m.truth[i]...)
			allScores = append(allScores, m.scores[i]...)
		}
	}

	overall := score(OverallLabel, m.overall, present)
	if len(allScores) > 0 {
		eer := metric.EqualErrorRate(allTruth, allScores)
		overall.EER = &eer
	}

	return Results{
		Overall:          overall,
		ClassWiseAverage: macroAverage(classes, overall),
		ClassWise:        classes,
	}
}
