package sedeval

import (
	"fmt"
	"math"
	"slices"
)

// SegmentBasedMetrics accumulates frame-level confusion counts over any
// number of file pairs.
//
// Each Evaluate call converts one file's reference and estimated events into
// rolls of the configured time resolution and adds, per class and per frame,
// one of TP/FP/FN/TN. The overall pool additionally decomposes errors per
// frame into substitutions, deletions and insertions.
//
// A SegmentBasedMetrics is not safe for concurrent use. Evaluate independent
// shards on separate instances and combine them with Merge.
type SegmentBasedMetrics struct {
	cfg    config
	labels []string
	index  map[string]int

	classes []Counts
	overall Counts

	files  int
	length float64
}

// NewSegmentBasedMetrics returns an engine for the given label vocabulary.
// Results list classes in vocabulary order.
func NewSegmentBasedMetrics(labels []string, opts ...Option) (*SegmentBasedMetrics, error) {
	cfg := newConfig(opts)
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	res := cfg.timeResolution
	if res <= 0 || math.IsNaN(res) || math.IsInf(res, 0) {
		return nil, fmt.Errorf("%w: time resolution must be > 0, got %v", ErrInvalidConfiguration, res)
	}
	if err := checkVocabulary(labels); err != nil {
		return nil, err
	}

	labels = slices.Clone(labels)
	return &SegmentBasedMetrics{
		cfg:     cfg,
		labels:  labels,
		index:   labelIndex(labels),
		classes: make([]Counts, len(labels)),
	}, nil
}

// Evaluate adds one file pair. The evaluated length is the latest offset of
// either list.
func (m *SegmentBasedMetrics) Evaluate(reference, estimated EventList) error {
	return m.EvaluateWithLength(reference, estimated, 0)
}

// EvaluateWithLength adds one file pair whose audio lasts seconds. Frames past
// the last event up to that length count as true negatives. Events beyond the
// length are kept, never truncated.
//
// Both lists must each cover a single file. Nothing is accumulated when an
// error is returned.
func (m *SegmentBasedMetrics) EvaluateWithLength(reference, estimated EventList, seconds float64) error {
	if seconds < 0 || math.IsNaN(seconds) || math.IsInf(seconds, 0) {
		return fmt.Errorf("%w: evaluated length must be >= 0, got %v", ErrInvalidConfiguration, seconds)
	}
	file, err := pairFile(reference, estimated)
	if err != nil {
		m.cfg.logger.Warn("segment evaluation rejected", "error", err)
		return err
	}

	res := m.cfg.timeResolution
	minFrames := offsetFrame(seconds, res)
	ref, err := buildRoll(reference, m.labels, m.index, res, minFrames)
	if err != nil {
		m.cfg.logger.Warn("segment evaluation rejected", "file", file, "error", err)
		return fmt.Errorf("reference: %w", err)
	}
	est, err := buildRoll(estimated, m.labels, m.index, res, minFrames)
	if err != nil {
		m.cfg.logger.Warn("segment evaluation rejected", "file", file, "error", err)
		return fmt.Errorf("estimated: %w", err)
	}
	ref, est, err = matchLengths(ref, est, minFrames)
	if err != nil {
		return err
	}

	m.accumulate(ref, est)
	m.files++
	m.length += max(seconds, reference.MaxOffset(), estimated.MaxOffset())

	m.cfg.logger.Debug("segment evaluation",
		"file", file,
		"frames", ref.frames,
		"reference_events", len(reference),
		"estimated_events", len(estimated),
	)
	return nil
}

func (m *SegmentBasedMetrics) accumulate(ref, est *EventRoll) {
	for f := 0; f < ref.frames; f++ {
		var nref, nsys, ntp int
		for col := range m.labels {
			r, e := ref.Active(f, col), est.Active(f, col)
			c := &m.classes[col]
			switch {
			case r && e:
				c.TruePositive++
				ntp++
			case r:
				c.FalseNegative++
				c.Deletions++
			case e:
				c.FalsePositive++
				c.Insertions++
			default:
				c.TrueNegative++
			}
			if r {
				c.Ref++
				nref++
			}
			if e {
				c.Sys++
				nsys++
			}
		}

		o := &m.overall
		o.Ref += nref
		o.Sys += nsys
		o.TruePositive += ntp
		o.FalsePositive += nsys - ntp
		o.FalseNegative += nref - ntp
		o.TrueNegative += len(m.labels) - nref - nsys + ntp
		o.Substitutions += min(nref, nsys) - ntp
		o.Deletions += max(0, nref-nsys)
		o.Insertions += max(0, nsys-nref)
	}
}

// Merge adds the counts of other, which must use the same vocabulary and
// time resolution.
func (m *SegmentBasedMetrics) Merge(other *SegmentBasedMetrics) error {
	if !slices.Equal(m.labels, other.labels) {
		return fmt.Errorf("%w: cannot merge engines with different vocabularies", ErrLabelMismatch)
	}
	if m.cfg.timeResolution != other.cfg.timeResolution {
		return fmt.Errorf("%w: cannot merge time resolutions %v and %v",
			ErrInvalidConfiguration, m.cfg.timeResolution, other.cfg.timeResolution)
	}
	for i := range m.classes {
		m.classes[i] = m.classes[i].Add(other.classes[i])
	}
	m.overall = m.overall.Add(other.overall)
	m.files += other.files
	m.length += other.length
	return nil
}

// Labels returns the class vocabulary.
func (m *SegmentBasedMetrics) Labels() []string {
	return slices.Clone(m.labels)
}

// TimeResolution returns the segment length in seconds.
func (m *SegmentBasedMetrics) TimeResolution() float64 {
	return m.cfg.timeResolution
}

// EvaluatedFiles returns the number of file pairs evaluated.
func (m *SegmentBasedMetrics) EvaluatedFiles() int {
	return m.files
}

// EvaluatedLength returns the total evaluated audio length in seconds.
func (m *SegmentBasedMetrics) EvaluatedLength() float64 {
	return m.length
}

// Results derives the metrics from the counts accumulated so far.
func (m *SegmentBasedMetrics) Results() Results {
	s := newScorer(m.cfg)
	score := func(label string, c Counts) ClassMetrics {
		return ClassMetrics{
			Label:     label,
			Evaluated: !c.empty(),
			Counts:    c,
			FMeasure:  s.fMeasure(c),
			ErrorRate: s.errorRate(c),
			Accuracy:  s.accuracy(c),
		}
	}

	classes := make([]ClassMetrics, len(m.labels))
	for i, label := range m.labels {
		classes[i] = score(label, m.classes[i])
		if !classes[i].Evaluated {
			classes[i] = notEvaluated(classes[i])
		}
	}

	overall := score(OverallLabel, m.overall)
	overall.Evaluated = m.files > 0
	return Results{
		Overall:          overall,
		ClassWiseAverage: macroAverage(classes, overall),
		ClassWise:        classes,
	}
}

// pairFile checks that each list covers at most one file and returns the
// file id for logging.
func pairFile(reference, estimated EventList) (string, error) {
	rf, err := reference.singleFile()
	if err != nil {
		return "", fmt.Errorf("reference: %w", err)
	}
	ef, err := estimated.singleFile()
	if err != nil {
		return "", fmt.Errorf("estimated: %w", err)
	}
	if rf == "" {
		return ef, nil
	}
	return rf, nil
}

// checkVocabulary rejects empty or duplicated labels.
func checkVocabulary(labels []string) error {
	seen := make(map[string]bool, len(labels))
	for _, l := range labels {
		if l == "" {
			return fmt.Errorf("%w: empty label in vocabulary", ErrInvalidConfiguration)
		}
		if seen[l] {
			return fmt.Errorf("%w: duplicate label %q in vocabulary", ErrInvalidConfiguration, l)
		}
		seen[l] = true
	}
	return nil
}
