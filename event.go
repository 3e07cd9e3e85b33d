package sedeval

import (
	"fmt"
	"math"
	"slices"
	"sort"
)

// timeTolerance absorbs float rounding when comparing onset and offset
// differences against the collar.
const timeTolerance = 1e-9

// EventBasedMetrics accumulates instance-level counts over any number of file
// pairs. A reference and an estimated event of the same label are correct
// when their onsets (and offsets, when enabled) agree within tolerance.
//
// Per class, unmatched references are deletions and unmatched estimates are
// insertions. In the overall pool, a leftover reference and a leftover
// estimate of different labels that agree in timing form a substitution.
//
// An EventBasedMetrics is not safe for concurrent use.
type EventBasedMetrics struct {
	cfg    config
	labels []string
	index  map[string]int

	classes []Counts
	overall Counts
	files   int
}

// NewEventBasedMetrics returns an engine for the given label vocabulary.
func NewEventBasedMetrics(labels []string, opts ...Option) (*EventBasedMetrics, error) {
	cfg := newConfig(opts)
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if cfg.tCollar < 0 || math.IsNaN(cfg.tCollar) {
		return nil, fmt.Errorf("%w: collar must be >= 0, got %v", ErrInvalidConfiguration, cfg.tCollar)
	}
	if cfg.percentageOfLength < 0 || cfg.percentageOfLength > 1 || math.IsNaN(cfg.percentageOfLength) {
		return nil, fmt.Errorf("%w: percentage of length must be in [0, 1], got %v",
			ErrInvalidConfiguration, cfg.percentageOfLength)
	}
	if !cfg.evaluateOnset && !cfg.evaluateOffset {
		return nil, fmt.Errorf("%w: onset and offset evaluation both disabled", ErrInvalidConfiguration)
	}
	if cfg.matching != MatchGreedy && cfg.matching != MatchOptimal {
		return nil, fmt.Errorf("%w: unknown matching %v", ErrInvalidConfiguration, cfg.matching)
	}
	if err := checkVocabulary(labels); err != nil {
		return nil, err
	}

	labels = slices.Clone(labels)
	return &EventBasedMetrics{
		cfg:     cfg,
		labels:  labels,
		index:   labelIndex(labels),
		classes: make([]Counts, len(labels)),
	}, nil
}

// Evaluate adds one file pair. Both lists must each cover a single file.
// Nothing is accumulated when an error is returned.
func (m *EventBasedMetrics) Evaluate(reference, estimated EventList) error {
	file, err := pairFile(reference, estimated)
	if err == nil {
		err = m.check(reference, "reference")
	}
	if err == nil {
		err = m.check(estimated, "estimated")
	}
	if err != nil {
		m.cfg.logger.Warn("event evaluation rejected", "file", file, "error", err)
		return err
	}

	ref := byOnset(reference)
	est := byOnset(estimated)

	refMatched := make([]bool, len(ref))
	estMatched := make([]bool, len(est))
	for col, label := range m.labels {
		ri := indicesWithLabel(ref, label)
		ei := indicesWithLabel(est, label)

		match := m.cfg.matching.match(len(ri), len(ei), func(r, e int) bool {
			return m.fits(ref[ri[r]], est[ei[e]])
		})
		ntp := 0
		for r, e := range match {
			if e >= 0 {
				refMatched[ri[r]] = true
				estMatched[ei[e]] = true
				ntp++
			}
		}

		c := &m.classes[col]
		c.Ref += len(ri)
		c.Sys += len(ei)
		c.TruePositive += ntp
		c.FalsePositive += len(ei) - ntp
		c.FalseNegative += len(ri) - ntp
		c.Insertions += len(ei) - ntp
		c.Deletions += len(ri) - ntp
		m.overall.TruePositive += ntp
	}

	subs := m.substitutions(ref, est, refMatched, estMatched)
	tp := 0
	for _, ok := range refMatched {
		if ok {
			tp++
		}
	}

	o := &m.overall
	o.Ref += len(ref)
	o.Sys += len(est)
	o.Substitutions += subs
	o.FalsePositive += len(est) - tp - subs
	o.FalseNegative += len(ref) - tp - subs
	o.Insertions += len(est) - tp - subs
	o.Deletions += len(ref) - tp - subs
	m.files++

	m.cfg.logger.Debug("event evaluation",
		"file", file,
		"reference_events", len(ref),
		"estimated_events", len(est),
		"correct", tp,
		"substitutions", subs,
	)
	return nil
}

// substitutions pairs leftover references with leftover estimates of any
// label that agree in timing, first-fit.
func (m *EventBasedMetrics) substitutions(ref, est EventList, refMatched, estMatched []bool) int {
	var ri, ei []int
	for i, ok := range refMatched {
		if !ok {
			ri = append(ri, i)
		}
	}
	for i, ok := range estMatched {
		if !ok {
			ei = append(ei, i)
		}
	}

	n := 0
	for _, e := range greedyMatch(len(ri), len(ei), func(r, e int) bool {
		return m.fits(ref[ri[r]], est[ei[e]])
	}) {
		if e >= 0 {
			n++
		}
	}
	return n
}

// fits applies the onset and offset conditions, ignoring labels.
func (m *EventBasedMetrics) fits(ref, est Event) bool {
	if m.cfg.evaluateOnset && math.Abs(ref.Onset-est.Onset) > m.cfg.tCollar+timeTolerance {
		return false
	}
	if m.cfg.evaluateOffset {
		tol := max(m.cfg.tCollar, m.cfg.percentageOfLength*ref.Duration())
		if math.Abs(ref.Offset-est.Offset) > tol+timeTolerance {
			return false
		}
	}
	return true
}

func (m *EventBasedMetrics) check(events EventList, side string) error {
	for _, e := range events {
		if err := e.Validate(); err != nil {
			return fmt.Errorf("%s: %w", side, err)
		}
		if _, ok := m.index[e.Label]; !ok {
			return fmt.Errorf("%s: %w: %q", side, ErrLabelMismatch, e.Label)
		}
	}
	return nil
}

// Merge adds the counts of other, which must share vocabulary and matching
// configuration.
func (m *EventBasedMetrics) Merge(other *EventBasedMetrics) error {
	if !slices.Equal(m.labels, other.labels) {
		return fmt.Errorf("%w: cannot merge engines with different vocabularies", ErrLabelMismatch)
	}
	a, b := m.cfg, other.cfg
	if a.tCollar != b.tCollar || a.evaluateOnset != b.evaluateOnset || a.evaluateOffset != b.evaluateOffset ||
		a.percentageOfLength != b.percentageOfLength || a.matching != b.matching {
		return fmt.Errorf("%w: cannot merge engines with different matching parameters", ErrInvalidConfiguration)
	}
	for i := range m.classes {
		m.classes[i] = m.classes[i].Add(other.classes[i])
	}
	m.overall = m.overall.Add(other.overall)
	m.files += other.files
	return nil
}

// Labels returns the class vocabulary.
func (m *EventBasedMetrics) Labels() []string {
	return slices.Clone(m.labels)
}

// Collar returns the onset/offset tolerance in seconds.
func (m *EventBasedMetrics) Collar() float64 {
	return m.cfg.tCollar
}

// EvaluatedFiles returns the number of file pairs evaluated.
func (m *EventBasedMetrics) EvaluatedFiles() int {
	return m.files
}

// Results derives the metrics from the counts accumulated so far.
func (m *EventBasedMetrics) Results() Results {
	s := newScorer(m.cfg)
	score := func(label string, c Counts) ClassMetrics {
		return ClassMetrics{
			Label:     label,
			Evaluated: !c.empty(),
			Counts:    c,
			FMeasure:  s.fMeasure(c),
			ErrorRate: s.errorRate(c),
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

// byOnset returns a copy sorted by onset; equal onsets keep list order.
func byOnset(events EventList) EventList {
	out := slices.Clone(events)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Onset < out[j].Onset })
	return out
}

func indicesWithLabel(events EventList, label string) []int {
	var idx []int
	for i, e := range events {
		if e.Label == label {
			idx = append(idx, i)
		}
	}
	return idx
}
