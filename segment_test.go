package sedeval

import (
	"errors"
	"math"
	"testing"
)

const tol = 1e-6

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < tol
}

func mustSegment(t *testing.T, labels []string, opts ...Option) *SegmentBasedMetrics {
	t.Helper()
	m, err := NewSegmentBasedMetrics(labels, opts...)
	if err != nil {
		t.Fatalf("NewSegmentBasedMetrics() failed: %v", err)
	}
	return m
}

func TestSegmentBasedMetrics_PartialOverlap(t *testing.T) {
	m := mustSegment(t, []string{"car"}, WithTimeResolution(1.0))

	ref := EventList{{File: "a.wav", Onset: 0, Offset: 10, Label: "car"}}
	est := EventList{{File: "a.wav", Onset: 5, Offset: 15, Label: "car"}}
	if err := m.Evaluate(ref, est); err != nil {
		t.Fatalf("Evaluate() failed: %v", err)
	}

	car, ok := m.Results().Class("car")
	if !ok {
		t.Fatal("Results() missing class car")
	}
	c := car.Counts
	if c.TruePositive != 5 || c.FalseNegative != 5 || c.FalsePositive != 5 || c.TrueNegative != 0 {
		t.Errorf("counts = TP %d FN %d FP %d TN %d, want 5/5/5/0",
			c.TruePositive, c.FalseNegative, c.FalsePositive, c.TrueNegative)
	}
	if !almostEqual(car.FMeasure.FMeasure, 0.5) {
		t.Errorf("F-measure = %v, want 0.5", car.FMeasure.FMeasure)
	}
	if !almostEqual(car.ErrorRate.ErrorRate, 1.0) {
		t.Errorf("error rate = %v, want 1.0", car.ErrorRate.ErrorRate)
	}
	if !almostEqual(car.Accuracy.Accuracy, 5.0/15.0) {
		t.Errorf("accuracy = %v, want %v", car.Accuracy.Accuracy, 5.0/15.0)
	}
	if got := m.EvaluatedLength(); !almostEqual(got, 15) {
		t.Errorf("EvaluatedLength() = %v, want 15", got)
	}
}

func TestSegmentBasedMetrics_OverallSubstitution(t *testing.T) {
	m := mustSegment(t, []string{"cat", "dog"})

	ref := EventList{{Onset: 0, Offset: 2, Label: "dog"}}
	est := EventList{{Onset: 0, Offset: 1, Label: "cat"}}
	if err := m.Evaluate(ref, est); err != nil {
		t.Fatalf("Evaluate() failed: %v", err)
	}

	res := m.Results()
	o := res.Overall.Counts
	// Frame 0: dog missed, cat inserted -> one substitution.
	// Frame 1: dog missed -> one deletion.
	if o.Substitutions != 1 || o.Deletions != 1 || o.Insertions != 0 {
		t.Errorf("overall S/D/I = %d/%d/%d, want 1/1/0", o.Substitutions, o.Deletions, o.Insertions)
	}
	if !almostEqual(res.Overall.ErrorRate.ErrorRate, 1.0) {
		t.Errorf("overall error rate = %v, want 1.0", res.Overall.ErrorRate.ErrorRate)
	}

	dog, _ := res.Class("dog")
	if dog.Counts.Deletions != 2 || dog.Counts.Substitutions != 0 {
		t.Errorf("dog D/S = %d/%d, want 2/0", dog.Counts.Deletions, dog.Counts.Substitutions)
	}
	cat, _ := res.Class("cat")
	if cat.Counts.Insertions != 1 {
		t.Errorf("cat insertions = %d, want 1", cat.Counts.Insertions)
	}
}

func TestSegmentBasedMetrics_MacroAverage(t *testing.T) {
	m := mustSegment(t, []string{"a", "b", "c"})

	ref := EventList{
		{Onset: 0, Offset: 1, Label: "a"},
		{Onset: 1, Offset: 2, Label: "b"},
	}
	est := EventList{{Onset: 0, Offset: 1, Label: "a"}}
	if err := m.Evaluate(ref, est); err != nil {
		t.Fatalf("Evaluate() failed: %v", err)
	}

	res := m.Results()
	a, _ := res.Class("a")
	b, _ := res.Class("b")
	if !almostEqual(a.FMeasure.FMeasure, 1) || !almostEqual(b.FMeasure.FMeasure, 0) {
		t.Fatalf("class F = %v/%v, want 1/0", a.FMeasure.FMeasure, b.FMeasure.FMeasure)
	}
	if got := res.ClassWiseAverage.FMeasure.FMeasure; !almostEqual(got, 0.5) {
		t.Errorf("macro F-measure = %v, want 0.5", got)
	}

	c, _ := res.Class("c")
	if c.Evaluated {
		t.Error("class c evaluated, want not evaluated")
	}
	if !math.IsNaN(c.FMeasure.FMeasure) {
		t.Errorf("class c F-measure = %v, want NaN", c.FMeasure.FMeasure)
	}
}

func TestSegmentBasedMetrics_NoEvaluation(t *testing.T) {
	m := mustSegment(t, []string{"a", "b"})

	res := m.Results()
	if res.Overall.Evaluated {
		t.Error("overall evaluated before any Evaluate call")
	}
	if res.Overall.FMeasure.FMeasure != 0 || res.Overall.ErrorRate.ErrorRate != 0 {
		t.Errorf("overall F/ER = %v/%v, want 0/0", res.Overall.FMeasure.FMeasure, res.Overall.ErrorRate.ErrorRate)
	}
	if !math.IsNaN(res.ClassWiseAverage.FMeasure.FMeasure) {
		t.Errorf("class-wise average F = %v, want NaN", res.ClassWiseAverage.FMeasure.FMeasure)
	}
	for _, c := range res.ClassWise {
		if c.Evaluated {
			t.Errorf("class %s evaluated before any Evaluate call", c.Label)
		}
	}
}

func TestSegmentBasedMetrics_EvaluateWithLength(t *testing.T) {
	m := mustSegment(t, []string{"a"})

	ref := EventList{{Onset: 0, Offset: 2, Label: "a"}}
	if err := m.EvaluateWithLength(ref, EventList{}, 5); err != nil {
		t.Fatalf("EvaluateWithLength() failed: %v", err)
	}

	a, _ := m.Results().Class("a")
	if a.Counts.FalseNegative != 2 || a.Counts.TrueNegative != 3 {
		t.Errorf("FN/TN = %d/%d, want 2/3", a.Counts.FalseNegative, a.Counts.TrueNegative)
	}
	if got := m.EvaluatedLength(); !almostEqual(got, 5) {
		t.Errorf("EvaluatedLength() = %v, want 5", got)
	}
	if got := m.EvaluatedFiles(); got != 1 {
		t.Errorf("EvaluatedFiles() = %d, want 1", got)
	}
}

func TestSegmentBasedMetrics_EvaluatedLengthUsesOffsets(t *testing.T) {
	m := mustSegment(t, []string{"a"})

	ref := EventList{{Onset: 0, Offset: 0.5, Label: "a"}}
	if err := m.Evaluate(ref, EventList{{Onset: 0, Offset: 0.25, Label: "a"}}); err != nil {
		t.Fatalf("Evaluate() failed: %v", err)
	}
	if got := m.EvaluatedLength(); !almostEqual(got, 0.5) {
		t.Errorf("EvaluatedLength() = %v, want 0.5", got)
	}
}

func TestSegmentBasedMetrics_Errors(t *testing.T) {
	tests := []struct {
		name string
		ref  EventList
		est  EventList
		want error
	}{
		{
			name: "invalid time range",
			ref:  EventList{{Onset: 0, Offset: 1, Label: "a"}},
			est:  EventList{{Onset: 0, Offset: 1, Label: "a"}, {Onset: 3, Offset: 2, Label: "a"}},
			want: ErrInvalidTimeRange,
		},
		{
			name: "nan onset",
			ref:  EventList{{Onset: math.NaN(), Offset: 1, Label: "a"}},
			want: ErrInvalidTimeRange,
		},
		{
			name: "nan offset",
			ref:  EventList{{Onset: 0, Offset: math.NaN(), Label: "a"}},
			want: ErrInvalidTimeRange,
		},
		{
			name: "infinite offset",
			est:  EventList{{Onset: 0, Offset: math.Inf(1), Label: "a"}},
			want: ErrInvalidTimeRange,
		},
		{
			name: "label outside vocabulary",
			ref:  EventList{{Onset: 0, Offset: 1, Label: "a"}},
			est:  EventList{{Onset: 0, Offset: 1, Label: "z"}},
			want: ErrLabelMismatch,
		},
		{
			name: "multiple files",
			ref: EventList{
				{File: "x.wav", Onset: 0, Offset: 1, Label: "a"},
				{File: "y.wav", Onset: 0, Offset: 1, Label: "a"},
			},
			want: ErrMultipleFiles,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := mustSegment(t, []string{"a"})
			err := m.Evaluate(tt.ref, tt.est)
			if !errors.Is(err, tt.want) {
				t.Fatalf("Evaluate() error = %v, want %v", err, tt.want)
			}
			if m.EvaluatedFiles() != 0 || m.Results().Overall.Counts != (Counts{}) {
				t.Error("rejected evaluation changed the accumulators")
			}
		})
	}
}

func TestNewSegmentBasedMetrics_Errors(t *testing.T) {
	tests := []struct {
		name   string
		labels []string
		opts   []Option
	}{
		{"zero resolution", []string{"a"}, []Option{WithTimeResolution(0)}},
		{"negative beta", []string{"a"}, []Option{WithBeta(-1)}},
		{"balance factor above one", []string{"a"}, []Option{WithBalanceFactor(1.5)}},
		{"duplicate label", []string{"a", "a"}, nil},
		{"empty label", []string{""}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewSegmentBasedMetrics(tt.labels, tt.opts...)
			if !errors.Is(err, ErrInvalidConfiguration) {
				t.Errorf("NewSegmentBasedMetrics() error = %v, want ErrInvalidConfiguration", err)
			}
		})
	}
}

func TestSegmentBasedMetrics_MergeCommutes(t *testing.T) {
	labels := []string{"cat", "dog"}
	pairA := [2]EventList{
		{{File: "a.wav", Onset: 0, Offset: 3, Label: "dog"}},
		{{File: "a.wav", Onset: 1, Offset: 4, Label: "dog"}, {File: "a.wav", Onset: 0, Offset: 1, Label: "cat"}},
	}
	pairB := [2]EventList{
		{{File: "b.wav", Onset: 2, Offset: 5, Label: "cat"}},
		{{File: "b.wav", Onset: 2, Offset: 3, Label: "dog"}},
	}

	run := func(pairs ...[2]EventList) *SegmentBasedMetrics {
		m := mustSegment(t, labels)
		for _, p := range pairs {
			if err := m.Evaluate(p[0], p[1]); err != nil {
				t.Fatalf("Evaluate() failed: %v", err)
			}
		}
		return m
	}

	ab := run(pairA, pairB)
	ba := run(pairB, pairA)
	merged := run(pairA)
	if err := merged.Merge(run(pairB)); err != nil {
		t.Fatalf("Merge() failed: %v", err)
	}

	want := ab.Results()
	for name, m := range map[string]*SegmentBasedMetrics{"reversed": ba, "merged": merged} {
		got := m.Results()
		if got.Overall.Counts != want.Overall.Counts {
			t.Errorf("%s overall counts = %+v, want %+v", name, got.Overall.Counts, want.Overall.Counts)
		}
		for i := range want.ClassWise {
			if got.ClassWise[i].Counts != want.ClassWise[i].Counts {
				t.Errorf("%s %s counts = %+v, want %+v", name, labels[i], got.ClassWise[i].Counts, want.ClassWise[i].Counts)
			}
		}
		if m.EvaluatedFiles() != 2 || !almostEqual(m.EvaluatedLength(), ab.EvaluatedLength()) {
			t.Errorf("%s evaluated %d files / %v s, want 2 / %v", name, m.EvaluatedFiles(), m.EvaluatedLength(), ab.EvaluatedLength())
		}
	}
}

func TestSegmentBasedMetrics_MergeMismatch(t *testing.T) {
	a := mustSegment(t, []string{"a"})
	b := mustSegment(t, []string{"b"})
	if err := a.Merge(b); !errors.Is(err, ErrLabelMismatch) {
		t.Errorf("Merge() error = %v, want ErrLabelMismatch", err)
	}

	c := mustSegment(t, []string{"a"}, WithTimeResolution(0.5))
	if err := a.Merge(c); !errors.Is(err, ErrInvalidConfiguration) {
		t.Errorf("Merge() error = %v, want ErrInvalidConfiguration", err)
	}
}

func TestSegmentBasedMetrics_EmptyOutputUndefined(t *testing.T) {
	m := mustSegment(t, []string{"a"}, WithEmptySystemOutput(EmptyOutputUndefined))
	if err := m.Evaluate(EventList{{Onset: 0, Offset: 1, Label: "a"}}, nil); err != nil {
		t.Fatalf("Evaluate() failed: %v", err)
	}

	a, _ := m.Results().Class("a")
	if !math.IsNaN(a.FMeasure.Precision) {
		t.Errorf("precision = %v, want NaN", a.FMeasure.Precision)
	}
	if a.FMeasure.Recall != 0 {
		t.Errorf("recall = %v, want 0", a.FMeasure.Recall)
	}
}
