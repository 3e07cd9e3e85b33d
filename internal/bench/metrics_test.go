package bench

import (
	"context"
	"errors"
	"math"
	"testing"

	sedeval "github.com/jamesainslie/go-sedeval"
)

func testPairs() []Pair {
	return []Pair{
		{
			ID: "a",
			Reference: sedeval.EventList{
				{File: "a", Onset: 0, Offset: 1, Label: "dog"},
				{File: "a", Onset: 2, Offset: 3, Label: "cat"},
			},
			Estimated: sedeval.EventList{
				{File: "a", Onset: 0, Offset: 1, Label: "dog"},
				{File: "a", Onset: 2, Offset: 3, Label: "cat"},
			},
		},
		{
			ID:        "b",
			Reference: sedeval.EventList{{File: "b", Onset: 0, Offset: 2, Label: "dog"}},
		},
	}
}

func TestEvaluate(t *testing.T) {
	tests := []struct {
		name    string
		workers int
	}{
		{"single worker", 1},
		{"more workers than pairs", 4},
		{"cpu count", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.Workers = tt.workers

			m, err := Evaluate(context.Background(), testPairs(), cfg)
			if err != nil {
				t.Fatalf("Evaluate() failed: %v", err)
			}

			if m.Files != 2 {
				t.Errorf("Files = %d, want 2", m.Files)
			}
			if m.EvaluatedLength != 5 {
				t.Errorf("EvaluatedLength = %v, want 5", m.EvaluatedLength)
			}
			if len(m.Labels) != 2 || m.Labels[0] != "cat" {
				t.Errorf("Labels = %v, want [cat dog]", m.Labels)
			}

			seg := m.Segment.Overall.Counts
			if seg.TruePositive != 2 || seg.FalseNegative != 2 || seg.FalsePositive != 0 {
				t.Errorf("segment counts = %+v, want TP=2 FN=2 FP=0", seg)
			}

			ev := m.Event.Overall
			if ev.Counts.TruePositive != 2 || ev.Counts.FalseNegative != 1 {
				t.Errorf("event counts = %+v, want TP=2 FN=1", ev.Counts)
			}
			if math.Abs(ev.FMeasure.FMeasure-0.8) > 1e-9 {
				t.Errorf("event F = %v, want 0.8", ev.FMeasure.FMeasure)
			}
		})
	}
}

func TestEvaluate_MultiFilePair(t *testing.T) {
	pair := Pair{
		ID: "all",
		Reference: sedeval.EventList{
			{File: "x", Onset: 0, Offset: 1, Label: "dog"},
			{File: "y", Onset: 0, Offset: 1, Label: "dog"},
		},
		Estimated: sedeval.EventList{
			{File: "y", Onset: 0, Offset: 1, Label: "dog"},
		},
	}

	m, err := Evaluate(context.Background(), []Pair{pair}, DefaultConfig())
	if err != nil {
		t.Fatalf("Evaluate() failed: %v", err)
	}
	if m.Files != 2 {
		t.Errorf("Files = %d, want 2", m.Files)
	}
	if c := m.Event.Overall.Counts; c.TruePositive != 1 || c.FalseNegative != 1 {
		t.Errorf("event counts = %+v, want TP=1 FN=1", c)
	}
}

func TestEvaluate_UnknownLabel(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Labels = []string{"dog"}
	cfg.Workers = 2

	_, err := Evaluate(context.Background(), testPairs(), cfg)
	if !errors.Is(err, sedeval.ErrLabelMismatch) {
		t.Errorf("Evaluate() error = %v, want ErrLabelMismatch", err)
	}
}

func TestEvaluate_InvalidConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.TimeResolution = 0

	_, err := Evaluate(context.Background(), testPairs(), cfg)
	if !errors.Is(err, sedeval.ErrInvalidConfiguration) {
		t.Errorf("Evaluate() error = %v, want ErrInvalidConfiguration", err)
	}
}

func TestEvaluate_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	cfg := DefaultConfig()
	cfg.Workers = 1
	pairs := append(testPairs(), testPairs()...)
	if _, err := Evaluate(ctx, pairs, cfg); !errors.Is(err, context.Canceled) {
		t.Errorf("Evaluate() error = %v, want context.Canceled", err)
	}
}

func TestSplitByFile(t *testing.T) {
	single := Pair{
		Reference: sedeval.EventList{{File: "ref_a", Onset: 0, Offset: 1, Label: "dog"}},
		Estimated: sedeval.EventList{{File: "est_a", Onset: 0, Offset: 1, Label: "dog"}},
	}
	if got := splitByFile(single); len(got) != 1 {
		t.Errorf("single-file pair split into %d parts, want 1", len(got))
	}

	multi := Pair{
		Reference: sedeval.EventList{
			{File: "x", Onset: 0, Offset: 1, Label: "dog"},
			{File: "y", Onset: 0, Offset: 1, Label: "dog"},
		},
		Estimated: sedeval.EventList{{File: "z", Onset: 0, Offset: 1, Label: "dog"}},
	}
	got := splitByFile(multi)
	if len(got) != 3 {
		t.Fatalf("multi-file pair split into %d parts, want 3", len(got))
	}
	if len(got[2][0]) != 0 || len(got[2][1]) != 1 {
		t.Errorf("estimate-only file = %+v, want empty reference", got[2])
	}
}
