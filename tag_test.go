package sedeval

import (
	"errors"
	"math"
	"testing"
)

func tagFixture() (TagList, TagList) {
	ref := TagList{
		{File: "f1", Tags: []string{"dog", "cat"}},
		{File: "f2", Tags: []string{"dog"}},
		{File: "f3"},
	}
	est := TagList{
		{File: "f1", Tags: []string{"dog"}},
		{File: "f2", Tags: []string{"dog", "bird"}},
		{File: "f3", Tags: []string{"cat"}},
	}
	return ref, est
}

func TestAudioTaggingMetrics(t *testing.T) {
	m, err := NewAudioTaggingMetrics([]string{"bird", "cat", "dog"})
	if err != nil {
		t.Fatalf("NewAudioTaggingMetrics() failed: %v", err)
	}
	ref, est := tagFixture()
	if err := m.Evaluate(ref, est); err != nil {
		t.Fatalf("Evaluate() failed: %v", err)
	}

	res := m.Results()
	dog, _ := res.Class("dog")
	if dog.Counts.TruePositive != 2 || !almostEqual(dog.FMeasure.FMeasure, 1) {
		t.Errorf("dog TP/F = %d/%v, want 2/1", dog.Counts.TruePositive, dog.FMeasure.FMeasure)
	}
	cat, _ := res.Class("cat")
	if cat.Counts.FalseNegative != 1 || cat.Counts.FalsePositive != 1 || cat.FMeasure.FMeasure != 0 {
		t.Errorf("cat FN/FP/F = %d/%d/%v, want 1/1/0", cat.Counts.FalseNegative, cat.Counts.FalsePositive, cat.FMeasure.FMeasure)
	}
	bird, _ := res.Class("bird")
	if bird.Evaluated || !math.IsNaN(bird.FMeasure.FMeasure) {
		t.Errorf("bird = %+v, want not evaluated", bird)
	}

	if got := res.Overall.FMeasure.FMeasure; !almostEqual(got, 4.0/7.0) {
		t.Errorf("overall F = %v, want %v", got, 4.0/7.0)
	}
	if got := res.ClassWiseAverage.FMeasure.FMeasure; !almostEqual(got, 0.5) {
		t.Errorf("class-wise average F = %v, want 0.5", got)
	}
	if res.Overall.EER != nil {
		t.Error("overall EER present without probabilities")
	}
}

func TestAudioTaggingMetrics_Probabilities(t *testing.T) {
	m, err := NewAudioTaggingMetrics([]string{"bird", "cat", "dog"})
	if err != nil {
		t.Fatalf("NewAudioTaggingMetrics() failed: %v", err)
	}
	ref, _ := tagFixture()
	probs := []TagProbability{
		{File: "f1", Tag: "dog", Probability: 0.9},
		{File: "f2", Tag: "dog", Probability: 0.8},
		{File: "f3", Tag: "dog", Probability: 0.1},
		{File: "f1", Tag: "cat", Probability: 0.7},
		{File: "f2", Tag: "cat", Probability: 0.2},
		{File: "f3", Tag: "cat", Probability: 0.6},
		{File: "f1", Tag: "bird", Probability: 0.1},
		{File: "f2", Tag: "bird", Probability: 0.3},
		{File: "f3", Tag: "bird", Probability: 0.2},
	}
	if err := m.EvaluateWithProbabilities(ref, nil, probs); err != nil {
		t.Fatalf("EvaluateWithProbabilities() failed: %v", err)
	}

	res := m.Results()
	for _, tag := range []string{"cat", "dog"} {
		c, _ := res.Class(tag)
		if c.EER == nil || !almostEqual(*c.EER, 0) {
			t.Errorf("%s EER = %v, want 0", tag, c.EER)
		}
		if c.FMeasure != nil {
			t.Errorf("%s F-measure present without estimated tags", tag)
		}
	}
	bird, _ := res.Class("bird")
	if bird.EER == nil || !math.IsNaN(*bird.EER) {
		t.Errorf("bird EER = %v, want NaN", bird.EER)
	}
	if res.ClassWiseAverage.EER == nil || !almostEqual(*res.ClassWiseAverage.EER, 0) {
		t.Errorf("class-wise average EER = %v, want 0", res.ClassWiseAverage.EER)
	}
}

func TestAudioTaggingMetrics_Errors(t *testing.T) {
	ref, est := tagFixture()

	tests := []struct {
		name  string
		est   TagList
		probs []TagProbability
		want  error
	}{
		{"nothing to evaluate", nil, nil, ErrInvalidConfiguration},
		{"reference file not estimated", est[:2], nil, ErrMissingEstimate},
		{"estimate without reference", append(TagList{{File: "f9"}}, est...), nil, ErrMissingReference},
		{"unknown tag", TagList{{File: "f1", Tags: []string{"horse"}}, est[1], est[2]}, nil, ErrLabelMismatch},
		{"missing probability", nil, []TagProbability{{File: "f1", Tag: "dog", Probability: 1}}, ErrMissingEstimate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := NewAudioTaggingMetrics([]string{"bird", "cat", "dog"})
			if err != nil {
				t.Fatalf("NewAudioTaggingMetrics() failed: %v", err)
			}
			if err := m.EvaluateWithProbabilities(ref, tt.est, tt.probs); !errors.Is(err, tt.want) {
				t.Errorf("EvaluateWithProbabilities() error = %v, want %v", err, tt.want)
			}
			if m.EvaluatedFiles() != 0 {
				t.Error("rejected evaluation changed the accumulators")
			}
		})
	}
}
