package metric

import (
	"math"
	"testing"
)

const tol = 1e-6

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < tol
}

func TestPrecisionRecall(t *testing.T) {
	tests := []struct {
		name  string
		tp    float64
		denom float64
		want  float64
	}{
		{"all correct", 100, 100, 1},
		{"tenth", 10, 100, 0.1},
		{"none correct", 0, 100, 0},
		{"empty denominator", 0, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Precision(tt.tp, tt.denom); !almostEqual(got, tt.want) {
				t.Errorf("Precision(%v, %v) = %v, want %v", tt.tp, tt.denom, got, tt.want)
			}
			if got := Recall(tt.tp, tt.denom); !almostEqual(got, tt.want) {
				t.Errorf("Recall(%v, %v) = %v, want %v", tt.tp, tt.denom, got, tt.want)
			}
		})
	}
}

func TestFMeasure(t *testing.T) {
	tests := []struct {
		name string
		p, r float64
		beta float64
		want float64
	}{
		{"both zero", 0, 0, 1, 0},
		{"zero recall", 0.1, 0, 1, 0},
		{"equal", 0.1, 0.1, 1, 0.1},
		{"harmonic mean", 0.1, 0.8, 1, 0.17777777},
		{"beta two", 0.1, 0.5, 2, 0.27777777},
		{"perfect", 1, 1, 1, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FMeasure(tt.p, tt.r, tt.beta)
			if !almostEqual(got, tt.want) {
				t.Errorf("FMeasure(%v, %v, %v) = %v, want %v", tt.p, tt.r, tt.beta, got, tt.want)
			}
		})
	}
}

func TestFMeasure_HarmonicMean(t *testing.T) {
	for _, pr := range [][2]float64{{0.3, 0.9}, {0.5, 0.25}, {0.01, 0.99}} {
		p, r := pr[0], pr[1]
		want := 2 / (1/p + 1/r)
		if got := FMeasure(p, r, 1); !almostEqual(got, want) {
			t.Errorf("FMeasure(%v, %v, 1) = %v, want harmonic mean %v", p, r, got, want)
		}
	}
}

func TestFMeasure_NaNPropagates(t *testing.T) {
	if got := FMeasure(math.NaN(), 0.5, 1); !math.IsNaN(got) {
		t.Errorf("FMeasure(NaN, 0.5) = %v, want NaN", got)
	}
}

func TestSensitivitySpecificity(t *testing.T) {
	tests := []struct {
		name string
		a, b float64
		want float64
	}{
		{"half", 10, 10, 0.5},
		{"small", 1, 100, 0.00990099},
		{"empty", 0, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Sensitivity(tt.a, tt.b); !almostEqual(got, tt.want) {
				t.Errorf("Sensitivity(%v, %v) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
			if got := Specificity(tt.a, tt.b); !almostEqual(got, tt.want) {
				t.Errorf("Specificity(%v, %v) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestBalancedAccuracy(t *testing.T) {
	tests := []struct {
		sens, spec, factor float64
		want               float64
	}{
		{0.1, 0.5, 0.5, 0.3},
		{0, 0.5, 0.5, 0.25},
		{0, 0, 0.5, 0},
		{1, 0, 0.25, 0.75},
	}

	for _, tt := range tests {
		if got := BalancedAccuracy(tt.sens, tt.spec, tt.factor); !almostEqual(got, tt.want) {
			t.Errorf("BalancedAccuracy(%v, %v, %v) = %v, want %v", tt.sens, tt.spec, tt.factor, got, tt.want)
		}
	}
}

func TestAccuracy_Exact(t *testing.T) {
	counts := [][4]float64{
		{1, 2, 3, 4},
		{0, 0, 0, 1},
		{7, 0, 0, 0},
		{5, 5, 5, 5},
	}
	for _, c := range counts {
		tp, tn, fp, fn := c[0], c[1], c[2], c[3]
		want := (tp + tn) / (tp + tn + fp + fn)
		if got := Accuracy(tp, tn, fp, fn); got != want {
			t.Errorf("Accuracy(%v) = %v, want exactly %v", c, got, want)
		}
	}
	if got := Accuracy(0, 0, 0, 0); got != 0 {
		t.Errorf("Accuracy of empty counts = %v, want 0", got)
	}
}

func TestAccuracy2AndCorr(t *testing.T) {
	if got := Accuracy2(2, 1, 1); !almostEqual(got, 0.5) {
		t.Errorf("Accuracy2(2, 1, 1) = %v, want 0.5", got)
	}
	if got := AccuracyCorr(3, 4); !almostEqual(got, 0.75) {
		t.Errorf("AccuracyCorr(3, 4) = %v, want 0.75", got)
	}
	if got := AccuracyCorr(0, 0); got != 0 {
		t.Errorf("AccuracyCorr(0, 0) = %v, want 0", got)
	}
}

func TestRates(t *testing.T) {
	tests := []struct {
		ref, n float64
		want   float64
	}{
		{100, 0, 0},
		{100, 10, 0.1},
		{100, 100, 1},
		{0, 0, 0},
	}

	for _, tt := range tests {
		for name, fn := range map[string]func(float64, float64) float64{
			"SubstitutionRate": SubstitutionRate,
			"DeletionRate":     DeletionRate,
			"InsertionRate":    InsertionRate,
		} {
			if got := fn(tt.ref, tt.n); !almostEqual(got, tt.want) {
				t.Errorf("%s(%v, %v) = %v, want %v", name, tt.ref, tt.n, got, tt.want)
			}
		}
	}
}

func TestErrorRate(t *testing.T) {
	tests := []struct {
		s, d, i float64
		want    float64
	}{
		{0, 0, 0, 0},
		{0.2, 0.2, 0.2, 0.6},
		{1.5, 0.2, 0.2, 1.9},
	}
	for _, tt := range tests {
		if got := ErrorRate(tt.s, tt.d, tt.i); !almostEqual(got, tt.want) {
			t.Errorf("ErrorRate(%v, %v, %v) = %v, want %v", tt.s, tt.d, tt.i, got, tt.want)
		}
	}
}

func TestBoundedScores(t *testing.T) {
	for tp := 0.0; tp < 4; tp++ {
		for fp := 0.0; fp < 4; fp++ {
			for fn := 0.0; fn < 4; fn++ {
				p := Precision(tp, tp+fp)
				r := Recall(tp, tp+fn)
				if p < 0 || p > 1 || r < 0 || r > 1 {
					t.Fatalf("tp=%v fp=%v fn=%v: precision %v recall %v out of [0,1]", tp, fp, fn, p, r)
				}
			}
		}
	}
}

func TestNanMean(t *testing.T) {
	if got := NanMean([]float64{1, math.NaN(), 0}); !almostEqual(got, 0.5) {
		t.Errorf("NanMean = %v, want 0.5", got)
	}
	if got := NanMean([]float64{math.NaN()}); !math.IsNaN(got) {
		t.Errorf("NanMean of only NaN = %v, want NaN", got)
	}
	if got := NanMean(nil); !math.IsNaN(got) {
		t.Errorf("NanMean(nil) = %v, want NaN", got)
	}
}

func TestEqualErrorRate(t *testing.T) {
	tests := []struct {
		name   string
		labels []bool
		scores []float64
		want   float64
	}{
		{
			name:   "perfect separation",
			labels: []bool{true, true, false, false},
			scores: []float64{0.9, 0.8, 0.2, 0.1},
			want:   0,
		},
		{
			name:   "inverted",
			labels: []bool{false, false, true, true},
			scores: []float64{0.9, 0.8, 0.2, 0.1},
			want:   1,
		},
		{
			name:   "one swap",
			labels: []bool{true, false, true, false},
			scores: []float64{0.9, 0.8, 0.7, 0.1},
			want:   0.5,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := EqualErrorRate(tt.labels, tt.scores)
			if !almostEqual(got, tt.want) {
				t.Errorf("EqualErrorRate() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestEqualErrorRate_Undefined(t *testing.T) {
	if got := EqualErrorRate([]bool{false, false}, []float64{0.1, 0.2}); !math.IsNaN(got) {
		t.Errorf("EqualErrorRate without positives = %v, want NaN", got)
	}
	if got := EqualErrorRate([]bool{true}, []float64{0.1, 0.2}); !math.IsNaN(got) {
		t.Errorf("EqualErrorRate with mismatched lengths = %v, want NaN", got)
	}
}
