package sedeval

import (
	"math"

	"github.com/jamesainslie/go-sedeval/metric"
)

// Counts holds the intermediate statistics behind a set of scores.
// Segment engines count frames; event engines count events; scene and tag
// engines count files.
type Counts struct {
	Ref           int `json:"nref" yaml:"nref"`
	Sys           int `json:"nsys" yaml:"nsys"`
	TruePositive  int `json:"ntp" yaml:"ntp"`
	TrueNegative  int `json:"ntn" yaml:"ntn"`
	FalsePositive int `json:"nfp" yaml:"nfp"`
	FalseNegative int `json:"nfn" yaml:"nfn"`
	Substitutions int `json:"s" yaml:"s"`
	Deletions     int `json:"d" yaml:"d"`
	Insertions    int `json:"i" yaml:"i"`
	Correct       int `json:"ncorr,omitempty" yaml:"ncorr,omitempty"`
}

// Add returns the element-wise sum of c and o.
func (c Counts) Add(o Counts) Counts {
	return Counts{
		Ref:           c.Ref + o.Ref,
		Sys:           c.Sys + o.Sys,
		TruePositive:  c.TruePositive + o.TruePositive,
		TrueNegative:  c.TrueNegative + o.TrueNegative,
		FalsePositive: c.FalsePositive + o.FalsePositive,
		FalseNegative: c.FalseNegative + o.FalseNegative,
		Substitutions: c.Substitutions + o.Substitutions,
		Deletions:     c.Deletions + o.Deletions,
		Insertions:    c.Insertions + o.Insertions,
		Correct:       c.Correct + o.Correct,
	}
}

// empty reports whether the counts saw neither reference nor system items.
func (c Counts) empty() bool {
	return c.Ref == 0 && c.Sys == 0
}

// FMeasureScores groups precision, recall and their weighted combination.
type FMeasureScores struct {
	FMeasure  float64 `json:"f_measure" yaml:"f_measure"`
	Precision float64 `json:"precision" yaml:"precision"`
	Recall    float64 `json:"recall" yaml:"recall"`
}

// ErrorRateScores groups the error rate and its decomposition.
type ErrorRateScores struct {
	ErrorRate        float64 `json:"error_rate" yaml:"error_rate"`
	SubstitutionRate float64 `json:"substitution_rate" yaml:"substitution_rate"`
	DeletionRate     float64 `json:"deletion_rate" yaml:"deletion_rate"`
	InsertionRate    float64 `json:"insertion_rate" yaml:"insertion_rate"`
}

// AccuracyScores groups the measures that use true negatives.
type AccuracyScores struct {
	Accuracy         float64 `json:"accuracy" yaml:"accuracy"`
	BalancedAccuracy float64 `json:"balanced_accuracy" yaml:"balanced_accuracy"`
	Sensitivity      float64 `json:"sensitivity" yaml:"sensitivity"`
	Specificity      float64 `json:"specificity" yaml:"specificity"`
}

// ClassMetrics holds the scores of one class, the overall pool, or the
// class-wise average. Evaluated is false for a class that had no reference
// and no system output during the whole run; its scores are NaN.
// Groups an engine does not produce are nil.
type ClassMetrics struct {
	Label     string           `json:"label" yaml:"label"`
	Evaluated bool             `json:"evaluated" yaml:"evaluated"`
	Counts    Counts           `json:"counts" yaml:"counts"`
	FMeasure  *FMeasureScores  `json:"f_measure,omitempty" yaml:"f_measure,omitempty"`
	ErrorRate *ErrorRateScores `json:"error_rate,omitempty" yaml:"error_rate,omitempty"`
	Accuracy  *AccuracyScores  `json:"accuracy,omitempty" yaml:"accuracy,omitempty"`
	EER       *float64         `json:"eer,omitempty" yaml:"eer,omitempty"`
}

// Results is a read-only snapshot of an engine's accumulated metrics.
// Overall is micro-averaged (counts pooled across classes, then scored);
// ClassWiseAverage is macro-averaged over evaluated classes.
type Results struct {
	Overall          ClassMetrics   `json:"overall" yaml:"overall"`
	ClassWiseAverage ClassMetrics   `json:"class_wise_average" yaml:"class_wise_average"`
	ClassWise        []ClassMetrics `json:"class_wise" yaml:"class_wise"`
}

// Overall and average entries carry these labels.
const (
	OverallLabel          = "overall"
	ClassWiseAverageLabel = "class_wise_average"
)

// Class returns the metrics of one class.
func (r Results) Class(label string) (ClassMetrics, bool) {
	for _, c := range r.ClassWise {
		if c.Label == label {
			return c, true
		}
	}
	return ClassMetrics{}, false
}

// Map flattens the results into label -> metric name -> value, with
// "overall" and "class_wise_average" entries beside the class labels.
func (r Results) Map() map[string]map[string]float64 {
	out := make(map[string]map[string]float64, len(r.ClassWise)+2)
	out[OverallLabel] = r.Overall.Values()
	out[ClassWiseAverageLabel] = r.ClassWiseAverage.Values()
	for _, c := range r.ClassWise {
		out[c.Label] = c.Values()
	}
	return out
}

// Values flattens the present score groups into metric name -> value.
func (c ClassMetrics) Values() map[string]float64 {
	v := make(map[string]float64)
	if c.FMeasure != nil {
		v["f_measure"] = c.FMeasure.FMeasure
		v["precision"] = c.FMeasure.Precision
		v["recall"] = c.FMeasure.Recall
	}
	if c.ErrorRate != nil {
		v["error_rate"] = c.ErrorRate.ErrorRate
		v["substitution_rate"] = c.ErrorRate.SubstitutionRate
		v["deletion_rate"] = c.ErrorRate.DeletionRate
		v["insertion_rate"] = c.ErrorRate.InsertionRate
	}
	if c.Accuracy != nil {
		v["accuracy"] = c.Accuracy.Accuracy
		v["balanced_accuracy"] = c.Accuracy.BalancedAccuracy
		v["sensitivity"] = c.Accuracy.Sensitivity
		v["specificity"] = c.Accuracy.Specificity
	}
	if c.EER != nil {
		v["eer"] = *c.EER
	}
	return v
}

// scorer derives score groups from counts using one engine's configuration.
type scorer struct {
	beta          float64
	balanceFactor float64
	emptyOutput   EmptyOutput
}

func newScorer(cfg config) scorer {
	return scorer{beta: cfg.beta, balanceFactor: cfg.balanceFactor, emptyOutput: cfg.emptyOutput}
}

func (s scorer) fMeasure(c Counts) *FMeasureScores {
	precision := metric.Precision(float64(c.TruePositive), float64(c.Sys))
	if c.Sys == 0 && s.emptyOutput == EmptyOutputUndefined {
		precision = math.NaN()
	}
	recall := metric.Recall(float64(c.TruePositive), float64(c.Ref))
	return &FMeasureScores{
		FMeasure:  metric.FMeasure(precision, recall, s.beta),
		Precision: precision,
		Recall:    recall,
	}
}

func (s scorer) errorRate(c Counts) *ErrorRateScores {
	ref := float64(c.Ref)
	sr := metric.SubstitutionRate(ref, float64(c.Substitutions))
	dr := metric.DeletionRate(ref, float64(c.Deletions))
	ir := metric.InsertionRate(ref, float64(c.Insertions))
	return &ErrorRateScores{
		ErrorRate:        metric.ErrorRate(sr, dr, ir),
		SubstitutionRate: sr,
		DeletionRate:     dr,
		InsertionRate:    ir,
	}
}

func (s scorer) accuracy(c Counts) *AccuracyScores {
	tp, tn := float64(c.TruePositive), float64(c.TrueNegative)
	fp, fn := float64(c.FalsePositive), float64(c.FalseNegative)
	sens := metric.Sensitivity(tp, fn)
	spec := metric.Specificity(tn, fp)
	return &AccuracyScores{
		Accuracy:         metric.Accuracy(tp, tn, fp, fn),
		BalancedAccuracy: metric.BalancedAccuracy(sens, spec, s.balanceFactor),
		Sensitivity:      sens,
		Specificity:      spec,
	}
}

// notEvaluated replaces every score of m with NaN.
func notEvaluated(m ClassMetrics) ClassMetrics {
	m.Evaluated = false
	nan := math.NaN()
	if m.FMeasure != nil {
		m.FMeasure = &FMeasureScores{FMeasure: nan, Precision: nan, Recall: nan}
	}
	if m.ErrorRate != nil {
		m.ErrorRate = &ErrorRateScores{ErrorRate: nan, SubstitutionRate: nan, DeletionRate: nan, InsertionRate: nan}
	}
	if m.Accuracy != nil {
		m.Accuracy = &AccuracyScores{Accuracy: nan, BalancedAccuracy: nan, Sensitivity: nan, Specificity: nan}
	}
	if m.EER != nil {
		m.EER = &nan
	}
	return m
}

// macroAverage averages each score group of shape over the evaluated classes,
// skipping NaN values. With no evaluated class every average is NaN.
func macroAverage(classes []ClassMetrics, shape ClassMetrics) ClassMetrics {
	avg := ClassMetrics{Label: ClassWiseAverageLabel}

	var f, p, r, er, sr, dr, ir, acc, bacc, sens, spec, eer []float64
	for _, c := range classes {
		if !c.Evaluated {
			continue
		}
		avg.Evaluated = true
		avg.Counts = avg.Counts.Add(c.Counts)
		if c.FMeasure != nil {
			f = append(f, c.FMeasure.FMeasure)
			p = append(p, c.FMeasure.Precision)
			r = append(r, c.FMeasure.Recall)
		}
		if c.ErrorRate != nil {
			er = append(er, c.ErrorRate.ErrorRate)
			sr = append(sr, c.ErrorRate.SubstitutionRate)
			dr = append(dr, c.ErrorRate.DeletionRate)
			ir = append(ir, c.ErrorRate.InsertionRate)
		}
		if c.Accuracy != nil {
			acc = append(acc, c.Accuracy.Accuracy)
			bacc = append(bacc, c.Accuracy.BalancedAccuracy)
			sens = append(sens, c.Accuracy.Sensitivity)
			spec = append(spec, c.Accuracy.Specificity)
		}
		if c.EER != nil {
			eer = append(eer, *c.EER)
		}
	}

	if shape.FMeasure != nil {
		avg.FMeasure = &FMeasureScores{
			FMeasure:  metric.NanMean(f),
			Precision: metric.NanMean(p),
			Recall:    metric.NanMean(r),
		}
	}
	if shape.ErrorRate != nil {
		avg.ErrorRate = &ErrorRateScores{
			ErrorRate:        metric.NanMean(er),
			SubstitutionRate: metric.NanMean(sr),
			DeletionRate:     metric.NanMean(dr),
			InsertionRate:    metric.NanMean(ir),
		}
	}
	if shape.Accuracy != nil {
		avg.Accuracy = &AccuracyScores{
			Accuracy:         metric.NanMean(acc),
			BalancedAccuracy: metric.NanMean(bacc),
			Sensitivity:      metric.NanMean(sens),
			Specificity:      metric.NanMean(spec),
		}
	}
	if shape.EER != nil {
		m := metric.NanMean(eer)
		avg.EER = &m
	}
	return avg
}
