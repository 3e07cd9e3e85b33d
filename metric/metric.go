// Package metric implements the information-retrieval formulas used by the
// sound event, scene and tagging evaluators.
//
// Every function is pure and total: zero denominators yield 0 instead of a
// division fault, so a class that never occurs in a dataset fold cannot abort
// an evaluation run. Counts are taken as float64 so that pooled totals of any
// size can be passed without conversion.
package metric

import "math"

// Eps is the spacing of float64 values at 1.0, used as the tolerance when
// comparing curve points.
var Eps = math.Nextafter(1, 2) - 1

// safeDivide returns num/den, or 0 when den is zero.
func safeDivide(num, den float64) float64 {
	if den == 0 {
		return 0
	}
	return num / den
}

// Precision returns the fraction of system output that is correct.
func Precision(tp, sys float64) float64 {
	return safeDivide(tp, sys)
}

// Recall returns the fraction of the reference that was detected.
func Recall(tp, ref float64) float64 {
	return safeDivide(tp, ref)
}

// FMeasure combines precision and recall with weight beta:
// (1+β²)·P·R / (β²·P + R). It is 0 when both inputs are 0 and NaN when
// either input is NaN.
func FMeasure(precision, recall, beta float64) float64 {
	if precision == 0 && recall == 0 {
		return 0
	}
	b2 := beta * beta
	return (1 + b2) * precision * recall / (b2*precision + recall)
}

// Sensitivity is the true positive rate, tp/(tp+fn).
func Sensitivity(tp, fn float64) float64 {
	return safeDivide(tp, tp+fn)
}

// Specificity is the true negative rate, tn/(tn+fp).
func Specificity(tn, fp float64) float64 {
	return safeDivide(tn, tn+fp)
}

// BalancedAccuracy weights sensitivity by (1-factor) and specificity by
// factor. factor 0.5 gives the arithmetic mean.
func BalancedAccuracy(sensitivity, specificity, factor float64) float64 {
	return (1-factor)*sensitivity + factor*specificity
}

// Accuracy is (tp+tn)/(tp+tn+fp+fn).
func Accuracy(tp, tn, fp, fn float64) float64 {
	return safeDivide(tp+tn, tp+tn+fp+fn)
}

// Accuracy2 is tp/(tp+fp+fn), the measure of Dixon (2000) for polyphonic
// transcription, which ignores true negatives.
func Accuracy2(tp, fp, fn float64) float64 {
	return safeDivide(tp, tp+fp+fn)
}

// AccuracyCorr is the fraction of n items classified correctly.
func AccuracyCorr(correct, n float64) float64 {
	return safeDivide(correct, n)
}

// SubstitutionRate is substitutions per reference item.
func SubstitutionRate(ref, substitutions float64) float64 {
	return safeDivide(substitutions, ref)
}

// DeletionRate is deletions per reference item.
func DeletionRate(ref, deletions float64) float64 {
	return safeDivide(deletions, ref)
}

// InsertionRate is insertions per reference item.
func InsertionRate(ref, insertions float64) float64 {
	return safeDivide(insertions, ref)
}

// ErrorRate sums the three rate components. Unlike the other measures it is
// unbounded above.
func ErrorRate(substitutionRate, deletionRate, insertionRate float64) float64 {
	return substitutionRate + deletionRate + insertionRate
}

// NanMean averages the non-NaN values. It returns NaN when no value remains.
func NanMean(values []float64) float64 {
	var sum float64
	var n int
	for _, v := range values {
		if math.IsNaN(v) {
			continue
		}
		sum += v
		n++
	}
	if n == 0 {
		return math.NaN()
	}
	return sum / float64(n)
}
