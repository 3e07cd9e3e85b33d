package metric

import (
	"math"
	"sort"
)

// Point is one operating point of a ROC curve.
type Point struct {
	FalsePositiveRate float64
	TruePositiveRate  float64
}

// ROC returns the operating points obtained by thresholding scores at every
// distinct value, from the highest score down. The curve starts at (0, 0).
// It returns nil when labels and scores differ in length or when either
// class is absent.
func ROC(labels []bool, scores []float64) []Point {
	if len(labels) != len(scores) || len(labels) == 0 {
		return nil
	}

	var positives, negatives float64
	for _, l := range labels {
		if l {
			positives++
		} else {
			negatives++
		}
	}
	if positives == 0 || negatives == 0 {
		return nil
	}

	idx := make([]int, len(scores))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return scores[idx[a]] > scores[idx[b]]
	})

	points := []Point{{}}
	var tp, fp float64
	for k, i := range idx {
		if labels[i] {
			tp++
		} else {
			fp++
		}
		// Emit a point only once every item sharing this score is counted.
		if k+1 < len(idx) && scores[idx[k+1]] == scores[i] {
			continue
		}
		points = append(points, Point{
			FalsePositiveRate: fp / negatives,
			TruePositiveRate:  tp / positives,
		})
	}
	return points
}

// EqualErrorRate returns the rate at which false positive and false negative
// rates are equal, interpolated linearly between the two ROC points that
// bracket the crossing. It is NaN when the curve cannot be built.
func EqualErrorRate(labels []bool, scores []float64) float64 {
	points := ROC(labels, scores)
	if len(points) < 2 {
		return math.NaN()
	}

	i := 1
	for ; i < len(points); i++ {
		if points[i].FalsePositiveRate+Eps >= 1-points[i].TruePositiveRate {
			break
		}
	}
	if i == len(points) {
		i = len(points) - 1
	}

	p1, p2 := points[i-1], points[i]
	if math.Abs(p2.FalsePositiveRate-p1.FalsePositiveRate) < Eps {
		return p1.FalsePositiveRate
	}

	m := (p2.TruePositiveRate - p1.TruePositiveRate) / (p2.FalsePositiveRate - p1.FalsePositiveRate)
	o := p1.TruePositiveRate - m*p1.FalsePositiveRate
	return (1 - o) / (1 + m)
}
