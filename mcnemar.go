package sedeval

import (
	"fmt"
	"math"
)

// McNemarResult is the outcome of a paired McNemar test between two systems.
type McNemarResult struct {
	// OnlyB counts items system A got wrong and system B got right.
	OnlyB int `json:"b" yaml:"b"`
	// OnlyA counts items system A got right and system B got wrong.
	OnlyA int `json:"c" yaml:"c"`

	Statistic float64 `json:"statistic" yaml:"statistic"`
	PValue    float64 `json:"p_value" yaml:"p_value"`
}

// McNemar compares two systems' outputs against the same reference labels.
func McNemar(reference, estimatedA, estimatedB []string) (McNemarResult, error) {
	if len(reference) != len(estimatedA) || len(reference) != len(estimatedB) {
		return McNemarResult{}, fmt.Errorf("%w: reference %d, A %d, B %d",
			ErrLengthMismatch, len(reference), len(estimatedA), len(estimatedB))
	}
	correctA := make([]bool, len(reference))
	correctB := make([]bool, len(reference))
	for i, r := range reference {
		correctA[i] = estimatedA[i] == r
		correctB[i] = estimatedB[i] == r
	}
	return McNemarTest(correctA, correctB)
}

// McNemarTest runs the continuity-corrected McNemar test on paired
// correctness vectors. The statistic is (|b-c|-1)^2 / (b+c), or 0 when the
// systems never disagree; the p-value is its chi-squared (1 dof) tail.
func McNemarTest(correctA, correctB []bool) (McNemarResult, error) {
	if len(correctA) != len(correctB) {
		return McNemarResult{}, fmt.Errorf("%w: A %d, B %d", ErrLengthMismatch, len(correctA), len(correctB))
	}

	var res McNemarResult
	for i := range correctA {
		switch {
		case !correctA[i] && correctB[i]:
			res.OnlyB++
		case correctA[i] && !correctB[i]:
			res.OnlyA++
		}
	}

	n := float64(res.OnlyA + res.OnlyB)
	if n == 0 {
		res.PValue = 1
		return res, nil
	}
	d := math.Abs(float64(res.OnlyB-res.OnlyA)) - 1
	res.Statistic = d * d / n
	res.PValue = math.Erfc(math.Sqrt(res.Statistic / 2))
	return res, nil
}
