package bench

import (
	"context"
	"fmt"
	"math"
	"sort"

	sedeval "github.com/jamesainslie/go-sedeval"
)

// SweepResult holds the overall event-based metrics for one collar value.
type SweepResult struct {
	Collar  float64              `json:"collar" yaml:"collar"`
	Metrics sedeval.ClassMetrics `json:"metrics" yaml:"metrics"`
}

// FMeasure returns the overall event-based F-measure, or NaN when absent.
func (r SweepResult) FMeasure() float64 {
	if r.Metrics.FMeasure == nil {
		return math.NaN()
	}
	return r.Metrics.FMeasure.FMeasure
}

// SweepCollars generates collar values from min up to but excluding max.
func SweepCollars(min, max, step float64) []float64 {
	if step <= 0 {
		return nil
	}
	var collars []float64
	for i := 0; ; i++ {
		c := min + float64(i)*step
		if c >= max-1e-9 {
			break
		}
		collars = append(collars, c)
	}
	return collars
}

// Sweep evaluates the corpus once per collar and returns results sorted by
// overall F-measure descending. NaN scores sort last.
func Sweep(ctx context.Context, pairs []Pair, cfg Config, collars []float64) ([]SweepResult, error) {
	if cfg.Labels == nil {
		cfg.Labels = Labels(pairs)
	}

	results := make([]SweepResult, 0, len(collars))
	for _, collar := range collars {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		cfg.Collar = collar
		m, err := Evaluate(ctx, pairs, cfg)
		if err != nil {
			return nil, fmt.Errorf("collar %.3f: %w", collar, err)
		}
		cfg.logger().Debug("sweep step", "collar", collar)

		results = append(results, SweepResult{
			Collar:  collar,
			Metrics: m.Event.Overall,
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		fi, fj := results[i].FMeasure(), results[j].FMeasure()
		if math.IsNaN(fj) {
			return !math.IsNaN(fi)
		}
		return fi > fj
	})

	return results, nil
}
