package bench

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"

	"golang.org/x/sync/errgroup"

	sedeval "github.com/jamesainslie/go-sedeval"
)

// Config holds evaluation parameters.
type Config struct {
	Labels             []string // nil derives the vocabulary from the references
	TimeResolution     float64  // segment length in seconds
	Collar             float64  // onset/offset tolerance in seconds
	PercentageOfLength float64
	EvaluateOnset      bool
	EvaluateOffset     bool
	Matching           sedeval.Matching
	Beta               float64
	BalanceFactor      float64
	EmptyOutput        sedeval.EmptyOutput
	Workers            int
	Logger             *slog.Logger
}

// DefaultConfig returns default evaluation configuration.
func DefaultConfig() Config {
	return Config{
		TimeResolution:     1.0,
		Collar:             0.2,
		PercentageOfLength: 0.5,
		EvaluateOnset:      true,
		EvaluateOffset:     true,
		Matching:           sedeval.MatchGreedy,
		Beta:               1.0,
		BalanceFactor:      0.5,
		EmptyOutput:        sedeval.EmptyOutputZeroScore,
		Workers:            1,
	}
}

func (c Config) logger() *slog.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return slog.Default()
}

func (c Config) options() []sedeval.Option {
	return []sedeval.Option{
		sedeval.WithTimeResolution(c.TimeResolution),
		sedeval.WithCollar(c.Collar),
		sedeval.WithPercentageOfLength(c.PercentageOfLength),
		sedeval.WithEvaluateOnset(c.EvaluateOnset),
		sedeval.WithEvaluateOffset(c.EvaluateOffset),
		sedeval.WithMatching(c.Matching),
		sedeval.WithBeta(c.Beta),
		sedeval.WithBalanceFactor(c.BalanceFactor),
		sedeval.WithEmptySystemOutput(c.EmptyOutput),
		sedeval.WithLogger(c.logger()),
	}
}

// Metrics holds evaluation results for a dataset.
type Metrics struct {
	Labels          []string        `json:"labels" yaml:"labels"`
	Files           int             `json:"files" yaml:"files"`
	EvaluatedLength float64         `json:"evaluated_length_seconds" yaml:"evaluated_length_seconds"`
	Segment         sedeval.Results `json:"segment_based" yaml:"segment_based"`
	Event           sedeval.Results `json:"event_based" yaml:"event_based"`
}

// Evaluate runs the segment and event engines over every pair. With more than
// one worker, pairs are spread over independent shards that are merged once
// all pairs are done, so results do not depend on the worker count.
func Evaluate(ctx context.Context, pairs []Pair, cfg Config) (Metrics, error) {
	if cfg.Labels == nil {
		cfg.Labels = Labels(pairs)
	}
	workers := cfg.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	workers = min(workers, max(len(pairs), 1))

	pool, err := NewPool(cfg, workers)
	if err != nil {
		return Metrics{}, err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for _, p := range pairs {
		g.Go(func() error {
			shard, err := pool.Acquire(gctx)
			if err != nil {
				return err
			}
			defer pool.Release(shard)
			if err := shard.Evaluate(p); err != nil {
				return fmt.Errorf("pair %s: %w", p.ID, err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		_, _ = pool.Close()
		return Metrics{}, err
	}

	total, err := pool.Close()
	if err != nil {
		return Metrics{}, err
	}

	cfg.logger().Info("evaluation complete",
		"pairs", len(pairs),
		"files", total.Segment.EvaluatedFiles(),
		"workers", workers,
	)
	return Metrics{
		Labels:          cfg.Labels,
		Files:           total.Segment.EvaluatedFiles(),
		EvaluatedLength: total.Segment.EvaluatedLength(),
		Segment:         total.Segment.Results(),
		Event:           total.Event.Results(),
	}, nil
}

// splitByFile returns per-file event lists. Lists that already cover at most
// one file each are returned as a single pair even when their file ids
// differ.
func splitByFile(p Pair) [][2]sedeval.EventList {
	refFiles := p.Reference.Files()
	estFiles := p.Estimated.Files()
	if len(refFiles) <= 1 && len(estFiles) <= 1 {
		return [][2]sedeval.EventList{{p.Reference, p.Estimated}}
	}

	seen := make(map[string]bool)
	var out [][2]sedeval.EventList
	for _, f := range append(refFiles, estFiles...) {
		if seen[f] {
			continue
		}
		seen[f] = true
		out = append(out, [2]sedeval.EventList{p.Reference.ForFile(f), p.Estimated.ForFile(f)})
	}
	return out
}
