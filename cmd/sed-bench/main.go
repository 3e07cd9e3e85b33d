package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"

	sedeval "github.com/jamesainslie/go-sedeval"
	"github.com/jamesainslie/go-sedeval/internal/bench"
	"github.com/jamesainslie/go-sedeval/internal/report"
)

func main() {
	var (
		pairsPath  = flag.String("pairs", "", "File pair list (required unless -systems is set)")
		systems    = flag.String("systems", "", "Comma-separated file pair lists for comparison")
		resolution = flag.Float64("resolution", 1.0, "Segment length in seconds")
		collar     = flag.Float64("collar", 0.2, "Onset/offset collar in seconds")
		matching   = flag.String("matching", "greedy", "Event matching: greedy or optimal")
		workers    = flag.Int("workers", 0, "Parallel evaluation shards (0 = number of CPUs)")
		sweep      = flag.Bool("sweep", false, "Run collar sweep")
		collarMin  = flag.Float64("collar-min", 0.05, "Sweep minimum collar")
		collarMax  = flag.Float64("collar-max", 0.55, "Sweep maximum collar (exclusive)")
		collarStep = flag.Float64("collar-step", 0.05, "Sweep step size")
		verbose    = flag.Bool("verbose", false, "Enable debug logging")
	)
	flag.Parse()

	if *pairsPath == "" && *systems == "" {
		fmt.Fprintln(os.Stderr, "error: -pairs or -systems required")
		flag.Usage()
		os.Exit(1)
	}

	m, err := sedeval.ParseMatching(*matching)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	level := slog.LevelWarn
	if *verbose {
		level = slog.LevelDebug
	}

	cfg := bench.DefaultConfig()
	cfg.TimeResolution = *resolution
	cfg.Collar = *collar
	cfg.Matching = m
	cfg.Workers = *workers
	cfg.Logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	ctx := context.Background()

	if *systems != "" {
		runComparison(ctx, strings.Split(*systems, ","), cfg, *sweep, *collarMin, *collarMax, *collarStep)
		return
	}

	pairs, err := bench.LoadCorpus(*pairsPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error loading pairs: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Loaded %d pairs from %s\n\n", len(pairs), *pairsPath)

	if *sweep {
		runSweep(ctx, pairs, cfg, *collarMin, *collarMax, *collarStep)
	} else {
		runSingle(ctx, pairs, cfg)
	}
}

func runSingle(ctx context.Context, pairs []bench.Pair, cfg bench.Config) {
	m, err := bench.Evaluate(ctx, pairs, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error evaluating: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Files: %d  Length: %.1fs  Labels: %d\n\n", m.Files, m.EvaluatedLength, len(m.Labels))
	printOverall("Segment-based", m.Segment.Overall)
	printOverall("Event-based", m.Event.Overall)
}

func runSweep(ctx context.Context, pairs []bench.Pair, cfg bench.Config, min, max, step float64) {
	collars := bench.SweepCollars(min, max, step)

	fmt.Printf("Collar Sweep Results (matching=%s)\n", cfg.Matching)
	fmt.Println(strings.Repeat("-", 50))
	fmt.Printf("%-8s %-10s %-10s %-10s %-8s\n", "Collar", "Prec", "Rec", "F", "ER")

	results, err := bench.Sweep(ctx, pairs, cfg, collars)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error during sweep: %v\n", err)
		os.Exit(1)
	}

	// Print sorted by collar for readability
	for _, c := range collars {
		for _, r := range results {
			if r.Collar == c {
				f, e := r.Metrics.FMeasure, r.Metrics.ErrorRate
				fmt.Printf("%-8.3f %-10s %-10s %-10s %-8s\n",
					r.Collar, report.Percent(f.Precision), report.Percent(f.Recall), report.Percent(f.FMeasure), report.Rate(e.ErrorRate))
				break
			}
		}
	}

	fmt.Println(strings.Repeat("-", 50))
	if len(results) > 0 {
		best := results[0]
		fmt.Printf("Best: %.3f (F: %s)\n", best.Collar, report.Percent(best.FMeasure()))
	}
}

func runComparison(ctx context.Context, lists []string, cfg bench.Config, sweep bool, min, max, step float64) {
	fmt.Printf("System Comparison (matching=%s)\n", cfg.Matching)
	fmt.Println(strings.Repeat("-", 60))
	fmt.Printf("%-30s %-8s %-10s %-8s\n", "System", "Collar", "F", "ER")

	for _, path := range lists {
		pairs, err := bench.LoadCorpus(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error with %s: %v\n", path, err)
			continue
		}

		var best bench.SweepResult
		if sweep {
			results, err := bench.Sweep(ctx, pairs, cfg, bench.SweepCollars(min, max, step))
			if err != nil {
				fmt.Fprintf(os.Stderr, "error with %s: %v\n", path, err)
				continue
			}
			if len(results) == 0 {
				continue
			}
			best = results[0]
		} else {
			m, err := bench.Evaluate(ctx, pairs, cfg)
			if err != nil {
				fmt.Fprintf(os.Stderr, "error with %s: %v\n", path, err)
				continue
			}
			best = bench.SweepResult{Collar: cfg.Collar, Metrics: m.Event.Overall}
		}

		fmt.Printf("%-30s %-8.3f %-10s %-8s\n",
			path, best.Collar, report.Percent(best.FMeasure()), report.Rate(best.Metrics.ErrorRate.ErrorRate))
	}
}

func printOverall(title string, c sedeval.ClassMetrics) {
	f, e := c.FMeasure, c.ErrorRate
	fmt.Printf("%s\n", title)
	fmt.Printf("  F: %s  Precision: %s  Recall: %s\n",
		report.Percent(f.FMeasure), report.Percent(f.Precision), report.Percent(f.Recall))
	fmt.Printf("  ER: %s  (S: %s, D: %s, I: %s)\n",
		report.Rate(e.ErrorRate), report.Rate(e.SubstitutionRate), report.Rate(e.DeletionRate), report.Rate(e.InsertionRate))
	fmt.Printf("  (Nref: %d, Nsys: %d, TP: %d, FP: %d, FN: %d)\n\n",
		c.Counts.Ref, c.Counts.Sys, c.Counts.TruePositive, c.Counts.FalsePositive, c.Counts.FalseNegative)
}
