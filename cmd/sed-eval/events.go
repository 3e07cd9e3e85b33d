package main

import (
	"github.com/spf13/cobra"

	"github.com/jamesainslie/go-sedeval/internal/bench"
	"github.com/jamesainslie/go-sedeval/internal/config"
	"github.com/jamesainslie/go-sedeval/internal/report"
)

func newEventsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "events FILE_PAIR_LIST",
		Short: "Segment-based and event-based metrics for sound event detection",
		Long: `Each line of FILE_PAIR_LIST names a reference and an estimated event list,
separated by a tab, comma or semicolon. Relative paths are resolved against
the list's directory.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runEvents(cmd, args[0])
		},
	}

	f := cmd.Flags()
	f.Float64("time-resolution", 1.0, "Segment length in seconds")
	f.Float64("collar", 0.2, "Onset/offset collar in seconds")
	f.Float64("percentage-of-length", 0.5, "Offset tolerance as a fraction of the reference event length")
	f.Bool("evaluate-onset", true, "Require matching onsets")
	f.Bool("evaluate-offset", true, "Require matching offsets")
	f.String("matching", "greedy", "Event matching: greedy or optimal")
	f.Float64("beta", 1.0, "F-measure beta")
	f.String("empty-output", "zero_score", "Precision for classes without output: zero_score or undefined")
	f.IntP("workers", "j", 1, "Parallel evaluation shards (0 = number of CPUs)")

	for key, name := range map[string]string{
		config.KeyTimeResolution:     "time-resolution",
		config.KeyCollar:             "collar",
		config.KeyPercentageOfLength: "percentage-of-length",
		config.KeyEvaluateOnset:      "evaluate-onset",
		config.KeyEvaluateOffset:     "evaluate-offset",
		config.KeyMatching:           "matching",
		config.KeyBeta:               "beta",
		config.KeyEmptySystemOutput:  "empty-output",
		config.KeyWorkers:            "workers",
	} {
		mustBind(a.v, key, f, name)
	}
	return cmd
}

func (a *app) runEvents(cmd *cobra.Command, listPath string) error {
	pairs, err := bench.LoadCorpus(listPath)
	if err != nil {
		return err
	}
	a.logger.Info("corpus loaded", "path", listPath, "pairs", len(pairs))

	cfg, err := a.cfg.Bench(a.logger)
	if err != nil {
		return err
	}
	m, err := bench.Evaluate(cmd.Context(), pairs, cfg)
	if err != nil {
		return err
	}

	doc := report.NewDocument("events")
	doc.Parameters["labels"] = m.Labels
	doc.Parameters["time_resolution"] = cfg.TimeResolution
	doc.Parameters["t_collar"] = cfg.Collar
	doc.Parameters["percentage_of_length"] = cfg.PercentageOfLength
	doc.Parameters["evaluate_onset"] = cfg.EvaluateOnset
	doc.Parameters["evaluate_offset"] = cfg.EvaluateOffset
	doc.Parameters["event_matching_type"] = cfg.Matching
	doc.Summary["files"] = float64(m.Files)
	doc.Summary["evaluated_length_seconds"] = m.EvaluatedLength
	doc.AddSection("segment_based_metrics", m.Segment)
	doc.AddSection("event_based_metrics", m.Event)
	return a.emit(cmd, doc)
}
