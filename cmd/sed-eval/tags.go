package main

import (
	"github.com/spf13/cobra"

	sedeval "github.com/jamesainslie/go-sedeval"
	"github.com/jamesainslie/go-sedeval/internal/bench"
	"github.com/jamesainslie/go-sedeval/internal/report"
)

func newTagsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tags REFERENCE ESTIMATED",
		Short: "Audio tagging metrics",
		Long: `Tag lists hold one "file<TAB>tag1,tag2" row per file. With --probabilities,
a "file,tag,probability" list adds the equal error rate per tag. Pass "-" as
ESTIMATED to score probabilities only.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runTags(cmd, args[0], args[1])
		},
	}
	cmd.Flags().String("probabilities", "", "Per-tag probability list")
	return cmd
}

func (a *app) runTags(cmd *cobra.Command, refPath, estPath string) error {
	ref, err := bench.LoadTagList(refPath)
	if err != nil {
		return err
	}
	var est sedeval.TagList
	if estPath != "-" {
		if est, err = bench.LoadTagList(estPath); err != nil {
			return err
		}
	}

	var probs []sedeval.TagProbability
	if path, _ := cmd.Flags().GetString("probabilities"); path != "" {
		if probs, err = bench.LoadTagProbabilities(path); err != nil {
			return err
		}
	}

	found := append(ref.Labels(), est.Labels()...)
	for _, p := range probs {
		found = append(found, p.Tag)
	}
	labels := a.labels(found)

	opts, err := a.cfg.Options(a.logger)
	if err != nil {
		return err
	}
	m, err := sedeval.NewAudioTaggingMetrics(labels, opts...)
	if err != nil {
		return err
	}
	if err := m.EvaluateWithProbabilities(ref, est, probs); err != nil {
		return err
	}

	doc := report.NewDocument("tags")
	doc.Parameters["labels"] = labels
	doc.Summary["files"] = float64(m.EvaluatedFiles())
	doc.AddSection("audio_tagging_metrics", m.Results())
	return a.emit(cmd, doc)
}
