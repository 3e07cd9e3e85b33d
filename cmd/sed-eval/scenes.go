package main

import (
	"fmt"
	"slices"

	"github.com/spf13/cobra"

	sedeval "github.com/jamesainslie/go-sedeval"
	"github.com/jamesainslie/go-sedeval/internal/bench"
	"github.com/jamesainslie/go-sedeval/internal/report"
)

func newScenesCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "scenes REFERENCE ESTIMATED",
		Short: "Acoustic scene classification accuracy",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runScenes(cmd, args[0], args[1])
		},
	}
}

func (a *app) runScenes(cmd *cobra.Command, refPath, estPath string) error {
	ref, err := bench.LoadSceneList(refPath)
	if err != nil {
		return err
	}
	est, err := bench.LoadSceneList(estPath)
	if err != nil {
		return err
	}

	labels := a.labels(append(ref.Labels(), est.Labels()...))
	opts, err := a.cfg.Options(a.logger)
	if err != nil {
		return err
	}
	m, err := sedeval.NewSceneClassificationMetrics(labels, opts...)
	if err != nil {
		return err
	}
	if err := m.Evaluate(ref, est); err != nil {
		return err
	}

	doc := report.NewDocument("scenes")
	doc.Parameters["labels"] = labels
	doc.Summary["files"] = float64(m.EvaluatedFiles())
	doc.AddSection("scene_classification_metrics", m.Results())
	if err := a.emit(cmd, doc); err != nil {
		return err
	}

	if textOutput(cmd) {
		_, err = fmt.Fprintln(a.stdout, report.ConfusionTable(labels, m.ConfusionMatrix()))
	}
	return err
}

// labels returns the configured vocabulary, or the sorted unique found labels.
func (a *app) labels(found []string) []string {
	if len(a.cfg.Labels) > 0 {
		return a.cfg.Labels
	}
	labels := slices.Clone(found)
	slices.Sort(labels)
	return slices.Compact(labels)
}
