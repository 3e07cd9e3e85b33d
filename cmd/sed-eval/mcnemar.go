package main

import (
	"fmt"

	"github.com/spf13/cobra"

	sedeval "github.com/jamesainslie/go-sedeval"
	"github.com/jamesainslie/go-sedeval/internal/bench"
	"github.com/jamesainslie/go-sedeval/internal/report"
)

func newMcNemarCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "mcnemar REFERENCE ESTIMATED_A ESTIMATED_B",
		Short: "McNemar's test between two scene classification systems",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runMcNemar(cmd, args[0], args[1], args[2])
		},
	}
}

func (a *app) runMcNemar(cmd *cobra.Command, refPath, aPath, bPath string) error {
	lists := make([]sedeval.SceneList, 3)
	for i, path := range []string{refPath, aPath, bPath} {
		l, err := bench.LoadSceneList(path)
		if err != nil {
			return err
		}
		lists[i] = l
	}

	ref, estA, estB, err := alignScenes(lists[0], lists[1], lists[2])
	if err != nil {
		return err
	}
	res, err := sedeval.McNemar(ref, estA, estB)
	if err != nil {
		return err
	}
	a.logger.Debug("mcnemar", "files", len(ref), "b", res.OnlyB, "c", res.OnlyA)

	doc := report.NewDocument("mcnemar")
	doc.Summary["files"] = float64(len(ref))
	doc.Summary["b"] = float64(res.OnlyB)
	doc.Summary["c"] = float64(res.OnlyA)
	doc.Summary["statistic"] = res.Statistic
	doc.Summary["p_value"] = res.PValue
	return a.emit(cmd, doc)
}

// alignScenes returns the reference labels and both systems' labels in
// reference file order. Every reference file must be estimated by both.
func alignScenes(ref, a, b sedeval.SceneList) (refLabels, aLabels, bLabels []string, err error) {
	for _, file := range ref.Files() {
		r, _ := ref.Lookup(file)
		ea, ok := a.Lookup(file)
		if !ok {
			return nil, nil, nil, fmt.Errorf("system A: %w: %q", sedeval.ErrMissingEstimate, file)
		}
		eb, ok := b.Lookup(file)
		if !ok {
			return nil, nil, nil, fmt.Errorf("system B: %w: %q", sedeval.ErrMissingEstimate, file)
		}
		refLabels = append(refLabels, r.Label)
		aLabels = append(aLabels, ea.Label)
		bLabels = append(bLabels, eb.Label)
	}
	return refLabels, aLabels, bLabels, nil
}
