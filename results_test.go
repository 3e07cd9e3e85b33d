package sedeval

import (
	"math"
	"testing"
)

func TestResults_Map(t *testing.T) {
	m := mustEvent(t, []string{"cat", "dog"})
	ref := EventList{{Onset: 0, Offset: 1, Label: "dog"}}
	if err := m.Evaluate(ref, ref); err != nil {
		t.Fatalf("Evaluate() failed: %v", err)
	}

	flat := m.Results().Map()
	if got := flat[OverallLabel]["f_measure"]; got != 1 {
		t.Errorf("overall f_measure = %v, want 1", got)
	}
	if _, ok := flat[OverallLabel]["accuracy"]; ok {
		t.Error("event results carry an accuracy group")
	}
	if got := flat["dog"]["error_rate"]; got != 0 {
		t.Errorf("dog error_rate = %v, want 0", got)
	}
	if got := flat["cat"]["f_measure"]; !math.IsNaN(got) {
		t.Errorf("cat f_measure = %v, want NaN", got)
	}
	if got := flat[ClassWiseAverageLabel]["f_measure"]; got != 1 {
		t.Errorf("class-wise average f_measure = %v, want 1", got)
	}
}

func TestCounts_Add(t *testing.T) {
	a := Counts{Ref: 1, Sys: 2, TruePositive: 1, Substitutions: 1}
	b := Counts{Ref: 3, Sys: 1, FalseNegative: 2, Insertions: 4}
	want := Counts{Ref: 4, Sys: 3, TruePositive: 1, FalseNegative: 2, Substitutions: 1, Insertions: 4}
	if got := a.Add(b); got != want {
		t.Errorf("Add() = %+v, want %+v", got, want)
	}
	if a.Add(b) != b.Add(a) {
		t.Error("Add is not commutative")
	}
}
