package sedeval

import (
	"errors"
	"math"
	"testing"
)

func TestEventList_Queries(t *testing.T) {
	events := EventList{
		{File: "b.wav", Onset: 1, Offset: 2.5, Label: "speech"},
		{File: "a.wav", Onset: 0, Offset: 4, Label: "car"},
		{File: "b.wav", Onset: 3, Offset: 3.5, Label: "car"},
	}

	if got := events.Labels(); len(got) != 2 || got[0] != "car" || got[1] != "speech" {
		t.Errorf("Labels() = %v, want [car speech]", got)
	}
	if got := events.Files(); len(got) != 2 || got[0] != "b.wav" || got[1] != "a.wav" {
		t.Errorf("Files() = %v, want first-appearance order [b.wav a.wav]", got)
	}
	if got := events.MaxOffset(); got != 4 {
		t.Errorf("MaxOffset() = %v, want 4", got)
	}
	if got := events.ForFile("b.wav"); len(got) != 2 {
		t.Errorf("ForFile(b.wav) returned %d events, want 2", len(got))
	}
	if got := events.WithLabel("car"); len(got) != 2 || got[0].File != "a.wav" {
		t.Errorf("WithLabel(car) = %v, want list order preserved", got)
	}
	if got := (EventList{}).MaxOffset(); got != 0 {
		t.Errorf("empty MaxOffset() = %v, want 0", got)
	}
	if d := events[0].Duration(); math.Abs(d-1.5) > 1e-12 {
		t.Errorf("Duration() = %v, want 1.5", d)
	}
}

func TestEventList_Validate(t *testing.T) {
	ok := EventList{{Onset: 0, Offset: 0, Label: "a"}, {Onset: 1, Offset: 2, Label: "a"}}
	if err := ok.Validate(); err != nil {
		t.Errorf("Validate() = %v, want nil", err)
	}

	bad := append(ok, Event{Onset: 2, Offset: 1, Label: "a"})
	if err := bad.Validate(); !errors.Is(err, ErrInvalidTimeRange) {
		t.Errorf("Validate() = %v, want ErrInvalidTimeRange", err)
	}

	for _, e := range []Event{
		{Onset: math.NaN(), Offset: 1, Label: "a"},
		{Onset: 0, Offset: math.NaN(), Label: "a"},
		{Onset: 0, Offset: math.Inf(1), Label: "a"},
		{Onset: math.Inf(-1), Offset: 1, Label: "a"},
	} {
		if err := e.Validate(); !errors.Is(err, ErrInvalidTimeRange) {
			t.Errorf("Validate(%+v) = %v, want ErrInvalidTimeRange", e, err)
		}
	}
}

func TestSceneList_Lookup(t *testing.T) {
	scenes := SceneList{{File: "f1", Label: "park"}, {File: "f2", Label: "bus"}}

	if got, ok := scenes.Lookup("f2"); !ok || got.Label != "bus" {
		t.Errorf("Lookup(f2) = %+v, %v", got, ok)
	}
	if _, ok := scenes.Lookup("f3"); ok {
		t.Error("Lookup(f3) found a missing file")
	}
	if got := scenes.Labels(); len(got) != 2 || got[0] != "bus" {
		t.Errorf("Labels() = %v, want [bus park]", got)
	}
}

func TestTagList_LookupMerges(t *testing.T) {
	tags := TagList{
		{File: "f1", Tags: []string{"dog"}},
		{File: "f1", Tags: []string{"cat"}},
	}
	got, ok := tags.Lookup("f1")
	if !ok || !got.Has("dog") || !got.Has("cat") {
		t.Errorf("Lookup(f1) = %+v, want dog and cat", got)
	}
	if got := tags.Files(); len(got) != 1 {
		t.Errorf("Files() = %v, want one file", got)
	}
}
