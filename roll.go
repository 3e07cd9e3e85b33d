package sedeval

import (
	"fmt"
	"math"
	"sort"
)

const (
	// DefaultRollResolution is the frame length, in seconds, of rolls built
	// outside a segment engine.
	DefaultRollResolution = 0.01

	// frameTolerance absorbs float rounding in time/resolution so that an
	// event ending at 0.3 s with 0.1 s frames covers 3 frames, not 4.
	frameTolerance = 1e-9
)

// onsetFrame returns the first frame an event starting at t occupies.
func onsetFrame(t, resolution float64) int {
	return int(math.Floor(t/resolution + frameTolerance))
}

// offsetFrame returns the exclusive end frame of an event ending at t.
func offsetFrame(t, resolution float64) int {
	return int(math.Ceil(t/resolution - frameTolerance))
}

// EventRoll is a binary activity matrix indexed by [frame][label].
// It is immutable once built; Pad and Reorder return new rolls.
type EventRoll struct {
	labels     []string
	resolution float64
	frames     int
	cells      []bool
}

// NewEventRoll converts events into a roll with one column per label, in the
// given order. A nil labels slice uses the events' own labels alphabetically.
// The roll covers every frame up to the latest offset. Overlapping events of
// one label saturate at 1.
func NewEventRoll(events EventList, labels []string, resolution float64) (*EventRoll, error) {
	if resolution <= 0 || math.IsNaN(resolution) || math.IsInf(resolution, 0) {
		return nil, fmt.Errorf("%w: time resolution must be > 0, got %v", ErrInvalidConfiguration, resolution)
	}
	if labels == nil {
		labels = events.Labels()
	}
	index := labelIndex(labels)
	return buildRoll(events, labels, index, resolution, 0)
}

// buildRoll fills a roll of at least minFrames frames. The label index is
// passed in so engines can build it once.
func buildRoll(events EventList, labels []string, index map[string]int, resolution float64, minFrames int) (*EventRoll, error) {
	for _, e := range events {
		if err := e.Validate(); err != nil {
			return nil, err
		}
		if _, ok := index[e.Label]; !ok {
			return nil, fmt.Errorf("%w: %q", ErrLabelMismatch, e.Label)
		}
	}

	frames := offsetFrame(events.MaxOffset(), resolution)
	if frames < minFrames {
		frames = minFrames
	}

	r := &EventRoll{
		labels:     labels,
		resolution: resolution,
		frames:     frames,
		cells:      make([]bool, frames*len(labels)),
	}
	for _, e := range events {
		col := index[e.Label]
		start := onsetFrame(e.Onset, resolution)
		end := offsetFrame(e.Offset, resolution)
		for f := start; f < end && f < frames; f++ {
			r.cells[f*len(labels)+col] = true
		}
	}
	return r, nil
}

func labelIndex(labels []string) map[string]int {
	index := make(map[string]int, len(labels))
	for i, l := range labels {
		index[l] = i
	}
	return index
}

// Labels returns the column labels.
func (r *EventRoll) Labels() []string {
	return append([]string(nil), r.labels...)
}

// Resolution returns the frame length in seconds.
func (r *EventRoll) Resolution() float64 {
	return r.resolution
}

// Frames returns the number of rows.
func (r *EventRoll) Frames() int {
	return r.frames
}

// Active reports whether column col is active in frame. Frames beyond the
// roll are inactive.
func (r *EventRoll) Active(frame, col int) bool {
	if frame < 0 || frame >= r.frames || col < 0 || col >= len(r.labels) {
		return false
	}
	return r.cells[frame*len(r.labels)+col]
}

// Column returns the activity of one label across all frames.
func (r *EventRoll) Column(label string) ([]bool, bool) {
	col := -1
	for i, l := range r.labels {
		if l == label {
			col = i
			break
		}
	}
	if col < 0 {
		return nil, false
	}
	out := make([]bool, r.frames)
	for f := range out {
		out[f] = r.cells[f*len(r.labels)+col]
	}
	return out, true
}

// Pad returns a roll extended with inactive frames to at least frames rows.
// It never truncates.
func (r *EventRoll) Pad(frames int) *EventRoll {
	if frames <= r.frames {
		return r
	}
	cells := make([]bool, frames*len(r.labels))
	copy(cells, r.cells)
	return &EventRoll{
		labels:     r.labels,
		resolution: r.resolution,
		frames:     frames,
		cells:      cells,
	}
}

// Reorder returns a roll whose columns follow labels. Labels absent from r
// become inactive columns. Every label of r must appear in labels.
func (r *EventRoll) Reorder(labels []string) (*EventRoll, error) {
	index := labelIndex(labels)
	for _, l := range r.labels {
		if _, ok := index[l]; !ok {
			return nil, fmt.Errorf("%w: %q missing from target vocabulary", ErrLabelMismatch, l)
		}
	}
	out := &EventRoll{
		labels:     append([]string(nil), labels...),
		resolution: r.resolution,
		frames:     r.frames,
		cells:      make([]bool, r.frames*len(labels)),
	}
	for oldCol, l := range r.labels {
		newCol := index[l]
		for f := 0; f < r.frames; f++ {
			out.cells[f*len(labels)+newCol] = r.cells[f*len(r.labels)+oldCol]
		}
	}
	return out, nil
}

// Intervals converts the roll back into events for file, one event per run
// of active frames. Boundaries are accurate to one frame.
func (r *EventRoll) Intervals(file string) EventList {
	var out EventList
	for col, label := range r.labels {
		start := -1
		for f := 0; f <= r.frames; f++ {
			on := f < r.frames && r.cells[f*len(r.labels)+col]
			switch {
			case on && start < 0:
				start = f
			case !on && start >= 0:
				out = append(out, Event{
					File:   file,
					Onset:  float64(start) * r.resolution,
					Offset: float64(f) * r.resolution,
					Label:  label,
				})
				start = -1
			}
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Onset < out[j].Onset })
	return out
}

// AlignRolls makes two rolls directly comparable: both get the union of their
// labels in alphabetical order and the larger frame count, padding with
// inactive frames. Rolls of different resolution cannot be aligned.
func AlignRolls(a, b *EventRoll) (*EventRoll, *EventRoll, error) {
	if a.resolution != b.resolution {
		return nil, nil, fmt.Errorf("%w: resolutions %v and %v", ErrShapeMismatch, a.resolution, b.resolution)
	}

	labels := uniqueSorted(len(a.labels)+len(b.labels), func(i int) string {
		if i < len(a.labels) {
			return a.labels[i]
		}
		return b.labels[i-len(a.labels)]
	})

	ra, err := a.Reorder(labels)
	if err != nil {
		return nil, nil, err
	}
	rb, err := b.Reorder(labels)
	if err != nil {
		return nil, nil, err
	}

	frames := max(ra.frames, rb.frames)
	return ra.Pad(frames), rb.Pad(frames), nil
}

// matchLengths pads two rolls sharing a vocabulary to a common frame count
// of at least minFrames.
func matchLengths(a, b *EventRoll, minFrames int) (*EventRoll, *EventRoll, error) {
	frames := max(a.frames, b.frames, minFrames)
	a, b = a.Pad(frames), b.Pad(frames)
	if a.frames != b.frames || len(a.labels) != len(b.labels) {
		return nil, nil, fmt.Errorf("%w: %dx%d vs %dx%d", ErrShapeMismatch, a.frames, len(a.labels), b.frames, len(b.labels))
	}
	return a, b, nil
}
