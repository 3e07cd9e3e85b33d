package sedeval

import (
	"fmt"
	"math"
	"sort"
)

// Event is a labeled time interval [Onset, Offset) within one file.
// Times are in seconds.
type Event struct {
	File   string  `json:"file,omitempty" yaml:"file,omitempty"`
	Onset  float64 `json:"onset" yaml:"onset"`
	Offset float64 `json:"offset" yaml:"offset"`
	Label  string  `json:"label" yaml:"label"`
}

// Duration returns Offset - Onset.
func (e Event) Duration() float64 {
	return e.Offset - e.Onset
}

// Validate reports ErrInvalidTimeRange for a non-finite time, a negative
// onset or an offset that precedes the onset.
func (e Event) Validate() error {
	if !finite(e.Onset) || !finite(e.Offset) || e.Onset < 0 || e.Offset < e.Onset {
		return fmt.Errorf("%w: %s [%v, %v) %q", ErrInvalidTimeRange, e.File, e.Onset, e.Offset, e.Label)
	}
	return nil
}

func finite(t float64) bool {
	return !math.IsNaN(t) && !math.IsInf(t, 0)
}

// EventList is an ordered sequence of events for one or more files.
// Insertion order is preserved; overlapping events of the same label are legal.
type EventList []Event

// Labels returns the distinct labels in alphabetical order.
func (l EventList) Labels() []string {
	return uniqueSorted(len(l), func(i int) string { return l[i].Label })
}

// Files returns the distinct file ids in order of first appearance.
func (l EventList) Files() []string {
	seen := make(map[string]bool)
	var files []string
	for _, e := range l {
		if !seen[e.File] {
			seen[e.File] = true
			files = append(files, e.File)
		}
	}
	return files
}

// singleFile returns the one file id the list covers, or "" for an empty
// list. A list spanning several files yields ErrMultipleFiles.
func (l EventList) singleFile() (string, error) {
	files := l.Files()
	switch len(files) {
	case 0:
		return "", nil
	case 1:
		return files[0], nil
	default:
		return "", fmt.Errorf("%w: %q", ErrMultipleFiles, files)
	}
}

// MaxOffset returns the latest offset, or 0 for an empty list.
func (l EventList) MaxOffset() float64 {
	var m float64
	for _, e := range l {
		if e.Offset > m {
			m = e.Offset
		}
	}
	return m
}

// Filter returns the events for which keep returns true, in order.
func (l EventList) Filter(keep func(Event) bool) EventList {
	var out EventList
	for _, e := range l {
		if keep(e) {
			out = append(out, e)
		}
	}
	return out
}

// ForFile returns the events of one file.
func (l EventList) ForFile(file string) EventList {
	return l.Filter(func(e Event) bool { return e.File == file })
}

// WithLabel returns the events carrying label.
func (l EventList) WithLabel(label string) EventList {
	return l.Filter(func(e Event) bool { return e.Label == label })
}

// Validate checks every event's time range.
func (l EventList) Validate() error {
	for _, e := range l {
		if err := e.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// SceneAnnotation assigns one scene label to a file.
type SceneAnnotation struct {
	File  string `json:"file" yaml:"file"`
	Label string `json:"label" yaml:"label"`
}

// SceneList is an ordered collection of scene annotations.
type SceneList []SceneAnnotation

// Labels returns the distinct scene labels in alphabetical order.
func (l SceneList) Labels() []string {
	return uniqueSorted(len(l), func(i int) string { return l[i].Label })
}

// Files returns the file ids in order.
func (l SceneList) Files() []string {
	files := make([]string, 0, len(l))
	for _, s := range l {
		files = append(files, s.File)
	}
	return files
}

// Lookup returns the first annotation for file.
func (l SceneList) Lookup(file string) (SceneAnnotation, bool) {
	for _, s := range l {
		if s.File == file {
			return s, true
		}
	}
	return SceneAnnotation{}, false
}

// TagAnnotation lists the tags present in a file.
type TagAnnotation struct {
	File string   `json:"file" yaml:"file"`
	Tags []string `json:"tags" yaml:"tags"`
}

// Has reports whether tag is present.
func (t TagAnnotation) Has(tag string) bool {
	for _, x := range t.Tags {
		if x == tag {
			return true
		}
	}
	return false
}

// TagList is an ordered collection of tag annotations.
type TagList []TagAnnotation

// Labels returns the distinct tags in alphabetical order.
func (l TagList) Labels() []string {
	var all []string
	for _, t := range l {
		all = append(all, t.Tags...)
	}
	return uniqueSorted(len(all), func(i int) string { return all[i] })
}

// Files returns the distinct file ids in order of first appearance.
func (l TagList) Files() []string {
	seen := make(map[string]bool)
	var files []string
	for _, t := range l {
		if !seen[t.File] {
			seen[t.File] = true
			files = append(files, t.File)
		}
	}
	return files
}

// Lookup returns the tags of file, merged over all of its entries.
func (l TagList) Lookup(file string) (TagAnnotation, bool) {
	out := TagAnnotation{File: file}
	found := false
	for _, t := range l {
		if t.File == file {
			found = true
			out.Tags = append(out.Tags, t.Tags...)
		}
	}
	return out, found
}

// TagProbability is a system's confidence that Tag is present in File.
type TagProbability struct {
	File        string  `json:"file" yaml:"file"`
	Tag         string  `json:"tag" yaml:"tag"`
	Probability float64 `json:"probability" yaml:"probability"`
}

func uniqueSorted(n int, at func(int) string) []string {
	seen := make(map[string]bool, n)
	var out []string
	for i := 0; i < n; i++ {
		s := at(i)
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	sort.Strings(out)
	return out
}
