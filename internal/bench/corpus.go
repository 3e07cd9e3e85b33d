// Package bench provides dataset loading, evaluation and parameter sweeps for
// sound event detection output.
package bench

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	sedeval "github.com/jamesainslie/go-sedeval"
)

// ErrFormat indicates a row that matches none of the supported layouts.
var ErrFormat = errors.New("unknown list format")

// Delimiters accepted in annotation lists, in sniffing preference order.
var delimiters = []rune{'\t', ',', ';'}

// SniffDelimiter picks the delimiter that occurs most often in the first
// non-empty line. A line containing none of candidates yields the first
// candidate.
func SniffDelimiter(data []byte, candidates []rune) rune {
	line := firstLine(data)
	best, bestCount := candidates[0], 0
	for _, d := range candidates {
		if n := strings.Count(line, string(d)); n > bestCount {
			best, bestCount = d, n
		}
	}
	return best
}

func firstLine(data []byte) string {
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			return line
		}
	}
	return ""
}

// readRows splits delimited text into trimmed rows, skipping blank lines and
// lines starting with '#'.
func readRows(r io.Reader, candidates []rune) ([][]string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}

	cr := csv.NewReader(bytes.NewReader(data))
	cr.Comma = SniffDelimiter(data, candidates)
	cr.Comment = '#'
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.TrimLeadingSpace = true

	var rows [][]string
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		for i := range rec {
			rec[i] = strings.TrimSpace(rec[i])
		}
		if len(rec) == 1 && rec[0] == "" {
			continue
		}
		rows = append(rows, rec)
	}
	return rows, nil
}

func parseTime(s string) (float64, error) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%w: time %q is not a finite number", ErrFormat, s)
	}
	return v, nil
}

// ParseEventList reads an event list. Supported rows are
//
//	onset, offset
//	onset, offset, label
//	file, onset, offset, label
//	file, scene, onset, offset, label
//	file
//
// separated by tab, comma or semicolon. A lone file row declares a file
// without events and is skipped.
func ParseEventList(r io.Reader) (sedeval.EventList, error) {
	rows, err := readRows(r, delimiters)
	if err != nil {
		return nil, err
	}

	var events sedeval.EventList
	for i, row := range rows {
		var (
			e            sedeval.Event
			onset, off   string
			parseErr     error
			declaresFile bool
		)
		switch len(row) {
		case 1:
			if _, err := strconv.ParseFloat(row[0], 64); err == nil {
				parseErr = fmt.Errorf("%w: lone time value", ErrFormat)
			}
			declaresFile = true
		case 2:
			onset, off = row[0], row[1]
		case 3:
			onset, off, e.Label = row[0], row[1], row[2]
		case 4:
			e.File, onset, off, e.Label = row[0], row[1], row[2], row[3]
		case 5:
			e.File, onset, off, e.Label = row[0], row[2], row[3], row[4]
		default:
			parseErr = fmt.Errorf("%w: %d columns", ErrFormat, len(row))
		}
		if parseErr == nil && !declaresFile {
			if e.Onset, parseErr = parseTime(onset); parseErr == nil {
				e.Offset, parseErr = parseTime(off)
			}
		}
		if parseErr != nil {
			return nil, fmt.Errorf("line %d: %w", i+1, parseErr)
		}
		if declaresFile {
			continue
		}
		if err := e.Validate(); err != nil {
			return nil, fmt.Errorf("line %d: %w", i+1, err)
		}
		events = append(events, e)
	}
	return events, nil
}

// LoadEventList reads an event list file. Events without a file column are
// assigned the list's base name without extension.
func LoadEventList(path string) (sedeval.EventList, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open event list: %w", err)
	}
	defer func() { _ = f.Close() }()

	events, err := ParseEventList(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	id := fileID(path)
	for i := range events {
		if events[i].File == "" {
			events[i].File = id
		}
	}
	return events, nil
}

func fileID(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// ParseSceneList reads rows of "file, label" or "file, start, end, label".
func ParseSceneList(r io.Reader) (sedeval.SceneList, error) {
	rows, err := readRows(r, delimiters)
	if err != nil {
		return nil, err
	}

	var scenes sedeval.SceneList
	for i, row := range rows {
		switch len(row) {
		case 2:
			scenes = append(scenes, sedeval.SceneAnnotation{File: row[0], Label: row[1]})
		case 4:
			if _, err := parseTime(row[1]); err != nil {
				return nil, fmt.Errorf("line %d: %w", i+1, err)
			}
			if _, err := parseTime(row[2]); err != nil {
				return nil, fmt.Errorf("line %d: %w", i+1, err)
			}
			scenes = append(scenes, sedeval.SceneAnnotation{File: row[0], Label: row[3]})
		default:
			return nil, fmt.Errorf("line %d: %w: %d columns in scene list", i+1, ErrFormat, len(row))
		}
	}
	return scenes, nil
}

// LoadSceneList reads a scene list file.
func LoadSceneList(path string) (sedeval.SceneList, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open scene list: %w", err)
	}
	defer func() { _ = f.Close() }()

	scenes, err := ParseSceneList(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return scenes, nil
}

// ParseTagList reads rows of "file<TAB>tag1,tag2". Columns are separated by
// tab or semicolon since commas separate the tags. A file row without tags
// means no tag is present.
func ParseTagList(r io.Reader) (sedeval.TagList, error) {
	rows, err := readRows(r, []rune{'\t', ';'})
	if err != nil {
		return nil, err
	}

	var tags sedeval.TagList
	for i, row := range rows {
		if len(row) > 2 {
			return nil, fmt.Errorf("line %d: %w: %d columns in tag list", i+1, ErrFormat, len(row))
		}
		t := sedeval.TagAnnotation{File: row[0]}
		if len(row) == 2 {
			for _, tag := range strings.Split(row[1], ",") {
				if tag = strings.TrimSpace(tag); tag != "" {
					t.Tags = append(t.Tags, tag)
				}
			}
		}
		tags = append(tags, t)
	}
	return tags, nil
}

// LoadTagList reads a tag list file.
func LoadTagList(path string) (sedeval.TagList, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open tag list: %w", err)
	}
	defer func() { _ = f.Close() }()

	tags, err := ParseTagList(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return tags, nil
}

// ParseTagProbabilities reads rows of "file, tag, probability".
func ParseTagProbabilities(r io.Reader) ([]sedeval.TagProbability, error) {
	rows, err := readRows(r, delimiters)
	if err != nil {
		return nil, err
	}

	probs := make([]sedeval.TagProbability, 0, len(rows))
	for i, row := range rows {
		if len(row) != 3 {
			return nil, fmt.Errorf("line %d: %w: %d columns in probability list", i+1, ErrFormat, len(row))
		}
		p, err := strconv.ParseFloat(row[2], 64)
		if err != nil || p < 0 || p > 1 {
			return nil, fmt.Errorf("line %d: %w: probability %q", i+1, ErrFormat, row[2])
		}
		probs = append(probs, sedeval.TagProbability{File: row[0], Tag: row[1], Probability: p})
	}
	return probs, nil
}

// LoadTagProbabilities reads a tag probability file.
func LoadTagProbabilities(path string) ([]sedeval.TagProbability, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open probability list: %w", err)
	}
	defer func() { _ = f.Close() }()

	probs, err := ParseTagProbabilities(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return probs, nil
}

// FilePair names a reference and an estimated event list.
type FilePair struct {
	Reference string
	Estimated string
}

// ParseFilePairList reads rows of "reference, estimated".
func ParseFilePairList(r io.Reader) ([]FilePair, error) {
	rows, err := readRows(r, delimiters)
	if err != nil {
		return nil, err
	}

	pairs := make([]FilePair, 0, len(rows))
	for i, row := range rows {
		if len(row) != 2 {
			return nil, fmt.Errorf("line %d: %w: %d columns in file pair list", i+1, ErrFormat, len(row))
		}
		pairs = append(pairs, FilePair{Reference: row[0], Estimated: row[1]})
	}
	return pairs, nil
}

// Pair is a loaded reference/estimated event list pair.
type Pair struct {
	ID        string
	Reference sedeval.EventList
	Estimated sedeval.EventList
}

// LoadCorpus loads every pair named in a file pair list. Relative paths are
// resolved against the list's directory.
func LoadCorpus(listPath string) ([]Pair, error) {
	f, err := os.Open(listPath)
	if err != nil {
		return nil, fmt.Errorf("open file pair list: %w", err)
	}
	defer func() { _ = f.Close() }()

	filePairs, err := ParseFilePairList(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", listPath, err)
	}

	dir := filepath.Dir(listPath)
	resolve := func(p string) string {
		if filepath.IsAbs(p) {
			return p
		}
		return filepath.Join(dir, p)
	}

	pairs := make([]Pair, 0, len(filePairs))
	for _, fp := range filePairs {
		ref, err := LoadEventList(resolve(fp.Reference))
		if err != nil {
			return nil, fmt.Errorf("loading reference: %w", err)
		}
		est, err := LoadEventList(resolve(fp.Estimated))
		if err != nil {
			return nil, fmt.Errorf("loading estimate: %w", err)
		}
		pairs = append(pairs, Pair{ID: fileID(fp.Reference), Reference: ref, Estimated: est})
	}
	return pairs, nil
}

// Labels returns the sorted union of the reference labels of all pairs.
func Labels(pairs []Pair) []string {
	var all sedeval.EventList
	for _, p := range pairs {
		all = append(all, p.Reference...)
	}
	return all.Labels()
}
