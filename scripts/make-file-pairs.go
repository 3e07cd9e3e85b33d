//go:build ignore

// Build a file pair list for sed-eval/sed-bench from two annotation
// directories. Files are paired by base name; files present on one side only
// are reported and skipped.
// Usage: go run ./scripts/make-file-pairs.go -ref testdata/reference -est testdata/estimated -o testdata/pairs.txt
package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

func main() {
	refDir := flag.String("ref", "testdata/reference", "Directory of reference event lists")
	estDir := flag.String("est", "testdata/estimated", "Directory of estimated event lists")
	outPath := flag.String("o", "testdata/pairs.txt", "Output file pair list")
	ext := flag.String("ext", ".txt", "Annotation file extension")
	flag.Parse()

	refs, err := listFiles(*refDir, *ext)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading %s: %v\n", *refDir, err)
		os.Exit(1)
	}
	ests, err := listFiles(*estDir, *ext)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading %s: %v\n", *estDir, err)
		os.Exit(1)
	}

	outDir := filepath.Dir(*outPath)
	var lines []string
	for name, ref := range refs {
		est, ok := ests[name]
		if !ok {
			fmt.Fprintf(os.Stderr, "Skipping %s: no estimate\n", name)
			continue
		}
		lines = append(lines, relative(outDir, ref)+"\t"+relative(outDir, est))
	}
	for name := range ests {
		if _, ok := refs[name]; !ok {
			fmt.Fprintf(os.Stderr, "Skipping %s: no reference\n", name)
		}
	}
	sort.Strings(lines)

	if err := writeLines(*outPath, lines); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing %s: %v\n", *outPath, err)
		os.Exit(1)
	}
	fmt.Printf("Wrote %d pairs to %s\n", len(lines), *outPath)
}

// listFiles maps base names without extension to paths.
func listFiles(dir, ext string) (map[string]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	files := make(map[string]string)
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ext) {
			continue
		}
		files[strings.TrimSuffix(e.Name(), ext)] = filepath.Join(dir, e.Name())
	}
	return files, nil
}

// relative makes path relative to base when possible, so the list can move
// together with the annotation directories.
func relative(base, path string) string {
	rel, err := filepath.Rel(base, path)
	if err != nil {
		return path
	}
	return filepath.ToSlash(rel)
}

func writeLines(path string, lines []string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	w := bufio.NewWriter(f)
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return w.Flush()
}
