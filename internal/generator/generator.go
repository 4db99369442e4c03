// Package generator produces the random text files the pipeline uploads.
package generator

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"os"
	"path/filepath"

	"github.com/andresuchdata/filedrop/internal/domain"
	"github.com/google/uuid"
)

// ErrInvalidBounds is returned when the line bounds do not satisfy 0 < min <= max.
var ErrInvalidBounds = errors.New("line bounds must satisfy 0 < min <= max")

const (
	DefaultMinLines = 100
	DefaultMaxLines = 1000

	linePrefix = "Random line: "
)

// LineCount returns a uniformly random count in [min, max].
func LineCount(rng *rand.Rand, min, max int) (int, error) {
	if min <= 0 || min > max {
		return 0, fmt.Errorf("%w: got min=%d max=%d", ErrInvalidBounds, min, max)
	}
	return min + rng.Intn(max-min+1), nil
}

// NewName returns a UUID-derived file name read from r.
func NewName(r io.Reader) (string, error) {
	id, err := uuid.NewRandomFromReader(r)
	if err != nil {
		return "", fmt.Errorf("failed to generate identifier: %w", err)
	}
	return id.String() + domain.FileExtension, nil
}

// WriteLines writes n random lines to w.
func WriteLines(w io.Writer, rng *rand.Rand, n int) error {
	bw := bufio.NewWriter(w)
	for i := 0; i < n; i++ {
		if _, err := fmt.Fprintf(bw, "%s%v\n", linePrefix, rng.Float64()); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// Generate creates a file with a random name and line count under dir.
func Generate(rng *rand.Rand, dir string, min, max int) (domain.GeneratedFile, error) {
	lines, err := LineCount(rng, min, max)
	if err != nil {
		return domain.GeneratedFile{}, err
	}

	name, err := NewName(rng)
	if err != nil {
		return domain.GeneratedFile{}, err
	}

	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	if err != nil {
		return domain.GeneratedFile{}, fmt.Errorf("failed to create %s: %w", path, err)
	}

	if err := WriteLines(f, rng, lines); err != nil {
		f.Close()
		os.Remove(path)
		return domain.GeneratedFile{}, fmt.Errorf("failed writing %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return domain.GeneratedFile{}, fmt.Errorf("failed closing %s: %w", path, err)
	}

	return domain.GeneratedFile{Name: name, Lines: lines, Path: path}, nil
}
