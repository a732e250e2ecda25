// Package validate is a cheap pre-flight check that a file looks like a
// flat link list before it is processed line by line.
package validate

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"sha1link/internal/errs"
	"sha1link/internal/link"
	"sha1link/internal/streamio"
)

// DefaultMaxLineBytes is the first-line ceiling above which input is
// treated as binary rather than text.
const DefaultMaxLineBytes = 3000

// File inspects only the first non-blank line of path, reading no more
// than about maxLineBytes of it. maxLineBytes <= 0 selects
// DefaultMaxLineBytes.
func File(path string, maxLineBytes int) error {
	if maxLineBytes <= 0 {
		maxLineBytes = DefaultMaxLineBytes
	}

	r, err := streamio.Open(path)
	if err != nil {
		return err
	}
	defer r.Close()

	for {
		line, long, err := r.ReadLineMax(maxLineBytes)
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("%w: %s has no content", errs.ErrInvalidFormat, path)
		}
		if err != nil {
			return err
		}
		if long {
			return fmt.Errorf("%w: line %d is longer than %d bytes", errs.ErrInvalidFormat, r.LineNumber(), maxLineBytes)
		}
		if streamio.IsBlank(line) {
			continue
		}
		return Line(line, maxLineBytes)
	}
}

// Line applies the first-line checks to a single line.
func Line(line string, maxLineBytes int) error {
	if maxLineBytes <= 0 {
		maxLineBytes = DefaultMaxLineBytes
	}

	if len(line) > maxLineBytes {
		return fmt.Errorf("%w: first line is %d bytes, limit %d", errs.ErrInvalidFormat, len(line), maxLineBytes)
	}

	if strings.HasPrefix(line, "{") || strings.HasPrefix(line, "[") {
		return fmt.Errorf("%w: content looks like a tree document", errs.ErrInvalidFormat)
	}

	if n := strings.Count(line, link.Delimiter) + 1; n < 4 {
		return fmt.Errorf("%w: first line has %d fields", errs.ErrInvalidFormat, n)
	}

	return nil
}
