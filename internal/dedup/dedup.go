// Package dedup removes records that share an identity key, keeping the
// first occurrence and the original order.
package dedup

import (
	"errors"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"

	"sha1link/internal/errs"
	"sha1link/internal/hash"
	"sha1link/internal/link"
	"sha1link/internal/logging"
	"sha1link/internal/streamio"
)

// Report describes one pass over a flat file.
type Report struct {
	Valid      int // lines that decoded
	Distinct   int
	Duplicates int // Valid - Distinct
	Invalid    int // non-blank lines that failed to decode
}

// Records returns recs without later duplicates. recs is not modified.
func Records(recs []link.Record) []link.Record {
	seen := hash.NewKeySet()
	out := make([]link.Record, 0, len(recs))
	for _, r := range recs {
		if seen.Add(r.Key()) {
			out = append(out, r)
		}
	}
	return out
}

// File copies the first line of every distinct record from in to a new
// file at out. Kept lines are written unchanged; blank and invalid lines
// are dropped.
func File(in, out string, log logrus.FieldLogger) (Report, error) {
	if err := streamio.CheckInputOutput(in, out); err != nil {
		return Report{}, err
	}

	w, err := streamio.Create(out)
	if err != nil {
		return Report{}, err
	}

	rep, err := scan(in, log, func(line string) error {
		return w.WriteLine(line)
	})
	if err != nil {
		w.Abort()
		return rep, err
	}

	if err := w.Close(); err != nil {
		w.Abort()
		return rep, err
	}
	return rep, nil
}

// Count reports duplicates and invalid lines in path without writing.
// A file with no valid record fails with errs.ErrEmptyInput.
func Count(path string, log logrus.FieldLogger) (Report, error) {
	if err := streamio.CheckInput(path); err != nil {
		return Report{}, err
	}

	rep, err := scan(path, log, nil)
	if err != nil {
		return rep, err
	}
	if rep.Valid == 0 {
		return rep, fmt.Errorf("%w: %s contains no link records", errs.ErrEmptyInput, path)
	}
	return rep, nil
}

// scan calls keep for the first line of each distinct record.
func scan(path string, log logrus.FieldLogger, keep func(string) error) (Report, error) {
	log = logging.OrDiscard(log)

	r, err := streamio.Open(path)
	if err != nil {
		return Report{}, err
	}
	defer r.Close()

	var rep Report
	seen := hash.NewKeySet()
	for {
		line, err := r.ReadLine()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return rep, err
		}
		if streamio.IsBlank(line) {
			continue
		}

		rec, _, err := link.Parse(line)
		if err != nil {
			rep.Invalid++
			log.WithFields(logrus.Fields{
				"path": path,
				"line": r.LineNumber(),
			}).WithError(err).Warn("skipping invalid line")
			continue
		}
		rep.Valid++

		if !seen.Add(rec.Key()) {
			continue
		}
		if keep != nil {
			if err := keep(line); err != nil {
				return rep, err
			}
		}
	}

	rep.Distinct = seen.Len()
	rep.Duplicates = rep.Valid - rep.Distinct
	return rep, nil
}
