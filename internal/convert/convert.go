// Package convert exposes the file-level operations used by the command
// line and any other caller: conversion between the flat and tree forms,
// validation, deduplication, summaries and torrent hashing. Every call is
// independent; concurrent calls must use distinct output paths.
package convert

import (
	"errors"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"

	"sha1link/internal/errs"
	"sha1link/internal/link"
	"sha1link/internal/logging"
	"sha1link/internal/streamio"
	"sha1link/internal/tree"
	"sha1link/internal/validate"
)

type Options struct {
	// Scheme prefixes canonical flat lines. Defaults to link.DefaultScheme.
	Scheme string
	// WrapperLabel names the synthetic root of multi-root trees.
	WrapperLabel string
	// MaxFirstLine is the validator's first-line byte ceiling.
	MaxFirstLine int
	Log          logrus.FieldLogger
}

func (o Options) withDefaults() Options {
	if o.Scheme == "" {
		o.Scheme = link.DefaultScheme
	}
	if o.WrapperLabel == "" {
		o.WrapperLabel = tree.DefaultWrapperLabel
	}
	if o.MaxFirstLine <= 0 {
		o.MaxFirstLine = validate.DefaultMaxLineBytes
	}
	o.Log = logging.OrDiscard(o.Log)
	return o
}

// Stats counts records written and lines skipped by a conversion.
type Stats struct {
	Records int
	Skipped int
}

// Validate runs the pre-flight check on a candidate flat file.
func Validate(in string, opts Options) error {
	opts = opts.withDefaults()
	return validate.File(in, opts.MaxFirstLine)
}

// LinesToTree converts a flat file into a tree document at out. The input
// must pass Validate first; individual bad lines are skipped and counted.
func LinesToTree(in, out string, opts Options) (Stats, error) {
	opts = opts.withDefaults()
	if err := streamio.CheckInputOutput(in, out); err != nil {
		return Stats{}, err
	}
	if err := validate.File(in, opts.MaxFirstLine); err != nil {
		return Stats{}, err
	}

	root, stats, err := buildFromFile(in, opts)
	if err != nil {
		return stats, err
	}

	if err := tree.Save(root, out); err != nil {
		return stats, err
	}
	opts.Log.WithFields(logrus.Fields{
		"input":   in,
		"output":  out,
		"records": stats.Records,
		"skipped": stats.Skipped,
	}).Debug("converted lines to tree")
	return stats, nil
}

func buildFromFile(in string, opts Options) (*tree.Node, Stats, error) {
	r, err := streamio.Open(in)
	if err != nil {
		return nil, Stats{}, err
	}
	defer r.Close()

	b := tree.NewBuilder(opts.WrapperLabel, opts.Log.WithField("path", in))
	for {
		line, err := r.ReadLine()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, Stats{}, err
		}
		if streamio.IsBlank(line) {
			continue
		}
		_ = b.AddLine(line)
	}

	stats := Stats{Records: b.Added(), Skipped: b.Skipped()}
	root, err := b.Result()
	if err != nil {
		return nil, stats, err
	}
	return root, stats, nil
}

// TreeToLines flattens a tree document into a flat file at out, one line
// per file with its full directory path.
func TreeToLines(in, out string, opts Options) (Stats, error) {
	opts = opts.withDefaults()
	if err := streamio.CheckInputOutput(in, out); err != nil {
		return Stats{}, err
	}

	root, skipped, err := tree.Load(in, opts.Log)
	if err != nil {
		return Stats{}, err
	}
	if root.Count() == 0 {
		return Stats{Skipped: skipped}, fmt.Errorf("%w: %s has no files", errs.ErrEmptyInput, in)
	}

	n, err := writeNode(root, out, opts.Scheme)
	if err != nil {
		return Stats{}, err
	}
	return Stats{Records: n, Skipped: skipped}, nil
}

func writeNode(root *tree.Node, out, scheme string) (int, error) {
	w, err := streamio.Create(out)
	if err != nil {
		return 0, err
	}

	n := 0
	for rec, path := range root.All() {
		if err := w.WriteLine(rec.LineWithPath(scheme, path)); err != nil {
			w.Abort()
			return 0, err
		}
		n++
	}

	if err := w.Close(); err != nil {
		w.Abort()
		return 0, err
	}
	return n, nil
}

// StripDirs rewrites a flat file as canonical four-field lines, dropping
// directory paths.
func StripDirs(in, out string, opts Options) (Stats, error) {
	opts = opts.withDefaults()
	if err := streamio.CheckInputOutput(in, out); err != nil {
		return Stats{}, err
	}

	r, err := streamio.Open(in)
	if err != nil {
		return Stats{}, err
	}
	defer r.Close()

	w, err := streamio.Create(out)
	if err != nil {
		return Stats{}, err
	}

	var stats Stats
	for {
		line, err := r.ReadLine()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			w.Abort()
			return Stats{}, err
		}
		if streamio.IsBlank(line) {
			continue
		}

		rec, _, err := link.Parse(line)
		if err != nil {
			stats.Skipped++
			opts.Log.WithFields(logrus.Fields{"path": in, "line": r.LineNumber()}).WithError(err).Warn("skipping invalid line")
			continue
		}
		if err := w.WriteLine(rec.Line(opts.Scheme)); err != nil {
			w.Abort()
			return Stats{}, err
		}
		stats.Records++
	}

	if stats.Records == 0 {
		w.Abort()
		return stats, fmt.Errorf("%w: %s has no valid lines", errs.ErrEmptyInput, in)
	}
	if err := w.Close(); err != nil {
		w.Abort()
		return Stats{}, err
	}
	return stats, nil
}
