package tree

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"sha1link/internal/errs"
	"sha1link/internal/link"
	"sha1link/internal/logging"
	"sha1link/internal/streamio"
)

// DefaultWrapperLabel names the synthetic root created when records do not
// share a single top-level directory.
const DefaultWrapperLabel = "merged"

// Builder folds flat records into a tree. Records are attached top-down
// by exact label match; nothing is sorted.
type Builder struct {
	wrapperLabel string
	log          logrus.FieldLogger

	// top holds root-level directories and files that carried no path.
	top Node

	added   int
	skipped int
}

// NewBuilder returns a Builder. An empty wrapperLabel selects
// DefaultWrapperLabel; a nil log discards warnings.
func NewBuilder(wrapperLabel string, log logrus.FieldLogger) *Builder {
	if wrapperLabel == "" {
		wrapperLabel = DefaultWrapperLabel
	}
	return &Builder{wrapperLabel: wrapperLabel, log: logging.OrDiscard(log)}
}

// Add attaches rec under the directory chain path, outermost first.
func (b *Builder) Add(rec link.Record, path []string) {
	node := &b.top
	for _, label := range path {
		node = node.Child(label)
	}
	node.Files = append(node.Files, rec)
	b.added++
}

// AddLine decodes one flat line and attaches it. A malformed line is
// logged, counted and returned; the builder stays usable.
func (b *Builder) AddLine(line string) error {
	rec, path, err := link.Parse(line)
	if err != nil {
		b.skipped++
		b.log.WithError(err).WithField("text", line).Warn("skipping invalid line")
		return err
	}
	b.Add(rec, path)
	return nil
}

// Added is the number of records attached so far.
func (b *Builder) Added() int { return b.added }

// Skipped is the number of lines AddLine rejected.
func (b *Builder) Skipped() int { return b.skipped }

// Result returns the single root directory, or a wrapper node holding
// every root and any path-less files when there is more than one.
func (b *Builder) Result() (*Node, error) {
	if b.added == 0 {
		return nil, fmt.Errorf("%w: %d lines skipped", errs.ErrEmptyInput, b.skipped)
	}

	if len(b.top.Files) == 0 && len(b.top.Children) == 1 {
		return b.top.Children[0], nil
	}

	return &Node{
		Label:    b.wrapperLabel,
		Files:    b.top.Files,
		Children: b.top.Children,
	}, nil
}

// Build runs a Builder over lines, skipping blank ones.
func Build(lines []string, wrapperLabel string, log logrus.FieldLogger) (*Node, error) {
	b := NewBuilder(wrapperLabel, log)
	for _, line := range lines {
		if streamio.IsBlank(line) {
			continue
		}
		_ = b.AddLine(line)
	}
	return b.Result()
}
