// Package summary computes aggregate size statistics over link records.
package summary

import (
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"math/bits"
	"slices"

	"github.com/dustin/go-humanize"
	"github.com/sirupsen/logrus"
	"github.com/txaty/go-merkletree"

	"sha1link/internal/errs"
	"sha1link/internal/hash"
	"sha1link/internal/link"
	"sha1link/internal/logging"
	"sha1link/internal/streamio"
	"sha1link/internal/tree"
)

type Summary struct {
	TotalRecords int
	TotalSize    uint64
	Min          uint64
	Max          uint64
	Median       float64

	// HasFolder is true only when every record carried a directory path.
	HasFolder bool

	// Fingerprint is the merkle root over record identities in order.
	Fingerprint string

	// Skipped counts lines excluded because they failed to decode.
	Skipped int
}

// Compute summarizes sizes. It fails with errs.ErrEmptyInput for no sizes
// and errs.ErrOverflow when the total does not fit in 64 bits.
func Compute(sizes []uint64) (Summary, error) {
	if len(sizes) == 0 {
		return Summary{}, errs.ErrEmptyInput
	}

	var total, carry uint64
	for _, s := range sizes {
		total, carry = bits.Add64(total, s, 0)
		if carry != 0 {
			return Summary{}, fmt.Errorf("%w: %d records", errs.ErrOverflow, len(sizes))
		}
	}

	sorted := slices.Clone(sizes)
	slices.Sort(sorted)

	n := len(sorted)
	var median float64
	if n%2 == 1 {
		median = float64(sorted[n/2])
	} else {
		median = (float64(sorted[n/2-1]) + float64(sorted[n/2])) / 2
	}

	return Summary{
		TotalRecords: n,
		TotalSize:    total,
		Min:          sorted[0],
		Max:          sorted[n-1],
		Median:       median,
	}, nil
}

// Records summarizes recs; hasFolder is passed through.
func Records(recs []link.Record, hasFolder bool) (Summary, error) {
	sizes := make([]uint64, len(recs))
	for i, r := range recs {
		sizes[i] = r.Size
	}

	s, err := Compute(sizes)
	if err != nil {
		return Summary{}, err
	}

	s.HasFolder = hasFolder
	if s.Fingerprint, err = Fingerprint(recs); err != nil {
		return Summary{}, err
	}
	return s, nil
}

// File summarizes the valid lines of a flat file.
func File(path string, log logrus.FieldLogger) (Summary, error) {
	log = logging.OrDiscard(log)

	r, err := streamio.Open(path)
	if err != nil {
		return Summary{}, err
	}
	defer r.Close()

	var (
		recs      []link.Record
		skipped   int
		hasFolder = true
	)
	for {
		line, err := r.ReadLine()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return Summary{}, err
		}
		if streamio.IsBlank(line) {
			continue
		}

		rec, segs, err := link.Parse(line)
		if err != nil {
			skipped++
			log.WithField("line", r.LineNumber()).WithError(err).Warn("skipping invalid line")
			continue
		}
		if len(segs) == 0 {
			hasFolder = false
		}
		recs = append(recs, rec)
	}

	s, err := Records(recs, hasFolder)
	if err != nil {
		return Summary{}, fmt.Errorf("%s: %w", path, err)
	}
	s.Skipped = skipped
	return s, nil
}

// Tree summarizes every file in n. Tree files always carry a path.
func Tree(n *tree.Node) (Summary, error) {
	recs := make([]link.Record, 0, n.Count())
	for rec := range n.All() {
		recs = append(recs, rec)
	}
	return Records(recs, true)
}

type leaf []byte

func (l leaf) Serialize() ([]byte, error) { return l, nil }

// Fingerprint returns the hex merkle root of the records' identity keys in
// order, or "" for no records.
func Fingerprint(recs []link.Record) (string, error) {
	switch len(recs) {
	case 0:
		return "", nil
	case 1:
		sum, err := hash.XXHashFunc([]byte(recs[0].Key().String()))
		if err != nil {
			return "", err
		}
		return hex.EncodeToString(sum), nil
	}

	blocks := make([]merkletree.DataBlock, len(recs))
	for i, r := range recs {
		blocks[i] = leaf(r.Key().String())
	}

	mt, err := merkletree.New(&merkletree.Config{
		HashFunc: hash.XXHashFunc,
		Mode:     merkletree.ModeTreeBuild,
	}, blocks)
	if err != nil {
		return "", fmt.Errorf("failed to build fingerprint tree: %w", err)
	}
	return hex.EncodeToString(mt.Root), nil
}

func (s Summary) String() string {
	return fmt.Sprintf("%d files, %s\nmin %s, max %s, median %s",
		s.TotalRecords,
		humanize.IBytes(s.TotalSize),
		humanize.IBytes(s.Min),
		humanize.IBytes(s.Max),
		humanize.IBytes(uint64(s.Median)),
	)
}
