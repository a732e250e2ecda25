package convert

import (
	"errors"
	"fmt"
	"io"

	"sha1link/internal/compare"
	"sha1link/internal/dedup"
	"sha1link/internal/errs"
	"sha1link/internal/extract"
	"sha1link/internal/link"
	"sha1link/internal/streamio"
	"sha1link/internal/summary"
	"sha1link/internal/torrent"
	"sha1link/internal/tree"
	"sha1link/internal/walker"
)

// Dedup writes in to out keeping the first line of every distinct record.
func Dedup(in, out string, opts Options) (dedup.Report, error) {
	opts = opts.withDefaults()
	return dedup.File(in, out, opts.Log)
}

// CountDuplicates reports duplicate and invalid lines without writing.
func CountDuplicates(in string, opts Options) (dedup.Report, error) {
	opts = opts.withDefaults()
	return dedup.Count(in, opts.Log)
}

// SummarizeLines summarizes a flat file.
func SummarizeLines(in string, opts Options) (summary.Summary, error) {
	opts = opts.withDefaults()
	if err := streamio.CheckInput(in); err != nil {
		return summary.Summary{}, err
	}
	return summary.File(in, opts.Log)
}

// SummarizeTree summarizes a tree document.
func SummarizeTree(in string, opts Options) (summary.Summary, error) {
	opts = opts.withDefaults()
	root, skipped, err := tree.Load(in, opts.Log)
	if err != nil {
		return summary.Summary{}, err
	}
	s, err := summary.Tree(root)
	if err != nil {
		return summary.Summary{}, fmt.Errorf("%s: %w", in, err)
	}
	s.Skipped = skipped
	return s, nil
}

// TorrentInfo is what a metainfo file yields besides its raw fields.
type TorrentInfo struct {
	Hash        torrent.InfoHash
	URI         string
	Name        string
	TotalLength uint64
	Files       int
}

// Torrent derives the info-hash and magnet URI of a metainfo file. Name,
// size and file count are informational: when the info dictionary does
// not describe them they stay zero and only a debug line is logged.
func Torrent(path string, opts Options) (TorrentInfo, error) {
	opts = opts.withDefaults()

	m, err := torrent.ReadFile(path)
	if err != nil {
		return TorrentInfo{}, err
	}

	h, err := m.Hash()
	if err != nil {
		return TorrentInfo{}, fmt.Errorf("%s: %w", path, err)
	}

	info := TorrentInfo{
		Hash:  h,
		URI:   h.Magnet(),
		Name:  m.Name(),
		Files: m.FileCount(),
	}
	if total, err := m.TotalLength(); err != nil {
		opts.Log.WithField("path", path).WithError(err).Debug("torrent size unavailable")
	} else {
		info.TotalLength = total
	}
	return info, nil
}

// ExtractMagnets writes every magnet link found in in to out.
func ExtractMagnets(in, out string) (int, error) {
	return extract.MagnetsFile(in, out)
}

// ExtractED2K writes every ed2k link found in in to out.
func ExtractED2K(in, out string) (int, error) {
	return extract.ED2KFile(in, out)
}

// Diff compares the records of two collections, each either a flat file
// or a tree document (chosen by extension, flat otherwise).
func Diff(oldPath, newPath string, opts Options) (*compare.CompareResult, error) {
	opts = opts.withDefaults()

	oldRecs, err := readRecords(oldPath, opts)
	if err != nil {
		return nil, err
	}
	newRecs, err := readRecords(newPath, opts)
	if err != nil {
		return nil, err
	}
	return compare.Compare(oldRecs, newRecs), nil
}

func readRecords(path string, opts Options) ([]link.Record, error) {
	if format, _ := walker.FormatOf(path); format == walker.Tree {
		root, _, err := tree.Load(path, opts.Log)
		if err != nil {
			return nil, err
		}
		recs := make([]link.Record, 0, root.Count())
		for rec := range root.All() {
			recs = append(recs, rec)
		}
		return recs, nil
	}

	r, err := streamio.Open(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	var recs []link.Record
	for {
		line, err := r.ReadLine()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		if streamio.IsBlank(line) {
			continue
		}
		rec, _, err := link.Parse(line)
		if err != nil {
			opts.Log.WithField("path", path).WithField("line", r.LineNumber()).WithError(err).Warn("skipping invalid line")
			continue
		}
		recs = append(recs, rec)
	}
	if len(recs) == 0 {
		return nil, fmt.Errorf("%w: %s", errs.ErrEmptyInput, path)
	}
	return recs, nil
}
