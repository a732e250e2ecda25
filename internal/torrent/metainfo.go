// Package torrent derives the BitTorrent info-hash and magnet URI of a
// metainfo file.
package torrent

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"math/bits"
	"net/url"
	"os"

	"sha1link/internal/errs"
)

const magnetPrefix = "magnet:?xt=urn:btih:"

// InfoHash is the SHA-1 digest of the canonical info dictionary.
type InfoHash [sha1.Size]byte

func (h InfoHash) String() string { return hex.EncodeToString(h[:]) }

// Magnet formats h as magnet:?xt=urn:btih:<hex>.
func (h InfoHash) Magnet() string { return magnetPrefix + h.String() }

// MagnetWithName adds a dn parameter carrying name.
func (h InfoHash) MagnetWithName(name string) string {
	if name == "" {
		return h.Magnet()
	}
	return h.Magnet() + "&dn=" + url.QueryEscape(name)
}

// Metainfo keeps only the info dictionary; announce lists, comments and
// other top-level keys do not affect the hash and are dropped.
type Metainfo struct {
	Info Dict
}

// Parse decodes a metainfo byte stream.
func Parse(data []byte) (*Metainfo, error) {
	v, err := Decode(data)
	if err != nil {
		return nil, err
	}

	top, ok := v.(Dict)
	if !ok {
		return nil, fmt.Errorf("%w: top-level value is %s, not a dictionary", errs.ErrBencode, kindOf(v))
	}

	raw, ok := top["info"]
	if !ok {
		return nil, errs.ErrMissingInfoDict
	}
	info, ok := raw.(Dict)
	if !ok {
		return nil, fmt.Errorf("%w: info is %s", errs.ErrMissingInfoDict, kindOf(raw))
	}

	return &Metainfo{Info: info}, nil
}

// ReadFile parses the metainfo file at path.
func ReadFile(path string) (*Metainfo, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errs.Wrap("read", path, err)
	}
	m, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}

// Hash re-encodes every key of the info dictionary canonically and
// returns its SHA-1.
func (m *Metainfo) Hash() (InfoHash, error) {
	encoded, err := Encode(m.Info)
	if err != nil {
		return InfoHash{}, err
	}
	return sha1.Sum(encoded), nil
}

func (m *Metainfo) Name() string {
	name, _ := m.Info["name"].(string)
	return name
}

func (m *Metainfo) PieceLength() int64 {
	n, _ := m.Info["piece length"].(int64)
	return n
}

func (m *Metainfo) Private() bool {
	n, _ := m.Info["private"].(int64)
	return n == 1
}

// FileCount is 1 for a single-file torrent and 0 when the info dictionary
// carries neither length nor files, as in a v2-only file tree.
func (m *Metainfo) FileCount() int {
	if files, ok := m.Info["files"].(List); ok {
		return len(files)
	}
	if _, ok := m.Info["length"].(int64); ok {
		return 1
	}
	return 0
}

// TotalLength sums the single length or every files[].length. It fails
// when neither is present or well formed; the info-hash does not depend
// on it.
func (m *Metainfo) TotalLength() (uint64, error) {
	files, ok := m.Info["files"].(List)
	if !ok {
		n, ok := m.Info["length"].(int64)
		if !ok || n < 0 {
			return 0, fmt.Errorf("%w: missing or negative length", errs.ErrBencode)
		}
		return uint64(n), nil
	}

	var total, carry uint64
	for i, f := range files {
		fd, ok := f.(Dict)
		if !ok {
			return 0, fmt.Errorf("%w: files[%d] is %s", errs.ErrBencode, i, kindOf(f))
		}
		n, ok := fd["length"].(int64)
		if !ok || n < 0 {
			return 0, fmt.Errorf("%w: files[%d] has missing or negative length", errs.ErrBencode, i)
		}
		total, carry = bits.Add64(total, uint64(n), 0)
		if carry != 0 {
			return 0, errs.ErrOverflow
		}
	}
	return total, nil
}

func kindOf(v Value) string {
	switch v.(type) {
	case int64:
		return "an integer"
	case string:
		return "a string"
	case List:
		return "a list"
	case Dict:
		return "a dictionary"
	default:
		return fmt.Sprintf("%T", v)
	}
}
