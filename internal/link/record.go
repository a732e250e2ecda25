// Package link decodes and encodes content-addressed link records:
//
//	<scheme>://<name>|<size>|<content hash>|<block hash>[|<dir_1>|...|<dir_n>]
//
// The scheme is present on canonical lines and absent from the embedded
// form stored inside tree documents.
package link

import (
	"fmt"
	"strconv"
	"strings"

	"sha1link/internal/errs"
)

const (
	DefaultScheme = "115://"
	Delimiter     = "|"
	HashLen       = 40

	// minFields is name, size, content hash and block hash.
	minFields = 4
)

type Record struct {
	Name        string
	Size        uint64
	ContentHash string
	BlockHash   string
}

// Key is the identity of a record. Name and directory path are not part of it.
type Key struct {
	Size        uint64
	ContentHash string
	BlockHash   string
}

// Key returns the identity key with hashes lower-cased, since hex is
// compared case-insensitively.
func (r Record) Key() Key {
	return Key{
		Size:        r.Size,
		ContentHash: strings.ToLower(r.ContentHash),
		BlockHash:   strings.ToLower(r.BlockHash),
	}
}

func (k Key) String() string {
	return strconv.FormatUint(k.Size, 10) + k.ContentHash + k.BlockHash
}

// Parse decodes one flat line into a record and its trailing directory
// segments, outermost first. A leading scheme is removed from the name.
// Failures wrap errs.ErrMalformedRecord.
func Parse(line string) (Record, []string, error) {
	return parse(line, true)
}

// ParseEmbedded decodes the scheme-less form stored in tree documents, so
// the name is kept as written. Anything after the fourth field is ignored.
func ParseEmbedded(s string) (Record, error) {
	rec, _, err := parse(s, false)
	return rec, err
}

func parse(line string, stripScheme bool) (Record, []string, error) {
	fields := strings.Split(line, Delimiter)
	if len(fields) < minFields {
		return Record{}, nil, fmt.Errorf("%w: %d fields, need at least %d", errs.ErrMalformedRecord, len(fields), minFields)
	}

	size, err := strconv.ParseUint(fields[1], 10, 64)
	if err != nil {
		return Record{}, nil, fmt.Errorf("%w: size %q is not a non-negative 64-bit integer", errs.ErrMalformedRecord, fields[1])
	}

	if !IsHash(fields[2]) {
		return Record{}, nil, fmt.Errorf("%w: content hash %q is not %d hex characters", errs.ErrMalformedRecord, fields[2], HashLen)
	}
	if !IsHash(fields[3]) {
		return Record{}, nil, fmt.Errorf("%w: block hash %q is not %d hex characters", errs.ErrMalformedRecord, fields[3], HashLen)
	}

	name := fields[0]
	if stripScheme {
		name = StripScheme(name)
	}
	rec := Record{
		Name:        cleanName(name),
		Size:        size,
		ContentHash: fields[2],
		BlockHash:   fields[3],
	}

	var segments []string
	if len(fields) > minFields {
		segments = fields[minFields:]
	}
	return rec, segments, nil
}

// IsHash reports whether s is exactly HashLen hex digits of either case.
func IsHash(s string) bool {
	if len(s) != HashLen {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= '0' && c <= '9', c >= 'a' && c <= 'f', c >= 'A' && c <= 'F':
		default:
			return false
		}
	}
	return true
}

// Embedded encodes r without any scheme, as stored in tree documents.
// The scheme was removed from Name at decode time; whatever remains is
// part of the name.
func (r Record) Embedded() string {
	return strings.Join([]string{
		r.Name,
		strconv.FormatUint(r.Size, 10),
		r.ContentHash,
		r.BlockHash,
	}, Delimiter)
}

// Line encodes r in canonical flat form with scheme prefixed.
func (r Record) Line(scheme string) string {
	return scheme + r.Embedded()
}

// LineWithPath encodes r in flat form followed by its directory segments.
func (r Record) LineWithPath(scheme string, path []string) string {
	line := r.Line(scheme)
	if len(path) == 0 {
		return line
	}
	return line + Delimiter + strings.Join(path, Delimiter)
}

// StripScheme removes a leading "<scheme>://" prefix from name, if any.
func StripScheme(name string) string {
	i := strings.Index(name, "://")
	if i <= 0 || !isSchemeName(name[:i]) {
		return name
	}
	return name[i+len("://"):]
}

func isSchemeName(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		case i > 0 && (c == '+' || c == '-' || c == '.'):
		default:
			return false
		}
	}
	return true
}

func cleanName(name string) string {
	return strings.NewReplacer("\r", "", "\n", "").Replace(name)
}
