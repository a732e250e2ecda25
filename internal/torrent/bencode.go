package torrent

import (
	"bytes"
	"fmt"
	"slices"
	"strconv"

	"github.com/jackpal/bencode-go"

	"sha1link/internal/errs"
)

// Value is one decoded bencode item: int64, string, List or Dict.
type Value = any

type List = []any

// Dict maps raw key bytes to values. Go strings compare byte-wise, so
// sorted keys give the order bencode requires.
type Dict = map[string]any

// maxDepth bounds nesting so hostile input cannot exhaust the stack.
const maxDepth = 256

// Decode parses exactly one bencoded value spanning all of data. The
// input is checked strictly first: canonical integers and lengths, no
// duplicate keys, bounded nesting and no trailing bytes. Errors wrap
// errs.ErrBencode.
func Decode(data []byte) (Value, error) {
	if err := check(data); err != nil {
		return nil, err
	}
	v, err := bencode.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrBencode, err)
	}
	return v, nil
}

// Encode returns the canonical encoding of v: dictionary keys in
// ascending raw byte order.
func Encode(v Value) ([]byte, error) {
	var buf bytes.Buffer
	if err := bencode.Marshal(&buf, v); err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrBencode, err)
	}
	return buf.Bytes(), nil
}

// scanner walks bencode without building values.
type scanner struct {
	data  []byte
	pos   int
	depth int
}

func check(data []byte) error {
	s := &scanner{data: data}
	if err := s.value(); err != nil {
		return err
	}
	if s.pos != len(s.data) {
		return s.errorf("%d trailing bytes", len(s.data)-s.pos)
	}
	return nil
}

func (s *scanner) errorf(format string, args ...any) error {
	return fmt.Errorf("%w at offset %d: %s", errs.ErrBencode, s.pos, fmt.Sprintf(format, args...))
}

func (s *scanner) value() error {
	if s.pos >= len(s.data) {
		return s.errorf("unexpected end of input")
	}

	switch c := s.data[s.pos]; {
	case c == 'i':
		return s.integer()
	case c >= '0' && c <= '9':
		_, err := s.str()
		return err
	case c == 'l':
		return s.list()
	case c == 'd':
		return s.dict()
	default:
		return s.errorf("unexpected byte %q", c)
	}
}

func (s *scanner) integer() error {
	s.pos++ // 'i'
	end := slices.Index(s.data[s.pos:], 'e')
	if end < 0 {
		return s.errorf("unterminated integer")
	}
	digits := string(s.data[s.pos : s.pos+end])

	if !canonicalInt(digits) {
		return s.errorf("invalid integer %q", digits)
	}
	if _, err := strconv.ParseInt(digits, 10, 64); err != nil {
		return s.errorf("integer %q out of range", digits)
	}

	s.pos += end + 1
	return nil
}

// canonicalInt rejects empty, "-0", leading zeros and stray characters.
func canonicalInt(s string) bool {
	digits := s
	if len(digits) > 0 && digits[0] == '-' {
		digits = digits[1:]
		if digits == "0" {
			return false
		}
	}
	if digits == "" || (len(digits) > 1 && digits[0] == '0') {
		return false
	}
	for i := 0; i < len(digits); i++ {
		if digits[i] < '0' || digits[i] > '9' {
			return false
		}
	}
	return true
}

func (s *scanner) str() (string, error) {
	colon := slices.Index(s.data[s.pos:], ':')
	if colon < 0 {
		return "", s.errorf("unterminated string length")
	}
	digits := string(s.data[s.pos : s.pos+colon])
	if len(digits) > 1 && digits[0] == '0' {
		return "", s.errorf("invalid string length %q", digits)
	}
	n, err := strconv.ParseUint(digits, 10, 63)
	if err != nil {
		return "", s.errorf("invalid string length %q", digits)
	}

	start := s.pos + colon + 1
	if n > uint64(len(s.data)-start) {
		return "", s.errorf("string of %d bytes runs past end of input", n)
	}

	s.pos = start + int(n)
	return string(s.data[start:s.pos]), nil
}

func (s *scanner) enter() error {
	s.depth++
	if s.depth > maxDepth {
		return s.errorf("nesting deeper than %d", maxDepth)
	}
	s.pos++ // 'l' or 'd'
	return nil
}

// end consumes a closing 'e' and reports whether it found one.
func (s *scanner) end(what string) (bool, error) {
	if s.pos >= len(s.data) {
		return false, s.errorf("unterminated %s", what)
	}
	if s.data[s.pos] != 'e' {
		return false, nil
	}
	s.pos++
	s.depth--
	return true, nil
}

func (s *scanner) list() error {
	if err := s.enter(); err != nil {
		return err
	}
	for {
		if done, err := s.end("list"); done || err != nil {
			return err
		}
		if err := s.value(); err != nil {
			return err
		}
	}
}

func (s *scanner) dict() error {
	if err := s.enter(); err != nil {
		return err
	}
	seen := make(map[string]bool)
	for {
		if done, err := s.end("dictionary"); done || err != nil {
			return err
		}
		if c := s.data[s.pos]; c < '0' || c > '9' {
			return s.errorf("dictionary key must be a string")
		}
		key, err := s.str()
		if err != nil {
			return err
		}
		if seen[key] {
			return s.errorf("duplicate key %q", key)
		}
		seen[key] = true
		if err := s.value(); err != nil {
			return err
		}
	}
}
