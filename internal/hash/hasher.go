package hash

import (
	"encoding/binary"
	"strconv"

	"github.com/cespare/xxhash/v2"

	"sha1link/internal/link"
)

// Key returns a 64-bit xxHash of a record identity. Callers bucket on it
// and still compare full keys, so collisions never merge distinct records.
func Key(k link.Key) uint64 {
	d := xxhash.New()
	var buf [20]byte
	d.Write(strconv.AppendUint(buf[:0], k.Size, 10))
	d.Write([]byte{'|'})
	d.WriteString(k.ContentHash)
	d.Write([]byte{'|'})
	d.WriteString(k.BlockHash)
	return d.Sum64()
}

// XXHashFunc is the go-merkletree hash function used for collection
// fingerprints. The digest is the big-endian 8-byte xxHash64.
func XXHashFunc(data []byte) ([]byte, error) {
	sum := xxhash.Sum64(data)
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, sum)
	return buf, nil
}

// KeySet is a set of record identities.
type KeySet struct {
	buckets map[uint64][]link.Key
	n       int
}

func NewKeySet() *KeySet {
	return &KeySet{buckets: make(map[uint64][]link.Key)}
}

// Add inserts k and reports whether it was absent.
func (s *KeySet) Add(k link.Key) bool {
	h := Key(k)
	for _, existing := range s.buckets[h] {
		if existing == k {
			return false
		}
	}
	s.buckets[h] = append(s.buckets[h], k)
	s.n++
	return true
}

func (s *KeySet) Contains(k link.Key) bool {
	for _, existing := range s.buckets[Key(k)] {
		if existing == k {
			return true
		}
	}
	return false
}

func (s *KeySet) Len() int { return s.n }
