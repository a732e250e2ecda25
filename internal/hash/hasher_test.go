package hash

import (
	"encoding/hex"
	"strings"
	"testing"

	"sha1link/internal/link"
)

var (
	hashA = strings.Repeat("a", 40)
	hashB = strings.Repeat("b", 40)
)

func TestKey_Deterministic(t *testing.T) {
	k := link.Key{Size: 10, ContentHash: hashA, BlockHash: hashB}

	if Key(k) != Key(k) {
		t.Error("Key should be deterministic")
	}

	other := link.Key{Size: 11, ContentHash: hashA, BlockHash: hashB}
	if Key(k) == Key(other) {
		t.Error("Different keys should hash differently")
	}
}

func TestKey_FieldBoundaries(t *testing.T) {
	// "1" + "1aaa..." must not collide with "11" + "aaa..." once joined.
	a := link.Key{Size: 1, ContentHash: "1" + hashA[1:], BlockHash: hashB}
	b := link.Key{Size: 11, ContentHash: hashA[1:] + "a", BlockHash: hashB}

	if Key(a) == Key(b) {
		t.Error("Field separator should keep adjacent fields apart")
	}
}

func TestKeySet(t *testing.T) {
	s := NewKeySet()
	k1 := link.Key{Size: 1, ContentHash: hashA, BlockHash: hashB}
	k2 := link.Key{Size: 2, ContentHash: hashA, BlockHash: hashB}

	if !s.Add(k1) {
		t.Error("First Add should report insertion")
	}
	if s.Add(k1) {
		t.Error("Second Add of the same key should report presence")
	}
	if !s.Add(k2) {
		t.Error("Distinct key should be inserted")
	}
	if !s.Contains(k2) || s.Len() != 2 {
		t.Errorf("Expected 2 keys, got %d", s.Len())
	}
}

func TestXXHashFunc(t *testing.T) {
	data := []byte("test data")

	hashBytes, err := XXHashFunc(data)
	if err != nil {
		t.Fatalf("XXHashFunc failed: %v", err)
	}

	if len(hashBytes) != 8 {
		t.Errorf("Expected 8 bytes, got %d", len(hashBytes))
	}

	// Test consistency - same input should produce same output
	hashBytes2, err := XXHashFunc(data)
	if err != nil {
		t.Fatalf("XXHashFunc failed on second call: %v", err)
	}

	if hex.EncodeToString(hashBytes) != hex.EncodeToString(hashBytes2) {
		t.Error("XXHashFunc should be deterministic")
	}
}

func TestXXHashFunc_EmptyData(t *testing.T) {
	hashBytes, err := XXHashFunc([]byte{})
	if err != nil {
		t.Fatalf("XXHashFunc failed: %v", err)
	}

	if len(hashBytes) != 8 {
		t.Errorf("Expected 8 bytes, got %d", len(hashBytes))
	}
}
