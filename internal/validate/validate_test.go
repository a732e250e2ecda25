package validate

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"sha1link/internal/errs"
)

var (
	hashA = strings.Repeat("a", 40)
	hashB = strings.Repeat("b", 40)
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "input.txt")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to create test file: %v", err)
	}
	return path
}

func TestFile_FourFieldsPass(t *testing.T) {
	path := writeFile(t, "115://a.txt|100|"+hashA+"|"+hashB+"\n")

	if err := File(path, 0); err != nil {
		t.Errorf("Expected valid line to pass, got %v", err)
	}
}

func TestFile_ThreeFieldsFail(t *testing.T) {
	path := writeFile(t, "115://a.txt|100|"+hashA+"\n")

	if err := File(path, 0); !errors.Is(err, errs.ErrInvalidFormat) {
		t.Errorf("Expected ErrInvalidFormat, got %v", err)
	}
}

func TestFile_DocumentRejected(t *testing.T) {
	for _, prefix := range []string{"{", "["} {
		path := writeFile(t, prefix+"a|b|c|d|e|f\n")
		if err := File(path, 0); !errors.Is(err, errs.ErrInvalidFormat) {
			t.Errorf("Line starting with %q: expected ErrInvalidFormat, got %v", prefix, err)
		}
	}
}

func TestFile_SkipsLeadingBlankLines(t *testing.T) {
	path := writeFile(t, "\xef\xbb\xbf\n   \n115://a.txt|1|"+hashA+"|"+hashB+"\n")

	if err := File(path, 0); err != nil {
		t.Errorf("Expected leading blank lines to be skipped, got %v", err)
	}
}

func TestFile_OversizedFirstLine(t *testing.T) {
	line := strings.Repeat("x", 100) + "|1|" + hashA + "|" + hashB
	path := writeFile(t, line)

	if err := File(path, 50); !errors.Is(err, errs.ErrInvalidFormat) {
		t.Errorf("Expected ErrInvalidFormat for oversized line, got %v", err)
	}
	if err := File(path, 0); err != nil {
		t.Errorf("Line under default ceiling should pass, got %v", err)
	}
}

func TestFile_BinaryWithoutNewline(t *testing.T) {
	path := writeFile(t, strings.Repeat("\x00\x01", 512*1024))

	if err := File(path, 0); !errors.Is(err, errs.ErrInvalidFormat) {
		t.Errorf("Expected ErrInvalidFormat for binary input, got %v", err)
	}
}

func TestFile_Empty(t *testing.T) {
	path := writeFile(t, "")

	if err := File(path, 0); !errors.Is(err, errs.ErrInvalidFormat) {
		t.Errorf("Expected ErrInvalidFormat for empty file, got %v", err)
	}
}

func TestFile_NonExistent(t *testing.T) {
	if err := File("/nonexistent/input.txt", 0); !errs.IsIO(err) {
		t.Errorf("Expected IOError, got %v", err)
	}
}
