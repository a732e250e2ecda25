package streamio

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"sha1link/internal/errs"
)

func writeFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("Failed to create test file: %v", err)
	}
	return path
}

func readLines(t *testing.T, path string) []string {
	t.Helper()
	r, err := Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer r.Close()

	var lines []string
	for {
		line, err := r.ReadLine()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("ReadLine failed: %v", err)
		}
		lines = append(lines, line)
	}
	return lines
}

func TestOpen_SkipsBOM(t *testing.T) {
	path := writeFile(t, "bom.txt", []byte("\xef\xbb\xbffirst\nsecond\n"))

	lines := readLines(t, path)
	if len(lines) != 2 {
		t.Fatalf("Expected 2 lines, got %d", len(lines))
	}
	if lines[0] != "first" {
		t.Errorf("Expected BOM to be stripped, got %q", lines[0])
	}
}

func TestOpen_NoBOM(t *testing.T) {
	path := writeFile(t, "plain.txt", []byte("ab"))

	data, err := ReadAll(path)
	if err != nil {
		t.Fatalf("ReadAll failed: %v", err)
	}
	if string(data) != "ab" {
		t.Errorf("Short file without BOM should be read unchanged, got %q", data)
	}
}

func TestOpen_EmptyFile(t *testing.T) {
	path := writeFile(t, "empty.txt", nil)

	if lines := readLines(t, path); len(lines) != 0 {
		t.Errorf("Expected no lines, got %v", lines)
	}
}

func TestReadLine_Terminators(t *testing.T) {
	path := writeFile(t, "crlf.txt", []byte("a\r\nb\n\nc"))

	lines := readLines(t, path)
	want := []string{"a", "b", "", "c"}
	if len(lines) != len(want) {
		t.Fatalf("Expected %d lines, got %d (%q)", len(want), len(lines), lines)
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Errorf("line %d: expected %q, got %q", i, want[i], lines[i])
		}
	}
}

func TestReadLineMax(t *testing.T) {
	path := writeFile(t, "short.txt", []byte("\xef\xbb\xbfabc\r\n0123456789\nlast"))
	r, err := Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer r.Close()

	tests := []struct {
		line string
		long bool
	}{
		{"abc", false},
		{"0123456789", true},
		{"last", false},
	}
	for _, tt := range tests {
		line, long, err := r.ReadLineMax(6)
		if err != nil {
			t.Fatalf("ReadLineMax failed: %v", err)
		}
		if tt.long {
			if !long {
				t.Errorf("Expected %q to be reported long", line)
			}
			continue
		}
		if long || line != tt.line {
			t.Errorf("Expected %q, got %q (long=%v)", tt.line, line, long)
		}
	}
	if _, _, err := r.ReadLineMax(6); err != io.EOF {
		t.Errorf("Expected io.EOF, got %v", err)
	}
}

func TestReadLineMax_StopsEarlyOnHugeLine(t *testing.T) {
	const size = 4 * bufferSize
	path := writeFile(t, "binary.bin", bytes.Repeat([]byte{0}, size))

	r, err := Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer r.Close()

	line, long, err := r.ReadLineMax(100)
	if err != nil {
		t.Fatalf("ReadLineMax failed: %v", err)
	}
	if !long || len(line) != 101 {
		t.Errorf("Expected a long line cut to 101 bytes, got long=%v len=%d", long, len(line))
	}

	rest, err := io.Copy(io.Discard, r)
	if err != nil {
		t.Fatalf("Reading remainder failed: %v", err)
	}
	if rest < size-bufferSize {
		t.Errorf("Expected most of the file left unread, only %d of %d bytes remain", rest, size)
	}
}

func TestOpen_NonExistent(t *testing.T) {
	_, err := Open("/nonexistent/file.txt")
	if !errs.IsIO(err) {
		t.Fatalf("Expected IOError, got %v", err)
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Error("IOError should wrap os.ErrNotExist")
	}
}

func TestCreate_RefusesExisting(t *testing.T) {
	path := writeFile(t, "out.txt", []byte("keep"))

	if err := CheckOutput(path); !errors.Is(err, errs.ErrOutputExists) {
		t.Errorf("CheckOutput: expected ErrOutputExists, got %v", err)
	}
	if _, err := Create(path); !errors.Is(err, errs.ErrOutputExists) {
		t.Errorf("Create: expected ErrOutputExists, got %v", err)
	}

	data, _ := os.ReadFile(path)
	if string(data) != "keep" {
		t.Error("Existing output must not be modified")
	}
}

func TestWriter_WriteLine(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.txt")

	w, err := Create(path)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	for _, s := range []string{"one", "two"} {
		if err := w.WriteLine(s); err != nil {
			t.Fatalf("WriteLine failed: %v", err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	data, _ := os.ReadFile(path)
	if string(data) != "one\ntwo\n" {
		t.Errorf("Unexpected content %q", data)
	}
}

func TestIsBlank(t *testing.T) {
	for _, s := range []string{"", " ", "\t \r"} {
		if !IsBlank(s) {
			t.Errorf("IsBlank(%q) should be true", s)
		}
	}
	if IsBlank(" a ") {
		t.Error("IsBlank should be false for content")
	}
}
