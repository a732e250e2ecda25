package tree

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"

	"sha1link/internal/errs"
	"sha1link/internal/link"
)

var (
	hashA = strings.Repeat("a", 40)
	hashB = strings.Repeat("b", 40)
	hashC = strings.Repeat("c", 40)
)

func line(name string, size string, path ...string) string {
	parts := append([]string{"115://" + name, size, hashA, hashB}, path...)
	return strings.Join(parts, "|")
}

func TestBuild_Scenario(t *testing.T) {
	src := "115://a.txt|100|" + hashA + "|" + hashB + "|root|sub"

	root, err := Build([]string{src}, "", nil)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	if root.Label != "root" {
		t.Fatalf("Expected root label %q, got %q", "root", root.Label)
	}
	if len(root.Files) != 0 || len(root.Children) != 1 {
		t.Fatalf("Expected root with one child and no files, got %d files %d children", len(root.Files), len(root.Children))
	}

	sub := root.Children[0]
	if sub.Label != "sub" {
		t.Errorf("Expected child label %q, got %q", "sub", sub.Label)
	}
	if len(sub.Files) != 1 {
		t.Fatalf("Expected 1 file in sub, got %d", len(sub.Files))
	}

	want := link.Record{Name: "a.txt", Size: 100, ContentHash: hashA, BlockHash: hashB}
	if sub.Files[0] != want {
		t.Errorf("Expected %+v, got %+v", want, sub.Files[0])
	}

	lines := Lines(root, link.DefaultScheme)
	if len(lines) != 1 || lines[0] != src {
		t.Errorf("Flattening should reproduce %q, got %q", src, lines)
	}
}

func TestBuild_FirstSeenGrouping(t *testing.T) {
	lines := []string{
		line("1", "1", "r", "x"),
		line("2", "2", "r", "y"),
		line("3", "3", "r", "x"),
		line("4", "4", "r"),
	}

	root, err := Build(lines, "", nil)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	if len(root.Children) != 2 {
		t.Fatalf("Expected 2 children, got %d", len(root.Children))
	}
	if root.Children[0].Label != "x" || root.Children[1].Label != "y" {
		t.Errorf("Children should keep first-seen order, got %q, %q", root.Children[0].Label, root.Children[1].Label)
	}
	if n := len(root.Lookup("x").Files); n != 2 {
		t.Errorf("Expected 2 files under x, got %d", n)
	}
	if len(root.Files) != 1 || root.Files[0].Name != "4" {
		t.Errorf("Expected file 4 directly under root, got %+v", root.Files)
	}
}

func TestBuild_MultipleRootsWrapped(t *testing.T) {
	lines := []string{
		line("a", "1", "one"),
		line("b", "2", "two"),
	}

	root, err := Build(lines, "bundle", nil)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	if root.Label != "bundle" {
		t.Errorf("Expected wrapper label %q, got %q", "bundle", root.Label)
	}
	if len(root.Children) != 2 {
		t.Errorf("Expected both roots under wrapper, got %d", len(root.Children))
	}
}

func TestBuild_PathlessFilesWrapped(t *testing.T) {
	root, err := Build([]string{line("loose", "1")}, "", nil)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	if root.Label != DefaultWrapperLabel {
		t.Errorf("Expected wrapper %q, got %q", DefaultWrapperLabel, root.Label)
	}
	if len(root.Files) != 1 || root.Files[0].Name != "loose" {
		t.Errorf("Expected path-less file on wrapper, got %+v", root.Files)
	}
}

func TestBuild_SkipsMalformedLines(t *testing.T) {
	var buf bytes.Buffer
	log := logrus.New()
	log.SetOutput(&buf)

	b := NewBuilder("", log)
	if err := b.AddLine("garbage"); !errors.Is(err, errs.ErrMalformedRecord) {
		t.Errorf("Expected ErrMalformedRecord, got %v", err)
	}
	if err := b.AddLine(line("ok", "1", "root")); err != nil {
		t.Fatalf("AddLine failed: %v", err)
	}

	if b.Skipped() != 1 || b.Added() != 1 {
		t.Errorf("Expected 1 skipped and 1 added, got %d and %d", b.Skipped(), b.Added())
	}
	if !strings.Contains(buf.String(), "skipping invalid line") {
		t.Error("Skipped line should be logged")
	}

	root, err := b.Result()
	if err != nil {
		t.Fatalf("Result failed: %v", err)
	}
	if root.Label != "root" || root.Count() != 1 {
		t.Errorf("Unexpected tree %q with %d files", root.Label, root.Count())
	}
}

func TestBuild_Empty(t *testing.T) {
	_, err := Build([]string{"", "not a record", "  "}, "", nil)
	if !errors.Is(err, errs.ErrEmptyInput) {
		t.Errorf("Expected ErrEmptyInput, got %v", err)
	}
}

func TestBuild_SanitizesLabels(t *testing.T) {
	root, err := Build([]string{line("f", "1", "ro\\ot\r")}, "", nil)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if root.Label != "root" {
		t.Errorf("Expected sanitized label %q, got %q", "root", root.Label)
	}
}

func TestBuild_DifferentHashesKeptApart(t *testing.T) {
	lines := []string{
		line("a", "1", "r"),
		"115://a|1|" + hashC + "|" + hashB + "|r",
	}

	root, err := Build(lines, "", nil)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if len(root.Files) != 2 {
		t.Errorf("Builder must not dedup, expected 2 files, got %d", len(root.Files))
	}
}
