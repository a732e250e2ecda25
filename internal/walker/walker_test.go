package walker

import (
	"os"
	"path/filepath"
	"sort"
	"testing"
)

func createFiles(t *testing.T, root string, files []string) {
	t.Helper()
	for _, f := range files {
		fullPath := filepath.Join(root, f)
		if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
			t.Fatalf("Failed to create directory: %v", err)
		}
		if err := os.WriteFile(fullPath, []byte("content"), 0644); err != nil {
			t.Fatalf("Failed to create file: %v", err)
		}
	}
}

func relPaths(result *WalkResult) []string {
	paths := make([]string, 0, len(result.Files))
	for _, f := range result.Files {
		paths = append(paths, filepath.ToSlash(f.Rel))
	}
	sort.Strings(paths)
	return paths
}

func TestWalk_FindsInputs(t *testing.T) {
	tmpDir := t.TempDir()
	createFiles(t, tmpDir, []string{
		"list.txt",
		"tree.JSON",
		"image.png",
		"nested/deep/more.txt",
	})

	result, err := Walk(tmpDir, []string{})
	if err != nil {
		t.Fatalf("Walk failed: %v", err)
	}

	got := relPaths(result)
	want := []string{"list.txt", "nested/deep/more.txt", "tree.JSON"}
	if len(got) != len(want) {
		t.Fatalf("Expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Expected %q, got %q", want[i], got[i])
		}
	}

	for _, f := range result.Files {
		wantFormat, _ := FormatOf(f.Path)
		if f.Format != wantFormat {
			t.Errorf("%s: expected format %v, got %v", f.Rel, wantFormat, f.Format)
		}
		if f.Path != filepath.Join(tmpDir, f.Rel) {
			t.Errorf("Expected path under %s, got %s", tmpDir, f.Path)
		}
	}
}

func TestWalk_WithExclusions(t *testing.T) {
	tmpDir := t.TempDir()

	files := map[string]bool{
		"keep.txt":           false,
		"skip.tmp.txt":       true,
		"node_modules/a.txt": true,
		"src/b.json":         false,
		"output/c.json":      true,
	}

	names := make([]string, 0, len(files))
	for f := range files {
		names = append(names, f)
	}
	createFiles(t, tmpDir, names)

	result, err := Walk(tmpDir, []string{"*.tmp.txt", "node_modules/", "output/"})
	if err != nil {
		t.Fatalf("Walk failed: %v", err)
	}

	for _, fileInfo := range result.Files {
		rel := filepath.ToSlash(fileInfo.Rel)
		if files[rel] {
			t.Errorf("File %s should have been excluded", rel)
		}
	}
	if len(result.Files) != 2 {
		t.Errorf("Expected 2 files, got %d", len(result.Files))
	}
}

func TestWalk_DirectoryPatternDoesNotMatchFileName(t *testing.T) {
	tmpDir := t.TempDir()
	createFiles(t, tmpDir, []string{"output.txt"})

	result, err := Walk(tmpDir, []string{"output.txt/"})
	if err != nil {
		t.Fatalf("Walk failed: %v", err)
	}
	if len(result.Files) != 1 {
		t.Errorf("A directory pattern should not exclude a file, got %d files", len(result.Files))
	}
}

func TestWalk_EmptyDirectory(t *testing.T) {
	result, err := Walk(t.TempDir(), []string{})
	if err != nil {
		t.Fatalf("Walk failed: %v", err)
	}

	if len(result.Files) != 0 {
		t.Errorf("Expected 0 files in empty directory, got %d", len(result.Files))
	}
}

func TestWalk_NonExistentDirectory(t *testing.T) {
	_, err := Walk("/nonexistent/directory", []string{})
	if err == nil {
		t.Error("Walk should return error for nonexistent directory")
	}
}

func TestFormat_String(t *testing.T) {
	if Lines.String() != "lines" || Tree.String() != "tree" || Format(0).String() != "unknown" {
		t.Error("Unexpected format names")
	}
}
