package walker

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
)

// Format is the on-disk representation of a discovered input.
type Format int

const (
	Lines Format = iota + 1 // flat link list, *.txt
	Tree                    // tree document, *.json
)

func (f Format) String() string {
	switch f {
	case Lines:
		return "lines"
	case Tree:
		return "tree"
	default:
		return "unknown"
	}
}

// FormatOf classifies path by extension; ok is false for anything else.
func FormatOf(path string) (Format, bool) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".txt":
		return Lines, true
	case ".json":
		return Tree, true
	default:
		return 0, false
	}
}

type FileInfo struct {
	Path   string
	Rel    string
	Size   int64
	Format Format
}

type WalkResult struct {
	Files  []FileInfo
	Errors []error
}

// Walk finds convertible inputs under rootPath, skipping anything that
// matches exclusions.
func Walk(rootPath string, exclusions []string) (*WalkResult, error) {
	result := &WalkResult{
		Files:  make([]FileInfo, 0),
		Errors: make([]error, 0),
	}

	err := filepath.WalkDir(rootPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == rootPath {
				return err
			}
			result.Errors = append(result.Errors, err)
			return nil
		}

		relPath, err := filepath.Rel(rootPath, path)
		if err != nil {
			result.Errors = append(result.Errors, err)
			return nil
		}

		if relPath != "." && shouldExclude(relPath, d, exclusions) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if d.IsDir() || !d.Type().IsRegular() {
			return nil
		}

		format, ok := FormatOf(path)
		if !ok {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			result.Errors = append(result.Errors, err)
			return nil
		}

		result.Files = append(result.Files, FileInfo{
			Path:   path,
			Rel:    relPath,
			Size:   info.Size(),
			Format: format,
		})
		return nil
	})

	if err != nil {
		return nil, fmt.Errorf("failed to walk directory: %w", err)
	}

	return result, nil
}

// shouldExclude matches relPath against skip patterns. A pattern ending in
// "/" names a directory and excludes everything beneath any directory
// component it matches; other patterns match the base name, or the whole
// relative path when they contain a slash.
func shouldExclude(relPath string, d fs.DirEntry, exclusions []string) bool {
	slashed := filepath.ToSlash(relPath)
	for _, pattern := range exclusions {
		if dir, ok := strings.CutSuffix(pattern, "/"); ok {
			if dirExcluded(slashed, d.IsDir(), dir) {
				return true
			}
			continue
		}
		if globMatch(pattern, filepath.Base(relPath)) {
			return true
		}
		if strings.Contains(pattern, "/") && globMatch(pattern, slashed) {
			return true
		}
	}
	return false
}

func dirExcluded(slashed string, isDir bool, pattern string) bool {
	parts := strings.Split(slashed, "/")
	if !isDir {
		parts = parts[:len(parts)-1]
	}
	for _, part := range parts {
		if globMatch(pattern, part) {
			return true
		}
	}
	return false
}

func globMatch(pattern, name string) bool {
	ok, err := filepath.Match(pattern, name)
	return err == nil && ok
}
