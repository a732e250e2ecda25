package compare

import (
	"fmt"
	"sort"
	"strings"

	"sha1link/internal/link"
)

type ChangeType string

const (
	Added   ChangeType = "ADDED"
	Renamed ChangeType = "RENAMED"
	Deleted ChangeType = "DELETED"
)

type Change struct {
	Type ChangeType
	Key  link.Key
	Old  *link.Record
	New  *link.Record
}

type CompareResult struct {
	Added   []Change
	Renamed []Change
	Deleted []Change
}

func (r *CompareResult) HasChanges() bool {
	return len(r.Added) > 0 || len(r.Renamed) > 0 || len(r.Deleted) > 0
}

// Compare matches records by identity key. The first record seen for a
// key on each side is the one compared.
func Compare(oldRecs, newRecs []link.Record) *CompareResult {
	result := &CompareResult{
		Added:   make([]Change, 0),
		Renamed: make([]Change, 0),
		Deleted: make([]Change, 0),
	}

	oldByKey := index(oldRecs)
	newByKey := index(newRecs)

	// Check for added and renamed records
	for key, newRec := range newByKey {
		if oldRec, exists := oldByKey[key]; exists {
			if oldRec.Name != newRec.Name {
				result.Renamed = append(result.Renamed, Change{Type: Renamed, Key: key, Old: oldRec, New: newRec})
			}
		} else {
			result.Added = append(result.Added, Change{Type: Added, Key: key, New: newRec})
		}
	}

	// Check for deleted records
	for key, oldRec := range oldByKey {
		if _, exists := newByKey[key]; !exists {
			result.Deleted = append(result.Deleted, Change{Type: Deleted, Key: key, Old: oldRec})
		}
	}

	// Sort for deterministic output
	sortChanges(result.Added, func(c Change) string { return c.New.Name })
	sortChanges(result.Renamed, func(c Change) string { return c.New.Name })
	sortChanges(result.Deleted, func(c Change) string { return c.Old.Name })

	return result
}

func index(recs []link.Record) map[link.Key]*link.Record {
	m := make(map[link.Key]*link.Record, len(recs))
	for i := range recs {
		k := recs[i].Key()
		if _, ok := m[k]; !ok {
			m[k] = &recs[i]
		}
	}
	return m
}

func sortChanges(changes []Change, name func(Change) string) {
	sort.Slice(changes, func(i, j int) bool {
		ni, nj := name(changes[i]), name(changes[j])
		if ni != nj {
			return ni < nj
		}
		return changes[i].Key.String() < changes[j].Key.String()
	})
}

func FormatReport(result *CompareResult) string {
	if !result.HasChanges() {
		return "No changes detected."
	}

	var report strings.Builder
	report.WriteString("Changes detected:\n\n")

	if len(result.Added) > 0 {
		fmt.Fprintf(&report, "ADDED (%d files):\n", len(result.Added))
		for _, change := range result.Added {
			fmt.Fprintf(&report, "  + %s (sha1: %s, size: %d bytes)\n",
				change.New.Name, change.New.ContentHash, change.New.Size)
		}
		report.WriteString("\n")
	}

	if len(result.Renamed) > 0 {
		fmt.Fprintf(&report, "RENAMED (%d files):\n", len(result.Renamed))
		for _, change := range result.Renamed {
			fmt.Fprintf(&report, "  ~ %s -> %s\n", change.Old.Name, change.New.Name)
		}
		report.WriteString("\n")
	}

	if len(result.Deleted) > 0 {
		fmt.Fprintf(&report, "DELETED (%d files):\n", len(result.Deleted))
		for _, change := range result.Deleted {
			fmt.Fprintf(&report, "  - %s (sha1: %s, size: %d bytes)\n",
				change.Old.Name, change.Old.ContentHash, change.Old.Size)
		}
		report.WriteString("\n")
	}

	fmt.Fprintf(&report, "Summary: %d added, %d renamed, %d deleted\n",
		len(result.Added), len(result.Renamed), len(result.Deleted))

	return report.String()
}
