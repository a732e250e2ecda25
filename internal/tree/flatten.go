package tree

import (
	"iter"
	"slices"

	"sha1link/internal/link"
)

// Entry is one file with its full directory chain, outermost first.
type Entry struct {
	Record link.Record
	Path   []string
}

// All yields every file depth-first, pre-order: a node's own files come
// before its children's. Each yielded path includes the node's own label.
// The sequence depends only on the tree and may be ranged over repeatedly.
func (n *Node) All() iter.Seq2[link.Record, []string] {
	return func(yield func(link.Record, []string) bool) {
		walk(n, nil, yield)
	}
}

func walk(n *Node, prefix []string, yield func(link.Record, []string) bool) bool {
	path := append(slices.Clip(prefix), n.Label)
	for _, rec := range n.Files {
		if !yield(rec, path) {
			return false
		}
	}
	for _, c := range n.Children {
		if !walk(c, path, yield) {
			return false
		}
	}
	return true
}

// Flatten collects All into a slice.
func Flatten(n *Node) []Entry {
	entries := make([]Entry, 0, n.Count())
	for rec, path := range n.All() {
		entries = append(entries, Entry{Record: rec, Path: slices.Clone(path)})
	}
	return entries
}

// Lines renders every file of n as a flat line carrying its path.
func Lines(n *Node, scheme string) []string {
	lines := make([]string, 0, n.Count())
	for rec, path := range n.All() {
		lines = append(lines, rec.LineWithPath(scheme, path))
	}
	return lines
}
