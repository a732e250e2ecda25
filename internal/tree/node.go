package tree

import (
	"strings"

	"sha1link/internal/link"
)

// Node is one directory: its files in first-seen order and its children
// looked up by label, first match wins.
type Node struct {
	Label    string
	Files    []link.Record
	Children []*Node
}

func New(label string) *Node {
	return &Node{Label: SanitizeLabel(label)}
}

var labelReplacer = strings.NewReplacer("\r", "", "\n", "", "\\", "")

// SanitizeLabel strips carriage returns, line feeds and backslashes.
func SanitizeLabel(label string) string {
	return labelReplacer.Replace(label)
}

// Child returns the first child labelled label, creating and appending
// one if none exists.
func (n *Node) Child(label string) *Node {
	label = SanitizeLabel(label)
	for _, c := range n.Children {
		if c.Label == label {
			return c
		}
	}
	c := &Node{Label: label}
	n.Children = append(n.Children, c)
	return c
}

// Lookup returns the first child labelled label, or nil.
func (n *Node) Lookup(label string) *Node {
	for _, c := range n.Children {
		if c.Label == label {
			return c
		}
	}
	return nil
}

// Count is the number of files in the subtree rooted at n.
func (n *Node) Count() int {
	total := len(n.Files)
	for _, c := range n.Children {
		total += c.Count()
	}
	return total
}
