package tree

import (
	"encoding/json"
	"fmt"

	"github.com/sirupsen/logrus"

	"sha1link/internal/errs"
	"sha1link/internal/link"
	"sha1link/internal/logging"
	"sha1link/internal/streamio"
)

// document is the on-disk node. dir_name and dirs are accepted on input
// for files written by older tools.
type document struct {
	Label    string      `json:"label"`
	Files    []string    `json:"files"`
	Children []*document `json:"children"`

	DirName *string     `json:"dir_name,omitempty"`
	Dirs    []*document `json:"dirs,omitempty"`
}

func toDocument(n *Node) *document {
	d := &document{
		Label:    n.Label,
		Files:    make([]string, 0, len(n.Files)),
		Children: make([]*document, 0, len(n.Children)),
	}
	for _, rec := range n.Files {
		d.Files = append(d.Files, rec.Embedded())
	}
	for _, c := range n.Children {
		d.Children = append(d.Children, toDocument(c))
	}
	return d
}

// fromDocument converts d. onBad decides what happens to an embedded
// record that does not decode: a nil return skips it, an error aborts.
func fromDocument(d *document, onBad func(label, s string, err error) error) (*Node, error) {
	label := d.Label
	if label == "" && d.DirName != nil {
		label = *d.DirName
	}
	n := &Node{Label: SanitizeLabel(label)}

	for _, s := range d.Files {
		rec, err := link.ParseEmbedded(s)
		if err != nil {
			if err := onBad(n.Label, s, err); err != nil {
				return nil, err
			}
			continue
		}
		n.Files = append(n.Files, rec)
	}

	children := d.Children
	if len(children) == 0 {
		children = d.Dirs
	}
	for _, cd := range children {
		if cd == nil {
			continue
		}
		c, err := fromDocument(cd, onBad)
		if err != nil {
			return nil, err
		}
		n.Children = append(n.Children, c)
	}
	return n, nil
}

func (n *Node) MarshalJSON() ([]byte, error) {
	return json.Marshal(toDocument(n))
}

// UnmarshalJSON rejects a document holding any malformed record; Load is
// the lenient reader.
func (n *Node) UnmarshalJSON(data []byte) error {
	var d document
	if err := json.Unmarshal(data, &d); err != nil {
		return err
	}
	parsed, err := fromDocument(&d, func(label, _ string, err error) error {
		return fmt.Errorf("directory %q: %w", label, err)
	})
	if err != nil {
		return err
	}
	*n = *parsed
	return nil
}

// Save writes n as a JSON document to a new file at path.
func Save(n *Node, path string) error {
	w, err := streamio.Create(path)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(toDocument(n)); err != nil {
		w.Abort()
		return fmt.Errorf("failed to encode tree: %w", err)
	}

	if err := w.Close(); err != nil {
		w.Abort()
		return err
	}
	return nil
}

// Load reads a JSON tree document, tolerating a leading byte-order mark.
// Embedded records that fail to decode are logged, left out and counted
// in skipped, the same way flat lines are.
func Load(path string, log logrus.FieldLogger) (n *Node, skipped int, err error) {
	log = logging.OrDiscard(log)

	data, err := streamio.ReadAll(path)
	if err != nil {
		return nil, 0, err
	}

	var d document
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, 0, fmt.Errorf("%w: %s is not a tree document: %v", errs.ErrInvalidFormat, path, err)
	}

	n, err = fromDocument(&d, func(label, s string, err error) error {
		skipped++
		log.WithFields(logrus.Fields{
			"path":      path,
			"directory": label,
			"text":      s,
		}).WithError(err).Warn("skipping invalid record")
		return nil
	})
	if err != nil {
		return nil, skipped, err
	}
	return n, skipped, nil
}
