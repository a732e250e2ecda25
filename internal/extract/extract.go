// Package extract pulls magnet and ed2k links out of free-form text files.
package extract

import (
	"encoding/base32"
	"encoding/hex"
	"fmt"
	"regexp"
	"strings"

	"sha1link/internal/errs"
	"sha1link/internal/streamio"
)

var (
	magnetRe = regexp.MustCompile(`magnet:\?xt=urn:btih:([a-fA-F0-9]{40}|[a-zA-Z2-7]{32})`)
	ed2kRe   = regexp.MustCompile(`ed2k://\|file\|[^|\r\n]+\|\d+\|[a-fA-F0-9]{32}\|(h=[a-zA-Z2-7]{32}\|)?/`)
)

// NormalizeBTIH returns a btih value as 40 lower-case hex characters. It
// accepts the 40-character hex and the 32-character base32 forms.
func NormalizeBTIH(s string) (string, error) {
	switch len(s) {
	case 40:
		if _, err := hex.DecodeString(s); err != nil {
			return "", fmt.Errorf("invalid hex btih %q: %w", s, err)
		}
		return strings.ToLower(s), nil
	case 32:
		b, err := base32.StdEncoding.DecodeString(strings.ToUpper(s))
		if err != nil {
			return "", fmt.Errorf("invalid base32 btih %q: %w", s, err)
		}
		return hex.EncodeToString(b), nil
	default:
		return "", fmt.Errorf("btih %q has length %d, want 40 or 32", s, len(s))
	}
}

// Magnets returns the distinct magnet URIs in text, first-seen order,
// each normalized to hex.
func Magnets(text string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, m := range magnetRe.FindAllStringSubmatch(text, -1) {
		h, err := NormalizeBTIH(m[1])
		if err != nil || seen[h] {
			continue
		}
		seen[h] = true
		out = append(out, "magnet:?xt=urn:btih:"+h)
	}
	return out
}

// ED2K returns every ed2k file link in text, in order.
func ED2K(text string) []string {
	return ed2kRe.FindAllString(text, -1)
}

// MagnetsFile writes the magnets found in in to a new file out, one per
// line, and returns how many were written.
func MagnetsFile(in, out string) (int, error) {
	return file(in, out, "magnet", Magnets)
}

// ED2KFile is MagnetsFile for ed2k links.
func ED2KFile(in, out string) (int, error) {
	return file(in, out, "ed2k", ED2K)
}

func file(in, out, kind string, find func(string) []string) (int, error) {
	if err := streamio.CheckInputOutput(in, out); err != nil {
		return 0, err
	}

	data, err := streamio.ReadAll(in)
	if err != nil {
		return 0, err
	}

	links := find(string(data))
	if len(links) == 0 {
		return 0, fmt.Errorf("%w: no %s links in %s", errs.ErrEmptyInput, kind, in)
	}

	w, err := streamio.Create(out)
	if err != nil {
		return 0, err
	}
	for _, l := range links {
		if err := w.WriteLine(l); err != nil {
			w.Abort()
			return 0, err
		}
	}
	if err := w.Close(); err != nil {
		w.Abort()
		return 0, err
	}
	return len(links), nil
}
