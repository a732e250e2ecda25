// Package streamio gives read-only line and byte access to input files,
// hiding a leading UTF-8 byte-order mark, and exclusive creation of output
// files.
package streamio

import (
	"bufio"
	"bytes"
	"errors"
	"io"
	"os"
	"strings"

	"sha1link/internal/errs"
)

const bufferSize = 64 * 1024

var bom = []byte{0xef, 0xbb, 0xbf}

// Reader reads a file with any leading byte-order mark removed.
type Reader struct {
	path string
	file *os.File
	br   *bufio.Reader
	line int
}

// Open opens path for reading and positions it past a byte-order mark if
// one is present. The file is never written.
func Open(path string) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errs.Wrap("open", path, err)
	}

	br := bufio.NewReaderSize(f, bufferSize)
	head, err := br.Peek(len(bom))
	if err != nil && !errors.Is(err, io.EOF) {
		f.Close()
		return nil, errs.Wrap("read", path, err)
	}
	if bytes.Equal(head, bom) {
		if _, err := br.Discard(len(bom)); err != nil {
			f.Close()
			return nil, errs.Wrap("read", path, err)
		}
	}

	return &Reader{path: path, file: f, br: br}, nil
}

func (r *Reader) Path() string { return r.path }

// LineNumber is the 1-based number of the line last returned by ReadLine.
func (r *Reader) LineNumber() int { return r.line }

func (r *Reader) Read(p []byte) (int, error) {
	n, err := r.br.Read(p)
	if err != nil && !errors.Is(err, io.EOF) {
		return n, errs.Wrap("read", r.path, err)
	}
	return n, err
}

// ReadLine returns the next line without its terminator ("\n" or "\r\n").
// It returns io.EOF once no more lines remain.
func (r *Reader) ReadLine() (string, error) {
	s, err := r.br.ReadString('\n')
	if err != nil {
		if !errors.Is(err, io.EOF) {
			return "", errs.Wrap("read", r.path, err)
		}
		if s == "" {
			return "", io.EOF
		}
	}
	r.line++
	s = strings.TrimSuffix(s, "\n")
	s = strings.TrimSuffix(s, "\r")
	return s, nil
}

// ReadLineMax is ReadLine for lines of at most limit bytes. It buffers no
// more than one read chunk past limit: when the line is longer, long is
// true, line holds at least its first limit+1 bytes and whatever of the
// line did not fit the read chunk is left unread.
func (r *Reader) ReadLineMax(limit int) (line string, long bool, err error) {
	var buf []byte
	for {
		chunk, err := r.br.ReadSlice('\n')
		buf = append(buf, chunk...)

		switch {
		case err == nil, errors.Is(err, io.EOF):
			if len(buf) == 0 {
				return "", false, io.EOF
			}
			r.line++
			s := strings.TrimSuffix(string(buf), "\n")
			s = strings.TrimSuffix(s, "\r")
			return s, len(s) > limit, nil
		case errors.Is(err, bufio.ErrBufferFull):
			// one byte of slack for a "\r" that may still end the line
			if len(buf) > limit+1 {
				r.line++
				return string(buf[:limit+1]), true, nil
			}
		default:
			return "", false, errs.Wrap("read", r.path, err)
		}
	}
}

func (r *Reader) Close() error {
	return errs.Wrap("close", r.path, r.file.Close())
}

// ReadAll returns the whole content of path without a byte-order mark.
func ReadAll(path string) ([]byte, error) {
	r, err := Open(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return data, nil
}

// IsBlank reports whether line has no content besides ASCII whitespace.
func IsBlank(line string) bool {
	return strings.TrimLeft(line, " \t\r\n\v\f") == ""
}

// CheckInput fails with an *errs.IOError when path does not exist.
func CheckInput(path string) error {
	if _, err := os.Stat(path); err != nil {
		return errs.Wrap("stat", path, err)
	}
	return nil
}

// CheckOutput fails with errs.ErrOutputExists when something already lives
// at path.
func CheckOutput(path string) error {
	if _, err := os.Lstat(path); err == nil {
		return &errs.IOError{Op: "create", Path: path, Err: errs.ErrOutputExists}
	} else if !os.IsNotExist(err) {
		return errs.Wrap("stat", path, err)
	}
	return nil
}

// CheckInputOutput runs CheckInput then CheckOutput.
func CheckInputOutput(in, out string) error {
	if err := CheckInput(in); err != nil {
		return err
	}
	return CheckOutput(out)
}

// Writer is a buffered output file created exclusively.
type Writer struct {
	path string
	file *os.File
	bw   *bufio.Writer
}

// Create creates path for writing. It refuses to replace an existing file.
func Create(path string) (*Writer, error) {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		if os.IsExist(err) {
			return nil, &errs.IOError{Op: "create", Path: path, Err: errs.ErrOutputExists}
		}
		return nil, errs.Wrap("create", path, err)
	}
	return &Writer{path: path, file: f, bw: bufio.NewWriterSize(f, bufferSize)}, nil
}

func (w *Writer) Path() string { return w.path }

func (w *Writer) Write(p []byte) (int, error) {
	n, err := w.bw.Write(p)
	return n, errs.Wrap("write", w.path, err)
}

// WriteLine writes s followed by "\n".
func (w *Writer) WriteLine(s string) error {
	if _, err := w.bw.WriteString(s); err != nil {
		return errs.Wrap("write", w.path, err)
	}
	return errs.Wrap("write", w.path, w.bw.WriteByte('\n'))
}

// Close flushes buffered data and closes the file.
func (w *Writer) Close() error {
	flushErr := w.bw.Flush()
	closeErr := w.file.Close()
	if flushErr != nil {
		return errs.Wrap("write", w.path, flushErr)
	}
	return errs.Wrap("close", w.path, closeErr)
}

// Abort closes and removes a partially written output.
func (w *Writer) Abort() {
	w.file.Close()
	os.Remove(w.path)
}
