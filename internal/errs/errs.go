package errs

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformedRecord marks a single line that does not decode as a link record.
	ErrMalformedRecord = errors.New("malformed link record")
	ErrInvalidFormat   = errors.New("invalid link file format")
	ErrEmptyInput      = errors.New("no usable link records")
	ErrOutputExists    = errors.New("output path already exists")
	ErrBencode         = errors.New("invalid bencode")
	ErrMissingInfoDict = errors.New("torrent has no info dictionary")
	ErrOverflow        = errors.New("size sum overflows 64 bits")
)

// IOError reports a failed filesystem operation on Path.
type IOError struct {
	Op   string
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }

// Wrap returns nil for a nil err, otherwise an *IOError.
func Wrap(op, path string, err error) error {
	if err == nil {
		return nil
	}
	return &IOError{Op: op, Path: path, Err: err}
}

// IsIO reports whether err carries an *IOError.
func IsIO(err error) bool {
	var e *IOError
	return errors.As(err, &e)
}

// Kind maps err to a stable short name the caller can switch on.
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrOutputExists):
		return "output_exists"
	case errors.Is(err, ErrMalformedRecord):
		return "malformed_record"
	case errors.Is(err, ErrInvalidFormat):
		return "invalid_format"
	case errors.Is(err, ErrEmptyInput):
		return "empty_input"
	case errors.Is(err, ErrMissingInfoDict):
		return "missing_info_dict"
	case errors.Is(err, ErrBencode):
		return "bencode_error"
	case errors.Is(err, ErrOverflow):
		return "overflow"
	case IsIO(err):
		return "io_error"
	default:
		return "unknown"
	}
}
