package tarcodec

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	// ErrChecksumMismatch is returned when a header checksum does not match its content.
	ErrChecksumMismatch = errors.New("tarcodec: header checksum mismatch")
	// ErrTruncated is returned when the stream ends before a declared size is satisfied.
	ErrTruncated = errors.New("tarcodec: truncated stream")
	// ErrMissingSource is returned when a file entry's payload cannot be resolved at write time.
	ErrMissingSource = errors.New("tarcodec: missing payload source")
	// ErrUnsupportedFilter is matched by *UnsupportedFilterError.
	ErrUnsupportedFilter = errors.New("tarcodec: unsupported filter")
	// ErrInvalidHeader is returned for headers that cannot be parsed.
	ErrInvalidHeader = errors.New("tarcodec: invalid header")
	// ErrInvalidLimit is returned for negative read limits.
	ErrInvalidLimit = errors.New("tarcodec: invalid limit")
	// ErrFieldTooLong is returned when a string does not fit its header field.
	ErrFieldTooLong = errors.New("tarcodec: field too long")
	// ErrUnsupported is returned for entry types the writer cannot encode.
	ErrUnsupported = errors.New("tarcodec: unsupported filetype")
	// ErrUnknownSize is returned by TarSize when an entry's payload size is only known at write time.
	ErrUnknownSize = errors.New("tarcodec: payload size unknown")
)

// UnsupportedFilterError reports a filter value that is neither a pattern string nor a regular expression.
type UnsupportedFilterError struct {
	Value interface{}
}

func (e *UnsupportedFilterError) Error() string {
	return fmt.Sprintf("unsupported filter type: %T", e.Value)
}

func (e *UnsupportedFilterError) Is(target error) bool {
	return target == ErrUnsupportedFilter
}
