package subtitle

import (
	"errors"
	"fmt"
)

var (
	ErrMalformedTimecode     = errors.New("malformed timecode")
	ErrInvalidTimeRange      = errors.New("invalid time range")
	ErrMalformedDialogueLine = errors.New("malformed dialogue line")
	ErrMalformedCounter      = errors.New("malformed counter")
)

// ParseError ties a parse failure to the 1-based source line it came from.
type ParseError struct {
	Line int
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
