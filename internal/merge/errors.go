package merge

import "errors"

// ErrParse matches every *ParseError via errors.Is.
var ErrParse = errors.New("overlay is not a well-formed JSON object")

// ParseError reports an overlay document that could not be read as an object.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string {
	if e.Err == nil {
		return ErrParse.Error()
	}
	return "parse overlay: " + e.Err.Error()
}

func (e *ParseError) Unwrap() error { return e.Err }

func (e *ParseError) Is(target error) bool { return target == ErrParse }
