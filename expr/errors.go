package expr

import (
	"errors"
	"fmt"
)

// SyntaxError represents a lexing or parsing error with its byte offset.
type SyntaxError struct {
	Offset  int
	Message string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("syntax error at offset %d: %s", e.Offset, e.Message)
}

// Evaluation errors.
var (
	ErrTooLong           = errors.New("expression too long")
	ErrTooDeep           = errors.New("expression nested too deeply")
	ErrUnknownIdentifier = errors.New("unknown identifier")
	ErrUnknownFunction   = errors.New("unknown function")
	ErrArity             = errors.New("wrong number of arguments")
	ErrNonFinite         = errors.New("non-finite result")
)

// Common error messages
const (
	errUnexpectedToken = "unexpected %s %q, expected %s"
	errInvalidNumber   = "invalid number literal %q"
)
