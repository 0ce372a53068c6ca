package parser

import "fmt"

type ErrorKind int

const (
	MissingField ErrorKind = iota
	CountMismatch
	MalformedNumber
)

func (k ErrorKind) String() string {
	switch k {
	case MissingField:
		return "missing field"
	case CountMismatch:
		return "count mismatch"
	case MalformedNumber:
		return "malformed number"
	default:
		return fmt.Sprintf("ErrorKind(%d)", int(k))
	}
}

// ParseError is returned for every statistics page that cannot be turned
// into a complete snapshot.
type ParseError struct {
	Kind  ErrorKind
	Field string
	Msg   string
}

func (e *ParseError) Error() string {
	if e.Msg == "" {
		return fmt.Sprintf("statistics page: %s %q", e.Kind, e.Field)
	}
	return fmt.Sprintf("statistics page: %s %q: %s", e.Kind, e.Field, e.Msg)
}

func missingField(field string) *ParseError {
	return &ParseError{Kind: MissingField, Field: field}
}
