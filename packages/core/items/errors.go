package items

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a ParseError.
type ErrorKind int

const (
	NoSeparatorMatched ErrorKind = iota + 1
	FileUnreadable
	NotUTF8Text
	InvalidJSON
	BodyConflict
	InvalidBody
)

func (k ErrorKind) String() string {
	switch k {
	case NoSeparatorMatched:
		return "no separator matched"
	case FileUnreadable:
		return "file unreadable"
	case NotUTF8Text:
		return "not UTF-8 text"
	case InvalidJSON:
		return "invalid JSON"
	case BodyConflict:
		return "body conflict"
	case InvalidBody:
		return "invalid body"
	default:
		return "unknown"
	}
}

// ParseError is returned for every user-facing item or body failure.
type ParseError struct {
	Kind    ErrorKind
	Item    string // original item text, empty for body errors
	Message string
	Err     error
}

func (e *ParseError) Error() string {
	switch {
	case e.Kind == NoSeparatorMatched:
		return fmt.Sprintf(`"%s" %s`, e.Item, e.Message)
	case e.Item == "":
		return e.Message
	}
	return fmt.Sprintf(`"%s": %s`, e.Item, e.Message)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// IsKind reports whether err is a ParseError of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var pe *ParseError
	return errors.As(err, &pe) && pe.Kind == kind
}

func newNoSeparatorError(item string) *ParseError {
	return &ParseError{
		Kind:    NoSeparatorMatched,
		Item:    item,
		Message: "is not a valid value",
	}
}

func newFileError(item string, err error) *ParseError {
	return &ParseError{Kind: FileUnreadable, Item: item, Message: err.Error(), Err: err}
}
