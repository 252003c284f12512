package parser

import "github.com/remexre/wam-tutorial-reconstruction/internal/wamerr"

// incompleteError marks input that ended before a token or production
// could finish (an open quote, a dangling escape, a clause missing its
// terminating period). The REPL driver treats this as "keep reading,"
// not a syntax error.
type incompleteError struct {
	offset int
	msg    string
}

func (e *incompleteError) Error() string { return e.msg }

// syntaxError marks input that is unambiguously malformed.
type syntaxError struct {
	offset int
	msg    string
}

func (e *syntaxError) Error() string { return e.msg }

// IsIncomplete reports whether err signals that more input could still
// complete a valid parse, per the REPL continuation-prompt rule in the
// source-file grammar.
func IsIncomplete(err error) bool {
	switch err.(type) {
	case *incompleteError, *wrappedIncomplete:
		return true
	default:
		return false
	}
}

// asParseError converts the parser's internal error variants into the
// typed wamerr.ParseError the rest of the system expects, preserving the
// "incomplete" classification so callers can still use IsIncomplete on
// the wrapped error.
func asParseError(err error) error {
	switch e := err.(type) {
	case *incompleteError:
		return &wrappedIncomplete{&wamerr.ParseError{Offset: e.offset, Message: e.msg}}
	case *syntaxError:
		return &wamerr.ParseError{Offset: e.offset, Message: e.msg}
	default:
		return err
	}
}

// wrappedIncomplete lets IsIncomplete see through the wamerr.ParseError
// boundary for callers that only have the public error value.
type wrappedIncomplete struct {
	*wamerr.ParseError
}

func (w *wrappedIncomplete) Unwrap() error { return w.ParseError }
