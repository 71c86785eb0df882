package tool

import "fmt"

// ErrorKind classifies a tool-dispatch failure (spec.md §4.3/§7).
type ErrorKind int

const (
	ErrArgument ErrorKind = iota
	ErrExecution
	ErrTimeout
	ErrApprovalDenied
)

// Error is the typed error returned by Dispatch; its Kind and Key let the
// engine render a clarifying tool_result without string-matching messages.
type Error struct {
	Kind ErrorKind
	Tool string
	Key  string // canonical argument name, set for ErrArgument
	Err  error
}

func (e *Error) Error() string {
	switch e.Kind {
	case ErrArgument:
		return fmt.Sprintf("tool %s: missing or empty required argument %q", e.Tool, e.Key)
	case ErrTimeout:
		return fmt.Sprintf("tool %s: timed out", e.Tool)
	case ErrApprovalDenied:
		return fmt.Sprintf("tool %s: approval denied", e.Tool)
	default:
		return fmt.Sprintf("tool %s: %v", e.Tool, e.Err)
	}
}

func (e *Error) Unwrap() error { return e.Err }

func missingArg(toolName, key string) error {
	return &Error{Kind: ErrArgument, Tool: toolName, Key: key}
}

func execErr(toolName string, err error) error {
	return &Error{Kind: ErrExecution, Tool: toolName, Err: err}
}
