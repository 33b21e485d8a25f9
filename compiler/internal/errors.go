package internal

import (
	"fmt"
	"strings"
)

// SyntaxError is returned by the parser for the first token it cannot accept.
// There is no recovery, the whole class is rejected.
type SyntaxError struct {
	Construct string
	Expected  string
	Found     *Token // nil when the token stream ran out.
	Err       error
}

func (e *SyntaxError) Error() string {
	if e.Err != nil {
		if e.Found != nil && e.Found.line > 0 {
			return fmt.Sprintf("%s: %v at line %d", e.Construct, e.Err, e.Found.line)
		}
		return fmt.Sprintf("%s: %v", e.Construct, e.Err)
	}
	msg := strings.TrimSpace(e.Construct + " expected " + e.Expected)
	if e.Found == nil {
		return msg + ", reached end of input instead"
	}
	if e.Found.line > 0 {
		return fmt.Sprintf("%s, got %s instead at line %d", msg, e.Found, e.Found.line)
	}
	return fmt.Sprintf("%s, got %s instead", msg, e.Found)
}

func (e *SyntaxError) Unwrap() error { return e.Err }

// CodeGenError is returned when the tree holds a shape or a value the generator does
// not handle. Partial holds the instructions written for the class so far.
type CodeGenError struct {
	Construct string
	Detail    string
	Partial   string
}

func (e *CodeGenError) Error() string {
	return fmt.Sprintf("cannot generate %s: %s\nVM generated so far:\n%s", e.Construct, e.Detail, e.Partial)
}
