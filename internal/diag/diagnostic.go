package diag

import (
	"fmt"

	"mica/internal/source"
)

// Note is a secondary span/message attached to a diagnostic.
type Note struct {
	Span source.Span
	Msg  string
}

type Diagnostic struct {
	Severity Severity
	Code     Code
	Message  string
	Primary  source.Span
	Notes    []Note
}

// WithNote returns a copy of d with an extra note appended.
func (d Diagnostic) WithNote(sp source.Span, msg string) Diagnostic {
	d.Notes = append(d.Notes[:len(d.Notes):len(d.Notes)], Note{Span: sp, Msg: msg})
	return d
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s %s %s: %s", d.Severity, d.Code.ID(), d.Primary, d.Message)
}

// Error wraps a fatal diagnostic so builders can return it through the
// error channel while the same record lands in the Bag.
type Error struct {
	Diagnostic Diagnostic
}

func (e *Error) Error() string {
	if e.Diagnostic.Code.Internal() {
		return "internal compiler error: " + e.Diagnostic.String()
	}
	return e.Diagnostic.String()
}

// AsError returns d wrapped as an error value.
func AsError(d Diagnostic) error {
	return &Error{Diagnostic: d}
}
