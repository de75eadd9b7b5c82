package diag

import "mica/internal/source"

// Reporter is the minimal contract for phases that emit diagnostics.
type Reporter interface {
	Report(d Diagnostic)
}

// BagReporter stores reported diagnostics in a Bag.
type BagReporter struct {
	Bag *Bag
}

func (r *BagReporter) Report(d Diagnostic) {
	if r == nil || r.Bag == nil {
		return
	}
	r.Bag.Add(d)
}

// NopReporter drops every diagnostic.
type NopReporter struct{}

func (NopReporter) Report(Diagnostic) {}

// ReportError emits an error-severity diagnostic and returns it wrapped
// as an error so builders can fail fast with the same record.
func ReportError(r Reporter, code Code, primary source.Span, msg string) error {
	d := Diagnostic{Severity: SevError, Code: code, Message: msg, Primary: primary}
	if r != nil {
		r.Report(d)
	}
	return AsError(d)
}

// ReportWarning emits a warning-severity diagnostic.
func ReportWarning(r Reporter, code Code, primary source.Span, msg string) {
	if r == nil {
		return
	}
	r.Report(Diagnostic{Severity: SevWarning, Code: code, Message: msg, Primary: primary})
}
