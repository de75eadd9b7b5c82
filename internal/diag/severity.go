package diag

// Severity ranks a diagnostic from informational to fatal.
type Severity uint8

const (
	// SevInfo carries supplementary context, never a defect.
	SevInfo Severity = iota
	// SevWarning flags suspect code that still compiles.
	SevWarning
	// SevError marks a defect that fails the compilation.
	SevError
)

func (s Severity) String() string {
	switch s {
	case SevInfo:
		return "INFO"
	case SevWarning:
		return "WARNING"
	case SevError:
		return "ERROR"
	}
	return "UNKNOWN"
}
