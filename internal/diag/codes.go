package diag

import (
	"fmt"
)

// Code is a stable numeric diagnostic identifier.
type Code uint16

const (
	UnknownCode Code = 0

	// Name resolution (3000-3099)
	NameUnresolved Code = 3000
	NameDuplicate  Code = 3001
	NameAmbiguous  Code = 3002
	GlobalNotConst Code = 3003

	// Types (3100-3199)
	TypeMismatch      Code = 3100
	TypeUnknownName   Code = 3101
	TypeBadOperator   Code = 3102
	TypeWrongArgCount Code = 3103
	TypeNotCallable   Code = 3104
	TypeBadField      Code = 3105
	TypeNotIndexable  Code = 3106
	TypeNotAssignable Code = 3107

	// Control flow (4000-4099)
	CtrlBreakOutsideLoop    Code = 4000
	CtrlContinueOutsideLoop Code = 4001
	CtrlDuplicateEntryPoint Code = 4002
	CtrlUnreachableCode     Code = 4003
	CtrlMissingReturn       Code = 4004

	// Internal invariant violations (9000-9099). Raised only by the
	// HIR/MIR validators; always a builder defect, never a user error.
	IceHirUnresolvedName   Code = 9000
	IceHirUnknownType      Code = 9001
	IceHirLoweringLeftover Code = 9002
	IceMirUnterminated     Code = 9010
	IceMirBadTarget        Code = 9011
	IceMirOrphanBlock      Code = 9012
	IceMirAggregate        Code = 9013
	IceMirBadLocal         Code = 9014
	IceMirBadEntry         Code = 9015
)

var codeDescription = map[Code]string{
	UnknownCode: "Unknown error",

	NameUnresolved: "Unresolved name",
	NameDuplicate:  "Duplicate declaration",
	NameAmbiguous:  "Ambiguous name",
	GlobalNotConst: "Global initializer must be a constant",

	TypeMismatch:      "Type mismatch",
	TypeUnknownName:   "Unknown type name",
	TypeBadOperator:   "Invalid operator for operand types",
	TypeWrongArgCount: "Wrong number of arguments",
	TypeNotCallable:   "Not a function",
	TypeBadField:      "Unknown field",
	TypeNotIndexable:  "Not an indexable value",
	TypeNotAssignable: "Cannot assign to immutable binding",

	CtrlBreakOutsideLoop:    "break outside of a loop",
	CtrlContinueOutsideLoop: "continue outside of a loop",
	CtrlDuplicateEntryPoint: "Multiple eligible entry points",
	CtrlUnreachableCode:     "Unreachable code",
	CtrlMissingReturn:       "Missing return in function",

	IceHirUnresolvedName:   "HIR invariant: unresolved reference survived lowering",
	IceHirUnknownType:      "HIR invariant: placeholder type survived inference",
	IceHirLoweringLeftover: "HIR invariant: AST-only node survived lowering",
	IceMirUnterminated:     "MIR invariant: block without terminator",
	IceMirBadTarget:        "MIR invariant: terminator target does not exist",
	IceMirOrphanBlock:      "MIR invariant: unreachable orphan block",
	IceMirAggregate:        "MIR invariant: aggregate rvalue survived decomposition",
	IceMirBadLocal:         "MIR invariant: undeclared local referenced",
	IceMirBadEntry:         "MIR invariant: entry block or entry point missing",
}

// ID renders the band-prefixed stable identifier, e.g. SEM3100 or ICE9010.
func (c Code) ID() string {
	switch ic := int(c); {
	case ic >= 3000 && ic < 4000:
		return fmt.Sprintf("SEM%04d", ic)
	case ic >= 4000 && ic < 5000:
		return fmt.Sprintf("CTL%04d", ic)
	case ic >= 9000 && ic < 10000:
		return fmt.Sprintf("ICE%04d", ic)
	}
	return "E0000"
}

func (c Code) Title() string {
	desc, ok := codeDescription[c]
	if !ok {
		return codeDescription[UnknownCode]
	}
	return desc
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}

// Internal reports whether the code denotes a compiler-internal invariant
// violation rather than a user-facing diagnostic.
func (c Code) Internal() bool {
	return c >= 9000 && c < 10000
}
