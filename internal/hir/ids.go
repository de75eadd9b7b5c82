// Package hir provides the High-level Intermediate Representation.
//
// HIR sits between the AST and MIR. It is fully name-resolved and typed:
// every identifier reference carries the LocalID of its declaration and
// every expression carries a concrete TypeID. Structured control flow
// (if/while/for/match) is preserved; lowering it to basic blocks is MIR's
// job.
//
// HIR is the input for:
//   - invariant validation before MIR lowering
//   - JSON serialization for persistence and bootstrap comparison
//   - human-readable dumps for debugging
package hir

// LocalID identifies a binding (parameter or local) within a function.
// It indexes Func.Locals directly; parameters occupy the first slots.
type LocalID int32

// NoLocalID marks an unresolved reference. A completed module must not
// contain one; the validator flags any occurrence.
const NoLocalID LocalID = -1

// IsValid returns true for a resolved id.
func (id LocalID) IsValid() bool { return id >= 0 }
