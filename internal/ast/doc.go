// Package ast defines the tree handed to the HIR builder by the front
// end. The pipeline treats it as read-only input: nodes are never
// mutated after construction, and the builder takes no ownership beyond
// the duration of one lowering call.
//
// The shapes here are the contract with the external lexer/parser; the
// pipeline assumes a syntactically valid tree and performs no syntax
// recovery of its own.
package ast
