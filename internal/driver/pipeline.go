// Package driver orchestrates the compilation pipeline: HIR building
// and validation, MIR lowering and validation, and the artifacts around
// them (parallel unit loading, disk caching). Stages hand over only
// validated IR; a failed stage stops the pipeline with its diagnostics.
package driver

import (
	"fmt"

	"mica/internal/ast"
	"mica/internal/diag"
	"mica/internal/hir"
	"mica/internal/mir"
	"mica/internal/source"
)

// DefaultMaxDiagnostics bounds how many diagnostics one invocation
// collects before the bag stops accepting.
const DefaultMaxDiagnostics = 100

// Options configure one pipeline invocation.
type Options struct {
	// MaxDiagnostics caps the bag size; 0 means DefaultMaxDiagnostics.
	MaxDiagnostics int
	// Jobs bounds parallel unit loading; 0 means GOMAXPROCS.
	Jobs int
	// Cache, when set, short-circuits recompilation of unchanged inputs.
	Cache *DiskCache
}

func (o Options) maxDiagnostics() int {
	if o.MaxDiagnostics <= 0 {
		return DefaultMaxDiagnostics
	}
	return o.MaxDiagnostics
}

// Result carries the outcome of one pipeline invocation. MIR is nil
// when any stage failed; Bag always holds the collected diagnostics.
// Files is set when the inputs came from disk and lets callers resolve
// diagnostic spans to positions.
type Result struct {
	HIR   []*hir.Module
	MIR   *mir.Module
	Bag   *diag.Bag
	Files *source.FileSet
}

// Compile runs the full pipeline over one AST program.
func Compile(prog *ast.Program, opts Options) (*Result, error) {
	return CompileUnits([]*ast.Program{prog}, opts)
}

// CompileUnits lowers each program to HIR, validates it, then links and
// lowers all units to one MIR module and validates that. The first user
// error aborts with partial diagnostics in Result.Bag; an invariant
// violation surfaces as an internal compiler error.
func CompileUnits(progs []*ast.Program, opts Options) (*Result, error) {
	res := &Result{Bag: diag.NewBag(opts.maxDiagnostics())}
	reporter := &diag.BagReporter{Bag: res.Bag}

	for _, prog := range progs {
		unit, err := hir.LowerProgram(prog, reporter)
		if err != nil {
			return res, err
		}
		res.HIR = append(res.HIR, unit)
	}
	return res, linkUnits(res, reporter)
}

// LinkHIR runs the back half of the pipeline over already-built HIR
// units, as the CLI does when it consumes serialized interchange files.
func LinkHIR(units []*hir.Module, opts Options) (*Result, error) {
	res := &Result{HIR: units, Bag: diag.NewBag(opts.maxDiagnostics())}
	return res, linkUnits(res, &diag.BagReporter{Bag: res.Bag})
}

func linkUnits(res *Result, reporter diag.Reporter) error {
	for _, unit := range res.HIR {
		if err := hir.ValidateInvariants(unit); err != nil {
			return fmt.Errorf("validating unit %q: %w", unit.Name, err)
		}
	}
	m, err := mir.LowerModules(res.HIR, reporter)
	if err != nil {
		return err
	}
	if err := mir.Validate(m); err != nil {
		return err
	}
	res.MIR = m
	return nil
}
