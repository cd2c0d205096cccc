// Package sema implements the symbol-collection and type-checking passes
// over an ast.Program, sharing a Context rather than the process-wide
// globals the original visitors relied on.
package sema

import (
	"github.com/aslcompiler/aslc/decor"
	"github.com/aslcompiler/aslc/diag"
	"github.com/aslcompiler/aslc/symtab"
	"github.com/aslcompiler/aslc/types"
)

// Context bundles the three process-wide tables the passes share, so they
// are passed explicitly instead of living as package-level state.
type Context struct {
	Types   *types.Manager
	Symbols *symtab.Table
	Decor   *decor.Store
	Errors  *diag.Reporter
}

// NewContext returns a Context with fresh, empty tables.
func NewContext() *Context {
	return &Context{
		Types:   types.NewManager(),
		Symbols: symtab.New(),
		Decor:   decor.New(),
		Errors:  diag.New(),
	}
}
