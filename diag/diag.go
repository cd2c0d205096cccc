// Package diag is the Error Reporter: an append-only log of user-visible
// semantic diagnostics, keyed by the offending tree node, printed in
// deterministic (source) order.
package diag

import (
	"fmt"
	"io"
	"sort"

	"github.com/aslcompiler/aslc/ast"
)

// Kind enumerates every diagnostic the type checker can emit.
type Kind int

const (
	DeclaredIdent Kind = iota
	UndeclaredIdent
	NonReferenceableLeftExpr
	IncompatibleAssignment
	BooleanRequired
	ReadWriteRequireBasic
	NonReferenceableExpression
	IncompatibleReturn
	IncompatibleArgumentsInSwap
	IncompatibleValueInSwitch
	NonArrayInArrayAccess
	NonIntegerIndexInArrayAccess
	IncompatibleOperator
	IsNotCallable
	IsNotFunction
	NumberOfParameters
	IncompatibleParameter
	NoMainProperlyDeclared
)

var kindNames = map[Kind]string{
	DeclaredIdent:                "DeclaredIdent",
	UndeclaredIdent:              "UndeclaredIdent",
	NonReferenceableLeftExpr:     "NonReferenceableLeftExpr",
	IncompatibleAssignment:       "IncompatibleAssignment",
	BooleanRequired:              "BooleanRequired",
	ReadWriteRequireBasic:        "ReadWriteRequireBasic",
	NonReferenceableExpression:   "NonReferenceableExpression",
	IncompatibleReturn:           "IncompatibleReturn",
	IncompatibleArgumentsInSwap:  "IncompatibleArgumentsInSwap",
	IncompatibleValueInSwitch:    "IncompatibleValueInSwitch",
	NonArrayInArrayAccess:        "NonArrayInArrayAccess",
	NonIntegerIndexInArrayAccess: "NonIntegerIndexInArrayAccess",
	IncompatibleOperator:         "IncompatibleOperator",
	IsNotCallable:                "IsNotCallable",
	IsNotFunction:                "IsNotFunction",
	NumberOfParameters:           "NumberOfParameters",
	IncompatibleParameter:        "IncompatibleParameter",
	NoMainProperlyDeclared:       "NoMainProperlyDeclared",
}

func (k Kind) String() string {
	if n, ok := kindNames[k]; ok {
		return n
	}
	return "Unknown"
}

// Diagnostic is one reported error: a kind, the node it was raised against,
// and a human-readable message.
type Diagnostic struct {
	Kind    Kind
	Node    ast.Node
	Message string
}

// Reporter accumulates diagnostics in the order they are reported, which
// for a single left-to-right tree walk is already source order.
type Reporter struct {
	diags []Diagnostic
}

// New returns an empty Reporter.
func New() *Reporter { return &Reporter{} }

// Report appends one diagnostic.
func (r *Reporter) Report(kind Kind, n ast.Node, format string, args ...any) {
	r.diags = append(r.diags, Diagnostic{Kind: kind, Node: n, Message: fmt.Sprintf(format, args...)})
}

// Empty reports whether no diagnostic has been reported. Per the external
// interface contract, a compilation succeeds iff the reporter is empty
// after the type-checking pass.
func (r *Reporter) Empty() bool { return len(r.diags) == 0 }

// Diagnostics returns the accumulated diagnostics in report order.
func (r *Reporter) Diagnostics() []Diagnostic {
	return r.diags
}

// Print renders every diagnostic to w in source order, one per line:
// sorted by line, with diagnostics on the same line kept in report order.
func (r *Reporter) Print(w io.Writer) {
	sorted := make([]Diagnostic, len(r.diags))
	copy(sorted, r.diags)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Node.Line() < sorted[j].Node.Line() })
	for _, d := range sorted {
		fmt.Fprintf(w, "line %d: %s: %s\n", d.Node.Line(), d.Kind, d.Message)
	}
}
