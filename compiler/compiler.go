// Package compiler is the driver: it sequences the lexer, parser, and the
// two semantic passes, and hands the result to the code generator,
// mirroring the order the teacher's own top-level compile() function runs
// its stages in.
package compiler

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/aslcompiler/aslc/ast"
	"github.com/aslcompiler/aslc/codegen"
	"github.com/aslcompiler/aslc/diag"
	"github.com/aslcompiler/aslc/ir"
	"github.com/aslcompiler/aslc/lexer"
	"github.com/aslcompiler/aslc/parser"
	"github.com/aslcompiler/aslc/sema"
	"github.com/aslcompiler/aslc/token"
)

// Result bundles everything a single compilation produces.
type Result struct {
	Program     *ast.Program
	IR          *ir.Program
	Diagnostics []diag.Diagnostic
}

// Tokenize runs only the lexer, for tooling that wants to inspect the
// token stream in isolation (the CLI's "tokens" subcommand).
func Tokenize(r io.Reader) ([]token.Token, error) {
	return lexer.New().Tokenize(r)
}

// Parse runs the lexer and parser and returns the resulting tree. It
// returns an error only for a lexical or syntax error; syntax is checked
// before any semantic pass runs.
func Parse(r io.Reader) (*ast.Program, error) {
	toks, err := lexer.New().Tokenize(r)
	if err != nil {
		return nil, fmt.Errorf("compiler: %w", err)
	}
	prog, err := parser.New(toks).Parse()
	if err != nil {
		return nil, fmt.Errorf("compiler: %w", err)
	}
	return prog, nil
}

// Check runs the full front end (lex, parse, collect, type-check) without
// generating code, for the CLI's "check" subcommand.
func Check(r io.Reader) (*ast.Program, []diag.Diagnostic, error) {
	prog, err := Parse(r)
	if err != nil {
		return nil, nil, err
	}
	ctx := sema.NewContext()
	slog.Debug("collecting symbols")
	sema.CollectSymbols(ctx, prog)
	slog.Debug("type-checking")
	sema.CheckTypes(ctx, prog)
	return prog, ctx.Errors.Diagnostics(), nil
}

// Compile runs every pass through code generation. A non-nil error means
// the source could not be lexed or parsed, not a rejected program: a
// program with semantic errors returns a Result with a non-empty
// Diagnostics slice, a nil IR, and a nil error. Both semantic passes
// always run; code generation is skipped for a rejected program, since its
// output for such a program would be undefined.
func Compile(r io.Reader) (*Result, error) {
	prog, err := Parse(r)
	if err != nil {
		return nil, err
	}

	ctx := sema.NewContext()

	slog.Debug("collecting symbols")
	sema.CollectSymbols(ctx, prog)

	slog.Debug("type-checking")
	sema.CheckTypes(ctx, prog)

	diags := ctx.Errors.Diagnostics()
	result := &Result{Program: prog, Diagnostics: diags}
	if len(diags) > 0 {
		slog.Debug("rejected program", "diagnostics", len(diags))
		return result, nil
	}

	slog.Debug("generating code")
	result.IR = codegen.Generate(ctx, prog)
	return result, nil
}
