package sema

import (
	"github.com/aslcompiler/aslc/ast"
	"github.com/aslcompiler/aslc/diag"
	"github.com/aslcompiler/aslc/types"
)

// CollectSymbols is the first tree pass: it builds lexical scopes, records
// function signatures, parameters, and locals, and attaches scope and type
// decorations along the way. It never rejects a program on its own type
// errors (there are none to find here); it only reports DeclaredIdent on
// name collisions.
func CollectSymbols(ctx *Context, prog *ast.Program) {
	global := ctx.Symbols.GlobalScope()
	ctx.Symbols.PushThisScope(global)
	ctx.Decor.PutScope(prog, global)
	for _, fn := range prog.Functions {
		collectFunction(ctx, fn)
	}
	ctx.Symbols.PopScope()
}

func collectFunction(ctx *Context, fn *ast.Function) {
	scope := ctx.Symbols.PushNewScope(fn.Name)
	ctx.Decor.PutScope(fn, scope)

	paramTypes := make([]types.ID, 0, len(fn.Params))
	for _, param := range fn.Params {
		paramTypes = append(paramTypes, collectParamDecl(ctx, param))
	}
	for _, decl := range fn.Decls {
		collectVarDecl(ctx, decl)
	}

	ctx.Symbols.PopScope()

	retType := ctx.Types.CreateVoid()
	if fn.RetType != nil {
		retType = typeExprType(ctx, fn.RetType)
	}
	funcType := ctx.Types.CreateFunction(paramTypes, retType)
	ctx.Decor.PutType(fn, funcType)

	if ctx.Symbols.FindInCurrentScope(fn.Name) {
		ctx.Errors.Report(diag.DeclaredIdent, fn, "function %q already declared", fn.Name)
		return
	}
	if err := ctx.Symbols.AddFunction(fn.Name, funcType); err != nil {
		ctx.Errors.Report(diag.DeclaredIdent, fn, "%s", err)
	}
}

func collectParamDecl(ctx *Context, param *ast.ParamDecl) types.ID {
	t := typeExprType(ctx, param.Type)
	if ctx.Symbols.FindInCurrentScope(param.Name) {
		ctx.Errors.Report(diag.DeclaredIdent, param, "parameter %q already declared", param.Name)
	} else if err := ctx.Symbols.AddParameter(param.Name, t); err != nil {
		ctx.Errors.Report(diag.DeclaredIdent, param, "%s", err)
	}
	ctx.Decor.PutType(param, t)
	return t
}

func collectVarDecl(ctx *Context, decl *ast.VarDecl) {
	t := typeExprType(ctx, decl.Type)
	for _, name := range decl.Names {
		if ctx.Symbols.FindInCurrentScope(name) {
			ctx.Errors.Report(diag.DeclaredIdent, decl, "variable %q already declared", name)
			continue
		}
		if err := ctx.Symbols.AddLocalVar(name, t); err != nil {
			ctx.Errors.Report(diag.DeclaredIdent, decl, "%s", err)
		}
	}
	ctx.Decor.PutType(decl, t)
}

// typeExprType resolves a syntactic type to its interned representative,
// decorating the type-expression node itself along the way.
func typeExprType(ctx *Context, te ast.TypeExpr) types.ID {
	switch t := te.(type) {
	case *ast.BasicTypeExpr:
		var id types.ID
		switch t.Kind {
		case ast.TypeInt:
			id = ctx.Types.CreatePrimitive(types.Integer)
		case ast.TypeFloat:
			id = ctx.Types.CreatePrimitive(types.Float)
		case ast.TypeBool:
			id = ctx.Types.CreatePrimitive(types.Boolean)
		case ast.TypeChar:
			id = ctx.Types.CreatePrimitive(types.Character)
		}
		ctx.Decor.PutType(t, id)
		return id
	case *ast.ArrayTypeExpr:
		elem := typeExprType(ctx, t.Elem)
		id := ctx.Types.CreateArray(t.Size, elem)
		ctx.Decor.PutType(t, id)
		return id
	default:
		panic("sema: unknown TypeExpr")
	}
}
