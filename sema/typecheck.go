package sema

import (
	"github.com/aslcompiler/aslc/ast"
	"github.com/aslcompiler/aslc/diag"
	"github.com/aslcompiler/aslc/types"
)

// CheckTypes is the second tree pass: it re-enters every scope by the id
// recorded during collection, computes a type and l-value flag for every
// expression and left-expression, and validates every statement form.
func CheckTypes(ctx *Context, prog *ast.Program) {
	global := ctx.Decor.GetScope(prog)
	ctx.Symbols.PushThisScope(global)

	for _, fn := range prog.Functions {
		checkFunction(ctx, fn)
	}
	if ctx.Symbols.NoMainProperlyDeclared(ctx.Types) {
		ctx.Errors.Report(diag.NoMainProperlyDeclared, prog, "no properly declared parameterless, Void-returning \"main\" function")
	}

	ctx.Symbols.PopScope()
}

func checkFunction(ctx *Context, fn *ast.Function) {
	scope := ctx.Decor.GetScope(fn)
	ctx.Symbols.PushThisScope(scope)

	funcType := ctx.Decor.GetType(fn)
	checkStatements(ctx, fn.Body, funcType)

	ctx.Symbols.PopScope()
}

func checkStatements(ctx *Context, stmts *ast.Statements, funcType types.ID) {
	for _, s := range stmts.List {
		checkStatement(ctx, s, funcType)
	}
}

func checkStatement(ctx *Context, s ast.Statement, funcType types.ID) {
	switch st := s.(type) {
	case *ast.AssignStmt:
		checkAssignStmt(ctx, st)
	case *ast.IfStmt:
		checkIfStmt(ctx, st, funcType)
	case *ast.WhileStmt:
		checkWhileStmt(ctx, st, funcType)
	case *ast.ReadStmt:
		checkReadStmt(ctx, st)
	case *ast.WriteExprStmt:
		checkWriteExprStmt(ctx, st)
	case *ast.WriteStringStmt:
		// nothing to check; the literal text is opaque to the type checker.
	case *ast.ProcCallStmt:
		checkCall(ctx, st.Call, false)
	case *ast.ReturnStmt:
		checkReturnStmt(ctx, st, funcType)
	case *ast.SwapStmt:
		checkSwapStmt(ctx, st)
	case *ast.SwitchStmt:
		checkSwitchStmt(ctx, st, funcType)
	default:
		panic("sema: unknown statement kind")
	}
}

func checkAssignStmt(ctx *Context, s *ast.AssignStmt) {
	leftType := checkLeftExpr(ctx, s.Left)
	rightType := checkExpr(ctx, s.Value)

	if !ctx.Decor.GetIsLValue(s.Left) {
		ctx.Errors.Report(diag.NonReferenceableLeftExpr, s.Left, "left side of assignment is not referenceable")
	}
	if !ctx.Types.IsError(leftType) && !ctx.Types.IsError(rightType) && !ctx.Types.Copyable(leftType, rightType) {
		ctx.Errors.Report(diag.IncompatibleAssignment, s, "cannot assign %s to %s", ctx.Types.ToString(rightType), ctx.Types.ToString(leftType))
	}
}

func checkIfStmt(ctx *Context, s *ast.IfStmt, funcType types.ID) {
	condType := checkExpr(ctx, s.Cond)
	if !ctx.Types.IsError(condType) && !ctx.Types.IsBoolean(condType) {
		ctx.Errors.Report(diag.BooleanRequired, s.Cond, "if condition must be Boolean")
	}
	checkStatements(ctx, s.Then, funcType)
	if s.Else != nil {
		checkStatements(ctx, s.Else, funcType)
	}
}

func checkWhileStmt(ctx *Context, s *ast.WhileStmt, funcType types.ID) {
	condType := checkExpr(ctx, s.Cond)
	if !ctx.Types.IsError(condType) && !ctx.Types.IsBoolean(condType) {
		ctx.Errors.Report(diag.BooleanRequired, s.Cond, "while condition must be Boolean")
	}
	checkStatements(ctx, s.Body, funcType)
}

func checkReadStmt(ctx *Context, s *ast.ReadStmt) {
	targetType := checkLeftExpr(ctx, s.Target)
	if !ctx.Decor.GetIsLValue(s.Target) {
		ctx.Errors.Report(diag.NonReferenceableExpression, s.Target, "read target is not referenceable")
	}
	if !ctx.Types.IsError(targetType) && !ctx.Types.IsPrimitive(targetType) {
		ctx.Errors.Report(diag.ReadWriteRequireBasic, s.Target, "read target must have a primitive type")
	}
}

func checkWriteExprStmt(ctx *Context, s *ast.WriteExprStmt) {
	t := checkExpr(ctx, s.Value)
	if !ctx.Types.IsError(t) && !ctx.Types.IsPrimitive(t) {
		ctx.Errors.Report(diag.ReadWriteRequireBasic, s.Value, "written value must have a primitive type")
	}
}

func checkReturnStmt(ctx *Context, s *ast.ReturnStmt, funcType types.ID) {
	retType := ctx.Types.CreateVoid()
	if s.Value != nil {
		retType = checkExpr(ctx, s.Value)
	}
	want := ctx.Types.GetFuncReturnType(funcType)
	if !ctx.Types.IsError(retType) && !ctx.Types.Copyable(want, retType) {
		ctx.Errors.Report(diag.IncompatibleReturn, s, "cannot return %s from a function returning %s", ctx.Types.ToString(retType), ctx.Types.ToString(want))
	}
}

// checkSwapStmt rejects indexed operands rather than silently dropping the
// store-back the original's incomplete lowering does for that case.
func checkSwapStmt(ctx *Context, s *ast.SwapStmt) {
	leftType := checkLeftExpr(ctx, s.Left)
	rightType := checkLeftExpr(ctx, s.Right)

	if s.Left.Index != nil || s.Right.Index != nil {
		ctx.Errors.Report(diag.IncompatibleArgumentsInSwap, s, "swap does not support indexed operands")
		return
	}
	if !ctx.Types.IsError(leftType) && (ctx.Types.IsArray(leftType) || ctx.Types.IsArray(rightType)) {
		ctx.Errors.Report(diag.IncompatibleArgumentsInSwap, s, "swap does not support whole-array operands")
		return
	}
	if !ctx.Types.IsError(leftType) && !ctx.Types.IsError(rightType) && !ctx.Types.EqualTypes(leftType, rightType) {
		ctx.Errors.Report(diag.IncompatibleArgumentsInSwap, s, "swap operands must have identical types")
	}
}

func checkSwitchStmt(ctx *Context, s *ast.SwitchStmt, funcType types.ID) {
	subjectType := checkExpr(ctx, s.Subject)
	for _, c := range s.Cases {
		caseType := checkExpr(ctx, c.Value)
		if !ctx.Types.IsError(subjectType) && !ctx.Types.IsError(caseType) && !ctx.Types.Comparable(subjectType, caseType, "=") {
			ctx.Errors.Report(diag.IncompatibleValueInSwitch, c, "case value is not comparable to the switch subject")
		}
		checkStatements(ctx, c.Body, funcType)
	}
	if s.Default != nil {
		checkStatements(ctx, s.Default, funcType)
	}
}

// checkLeftExpr resolves a left-expression's type and always marks it an
// l-value, per the component design (left-expressions are always l-value
// positions, independent of what they resolve to).
func checkLeftExpr(ctx *Context, le *ast.LeftExpr) types.ID {
	baseType, ok := ctx.Symbols.GetType(le.Name)
	if !ok {
		ctx.Errors.Report(diag.UndeclaredIdent, le, "undeclared identifier %q", le.Name)
		baseType = ctx.Types.CreateError()
	}

	var resultType types.ID
	if le.Index == nil {
		resultType = baseType
	} else {
		switch {
		case ctx.Types.IsError(baseType):
			resultType = ctx.Types.CreateError()
		case ctx.Types.IsArray(baseType):
			resultType = ctx.Types.GetArrayElemType(baseType)
		default:
			ctx.Errors.Report(diag.NonArrayInArrayAccess, le, "%q is not an array", le.Name)
			resultType = ctx.Types.CreateError()
		}
		idxType := checkExpr(ctx, le.Index)
		if !ctx.Types.IsError(idxType) && !ctx.Types.IsInteger(idxType) {
			ctx.Errors.Report(diag.NonIntegerIndexInArrayAccess, le, "array index must be Integer")
		}
	}

	ctx.Decor.PutType(le, resultType)
	ctx.Decor.PutIsLValue(le, true)
	return resultType
}

// checkExpr resolves e's type and l-value flag, recording both as
// decorations, and returns the type for the caller's convenience.
func checkExpr(ctx *Context, e ast.Expr) types.ID {
	switch ex := e.(type) {
	case *ast.Literal:
		return checkLiteral(ctx, ex)
	case *ast.Ident:
		return checkIdent(ctx, ex)
	case *ast.ParenExpr:
		return checkParenExpr(ctx, ex)
	case *ast.ArrayIndexExpr:
		return checkArrayIndexExpr(ctx, ex)
	case *ast.UnaryExpr:
		return checkUnaryExpr(ctx, ex)
	case *ast.BinaryExpr:
		return checkBinaryExpr(ctx, ex)
	case *ast.CallExpr:
		return checkCall(ctx, ex, true)
	default:
		panic("sema: unknown expression kind")
	}
}

func checkLiteral(ctx *Context, lit *ast.Literal) types.ID {
	var t types.ID
	switch lit.Kind {
	case ast.IntLit:
		t = ctx.Types.CreatePrimitive(types.Integer)
	case ast.FloatLit:
		t = ctx.Types.CreatePrimitive(types.Float)
	case ast.CharLit:
		t = ctx.Types.CreatePrimitive(types.Character)
	case ast.BoolLit:
		t = ctx.Types.CreatePrimitive(types.Boolean)
	}
	ctx.Decor.PutType(lit, t)
	ctx.Decor.PutIsLValue(lit, false)
	return t
}

// checkIdent marks an undeclared name an l-value (type Error) so it does
// not trip NonReferenceableLeftExpr on the left of an assignment, avoiding
// a second cascaded diagnostic on top of UndeclaredIdent.
func checkIdent(ctx *Context, id *ast.Ident) types.ID {
	t, ok := ctx.Symbols.GetType(id.Name)
	lvalue := true
	if !ok {
		ctx.Errors.Report(diag.UndeclaredIdent, id, "undeclared identifier %q", id.Name)
		t = ctx.Types.CreateError()
	} else {
		lvalue = !ctx.Symbols.IsFunctionClass(id.Name)
	}
	ctx.Decor.PutType(id, t)
	ctx.Decor.PutIsLValue(id, lvalue)
	return t
}

func checkParenExpr(ctx *Context, p *ast.ParenExpr) types.ID {
	t := checkExpr(ctx, p.Inner)
	ctx.Decor.PutType(p, t)
	ctx.Decor.PutIsLValue(p, false)
	return t
}

func checkArrayIndexExpr(ctx *Context, a *ast.ArrayIndexExpr) types.ID {
	baseType := checkExpr(ctx, a.Array)

	var resultType types.ID
	switch {
	case ctx.Types.IsError(baseType):
		resultType = ctx.Types.CreateError()
	case ctx.Types.IsArray(baseType):
		resultType = ctx.Types.GetArrayElemType(baseType)
	default:
		ctx.Errors.Report(diag.NonArrayInArrayAccess, a, "indexed value is not an array")
		resultType = ctx.Types.CreateError()
	}

	idxType := checkExpr(ctx, a.Index)
	if !ctx.Types.IsError(idxType) && !ctx.Types.IsInteger(idxType) {
		ctx.Errors.Report(diag.NonIntegerIndexInArrayAccess, a, "array index must be Integer")
	}

	lvalue := ctx.Decor.GetIsLValue(a.Array)
	ctx.Decor.PutType(a, resultType)
	ctx.Decor.PutIsLValue(a, lvalue)
	return resultType
}

func checkUnaryExpr(ctx *Context, u *ast.UnaryExpr) types.ID {
	operandType := checkExpr(ctx, u.Operand)
	var result types.ID

	switch u.Op {
	case ast.UnaryNot:
		if ctx.Types.IsError(operandType) {
			result = ctx.Types.CreateError()
		} else if !ctx.Types.IsBoolean(operandType) {
			ctx.Errors.Report(diag.IncompatibleOperator, u, "! requires a Boolean operand")
			result = ctx.Types.CreateError()
		} else {
			result = ctx.Types.CreatePrimitive(types.Boolean)
		}
	default: // UnaryPlus, UnaryMinus
		if ctx.Types.IsError(operandType) {
			result = ctx.Types.CreateError()
		} else if !ctx.Types.IsNumeric(operandType) {
			ctx.Errors.Report(diag.IncompatibleOperator, u, "unary +/- requires a numeric operand")
			result = ctx.Types.CreatePrimitive(types.Integer)
		} else {
			result = operandType
		}
	}

	ctx.Decor.PutType(u, result)
	ctx.Decor.PutIsLValue(u, false)
	return result
}

func checkBinaryExpr(ctx *Context, b *ast.BinaryExpr) types.ID {
	leftType := checkExpr(ctx, b.Left)
	rightType := checkExpr(ctx, b.Right)

	var result types.ID
	switch b.Op {
	case ast.OpAdd, ast.OpSub, ast.OpMul, ast.OpDiv, ast.OpMod:
		result = checkArithmetic(ctx, b, leftType, rightType)
	case ast.OpEq, ast.OpNe, ast.OpLt, ast.OpLe, ast.OpGt, ast.OpGe:
		result = checkRelational(ctx, b, leftType, rightType)
	case ast.OpAnd, ast.OpOr:
		result = checkBooleanOp(ctx, b, leftType, rightType)
	default:
		panic("sema: unknown binary operator")
	}

	ctx.Decor.PutType(b, result)
	ctx.Decor.PutIsLValue(b, false)
	return result
}

func checkArithmetic(ctx *Context, b *ast.BinaryExpr, leftType, rightType types.ID) types.ID {
	if ctx.Types.IsError(leftType) || ctx.Types.IsError(rightType) {
		return ctx.Types.CreateError()
	}
	if !ctx.Types.IsNumeric(leftType) || !ctx.Types.IsNumeric(rightType) {
		ctx.Errors.Report(diag.IncompatibleOperator, b, "arithmetic operator requires numeric operands")
		return ctx.Types.CreateError()
	}
	isFloat := ctx.Types.IsFloat(leftType) || ctx.Types.IsFloat(rightType)
	if b.Op == ast.OpMod && isFloat {
		ctx.Errors.Report(diag.IncompatibleOperator, b, "mod does not accept Float operands")
		return ctx.Types.CreateError()
	}
	if isFloat {
		return ctx.Types.CreatePrimitive(types.Float)
	}
	return ctx.Types.CreatePrimitive(types.Integer)
}

func checkRelational(ctx *Context, b *ast.BinaryExpr, leftType, rightType types.ID) types.ID {
	op := "<"
	if b.Op == ast.OpEq {
		op = "="
	} else if b.Op == ast.OpNe {
		op = "!="
	}
	if !ctx.Types.IsError(leftType) && !ctx.Types.IsError(rightType) && !ctx.Types.Comparable(leftType, rightType, op) {
		ctx.Errors.Report(diag.IncompatibleOperator, b, "operands are not comparable")
	}
	return ctx.Types.CreatePrimitive(types.Boolean)
}

func checkBooleanOp(ctx *Context, b *ast.BinaryExpr, leftType, rightType types.ID) types.ID {
	if !ctx.Types.IsError(leftType) && !ctx.Types.IsError(rightType) &&
		!(ctx.Types.IsBoolean(leftType) && ctx.Types.IsBoolean(rightType)) {
		ctx.Errors.Report(diag.IncompatibleOperator, b, "and/or require Boolean operands")
	}
	return ctx.Types.CreatePrimitive(types.Boolean)
}

// checkCall implements the shared call-checking logic for both call
// expressions (requireNonVoid=true) and procedure-call statements
// (requireNonVoid=false, no return-type constraint).
func checkCall(ctx *Context, call *ast.CallExpr, requireNonVoid bool) types.ID {
	result := checkCallType(ctx, call, requireNonVoid)
	ctx.Decor.PutType(call, result)
	ctx.Decor.PutIsLValue(call, false)
	return result
}

func checkCallType(ctx *Context, call *ast.CallExpr, requireNonVoid bool) types.ID {
	argTypes := make([]types.ID, len(call.Args))
	for i, a := range call.Args {
		argTypes[i] = checkExpr(ctx, a)
	}

	calleeType, ok := ctx.Symbols.GetType(call.Name)
	if !ok {
		ctx.Errors.Report(diag.UndeclaredIdent, call, "undeclared identifier %q", call.Name)
		return ctx.Types.CreateError()
	}
	if !ctx.Types.IsFunction(calleeType) {
		if !ctx.Types.IsError(calleeType) {
			ctx.Errors.Report(diag.IsNotCallable, call, "%q is not callable", call.Name)
		}
		return ctx.Types.CreateError()
	}
	if requireNonVoid && ctx.Types.IsVoid(ctx.Types.GetFuncReturnType(calleeType)) {
		ctx.Errors.Report(diag.IsNotFunction, call, "%q does not return a value", call.Name)
	}

	n := ctx.Types.GetNumOfParameters(calleeType)
	if n != len(argTypes) {
		ctx.Errors.Report(diag.NumberOfParameters, call, "%q expects %d argument(s), got %d", call.Name, n, len(argTypes))
	}
	for i := 0; i < n && i < len(argTypes); i++ {
		paramType := ctx.Types.GetParameterType(calleeType, i)
		argType := argTypes[i]
		if ctx.Types.IsError(argType) {
			continue
		}
		if !(ctx.Types.EqualTypes(paramType, argType) || (ctx.Types.IsFloat(paramType) && ctx.Types.IsInteger(argType))) {
			ctx.Errors.Report(diag.IncompatibleParameter, call, "argument %d of %q has an incompatible type", i+1, call.Name)
		}
	}

	if requireNonVoid {
		return ctx.Types.GetFuncReturnType(calleeType)
	}
	return ctx.Types.CreateVoid()
}
