// Package codegen is the Code Generator: the third tree pass, lowering a
// type-checked ast.Program into a three-address ir.Program. It assumes the
// program was accepted by sema.CheckTypes with no diagnostics; its output
// for a rejected program is undefined, per the component's contract.
package codegen

import (
	"fmt"

	"github.com/aslcompiler/aslc/ast"
	"github.com/aslcompiler/aslc/ir"
	"github.com/aslcompiler/aslc/sema"
	"github.com/aslcompiler/aslc/types"
)

// Generate lowers every function in prog into a subroutine.
func Generate(ctx *sema.Context, prog *ast.Program) *ir.Program {
	out := &ir.Program{}
	for _, fn := range prog.Functions {
		out.Subroutines = append(out.Subroutines, genFunction(ctx, fn))
	}
	return out
}

// generator holds the per-function temporary and label counters; both
// reset on entry to each function, per the component design.
type generator struct {
	ctx      *sema.Context
	tempNum  int
	labelNum int
}

func (g *generator) newTemp() string {
	t := fmt.Sprintf("%%t%d", g.tempNum)
	g.tempNum++
	return t
}

func (g *generator) newLabel(base string) string {
	l := fmt.Sprintf("%s%d", base, g.labelNum)
	g.labelNum++
	return l
}

func genFunction(ctx *sema.Context, fn *ast.Function) *ir.Subroutine {
	g := &generator{ctx: ctx}
	ctx.Symbols.PushThisScope(ctx.Decor.GetScope(fn))
	defer ctx.Symbols.PopScope()

	sub := &ir.Subroutine{Name: fn.Name}

	funcType := ctx.Decor.GetType(fn)
	retType := ctx.Types.GetFuncReturnType(funcType)
	voidFunc := ctx.Types.IsVoid(retType)
	if !voidFunc {
		sub.Params = append(sub.Params, ir.Param{Name: "_result", TypeText: ctx.Types.ToString(retType)})
	}

	for _, param := range fn.Params {
		pt := ctx.Decor.GetType(param)
		if ctx.Types.IsArray(pt) {
			sub.Params = append(sub.Params, ir.Param{
				Name:       param.Name,
				TypeText:   ctx.Types.ToString(ctx.Types.GetArrayElemType(pt)),
				ByArrayRef: true,
			})
		} else {
			sub.Params = append(sub.Params, ir.Param{Name: param.Name, TypeText: ctx.Types.ToString(pt)})
		}
	}

	for _, decl := range fn.Decls {
		dt := ctx.Decor.GetType(decl)
		for _, name := range decl.Names {
			if ctx.Types.IsArray(dt) {
				sub.Locals = append(sub.Locals, ir.Local{
					Name:         name,
					ElemTypeText: ctx.Types.ToString(ctx.Types.GetArrayElemType(dt)),
					Size:         ctx.Types.GetArraySize(dt),
				})
			} else {
				sub.Locals = append(sub.Locals, ir.Local{Name: name, ElemTypeText: ctx.Types.ToString(dt), Size: 1})
			}
		}
	}

	body := g.genStatements(fn.Body)
	if voidFunc {
		body = body.Append(ir.One(ir.Instruction{Op: ir.RETURN}))
	}
	sub.Instrs = body
	return sub
}

func (g *generator) genStatements(stmts *ast.Statements) ir.InstList {
	var code ir.InstList
	for _, s := range stmts.List {
		code = code.Append(g.genStatement(s))
	}
	return code
}

func (g *generator) genStatement(s ast.Statement) ir.InstList {
	switch st := s.(type) {
	case *ast.AssignStmt:
		return g.genAssignStmt(st)
	case *ast.IfStmt:
		return g.genIfStmt(st)
	case *ast.WhileStmt:
		return g.genWhileStmt(st)
	case *ast.ReadStmt:
		return g.genReadStmt(st)
	case *ast.WriteExprStmt:
		return g.genWriteExprStmt(st)
	case *ast.WriteStringStmt:
		return ir.One(ir.Instruction{Op: ir.WRITES, Src1: st.Literal})
	case *ast.ProcCallStmt:
		_, code := g.genCall(st.Call, false)
		return code
	case *ast.ReturnStmt:
		return g.genReturnStmt(st)
	case *ast.SwapStmt:
		return g.genSwapStmt(st)
	case *ast.SwitchStmt:
		return g.genSwitchStmt(st)
	default:
		panic("codegen: unknown statement kind")
	}
}

// genLeftExprAddr evaluates a left-expression's addressing, returning the
// base address, the index address (empty for a non-indexed left-expression),
// and the code needed to compute the index.
func (g *generator) genLeftExprAddr(le *ast.LeftExpr) (addr, offs string, code ir.InstList) {
	addr, code = g.identAddr(le.Name)
	if le.Index == nil {
		return addr, "", code
	}
	idxAddr, idxCode := g.genExpr(le.Index)
	return addr, idxAddr, code.Append(idxCode)
}

// identAddr resolves the address an identifier read produces. A scalar, or
// a locally owned array, is addressed directly by its own name. An
// array-typed parameter holds an address rather than the array itself, so
// reading it dereferences once with LOAD; every later use of that address
// (indexing, a whole-array copy, passing it on as an argument) builds on
// this single dereference rather than repeating it.
func (g *generator) identAddr(name string) (string, ir.InstList) {
	t, ok := g.ctx.Symbols.GetType(name)
	if ok && g.ctx.Types.IsArray(t) && g.ctx.Symbols.IsParameterClass(name) {
		tmp := g.newTemp()
		return tmp, ir.One(ir.Instruction{Op: ir.LOAD, Dst: tmp, Src1: name})
	}
	return name, nil
}

func (g *generator) genAssignStmt(s *ast.AssignStmt) ir.InstList {
	ctx := g.ctx
	leftType := ctx.Decor.GetType(s.Left)
	rightType := ctx.Decor.GetType(s.Value)

	if ctx.Types.IsArray(leftType) && ctx.Types.IsArray(rightType) {
		return g.genArrayCopy(s.Left.Name, s.Value, ctx.Types.GetArraySize(leftType))
	}

	leftAddr, leftOffs, leftCode := g.genLeftExprAddr(s.Left)
	rightAddr, rightCode := g.genExpr(s.Value)
	code := leftCode.Append(rightCode)

	storeAddr := rightAddr
	if ctx.Types.IsFloat(leftType) && ctx.Types.IsInteger(rightType) {
		widened := g.newTemp()
		code = code.Append(ir.One(ir.Instruction{Op: ir.FLOAT, Dst: widened, Src1: rightAddr}))
		storeAddr = widened
	}

	if leftOffs != "" {
		code = code.Append(ir.One(ir.Instruction{Op: ir.XLOAD, Dst: leftAddr, Src1: leftOffs, Src2: storeAddr}))
	} else {
		code = code.Append(ir.One(ir.Instruction{Op: ir.LOAD, Dst: leftAddr, Src1: storeAddr}))
	}
	return code
}

// genArrayCopy lowers a whole-array assignment into a length-bounded
// element-copy loop, per the component's assignment-lowering rule.
func (g *generator) genArrayCopy(leftName string, rightExpr ast.Expr, size int) ir.InstList {
	leftBase, leftCode := g.identAddr(leftName)
	rightBase, rightCode := g.genExpr(rightExpr)

	iTemp := g.newTemp()
	lenTemp := g.newTemp()
	incrTemp := g.newTemp()
	vTemp := g.newTemp()
	cmpTemp := g.newTemp()
	beginLabel := g.newLabel("beginwhile")
	endLabel := g.newLabel("endwhile")

	code := leftCode.Append(rightCode)
	code = code.Append(ir.InstList{
		{Op: ir.ILOAD, Dst: iTemp, Src1: "0"},
		{Op: ir.ILOAD, Dst: lenTemp, Src1: fmt.Sprintf("%d", size)},
		{Op: ir.ILOAD, Dst: incrTemp, Src1: "1"},
		{Op: ir.LABEL, Dst: beginLabel},
		{Op: ir.LT, Dst: cmpTemp, Src1: iTemp, Src2: lenTemp},
		{Op: ir.FJUMP, Dst: endLabel, Src1: cmpTemp},
		{Op: ir.LOADX, Dst: vTemp, Src1: rightBase, Src2: iTemp},
		{Op: ir.XLOAD, Dst: leftBase, Src1: iTemp, Src2: vTemp},
		{Op: ir.ADD, Dst: iTemp, Src1: iTemp, Src2: incrTemp},
		{Op: ir.UJUMP, Dst: beginLabel},
		{Op: ir.LABEL, Dst: endLabel},
	})
	return code
}

func (g *generator) genIfStmt(s *ast.IfStmt) ir.InstList {
	condAddr, condCode := g.genExpr(s.Cond)
	thenCode := g.genStatements(s.Then)

	if s.Else == nil {
		endLabel := g.newLabel("endif")
		return condCode.
			Append(ir.One(ir.Instruction{Op: ir.FJUMP, Dst: endLabel, Src1: condAddr})).
			Append(thenCode).
			Append(ir.One(ir.Instruction{Op: ir.LABEL, Dst: endLabel}))
	}

	elseLabel := g.newLabel("else")
	endLabel := g.newLabel("endif")
	elseCode := g.genStatements(s.Else)
	return condCode.
		Append(ir.One(ir.Instruction{Op: ir.FJUMP, Dst: elseLabel, Src1: condAddr})).
		Append(thenCode).
		Append(ir.One(ir.Instruction{Op: ir.UJUMP, Dst: endLabel})).
		Append(ir.One(ir.Instruction{Op: ir.LABEL, Dst: elseLabel})).
		Append(elseCode).
		Append(ir.One(ir.Instruction{Op: ir.LABEL, Dst: endLabel}))
}

func (g *generator) genWhileStmt(s *ast.WhileStmt) ir.InstList {
	beginLabel := g.newLabel("beginwhile")
	endLabel := g.newLabel("endwhile")
	condAddr, condCode := g.genExpr(s.Cond)
	bodyCode := g.genStatements(s.Body)

	return ir.One(ir.Instruction{Op: ir.LABEL, Dst: beginLabel}).
		Append(condCode).
		Append(ir.One(ir.Instruction{Op: ir.FJUMP, Dst: endLabel, Src1: condAddr})).
		Append(bodyCode).
		Append(ir.One(ir.Instruction{Op: ir.UJUMP, Dst: beginLabel})).
		Append(ir.One(ir.Instruction{Op: ir.LABEL, Dst: endLabel}))
}

func (g *generator) genReadStmt(s *ast.ReadStmt) ir.InstList {
	ctx := g.ctx
	targetType := ctx.Decor.GetType(s.Target)
	var op ir.Opcode
	switch {
	case ctx.Types.IsFloat(targetType):
		op = ir.READF
	case ctx.Types.IsCharacter(targetType):
		op = ir.READC
	default: // Integer, Boolean
		op = ir.READI
	}

	t := g.newTemp()
	leftAddr, leftOffs, leftCode := g.genLeftExprAddr(s.Target)
	code := leftCode.Append(ir.One(ir.Instruction{Op: op, Dst: t}))
	if leftOffs != "" {
		code = code.Append(ir.One(ir.Instruction{Op: ir.XLOAD, Dst: leftAddr, Src1: leftOffs, Src2: t}))
	} else {
		code = code.Append(ir.One(ir.Instruction{Op: ir.LOAD, Dst: leftAddr, Src1: t}))
	}
	return code
}

func (g *generator) genWriteExprStmt(s *ast.WriteExprStmt) ir.InstList {
	ctx := g.ctx
	addr, code := g.genExpr(s.Value)
	t := ctx.Decor.GetType(s.Value)
	var op ir.Opcode
	switch {
	case ctx.Types.IsFloat(t):
		op = ir.WRITEF
	case ctx.Types.IsCharacter(t):
		op = ir.WRITEC
	default: // Integer, Boolean
		op = ir.WRITEI
	}
	return code.Append(ir.One(ir.Instruction{Op: op, Src1: addr}))
}

func (g *generator) genReturnStmt(s *ast.ReturnStmt) ir.InstList {
	if s.Value == nil {
		return ir.One(ir.Instruction{Op: ir.RETURN})
	}
	addr, code := g.genExpr(s.Value)
	return code.
		Append(ir.One(ir.Instruction{Op: ir.LOAD, Dst: "_result", Src1: addr})).
		Append(ir.One(ir.Instruction{Op: ir.RETURN}))
}

// genSwapStmt assumes neither side is indexed: the type checker rejects
// indexed swap operands before code generation ever sees them.
func (g *generator) genSwapStmt(s *ast.SwapStmt) ir.InstList {
	t := g.newTemp()
	return ir.InstList{
		{Op: ir.LOAD, Dst: t, Src1: s.Left.Name},
		{Op: ir.LOAD, Dst: s.Left.Name, Src1: s.Right.Name},
		{Op: ir.LOAD, Dst: s.Right.Name, Src1: t},
	}
}

// genSwitchStmt lowers to a fallthrough-on-match chain of equality tests,
// recorded in DESIGN.md as a deliberate choice rather than an oversight.
func (g *generator) genSwitchStmt(s *ast.SwitchStmt) ir.InstList {
	subjectAddr, code := g.genExpr(s.Subject)
	endLabel := g.newLabel("endswitch")

	for _, c := range s.Cases {
		caseAddr, caseCode := g.genExpr(c.Value)
		t := g.newTemp()
		bodyCode := g.genStatements(c.Body)
		code = code.Append(caseCode).
			Append(ir.One(ir.Instruction{Op: ir.EQ, Dst: t, Src1: subjectAddr, Src2: caseAddr})).
			Append(ir.One(ir.Instruction{Op: ir.FJUMP, Dst: endLabel, Src1: t})).
			Append(bodyCode)
	}
	if s.Default != nil {
		code = code.Append(g.genStatements(s.Default))
	}
	return code.Append(ir.One(ir.Instruction{Op: ir.LABEL, Dst: endLabel}))
}

// genExpr lowers an expression, returning the address holding its value and
// the code needed to compute it.
func (g *generator) genExpr(e ast.Expr) (string, ir.InstList) {
	switch ex := e.(type) {
	case *ast.Literal:
		return g.genLiteral(ex)
	case *ast.Ident:
		return g.identAddr(ex.Name)
	case *ast.ParenExpr:
		return g.genExpr(ex.Inner)
	case *ast.ArrayIndexExpr:
		return g.genArrayIndexExpr(ex)
	case *ast.UnaryExpr:
		return g.genUnaryExpr(ex)
	case *ast.BinaryExpr:
		return g.genBinaryExpr(ex)
	case *ast.CallExpr:
		return g.genCall(ex, true)
	default:
		panic("codegen: unknown expression kind")
	}
}

func (g *generator) genLiteral(lit *ast.Literal) (string, ir.InstList) {
	t := g.newTemp()
	switch lit.Kind {
	case ast.IntLit:
		return t, ir.One(ir.Instruction{Op: ir.ILOAD, Dst: t, Src1: lit.Text})
	case ast.FloatLit:
		return t, ir.One(ir.Instruction{Op: ir.FLOAD, Dst: t, Src1: lit.Text})
	case ast.CharLit:
		text := lit.Text
		if len(text) >= 2 {
			text = text[1 : len(text)-1]
		}
		return t, ir.One(ir.Instruction{Op: ir.CHLOAD, Dst: t, Src1: text})
	case ast.BoolLit:
		val := "0"
		if lit.Text == "true" {
			val = "1"
		}
		return t, ir.One(ir.Instruction{Op: ir.ILOAD, Dst: t, Src1: val})
	default:
		panic("codegen: unknown literal kind")
	}
}

func (g *generator) genArrayIndexExpr(a *ast.ArrayIndexExpr) (string, ir.InstList) {
	baseAddr, baseCode := g.genExpr(a.Array)
	idxAddr, idxCode := g.genExpr(a.Index)
	t := g.newTemp()
	code := baseCode.Append(idxCode).Append(ir.One(ir.Instruction{Op: ir.LOADX, Dst: t, Src1: baseAddr, Src2: idxAddr}))
	return t, code
}

func (g *generator) genUnaryExpr(u *ast.UnaryExpr) (string, ir.InstList) {
	addr, code := g.genExpr(u.Operand)
	switch u.Op {
	case ast.UnaryPlus:
		return addr, code
	case ast.UnaryMinus:
		op := ir.NEG
		if g.ctx.Types.IsFloat(g.ctx.Decor.GetType(u.Operand)) {
			op = ir.FNEG
		}
		t := g.newTemp()
		return t, code.Append(ir.One(ir.Instruction{Op: op, Dst: t, Src1: addr}))
	case ast.UnaryNot:
		t := g.newTemp()
		return t, code.Append(ir.One(ir.Instruction{Op: ir.NOT, Dst: t, Src1: addr}))
	default:
		panic("codegen: unknown unary operator")
	}
}

// widenNumeric inserts a FLOAT conversion on whichever of leftAddr/rightAddr
// is the non-Float operand, if exactly one of leftType/rightType is Float.
func (g *generator) widenNumeric(leftAddr, rightAddr string, leftType, rightType types.ID) (string, string, ir.InstList, bool) {
	ctx := g.ctx
	isFloat := ctx.Types.IsFloat(leftType) || ctx.Types.IsFloat(rightType)
	if !isFloat {
		return leftAddr, rightAddr, nil, false
	}
	var code ir.InstList
	if ctx.Types.IsInteger(leftType) {
		t := g.newTemp()
		code = code.Append(ir.One(ir.Instruction{Op: ir.FLOAT, Dst: t, Src1: leftAddr}))
		leftAddr = t
	}
	if ctx.Types.IsInteger(rightType) {
		t := g.newTemp()
		code = code.Append(ir.One(ir.Instruction{Op: ir.FLOAT, Dst: t, Src1: rightAddr}))
		rightAddr = t
	}
	return leftAddr, rightAddr, code, true
}

func (g *generator) genBinaryExpr(b *ast.BinaryExpr) (string, ir.InstList) {
	ctx := g.ctx
	leftAddr, leftCode := g.genExpr(b.Left)
	rightAddr, rightCode := g.genExpr(b.Right)
	leftType := ctx.Decor.GetType(b.Left)
	rightType := ctx.Decor.GetType(b.Right)
	code := leftCode.Append(rightCode)

	switch b.Op {
	case ast.OpAdd, ast.OpSub, ast.OpMul, ast.OpDiv:
		la, ra, widenCode, isFloat := g.widenNumeric(leftAddr, rightAddr, leftType, rightType)
		code = code.Append(widenCode)
		op := map[ast.BinOp][2]ir.Opcode{
			ast.OpAdd: {ir.ADD, ir.FADD},
			ast.OpSub: {ir.SUB, ir.FSUB},
			ast.OpMul: {ir.MUL, ir.FMUL},
			ast.OpDiv: {ir.DIV, ir.FDIV},
		}[b.Op]
		chosen := op[0]
		if isFloat {
			chosen = op[1]
		}
		t := g.newTemp()
		return t, code.Append(ir.One(ir.Instruction{Op: chosen, Dst: t, Src1: la, Src2: ra}))

	case ast.OpMod:
		// The type checker rejects float operands; integer mod has no
		// native opcode and lowers via DIV/MUL/SUB.
		t1 := g.newTemp()
		t2 := g.newTemp()
		t3 := g.newTemp()
		code = code.Append(ir.InstList{
			{Op: ir.DIV, Dst: t1, Src1: leftAddr, Src2: rightAddr},
			{Op: ir.MUL, Dst: t2, Src1: t1, Src2: rightAddr},
			{Op: ir.SUB, Dst: t3, Src1: leftAddr, Src2: t2},
		})
		return t3, code

	case ast.OpEq, ast.OpNe, ast.OpLt, ast.OpLe, ast.OpGt, ast.OpGe:
		return g.genRelational(b.Op, leftAddr, rightAddr, leftType, rightType, code)

	case ast.OpAnd:
		t := g.newTemp()
		return t, code.Append(ir.One(ir.Instruction{Op: ir.AND, Dst: t, Src1: leftAddr, Src2: rightAddr}))
	case ast.OpOr:
		t := g.newTemp()
		return t, code.Append(ir.One(ir.Instruction{Op: ir.OR, Dst: t, Src1: leftAddr, Src2: rightAddr}))
	default:
		panic("codegen: unknown binary operator")
	}
}

// genRelational lowers the six relational/equality operators. "≠" has no
// native opcode and lowers via EQ followed by NOT on the same temporary;
// ">" and "≥" have no native opcode either and lower via "<"/"≤" with
// swapped operands.
func (g *generator) genRelational(op ast.BinOp, leftAddr, rightAddr string, leftType, rightType types.ID, code ir.InstList) (string, ir.InstList) {
	la, ra, widenCode, isFloat := g.widenNumeric(leftAddr, rightAddr, leftType, rightType)
	code = code.Append(widenCode)

	eqOp, ltOp, leOp := ir.EQ, ir.LT, ir.LE
	if isFloat {
		eqOp, ltOp, leOp = ir.FEQ, ir.FLT, ir.FLE
	}

	t := g.newTemp()
	switch op {
	case ast.OpEq:
		return t, code.Append(ir.One(ir.Instruction{Op: eqOp, Dst: t, Src1: la, Src2: ra}))
	case ast.OpNe:
		t2 := g.newTemp()
		code = code.Append(ir.One(ir.Instruction{Op: eqOp, Dst: t, Src1: la, Src2: ra}))
		return t2, code.Append(ir.One(ir.Instruction{Op: ir.NOT, Dst: t2, Src1: t}))
	case ast.OpLt:
		return t, code.Append(ir.One(ir.Instruction{Op: ltOp, Dst: t, Src1: la, Src2: ra}))
	case ast.OpLe:
		return t, code.Append(ir.One(ir.Instruction{Op: leOp, Dst: t, Src1: la, Src2: ra}))
	case ast.OpGt:
		return t, code.Append(ir.One(ir.Instruction{Op: ltOp, Dst: t, Src1: ra, Src2: la}))
	case ast.OpGe:
		return t, code.Append(ir.One(ir.Instruction{Op: leOp, Dst: t, Src1: ra, Src2: la}))
	default:
		panic("codegen: unknown relational operator")
	}
}

// genCall lowers a call used either as an expression (asExpression=true,
// requires a non-Void callee) or as a procedure-call statement.
func (g *generator) genCall(call *ast.CallExpr, asExpression bool) (string, ir.InstList) {
	ctx := g.ctx
	calleeType, _ := ctx.Symbols.GetType(call.Name)
	isFunc := ctx.Types.IsFunction(calleeType)
	nonVoid := isFunc && !ctx.Types.IsVoid(ctx.Types.GetFuncReturnType(calleeType))

	var code ir.InstList
	if nonVoid {
		code = code.Append(ir.One(ir.Instruction{Op: ir.PUSH}))
	}

	for i, argExpr := range call.Args {
		argAddr, argCode := g.genExpr(argExpr)
		code = code.Append(argCode)

		pushAddr := argAddr
		if isFunc && i < ctx.Types.GetNumOfParameters(calleeType) {
			paramType := ctx.Types.GetParameterType(calleeType, i)
			argType := ctx.Decor.GetType(argExpr)
			switch {
			case ctx.Types.IsFloat(paramType) && ctx.Types.IsInteger(argType):
				t := g.newTemp()
				code = code.Append(ir.One(ir.Instruction{Op: ir.FLOAT, Dst: t, Src1: argAddr}))
				pushAddr = t
			case ctx.Types.IsArray(paramType):
				if id, ok := argExpr.(*ast.Ident); ok && !ctx.Symbols.IsParameterClass(id.Name) {
					t := g.newTemp()
					code = code.Append(ir.One(ir.Instruction{Op: ir.ALOAD, Dst: t, Src1: id.Name}))
					pushAddr = t
				}
			}
		}
		code = code.Append(ir.One(ir.Instruction{Op: ir.PUSH, Src1: pushAddr}))
	}

	code = code.Append(ir.One(ir.Instruction{Op: ir.CALL, Dst: call.Name}))
	for range call.Args {
		code = code.Append(ir.One(ir.Instruction{Op: ir.POP}))
	}

	var result string
	if nonVoid {
		if asExpression {
			result = g.newTemp()
			code = code.Append(ir.One(ir.Instruction{Op: ir.POP, Dst: result}))
		} else {
			code = code.Append(ir.One(ir.Instruction{Op: ir.POP}))
		}
	}
	return result, code
}
