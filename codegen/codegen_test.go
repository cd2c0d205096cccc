package codegen_test

import (
	"strings"
	"testing"

	"github.com/aslcompiler/aslc/compiler"
	"github.com/aslcompiler/aslc/ir"
	"github.com/stretchr/testify/assert"
)

func compileOK(t *testing.T, src string) *ir.Program {
	result, err := compiler.Compile(strings.NewReader(src))
	assert.Nil(t, err)
	assert.Empty(t, result.Diagnostics)
	return result.IR
}

func opSeq(sub *ir.Subroutine) []ir.Opcode {
	ops := make([]ir.Opcode, len(sub.Instrs))
	for i, instr := range sub.Instrs {
		ops[i] = instr.Op
	}
	return ops
}

func TestCodegen_SimpleAssignment(t *testing.T) {
	prog := compileOK(t, `func main() var x:int x := 3 + 4 endfunc`)
	main := prog.Subroutines[0]
	assert.Equal(t, "main", main.Name)
	assert.Equal(t, []ir.Opcode{ir.ILOAD, ir.ILOAD, ir.ADD, ir.LOAD, ir.RETURN}, opSeq(main))
	assert.Equal(t, "x", main.Instrs[3].Dst)
}

func TestCodegen_MixedFloatArithmeticInsertsOneFloatConversion(t *testing.T) {
	prog := compileOK(t, `func main()
		var y:float, i:int
		i := 2
		y := i + 1.5
	endfunc`)
	main := prog.Subroutines[0]

	floatConversions := 0
	for _, instr := range main.Instrs {
		if instr.Op == ir.FLOAT {
			floatConversions++
		}
	}
	assert.Equal(t, 1, floatConversions)

	hasFADD := false
	for _, instr := range main.Instrs {
		if instr.Op == ir.FADD {
			hasFADD = true
		}
	}
	assert.True(t, hasFADD)
}

func TestCodegen_ArrayAssignmentIsACopyLoop(t *testing.T) {
	prog := compileOK(t, `func main()
		var a:array[3] of int, b:array[3] of int
		a := b
	endfunc`)
	main := prog.Subroutines[0]

	loadxCount, xloadCount := 0, 0
	for _, instr := range main.Instrs {
		switch instr.Op {
		case ir.LOADX:
			loadxCount++
		case ir.XLOAD:
			xloadCount++
		}
	}
	assert.Equal(t, 1, loadxCount)
	assert.Equal(t, 1, xloadCount)

	hasLabel, hasFJump, hasUJump := false, false, false
	for _, instr := range main.Instrs {
		switch instr.Op {
		case ir.LABEL:
			hasLabel = true
		case ir.FJUMP:
			hasFJump = true
		case ir.UJUMP:
			hasUJump = true
		}
	}
	assert.True(t, hasLabel)
	assert.True(t, hasFJump)
	assert.True(t, hasUJump)
}

func TestCodegen_RecursiveFunctionHasResultParameter(t *testing.T) {
	prog := compileOK(t, `func f(n:int):int
		if n < 2 then
			return n
		else
			return f(n-1) + f(n-2)
		endif
	endfunc
	func main() endfunc`)

	var f *ir.Subroutine
	for _, s := range prog.Subroutines {
		if s.Name == "f" {
			f = s
		}
	}
	assert.NotNil(t, f)
	assert.Equal(t, "_result", f.Params[0].Name)
	assert.Equal(t, "n", f.Params[1].Name)

	callCount := 0
	for _, instr := range f.Instrs {
		if instr.Op == ir.CALL {
			callCount++
			assert.Equal(t, "f", instr.Dst)
		}
	}
	assert.Equal(t, 2, callCount)
}

func TestCodegen_WhileLoopStructure(t *testing.T) {
	prog := compileOK(t, `func main()
		var i:int
		i := 0
		while i < 10 do
			write i
			i := i + 1
		endwhile
	endfunc`)
	main := prog.Subroutines[0]

	writeCount, ujumpCount := 0, 0
	for _, instr := range main.Instrs {
		switch instr.Op {
		case ir.WRITEI:
			writeCount++
		case ir.UJUMP:
			ujumpCount++
		}
	}
	assert.Equal(t, 1, writeCount)
	assert.Equal(t, 1, ujumpCount)
}

func TestCodegen_BooleanAnd(t *testing.T) {
	prog := compileOK(t, `func main() var p:bool p := true and false endfunc`)
	main := prog.Subroutines[0]
	assert.Equal(t, []ir.Opcode{ir.ILOAD, ir.ILOAD, ir.AND, ir.LOAD, ir.RETURN}, opSeq(main))
}

func TestCodegen_ArrayParameterDereferencesOnceBeforeIndexing(t *testing.T) {
	prog := compileOK(t, `func sum(a:array[3] of int):int
		var total:int, i:int
		total := 0
		i := 0
		while i < 3 do
			total := total + a[i]
			i := i + 1
		endwhile
		return total
	endfunc
	func main() endfunc`)

	var sum *ir.Subroutine
	for _, s := range prog.Subroutines {
		if s.Name == "sum" {
			sum = s
		}
	}
	assert.NotNil(t, sum)
	assert.True(t, sum.Params[1].ByArrayRef)

	loadBeforeIndex := false
	for i, instr := range sum.Instrs {
		if instr.Op == ir.LOADX && instr.Src1 == "a" {
			t.Fatalf("LOADX must use a dereferenced temporary, not the parameter name directly")
		}
		if instr.Op == ir.LOAD && instr.Src1 == "a" {
			loadBeforeIndex = true
			_ = i
		}
	}
	assert.True(t, loadBeforeIndex)
}

func TestCodegen_IntegerModLowersViaDivMulSub(t *testing.T) {
	prog := compileOK(t, `func main()
		var x:int, y:int, z:int
		z := x % y
	endfunc`)
	main := prog.Subroutines[0]
	assert.Equal(t, []ir.Opcode{ir.DIV, ir.MUL, ir.SUB, ir.LOAD, ir.RETURN}, opSeq(main))
}

func TestCodegen_VoidFunctionGetsTrailingReturn(t *testing.T) {
	prog := compileOK(t, `func main() var x:int x := 1 endfunc`)
	main := prog.Subroutines[0]
	last := main.Instrs[len(main.Instrs)-1]
	assert.Equal(t, ir.RETURN, last.Op)
}

func TestCodegen_NotEqualLowersViaEqAndNot(t *testing.T) {
	prog := compileOK(t, `func main()
		var x:int, y:int, p:bool
		p := x != y
	endfunc`)
	main := prog.Subroutines[0]
	eqIdx, notIdx := -1, -1
	for i, instr := range main.Instrs {
		if instr.Op == ir.EQ {
			eqIdx = i
		}
		if instr.Op == ir.NOT {
			notIdx = i
		}
	}
	assert.True(t, eqIdx >= 0)
	assert.True(t, notIdx > eqIdx)
}
