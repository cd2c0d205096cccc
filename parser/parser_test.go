package parser

import (
	"strings"
	"testing"

	"github.com/aslcompiler/aslc/ast"
	"github.com/aslcompiler/aslc/lexer"
	"github.com/stretchr/testify/assert"
)

func parse(t *testing.T, src string) (*ast.Program, error) {
	toks, err := lexer.New().Tokenize(strings.NewReader(src))
	assert.Nil(t, err)
	return New(toks).Parse()
}

func TestParser_Functions(t *testing.T) {
	testData := []struct {
		name      string
		src       string
		expectErr bool
	}{
		{
			name: "minimal void function",
			src:  "func main() endfunc",
		},
		{
			name: "function with params, decls, and a return",
			src: `func f(n:int):int
				var acc:int
				acc := n
				return acc
			endfunc`,
		},
		{
			name: "array declaration and assignment",
			src: `func main()
				var a:array[3] of int, b:array[3] of int
				a := b
			endfunc`,
		},
		{
			name: "switch with default",
			src: `func main()
				var x:int
				switch x
				case 1
					write x
				default
					write x
				endswitch
			endfunc`,
		},
		{
			name: "swap statement",
			src: `func main()
				var a:int, b:int
				a :=: b
			endfunc`,
		},
		{
			name:      "missing endfunc is a syntax error",
			src:       "func main()",
			expectErr: true,
		},
		{
			name:      "bare identifier statement is a syntax error",
			src:       "func main() x endfunc",
			expectErr: true,
		},
	}

	for _, td := range testData {
		_, err := parse(t, td.src)
		if td.expectErr {
			assert.NotNil(t, err, td.name)
		} else {
			assert.Nil(t, err, td.name)
		}
	}
}

func TestParser_ExpressionPrecedence(t *testing.T) {
	prog, err := parse(t, `func main()
		var x:bool
		x := 1 + 2 * 3 = 7 and true
	endfunc`)
	assert.Nil(t, err)

	assign := prog.Functions[0].Body.List[0].(*ast.AssignStmt)
	and := assign.Value.(*ast.BinaryExpr)
	assert.Equal(t, ast.OpAnd, and.Op)

	eq := and.Left.(*ast.BinaryExpr)
	assert.Equal(t, ast.OpEq, eq.Op)

	add := eq.Left.(*ast.BinaryExpr)
	assert.Equal(t, ast.OpAdd, add.Op)
	mul := add.Right.(*ast.BinaryExpr)
	assert.Equal(t, ast.OpMul, mul.Op)
}

func TestParser_ProcCallVsAssignDisambiguation(t *testing.T) {
	prog, err := parse(t, `func main()
		var x:int
		f(x)
		x := g(x)
	endfunc`)
	assert.Nil(t, err)

	_, isCall := prog.Functions[0].Body.List[0].(*ast.ProcCallStmt)
	assert.True(t, isCall)

	assign, isAssign := prog.Functions[0].Body.List[1].(*ast.AssignStmt)
	assert.True(t, isAssign)
	_, rhsIsCall := assign.Value.(*ast.CallExpr)
	assert.True(t, rhsIsCall)
}

func TestParser_WriteString(t *testing.T) {
	prog, err := parse(t, `func main() write "hello" endfunc`)
	assert.Nil(t, err)
	ws := prog.Functions[0].Body.List[0].(*ast.WriteStringStmt)
	assert.Equal(t, `"hello"`, ws.Literal)
}
