package compiler_test

import (
	"strings"
	"testing"

	"github.com/aslcompiler/aslc/compiler"
	"github.com/aslcompiler/aslc/token"
	"github.com/stretchr/testify/assert"
)

func TestTokenize(t *testing.T) {
	toks, err := compiler.Tokenize(strings.NewReader("x := 1"))
	assert.Nil(t, err)
	assert.Equal(t, token.IDENT, toks[0].Kind)
}

func TestCheck_AcceptsAndRejects(t *testing.T) {
	testData := []struct {
		name      string
		src       string
		wantEmpty bool
	}{
		{
			name:      "well-typed program",
			src:       `func main() var x:int x := 1 endfunc`,
			wantEmpty: true,
		},
		{
			name:      "undeclared identifier is reported, not a parse error",
			src:       `func main() var x:int x := y endfunc`,
			wantEmpty: false,
		},
	}
	for _, td := range testData {
		_, diags, err := compiler.Check(strings.NewReader(td.src))
		assert.Nil(t, err, td.name)
		assert.Equal(t, td.wantEmpty, len(diags) == 0, td.name)
	}
}

func TestCompile_RejectedProgramReturnsDiagnosticsNotError(t *testing.T) {
	result, err := compiler.Compile(strings.NewReader(`func main() var x:int x := y endfunc`))
	assert.Nil(t, err)
	assert.NotEmpty(t, result.Diagnostics)
	assert.Nil(t, result.IR)
}

func TestCompile_AcceptedProgramProducesIR(t *testing.T) {
	result, err := compiler.Compile(strings.NewReader(`func main() var x:int x := 3 + 4 endfunc`))
	assert.Nil(t, err)
	assert.Empty(t, result.Diagnostics)
	assert.NotNil(t, result.IR)
	assert.Len(t, result.IR.Subroutines, 1)
}

func TestCompile_SyntaxErrorIsAnError(t *testing.T) {
	_, err := compiler.Compile(strings.NewReader(`func main(`))
	assert.NotNil(t, err)
}
