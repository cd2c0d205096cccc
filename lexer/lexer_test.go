package lexer

import (
	"strings"
	"testing"

	"github.com/aslcompiler/aslc/token"
	"github.com/stretchr/testify/assert"
)

func TestLexer_Tokenize(t *testing.T) {
	testData := []struct {
		name string
		src  string
		want []token.Kind
	}{
		{
			name: "assignment and arithmetic",
			src:  "x := 3 + 4",
			want: []token.Kind{token.IDENT, token.ASSIGN, token.INTVAL, token.PLUS, token.INTVAL, token.EOF},
		},
		{
			name: "swap operator is not two assigns",
			src:  "a :=: b",
			want: []token.Kind{token.IDENT, token.SWAPOP, token.IDENT, token.EOF},
		},
		{
			name: "relational and boolean operators",
			src:  "a <= b && c != d",
			want: []token.Kind{token.IDENT, token.LE, token.IDENT, token.AND, token.IDENT, token.DIFF, token.IDENT, token.EOF},
		},
		{
			name: "float literal",
			src:  "1.5",
			want: []token.Kind{token.FLOATVAL, token.EOF},
		},
		{
			name: "line comment is skipped",
			src:  "x // this is ignored\ny",
			want: []token.Kind{token.IDENT, token.IDENT, token.EOF},
		},
		{
			name: "block comment spanning lines is skipped",
			src:  "x /* comment\nstill comment */ y",
			want: []token.Kind{token.IDENT, token.IDENT, token.EOF},
		},
		{
			name: "keywords are not identifiers",
			src:  "func endfunc switch case default endswitch",
			want: []token.Kind{token.FUNC, token.ENDFUNC, token.SWITCH, token.CASE, token.DEFAULT, token.ENDSWITCH, token.EOF},
		},
	}

	for _, td := range testData {
		toks, err := New().Tokenize(strings.NewReader(td.src))
		assert.Nil(t, err, td.name)
		kinds := make([]token.Kind, len(toks))
		for i, tk := range toks {
			kinds[i] = tk.Kind
		}
		assert.Equal(t, td.want, kinds, td.name)
	}
}

func TestLexer_UnterminatedStringIsAnError(t *testing.T) {
	_, err := New().Tokenize(strings.NewReader(`"unterminated`))
	assert.NotNil(t, err)
}

func TestLexer_CharLiteralKeepsQuotes(t *testing.T) {
	toks, err := New().Tokenize(strings.NewReader(`'a'`))
	assert.Nil(t, err)
	assert.Equal(t, token.CHARVAL, toks[0].Kind)
	assert.Equal(t, `'a'`, toks[0].Text)
}
