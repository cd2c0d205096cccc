package diag

import (
	"bytes"
	"testing"

	"github.com/aslcompiler/aslc/ast"
	"github.com/stretchr/testify/assert"
)

func TestReporter_EmptyAndReport(t *testing.T) {
	r := New()
	assert.True(t, r.Empty())

	n := &ast.Ident{Name: "x"}
	r.Report(UndeclaredIdent, n, "undeclared identifier %q", "x")
	assert.False(t, r.Empty())
	assert.Len(t, r.Diagnostics(), 1)
	assert.Equal(t, UndeclaredIdent, r.Diagnostics()[0].Kind)
}

func TestReporter_PrintIsInReportOrder(t *testing.T) {
	r := New()
	r.Report(UndeclaredIdent, &ast.Ident{Name: "a"}, "first")
	r.Report(DeclaredIdent, &ast.Ident{Name: "b"}, "second")

	var buf bytes.Buffer
	r.Print(&buf)
	out := buf.String()
	assert.Contains(t, out, "first")
	assert.Contains(t, out, "second")
	assert.True(t, indexOf(out, "first") < indexOf(out, "second"))
}

func indexOf(s, sub string) int {
	for i := 0; i+len(sub) <= len(s); i++ {
		if s[i:i+len(sub)] == sub {
			return i
		}
	}
	return -1
}
