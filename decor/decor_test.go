package decor

import (
	"testing"

	"github.com/aslcompiler/aslc/ast"
	"github.com/aslcompiler/aslc/symtab"
	"github.com/aslcompiler/aslc/types"
	"github.com/stretchr/testify/assert"
)

func TestStore_PutAndGet(t *testing.T) {
	s := New()
	n := &ast.Ident{Name: "x"}

	s.PutScope(n, symtab.ScopeID(3))
	assert.Equal(t, symtab.ScopeID(3), s.GetScope(n))

	s.PutType(n, types.ID(5))
	assert.Equal(t, types.ID(5), s.GetType(n))

	s.PutIsLValue(n, true)
	assert.True(t, s.GetIsLValue(n))
}

func TestStore_UnsetDecorationPanics(t *testing.T) {
	s := New()
	n := &ast.Ident{Name: "unset"}
	assert.Panics(t, func() { s.GetType(n) })
	assert.Panics(t, func() { s.GetScope(n) })
	assert.Panics(t, func() { s.GetIsLValue(n) })
}

func TestStore_KeyedByNodeIdentityNotValue(t *testing.T) {
	s := New()
	a := &ast.Ident{Name: "x"}
	b := &ast.Ident{Name: "x"}
	s.PutType(a, types.ID(1))
	assert.Panics(t, func() { s.GetType(b) })
}
