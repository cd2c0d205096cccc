package symtab

import (
	"testing"

	"github.com/aslcompiler/aslc/types"
	"github.com/stretchr/testify/assert"
)

func TestTable_AddLocalVarDuplicate(t *testing.T) {
	tab := New()
	intT := types.ID(0)
	assert.Nil(t, tab.AddLocalVar("x", intT))
	err := tab.AddLocalVar("x", intT)
	assert.NotNil(t, err)
	assert.IsType(t, &AlreadyDeclaredError{}, err)
}

func TestTable_ScopeChainLookup(t *testing.T) {
	tab := New()
	intT := types.ID(0)
	assert.Nil(t, tab.AddLocalVar("g", intT))

	fnScope := tab.PushNewScope("f")
	assert.Nil(t, tab.AddParameter("p", intT))
	tab.PopScope()

	// Re-enter the function scope from a later pass; the global it was
	// nested under when created must still resolve.
	tab.PushThisScope(fnScope)
	typ, ok := tab.GetType("g")
	assert.True(t, ok)
	assert.Equal(t, intT, typ)

	typ, ok = tab.GetType("p")
	assert.True(t, ok)
	assert.Equal(t, intT, typ)
	tab.PopScope()
}

func TestTable_FindInCurrentScopeOnly(t *testing.T) {
	tab := New()
	intT := types.ID(0)
	assert.Nil(t, tab.AddLocalVar("g", intT))

	tab.PushNewScope("inner")
	assert.False(t, tab.FindInCurrentScope("g"))
	_, ok := tab.GetType("g")
	assert.True(t, ok)
	tab.PopScope()
}

func TestTable_IsParameterClass(t *testing.T) {
	tab := New()
	intT := types.ID(0)
	tab.PushNewScope("f")
	assert.Nil(t, tab.AddParameter("p", intT))
	assert.Nil(t, tab.AddLocalVar("v", intT))
	assert.True(t, tab.IsParameterClass("p"))
	assert.False(t, tab.IsParameterClass("v"))
	tab.PopScope()
}

func TestTable_NoMainProperlyDeclared(t *testing.T) {
	tm := types.NewManager()
	tab := New()

	assert.True(t, tab.NoMainProperlyDeclared(tm))

	voidT := tm.CreateVoid()
	funcT := tm.CreateFunction(nil, voidT)
	assert.Nil(t, tab.AddFunction("main", funcT))
	assert.False(t, tab.NoMainProperlyDeclared(tm))
}
