// Package decor is the Tree Decorations side table: it associates a scope
// id, a type id, and an l-value flag with tree-node identity, without
// touching the tree itself. Three typed sub-maps, not a dynamically-typed
// bag, per the component's design note.
package decor

import (
	"fmt"

	"github.com/aslcompiler/aslc/ast"
	"github.com/aslcompiler/aslc/symtab"
	"github.com/aslcompiler/aslc/types"
)

// Store is thread-unsafe by contract: passes run sequentially over one tree.
type Store struct {
	scopes  map[ast.Node]symtab.ScopeID
	typ     map[ast.Node]types.ID
	lvalues map[ast.Node]bool
}

// New returns an empty decoration store.
func New() *Store {
	return &Store{
		scopes:  make(map[ast.Node]symtab.ScopeID),
		typ:     make(map[ast.Node]types.ID),
		lvalues: make(map[ast.Node]bool),
	}
}

func (s *Store) PutScope(n ast.Node, id symtab.ScopeID) { s.scopes[n] = id }

func (s *Store) GetScope(n ast.Node) symtab.ScopeID {
	id, ok := s.scopes[n]
	if !ok {
		panic(fmt.Sprintf("decor: no scope decoration on %T at line %d", n, n.Line()))
	}
	return id
}

func (s *Store) PutType(n ast.Node, t types.ID) { s.typ[n] = t }

func (s *Store) GetType(n ast.Node) types.ID {
	t, ok := s.typ[n]
	if !ok {
		panic(fmt.Sprintf("decor: no type decoration on %T at line %d", n, n.Line()))
	}
	return t
}

func (s *Store) PutIsLValue(n ast.Node, v bool) { s.lvalues[n] = v }

func (s *Store) GetIsLValue(n ast.Node) bool {
	v, ok := s.lvalues[n]
	if !ok {
		panic(fmt.Sprintf("decor: no lvalue decoration on %T at line %d", n, n.Line()))
	}
	return v
}
