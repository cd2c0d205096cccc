// Package types is the Type Manager: it interns every type constructed
// during semantic analysis and answers shape/compatibility queries against
// the interned representatives. Types are interned integers; the manager
// owns the arena and all ids it hands out are stable, copyable handles.
package types

import (
	"fmt"
	"strings"
)

// ID is an interned type handle, meaningful only to the Manager that issued
// it (NewManager interns Integer first, so ID 0 is Integer); always obtain
// an ID through a Manager constructor.
type ID int

// Kind distinguishes the type constructors.
type Kind int

const (
	Integer Kind = iota
	Float
	Boolean
	Character
	Void
	Array
	Function
	Error
)

type desc struct {
	kind   Kind
	size   int   // Array only
	elem   ID    // Array only
	params []ID  // Function only
	ret    ID    // Function only
}

// Manager interns and owns every type produced by a single compilation.
type Manager struct {
	arena []desc
	byKey map[string]ID

	primitives [4]ID // indexed by Kind for Integer..Character
	voidID     ID
	errorID    ID
	havePrim   bool
}

// NewManager returns a Manager with its primitive, void, and error types
// already interned, since every compilation needs them immediately.
func NewManager() *Manager {
	m := &Manager{byKey: make(map[string]ID)}
	m.primitives[Integer] = m.intern(desc{kind: Integer})
	m.primitives[Float] = m.intern(desc{kind: Float})
	m.primitives[Boolean] = m.intern(desc{kind: Boolean})
	m.primitives[Character] = m.intern(desc{kind: Character})
	m.voidID = m.intern(desc{kind: Void})
	m.errorID = m.intern(desc{kind: Error})
	m.havePrim = true
	return m
}

func (m *Manager) intern(d desc) ID {
	key := d.key()
	if id, ok := m.byKey[key]; ok {
		return id
	}
	id := ID(len(m.arena))
	m.arena = append(m.arena, d)
	m.byKey[key] = id
	return id
}

func (d desc) key() string {
	switch d.kind {
	case Array:
		return fmt.Sprintf("array:%d:%d", d.size, d.elem)
	case Function:
		var b strings.Builder
		b.WriteString("func:")
		for i, p := range d.params {
			if i > 0 {
				b.WriteByte(',')
			}
			fmt.Fprintf(&b, "%d", p)
		}
		fmt.Fprintf(&b, ":%d", d.ret)
		return b.String()
	default:
		return fmt.Sprintf("prim:%d", d.kind)
	}
}

func (m *Manager) get(id ID) desc {
	if int(id) < 0 || int(id) >= len(m.arena) {
		panic(fmt.Sprintf("types: invalid type id %d", id))
	}
	return m.arena[id]
}

// CreatePrimitive returns the (idempotent) id for one of Integer, Float,
// Boolean, or Character.
func (m *Manager) CreatePrimitive(kind Kind) ID {
	switch kind {
	case Integer, Float, Boolean, Character:
		return m.primitives[kind]
	default:
		panic(fmt.Sprintf("types: %v is not a primitive kind", kind))
	}
}

// CreateVoid returns the id for Void, used only as a function return type.
func (m *Manager) CreateVoid() ID { return m.voidID }

// CreateError returns the sentinel Error type used to suppress cascading
// diagnostics once a subtree has already been rejected.
func (m *Manager) CreateError() ID { return m.errorID }

// CreateArray interns Array(size, elem); elem must be a primitive type.
func (m *Manager) CreateArray(size int, elem ID) ID {
	return m.intern(desc{kind: Array, size: size, elem: elem})
}

// CreateFunction interns Function(params, ret).
func (m *Manager) CreateFunction(params []ID, ret ID) ID {
	cp := make([]ID, len(params))
	copy(cp, params)
	return m.intern(desc{kind: Function, params: cp, ret: ret})
}

// Kind reports the constructor of the given type.
func (m *Manager) Kind(id ID) Kind { return m.get(id).kind }

func (m *Manager) IsPrimitive(id ID) bool {
	switch m.get(id).kind {
	case Integer, Float, Boolean, Character:
		return true
	default:
		return false
	}
}

func (m *Manager) IsNumeric(id ID) bool {
	k := m.get(id).kind
	return k == Integer || k == Float
}

func (m *Manager) IsInteger(id ID) bool   { return m.get(id).kind == Integer }
func (m *Manager) IsFloat(id ID) bool     { return m.get(id).kind == Float }
func (m *Manager) IsBoolean(id ID) bool   { return m.get(id).kind == Boolean }
func (m *Manager) IsCharacter(id ID) bool { return m.get(id).kind == Character }
func (m *Manager) IsVoid(id ID) bool      { return m.get(id).kind == Void }
func (m *Manager) IsArray(id ID) bool     { return m.get(id).kind == Array }
func (m *Manager) IsFunction(id ID) bool  { return m.get(id).kind == Function }
func (m *Manager) IsError(id ID) bool     { return m.get(id).kind == Error }

// IsVoidFunction reports whether id is Function(...) with a Void return.
func (m *Manager) IsVoidFunction(id ID) bool {
	d := m.get(id)
	return d.kind == Function && m.IsVoid(d.ret)
}

func (m *Manager) GetArraySize(id ID) int {
	d := m.get(id)
	if d.kind != Array {
		panic("types: GetArraySize on non-array type")
	}
	return d.size
}

func (m *Manager) GetArrayElemType(id ID) ID {
	d := m.get(id)
	if d.kind != Array {
		panic("types: GetArrayElemType on non-array type")
	}
	return d.elem
}

func (m *Manager) GetNumOfParameters(id ID) int {
	d := m.get(id)
	if d.kind != Function {
		panic("types: GetNumOfParameters on non-function type")
	}
	return len(d.params)
}

func (m *Manager) GetParameterType(id ID, i int) ID {
	d := m.get(id)
	if d.kind != Function {
		panic("types: GetParameterType on non-function type")
	}
	return d.params[i]
}

func (m *Manager) GetFuncReturnType(id ID) ID {
	d := m.get(id)
	if d.kind != Function {
		panic("types: GetFuncReturnType on non-function type")
	}
	return d.ret
}

// SizeOf returns the word count occupied by a value of this type:
// primitives occupy one word; Array(n,e) occupies n*SizeOf(e).
func (m *Manager) SizeOf(id ID) int {
	d := m.get(id)
	switch d.kind {
	case Array:
		return d.size * m.SizeOf(d.elem)
	default:
		return 1
	}
}

// ToString renders the stable textual form the code generator writes into
// parameter and local-variable declarations.
func (m *Manager) ToString(id ID) string {
	d := m.get(id)
	switch d.kind {
	case Integer:
		return "int"
	case Float:
		return "float"
	case Boolean:
		return "bool"
	case Character:
		return "char"
	case Void:
		return "void"
	case Error:
		return "<error>"
	case Array:
		return fmt.Sprintf("array[%d] of %s", d.size, m.ToString(d.elem))
	case Function:
		parts := make([]string, len(d.params))
		for i, p := range d.params {
			parts[i] = m.ToString(p)
		}
		return fmt.Sprintf("func(%s):%s", strings.Join(parts, ","), m.ToString(d.ret))
	default:
		return "<unknown>"
	}
}

// EqualTypes holds when a and b are the same interned representative.
func (m *Manager) EqualTypes(a, b ID) bool { return a == b }

// Copyable holds when a value of type src may be stored into a location of
// type dst: identical types, Integer widened into Float, or equal-length
// arrays of equal element type.
func (m *Manager) Copyable(dst, src ID) bool {
	if m.EqualTypes(dst, src) {
		return true
	}
	if m.IsFloat(dst) && m.IsInteger(src) {
		return true
	}
	dd, sd := m.get(dst), m.get(src)
	if dd.kind == Array && sd.kind == Array {
		return dd.size == sd.size && m.EqualTypes(dd.elem, sd.elem)
	}
	return false
}

// Comparable holds for the given relational/equality operator between a and
// b. "=" and "≠" accept equal types or two numeric operands; the ordering
// operators accept only two numeric operands.
func (m *Manager) Comparable(a, b ID, op string) bool {
	switch op {
	case "=", "!=":
		if m.EqualTypes(a, b) {
			return true
		}
		return m.IsNumeric(a) && m.IsNumeric(b)
	default:
		return m.IsNumeric(a) && m.IsNumeric(b)
	}
}
