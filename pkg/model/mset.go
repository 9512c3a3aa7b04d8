package model

import "github.com/joshuapare/recdb/pkg/rtypes"

// typeOps is the capability table a caller supplies when registering an
// element type with an MSet: equality and deep-clone callbacks, with no
// dispose callback (removed elements are simply dropped)
// (spec.md §3 "MSet"; spec.md §9 calls out that the source's per-type
// function pointers become a capability interface here).
type typeOps struct {
	equal func(a, b any) bool
	dup   func(v any) any
}

// element is one MSet slot: an opaque payload tagged with its registered
// element-type id.
type element struct {
	typ  rtypes.ElementType
	data any
}

// MSet is an ordered heterogeneous multiset holding elements tagged with
// an element-type id (0..N, where id 0 is the wildcard ANY), the shared
// container underlying Record and RSet (spec.md §3, §4.4).
type MSet struct {
	elems   []*element
	ops     map[rtypes.ElementType]typeOps
	nextTyp rtypes.ElementType
}

// NewMSet returns an empty MSet.
func NewMSet() *MSet {
	return &MSet{
		ops:     make(map[rtypes.ElementType]typeOps),
		nextTyp: 1, // 0 is reserved for ANY
	}
}

// RegisterType registers a new element type and returns its id (always
// > 0). Re-registering is not supported; each MSet instance registers its
// types once at construction, mirroring the teacher's one-time capability
// wiring in pkg/ast.
func (m *MSet) RegisterType(equal func(a, b any) bool, dup func(v any) any) rtypes.ElementType {
	id := m.nextTyp
	m.nextTyp++
	m.ops[id] = typeOps{equal: equal, dup: dup}
	return id
}

// Append adds an element of the given type at the end.
func (m *MSet) Append(typ rtypes.ElementType, data any) {
	m.elems = append(m.elems, &element{typ: typ, data: data})
}

// InsertAt inserts an element at absolute position i (0-based, across all
// types). i is clamped to [0, len].
func (m *MSet) InsertAt(typ rtypes.ElementType, data any, i int) {
	if i < 0 {
		i = 0
	}
	if i > len(m.elems) {
		i = len(m.elems)
	}
	e := &element{typ: typ, data: data}
	m.elems = append(m.elems, nil)
	copy(m.elems[i+1:], m.elems[i:])
	m.elems[i] = e
}

// Count returns the number of elements with the given type, or the total
// element count when typ is AnyElement (spec.md §4.4).
func (m *MSet) Count(typ rtypes.ElementType) int {
	if typ == rtypes.AnyElement {
		return len(m.elems)
	}
	n := 0
	for _, e := range m.elems {
		if e.typ == typ {
			n++
		}
	}
	return n
}

// Get returns the i-th element of the given type (or the i-th element
// overall when typ is AnyElement), or (nil, false) when out of range.
func (m *MSet) Get(typ rtypes.ElementType, i int) (any, bool) {
	if i < 0 {
		return nil, false
	}
	if typ == rtypes.AnyElement {
		if i >= len(m.elems) {
			return nil, false
		}
		return m.elems[i].data, true
	}
	k := 0
	for _, e := range m.elems {
		if e.typ == typ {
			if k == i {
				return e.data, true
			}
			k++
		}
	}
	return nil, false
}

// indexOf returns the absolute index of the i-th element of typ, or -1.
func (m *MSet) indexOf(typ rtypes.ElementType, i int) int {
	if typ == rtypes.AnyElement {
		if i >= 0 && i < len(m.elems) {
			return i
		}
		return -1
	}
	k := 0
	for idx, e := range m.elems {
		if e.typ == typ {
			if k == i {
				return idx
			}
			k++
		}
	}
	return -1
}

// RemoveAt removes the absolute index i, shifting later elements left.
// Reports whether an element was removed.
func (m *MSet) RemoveAt(i int) bool {
	if i < 0 || i >= len(m.elems) {
		return false
	}
	m.elems = append(m.elems[:i], m.elems[i+1:]...)
	return true
}

// Remove removes the k-th element of the given type. Reports whether an
// element was removed.
func (m *MSet) Remove(typ rtypes.ElementType, k int) bool {
	idx := m.indexOf(typ, k)
	if idx < 0 {
		return false
	}
	return m.RemoveAt(idx)
}

// Each calls fn for every element in insertion order, passing its type
// and payload. Stops early if fn returns false.
func (m *MSet) Each(fn func(typ rtypes.ElementType, data any) bool) {
	for _, e := range m.elems {
		if !fn(e.typ, e.data) {
			return
		}
	}
}

// SearchByData returns the absolute index of the first element of type typ
// whose payload equals data under typ's registered equal callback, or -1
// if typ is not registered or no element matches. Grounded on
// rec_mset_search (SPEC_FULL.md §4).
func (m *MSet) SearchByData(typ rtypes.ElementType, data any) int {
	ops, ok := m.ops[typ]
	if !ok {
		return -1
	}
	for idx, e := range m.elems {
		if e.typ != typ {
			continue
		}
		if ops.equal(e.data, data) {
			return idx
		}
	}
	return -1
}

// Dup returns a deep copy of the MSet: the type registry (ops, by
// reference -- callbacks are stateless closures) is shared, but every
// element is cloned via its type's dup callback.
func (m *MSet) Dup() *MSet {
	cp := &MSet{
		ops:     m.ops,
		nextTyp: m.nextTyp,
		elems:   make([]*element, len(m.elems)),
	}
	for i, e := range m.elems {
		ops := m.ops[e.typ]
		cp.elems[i] = &element{typ: e.typ, data: ops.dup(e.data)}
	}
	return cp
}
