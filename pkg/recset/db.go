package recset

import "github.com/joshuapare/recdb/pkg/rtypes"

// DB is an ordered sequence of RSets (spec.md §3 "DB"). At most one RSet
// per declared type is permitted; the reader enforces this while parsing
// (spec.md §4.9), and AppendRSet re-checks it for callers building a DB
// programmatically.
type DB struct {
	rsets []*RSet
}

// NewDB returns an empty DB.
func NewDB() *DB { return &DB{} }

// Size returns the number of RSets.
func (d *DB) Size() int { return len(d.rsets) }

// GetRSet returns the i-th RSet, or nil if out of range.
func (d *DB) GetRSet(i int) *RSet {
	if i < 0 || i >= len(d.rsets) {
		return nil
	}
	return d.rsets[i]
}

// InsertRSet inserts rs at position i: a negative i prepends, an i beyond
// the end appends (spec.md §4.5, mirroring MSet.InsertAt's clamping).
func (d *DB) InsertRSet(rs *RSet, i int) {
	if i < 0 {
		i = 0
	}
	if i > len(d.rsets) {
		i = len(d.rsets)
	}
	d.rsets = append(d.rsets, nil)
	copy(d.rsets[i+1:], d.rsets[i:])
	d.rsets[i] = rs
}

// AppendRSet appends rs, rejecting a second RSet that declares the same
// non-empty type (spec.md §4.9: "at most one RSet per type is permitted").
// An RSet with no type (rs.Type() == "") is exempt, since untyped RSets
// carry no type identity to collide on.
func (d *DB) AppendRSet(rs *RSet) error {
	if t := rs.Type(); t != "" && d.TypeP(t) {
		return rtypes.Wrap(rtypes.ErrKindFormat, "duplicate record set type: "+t, rtypes.ErrDuplicatedRset)
	}
	d.rsets = append(d.rsets, rs)
	return nil
}

// RemoveRSet removes the i-th RSet, if in range.
func (d *DB) RemoveRSet(i int) {
	if i < 0 || i >= len(d.rsets) {
		return
	}
	d.rsets = append(d.rsets[:i], d.rsets[i+1:]...)
}

// TypeP reports whether any RSet declares the given type.
func (d *DB) TypeP(t string) bool {
	for _, rs := range d.rsets {
		if rs.Type() == t {
			return true
		}
	}
	return false
}

// GetRSetByType returns the RSet declaring type t, or nil.
func (d *DB) GetRSetByType(t string) *RSet {
	for _, rs := range d.rsets {
		if rs.Type() == t {
			return rs
		}
	}
	return nil
}
