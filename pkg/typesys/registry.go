package typesys

import (
	"strings"

	"github.com/joshuapare/recdb/pkg/model"
)

// Registry maps FieldName to Type, looked up by role-equivalent matching
// so a qualified and an unqualified name refer to the same slot (spec.md
// §4.6). Keyed internally by the lower-cased last part, grounded on the
// teacher's case-insensitive name normalization in
// hive/index/unique_index.go (strings.ToLower before map lookup).
type Registry struct {
	byKey map[string]*Type
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{byKey: make(map[string]*Type)}
}

func canonicalKey(fn *model.FieldName) string {
	return strings.ToLower(fn.Last())
}

// Register associates typ with fn, replacing any previous entry for the
// same role-equivalence class (spec.md §4.6: "Re-registering a name
// replaces the previous entry").
func (r *Registry) Register(fn *model.FieldName, typ *Type) {
	r.byKey[canonicalKey(fn)] = typ
}

// Lookup returns the Type registered for fn, or (nil, false).
func (r *Registry) Lookup(fn *model.FieldName) (*Type, bool) {
	t, ok := r.byKey[canonicalKey(fn)]
	return t, ok
}

// LookupName is a convenience for when only the bare name string (not a
// parsed FieldName) is on hand, e.g. when resolving the "referred type"
// of a qualified field in another RSet (spec.md §4.6 precedence rule).
func (r *Registry) LookupName(name string) (*Type, bool) {
	t, ok := r.byKey[strings.ToLower(name)]
	return t, ok
}
