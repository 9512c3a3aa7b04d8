// Package recset implements RSet and DB (spec.md §3, §4.5), tying the
// leaf model package together with the FEX and type-system packages to
// build each RSet's derived caches (type registry, size bound, key /
// mandatory / unique / prohibit / auto FEXes).
package recset

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/joshuapare/recdb/pkg/fex"
	"github.com/joshuapare/recdb/pkg/model"
	"github.com/joshuapare/recdb/pkg/rtypes"
	"github.com/joshuapare/recdb/pkg/typesys"
)

func recordEqual(a, b any) bool { return model.RecordsEqual(a.(*model.Record), b.(*model.Record)) }
func recordDup(v any) any       { return v.(*model.Record).Dup() }

// RSet carries an optional descriptor Record plus an ordered MSet of
// Record and Comment elements, and the descriptor-derived caches spec.md
// §3/§4.5 name (spec.md §3 "RSet"). The descriptor is authoritative:
// SetDescriptor invalidates and rebuilds every cache atomically before
// returning control (spec.md §5 "Shared-resource policy"), mirroring the
// teacher's hbinIndex rebuild in internal/reader/reader.go.
type RSet struct {
	descriptor  *model.Record
	set         *model.MSet
	elemRecord  rtypes.ElementType
	elemComment rtypes.ElementType

	// derived caches, rebuilt by rebuildCaches()
	types       *typesys.Registry
	minRecords  int
	maxRecords  int
	keyFex      *fex.FEX
	mandatoryFx *fex.FEX
	uniqueFex   *fex.FEX
	prohibitFex *fex.FEX
	autoFex     *fex.FEX
}

// NewRSet returns an empty RSet with no descriptor.
func NewRSet() *RSet {
	set := model.NewMSet()
	r := &RSet{set: set}
	r.elemRecord = set.RegisterType(recordEqual, recordDup)
	r.elemComment = set.RegisterType(commentEqualAdapter, commentDupAdapter)
	r.rebuildCaches()
	return r
}

func commentEqualAdapter(a, b any) bool {
	return model.CommentsEqual(a.(*model.Comment), b.(*model.Comment))
}
func commentDupAdapter(v any) any { return v.(*model.Comment).Dup() }

// Descriptor returns the RSet's descriptor record, or nil.
func (r *RSet) Descriptor() *model.Record { return r.descriptor }

// SetDescriptor clones rec into the RSet's descriptor and rebuilds every
// derived cache (spec.md §4.5).
func (r *RSet) SetDescriptor(rec *model.Record) {
	if rec == nil {
		r.descriptor = nil
	} else {
		r.descriptor = rec.Dup()
	}
	r.rebuildCaches()
}

// Type reads the leading token of the descriptor's "%rec:" field, or ""
// if there is no descriptor or no %rec field (spec.md §4.5).
func (r *RSet) Type() string {
	if r.descriptor == nil {
		return ""
	}
	f := firstFieldNamed(r.descriptor, "%rec")
	if f == nil {
		return ""
	}
	fields := strings.Fields(f.Value())
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

// RemoteRef returns the optional URL/file reference following the type
// token in "%rec: Type [URL_or_FILE]" (spec.md §6.1), or "".
func (r *RSet) RemoteRef() string {
	if r.descriptor == nil {
		return ""
	}
	f := firstFieldNamed(r.descriptor, "%rec")
	if f == nil {
		return ""
	}
	fields := strings.Fields(f.Value())
	if len(fields) < 2 {
		return ""
	}
	return fields[1]
}

// SetType creates a descriptor if absent and writes/updates its "%rec:"
// field, preserving any remote reference already present (spec.md
// §4.5).
func (r *RSet) SetType(t string) {
	if r.descriptor == nil {
		r.descriptor = model.NewRecord()
	}
	ref := r.RemoteRef()
	val := t
	if ref != "" {
		val = t + " " + ref
	}
	f := firstFieldNamed(r.descriptor, "%rec")
	if f != nil {
		f.SetValue(val)
	} else {
		fn, _ := model.ParseFieldName("%rec")
		r.descriptor.AppendField(model.NewField(fn, val))
	}
	r.rebuildCaches()
}

func firstFieldNamed(rec *model.Record, name string) *model.Field {
	fn, err := model.ParseFieldName(name)
	if err != nil {
		return nil
	}
	return rec.GetFieldByName(fn, 0)
}

// MSet exposes the underlying generic container.
func (r *RSet) MSet() *model.MSet { return r.set }

// NumRecords returns the number of data records.
func (r *RSet) NumRecords() int { return r.set.Count(r.elemRecord) }

// GetRecord returns the i-th data record, or nil.
func (r *RSet) GetRecord(i int) *model.Record {
	v, ok := r.set.Get(r.elemRecord, i)
	if !ok {
		return nil
	}
	return v.(*model.Record)
}

// AppendRecord appends a data record.
func (r *RSet) AppendRecord(rec *model.Record) { r.set.Append(r.elemRecord, rec) }

// InsertRecordAt inserts a data record at absolute MSet position i.
func (r *RSet) InsertRecordAt(rec *model.Record, i int) { r.set.InsertAt(r.elemRecord, rec, i) }

// NumComments returns the number of comment elements between records.
func (r *RSet) NumComments() int { return r.set.Count(r.elemComment) }

// GetComment returns the i-th comment, or nil.
func (r *RSet) GetComment(i int) *model.Comment {
	v, ok := r.set.Get(r.elemComment, i)
	if !ok {
		return nil
	}
	return v.(*model.Comment)
}

// AppendComment appends a comment element.
func (r *RSet) AppendComment(c *model.Comment) { r.set.Append(r.elemComment, c) }

// Types returns the RSet's cached type registry.
func (r *RSet) Types() *typesys.Registry { return r.types }

// MinRecords / MaxRecords return the cached %size bound (spec.md §4.5;
// default 0 and +Inf).
func (r *RSet) MinRecords() int { return r.minRecords }
func (r *RSet) MaxRecords() int { return r.maxRecords }

// KeyFex / MandatoryFex / UniqueFex / ProhibitFex / AutoFex return the
// corresponding cached FEX, or nil if the descriptor carries no such
// field.
func (r *RSet) KeyFex() *fex.FEX       { return r.keyFex }
func (r *RSet) MandatoryFex() *fex.FEX { return r.mandatoryFx }
func (r *RSet) UniqueFex() *fex.FEX    { return r.uniqueFex }
func (r *RSet) ProhibitFex() *fex.FEX  { return r.prohibitFex }
func (r *RSet) AutoFex() *fex.FEX      { return r.autoFex }

// Dup returns a deep copy.
func (r *RSet) Dup() *RSet {
	cp := &RSet{set: r.set.Dup(), elemRecord: r.elemRecord, elemComment: r.elemComment}
	if r.descriptor != nil {
		cp.descriptor = r.descriptor.Dup()
	}
	cp.rebuildCaches()
	return cp
}

const unboundedMaxRecords = math.MaxInt32

// rebuildCaches recomputes the type registry and cached FEXes/size bound
// from the current descriptor. It never fails: a malformed descriptor
// field is simply skipped here (the integrity checker, not cache
// rebuilding, is responsible for reporting descriptor errors, per
// spec.md §4.11).
func (r *RSet) rebuildCaches() {
	r.types = typesys.NewRegistry()
	r.minRecords = 0
	r.maxRecords = unboundedMaxRecords
	r.keyFex = nil
	r.mandatoryFx = nil
	r.uniqueFex = nil
	r.prohibitFex = nil
	r.autoFex = nil

	if r.descriptor == nil {
		return
	}

	for i := 0; i < r.descriptor.NumFields(); i++ {
		f := r.descriptor.GetField(i)
		last := f.Name().Last()
		switch last {
		case "%type":
			if fx, typ, err := parseTypeField(f.Value()); err == nil {
				for j := 0; j < fx.Size(); j++ {
					elem, _ := fx.Get(j)
					r.types.Register(elem.Name, typ)
				}
			}
		case "%mandatory":
			if fx, err := fex.New(f.Value(), rtypes.FexSimple); err == nil {
				r.mandatoryFx = mergeFex(r.mandatoryFx, fx)
			}
		case "%unique":
			if fx, err := fex.New(f.Value(), rtypes.FexSimple); err == nil {
				r.uniqueFex = mergeFex(r.uniqueFex, fx)
			}
		case "%prohibit":
			if fx, err := fex.New(f.Value(), rtypes.FexSimple); err == nil {
				r.prohibitFex = mergeFex(r.prohibitFex, fx)
			}
		case "%auto":
			if fx, err := fex.New(f.Value(), rtypes.FexSimple); err == nil {
				r.autoFex = mergeFex(r.autoFex, fx)
			}
		case "%key":
			if fx, err := fex.New(f.Value(), rtypes.FexSimple); err == nil && r.keyFex == nil {
				r.keyFex = fx
			}
		case "%size":
			if min, max, ok := parseSize(f.Value()); ok {
				r.minRecords, r.maxRecords = min, max
			}
		}
	}
}

func mergeFex(existing, add *fex.FEX) *fex.FEX {
	if existing == nil {
		return add
	}
	for i := 0; i < add.Size(); i++ {
		e, _ := add.Get(i)
		existing.Append(e.Name, e.Min, e.Max)
	}
	return existing
}

// ParseTypeField is the exported form of parseTypeField, used by the
// integrity checker to re-validate each "%type:" field individually
// against its own diagnostic (rebuildCaches silently skips malformed
// ones).
func ParseTypeField(value string) (*fex.FEX, *typesys.Type, error) {
	return parseTypeField(value)
}

// ParseSizeField is the exported form of parseSize, used by the
// integrity checker.
func ParseSizeField(value string) (min, max int, ok bool) {
	return parseSize(value)
}

// parseTypeField splits a "%type:" value ("FEX WS typeexpr") into its
// FEX prefix and type-expression suffix, then parses both (spec.md
// §4.6).
func parseTypeField(value string) (*fex.FEX, *typesys.Type, error) {
	kind, idx := findTypeKeyword(value)
	if idx < 0 {
		return nil, nil, rtypes.New(rtypes.ErrKindType, "missing type keyword in %type: "+value)
	}
	fexPart := strings.TrimSpace(value[:idx])
	typePart := strings.TrimSpace(value[idx:])
	_ = kind
	fx, err := fex.New(fexPart, rtypes.FexSimple)
	if err != nil {
		return nil, nil, err
	}
	typ, err := typesys.ParseDescriptor(typePart)
	if err != nil {
		return nil, nil, err
	}
	return fx, typ, nil
}

var typeKeywords = []string{"int", "bool", "range", "real", "size", "line", "regexp", "date", "enum", "field", "email"}

// findTypeKeyword finds the earliest standalone occurrence of a type
// keyword in value, returning the keyword and its start index, or
// ("", -1) if none is found.
func findTypeKeyword(value string) (string, int) {
	fields := strings.Fields(value)
	pos := 0
	for _, tok := range fields {
		start := strings.Index(value[pos:], tok) + pos
		for _, kw := range typeKeywords {
			if tok == kw {
				return kw, start
			}
		}
		pos = start + len(tok)
	}
	return "", -1
}

// NextAutoValue computes the next value for an "%auto:" field
// (`rec-db.c`'s auto-increment: max(existing values)+1 for int/range,
// "tomorrow" for date). fieldName must be declared int, range, or date
// in this RSet's type registry.
func (r *RSet) NextAutoValue(fieldName string) (string, error) {
	fn, err := model.ParseFieldName(fieldName)
	if err != nil {
		return "", err
	}
	typ, ok := r.types.LookupName(fieldName)
	if !ok {
		return "", rtypes.New(rtypes.ErrKindType, "auto field has no registered type: "+fieldName)
	}
	switch typ.Kind {
	case typesys.KindInt, typesys.KindRange:
		max := -1
		for i := 0; i < r.NumRecords(); i++ {
			f := r.GetRecord(i).GetFieldByName(fn, 0)
			if f == nil {
				continue
			}
			n, err := strconv.Atoi(strings.TrimSpace(f.Value()))
			if err != nil {
				continue
			}
			if n > max {
				max = n
			}
		}
		next := max + 1
		if typ.Kind == typesys.KindRange && max < 0 {
			next = typ.Min
		}
		return strconv.Itoa(next), nil
	case typesys.KindDate:
		return typesys.FormatDate(time.Now().AddDate(0, 0, 1)), nil
	default:
		return "", rtypes.New(rtypes.ErrKindType, "auto field must be int, range, or date: "+fieldName)
	}
}

// parseSize parses "%size:" values: "[<|<=|>|>=]? integer" (spec.md
// §6.1). A bare integer means min==max==that value; a comparison
// operator produces an open-ended bound on one side.
func parseSize(value string) (min, max int, ok bool) {
	value = strings.TrimSpace(value)
	for _, op := range []string{"<=", ">=", "<", ">"} {
		if strings.HasPrefix(value, op) {
			n, err := strconv.Atoi(strings.TrimSpace(value[len(op):]))
			if err != nil || n < 0 {
				return 0, 0, false
			}
			switch op {
			case "<":
				return 0, n - 1, true
			case "<=":
				return 0, n, true
			case ">":
				return n + 1, unboundedMaxRecords, true
			case ">=":
				return n, unboundedMaxRecords, true
			}
		}
	}
	n, err := strconv.Atoi(value)
	if err != nil || n < 0 {
		return 0, 0, false
	}
	return n, n, true
}
