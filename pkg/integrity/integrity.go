// Package integrity implements the database integrity checker (spec.md
// §4.11), grounded on hive/verify/verify.go's ValidationError-plus-
// sequential-checks shape, restyled so per-record checks accumulate
// every violation instead of stopping at the first.
package integrity

import (
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"

	"github.com/joshuapare/recdb/internal/parser"
	"github.com/joshuapare/recdb/pkg/fex"
	"github.com/joshuapare/recdb/pkg/model"
	"github.com/joshuapare/recdb/pkg/recset"
	"github.com/joshuapare/recdb/pkg/rtypes"
	"github.com/joshuapare/recdb/pkg/typesys"
)

// Violation is one diagnostic raised while checking a DB, restyled from
// hive/verify/verify.go's ValidationError{Type, Message, Offset} with
// Line in place of Offset (a textual format has no byte offsets worth
// reporting once parsed).
type Violation struct {
	RSetType string
	Line     int
	Message  string
}

func (v Violation) String() string {
	if v.Line > 0 {
		return fmt.Sprintf("%s:%d: %s", v.RSetType, v.Line, v.Message)
	}
	if v.RSetType != "" {
		return fmt.Sprintf("%s: %s", v.RSetType, v.Message)
	}
	return v.Message
}

// Sink receives violations as they are discovered. The core never holds
// them in memory on the caller's behalf; a CLI utility supplies a Sink
// that formats and prints, or accumulates for later inspection.
type Sink interface {
	Report(Violation)
}

// SliceSink is a ready-made Sink that accumulates violations in memory.
type SliceSink struct {
	Violations []Violation
}

// Report implements Sink.
func (s *SliceSink) Report(v Violation) { s.Violations = append(s.Violations, v) }

// Fetcher retrieves the bytes of a remote descriptor named by a file
// path or URL (spec.md §6.3: "Remote descriptor fetcher"). The core
// never bakes in an HTTP client; callers inject one, or use FileFetcher
// for local-file references.
type Fetcher interface {
	Fetch(ref string) (io.ReadCloser, error)
}

// FileFetcher resolves a reference as a path on the local filesystem.
type FileFetcher struct{}

// Fetch implements Fetcher.
func (FileFetcher) Fetch(ref string) (io.ReadCloser, error) {
	f, err := os.Open(ref)
	if err != nil {
		return nil, rtypes.Wrap(rtypes.ErrKindRemote, "fetch "+ref, err)
	}
	return f, nil
}

// Options configures CheckDB (spec.md §4.11).
type Options struct {
	CheckDescriptors bool
	UseRemote        bool
	Fetcher          Fetcher
}

// CheckDB runs the per-RSet integrity checks over every RSet in db,
// reporting each violation to sink and returning the total count
// (spec.md §4.11).
func CheckDB(db *recset.DB, opts Options, sink Sink) int {
	count := 0
	for i := 0; i < db.Size(); i++ {
		count += checkRSet(db, db.GetRSet(i), opts, sink)
	}
	return count
}

// checkRSet runs one RSet's checks in spec order, short-circuiting on a
// remote-merge or descriptor failure (spec.md §4.11 steps 1-3), then
// running the per-record checks that accumulate without aborting (step
// 4).
func checkRSet(db *recset.DB, rs *recset.RSet, opts Options, sink Sink) int {
	rsType := rs.Type()
	count := 0

	if opts.UseRemote && rs.RemoteRef() != "" {
		orig := rs.Descriptor()
		var restore *model.Record
		if orig != nil {
			restore = orig.Dup()
		}
		if err := mergeRemoteDescriptor(db, rs, opts.Fetcher); err != nil {
			sink.Report(Violation{RSetType: rsType, Message: "remote descriptor merge failed: " + err.Error()})
			return count + 1
		}
		defer rs.SetDescriptor(restore)
	}

	if opts.CheckDescriptors {
		descViolations := validateDescriptor(rs)
		for _, v := range descViolations {
			v.RSetType = rsType
			sink.Report(v)
		}
		count += len(descViolations)
		if count > 0 {
			return count
		}
	}

	if n := rs.NumRecords(); n < rs.MinRecords() || n > rs.MaxRecords() {
		sink.Report(Violation{RSetType: rsType, Message: fmt.Sprintf(
			"record set has %d records, outside the declared bound [%d,%d]", n, rs.MinRecords(), rs.MaxRecords())})
		return count + 1
	}

	count += checkRecords(db, rs, sink)
	return count
}

// mergeRemoteDescriptor implements spec.md §4.11 step 1: fetch the
// reference through fetcher, parse it as a DB, find the RSet sharing
// rs's declared type, and append every field of its descriptor except
// "%rec" onto rs's own descriptor.
func mergeRemoteDescriptor(db *recset.DB, rs *recset.RSet, fetcher Fetcher) error {
	if fetcher == nil {
		return rtypes.New(rtypes.ErrKindRemote, "remote descriptor requested but no fetcher configured")
	}
	ref := rs.RemoteRef()
	rc, err := fetcher.Fetch(ref)
	if err != nil {
		return err
	}
	defer rc.Close()

	p := parser.New(rc, ref)
	remoteDB, ok := p.ParseDB()
	if !ok {
		return p.Err()
	}

	remoteRS := remoteDB.GetRSetByType(rs.Type())
	if remoteRS == nil || remoteRS.Descriptor() == nil {
		return rtypes.New(rtypes.ErrKindRemote, "remote source has no record set of type "+rs.Type())
	}

	merged := model.NewRecord()
	if rs.Descriptor() != nil {
		merged = rs.Descriptor().Dup()
	}
	recFn, _ := model.ParseFieldName("%rec")
	rd := remoteRS.Descriptor()
	for i := 0; i < rd.NumFields(); i++ {
		f := rd.GetField(i)
		if model.Equal(f.Name(), recFn) {
			continue
		}
		merged.AppendField(f.Dup())
	}
	rs.SetDescriptor(merged)
	return nil
}

// CheckRecord runs just the per-record subset of checks (spec.md §4.11:
// "used by editors to validate a proposed change without re-running
// whole-set checks where possible"); key uniqueness still scans rs, per
// spec.md §4.11. orig, when non-nil, is record's pre-edit value already
// present in rs; it is excluded from the uniqueness scan so editing a
// record in place does not collide with its own prior self.
func CheckRecord(db *recset.DB, rs *recset.RSet, orig, record *model.Record, sink Sink) int {
	count := 0
	count += checkKeyPresence(rs, record, sink)
	count += checkKeyUniqueness(rs, orig, record, sink)
	count += checkTypesAndCounts(db, rs, record, sink)
	return count
}

// checkRecords runs the per-record checks (spec.md §4.11 step 4) over
// every record in rs, accumulating every violation. Key uniqueness is
// checked once for the whole RSet rather than once per record, grounded
// on hive/index/unique_index.go's build-once value->first-owner index.
func checkRecords(db *recset.DB, rs *recset.RSet, sink Sink) int {
	count := 0
	count += checkAllKeysUnique(rs, sink)

	n := rs.NumRecords()
	for i := 0; i < n; i++ {
		rec := rs.GetRecord(i)
		count += checkKeyPresence(rs, rec, sink)
		count += checkTypesAndCounts(db, rs, rec, sink)
	}
	return count
}

// checkKeyPresence validates that every %key: field appears exactly once
// in record (spec.md §4.11).
func checkKeyPresence(rs *recset.RSet, record *model.Record, sink Sink) int {
	kf := rs.KeyFex()
	if kf == nil {
		return 0
	}
	count := 0
	for i := 0; i < kf.Size(); i++ {
		elem, _ := kf.Get(i)
		if n := record.NumFieldsByName(elem.Name); n != 1 {
			count++
			sink.Report(Violation{RSetType: rs.Type(), Message: fmt.Sprintf(
				"key field %q must appear exactly once, appears %d time(s)", elem.Name.ToString(model.RenderNormal), n)})
		}
	}
	return count
}

// checkAllKeysUnique scans every record in rs once per key field,
// grounded on hive/index/unique_index.go's map-from-name-to-first-owner
// pattern (here: key value -> index of the record that first defined
// it), reporting a violation at each later record sharing an earlier
// one's key value.
func checkAllKeysUnique(rs *recset.RSet, sink Sink) int {
	kf := rs.KeyFex()
	if kf == nil {
		return 0
	}
	count := 0
	for i := 0; i < kf.Size(); i++ {
		elem, _ := kf.Get(i)
		first := make(map[string]int)
		for j := 0; j < rs.NumRecords(); j++ {
			f := rs.GetRecord(j).GetFieldByName(elem.Name, 0)
			if f == nil {
				continue
			}
			val := f.Value()
			if firstIdx, ok := first[val]; ok {
				count++
				sink.Report(Violation{RSetType: rs.Type(), Message: fmt.Sprintf(
					"duplicated key value %q at record %d (already present at record %d)", val, j, firstIdx)})
				continue
			}
			first[val] = j
		}
	}
	return count
}

// checkKeyUniqueness is CheckRecord's single-record counterpart to
// checkAllKeysUnique: it scans rs for any other record sharing record's
// key value, excluding orig (record's own pre-edit self, if any).
func checkKeyUniqueness(rs *recset.RSet, orig, record *model.Record, sink Sink) int {
	kf := rs.KeyFex()
	if kf == nil {
		return 0
	}
	count := 0
	for i := 0; i < kf.Size(); i++ {
		elem, _ := kf.Get(i)
		f := record.GetFieldByName(elem.Name, 0)
		if f == nil {
			continue
		}
		val := f.Value()
		for j := 0; j < rs.NumRecords(); j++ {
			other := rs.GetRecord(j)
			if orig != nil && model.RecordsEqual(other, orig) {
				continue
			}
			of := other.GetFieldByName(elem.Name, 0)
			if of != nil && of.Value() == val {
				count++
				sink.Report(Violation{RSetType: rs.Type(), Message: fmt.Sprintf(
					"duplicated key value %q conflicts with an existing record", val)})
				break
			}
		}
	}
	return count
}

// checkTypesAndCounts validates field values against their resolved
// types (spec.md §4.6's referred-type-precedence rule) and the
// mandatory/unique/prohibit field-count constraints (spec.md §4.11).
func checkTypesAndCounts(db *recset.DB, rs *recset.RSet, record *model.Record, sink Sink) int {
	count := 0

	for i := 0; i < record.NumFields(); i++ {
		f := record.GetField(i)
		typ, warning, ok := resolveType(db, rs, f.Name())
		if warning != "" {
			sink.Report(Violation{RSetType: rs.Type(), Message: warning})
		}
		if !ok {
			continue
		}
		if ok, msg := typ.Check(f.Value()); !ok {
			count++
			sink.Report(Violation{RSetType: rs.Type(), Message: fmt.Sprintf(
				"field %q: %s", f.Name().ToString(model.RenderNormal), msg)})
		}
	}

	if mf := rs.MandatoryFex(); mf != nil {
		for i := 0; i < mf.Size(); i++ {
			elem, _ := mf.Get(i)
			if record.NumFieldsByName(elem.Name) < 1 {
				count++
				sink.Report(Violation{RSetType: rs.Type(), Message: fmt.Sprintf(
					"mandatory field %q is missing", elem.Name.ToString(model.RenderNormal))})
			}
		}
	}
	if uf := rs.UniqueFex(); uf != nil {
		for i := 0; i < uf.Size(); i++ {
			elem, _ := uf.Get(i)
			if n := record.NumFieldsByName(elem.Name); n > 1 {
				count++
				sink.Report(Violation{RSetType: rs.Type(), Message: fmt.Sprintf(
					"field %q must appear at most once, appears %d times", elem.Name.ToString(model.RenderNormal), n)})
			}
		}
	}
	if pf := rs.ProhibitFex(); pf != nil {
		for i := 0; i < pf.Size(); i++ {
			elem, _ := pf.Get(i)
			if n := record.NumFieldsByName(elem.Name); n > 0 {
				count++
				sink.Report(Violation{RSetType: rs.Type(), Message: fmt.Sprintf(
					"prohibited field %q appears %d time(s)", elem.Name.ToString(model.RenderNormal), n)})
			}
		}
	}
	return count
}

// resolveType implements spec.md §4.6's referred-type precedence: if fn
// is qualified "A:...:B" and a RSet named A exists with a registered
// type for role B, that referred type is consulted; when rs also
// registers a referring type for the same role and the two disagree (by
// Kind), the referring type wins and a non-empty warning is returned for
// the caller to report, per spec.md §4.11.
func resolveType(db *recset.DB, rs *recset.RSet, fn *model.FieldName) (typ *typesys.Type, warning string, ok bool) {
	referring, hasReferring := rs.Types().Lookup(fn)

	if fn.Size() < 2 || db == nil {
		return referring, "", hasReferring
	}
	referredRSetName := fn.Get(0)
	referredRS := db.GetRSetByType(referredRSetName)
	if referredRS == nil {
		return referring, "", hasReferring
	}
	referred, hasReferred := referredRS.Types().LookupName(fn.Last())
	if !hasReferred {
		return referring, "", hasReferring
	}
	if !hasReferring {
		return referred, "", true
	}
	if referred.Kind != referring.Kind {
		return referring, fmt.Sprintf(
			"field %q: referred type (from %q) disagrees with the referring type; the referring type is used",
			fn.ToString(model.RenderNormal), referredRSetName), true
	}
	return referring, "", true
}

// recTypeTokenRE matches a "%rec:" value's leading type token (spec.md
// §6.1's field-name part grammar, minus the "%" lead-in reserved for
// descriptor names).
var recTypeTokenRE = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_]*$`)

// validateDescriptor re-parses rs's descriptor field by field (spec.md
// §4.11 step 2), independent of rebuildCaches, which silently drops
// malformed fields instead of reporting them.
func validateDescriptor(rs *recset.RSet) []Violation {
	var out []Violation
	desc := rs.Descriptor()
	if desc == nil {
		return out
	}

	recCount, keyCount, sizeCount := 0, 0, 0
	localTypes := typesys.NewRegistry()
	var autoElems []fex.Elem

	for i := 0; i < desc.NumFields(); i++ {
		f := desc.GetField(i)
		line := f.Location().Line
		switch f.Name().Last() {
		case "%rec":
			recCount++
			fields := strings.Fields(f.Value())
			if len(fields) == 0 || !recTypeTokenRE.MatchString(fields[0]) {
				out = append(out, Violation{Line: line, Message: "%rec: has no valid type token: " + f.Value()})
			}
		case "%key":
			keyCount++
			if _, err := fex.New(f.Value(), rtypes.FexSimple); err != nil {
				out = append(out, Violation{Line: line, Message: "%key: is not a parseable field expression: " + err.Error()})
			}
		case "%size":
			sizeCount++
			if _, _, ok := recset.ParseSizeField(f.Value()); !ok {
				out = append(out, Violation{Line: line, Message: "%size: does not match (<|<=|>|>=)? number: " + f.Value()})
			}
		case "%type":
			fx, typ, err := recset.ParseTypeField(f.Value())
			if err != nil {
				out = append(out, Violation{Line: line, Message: "%type: " + err.Error()})
				continue
			}
			for j := 0; j < fx.Size(); j++ {
				elem, _ := fx.Get(j)
				localTypes.Register(elem.Name, typ)
			}
		case "%mandatory", "%unique", "%prohibit":
			if _, err := fex.New(f.Value(), rtypes.FexSimple); err != nil {
				out = append(out, Violation{Line: line, Message: f.Name().Last() + ": is not a parseable field expression: " + err.Error()})
			}
		case "%auto":
			fx, err := fex.New(f.Value(), rtypes.FexSimple)
			if err != nil {
				out = append(out, Violation{Line: line, Message: "%auto: is not a parseable field expression: " + err.Error()})
				continue
			}
			for j := 0; j < fx.Size(); j++ {
				elem, _ := fx.Get(j)
				autoElems = append(autoElems, elem)
			}
		}
	}

	if recCount != 1 {
		out = append(out, Violation{Message: fmt.Sprintf("record set must have exactly one %%rec: field, has %d", recCount)})
	}
	if keyCount > 1 {
		out = append(out, Violation{Message: fmt.Sprintf("record set must have at most one %%key: field, has %d", keyCount)})
	}
	if sizeCount > 1 {
		out = append(out, Violation{Message: fmt.Sprintf("record set must have at most one %%size: field, has %d", sizeCount)})
	}

	for _, elem := range autoElems {
		typ, ok := localTypes.LookupName(elem.Name.Last())
		if ok {
			switch typ.Kind {
			case typesys.KindInt, typesys.KindRange, typesys.KindDate:
				continue
			}
		}
		out = append(out, Violation{Message: fmt.Sprintf(
			"auto-increment field %q must be typed int, range, or date", elem.Name.ToString(model.RenderNormal))})
	}

	return out
}
