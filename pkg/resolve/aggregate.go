package resolve

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/joshuapare/recdb/pkg/model"
	"github.com/joshuapare/recdb/pkg/recset"
	"github.com/joshuapare/recdb/pkg/rtypes"
)

// Func computes one aggregate over the fields named fieldName in target,
// which is either a *model.Record or a *recset.RSet (spec.md §4.12:
// "rset|record").
type Func func(fieldName string, target any) (string, error)

// Aggregator is a name->Func registry, case-insensitive on lookup. It is
// a plain value, not a package-level singleton (spec.md §9: "global
// mutable state... must be per-instance, not a singleton"), mirroring
// hive/merge/strategy's pluggable-behavior-by-name pattern generalized
// from a closed set of strategies to an open, caller-extensible registry.
type Aggregator struct {
	funcs map[string]Func
}

// NewAggregator returns an Aggregator pre-registered with the two
// standard aggregates, Count and Sum (spec.md §4.12).
func NewAggregator() *Aggregator {
	a := &Aggregator{funcs: make(map[string]Func)}
	a.Register("count", Count)
	a.Register("sum", Sum)
	return a
}

// Register associates name (case-insensitive) with fn, replacing any
// previous registration.
func (a *Aggregator) Register(name string, fn Func) {
	a.funcs[strings.ToLower(name)] = fn
}

// Call looks up name and invokes it over fieldName and target.
func (a *Aggregator) Call(name, fieldName string, target any) (string, error) {
	fn, ok := a.funcs[strings.ToLower(name)]
	if !ok {
		return "", rtypes.New(rtypes.ErrKindState, "unknown aggregate function: "+name)
	}
	return fn(fieldName, target)
}

// fieldValues gathers every value of fields named fieldName across
// target, in record/RSet order.
func fieldValues(fieldName string, target any) ([]string, error) {
	fn, err := model.ParseFieldName(fieldName)
	if err != nil {
		return nil, err
	}
	switch t := target.(type) {
	case *model.Record:
		var vals []string
		n := t.NumFieldsByName(fn)
		for i := 0; i < n; i++ {
			vals = append(vals, t.GetFieldByName(fn, i).Value())
		}
		return vals, nil
	case *recset.RSet:
		var vals []string
		for r := 0; r < t.NumRecords(); r++ {
			rec := t.GetRecord(r)
			n := rec.NumFieldsByName(fn)
			for i := 0; i < n; i++ {
				vals = append(vals, rec.GetFieldByName(fn, i).Value())
			}
		}
		return vals, nil
	default:
		return nil, rtypes.New(rtypes.ErrKindState, "aggregate target must be a *model.Record or *recset.RSet")
	}
}

// Count returns the number of fields named fieldName in target, as a
// decimal string (spec.md §4.12).
func Count(fieldName string, target any) (string, error) {
	vals, err := fieldValues(fieldName, target)
	if err != nil {
		return "", err
	}
	return strconv.Itoa(len(vals)), nil
}

// Sum adds the numeric-parseable values of every field named fieldName
// in target, skipping the rest, and returns an integer string if the
// result is integral, else a fixed-point decimal string (spec.md §4.12).
func Sum(fieldName string, target any) (string, error) {
	vals, err := fieldValues(fieldName, target)
	if err != nil {
		return "", err
	}
	var sum float64
	for _, v := range vals {
		n, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			continue
		}
		sum += n
	}
	if sum == math.Trunc(sum) {
		return strconv.FormatInt(int64(sum), 10), nil
	}
	return fmt.Sprintf("%f", sum), nil
}
