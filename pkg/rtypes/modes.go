package rtypes

// WriteMode selects the Writer's output dialect (spec.md §4.10).
type WriteMode int

const (
	// Normal is the canonical rec textual syntax.
	Normal WriteMode = iota
	// Sexp is the lisp-ish debugging form.
	Sexp
)

func (m WriteMode) String() string {
	if m == Sexp {
		return "sexp"
	}
	return "normal"
}

// FexDialect selects one of the three field-expression parse dialects
// (spec.md §4.7).
type FexDialect int

const (
	// FexSimple separates names by whitespace; no subscripts.
	FexSimple FexDialect = iota
	// FexCSV separates names by commas; no subscripts.
	FexCSV
	// FexSubscripted separates names by commas; elements may carry a
	// [i] or [i-j] subscript.
	FexSubscripted
)

// ElementType tags MSet elements. 0 is reserved for the ANY wildcard
// (spec.md §4.4).
type ElementType int

const (
	// AnyElement is the wildcard type matching every element.
	AnyElement ElementType = 0
)
