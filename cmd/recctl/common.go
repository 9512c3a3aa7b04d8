package main

import (
	"fmt"
	"os"

	"github.com/joshuapare/recdb/internal/parser"
	"github.com/joshuapare/recdb/pkg/recset"
)

// openDB parses path into a DB, or returns an error naming the file.
func openDB(path string) (*recset.DB, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	p := parser.New(f, path)
	db, ok := p.ParseDB()
	if !ok {
		return nil, p.Err()
	}
	return db, nil
}

// pickRSet returns the RSet declaring type t, or, when t is empty, the
// DB's sole RSet (or nil if the DB holds zero or more than one).
func pickRSet(db *recset.DB, t string) *recset.RSet {
	if t != "" {
		return db.GetRSetByType(t)
	}
	if db.Size() != 1 {
		return nil
	}
	return db.GetRSet(0)
}
