package main

import (
	"os"
	"path/filepath"
	"testing"
)

func writeTempRec(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.rec")
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func TestOpenDBParsesFile(t *testing.T) {
	path := writeTempRec(t, "%rec: Contact\n\nName: Alice\nEmail: alice@example.com\n")

	db, err := openDB(path)
	if err != nil {
		t.Fatalf("openDB: %v", err)
	}
	if db.Size() != 1 {
		t.Fatalf("expected one record set, got %d", db.Size())
	}
}

func TestOpenDBMissingFile(t *testing.T) {
	if _, err := openDB(filepath.Join(t.TempDir(), "missing.rec")); err == nil {
		t.Fatal("expected an error for a missing file")
	}
}

func TestPickRSetByType(t *testing.T) {
	path := writeTempRec(t, "%rec: Contact\n\nName: Alice\n\n%rec: Product\n\nName: Widget\n")

	db, err := openDB(path)
	if err != nil {
		t.Fatalf("openDB: %v", err)
	}

	rs := pickRSet(db, "Product")
	if rs == nil || rs.Type() != "Product" {
		t.Fatalf("expected the Product record set, got %v", rs)
	}
}

func TestPickRSetDefaultsToSoleRSet(t *testing.T) {
	path := writeTempRec(t, "%rec: Contact\n\nName: Alice\n")

	db, err := openDB(path)
	if err != nil {
		t.Fatalf("openDB: %v", err)
	}

	rs := pickRSet(db, "")
	if rs == nil || rs.Type() != "Contact" {
		t.Fatalf("expected the sole Contact record set, got %v", rs)
	}
}

func TestPickRSetAmbiguousWithoutType(t *testing.T) {
	path := writeTempRec(t, "%rec: Contact\n\nName: Alice\n\n%rec: Product\n\nName: Widget\n")

	db, err := openDB(path)
	if err != nil {
		t.Fatalf("openDB: %v", err)
	}

	if rs := pickRSet(db, ""); rs != nil {
		t.Fatalf("expected nil for an ambiguous multi-rset file without --type, got %v", rs)
	}
}
