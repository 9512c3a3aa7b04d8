// Package model implements the in-memory data model described in spec.md
// §3: FieldName, Field, Comment, the heterogeneous MSet container and
// Record. RSet and DB live in package recset. All cloning is deep; no element is ever shared between two
// owners (spec.md §3 "Ownership & lifecycle").
package model
