// Package view projects a reconciliation snapshot into display rows.
//
// The pipeline is grouping, text search, type filtering, sorting and
// pagination. Every function here is pure: it never mutates its inputs,
// performs no I/O and degrades to placeholders on malformed records instead
// of failing. The same confidence rules feed the table, the sort and the
// export so the three never disagree.
package view
