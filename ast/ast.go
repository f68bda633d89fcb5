// Package ast declares the directive model for beancount ledger files.
//
// The model is a closed union: Directive is implemented by exactly the types in
// this package, so every consumer (parser, booking engine, relational adapter)
// can exhaust all cases with a type switch. Values are immutable once the
// parser hands them out.
package ast

import (
	"golang.org/x/exp/slices"
)

// Directive is the interface implemented by all ledger directive types.
type Directive interface {
	WithMetadata

	Position() Position
	date() *Date
	Directive() string
}

// WithMetadata is implemented by nodes that can carry metadata lines.
type WithMetadata interface {
	AddMetadata(...*Metadata)
	Meta() []*Metadata
}

// withMetadata is the embeddable implementation of WithMetadata.
type withMetadata struct {
	Metadata []*Metadata
}

func (w *withMetadata) AddMetadata(m ...*Metadata) {
	w.Metadata = append(w.Metadata, m...)
}

func (w *withMetadata) Meta() []*Metadata { return w.Metadata }

// DirectiveDate returns the directive's date. All directives are dated.
func DirectiveDate(d Directive) *Date { return d.date() }

// File represents one parsed ledger file (or a merged tree of included files):
// the directives in source order plus the file-level options and includes.
type File struct {
	Directives []Directive
	Options    []*Option
	Includes   []*Include
}

// Option sets a ledger-wide configuration value.
//
// Example:
//
//	option "booking_method" "strict"
type Option struct {
	Pos   Position
	Name  string
	Value string
}

// Include splices another file's directive stream into the current position.
// Paths are resolved relative to the including file.
//
// Example:
//
//	include "accounts.bean"
type Include struct {
	Pos      Position
	Filename string
}

// SortDirectives orders directives by date, breaking same-date ties by original
// source order. The sort is stable by construction so that diagnostics always
// cite a deterministic position; directives are never reordered arbitrarily.
func SortDirectives(directives []Directive) {
	slices.SortStableFunc(directives, func(a, b Directive) int {
		ad, bd := a.date(), b.date()
		if ad.Before(bd.Time) {
			return -1
		}
		if ad.After(bd.Time) {
			return 1
		}
		return 0
	})
}
