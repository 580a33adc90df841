// Package changes carries change events between writers and observers.
//
// A Changes value names the tables and resource locators (URIs) a committed
// mutation affected. Writers publish on a Bus; reactive reads observe it through a Filter.
package changes

import (
	"slices"
	"strings"
)

type Changes struct {
	tables []string // sorted, unique
	uris   []string // sorted, unique
}

// ForTables returns a change event for the given tables. Duplicates and empty names are dropped.
func ForTables(tables ...string) Changes {
	return Changes{tables: set(tables)}
}

// ForURI returns a change event addressed to resource locators instead of tables.
func ForURI(uris ...string) Changes {
	return Changes{uris: set(uris)}
}

// WithURIs returns c also addressed to uris.
func (c Changes) WithURIs(uris ...string) Changes {
	return Changes{tables: c.tables, uris: set(append(slices.Clone(c.uris), uris...))}
}

// Merge returns the union of the tables and URIs affected by cs.
func Merge(cs ...Changes) Changes {
	var tables, uris []string
	for _, c := range cs {
		tables = append(tables, c.tables...)
		uris = append(uris, c.uris...)
	}
	return Changes{tables: set(tables), uris: set(uris)}
}

func set(names []string) []string {
	out := make([]string, 0, len(names))
	for _, n := range names {
		if n != "" {
			out = append(out, n)
		}
	}
	slices.Sort(out)
	return slices.Compact(out)
}

func (c Changes) Tables() []string { return slices.Clone(c.tables) }

func (c Changes) URIs() []string { return slices.Clone(c.uris) }

func (c Changes) Empty() bool { return len(c.tables) == 0 && len(c.uris) == 0 }

func (c Changes) AffectsTable(table string) bool {
	_, found := slices.BinarySearch(c.tables, table)
	return found
}

func (c Changes) AffectsURI(uri string) bool {
	_, found := slices.BinarySearch(c.uris, uri)
	return found
}

func (c Changes) Equal(other Changes) bool {
	return slices.Equal(c.tables, other.tables) && slices.Equal(c.uris, other.uris)
}

func (c Changes) String() string {
	s := "Changes{tables=[" + strings.Join(c.tables, ",") + "]"
	if len(c.uris) > 0 {
		s += " uris=[" + strings.Join(c.uris, ",") + "]"
	}
	return s + "}"
}

// Filter selects the change events an observer cares about.
type Filter struct {
	Tables []string
	URI    string
}

// Match reports whether c touches any filtered table or the filtered URI.
func (f Filter) Match(c Changes) bool {
	if f.URI != "" && c.AffectsURI(f.URI) {
		return true
	}
	for _, t := range f.Tables {
		if c.AffectsTable(t) {
			return true
		}
	}
	return false
}

func (f Filter) Empty() bool { return len(f.Tables) == 0 && f.URI == "" }
