// Package sortindex computes stable multi-key sort permutations over a
// column store. Sorted grouping and the order() query surface both build on
// it; a full-table permutation can be cached on the store as its active
// index so an identical later sort is skipped.
package sortindex

import (
	"sort"
	"strings"

	"github.com/frameql/frameql/internal/table"
)

// Key is one sort key: a column name and a direction.
type Key struct {
	Column string
	Desc   bool
}

// ParseKeys converts order() key specs to Keys. A leading '-' marks a
// descending key: "grp", "-val".
func ParseKeys(specs ...string) []Key {
	keys := make([]Key, len(specs))
	for i, s := range specs {
		if strings.HasPrefix(s, "-") {
			keys[i] = Key{Column: s[1:], Desc: true}
		} else {
			keys[i] = Key{Column: s}
		}
	}
	return keys
}

// CompareAt orders two rows of one column. NA sorts before every non-NA
// value; two NAs tie.
func CompareAt(c table.Column, i, j int) int {
	ina, jna := c.IsNA(i), c.IsNA(j)
	switch {
	case ina && jna:
		return 0
	case ina:
		return -1
	case jna:
		return 1
	}

	switch c.Type() {
	case table.ColumnTypeInt:
		a, b := c.Value(i).(int64), c.Value(j).(int64)
		switch {
		case a < b:
			return -1
		case a > b:
			return 1
		}
	case table.ColumnTypeFloat:
		a, b := c.Value(i).(float64), c.Value(j).(float64)
		switch {
		case a < b:
			return -1
		case a > b:
			return 1
		}
	case table.ColumnTypeString:
		a, b := c.Value(i).(string), c.Value(j).(string)
		return strings.Compare(a, b)
	case table.ColumnTypeBool:
		a, b := c.Value(i).(bool), c.Value(j).(bool)
		switch {
		case !a && b:
			return -1
		case a && !b:
			return 1
		}
	}
	return 0
}

// Permutation returns the selection reordered so rows compare by the first
// key, ties broken by the following keys. Rows fully tied on all keys keep
// their original relative order.
func Permutation(s *table.ColumnStore, selection []int, keys []Key) ([]int, error) {
	cols := make([]table.Column, len(keys))
	for i, k := range keys {
		c, err := s.Get(k.Column)
		if err != nil {
			return nil, err
		}
		cols[i] = c
	}

	perm := make([]int, len(selection))
	copy(perm, selection)

	sort.SliceStable(perm, func(a, b int) bool {
		for i, c := range cols {
			cmp := CompareAt(c, perm[a], perm[b])
			if keys[i].Desc {
				cmp = -cmp
			}
			if cmp != 0 {
				return cmp < 0
			}
		}
		return false
	})

	return perm, nil
}

// CachedPermutation returns a full-table permutation for the given keys,
// reusing the store's active index when it still matches, and caches the
// result for the next identical request.
func CachedPermutation(s *table.ColumnStore, keys []Key) ([]int, error) {
	names := make([]string, len(keys))
	desc := make([]bool, len(keys))
	for i, k := range keys {
		names[i] = k.Column
		desc[i] = k.Desc
	}

	if ix := s.ActiveIndex(); ix.Matches(names, desc) {
		return ix.Perm, nil
	}

	selection := make([]int, s.NumRows())
	for i := range selection {
		selection[i] = i
	}
	perm, err := Permutation(s, selection, keys)
	if err != nil {
		return nil, err
	}

	s.SetActiveIndex(&table.ActiveIndex{Keys: names, Desc: desc, Perm: perm})
	return perm, nil
}

// Order builds a new table with rows reordered by the given key specs.
// The result's store carries an active index for those keys, since its rows
// are already in key order.
func Order(t *table.Table, specs ...string) (*table.Table, error) {
	keys := ParseKeys(specs...)
	s := t.Store()

	selection := make([]int, s.NumRows())
	for i := range selection {
		selection[i] = i
	}
	perm, err := Permutation(s, selection, keys)
	if err != nil {
		return nil, err
	}

	cols := make([]table.NamedColumn, 0, len(s.Names()))
	for _, name := range s.Names() {
		c, err := s.Get(name)
		if err != nil {
			return nil, err
		}
		cols = append(cols, table.Col(name, c.Take(perm)))
	}

	out, err := table.New(cols...)
	if err != nil {
		return nil, err
	}

	names := make([]string, len(keys))
	desc := make([]bool, len(keys))
	identity := make([]int, len(perm))
	for i := range identity {
		identity[i] = i
	}
	for i, k := range keys {
		names[i] = k.Column
		desc[i] = k.Desc
	}
	out.Store().SetActiveIndex(&table.ActiveIndex{Keys: names, Desc: desc, Perm: identity})

	return out, nil
}
