// Package group partitions row selections by grouping-key equality.
//
// Two emission policies exist. Appearance order emits groups in the order
// their key first occurs while scanning the selection; sorted order emits
// them in ascending key order via the sort index. Neither policy ever
// reorders rows inside a group.
package group

import (
	"fmt"
	"strings"

	"github.com/frameql/frameql/internal/sortindex"
	"github.com/frameql/frameql/internal/table"
)

// Group is one partition cell: the key tuple and the ordered row indices
// sharing it. An empty By produces a single group with an empty key.
type Group struct {
	Key  []any
	Rows []int
}

// Partition splits a selection into groups keyed by the named columns.
// Every selected row lands in exactly one group. With sorted true, groups
// are emitted in ascending key order and, when the selection covers the
// whole store, the resulting permutation is cached as the store's active
// index. A narrowed selection sorts without caching: its permutation omits
// rows, so it could never answer a later full-table sort.
func Partition(s *table.ColumnStore, selection []int, by []string, sorted bool) ([]Group, error) {
	if len(by) == 0 {
		rows := make([]int, len(selection))
		copy(rows, selection)
		return []Group{{Key: []any{}, Rows: rows}}, nil
	}

	cols := make([]table.Column, len(by))
	for i, name := range by {
		c, err := s.Get(name)
		if err != nil {
			return nil, err
		}
		cols[i] = c
	}

	if sorted {
		return sortedPartition(s, selection, by, cols)
	}
	return appearancePartition(selection, cols), nil
}

// appearancePartition emits groups in first-seen key order, scanning the
// selection once.
func appearancePartition(selection []int, cols []table.Column) []Group {
	slots := make(map[string]int)
	var groups []Group

	for _, row := range selection {
		key := encodeKey(cols, row)
		slot, seen := slots[key]
		if !seen {
			slot = len(groups)
			slots[key] = slot
			groups = append(groups, Group{Key: keyTuple(cols, row)})
		}
		groups[slot].Rows = append(groups[slot].Rows, row)
	}

	return groups
}

func sortedPartition(s *table.ColumnStore, selection []int, by []string, cols []table.Column) ([]Group, error) {
	keys := make([]sortindex.Key, len(by))
	for i, name := range by {
		keys[i] = sortindex.Key{Column: name}
	}

	var perm []int
	var err error
	if len(selection) == s.NumRows() && isIdentity(selection) {
		perm, err = sortindex.CachedPermutation(s, keys)
	} else {
		perm, err = sortindex.Permutation(s, selection, keys)
	}
	if err != nil {
		return nil, err
	}

	var groups []Group
	for i, row := range perm {
		if i == 0 || !sameKey(cols, perm[i-1], row) {
			groups = append(groups, Group{Key: keyTuple(cols, row)})
		}
		g := &groups[len(groups)-1]
		g.Rows = append(g.Rows, row)
	}

	return groups, nil
}

func isIdentity(selection []int) bool {
	for i, r := range selection {
		if r != i {
			return false
		}
	}
	return true
}

func sameKey(cols []table.Column, i, j int) bool {
	for _, c := range cols {
		if sortindex.CompareAt(c, i, j) != 0 {
			return false
		}
	}
	return true
}

func keyTuple(cols []table.Column, row int) []any {
	key := make([]any, len(cols))
	for i, c := range cols {
		key[i] = c.Value(row)
	}
	return key
}

// encodeKey flattens a key tuple into a map key. Values carry a type tag so
// int64(1) and "1" never collide, and NA is distinct from every value.
func encodeKey(cols []table.Column, row int) string {
	var b strings.Builder
	for _, c := range cols {
		if c.IsNA(row) {
			b.WriteString("\x00na")
		} else {
			fmt.Fprintf(&b, "\x00%s:%v", c.Type(), c.Value(row))
		}
		b.WriteByte(0x1f)
	}
	return b.String()
}
