package graph

import "github.com/dpedroso-lab/factorgraph/symbol"

// ColumnMap assigns each variable key touched by a Graph's factors a
// column offset and tangent width in the assembled Jacobian, built by
// walking factors in insertion order and recording each newly seen key
// the first time it appears (spec.md §4.7). Deterministic given a
// fixed (Graph, Values): the same factor order always reproduces the
// same offsets.
type ColumnMap struct {
	offsets map[symbol.Key]int
	widths  map[symbol.Key]int
	order   []symbol.Key
	n       int
}

// Offset returns the column offset assigned to key, or (0, false) if
// key was never seen while building this map.
func (c *ColumnMap) Offset(key symbol.Key) (int, bool) {
	off, ok := c.offsets[key]
	return off, ok
}

// Width returns the tangent width assigned to key.
func (c *ColumnMap) Width(key symbol.Key) int { return c.widths[key] }

// N returns the total number of columns (sum of all widths).
func (c *ColumnMap) N() int { return c.n }

// Keys returns the keys in the order they were first encountered.
func (c *ColumnMap) Keys() []symbol.Key { return c.order }
