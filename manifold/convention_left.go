//go:build leftupdate

package manifold

// UseLeftUpdate selects the retraction convention; see convention_right.go.
const UseLeftUpdate = true
