//go:build !leftupdate

package manifold

// UseLeftUpdate selects the retraction convention. Built with the
// default tag set, oplus is the right-update v · exp(tau); build with
// -tags leftupdate to switch the whole module to exp(tau) · v.
const UseLeftUpdate = false
