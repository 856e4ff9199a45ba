// Copyright 2024 The Factorgraph Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// package symbol implements the variable key: a 64-bit identifier
// packing a type tag (one byte, assigned per symbol family) and an
// index, as spec.md §3 describes. This plays the role spec.md assigns
// to an external "symbol-to-variable-type macro sugar" facility,
// reduced to plain Go since the language has no macro layer (see
// DESIGN.md's Open Question resolution); fem/keycodes.go's
// keycode-lookup helpers are the teacher's closest analog.
package symbol

import (
	"fmt"

	"github.com/cpmech/gosl/chk"
)

// indexBits is the width of the index portion of a Key; the remaining
// high byte carries the type tag.
const indexBits = 56
const indexMask = uint64(1)<<indexBits - 1

// Key is a totally ordered 64-bit variable identifier: tag in the top
// byte, index in the low 56 bits. Ordering on Key values is used
// deterministically to break ties during column elimination.
type Key uint64

// Make packs a type tag and index into a Key.
func Make(tag byte, index uint64) Key {
	if index > indexMask {
		chk.Panic("symbol: index %d exceeds %d-bit range", index, indexBits)
	}
	return Key(uint64(tag)<<indexBits | index)
}

// Tag returns the type tag packed into the receiver.
func (k Key) Tag() byte { return byte(uint64(k) >> indexBits) }

// Index returns the index packed into the receiver.
func (k Key) Index() uint64 { return uint64(k) & indexMask }

// String renders the key as "<tag><index>", e.g. "x3".
func (k Key) String() string { return fmt.Sprintf("%c%d", k.Tag(), k.Index()) }

// Family binds a symbol character to the type tag declared for that
// symbol family, mirroring the external metaprogramming facility
// spec.md §6 names; the core only needs to validate against it.
type Family struct {
	Char byte
	Tag  byte
}

// Registry records which type tag a symbol family has declared and
// hands out keys of that tag via KeyFor. graph.Values does not consult
// a Registry: its Insert checks a new variable only against the one
// already stored under the same key.
type Registry struct {
	families map[byte]byte // symbol char -> declared type tag
}

// NewRegistry returns an empty symbol family registry.
func NewRegistry() *Registry { return &Registry{families: make(map[byte]byte)} }

// Declare binds a symbol character to a type tag; redeclaring a
// character with a different tag is an error.
func (o *Registry) Declare(char, tag byte) error {
	if existing, ok := o.families[char]; ok && existing != tag {
		return chk.Err("symbol: family %q already declared with type tag %q, cannot redeclare as %q", char, existing, tag)
	}
	o.families[char] = tag
	return nil
}

// TagFor returns the declared type tag for a symbol character.
func (o *Registry) TagFor(char byte) (byte, bool) {
	tag, ok := o.families[char]
	return tag, ok
}

// KeyFor returns a new Key of the symbol family's declared type.
func (o *Registry) KeyFor(char byte, index uint64) (Key, error) {
	tag, ok := o.families[char]
	if !ok {
		return 0, chk.Err("symbol: family %q was never declared", char)
	}
	return Make(tag, index), nil
}
