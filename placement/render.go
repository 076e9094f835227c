package placement

import (
	"strings"
	"unicode/utf8"
)

// Cells returns, for every offset, the owner of the region covering it or
// the empty string if the offset is free.
func (s *AddressSpace) Cells() []string {
	cells := make([]string, s.totalSize)

	for _, r := range s.regions {
		for i := r.Start; i < r.End(); i++ {
			cells[i] = r.Owner
		}
	}

	return cells
}

// Render returns a snapshot of the address space with one "[x]" cell per
// address unit, where x is the first character of the owner or a space if
// the unit is free. The owner is truncated for display only.
func (s *AddressSpace) Render() string {
	var b strings.Builder

	b.Grow(3 * s.totalSize)

	for _, owner := range s.Cells() {
		b.WriteByte('[')
		b.WriteRune(Initial(owner))
		b.WriteByte(']')
	}

	return b.String()
}

// Initial returns the character shown for owner in a rendered cell. Free
// cells, which have no owner, are shown as a space.
func Initial(owner string) rune {
	if owner == "" {
		return ' '
	}

	r, _ := utf8.DecodeRuneInString(owner)

	return r
}
