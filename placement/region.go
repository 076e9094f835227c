package placement

import "fmt"

// A Region is a contiguous interval of the address space owned by a single
// process.
type Region struct {
	Owner  string `json:"owner"`
	Start  int    `json:"start"`
	Length int    `json:"length"`
}

// End returns the first offset after the region.
func (r Region) End() int {
	return r.Start + r.Length
}

// Contains returns true if offset lies inside the region.
func (r Region) Contains(offset int) bool {
	return offset >= r.Start && offset < r.End()
}

// Intersects returns true if [start, start+length) shares at least one offset
// with the region.
func (r Region) Intersects(start, length int) bool {
	return r.Start < start+length && start < r.End()
}

func (r Region) String() string {
	return fmt.Sprintf("%s[%d, %d)", r.Owner, r.Start, r.End())
}
