package placement

import (
	"sort"

	"github.com/sarchlab/memplace/instrumentation/hooking"
)

// An AddressSpace is a fixed-size linear address space holding a set of
// non-overlapping regions.
type AddressSpace struct {
	*hooking.HookableBase

	name      string
	totalSize int
	regions   []Region
}

// Name returns the name of the address space.
func (s *AddressSpace) Name() string {
	return s.name
}

// TotalSize returns the capacity of the address space.
func (s *AddressSpace) TotalSize() int {
	return s.totalSize
}

// NumRegions returns the number of live regions.
func (s *AddressSpace) NumRegions() int {
	return len(s.regions)
}

// Regions returns a copy of the live regions, sorted by start offset.
func (s *AddressSpace) Regions() []Region {
	regions := make([]Region, len(s.regions))
	copy(regions, s.regions)

	sortByStart(regions)

	return regions
}

// RegionsOf returns the regions owned by owner, sorted by start offset.
func (s *AddressSpace) RegionsOf(owner string) []Region {
	var regions []Region

	for _, r := range s.regions {
		if r.Owner == owner {
			regions = append(regions, r)
		}
	}

	sortByStart(regions)

	return regions
}

// Owners returns the distinct owners that hold at least one region, in the
// order of their lowest region.
func (s *AddressSpace) Owners() []string {
	seen := make(map[string]bool)
	owners := []string{}

	for _, r := range s.Regions() {
		if seen[r.Owner] {
			continue
		}

		seen[r.Owner] = true
		owners = append(owners, r.Owner)
	}

	return owners
}

func sortByStart(regions []Region) {
	sort.Slice(regions, func(i, j int) bool {
		return regions[i].Start < regions[j].Start
	})
}
