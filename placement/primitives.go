package placement

// Overlaps returns true if [start, start+length) intersects any live region.
func (s *AddressSpace) Overlaps(start, length int) bool {
	for _, r := range s.regions {
		if r.Intersects(start, length) {
			return true
		}
	}

	return false
}

// IsFree returns true if [start, start+length) lies inside the address space
// and does not overlap any live region.
func (s *AddressSpace) IsFree(start, length int) bool {
	if start < 0 || start+length > s.totalSize {
		return false
	}

	return !s.Overlaps(start, length)
}

// WasteAfter returns the size of the free run that would follow a region
// placed at [start, start+length). The run ends at the closest region that
// starts at or after start+length, or at the end of the address space.
//
// Only the gap after the candidate is measured; gaps before it are ignored.
func (s *AddressSpace) WasteAfter(start, length int) int {
	end := start + length
	nextOccupiedStart := s.totalSize

	for _, r := range s.regions {
		if r.Start >= end && r.Start < nextOccupiedStart {
			nextOccupiedStart = r.Start
		}
	}

	return nextOccupiedStart - end
}
