package placement

// Release removes every region owned by owner. Releasing an owner that holds
// nothing is a no-op.
func (s *AddressSpace) Release(owner string) {
	var removed []Region

	kept := s.regions[:0]
	for _, r := range s.regions {
		if r.Owner == owner {
			removed = append(removed, r)
			continue
		}

		kept = append(kept, r)
	}

	for i := len(kept); i < len(s.regions); i++ {
		s.regions[i] = Region{}
	}

	s.regions = kept

	sortByStart(removed)
	s.invokeReleased(owner, removed)
}
