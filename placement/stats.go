package placement

// A FreeRun is a maximal interval of the address space that no region
// covers.
type FreeRun struct {
	Start  int `json:"start"`
	Length int `json:"length"`
}

// End returns the first offset after the run.
func (f FreeRun) End() int {
	return f.Start + f.Length
}

// FreeRuns derives the free runs from the region set, in ascending order.
func (s *AddressSpace) FreeRuns() []FreeRun {
	runs := []FreeRun{}
	cursor := 0

	for _, r := range s.Regions() {
		if r.Start > cursor {
			runs = append(runs, FreeRun{Start: cursor, Length: r.Start - cursor})
		}

		cursor = r.End()
	}

	if cursor < s.totalSize {
		runs = append(runs, FreeRun{Start: cursor, Length: s.totalSize - cursor})
	}

	return runs
}

// Stats summarizes the occupancy of an address space.
type Stats struct {
	TotalSize   int `json:"total_size"`
	Used        int `json:"used"`
	Free        int `json:"free"`
	NumRegions  int `json:"num_regions"`
	NumHoles    int `json:"num_holes"`
	LargestHole int `json:"largest_hole"`

	// ExternalFragmentation is 1 - LargestHole/Free, or 0 when nothing is
	// free.
	ExternalFragmentation float64 `json:"external_fragmentation"`
}

// Stats computes the occupancy summary of the address space.
func (s *AddressSpace) Stats() Stats {
	st := Stats{
		TotalSize:  s.totalSize,
		NumRegions: len(s.regions),
	}

	for _, r := range s.regions {
		st.Used += r.Length
	}

	for _, run := range s.FreeRuns() {
		st.Free += run.Length
		st.NumHoles++

		if run.Length > st.LargestHole {
			st.LargestHole = run.Length
		}
	}

	if st.Free > 0 {
		st.ExternalFragmentation = 1 - float64(st.LargestHole)/float64(st.Free)
	}

	return st
}
