package placement

import (
	"fmt"
	"math"
)

// A Request asks for a new region.
type Request struct {
	Policy Policy `json:"policy"`
	Owner  string `json:"owner"`
	Length int    `json:"length"`

	// Cursor is the offset where a Circular-Fit scan starts. Other policies
	// ignore it.
	Cursor int `json:"cursor,omitempty"`
}

// A Placement is the outcome of an allocation that passed validation.
type Placement struct {
	Placed bool `json:"placed"`
	Offset int  `json:"offset"`
}

// Allocate places a new region according to req.Policy.
//
// A request with an empty owner, an unknown policy, or a length outside
// (0, TotalSize] is rejected before scanning with an error that wraps
// ErrInvalidRequest. Otherwise the error is nil and Placement.Placed tells if
// a region was created. A failed allocation leaves the address space
// unchanged.
func (s *AddressSpace) Allocate(req Request) (Placement, error) {
	if err := s.validate(req); err != nil {
		s.invokeFailed(req, InvalidRequest, err)
		return Placement{}, err
	}

	var (
		offset int
		found  bool
	)

	switch req.Policy {
	case FirstFit:
		offset, found = s.scanFirstFit(req.Length)
	case BestFit:
		offset, found = s.scanBestFit(req.Length)
	case WorstFit:
		offset, found = s.scanWorstFit(req.Length)
	case CircularFit:
		offset, found = s.scanCircularFit(req.Length, req.Cursor)
	}

	if !found {
		s.invokeFailed(req, InsufficientSpace, nil)
		return Placement{}, nil
	}

	r := Region{Owner: req.Owner, Start: offset, Length: req.Length}
	s.regions = append(s.regions, r)
	s.invokeAllocated(req, r)

	return Placement{Placed: true, Offset: offset}, nil
}

// FirstFit is a shorthand of Allocate with the First-Fit policy.
func (s *AddressSpace) FirstFit(owner string, length int) (Placement, error) {
	return s.Allocate(Request{Policy: FirstFit, Owner: owner, Length: length})
}

// BestFit is a shorthand of Allocate with the Best-Fit policy.
func (s *AddressSpace) BestFit(owner string, length int) (Placement, error) {
	return s.Allocate(Request{Policy: BestFit, Owner: owner, Length: length})
}

// WorstFit is a shorthand of Allocate with the Worst-Fit policy.
func (s *AddressSpace) WorstFit(owner string, length int) (Placement, error) {
	return s.Allocate(Request{Policy: WorstFit, Owner: owner, Length: length})
}

// CircularFit is a shorthand of Allocate with the Circular-Fit policy,
// starting the scan at cursor.
func (s *AddressSpace) CircularFit(
	owner string,
	length int,
	cursor int,
) (Placement, error) {
	return s.Allocate(Request{
		Policy: CircularFit,
		Owner:  owner,
		Length: length,
		Cursor: cursor,
	})
}

func (s *AddressSpace) validate(req Request) error {
	if !req.Policy.Valid() {
		return fmt.Errorf("%w: unknown policy %d", ErrInvalidRequest, int(req.Policy))
	}

	if req.Owner == "" {
		return fmt.Errorf("%w: owner must not be empty", ErrInvalidRequest)
	}

	if req.Length <= 0 {
		return fmt.Errorf("%w: length %d must be positive",
			ErrInvalidRequest, req.Length)
	}

	if req.Length > s.totalSize {
		return fmt.Errorf("%w: length %d exceeds total size %d",
			ErrInvalidRequest, req.Length, s.totalSize)
	}

	return nil
}

func (s *AddressSpace) scanFirstFit(length int) (int, bool) {
	for i := 0; i <= s.totalSize-length; i++ {
		if s.IsFree(i, length) {
			return i, true
		}
	}

	return 0, false
}

func (s *AddressSpace) scanBestFit(length int) (int, bool) {
	bestStart := -1
	minWaste := math.MaxInt

	for i := 0; i <= s.totalSize-length; i++ {
		if !s.IsFree(i, length) {
			continue
		}

		waste := s.WasteAfter(i, length)
		if waste < minWaste {
			minWaste = waste
			bestStart = i
		}
	}

	return bestStart, bestStart >= 0
}

func (s *AddressSpace) scanWorstFit(length int) (int, bool) {
	worstStart := -1
	maxWaste := -1

	for i := 0; i <= s.totalSize-length; i++ {
		if !s.IsFree(i, length) {
			continue
		}

		waste := s.WasteAfter(i, length)
		if waste > maxWaste {
			maxWaste = waste
			worstStart = i
		}
	}

	return worstStart, worstStart >= 0
}

// scanCircularFit is a first fit that starts at the cursor and wraps around
// to offset 0.
func (s *AddressSpace) scanCircularFit(length, cursor int) (int, bool) {
	cursor = s.normalizeCursor(cursor)

	for i := cursor; i < s.totalSize; i++ {
		if s.IsFree(i, length) {
			return i, true
		}
	}

	for i := 0; i < cursor; i++ {
		if s.IsFree(i, length) {
			return i, true
		}
	}

	return 0, false
}

func (s *AddressSpace) normalizeCursor(cursor int) int {
	cursor %= s.totalSize
	if cursor < 0 {
		cursor += s.totalSize
	}

	return cursor
}
