package session

import (
	"fmt"
	"sync"

	"github.com/sarchlab/memplace/placement"
)

// An Outcome describes the result of one allocation made through a session.
type Outcome struct {
	Policy    placement.Policy    `json:"policy"`
	Owner     string              `json:"owner"`
	Length    int                 `json:"length"`
	Cursor    int                 `json:"cursor"`
	Placement placement.Placement `json:"placement"`
}

// Report returns a human-readable line describing the outcome.
func (o Outcome) Report() string {
	if o.Placement.Placed {
		return fmt.Sprintf("%s: allocated process %s at position %d",
			o.Policy, o.Owner, o.Placement.Offset)
	}

	return fmt.Sprintf("%s: insufficient memory for process %s",
		o.Policy, o.Owner)
}

// A Session drives one address space. All methods are safe for concurrent
// use; each one holds the session lock for its whole duration. Hooks attached
// to the address space run while the lock is held and must not call back into
// the session.
type Session struct {
	lock   sync.Mutex
	space  *placement.AddressSpace
	policy placement.Policy
	cursor Cursor
}

// New creates a session over space that allocates with policy.
func New(space *placement.AddressSpace, policy placement.Policy) *Session {
	if !policy.Valid() {
		panic(fmt.Sprintf("invalid policy %d", int(policy)))
	}

	return &Session{
		space:  space,
		policy: policy,
	}
}

// Policy returns the policy used for new allocations.
func (s *Session) Policy() placement.Policy {
	s.lock.Lock()
	defer s.lock.Unlock()

	return s.policy
}

// SetPolicy changes the policy used for new allocations. The cursor is kept.
func (s *Session) SetPolicy(p placement.Policy) error {
	if !p.Valid() {
		return fmt.Errorf("%w: unknown policy %d", placement.ErrInvalidRequest, int(p))
	}

	s.lock.Lock()
	defer s.lock.Unlock()

	s.policy = p

	return nil
}

// Cursor returns the offset where the next Circular-Fit scan begins.
func (s *Session) Cursor() int {
	s.lock.Lock()
	defer s.lock.Unlock()

	return s.cursor.Position()
}

// TotalSize returns the capacity of the address space.
func (s *Session) TotalSize() int {
	return s.space.TotalSize()
}

// Name returns the name of the address space.
func (s *Session) Name() string {
	return s.space.Name()
}

// Allocate places a region for owner with the current policy. With
// Circular-Fit, the cursor is passed to the engine and advanced afterwards,
// including when the request fails or is invalid.
func (s *Session) Allocate(owner string, length int) (Outcome, error) {
	s.lock.Lock()
	defer s.lock.Unlock()

	req := placement.Request{
		Policy: s.policy,
		Owner:  owner,
		Length: length,
	}

	if s.policy == placement.CircularFit {
		req.Cursor = s.cursor.Position()
	}

	p, err := s.space.Allocate(req)

	if s.policy == placement.CircularFit {
		s.cursor.Advance(p.Placed, length, s.space.TotalSize())
	}

	outcome := Outcome{
		Policy:    req.Policy,
		Owner:     owner,
		Length:    length,
		Cursor:    req.Cursor,
		Placement: p,
	}

	return outcome, err
}

// Release frees every region held by owner and returns them.
func (s *Session) Release(owner string) []placement.Region {
	s.lock.Lock()
	defer s.lock.Unlock()

	held := s.space.RegionsOf(owner)
	s.space.Release(owner)

	return held
}

// Render returns the textual snapshot of the address space.
func (s *Session) Render() string {
	s.lock.Lock()
	defer s.lock.Unlock()

	return s.space.Render()
}

// Cells returns the owner of every offset, "" for free offsets.
func (s *Session) Cells() []string {
	s.lock.Lock()
	defer s.lock.Unlock()

	return s.space.Cells()
}

// Regions returns the live regions sorted by start.
func (s *Session) Regions() []placement.Region {
	s.lock.Lock()
	defer s.lock.Unlock()

	return s.space.Regions()
}

// FreeRuns returns the free runs sorted by start.
func (s *Session) FreeRuns() []placement.FreeRun {
	s.lock.Lock()
	defer s.lock.Unlock()

	return s.space.FreeRuns()
}

// Stats returns the occupancy summary of the address space.
func (s *Session) Stats() placement.Stats {
	s.lock.Lock()
	defer s.lock.Unlock()

	return s.space.Stats()
}

// Inspect runs f with exclusive access to the address space. f must not
// keep the pointer after it returns.
func (s *Session) Inspect(f func(space *placement.AddressSpace)) {
	s.lock.Lock()
	defer s.lock.Unlock()

	f(s.space)
}

// A Snapshot is a view of a session taken under a single lock acquisition.
type Snapshot struct {
	Name      string              `json:"name"`
	TotalSize int                 `json:"total_size"`
	Policy    string              `json:"policy"`
	Cursor    int                 `json:"cursor"`
	Render    string              `json:"render"`
	Regions   []placement.Region  `json:"regions"`
	FreeRuns  []placement.FreeRun `json:"free_runs"`
}

// Snapshot captures the policy, the cursor and the address space together.
func (s *Session) Snapshot() Snapshot {
	s.lock.Lock()
	defer s.lock.Unlock()

	return Snapshot{
		Name:      s.space.Name(),
		TotalSize: s.space.TotalSize(),
		Policy:    s.policy.String(),
		Cursor:    s.cursor.Position(),
		Render:    s.space.Render(),
		Regions:   s.space.Regions(),
		FreeRuns:  s.space.FreeRuns(),
	}
}
