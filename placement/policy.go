package placement

import (
	"fmt"
	"strings"
)

// Policy selects where a new region is placed.
type Policy int

// The supported placement policies.
const (
	FirstFit Policy = iota
	BestFit
	WorstFit
	CircularFit
)

var policyNames = map[Policy]string{
	FirstFit:    "First-Fit",
	BestFit:     "Best-Fit",
	WorstFit:    "Worst-Fit",
	CircularFit: "Circular-Fit",
}

// Policies returns all the policies in menu order.
func Policies() []Policy {
	return []Policy{FirstFit, BestFit, WorstFit, CircularFit}
}

// Valid returns true if p is one of the supported policies.
func (p Policy) Valid() bool {
	_, ok := policyNames[p]
	return ok
}

func (p Policy) String() string {
	name, ok := policyNames[p]
	if !ok {
		return fmt.Sprintf("Policy(%d)", int(p))
	}

	return name
}

// MarshalText encodes the policy as its display name.
func (p Policy) MarshalText() ([]byte, error) {
	if !p.Valid() {
		return nil, fmt.Errorf("unknown policy %d", int(p))
	}

	return []byte(p.String()), nil
}

// UnmarshalText accepts every spelling ParsePolicy accepts.
func (p *Policy) UnmarshalText(text []byte) error {
	parsed, err := ParsePolicy(string(text))
	if err != nil {
		return err
	}

	*p = parsed

	return nil
}

// ParsePolicy converts a user supplied name into a Policy. Names are case
// insensitive and may omit the "-fit" suffix. The menu numbers 1 to 4 are
// accepted as well. "next-fit" is an alias of Circular-Fit.
func ParsePolicy(s string) (Policy, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	key = strings.NewReplacer("-", "", "_", "", " ", "").Replace(key)
	key = strings.TrimSuffix(key, "fit")

	switch key {
	case "first", "1":
		return FirstFit, nil
	case "best", "2":
		return BestFit, nil
	case "worst", "3":
		return WorstFit, nil
	case "circular", "next", "4":
		return CircularFit, nil
	}

	return 0, fmt.Errorf("%w: unknown policy %q", ErrInvalidRequest, s)
}
