package placement

import "github.com/sarchlab/memplace/instrumentation/hooking"

// Hook positions raised by an AddressSpace.
var (
	// HookPosAllocated fires after a region is placed. The item is the new
	// Region and the detail is an AllocationDetail.
	HookPosAllocated = &hooking.HookPos{Name: "Allocated"}

	// HookPosAllocationFailed fires when a request is rejected or no free
	// interval is found. The item is the Request and the detail is a
	// FailureDetail.
	HookPosAllocationFailed = &hooking.HookPos{Name: "AllocationFailed"}

	// HookPosReleased fires after a release. The item is the owner and the
	// detail is the []Region removed, which may be empty.
	HookPosReleased = &hooking.HookPos{Name: "Released"}
)

// AllocationDetail describes a successful placement.
type AllocationDetail struct {
	Request Request
	Waste   int
}

// FailureReason tells why an allocation did not produce a region.
type FailureReason string

// The failure kinds an allocation can report.
const (
	InsufficientSpace FailureReason = "InsufficientSpace"
	InvalidRequest    FailureReason = "InvalidRequest"
)

// FailureDetail describes a failed allocation.
type FailureDetail struct {
	Reason FailureReason
	Err    error
}

func (s *AddressSpace) invokeAllocated(req Request, r Region) {
	if s.NumHooks() == 0 {
		return
	}

	s.InvokeHook(hooking.HookCtx{
		Domain: s,
		Pos:    HookPosAllocated,
		Item:   r,
		Detail: AllocationDetail{
			Request: req,
			Waste:   s.WasteAfter(r.Start, r.Length),
		},
	})
}

func (s *AddressSpace) invokeFailed(req Request, reason FailureReason, err error) {
	if s.NumHooks() == 0 {
		return
	}

	s.InvokeHook(hooking.HookCtx{
		Domain: s,
		Pos:    HookPosAllocationFailed,
		Item:   req,
		Detail: FailureDetail{Reason: reason, Err: err},
	})
}

func (s *AddressSpace) invokeReleased(owner string, removed []Region) {
	if s.NumHooks() == 0 {
		return
	}

	s.InvokeHook(hooking.HookCtx{
		Domain: s,
		Pos:    HookPosReleased,
		Item:   owner,
		Detail: removed,
	})
}
