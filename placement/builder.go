package placement

import (
	"github.com/sarchlab/memplace/instrumentation/hooking"
)

// A Builder can build address spaces.
type Builder struct {
	totalSize int
	hooks     []hooking.Hook
}

// MakeBuilder creates a new builder with a capacity of 64 units.
func MakeBuilder() Builder {
	return Builder{
		totalSize: 64,
	}
}

// WithTotalSize sets the number of address units of the address space.
func (b Builder) WithTotalSize(totalSize int) Builder {
	b.totalSize = totalSize
	return b
}

// WithHook attaches a hook to every address space built.
func (b Builder) WithHook(hook hooking.Hook) Builder {
	hooks := make([]hooking.Hook, len(b.hooks), len(b.hooks)+1)
	copy(hooks, b.hooks)
	b.hooks = append(hooks, hook)

	return b
}

// Build creates an empty address space. It panics if the total size is not
// positive.
func (b Builder) Build(name string) *AddressSpace {
	b.totalSizeMustBePositive()

	s := &AddressSpace{
		HookableBase: hooking.NewHookableBase(),
		name:         name,
		totalSize:    b.totalSize,
	}

	for _, h := range b.hooks {
		s.AcceptHook(h)
	}

	return s
}

func (b Builder) totalSizeMustBePositive() {
	if b.totalSize <= 0 {
		panic("total size of an address space must be positive")
	}
}

// NewAddressSpace creates an empty address space with the given capacity.
func NewAddressSpace(name string, totalSize int) *AddressSpace {
	return MakeBuilder().WithTotalSize(totalSize).Build(name)
}
