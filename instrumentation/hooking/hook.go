// Package hooking lets instruments observe an address space without the
// placement code knowing about them. The address space fires a hook after
// every placement, failed placement and release; tracers, metrics and the
// verbose log subscribe to those points.
package hooking

// A HookPos names one point in the life of an address space where hooks
// fire, such as right after a region is placed. Positions are compared by
// pointer, so each one is declared once as a package variable.
type HookPos struct {
	Name string
}

// HookCtx describes one event seen at a HookPos.
type HookCtx struct {
	// Domain is the address space (or other Hookable) that fired the hook.
	Domain Hookable

	// Pos tells which event this is.
	Pos *HookPos

	// Item is the subject of the event: the placed or released region, or
	// the request that could not be placed.
	Item any

	// Detail is extra data for the event, such as the policy that served the
	// request. Positions that have none leave it nil.
	Detail any
}

// Hookable is implemented by anything that fires hooks, most notably the
// address space.
type Hookable interface {
	// AcceptHook subscribes a hook to every position the domain fires.
	// Subscribe before the first request; hooks cannot be removed.
	AcceptHook(hook Hook)

	// NumHooks returns how many hooks are subscribed.
	NumHooks() int

	// Hooks returns the subscribed hooks in subscription order.
	Hooks() []Hook

	// InvokeHook hands ctx to every subscribed hook.
	InvokeHook(ctx HookCtx)
}

// A Hook reacts to address space events. Hooks run synchronously inside the
// operation that fired them and must not call back into the address space.
type Hook interface {
	Func(ctx HookCtx)
}

// HookFunc lets a plain function serve as a Hook.
type HookFunc func(ctx HookCtx)

// Func calls f(ctx).
func (f HookFunc) Func(ctx HookCtx) {
	f(ctx)
}

// HookableBase keeps the subscriber list for a Hookable. Embed it to get the
// whole interface.
type HookableBase struct {
	hooks []Hook
}

// NewHookableBase returns a HookableBase with no subscribers.
func NewHookableBase() *HookableBase {
	return &HookableBase{hooks: make([]Hook, 0)}
}

// NumHooks returns how many hooks are subscribed.
func (h *HookableBase) NumHooks() int {
	return len(h.hooks)
}

// Hooks returns the subscribed hooks in subscription order.
func (h *HookableBase) Hooks() []Hook {
	return h.hooks
}

// AcceptHook subscribes a hook. Subscribing the same tracer or metrics hook
// twice would double count every event, so it panics. HookFuncs cannot be
// compared and are always accepted.
func (h *HookableBase) AcceptHook(hook Hook) {
	if _, isFunc := hook.(HookFunc); !isFunc && h.subscribed(hook) {
		panic("hook is already subscribed")
	}

	h.hooks = append(h.hooks, hook)
}

func (h *HookableBase) subscribed(hook Hook) bool {
	for _, s := range h.hooks {
		if s == hook {
			return true
		}
	}

	return false
}

// InvokeHook hands ctx to every subscribed hook, in subscription order.
func (h *HookableBase) InvokeHook(ctx HookCtx) {
	for _, hook := range h.hooks {
		hook.Func(ctx)
	}
}

var _ Hookable = (*HookableBase)(nil)
