package tracing

import (
	"github.com/rs/xid"

	"github.com/sarchlab/memplace/instrumentation/hooking"
	"github.com/sarchlab/memplace/placement"
)

// TracerHook converts address space hooks into tasks.
type TracerHook struct {
	tracer Tracer
	filter TaskFilter
	seq    uint64
}

// NewTracerHook creates a hook that feeds tracer. If filter is nil, every
// task is traced.
func NewTracerHook(tracer Tracer, filter TaskFilter) *TracerHook {
	if filter == nil {
		filter = func(Task) bool { return true }
	}

	return &TracerHook{
		tracer: tracer,
		filter: filter,
	}
}

// Func builds a task from the hook context.
func (h *TracerHook) Func(ctx hooking.HookCtx) {
	task, ok := h.buildTask(ctx)
	if !ok {
		return
	}

	if !h.filter(task) {
		return
	}

	h.tracer.Trace(task)
}

func (h *TracerHook) buildTask(ctx hooking.HookCtx) (Task, bool) {
	var task Task

	switch ctx.Pos {
	case placement.HookPosAllocated:
		region := ctx.Item.(placement.Region)
		detail := ctx.Detail.(placement.AllocationDetail)
		task = allocationTask(detail.Request)
		task.Placed = true
		task.Offset = region.Start
		task.Waste = detail.Waste
	case placement.HookPosAllocationFailed:
		req := ctx.Item.(placement.Request)
		detail := ctx.Detail.(placement.FailureDetail)
		task = allocationTask(req)
		task.Offset = -1
		task.Reason = string(detail.Reason)
	case placement.HookPosReleased:
		removed := ctx.Detail.([]placement.Region)
		task = Task{
			Kind:   KindRelease,
			Owner:  ctx.Item.(string),
			Offset: -1,
		}

		for _, r := range removed {
			task.Length += r.Length
		}

		task.Placed = len(removed) > 0
		if task.Placed {
			task.Offset = removed[0].Start
		}
	default:
		return Task{}, false
	}

	h.seq++
	task.ID = xid.New().String()
	task.Seq = h.seq

	if space, ok := ctx.Domain.(*placement.AddressSpace); ok {
		st := space.Stats()
		task.Where = space.Name()
		task.Used = st.Used
		task.Free = st.Free
	}

	return task, true
}

func allocationTask(req placement.Request) Task {
	task := Task{
		Kind:   KindAllocate,
		Policy: req.Policy.String(),
		Owner:  req.Owner,
		Length: req.Length,
	}

	if req.Policy == placement.CircularFit {
		task.Cursor = req.Cursor
	}

	return task
}
