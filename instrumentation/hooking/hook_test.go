package hooking_test

import (
	"bytes"
	"log"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/memplace/instrumentation/hooking"
)

type countingHook struct {
	count int
}

func (h *countingHook) Func(_ hooking.HookCtx) {
	h.count++
}

var _ = Describe("HookableBase", func() {
	var (
		base *hooking.HookableBase
		pos  = &hooking.HookPos{Name: "Test"}
	)

	BeforeEach(func() {
		base = hooking.NewHookableBase()
	})

	It("should invoke every registered hook", func() {
		h1 := &countingHook{}
		h2 := &countingHook{}
		base.AcceptHook(h1)
		base.AcceptHook(h2)

		base.InvokeHook(hooking.HookCtx{Domain: base, Pos: pos})

		Expect(base.NumHooks()).To(Equal(2))
		Expect(base.Hooks()).To(HaveLen(2))
		Expect(h1.count).To(Equal(1))
		Expect(h2.count).To(Equal(1))
	})

	It("should hand events to hooks in subscription order", func() {
		var seen []string
		tracer := hooking.HookFunc(func(ctx hooking.HookCtx) {
			seen = append(seen, "tracer:"+ctx.Item.(string))
		})
		metrics := hooking.HookFunc(func(ctx hooking.HookCtx) {
			seen = append(seen, "metrics:"+ctx.Item.(string))
		})
		base.AcceptHook(tracer)
		base.AcceptHook(metrics)

		base.InvokeHook(hooking.HookCtx{Domain: base, Pos: pos, Item: "P1"})
		base.InvokeHook(hooking.HookCtx{Domain: base, Pos: pos, Item: "P2"})

		Expect(seen).To(Equal([]string{
			"tracer:P1", "metrics:P1", "tracer:P2", "metrics:P2",
		}))
	})

	It("should panic on duplicated hooks", func() {
		h := &countingHook{}
		base.AcceptHook(h)

		Expect(func() { base.AcceptHook(h) }).To(Panic())
	})

	It("should accept function hooks", func() {
		called := 0
		f := hooking.HookFunc(func(_ hooking.HookCtx) { called++ })

		base.AcceptHook(f)
		base.AcceptHook(f)
		base.InvokeHook(hooking.HookCtx{Pos: pos})

		Expect(called).To(Equal(2))
	})
})

var _ = Describe("LogHook", func() {
	var (
		buf    *bytes.Buffer
		logger *log.Logger
	)

	BeforeEach(func() {
		buf = new(bytes.Buffer)
		logger = log.New(buf, "", 0)
	})

	It("should log the position, item and detail", func() {
		h := hooking.NewLogHook(logger, nil)

		h.Func(hooking.HookCtx{
			Pos:    &hooking.HookPos{Name: "Allocated"},
			Item:   "P1",
			Detail: struct{ Offset int }{3},
		})

		Expect(buf.String()).To(Equal("Allocated, P1, {Offset:3}\n"))
	})

	It("should skip lines rejected by the formatter", func() {
		h := hooking.NewLogHook(logger, func(ctx hooking.HookCtx) (string, bool) {
			return "x", ctx.Item != nil
		})

		h.Func(hooking.HookCtx{})
		h.Func(hooking.HookCtx{Item: 1})

		Expect(buf.String()).To(Equal("x\n"))
	})
})
