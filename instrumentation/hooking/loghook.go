package hooking

import (
	"fmt"
	"log"
)

// Formatter turns a hook context into a single log line. It returns false if
// the context should not be logged.
type Formatter func(ctx HookCtx) (string, bool)

// LogHookBase provides the common logic for all hooks that write to a logger.
type LogHookBase struct {
	*log.Logger
}

// A LogHook writes one line per hook invocation into a logger.
type LogHook struct {
	LogHookBase

	format Formatter
}

// NewLogHook returns a LogHook that writes into logger. If format is nil, the
// position name, the item and the detail are printed.
func NewLogHook(logger *log.Logger, format Formatter) *LogHook {
	h := new(LogHook)
	h.Logger = logger
	h.format = format

	if h.format == nil {
		h.format = defaultFormat
	}

	return h
}

// Func writes the hook information into the logger.
func (h *LogHook) Func(ctx HookCtx) {
	line, ok := h.format(ctx)
	if !ok {
		return
	}

	h.Logger.Print(line)
}

func defaultFormat(ctx HookCtx) (string, bool) {
	if ctx.Pos == nil {
		return "", false
	}

	if ctx.Detail == nil {
		return fmt.Sprintf("%s, %v", ctx.Pos.Name, ctx.Item), true
	}

	return fmt.Sprintf("%s, %v, %+v", ctx.Pos.Name, ctx.Item, ctx.Detail), true
}
