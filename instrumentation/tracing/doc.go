// Package tracing turns the hooks raised by an address space into task
// records and hands them to tracers.
//
// Every allocation attempt and every release becomes one Task. A TracerHook
// attached to an AddressSpace builds the tasks; tracers decide what to do with
// them (count them, store them in a database).
package tracing
