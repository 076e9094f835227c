package tracing

// Task kinds.
const (
	KindAllocate = "allocate"
	KindRelease  = "release"
)

// A Task records a single operation applied to an address space.
type Task struct {
	ID    string `json:"id"`
	Seq   uint64 `json:"seq"`
	Kind  string `json:"kind"`
	Where string `json:"where"`

	Policy string `json:"policy,omitempty"`
	Owner  string `json:"owner"`
	Length int    `json:"length"`
	Cursor int    `json:"cursor"`

	Placed bool   `json:"placed"`
	Offset int    `json:"offset"`
	Waste  int    `json:"waste"`
	Reason string `json:"reason,omitempty"`

	// Used and Free describe the address space after the operation.
	Used int `json:"used"`
	Free int `json:"free"`
}

// TaskFilter is a function that can filter interesting tasks. If this function
// returns true, the task is considered useful.
type TaskFilter func(t Task) bool

// A Tracer can collect tasks.
type Tracer interface {
	Trace(task Task)
}
