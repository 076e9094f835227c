package tracing

import "github.com/sarchlab/memplace/datarecording"

const taskTableName = "placement_tasks"

type taskEntry struct {
	ID     string `memplace_data:"index"`
	Seq    uint64
	Kind   string `memplace_data:"index"`
	Where  string
	Policy string `memplace_data:"index"`
	Owner  string `memplace_data:"index"`
	Length int
	Cursor int
	Placed bool
	Offset int
	Waste  int
	Reason string
	Used   int
	Free   int
}

// DBTracer stores every task in a data recorder.
type DBTracer struct {
	recorder datarecording.DataRecorder
}

// NewDBTracer creates a DBTracer and the table it writes to.
func NewDBTracer(recorder datarecording.DataRecorder) *DBTracer {
	t := &DBTracer{recorder: recorder}

	t.recorder.CreateTable(taskTableName, taskEntry{})

	return t
}

// Trace buffers the task in the recorder.
func (t *DBTracer) Trace(task Task) {
	t.recorder.InsertData(taskTableName, taskEntry(task))
}

// MapTaskTable makes the task table queryable through reader. Results are of
// type *Task.
func MapTaskTable(reader datarecording.DataReader) {
	reader.MapTable(taskTableName, Task{})
}

// TaskTableName returns the name of the table that DBTracer writes.
func TaskTableName() string {
	return taskTableName
}
