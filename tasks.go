package sceneedit

// TaskQueue defers work to the next UI tick. Tasks run in the order they
// were posted; a task posted while the queue is running waits for the
// following tick.
type TaskQueue struct {
	pending []func()
	running []func()
}

// Post schedules fn for the next call to RunPending.
func (q *TaskQueue) Post(fn func()) {
	q.pending = append(q.pending, fn)
}

// Len returns the number of tasks waiting to run.
func (q *TaskQueue) Len() int { return len(q.pending) }

// RunPending runs every task posted before the call and returns how many ran.
func (q *TaskQueue) RunPending() int {
	if len(q.pending) == 0 {
		return 0
	}
	q.running, q.pending = q.pending, q.running[:0]
	for i, fn := range q.running {
		fn()
		q.running[i] = nil
	}
	n := len(q.running)
	q.running = q.running[:0]
	return n
}
