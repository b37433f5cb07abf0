package sim

import "container/heap"

// timerTask is a deferred action keyed to the simulation clock.
type timerTask struct {
	dueAt float64 // sim time in ms
	seq   int     // insertion order, breaks due-time ties
	fn    func()
}

type taskHeap []timerTask

func (h taskHeap) Len() int { return len(h) }
func (h taskHeap) Less(i, j int) bool {
	if h[i].dueAt != h[j].dueAt {
		return h[i].dueAt < h[j].dueAt
	}
	return h[i].seq < h[j].seq
}
func (h taskHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }
func (h *taskHeap) Push(x any)   { *h = append(*h, x.(timerTask)) }
func (h *taskHeap) Pop() any {
	old := *h
	n := len(old)
	t := old[n-1]
	*h = old[:n-1]
	return t
}

// Scheduler runs time-delayed work (reload completion, doorway opening) as
// explicit tick-drained tasks instead of wall-clock timers, so headless runs
// stay deterministic. Tasks cannot be cancelled once scheduled; reload in
// particular always completes.
type Scheduler struct {
	tasks taskHeap
	seq   int
}

// NewScheduler creates an empty scheduler.
func NewScheduler() *Scheduler {
	return &Scheduler{}
}

// Schedule queues fn to run once the sim clock reaches now+delayMs.
// Same-due tasks run in the order they were scheduled.
func (s *Scheduler) Schedule(now, delayMs float64, fn func()) {
	heap.Push(&s.tasks, timerTask{dueAt: now + delayMs, seq: s.seq, fn: fn})
	s.seq++
}

// Advance runs every task due at or before now, in due order. Called once at
// the top of each world tick.
func (s *Scheduler) Advance(now float64) {
	for len(s.tasks) > 0 && s.tasks[0].dueAt <= now {
		t := heap.Pop(&s.tasks).(timerTask)
		t.fn()
	}
}

// Pending returns the number of queued tasks.
func (s *Scheduler) Pending() int {
	return len(s.tasks)
}
