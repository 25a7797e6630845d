package sched

// Manual queues idle requests until the caller runs them. It is the
// scheduler of choice for tests and for synchronous tools: nothing happens
// until RunNext or RunUntilIdle is called.
type Manual struct {
	queue []func(Deadline)

	// NewDeadline builds the deadline handed to each slice.
	// Nil means Unlimited.
	NewDeadline func() Deadline

	slices int
}

// NewManual creates a Manual scheduler handing out Unlimited slices.
func NewManual() *Manual {
	return &Manual{}
}

// RequestIdle implements IdleScheduler.
func (m *Manual) RequestIdle(task func(Deadline)) {
	m.queue = append(m.queue, task)
}

// Pending returns the number of queued slices.
func (m *Manual) Pending() int {
	return len(m.queue)
}

// Slices returns the number of slices run so far.
func (m *Manual) Slices() int {
	return m.slices
}

// RunNext runs the oldest queued task. It reports whether one ran.
func (m *Manual) RunNext() bool {
	if len(m.queue) == 0 {
		return false
	}
	task := m.queue[0]
	m.queue = m.queue[1:]
	m.slices++
	task(m.deadline())
	return true
}

// RunUntilIdle runs tasks, including ones queued while running, until
// the queue is empty or limit slices have run (limit <= 0 means no limit).
// It returns the number of slices run.
func (m *Manual) RunUntilIdle(limit int) int {
	n := 0
	for m.RunNext() {
		n++
		if limit > 0 && n >= limit {
			break
		}
	}
	return n
}

func (m *Manual) deadline() Deadline {
	if m.NewDeadline == nil {
		return Unlimited
	}
	return m.NewDeadline()
}
