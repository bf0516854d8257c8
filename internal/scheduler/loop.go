package scheduler

import (
	"container/heap"
	"context"
	"sync"
	"time"
)

// Handler is an event callback. It runs on the loop goroutine.
type Handler func(ctx context.Context)

// postedBuffer is the capacity of the cross-goroutine inbox.
const postedBuffer = 64

// Timer is a scheduled event.
type Timer struct {
	// at is the due time on the loop clock.
	at time.Duration
	// seq orders events due at the same time.
	seq uint64
	// fn is the event callback.
	fn Handler
	// index is the heap position, or -1 once fired or cancelled.
	index int
	// loop owns the timer.
	loop *Loop
}

// Due returns the loop time at which the timer fires.
func (t *Timer) Due() time.Duration {
	return t.at
}

// Pending reports whether the timer has neither fired nor been cancelled.
func (t *Timer) Pending() bool {
	return t != nil && t.index >= 0
}

// Cancel removes a pending timer. It reports whether the timer was pending.
// Cancel must be called from the loop goroutine.
func (t *Timer) Cancel() bool {
	if !t.Pending() {
		return false
	}

	heap.Remove(&t.loop.queue, t.index)

	return true
}

// Loop is a single-goroutine event loop.
type Loop struct {
	// virtual selects the simulated clock.
	virtual bool
	// horizon stops a virtual loop before events due after it. Zero means none.
	horizon time.Duration
	// start anchors the wall clock.
	start time.Time
	// now is the virtual clock.
	now time.Duration
	// queue holds pending timers.
	queue timerHeap
	// seq is the next insertion number.
	seq uint64
	// posted receives handlers from other goroutines.
	posted chan Handler
	// done is closed when Run returns.
	done     chan struct{}
	doneOnce sync.Once
}

// NewVirtual creates a loop with a simulated clock that stops after horizon.
// A zero horizon runs until the queue drains.
func NewVirtual(horizon time.Duration) *Loop {
	return newLoop(true, horizon)
}

// NewRealtime creates a loop driven by the wall clock.
func NewRealtime() *Loop {
	return newLoop(false, 0)
}

func newLoop(virtual bool, horizon time.Duration) *Loop {
	return &Loop{
		virtual: virtual,
		horizon: horizon,
		start:   time.Now(),
		posted:  make(chan Handler, postedBuffer),
		done:    make(chan struct{}),
	}
}

// Now returns the time elapsed on the loop clock.
func (l *Loop) Now() time.Duration {
	if l.virtual {
		return l.now
	}

	return time.Since(l.start)
}

// After schedules fn to run d after the current loop time. Negative delays
// run at the current time. After must be called from the loop goroutine or
// before Run starts.
func (l *Loop) After(d time.Duration, fn Handler) *Timer {
	if d < 0 {
		d = 0
	}

	t := &Timer{
		at:   l.Now() + d,
		seq:  l.seq,
		fn:   fn,
		loop: l,
	}
	l.seq++

	heap.Push(&l.queue, t)

	return t
}

// Post hands fn to the loop from any goroutine. It runs at the loop time at
// which it is picked up. Posts after Run returned are dropped.
func (l *Loop) Post(fn Handler) {
	select {
	case l.posted <- fn:
	case <-l.done:
	}
}

// Pending returns the number of scheduled timers.
func (l *Loop) Pending() int {
	return l.queue.Len()
}

// Run processes events until ctx is cancelled. A virtual loop also returns
// when no events remain or the next one is due after the horizon.
func (l *Loop) Run(ctx context.Context) error {
	defer l.doneOnce.Do(func() { close(l.done) })

	if l.virtual {
		return l.runVirtual(ctx)
	}

	return l.runRealtime(ctx)
}

func (l *Loop) runVirtual(ctx context.Context) error {
	for ctx.Err() == nil {
		l.drainPosted()

		if l.queue.Len() == 0 {
			return nil
		}

		next := l.queue[0]
		if l.horizon > 0 && next.at > l.horizon {
			l.now = l.horizon

			return nil
		}

		heap.Pop(&l.queue)

		if next.at > l.now {
			l.now = next.at
		}

		next.fn(ctx)
	}

	return nil
}

func (l *Loop) runRealtime(ctx context.Context) error {
	wake := time.NewTimer(time.Hour)
	defer wake.Stop()

	for {
		l.drainPosted()

		var due <-chan time.Time

		if l.queue.Len() > 0 {
			next := l.queue[0]

			wait := next.at - l.Now()
			if wait <= 0 {
				heap.Pop(&l.queue)
				next.fn(ctx)

				if ctx.Err() != nil {
					return nil
				}

				continue
			}

			wake.Reset(wait)
			due = wake.C
		}

		select {
		case <-ctx.Done():
			return nil
		case fn := <-l.posted:
			l.After(0, fn)
		case <-due:
		}
	}
}

// drainPosted moves posted handlers into the queue without blocking.
func (l *Loop) drainPosted() {
	for {
		select {
		case fn := <-l.posted:
			l.After(0, fn)
		default:
			return
		}
	}
}

// timerHeap orders timers by due time, then insertion order.
type timerHeap []*Timer

func (h timerHeap) Len() int { return len(h) }

func (h timerHeap) Less(i, j int) bool {
	if h[i].at != h[j].at {
		return h[i].at < h[j].at
	}

	return h[i].seq < h[j].seq
}

func (h timerHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}

func (h *timerHeap) Push(x any) {
	t, _ := x.(*Timer)
	t.index = len(*h)
	*h = append(*h, t)
}

func (h *timerHeap) Pop() any {
	old := *h
	n := len(old)
	t := old[n-1]
	old[n-1] = nil
	t.index = -1
	*h = old[:n-1]

	return t
}
