package booking

import "sync"

type latchState int

const (
	latchIdle latchState = iota
	latchInFlight
	latchDone
)

// Latch guards a wizard's terminal action against duplicate submission.
// Transitions: Idle -> InFlight (Begin), InFlight -> Done (Succeed),
// InFlight -> Idle (Fail). A Begin attempted from InFlight or Done is
// rejected, so a duplicate event arriving before the first call's response,
// or after success, never issues a second call. Only an explicit failure
// reopens the latch for a retry of the same step.
type Latch struct {
	mu    sync.Mutex
	state latchState
}

// Begin attempts Idle -> InFlight. The caller may issue the terminal call
// only when Begin returns true.
func (l *Latch) Begin() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.state != latchIdle {
		return false
	}
	l.state = latchInFlight
	return true
}

// Succeed latches the terminal action as completed. The latch never reopens
// after this.
func (l *Latch) Succeed() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.state == latchInFlight {
		l.state = latchDone
	}
}

// Fail reopens the latch so the same step can be retried.
func (l *Latch) Fail() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.state == latchInFlight {
		l.state = latchIdle
	}
}

// InFlight reports whether the terminal call is pending.
func (l *Latch) InFlight() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state == latchInFlight
}

// Done reports whether the terminal action completed successfully.
func (l *Latch) Done() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state == latchDone
}
