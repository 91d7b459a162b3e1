package presence

import "time"

// CancelFunc cancels a scheduled callback. Calling it after the
// callback has fired is a no-op.
type CancelFunc func()

// Scheduler is the timer capability the coordinator's disconnect grace
// period runs on. Production code uses NewTimerScheduler; tests inject
// a fake to control time.
type Scheduler interface {
	// ScheduleAfter runs fn once after delay, unless cancelled first.
	ScheduleAfter(delay time.Duration, fn func()) CancelFunc
}

// timerScheduler implements Scheduler on time.AfterFunc.
type timerScheduler struct{}

// NewTimerScheduler returns the real-time Scheduler.
func NewTimerScheduler() Scheduler {
	return timerScheduler{}
}

func (timerScheduler) ScheduleAfter(delay time.Duration, fn func()) CancelFunc {
	timer := time.AfterFunc(delay, fn)
	return func() { timer.Stop() }
}
