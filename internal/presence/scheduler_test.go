package presence

import (
	"testing"
	"time"
)

func TestTimerScheduler_Fires(t *testing.T) {
	scheduler := NewTimerScheduler()
	fired := make(chan struct{})

	scheduler.ScheduleAfter(10*time.Millisecond, func() { close(fired) })

	select {
	case <-fired:
	case <-time.After(2 * time.Second):
		t.Fatal("scheduled callback did not fire")
	}
}

func TestTimerScheduler_Cancel(t *testing.T) {
	scheduler := NewTimerScheduler()
	fired := make(chan struct{}, 1)

	cancel := scheduler.ScheduleAfter(100*time.Millisecond, func() { fired <- struct{}{} })
	cancel()

	select {
	case <-fired:
		t.Fatal("cancelled callback fired")
	case <-time.After(300 * time.Millisecond):
	}

	// Cancelling again after the window is a no-op.
	cancel()
}
