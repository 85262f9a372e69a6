package stopper

import (
	"testing"
	"time"
)

func TestStopUnblocksSleep(t *testing.T) {
	s := NewStopper()
	s.Begin()

	done := make(chan bool, 1)
	go func() {
		defer s.End()
		done <- s.Sleep(time.Minute)
	}()

	s.Stop()
	if slept := <-done; slept {
		t.Error("Sleep() = true after Stop, want false")
	}
}

func TestStopTwice(t *testing.T) {
	s := NewStopper()
	s.Stop()
	// A second Stop must not panic, the interrupt handler and the deferred
	// cleanup both call it.
	s.Stop()
}
