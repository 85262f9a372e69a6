package wait

import (
	"testing"
	"time"
)

func TestForSucceeds(t *testing.T) {
	calls := 0
	ok := For(func() bool {
		calls++
		return calls >= 3
	}, time.Second, time.Millisecond, "")

	if !ok {
		t.Fatal("For() = false, want true")
	}
	if calls != 3 {
		t.Errorf("fn called %d times, want 3", calls)
	}
}

func TestForTimesOut(t *testing.T) {
	ok := For(func() bool { return false }, 10*time.Millisecond, time.Millisecond, "")
	if ok {
		t.Fatal("For() = true, want false")
	}
}

func TestForImmediate(t *testing.T) {
	// A fn that succeeds on the first try must not sleep at all.
	start := time.Now()
	ok := For(func() bool { return true }, time.Minute, time.Second, "")
	if !ok {
		t.Fatal("For() = false, want true")
	}
	if time.Since(start) > 100*time.Millisecond {
		t.Error("For slept although fn succeeded immediately")
	}
}
