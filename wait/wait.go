package wait

import (
	"time"

	log "github.com/sirupsen/logrus"
)

// For polls fn every step until it returns true or timeout elapses. The text
// is logged on every attempt so long waits remain visible in the logs.
//
// It returns false if the timeout was reached before fn succeeded.
func For(fn func() bool, timeout, step time.Duration, text string) bool {
	deadline := time.Now().Add(timeout)

	for {
		if text != "" {
			log.Debug(text)
		}
		if fn() {
			return true
		}
		if time.Now().Add(step).After(deadline) {
			return false
		}
		time.Sleep(step)
	}
}
