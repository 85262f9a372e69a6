package process

import (
	"strings"
	"testing"
	"time"
)

func TestRunCapturesStdout(t *testing.T) {
	r, err := Run("echo hello", Options{})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if strings.TrimSpace(r.Stdout) != "hello" {
		t.Errorf("Stdout = %q, want \"hello\"", r.Stdout)
	}
	if r.ExitStatus != 0 {
		t.Errorf("ExitStatus = %d, want 0", r.ExitStatus)
	}
}

func TestRunNonZeroStatus(t *testing.T) {
	r, err := Run("false", Options{})
	if err == nil {
		t.Fatal("Run(false) returned nil error")
	}
	if _, ok := err.(*CmdError); !ok {
		t.Fatalf("error is %T, want *CmdError", err)
	}
	if r.ExitStatus == 0 {
		t.Error("ExitStatus = 0, want non-zero")
	}
}

func TestRunIgnoreStatus(t *testing.T) {
	r, err := Run("false", Options{IgnoreStatus: true})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if r.ExitStatus == 0 {
		t.Error("ExitStatus = 0, want non-zero")
	}
}

func TestRunShell(t *testing.T) {
	r, err := Run("echo a | tr a b", Options{Shell: true})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if strings.TrimSpace(r.Stdout) != "b" {
		t.Errorf("Stdout = %q, want \"b\"", r.Stdout)
	}
}

func TestRunTimeout(t *testing.T) {
	start := time.Now()
	r, _ := Run("sleep 10", Options{Timeout: 50 * time.Millisecond, IgnoreStatus: true})
	if time.Since(start) > 5*time.Second {
		t.Fatal("timeout was not enforced")
	}
	if r.ExitStatus == 0 {
		t.Error("ExitStatus = 0 for a killed command")
	}
}

func TestCombined(t *testing.T) {
	r := &Result{Stdout: "out", Stderr: "err"}
	if r.Combined() != "outerr" {
		t.Errorf("Combined() = %q", r.Combined())
	}
}

func TestHasCommand(t *testing.T) {
	if !HasCommand(Local{}, "sh") {
		t.Error("HasCommand(sh) = false, want true")
	}
	if HasCommand(Local{}, "definitely-not-a-real-tool") {
		t.Error("HasCommand(bogus) = true, want false")
	}
}
