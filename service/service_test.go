package service

import (
	"strings"
	"testing"

	"github.com/kongove/scylla-artifact-tests/process"
)

// fakeRunner replays canned results keyed by command substring.
type fakeRunner struct {
	commands []string
	systemd  bool
	statusOK bool
}

func (f *fakeRunner) Run(cmd string, opts process.Options) (*process.Result, error) {
	f.commands = append(f.commands, cmd)
	result := &process.Result{Command: cmd}

	switch {
	case strings.Contains(cmd, "/proc/1/comm"):
		if f.systemd {
			result.Stdout = "systemd\n"
		} else {
			result.Stdout = "init\n"
		}
	case strings.Contains(cmd, "status"):
		if !f.statusOK {
			result.ExitStatus = 3
			if !opts.IgnoreStatus {
				return result, &process.CmdError{Result: result}
			}
		}
		if f.statusOK && !f.systemd {
			result.Stdout = "scylla-server is running\n"
		}
	}
	return result, nil
}

func TestStartAll(t *testing.T) {
	r := &fakeRunner{systemd: true, statusOK: true}
	m := NewManager(r)

	if err := m.StartAll(); err != nil {
		t.Fatalf("StartAll: %v", err)
	}

	var starts []string
	for _, cmd := range r.commands {
		if strings.HasPrefix(cmd, "systemctl start") {
			starts = append(starts, cmd)
		}
	}
	if len(starts) != 2 {
		t.Fatalf("got %d start commands, want 2: %v", len(starts), starts)
	}
	if !strings.Contains(starts[0], "scylla-server") || !strings.Contains(starts[1], "scylla-jmx") {
		t.Errorf("services started in wrong order: %v", starts)
	}
}

func TestStartAllFailure(t *testing.T) {
	r := &fakeRunner{systemd: true, statusOK: false}
	m := NewManager(r)

	// Start commands succeed but the services never report running.
	err := m.StartAll()
	if err == nil {
		t.Fatal("StartAll returned nil error although services are down")
	}
	if !strings.Contains(err.Error(), "scylla-server") {
		t.Errorf("error does not name the failing service: %v", err)
	}
}

func TestStopAllReversesOrder(t *testing.T) {
	r := &fakeRunner{systemd: true, statusOK: false}
	m := NewManager(r)

	if err := m.StopAll(); err != nil {
		t.Fatalf("StopAll: %v", err)
	}

	var stops []string
	for _, cmd := range r.commands {
		if strings.HasPrefix(cmd, "systemctl stop") {
			stops = append(stops, cmd)
		}
	}
	if len(stops) != 2 {
		t.Fatalf("got %d stop commands, want 2: %v", len(stops), stops)
	}
	if !strings.Contains(stops[0], "scylla-jmx") || !strings.Contains(stops[1], "scylla-server") {
		t.Errorf("services stopped in wrong order: %v", stops)
	}
}

func TestSysvinitStatus(t *testing.T) {
	r := &fakeRunner{systemd: false, statusOK: true}
	m := NewManager(r)

	if !m.Status("scylla-server") {
		t.Error("Status = false, want true for a running sysvinit service")
	}

	found := false
	for _, cmd := range r.commands {
		if strings.HasPrefix(cmd, "service scylla-server status") {
			found = true
		}
	}
	if !found {
		t.Errorf("no sysvinit status command issued: %v", r.commands)
	}
}

func TestIsSystemd(t *testing.T) {
	if !IsSystemd(&fakeRunner{systemd: true}) {
		t.Error("IsSystemd = false, want true")
	}
	if IsSystemd(&fakeRunner{systemd: false}) {
		t.Error("IsSystemd = true, want false")
	}
}
