package install

import (
	"strings"
	"testing"

	"github.com/kongove/scylla-artifact-tests/database"
	"github.com/kongove/scylla-artifact-tests/process"
)

// hostRunner answers commands from a canned table and records everything it
// was asked, so tests can assert that host state is inspected through the
// Runner rather than on the machine the harness runs on.
type hostRunner struct {
	responses map[string]process.Result
	commands  []string
}

func (r *hostRunner) Run(cmd string, opts process.Options) (*process.Result, error) {
	r.commands = append(r.commands, cmd)

	for prefix, resp := range r.responses {
		if strings.HasPrefix(cmd, prefix) {
			result := resp
			result.Command = cmd
			if result.ExitStatus != 0 && !opts.IgnoreStatus {
				return &result, &process.CmdError{Result: &result}
			}
			return &result, nil
		}
	}
	return &process.Result{Command: cmd}, nil
}

func (r *hostRunner) ran(prefix string) bool {
	for _, cmd := range r.commands {
		if strings.HasPrefix(cmd, prefix) {
			return true
		}
	}
	return false
}

func TestVerifyInspectsHostThroughRunner(t *testing.T) {
	runner := &hostRunner{responses: map[string]process.Result{
		"cat /proc/1/comm": {Stdout: "systemd\n"},
		"getenforce":       {Stdout: "Permissive\n"},
		"coredumpctl info": {Stderr: "No coredumps found.\n", ExitStatus: 1},
		"readlink -f":      {Stdout: "/var/lib/scylla/coredump\n"},
		"systemctl status": {Stdout: "active (running)\n"},
	}}

	g := &Generic{
		env:    &Env{Runner: runner},
		distro: &database.Distro{Name: "centos", Version: "7"},
	}
	results := g.verify([]string{"/dev/vdb"})

	for _, result := range results {
		if result.Status != database.StatusPass {
			t.Errorf("%s = %s (%s), want pass", result.Name, result.Status, result.Detail)
		}
	}

	// Host state must be inspected through the Runner so that remote hosts
	// are checked instead of the harness machine.
	for _, cmd := range []string{
		"test -f /usr/bin/node_exporter",
		"mountpoint -q /var/lib/scylla",
		"readlink -f /var/lib/systemd/coredump",
	} {
		if !runner.ran(cmd) {
			t.Errorf("verify never issued %q through the runner", cmd)
		}
	}
}

func TestVerifyReportsBrokenHost(t *testing.T) {
	runner := &hostRunner{responses: map[string]process.Result{
		"cat /proc/1/comm":               {Stdout: "systemd\n"},
		"getenforce":                     {Stdout: "Enforcing\n"},
		"test -f /usr/bin/node_exporter": {ExitStatus: 1},
		"mountpoint -q":                  {ExitStatus: 1},
		"coredumpctl info":               {Stderr: "No coredumps found.\n", ExitStatus: 1},
		"readlink -f":                    {Stdout: "/var/lib/systemd/coredump\n"},
		"systemctl status":               {Stdout: "active (running)\n"},
	}}

	g := &Generic{
		env:    &Env{Runner: runner},
		distro: &database.Distro{Name: "centos", Version: "7"},
	}
	results := g.verify([]string{"/dev/vdb"})

	failed := make(map[string]bool)
	for _, result := range results {
		if result.Status == database.StatusFail {
			failed[result.Name] = true
		}
	}
	for _, name := range []string{"verify/selinux", "verify/node-exporter", "verify/raid", "verify/coredump"} {
		if !failed[name] {
			t.Errorf("%s passed against a broken host", name)
		}
	}
}
