package sanity

import (
	"strings"
	"testing"

	"github.com/kongove/scylla-artifact-tests/database"
	"github.com/kongove/scylla-artifact-tests/process"
)

type fakeRunner struct {
	stdout map[string]string
}

func (f *fakeRunner) Run(cmd string, opts process.Options) (*process.Result, error) {
	result := &process.Result{Command: cmd}
	for prefix, out := range f.stdout {
		if strings.HasPrefix(cmd, prefix) {
			result.Stdout = out
		}
	}
	return result, nil
}

func TestFindIOException(t *testing.T) {
	tests := []struct {
		name   string
		output string
		want   string
	}{
		{
			name:   "clean output",
			output: "total ops, 10000\nop rate, 4521\n",
			want:   "",
		},
		{
			name:   "io exception",
			output: "Connected to cluster\n  java.io.IOException: Connection reset by peer\ndone\n",
			want:   "java.io.IOException: Connection reset by peer",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := findIOException(tt.output); got != tt.want {
				t.Errorf("findIOException() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRunCassandraStressFailsOnIOException(t *testing.T) {
	r := New(&fakeRunner{stdout: map[string]string{
		"cassandra-stress write": "java.io.IOException: broken pipe\n",
	}}, nil)

	err := r.RunCassandraStress()
	if err == nil {
		t.Fatal("RunCassandraStress returned nil error despite IOException in output")
	}
	if !strings.Contains(err.Error(), "java.io.IOException") {
		t.Errorf("error does not carry the offending line: %v", err)
	}
}

func TestRunCassandraStressClean(t *testing.T) {
	r := New(&fakeRunner{stdout: map[string]string{}}, nil)
	if err := r.RunCassandraStress(); err != nil {
		t.Fatalf("RunCassandraStress: %v", err)
	}
}

func TestAfterInstallScriptletFailures(t *testing.T) {
	r := New(&fakeRunner{}, nil)

	results := r.AfterInstall([]string{"scylla-server-2.0"})
	if database.Passed(results) {
		t.Fatal("Passed = true although a scriptlet failure was reported")
	}

	var scriptlet *database.CheckResult
	for i := range results {
		if results[i].Name == "after-install/scriptlets" {
			scriptlet = &results[i]
		}
	}
	if scriptlet == nil {
		t.Fatal("no scriptlet check result emitted")
	}
	if scriptlet.Status != database.StatusFail {
		t.Errorf("scriptlet check status = %s, want fail", scriptlet.Status)
	}
	if !strings.Contains(scriptlet.Detail, "scylla-server-2.0") {
		t.Errorf("scriptlet detail does not name the package: %q", scriptlet.Detail)
	}
}

func TestAfterInstallClean(t *testing.T) {
	r := New(&fakeRunner{}, nil)

	results := r.AfterInstall(nil)
	if !database.Passed(results) {
		t.Errorf("Passed = false for a clean run: %+v", results)
	}
}
