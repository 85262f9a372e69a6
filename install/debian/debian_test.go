package debian

import (
	"testing"

	"github.com/kongove/scylla-artifact-tests/install"
	"github.com/kongove/scylla-artifact-tests/process"
)

type fakeBackend struct {
	versions map[string]string
}

func (f *fakeBackend) Install(name string) error  { return nil }
func (f *fakeBackend) Remove(name string) error   { return nil }
func (f *fakeBackend) Upgrade(name string) error  { return nil }
func (f *fakeBackend) UpdateCache() error         { return nil }
func (f *fakeBackend) ScriptletFailures() []string { return nil }

func (f *fakeBackend) AvailableVersion(name string) (string, error) {
	return f.versions[name], nil
}

type nopRunner struct{}

func (nopRunner) Run(cmd string, opts process.Options) (*process.Result, error) {
	return &process.Result{Command: cmd}, nil
}

func TestNeedsJDK8(t *testing.T) {
	tests := []struct {
		name      string
		version   string
		threshold string
		want      bool
	}{
		{"above threshold", "1.7.1", "1.7", true},
		{"at threshold", "1.7", "1.7", true},
		{"below threshold", "1.6.4", "1.7", false},
		{"rc above tilde threshold", "1.7~rc1", "1.7~rc0", true},
		{"release below final threshold", "1.7~rc2", "1.7", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := &install.Env{
				Runner:  nopRunner{},
				Manager: &fakeBackend{versions: map[string]string{"scylla-server": tt.version}},
			}
			if got := needsJDK8(env, "scylla-server", tt.threshold); got != tt.want {
				t.Errorf("needsJDK8(%q, %q) = %v, want %v", tt.version, tt.threshold, got, tt.want)
			}
		})
	}
}
