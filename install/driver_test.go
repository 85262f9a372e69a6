package install

import (
	"errors"
	"testing"

	"github.com/kongove/scylla-artifact-tests/database"
)

func TestNewUnsupportedDistro(t *testing.T) {
	d := &database.Distro{Name: "slackware", Version: "14"}
	if _, err := New(d, &Env{}); err == nil {
		t.Error("New() accepted a distro with no registered flavor")
	}
}

func TestRegisterFlavorPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("RegisterFlavor with empty name did not panic")
		}
	}()
	RegisterFlavor("", nil)
}

func TestCheck(t *testing.T) {
	pass := Check("verify/selinux", func() error { return nil })
	if pass.Status != database.StatusPass || pass.Name != "verify/selinux" {
		t.Errorf("passing check = %+v", pass)
	}
	if pass.Duration < 0 {
		t.Errorf("check duration = %v", pass.Duration)
	}

	fail := Check("verify/ntp", func() error { return errors.New("ntpd is not running") })
	if fail.Status != database.StatusFail {
		t.Errorf("failing check status = %q", fail.Status)
	}
	if fail.Detail != "ntpd is not running" {
		t.Errorf("failing check detail = %q", fail.Detail)
	}
}

func TestFetchRepoRequiresSource(t *testing.T) {
	if err := FetchRepo(&Env{}, "", "/etc/yum.repos.d/scylla.repo"); err == nil {
		t.Error("FetchRepo() accepted an empty source")
	}
}

type stubFlavor struct{ repoPath string }

func (f stubFlavor) RepoPath() string                    { return f.repoPath }
func (f stubFlavor) SetupCI(*Env) ([]string, error)      { return nil, nil }
func (f stubFlavor) SetupRelease(*Env) ([]string, error) { return nil, nil }

func TestPlaceRepo(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		fetched bool
		wantErr bool
	}{
		{"ci", Config{Mode: ModeCI, SwRepo: "http://example.com/scylla.repo"}, true, false},
		{"ci missing repo", Config{Mode: ModeCI}, false, true},
		{"release with repo", Config{Mode: "1.2", SwRepo: "http://example.com/scylla.repo"}, true, false},
		{"release without repo", Config{Mode: "1.2"}, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runner := &hostRunner{}
			g := &Generic{
				env:    &Env{Runner: runner, Config: tt.config},
				flavor: stubFlavor{repoPath: "/etc/yum.repos.d/scylla.repo"},
			}

			err := g.placeRepo()
			if (err != nil) != tt.wantErr {
				t.Fatalf("placeRepo() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.fetched != runner.ran("curl ") {
				t.Errorf("repository fetched = %v, want %v", runner.ran("curl "), tt.fetched)
			}
		})
	}
}
