package redhat

import (
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/kongove/scylla-artifact-tests/install"
)

const repoPath = "/etc/yum.repos.d/scylla.repo"

// Released fedora repository files, per release train.
var fedoraReleaseRepos = map[string]struct {
	repo string
	pkgs []string
}{
	"1.0":      {"http://downloads.scylladb.com/rpm/fedora/scylla-1.0.repo", []string{"scylla-server", "scylla-jmx", "scylla-tools"}},
	"1.1":      {"http://downloads.scylladb.com/rpm/fedora/scylla-1.1.repo", []string{"scylla-server", "scylla-jmx", "scylla-tools"}},
	"1.2":      {"http://downloads.scylladb.com/rpm/fedora/scylla-1.2.repo", []string{"scylla"}},
	"unstable": {"http://downloads.scylladb.com/rpm/unstable/fedora/master/latest/scylla.repo", []string{"scylla"}},
}

func init() {
	install.RegisterFlavor("centos:7", centos7{})
	install.RegisterFlavor("fedora:22", fedora22{})
}

type centos7 struct{}

func (centos7) RepoPath() string { return repoPath }

// removeConflicts drops the system packages the bundled scylla variants
// collide with. Failures are fine: the packages may simply not be there.
func removeConflicts(env *install.Env) {
	for _, pkg := range []string{"boost-thread", "boost-system", "abrt"} {
		if err := env.Manager.Remove(pkg); err != nil {
			log.WithField("package", pkg).Debug("conflicting package not removed")
		}
	}
}

func (centos7) SetupCI(env *install.Env) ([]string, error) {
	removeConflicts(env)
	if err := env.Manager.Upgrade(""); err != nil {
		return nil, err
	}
	return []string{"scylla"}, nil
}

func (centos7) SetupRelease(env *install.Env) ([]string, error) {
	removeConflicts(env)
	if err := env.Manager.Upgrade(""); err != nil {
		return nil, err
	}
	return []string{"scylla-enterprise"}, nil
}

type fedora22 struct{}

func (fedora22) RepoPath() string { return repoPath }

func (fedora22) SetupCI(env *install.Env) ([]string, error) {
	if err := env.Manager.Upgrade(""); err != nil {
		return nil, err
	}
	return []string{"scylla"}, nil
}

// SetupRelease installs a released train from the public fedora
// repositories; the train is selected through the run mode.
func (fedora22) SetupRelease(env *install.Env) ([]string, error) {
	train, known := fedoraReleaseRepos[env.Config.Mode]
	if !known {
		return nil, fmt.Errorf("install: unknown fedora release train %q", env.Config.Mode)
	}

	if err := install.FetchRepo(env, train.repo, repoPath); err != nil {
		return nil, err
	}
	if err := env.Manager.Upgrade(""); err != nil {
		return nil, err
	}
	return train.pkgs, nil
}
