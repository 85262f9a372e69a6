package debian

import (
	"github.com/kongove/scylla-artifact-tests/install"
	"github.com/kongove/scylla-artifact-tests/process"
	"github.com/kongove/scylla-artifact-tests/versionfmt"
	"github.com/kongove/scylla-artifact-tests/versionfmt/dpkg"
)

const repoPath = "/etc/apt/sources.list.d/scylla.list"

func init() {
	install.RegisterFlavor("ubuntu:14.04", ubuntu1404{})
	install.RegisterFlavor("ubuntu:16.04", ubuntu1604{})
	install.RegisterFlavor("debian:8", debian8{})
}

// needsJDK8 reports whether the artifact version requires Java 8, which old
// distro releases do not ship by default.
func needsJDK8(env *install.Env, pkg, threshold string) bool {
	ver, err := env.Manager.AvailableVersion(pkg)
	if err != nil {
		return false
	}
	c, err := versionfmt.Compare(dpkg.ParserName, ver, threshold)
	if err != nil {
		return false
	}
	return c >= 0
}

// bootstrapJDK8PPA installs Java 8 from the openjdk-r PPA on Ubuntu releases
// that predate it.
func bootstrapJDK8PPA(env *install.Env) error {
	cmds := []string{
		"apt-get install software-properties-common -y",
		"add-apt-repository -y ppa:openjdk-r/ppa",
		"apt-get update",
		"apt-get install -y openjdk-8-jre-headless",
		"update-java-alternatives -s java-1.8.0-openjdk-amd64",
	}
	for _, cmd := range cmds {
		if _, err := env.Runner.Run(cmd, process.Options{Sudo: true, Shell: true}); err != nil {
			return err
		}
	}
	return nil
}

// bootstrapJDK8Backports installs Java 8 from jessie-backports on Debian 8.
func bootstrapJDK8Backports(env *install.Env) error {
	cmds := []string{
		`sh -c "echo 'deb http://http.debian.net/debian jessie-backports main' > /etc/apt/sources.list.d/jessie-backports.list"`,
		"apt-get update",
		"apt-get install -y -t jessie-backports openjdk-8-jre-headless",
		"update-java-alternatives -s java-1.8.0-openjdk-amd64",
	}
	for _, cmd := range cmds {
		if _, err := env.Runner.Run(cmd, process.Options{Sudo: true, Shell: true}); err != nil {
			return err
		}
	}
	return nil
}

type ubuntu1404 struct{}

func (ubuntu1404) RepoPath() string { return repoPath }

func (ubuntu1404) SetupCI(env *install.Env) ([]string, error) {
	if err := env.Manager.UpdateCache(); err != nil {
		return nil, err
	}
	if needsJDK8(env, "scylla", "1.7") {
		if err := bootstrapJDK8PPA(env); err != nil {
			return nil, err
		}
	}
	if err := env.Manager.Upgrade(""); err != nil {
		return nil, err
	}
	return []string{"scylla"}, nil
}

func (ubuntu1404) SetupRelease(env *install.Env) ([]string, error) {
	if err := env.Manager.UpdateCache(); err != nil {
		return nil, err
	}
	if needsJDK8(env, "scylla-enterprise", "1.7~rc0") {
		if err := bootstrapJDK8PPA(env); err != nil {
			return nil, err
		}
	}
	if err := env.Manager.Upgrade(""); err != nil {
		return nil, err
	}
	return []string{"scylla-enterprise"}, nil
}

type ubuntu1604 struct{}

func (ubuntu1604) RepoPath() string { return repoPath }

func (ubuntu1604) SetupCI(env *install.Env) ([]string, error) {
	if err := env.Manager.Upgrade(""); err != nil {
		return nil, err
	}
	return []string{"scylla"}, nil
}

func (ubuntu1604) SetupRelease(env *install.Env) ([]string, error) {
	if err := env.Manager.Upgrade(""); err != nil {
		return nil, err
	}
	return []string{"scylla-enterprise"}, nil
}

type debian8 struct{}

func (debian8) RepoPath() string { return repoPath }

func (debian8) SetupCI(env *install.Env) ([]string, error) {
	if err := env.Manager.UpdateCache(); err != nil {
		return nil, err
	}
	if needsJDK8(env, "scylla", "1.7~rc0") {
		if err := bootstrapJDK8Backports(env); err != nil {
			return nil, err
		}
	}
	if err := env.Manager.Upgrade(""); err != nil {
		return nil, err
	}
	return []string{"scylla"}, nil
}

func (debian8) SetupRelease(env *install.Env) ([]string, error) {
	if err := env.Manager.UpdateCache(); err != nil {
		return nil, err
	}
	if needsJDK8(env, "scylla-enterprise", "1.7~rc0") {
		if err := bootstrapJDK8Backports(env); err != nil {
			return nil, err
		}
	}
	if err := env.Manager.Upgrade(""); err != nil {
		return nil, err
	}
	return []string{"scylla-enterprise"}, nil
}
