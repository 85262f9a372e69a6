package apt

import (
	"fmt"
	"regexp"
	"time"

	"github.com/kongove/scylla-artifact-tests/pkgmgr"
	"github.com/kongove/scylla-artifact-tests/process"
	"github.com/kongove/scylla-artifact-tests/wait"
)

const (
	baseCommand = "apt-get"

	// dpkgForceConfdef keeps dpkg from prompting about changed
	// configuration files during unattended upgrades.
	dpkgForceConfdef = `-o Dpkg::Options::="--force-confdef"`
)

var aptCacheVersionRegexp = regexp.MustCompile(`(?m)^Version: (.*)$`)

type backend struct {
	runner process.Runner
}

func init() {
	pkgmgr.RegisterBackend("apt-get", New)
}

// New returns an apt backend bound to the given runner.
func New(r process.Runner) pkgmgr.Backend {
	return &backend{runner: r}
}

func (b *backend) Install(name string) error {
	cmd := fmt.Sprintf("%s %s install -y %s", baseCommand, dpkgForceConfdef, name)
	_, err := b.runner.Run(cmd, process.Options{Sudo: true, Shell: true})
	return err
}

func (b *backend) Remove(name string) error {
	_, err := b.runner.Run(fmt.Sprintf("%s remove -y %s", baseCommand, name), process.Options{Sudo: true})
	return err
}

func (b *backend) UpdateCache() error {
	_, err := b.runner.Run(baseCommand+" update", process.Options{Sudo: true})
	return err
}

func (b *backend) Upgrade(name string) error {
	// The package list refresh is flaky right after boot, keep trying for a
	// while before giving up.
	ok := wait.For(func() bool {
		return b.UpdateCache() == nil
	}, 300*time.Second, 30*time.Second, "Wait until package list is up to date...")
	if !ok {
		return fmt.Errorf("apt: package list could not be updated")
	}

	var cmd string
	if name != "" {
		cmd = fmt.Sprintf("%s %s install --only-upgrade -y %s", baseCommand, dpkgForceConfdef, name)
	} else {
		cmd = fmt.Sprintf("%s %s upgrade -y", baseCommand, dpkgForceConfdef)
	}

	_, err := b.runner.Run(cmd, process.Options{Sudo: true, Shell: true})
	return err
}

func (b *backend) AvailableVersion(name string) (string, error) {
	result, err := b.runner.Run(fmt.Sprintf("apt-cache show %s", name), process.Options{})
	if err != nil {
		return "", err
	}

	m := aptCacheVersionRegexp.FindStringSubmatch(result.Stdout)
	if len(m) != 2 {
		return "", fmt.Errorf("apt: no candidate version found for %s", name)
	}
	return m[1], nil
}

func (b *backend) ScriptletFailures() []string {
	return nil
}
