package zypper

import (
	"fmt"
	"regexp"

	"github.com/kongove/scylla-artifact-tests/pkgmgr"
	"github.com/kongove/scylla-artifact-tests/process"
)

const baseCommand = "zypper -n"

var infoVersionRegexp = regexp.MustCompile(`(?m)^Version\s*:\s*(.*)$`)

type backend struct {
	runner process.Runner
}

func init() {
	pkgmgr.RegisterBackend("zypper", New)
}

// New returns a zypper backend bound to the given runner.
func New(r process.Runner) pkgmgr.Backend {
	return &backend{runner: r}
}

func (b *backend) Install(name string) error {
	_, err := b.runner.Run(fmt.Sprintf("%s install %s", baseCommand, name), process.Options{Sudo: true})
	return err
}

func (b *backend) Remove(name string) error {
	_, err := b.runner.Run(fmt.Sprintf("%s remove %s", baseCommand, name), process.Options{Sudo: true})
	return err
}

func (b *backend) UpdateCache() error {
	_, err := b.runner.Run(baseCommand+" refresh", process.Options{Sudo: true})
	return err
}

func (b *backend) Upgrade(name string) error {
	cmd := baseCommand + " update"
	if name != "" {
		cmd += " " + name
	}
	_, err := b.runner.Run(cmd, process.Options{Sudo: true})
	return err
}

func (b *backend) AvailableVersion(name string) (string, error) {
	result, err := b.runner.Run(fmt.Sprintf("zypper info %s", name), process.Options{})
	if err != nil {
		return "", err
	}

	m := infoVersionRegexp.FindStringSubmatch(result.Stdout)
	if len(m) != 2 {
		return "", fmt.Errorf("zypper: no candidate version found for %s", name)
	}
	return m[1], nil
}

func (b *backend) ScriptletFailures() []string {
	return nil
}
