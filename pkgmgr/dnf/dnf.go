package dnf

import (
	"fmt"
	"regexp"

	"github.com/kongove/scylla-artifact-tests/pkgmgr"
	"github.com/kongove/scylla-artifact-tests/process"
)

const baseCommand = "dnf"

var infoVersionRegexp = regexp.MustCompile(`(?m)^Version\s*:\s*(.*)$`)

type backend struct {
	runner            process.Runner
	scriptletFailures []string
}

func init() {
	pkgmgr.RegisterBackend("dnf", New)
}

// New returns a dnf backend bound to the given runner.
func New(r process.Runner) pkgmgr.Backend {
	return &backend{runner: r}
}

// Install installs package [name]. Handles local installs.
func (b *backend) Install(name string) error {
	result, err := b.runner.Run(fmt.Sprintf("%s -y install %s", baseCommand, name),
		process.Options{Sudo: true, IgnoreStatus: true, Verbose: true})
	if err != nil {
		return err
	}

	b.scriptletFailures = append(b.scriptletFailures, pkgmgr.ScrapeScriptletFailures(result.Combined())...)

	if result.ExitStatus != 0 {
		return &process.CmdError{Result: result}
	}
	return nil
}

func (b *backend) Remove(name string) error {
	_, err := b.runner.Run(fmt.Sprintf("%s -y remove %s", baseCommand, name), process.Options{Sudo: true})
	return err
}

func (b *backend) UpdateCache() error {
	_, err := b.runner.Run(baseCommand+" makecache", process.Options{Sudo: true})
	return err
}

func (b *backend) Upgrade(name string) error {
	cmd := baseCommand + " -y upgrade"
	if name != "" {
		cmd += " " + name
	}
	_, err := b.runner.Run(cmd, process.Options{Sudo: true})
	return err
}

func (b *backend) AvailableVersion(name string) (string, error) {
	result, err := b.runner.Run(fmt.Sprintf("%s info %s", baseCommand, name), process.Options{})
	if err != nil {
		return "", err
	}

	m := infoVersionRegexp.FindStringSubmatch(result.Stdout)
	if len(m) != 2 {
		return "", fmt.Errorf("dnf: no candidate version found for %s", name)
	}
	return m[1], nil
}

func (b *backend) ScriptletFailures() []string {
	return b.scriptletFailures
}
