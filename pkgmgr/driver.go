package pkgmgr

import (
	"errors"
	"regexp"
	"sync"

	log "github.com/sirupsen/logrus"

	"github.com/kongove/scylla-artifact-tests/process"
)

var (
	// ErrNoBackend is returned when no supported package management tool
	// could be found on the host.
	ErrNoBackend = errors.New("pkgmgr: unsupported package management system")

	backendsM sync.RWMutex
	backends  = make(map[string]Constructor)

	// probeOrder is the order in which management tools are looked for on
	// the host. dnf comes before yum so distros shipping both pick the
	// native tool.
	probeOrder = []string{"apt-get", "dnf", "yum", "zypper"}

	scriptletFailureRegexp = regexp.MustCompile(`scriptlet failure in rpm package (\S+)`)
)

// Backend abstracts a system package management tool.
type Backend interface {
	// Install installs the named package, which may be a local file path.
	Install(name string) error

	// Remove removes the named package.
	Remove(name string) error

	// Upgrade upgrades the named package, or every package of the system
	// when name is empty.
	Upgrade(name string) error

	// UpdateCache refreshes the package metadata cache.
	UpdateCache() error

	// AvailableVersion returns the candidate version of the named package.
	AvailableVersion(name string) (string, error)

	// ScriptletFailures returns the rpm packages whose install scriptlets
	// failed. Always empty for non-rpm backends.
	ScriptletFailures() []string
}

// Constructor builds a Backend bound to the given command runner.
type Constructor func(process.Runner) Backend

// RegisterBackend makes a Backend constructor available by the provided tool
// name.
//
// If called twice with the same name, the name is blank, or if the provided
// Constructor is nil, this function panics.
func RegisterBackend(name string, c Constructor) {
	if name == "" {
		panic("pkgmgr: could not register a Backend with an empty name")
	}
	if c == nil {
		panic("pkgmgr: could not register a nil Backend")
	}

	backendsM.Lock()
	defer backendsM.Unlock()

	if _, dup := backends[name]; dup {
		panic("pkgmgr: RegisterBackend called twice for " + name)
	}

	backends[name] = c
}

// New determines the best supported package management tool available on the
// host driven by r and returns the matching backend.
func New(r process.Runner) (Backend, error) {
	backendsM.RLock()
	defer backendsM.RUnlock()

	for _, tool := range probeOrder {
		c, registered := backends[tool]
		if !registered {
			continue
		}
		if !process.HasCommand(r, tool) {
			continue
		}

		log.WithField("backend", tool).Debug("selected package management backend")
		return c(r), nil
	}

	return nil, ErrNoBackend
}

// ScrapeScriptletFailures extracts from install output the names of rpm
// packages whose scriptlets failed. Such failures do not fail the install
// command itself, so they have to be scraped from its output.
func ScrapeScriptletFailures(output string) []string {
	var pkgs []string
	for _, m := range scriptletFailureRegexp.FindAllStringSubmatch(output, -1) {
		pkgs = append(pkgs, m[1])
	}
	return pkgs
}
