package install

import (
	"fmt"
	"strings"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/kongove/scylla-artifact-tests/database"
	"github.com/kongove/scylla-artifact-tests/housekeeping"
	"github.com/kongove/scylla-artifact-tests/pkgmgr"
	"github.com/kongove/scylla-artifact-tests/process"
	"github.com/kongove/scylla-artifact-tests/service"
	"github.com/kongove/scylla-artifact-tests/wait"
)

// Modes accepted by the harness. Anything else is treated as a release
// train identifier understood by the flavor.
const (
	ModeCI      = "ci"
	ModeRelease = "release"
)

// Config carries the artifact selection for a run.
type Config struct {
	// SwRepo is the URL of the repository file describing where the build
	// artifacts live.
	SwRepo string

	// Mode selects between CI artifacts and released ones.
	Mode string
}

// Env bundles everything a flavor needs to drive the host.
type Env struct {
	Runner       process.Runner
	Manager      pkgmgr.Backend
	Srv          *service.Manager
	Housekeeping *housekeeping.Reporter
	Config       Config
}

// Flavor captures what differs between distros: where the repository file
// lands and how the artifact packages are prepared.
type Flavor interface {
	// RepoPath returns the destination of the repository file.
	RepoPath() string

	// SetupCI prepares the host for a CI artifact and returns the packages
	// to install.
	SetupCI(*Env) ([]string, error)

	// SetupRelease prepares the host for a released artifact and returns
	// the packages to install.
	SetupRelease(*Env) ([]string, error)
}

var (
	flavorsM sync.RWMutex
	flavors  = make(map[string]Flavor)
)

// RegisterFlavor makes a Flavor available for the given distro, keyed by its
// canonical name:version form.
//
// If called twice with the same name, the name is blank, or if the provided
// Flavor is nil, this function panics.
func RegisterFlavor(name string, f Flavor) {
	if name == "" {
		panic("install: could not register a Flavor with an empty name")
	}
	if f == nil {
		panic("install: could not register a nil Flavor")
	}

	flavorsM.Lock()
	defer flavorsM.Unlock()

	if _, dup := flavors[name]; dup {
		panic("install: RegisterFlavor called twice for " + name)
	}

	flavors[name] = f
}

// Installer turns a host into a verified database node and reports what it
// found along the way.
type Installer interface {
	Run() ([]database.CheckResult, error)
}

// New returns the Installer for the detected distro, or an error when the
// distro has no registered flavor.
func New(d *database.Distro, env *Env) (Installer, error) {
	flavorsM.RLock()
	defer flavorsM.RUnlock()

	f, supported := flavors[d.String()]
	if !supported {
		return nil, fmt.Errorf("install: unsupported distro %s", d.String())
	}
	return &Generic{env: env, flavor: f, distro: d}, nil
}

// Generic is the install orchestration shared by package based distros.
type Generic struct {
	env    *Env
	flavor Flavor
	distro *database.Distro
}

func (g *Generic) Run() ([]database.CheckResult, error) {
	env := g.env

	ok := wait.For(func() bool {
		return env.Manager.Upgrade("") == nil
	}, 300*time.Second, 30*time.Second, "Wait until system is up to date...")
	if !ok {
		return nil, fmt.Errorf("install: system could not be brought up to date")
	}

	if err := g.placeRepo(); err != nil {
		return nil, err
	}

	setup := g.flavor.SetupCI
	if env.Config.Mode != ModeCI {
		setup = g.flavor.SetupRelease
	}
	pkgs, err := setup(env)
	if err != nil {
		return nil, err
	}

	for _, pkg := range pkgs {
		log.WithField("package", pkg).Info("installing package")
		if err := env.Manager.Install(pkg); err != nil {
			return nil, fmt.Errorf("install: package %s could not be installed (see logs for details)", pkg)
		}
	}

	devlist, err := g.runSetup()
	if err != nil {
		return nil, err
	}

	if err := env.Srv.StartAll(); err != nil {
		return nil, err
	}
	if err := env.Srv.WaitReady(); err != nil {
		return nil, err
	}

	results := []database.CheckResult{
		Check("setup/housekeeping", env.Housekeeping.TryReport),
	}
	results = append(results, g.verify(devlist)...)
	return results, nil
}

// placeRepo puts the repository file describing the artifact location where
// the flavor's package manager picks it up. Release flavors that derive the
// repository from the release train fetch their own file instead.
func (g *Generic) placeRepo() error {
	env := g.env
	if env.Config.Mode != ModeCI && env.Config.SwRepo == "" {
		return nil
	}
	return FetchRepo(env, env.Config.SwRepo, g.flavor.RepoPath())
}

// runSetup runs scylla_setup with flags matching what the host offers: RAID
// on a spare disk, an already present node_exporter, and the cpuscaling
// opt-out where the script supports it. It returns the spare devices found.
func (g *Generic) runSetup() ([]string, error) {
	env := g.env

	setupCmd := "/usr/lib/scylla/scylla_setup --nic eth0"

	// Enable RAID setup when a second disk exists.
	result, _ := env.Runner.Run("ls /dev/[hvs]db", process.Options{Shell: true, IgnoreStatus: true})
	devlist := strings.Fields(result.Stdout)

	if len(devlist) > 0 && !process.System(env.Runner, "mountpoint -q /var/lib/scylla", process.Options{}) {
		setupCmd += " --disks " + devlist[len(devlist)-1]
	} else {
		setupCmd += " --no-raid-setup"
	}

	if process.System(env.Runner, "test -f /usr/bin/node_exporter", process.Options{}) {
		setupCmd += " --no-node-exporter"
	}

	// cpuscaling setup is broken on some hosts; skip it on script versions
	// that know the flag.
	script, err := env.Runner.Run("cat /usr/lib/scylla/scylla_setup", process.Options{IgnoreStatus: true})
	if err == nil && strings.Contains(script.Stdout, "--no-cpuscaling-setup") {
		setupCmd += " --no-cpuscaling-setup"
	}

	if _, err := env.Runner.Run(setupCmd, process.Options{Sudo: true, Shell: true, Verbose: true}); err != nil {
		return devlist, fmt.Errorf("install: scylla_setup failed: %v", err)
	}
	return devlist, nil
}

// FetchRepo places the repository file describing the artifact location at
// dst on the host.
func FetchRepo(env *Env, src, dst string) error {
	if src == "" {
		return fmt.Errorf("install: no software repository specified")
	}
	_, err := env.Runner.Run(fmt.Sprintf("curl %s -o %s", src, dst), process.Options{Sudo: true, Shell: true})
	return err
}

// Check runs fn and folds its outcome into a named CheckResult.
func Check(name string, fn func() error) database.CheckResult {
	start := time.Now()
	err := fn()

	result := database.CheckResult{
		Name:     name,
		Status:   database.StatusPass,
		Duration: time.Since(start),
	}
	if err != nil {
		result.Status = database.StatusFail
		result.Detail = err.Error()
		log.WithError(err).WithField("check", name).Error("check failed")
	}
	return result
}
