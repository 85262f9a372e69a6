// The scylla-artifact-tests command installs freshly built database packages
// on the host it runs on (or a remote one), verifies the setup and exercises
// the node.
package main

import (
	"errors"
	"flag"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/kongove/scylla-artifact-tests/common/stopper"
	"github.com/kongove/scylla-artifact-tests/database"
	"github.com/kongove/scylla-artifact-tests/distro"
	"github.com/kongove/scylla-artifact-tests/housekeeping"
	"github.com/kongove/scylla-artifact-tests/install"
	"github.com/kongove/scylla-artifact-tests/install/ami"
	"github.com/kongove/scylla-artifact-tests/osutil"
	"github.com/kongove/scylla-artifact-tests/pkgmgr"
	"github.com/kongove/scylla-artifact-tests/process"
	"github.com/kongove/scylla-artifact-tests/report"
	"github.com/kongove/scylla-artifact-tests/sanity"
	"github.com/kongove/scylla-artifact-tests/service"

	// Register the database driver, distro detectors, package backends,
	// install flavors and version parsers.
	_ "github.com/kongove/scylla-artifact-tests/database/pgsql"
	_ "github.com/kongove/scylla-artifact-tests/distro/lsbrelease"
	_ "github.com/kongove/scylla-artifact-tests/distro/osrelease"
	_ "github.com/kongove/scylla-artifact-tests/distro/redhatrelease"
	_ "github.com/kongove/scylla-artifact-tests/install/debian"
	_ "github.com/kongove/scylla-artifact-tests/install/redhat"
	_ "github.com/kongove/scylla-artifact-tests/pkgmgr/apt"
	_ "github.com/kongove/scylla-artifact-tests/pkgmgr/dnf"
	_ "github.com/kongove/scylla-artifact-tests/pkgmgr/yum"
	_ "github.com/kongove/scylla-artifact-tests/pkgmgr/zypper"
	_ "github.com/kongove/scylla-artifact-tests/versionfmt/dpkg"
	_ "github.com/kongove/scylla-artifact-tests/versionfmt/rpm"
)

// setupDoneFile marks hosts that already went through package install and
// scylla_setup, so reruns jump straight to the sanity scenarios.
const setupDoneFile = "/var/tmp/scylla-setup-done"

func main() {
	flagConfigPath := flag.String("config", "", "Load configuration from the specified file.")
	flagSwRepo := flag.String("sw-repo", "", "URL of the repository file describing the artifacts under test.")
	flagMode := flag.String("mode", "", "Artifact mode: ci, release, or a release train such as 1.2.")
	flagAMI := flag.Bool("ami", false, "Verify a prebuilt machine image instead of installing packages.")
	flagReportPath := flag.String("report", "", "Write the HTML report to the specified file.")
	flagRemoteAddr := flag.String("remote-addr", "", "Drive a remote host over SSH, host:port.")
	flagRemoteUser := flag.String("remote-user", "", "SSH user for the remote host.")
	flagRemoteKey := flag.String("remote-key", "", "SSH private key for the remote host.")
	flagLogLevel := flag.String("log-level", "info", "Define the logging level.")
	flag.Parse()

	level, err := log.ParseLevel(*flagLogLevel)
	if err != nil {
		log.WithError(err).Fatal("failed to parse the log level")
	}
	log.SetLevel(level)

	config, err := LoadConfig(*flagConfigPath)
	if err != nil {
		log.WithError(err).Fatal("failed to load configuration")
	}
	if *flagSwRepo != "" {
		config.SwRepo = *flagSwRepo
	}
	if *flagMode != "" {
		config.Mode = *flagMode
	}
	if *flagAMI {
		config.AMI = true
	}
	if *flagReportPath != "" {
		config.ReportPath = *flagReportPath
	}
	if *flagRemoteAddr != "" {
		config.Remote = RemoteConfig{Addr: *flagRemoteAddr, User: *flagRemoteUser, KeyPath: *flagRemoteKey}
	}

	os.Exit(Boot(config))
}

// Boot runs the whole pipeline and returns the process exit code.
func Boot(config *Config) int {
	runner, closeRunner, err := newRunner(config)
	if err != nil {
		log.WithError(err).Error("could not reach the host under test")
		return 2
	}
	defer closeRunner()

	d, err := detectDistro(runner)
	if err != nil {
		log.WithError(err).Error("could not detect the host distro")
		return 2
	}
	log.WithField("distro", d.String()).Info("detected host distro")

	manager, err := pkgmgr.New(runner)
	if err != nil {
		log.WithError(err).Error("no supported package manager found")
		return 2
	}

	srv := service.NewManager(runner)
	if config.Remote.Addr != "" {
		host := config.Remote.Addr
		if idx := strings.Index(host, ":"); idx >= 0 {
			host = host[:idx]
		}
		srv.Host = host
	}

	st := stopper.NewStopper()
	defer st.Stop()

	interrupts := make(chan os.Signal, 1)
	signal.Notify(interrupts, syscall.SIGINT, syscall.SIGTERM)

	env := &install.Env{
		Runner:       runner,
		Manager:      manager,
		Srv:          srv,
		Housekeeping: housekeeping.NewReporter(runner),
		Config:       install.Config{SwRepo: config.SwRepo, Mode: config.Mode},
	}

	run := database.Run{
		Artifact:  config.SwRepo,
		Mode:      config.Mode,
		Distro:    *d,
		Status:    database.StatusRunning,
		StartedAt: time.Now(),
	}
	if config.AMI {
		run.Artifact = "ami"
	}

	// Follow the database logs for the whole run.
	srv.FollowLogs(st)

	// Checks land here as they complete so an interrupted run still persists
	// what it collected.
	var (
		resultsM sync.Mutex
		results  []database.CheckResult
	)
	collect := func(batch ...database.CheckResult) {
		resultsM.Lock()
		results = append(results, batch...)
		resultsM.Unlock()
	}
	snapshot := func() []database.CheckResult {
		resultsM.Lock()
		defer resultsM.Unlock()
		return append([]database.CheckResult(nil), results...)
	}

	done := make(chan error, 1)
	go func() {
		done <- runChecks(config, d, env, collect)
	}()

	select {
	case err := <-done:
		st.Stop()
		return finish(config, run, snapshot(), err)
	case <-interrupts:
		log.Info("Received interruption, gracefully stopping ...")
		st.Stop()
		finish(config, run, snapshot(), errInterrupted)
		return 130
	}
}

var errInterrupted = errors.New("run interrupted")

// runChecks drives the install and sanity phases, handing every finished
// check to collect.
func runChecks(config *Config, d *database.Distro, env *install.Env, collect func(...database.CheckResult)) error {
	runner := env.Runner

	if process.System(runner, "test -f "+setupDoneFile, process.Options{}) {
		log.Info("host already set up, skipping install")
		if err := env.Srv.WaitReady(); err != nil {
			log.WithError(err).Error("services did not come up")
			return err
		}
	} else {
		var installer install.Installer
		if config.AMI {
			installer = ami.New(env, nil, config.Enterprise)
		} else {
			var err error
			installer, err = install.New(d, env)
			if err != nil {
				log.WithError(err).Error("no installer for this distro")
				return err
			}
		}

		results, err := installer.Run()
		collect(results...)
		if err != nil {
			log.WithError(err).Error("install failed")
			return err
		}

		if _, err := runner.Run("touch "+setupDoneFile, process.Options{Sudo: true}); err != nil {
			log.WithError(err).Warning("could not record the setup sentinel")
		}
	}

	checker := sanity.New(runner, env.Srv)
	collect(checker.AfterInstall(env.Manager.ScriptletFailures())...)
	collect(checker.AfterStopStart()...)
	collect(checker.AfterRestart()...)

	return nil
}

// finish persists and renders whatever the run produced and maps it to an
// exit code.
func finish(config *Config, run database.Run, results []database.CheckResult, runErr error) int {
	run.Results = results
	run.FinishedAt = time.Now()
	switch {
	case runErr != nil:
		run.Status = database.StatusError
	case database.Passed(results):
		run.Status = database.StatusPass
	default:
		run.Status = database.StatusFail
	}

	persist(config, run)

	if config.ReportPath != "" {
		if err := report.WriteHTML(config.ReportPath, run); err != nil {
			log.WithError(err).Error("could not write the HTML report")
		} else {
			log.WithField("path", config.ReportPath).Info("wrote HTML report")
		}
	}

	report.PrintSummary(run)

	if run.Status == database.StatusPass {
		return 0
	}
	return 1
}

func persist(config *Config, run database.Run) {
	if config.Database == nil {
		return
	}

	db, err := database.Open(*config.Database)
	if err != nil {
		log.WithError(err).Error("could not open the results datastore")
		return
	}
	defer db.Close()

	id, err := db.InsertRun(run)
	if err != nil {
		log.WithError(err).Error("could not persist the run")
		return
	}
	for _, result := range run.Results {
		if err := db.InsertCheckResult(id, result); err != nil {
			log.WithError(err).Error("could not persist a check result")
		}
	}
	if err := db.FinishRun(id, run.Status); err != nil {
		log.WithError(err).Error("could not close the persisted run")
	}
	log.WithField("run", id).Info("persisted run results")
}

func newRunner(config *Config) (process.Runner, func(), error) {
	if config.Remote.Addr == "" {
		return process.Local{}, func() {}, nil
	}

	ssh, err := process.NewSSH(config.Remote.Addr, config.Remote.User, config.Remote.KeyPath)
	if err != nil {
		return nil, nil, err
	}
	return ssh, func() { ssh.Close() }, nil
}

// detectDistro loads the release files of the host under test and hands them
// to the registered detectors. Local hosts are read directly, remote ones
// through the runner.
func detectDistro(r process.Runner) (*database.Distro, error) {
	if _, local := r.(process.Local); local {
		files, err := osutil.ReadFiles("/", distro.RequiredFilenames())
		if err != nil {
			return nil, err
		}
		return distro.Detect(files)
	}

	files := make(osutil.FilesMap)
	for _, path := range distro.RequiredFilenames() {
		result, err := r.Run("cat /"+path, process.Options{IgnoreStatus: true})
		if err != nil || result.ExitStatus != 0 {
			continue
		}
		files[path] = []byte(result.Stdout)
	}
	return distro.Detect(files)
}
