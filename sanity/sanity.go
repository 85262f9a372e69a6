package sanity

import (
	"bufio"
	"fmt"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/kongove/scylla-artifact-tests/database"
	"github.com/kongove/scylla-artifact-tests/process"
	"github.com/kongove/scylla-artifact-tests/service"
)

const (
	stressPopulate = "cassandra-stress write n=10000 -mode cql3 native -pop seq=1..10000"
	stressMixed    = "cassandra-stress mixed duration=1m -mode cql3 native -rate threads=10 -pop seq=1..10000"

	populateTimeout = 600 * time.Second
	mixedTimeout    = 300 * time.Second
)

// Runner exercises an installed database with nodetool and cassandra-stress.
type Runner struct {
	Proc process.Runner
	Srv  *service.Manager
}

// New returns a sanity Runner bound to the given process runner and service
// manager.
func New(p process.Runner, srv *service.Manager) *Runner {
	return &Runner{Proc: p, Srv: srv}
}

// RunNodetool verifies the node answers a basic nodetool status.
func (r *Runner) RunNodetool() error {
	_, err := r.Proc.Run("nodetool status", process.Options{Verbose: true})
	return err
}

// RunCassandraStress populates the node and runs a short mixed workload,
// failing on any java.io.IOException emitted by the stress tool.
func (r *Runner) RunCassandraStress() error {
	result, err := r.Proc.Run(stressPopulate, process.Options{Timeout: populateTimeout, Verbose: true})
	if err != nil {
		return err
	}
	if line := findIOException(result.Combined()); line != "" {
		return fmt.Errorf("cassandra-stress: %s", line)
	}

	result, err = r.Proc.Run(stressMixed, process.Options{Shell: true, Timeout: mixedTimeout, Verbose: true})
	if err != nil {
		return err
	}
	if line := findIOException(result.Combined()); line != "" {
		return fmt.Errorf("cassandra-stress: %s", line)
	}

	return nil
}

// findIOException returns the first java.io.IOException line in the stress
// output. The stress tool exits zero even when every request failed, so the
// output has to be scraped.
func findIOException(output string) string {
	scanner := bufio.NewScanner(strings.NewReader(output))
	for scanner.Scan() {
		line := scanner.Text()
		if strings.Contains(line, "java.io.IOException") {
			return strings.TrimSpace(line)
		}
	}
	return ""
}

func (r *Runner) runCheck(name string, fn func() error) database.CheckResult {
	log.WithField("check", name).Info("running sanity check")
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
		log.WithError(err).WithField("check", name).Error("sanity check failed")
	}
	return result
}

// AfterInstall exercises a freshly installed node and surfaces any rpm
// scriptlet failures recorded during the install.
func (r *Runner) AfterInstall(scriptletFailures []string) []database.CheckResult {
	results := []database.CheckResult{
		r.runCheck("after-install/nodetool", r.RunNodetool),
		r.runCheck("after-install/cassandra-stress", r.RunCassandraStress),
		r.runCheck("after-install/scriptlets", func() error {
			if len(scriptletFailures) > 0 {
				return fmt.Errorf("rpm scriptlet failure reported for package(s): %s",
					strings.Join(scriptletFailures, ","))
			}
			return nil
		}),
	}
	return results
}

// AfterStopStart stops and starts the services, then exercises the node.
func (r *Runner) AfterStopStart() []database.CheckResult {
	return []database.CheckResult{
		r.runCheck("after-stop-start/stop", r.Srv.StopAll),
		r.runCheck("after-stop-start/start", func() error {
			if err := r.Srv.StartAll(); err != nil {
				return err
			}
			return r.Srv.WaitReady()
		}),
		r.runCheck("after-stop-start/nodetool", r.RunNodetool),
		r.runCheck("after-stop-start/cassandra-stress", r.RunCassandraStress),
	}
}

// AfterRestart restarts the services, then exercises the node.
func (r *Runner) AfterRestart() []database.CheckResult {
	return []database.CheckResult{
		r.runCheck("after-restart/restart", func() error {
			if err := r.Srv.RestartAll(); err != nil {
				return err
			}
			return r.Srv.WaitReady()
		}),
		r.runCheck("after-restart/nodetool", r.RunNodetool),
		r.runCheck("after-restart/cassandra-stress", r.RunCassandraStress),
	}
}
