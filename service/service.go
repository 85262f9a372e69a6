package service

import (
	"fmt"
	"net"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/kongove/scylla-artifact-tests/common/stopper"
	"github.com/kongove/scylla-artifact-tests/process"
	"github.com/kongove/scylla-artifact-tests/wait"
)

const (
	// cqlPort is the native transport port the database answers on once it
	// is fully up.
	cqlPort = 9042

	startTimeout = 900 * time.Second
	startStep    = 5 * time.Second
)

// Manager drives the scylla services on a host through systemd or sysvinit.
type Manager struct {
	runner process.Runner

	// Services in start order; they are stopped in reverse.
	Services []string

	// Host the CQL readiness probe dials. Defaults to localhost.
	Host string
}

// NewManager returns a Manager for the default scylla service set.
func NewManager(r process.Runner) *Manager {
	return &Manager{
		runner:   r,
		Services: []string{"scylla-server", "scylla-jmx"},
		Host:     "localhost",
	}
}

// IsSystemd reports whether the host booted with systemd.
func IsSystemd(r process.Runner) bool {
	result, err := r.Run("cat /proc/1/comm", process.Options{IgnoreStatus: true})
	if err != nil {
		return false
	}
	return strings.Contains(result.Stdout, "systemd")
}

func (m *Manager) serviceCommand(action, name string) string {
	if IsSystemd(m.runner) {
		return fmt.Sprintf("systemctl %s %s", action, name)
	}
	return fmt.Sprintf("service %s %s", name, action)
}

// Status reports whether the named service is currently running.
func (m *Manager) Status(name string) bool {
	result, err := m.runner.Run(m.serviceCommand("status", name), process.Options{Sudo: true, IgnoreStatus: true})
	if err != nil {
		return false
	}
	if IsSystemd(m.runner) {
		return result.ExitStatus == 0
	}
	return strings.Contains(result.Stdout, "running")
}

func (m *Manager) dumpJournal() {
	if !IsSystemd(m.runner) {
		return
	}
	result, err := m.runner.Run("journalctl -xe", process.Options{Sudo: true, IgnoreStatus: true})
	if err == nil {
		log.Info(result.Stdout)
	}
}

// StartAll starts every managed service and verifies it came up.
func (m *Manager) StartAll() error {
	for _, srv := range m.Services {
		if _, err := m.runner.Run(m.serviceCommand("start", srv), process.Options{Sudo: true}); err != nil {
			return fmt.Errorf("service: failed to start %s: %v", srv, err)
		}
	}
	for _, srv := range m.Services {
		if !m.Status(srv) {
			m.dumpJournal()
			return fmt.Errorf("service: failed to start %s (see logs for details)", srv)
		}
	}
	return nil
}

// StopAll stops every managed service, in reverse start order.
func (m *Manager) StopAll() error {
	for i := len(m.Services) - 1; i >= 0; i-- {
		srv := m.Services[i]
		if _, err := m.runner.Run(m.serviceCommand("stop", srv), process.Options{Sudo: true}); err != nil {
			return fmt.Errorf("service: failed to stop %s: %v", srv, err)
		}
	}
	for _, srv := range m.Services {
		if m.Status(srv) {
			m.dumpJournal()
			return fmt.Errorf("service: failed to stop %s (see logs for details)", srv)
		}
	}
	return nil
}

// RestartAll restarts every managed service and verifies it came back.
func (m *Manager) RestartAll() error {
	for _, srv := range m.Services {
		if _, err := m.runner.Run(m.serviceCommand("restart", srv), process.Options{Sudo: true}); err != nil {
			return fmt.Errorf("service: failed to restart %s: %v", srv, err)
		}
	}
	for _, srv := range m.Services {
		if !m.Status(srv) {
			m.dumpJournal()
			return fmt.Errorf("service: failed to restart %s (see logs for details)", srv)
		}
	}
	return nil
}

// WaitReady blocks until the database accepts connections on the CQL port.
func (m *Manager) WaitReady() error {
	up := wait.For(func() bool {
		for _, srv := range m.Services {
			m.Status(srv)
		}
		return m.cqlPortOpen()
	}, startTimeout, startStep, "Waiting for scylla services to be up...")

	if !up {
		return fmt.Errorf("service: scylla does not appear to be up after %s", startTimeout)
	}
	return nil
}

func (m *Manager) cqlPortOpen() bool {
	conn, err := net.DialTimeout("tcp", fmt.Sprintf("%s:%d", m.Host, cqlPort), 2*time.Second)
	if err != nil {
		return false
	}
	conn.Close()
	return true
}

// FollowLogs tails the scylla journal units in the background until the
// stopper fires, so service output lands in the harness logs. Hosts without
// journalctl fall back to grepping the syslog.
func (m *Manager) FollowLogs(st *stopper.Stopper) {
	st.Begin()
	go func() {
		defer st.End()

		cmd := "journalctl -f -u scylla-io-setup.service -u scylla-server.service -u scylla-jmx.service"
		if !process.HasCommand(m.runner, "journalctl") {
			cmd = "tail -f /var/log/syslog | grep scylla"
		}

		done := make(chan struct{})
		go func() {
			// The follower only terminates with the process; output goes to
			// the debug log.
			m.runner.Run(cmd, process.Options{Sudo: true, Shell: true, IgnoreStatus: true})
			close(done)
		}()

		select {
		case <-st.Chan():
		case <-done:
		}
	}()
}
