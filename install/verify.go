package install

import (
	"fmt"
	"strings"

	"github.com/kongove/scylla-artifact-tests/database"
	"github.com/kongove/scylla-artifact-tests/process"
	"github.com/kongove/scylla-artifact-tests/service"
)

// verify checks the host configuration scylla_setup is supposed to leave
// behind: SELinux, node_exporter, RAID, ntp, coredump handling and the
// service units themselves.
func (g *Generic) verify(devlist []string) []database.CheckResult {
	env := g.env
	debianVariant := g.distro.Name == "ubuntu" || g.distro.Name == "debian"
	systemd := service.IsSystemd(env.Runner)

	var results []database.CheckResult

	if !debianVariant {
		results = append(results, Check("verify/selinux", func() error {
			result, err := env.Runner.Run("getenforce", process.Options{IgnoreStatus: true})
			if err != nil {
				return err
			}
			if strings.Contains(result.Stdout, "Enforcing") {
				return fmt.Errorf("SELinux is still active")
			}
			return nil
		}))
	}

	results = append(results, Check("verify/node-exporter", func() error {
		if !process.System(env.Runner, "test -f /usr/bin/node_exporter", process.Options{}) {
			return fmt.Errorf("node_exporter isn't installed")
		}
		return nil
	}))

	if len(devlist) > 0 {
		results = append(results, Check("verify/raid", func() error {
			if !process.System(env.Runner, "mountpoint -q /var/lib/scylla", process.Options{}) {
				return fmt.Errorf("RAID setup failed, scylla directory isn't mounted")
			}
			return nil
		}))
	}

	results = append(results, Check("verify/ntp", func() error {
		cmd := "systemctl status ntpd"
		if debianVariant {
			cmd = "service ntp status"
		}
		_, err := env.Runner.Run(cmd, process.Options{Sudo: true})
		return err
	}))

	results = append(results, g.verifyCoredump(devlist, systemd, debianVariant))
	results = append(results, g.verifyServices(systemd)...)

	return results
}

func (g *Generic) verifyCoredump(devlist []string, systemd, debianVariant bool) database.CheckResult {
	env := g.env

	return Check("verify/coredump", func() error {
		if systemd && g.distro.Name != "debian" {
			result, err := env.Runner.Run("coredumpctl info", process.Options{Sudo: true, IgnoreStatus: true})
			if err != nil {
				return err
			}
			if strings.TrimSpace(result.Stderr) != "No coredumps found." {
				return fmt.Errorf("coredump info doesn't work")
			}

			if len(devlist) > 0 {
				link, err := env.Runner.Run("readlink -f /var/lib/systemd/coredump", process.Options{})
				if err != nil {
					return err
				}
				if strings.TrimSpace(link.Stdout) != "/var/lib/scylla/coredump" {
					return fmt.Errorf("coredump directory isn't pointed to the raid disk")
				}
			}
			return nil
		}

		result, err := env.Runner.Run("sysctl kernel.core_pattern", process.Options{})
		if err != nil {
			return err
		}
		if !strings.Contains(result.Stdout, "scylla_save_coredump") {
			return fmt.Errorf("kernel.core_pattern is not handled by scylla_save_coredump")
		}
		return nil
	})
}

func (g *Generic) verifyServices(systemd bool) []database.CheckResult {
	env := g.env

	check := func(name string) database.CheckResult {
		return Check("verify/"+name, func() error {
			if systemd {
				_, err := env.Runner.Run("systemctl status "+name, process.Options{Sudo: true})
				return err
			}
			result, err := env.Runner.Run(fmt.Sprintf("service %s status", name), process.Options{Sudo: true})
			if err != nil {
				return err
			}
			if !strings.Contains(result.Stdout, "running") {
				return fmt.Errorf("%s is not running", name)
			}
			return nil
		})
	}

	return []database.CheckResult{
		check("scylla-server"),
		check("collectd"),
	}
}
