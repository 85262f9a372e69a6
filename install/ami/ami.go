// Package ami verifies hosts booted from a prebuilt machine image, where the
// database packages are already installed and tuned.
package ami

import (
	"fmt"
	"io/ioutil"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/kongove/scylla-artifact-tests/database"
	"github.com/kongove/scylla-artifact-tests/install"
	"github.com/kongove/scylla-artifact-tests/process"
	"github.com/kongove/scylla-artifact-tests/versionfmt"
	"github.com/kongove/scylla-artifact-tests/versionfmt/rpm"
)

const defaultMetadataURL = "http://169.254.169.254/latest/meta-data"

var (
	driverRegexp      = regexp.MustCompile(`(?m)^driver:\s(.*)$`)
	versionRegexp     = regexp.MustCompile(`(\d+\.\d+)`)
	ioQueuesRegexp    = regexp.MustCompile(`--num-io-queues\s+(\d+)`)
	cpusetRegexp      = regexp.MustCompile(`--cpuset\s+(\d+)-(\d+)`)
	interruptRegexp   = regexp.MustCompile(`\s(\d+):`)
	fullAffinityFirst = "00000000,00000000,00000000,00000001"
)

// Metadata reads EC2 instance metadata over the link-local endpoint.
type Metadata struct {
	BaseURL string
	Client  *http.Client
}

func NewMetadata() *Metadata {
	return &Metadata{
		BaseURL: defaultMetadataURL,
		Client:  &http.Client{Timeout: 10 * time.Second},
	}
}

func (m *Metadata) get(path string) (string, error) {
	resp, err := m.Client.Get(m.BaseURL + path)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("ami: metadata request %s returned %s", path, resp.Status)
	}
	body, err := ioutil.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(body)), nil
}

// InstanceType returns the running instance's type, e.g. "i3.4xlarge".
func (m *Metadata) InstanceType() (string, error) {
	return m.get("/instance-type")
}

// InterfaceAttributes lists the metadata keys published for the interface
// with the given MAC address.
func (m *Metadata) InterfaceAttributes(mac string) (string, error) {
	return m.get("/network/interfaces/macs/" + mac + "/")
}

// Installer verifies an image-based host instead of installing packages on
// it. Its checks mirror the tuning the image build is expected to have done.
type Installer struct {
	env        *install.Env
	meta       *Metadata
	enterprise bool
}

func New(env *install.Env, meta *Metadata, enterprise bool) *Installer {
	if meta == nil {
		meta = NewMetadata()
	}
	return &Installer{env: env, meta: meta, enterprise: enterprise}
}

func (i *Installer) Run() ([]database.CheckResult, error) {
	log.Info("testing machine image, checking tuning and waiting for the database")

	instanceType, err := i.meta.InstanceType()
	if err != nil {
		return nil, fmt.Errorf("ami: instance type could not be determined: %v", err)
	}
	maintype, subtype := splitInstanceType(instanceType)

	results := []database.CheckResult{
		install.Check("ami/enhanced-networking", func() error {
			return i.verifyEnhancedNet(maintype, subtype)
		}),
		install.Check("ami/io-tuning", func() error {
			return i.verifyIOTuning(maintype, subtype)
		}),
	}

	if err := i.env.Srv.WaitReady(); err != nil {
		return results, err
	}
	results = append(results, install.Check("setup/housekeeping", i.env.Housekeeping.TryReport))
	return results, nil
}

func splitInstanceType(instanceType string) (maintype, subtype string) {
	if idx := strings.Index(instanceType, "."); idx >= 0 {
		return instanceType[:idx], instanceType[idx+1:]
	}
	return instanceType, ""
}

// verifyEnhancedNet ensures instance families with enhanced networking
// support actually came up with the matching interface driver.
func (i *Installer) verifyEnhancedNet(maintype, subtype string) error {
	var expected string
	switch {
	case maintype == "i3" || maintype == "p2" || maintype == "r4" || maintype == "x1",
		maintype == "m4" && subtype == "16xlarge":
		expected = "ena"
	case maintype == "c3" || maintype == "c4" || maintype == "d2" || maintype == "i2" || maintype == "r3",
		maintype == "m4":
		expected = "ixgbevf"
	default:
		log.WithField("instance-type", maintype+"."+subtype).Info("instance does not support enhanced networking")
		return nil
	}
	return i.checkUsedDriver(expected)
}

// checkUsedDriver makes sure the instance runs inside a VPC and that eth0 is
// bound to the expected enhanced networking driver.
func (i *Installer) checkUsedDriver(expected string) error {
	result, err := i.env.Runner.Run("cat /sys/class/net/eth0/address", process.Options{})
	if err != nil {
		return err
	}
	mac := strings.TrimSpace(result.Stdout)

	attrs, err := i.meta.InterfaceAttributes(mac)
	if err != nil {
		return err
	}
	if !strings.Contains(attrs, "vpc-id") {
		return fmt.Errorf("ami: VPC is not enabled, debug: %s", attrs)
	}

	result, err = i.env.Runner.Run("ethtool -i eth0", process.Options{})
	if err != nil {
		return err
	}
	m := driverRegexp.FindStringSubmatch(result.Stdout)
	if m == nil {
		return fmt.Errorf("ami: no driver line in ethtool output: %s", result.Stdout)
	}
	used := m[1]
	if used != expected {
		return fmt.Errorf("ami: enhanced networking is not enabled, current driver: %s, expected: %s", used, expected)
	}
	log.WithField("driver", used).Info("enhanced networking is enabled")
	return nil
}

// verifyIOTuning validates the generated io and cpuset configuration on the
// storage-dense family. Later database versions tune themselves at first
// boot, so the check only applies below the self-tuning threshold.
func (i *Installer) verifyIOTuning(maintype, subtype string) error {
	if maintype != "i3" {
		return nil
	}

	result, err := i.env.Runner.Run("scylla --version", process.Options{})
	if err != nil {
		return err
	}
	m := versionRegexp.FindStringSubmatch(result.Stdout)
	if m == nil {
		return fmt.Errorf("ami: could not parse version from %q", result.Stdout)
	}
	threshold := "2.0"
	if i.enterprise {
		threshold = "2017.666"
	}
	cmp, err := versionfmt.Compare(rpm.ParserName, m[1], threshold)
	if err != nil {
		return err
	}
	if cmp >= 0 {
		return nil
	}

	ioConf, err := i.readConf("/etc/scylla.d/io.conf")
	if err != nil {
		return err
	}
	queues := ioQueuesRegexp.FindStringSubmatch(ioConf)
	if queues == nil {
		return fmt.Errorf("ami: no --num-io-queues in io.conf: %s", ioConf)
	}
	numIOQueues, _ := strconv.Atoi(queues[1])

	cpusetConf, err := i.readConf("/etc/scylla.d/cpuset.conf")
	if err != nil {
		return err
	}
	cpuset := cpusetRegexp.FindStringSubmatch(cpusetConf)
	if cpuset == nil {
		return fmt.Errorf("ami: no --cpuset in cpuset.conf: %s", cpusetConf)
	}
	if subtype != "16xlarge" {
		end, _ := strconv.Atoi(cpuset[2])
		if cpuset[1] != "0" || end != numIOQueues-1 {
			return fmt.Errorf("ami: cpuset %s-%s does not match %d io queues", cpuset[1], cpuset[2], numIOQueues)
		}
	}

	return i.verifyInterruptAffinity(subtype)
}

func (i *Installer) readConf(path string) (string, error) {
	result, err := i.env.Runner.Run("cat "+path+" |grep -v \\#", process.Options{Shell: true, IgnoreStatus: true, Verbose: true})
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(result.Stdout) == "" {
		return "", fmt.Errorf("ami: %s is empty", path)
	}
	return result.Stdout, nil
}

// verifyInterruptAffinity checks the network interrupts were spread across
// cpus. On the largest instance size every interrupt stays on cpu0 because
// the cpuset keeps the database off it.
func (i *Installer) verifyInterruptAffinity(subtype string) error {
	result, err := i.env.Runner.Run("cat /proc/interrupts |grep eth", process.Options{Shell: true, Verbose: true})
	if err != nil {
		return err
	}

	seen := make(map[string]bool)
	for _, m := range interruptRegexp.FindAllStringSubmatch(result.Stdout, -1) {
		irq := m[1]
		result, err := i.env.Runner.Run(fmt.Sprintf("cat /proc/irq/%s/smp_affinity", irq), process.Options{Verbose: true})
		if err != nil {
			return err
		}
		affinity := strings.TrimSpace(result.Stdout)
		if subtype == "16xlarge" {
			if affinity != fullAffinityFirst {
				return fmt.Errorf("ami: interrupt %s has affinity %s, want %s", irq, affinity, fullAffinityFirst)
			}
		} else if seen[affinity] {
			return fmt.Errorf("ami: interrupts share smp affinity %s", affinity)
		}
		seen[affinity] = true
	}
	return nil
}
