package redhatrelease

import (
	"regexp"
	"strings"

	"github.com/kongove/scylla-artifact-tests/database"
	"github.com/kongove/scylla-artifact-tests/distro"
	"github.com/kongove/scylla-artifact-tests/osutil"
	"github.com/kongove/scylla-artifact-tests/versionfmt/rpm"
)

var (
	oracleReleaseRegexp = regexp.MustCompile(`(?P<os>Oracle) (Linux Server release) (?P<version>[\d]+)`)
	centosReleaseRegexp = regexp.MustCompile(`(?P<os>[^\s]*) (Linux release|release) (?P<version>[\d]+)`)
	redhatReleaseRegexp = regexp.MustCompile(`(?P<os>Red Hat Enterprise Linux) (Client release|Server release|Workstation release) (?P<version>[\d]+)`)
	fedoraReleaseRegexp = regexp.MustCompile(`(?P<os>Fedora) release (?P<version>[\d]+)`)
)

type detector struct{}

func init() {
	distro.RegisterDetector("redhat-release", &detector{})
}

func (d detector) Detect(files osutil.FilesMap) (*database.Distro, error) {
	for _, filePath := range d.RequiredFilenames() {
		f, hasFile := files[filePath]
		if !hasFile {
			continue
		}

		var r []string

		// Attempt to match Fedora.
		r = fedoraReleaseRegexp.FindStringSubmatch(string(f))
		if len(r) == 3 {
			return &database.Distro{
				Name:          strings.ToLower(r[1]),
				Version:       r[2],
				VersionFormat: rpm.ParserName,
			}, nil
		}

		// Attempt to match Oracle Linux.
		r = oracleReleaseRegexp.FindStringSubmatch(string(f))
		if len(r) == 4 {
			return &database.Distro{
				Name:          strings.ToLower(r[1]),
				Version:       r[3],
				VersionFormat: rpm.ParserName,
			}, nil
		}

		// Attempt to match RHEL, which the harness treats as CentOS.
		r = redhatReleaseRegexp.FindStringSubmatch(string(f))
		if len(r) == 4 {
			return &database.Distro{
				Name:          "centos",
				Version:       r[3],
				VersionFormat: rpm.ParserName,
			}, nil
		}

		// Attempt to match CentOS.
		r = centosReleaseRegexp.FindStringSubmatch(string(f))
		if len(r) == 4 {
			return &database.Distro{
				Name:          strings.ToLower(r[1]),
				Version:       r[3],
				VersionFormat: rpm.ParserName,
			}, nil
		}
	}

	return nil, nil
}

func (d detector) RequiredFilenames() []string {
	return []string{"etc/oracle-release", "etc/centos-release", "etc/redhat-release", "etc/system-release", "etc/fedora-release"}
}
