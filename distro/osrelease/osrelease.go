package osrelease

import (
	"bufio"
	"regexp"
	"strings"

	"github.com/kongove/scylla-artifact-tests/database"
	"github.com/kongove/scylla-artifact-tests/distro"
	"github.com/kongove/scylla-artifact-tests/osutil"
	"github.com/kongove/scylla-artifact-tests/versionfmt/dpkg"
	"github.com/kongove/scylla-artifact-tests/versionfmt/rpm"
)

var (
	osReleaseOSRegexp      = regexp.MustCompile(`^ID=(.*)`)
	osReleaseVersionRegexp = regexp.MustCompile(`^VERSION_ID=(.*)`)

	// blacklistFilenames are files that should exclude this detector.
	blacklistFilenames = []string{
		"etc/oracle-release",
		"etc/redhat-release",
		"usr/lib/centos-release",
	}
)

type detector struct{}

func init() {
	distro.RegisterDetector("os-release", &detector{})
}

func (d detector) Detect(files osutil.FilesMap) (*database.Distro, error) {
	var OS, version string

	for _, filePath := range blacklistFilenames {
		if _, hasFile := files[filePath]; hasFile {
			return nil, nil
		}
	}

	for _, filePath := range d.RequiredFilenames() {
		f, hasFile := files[filePath]
		if !hasFile {
			continue
		}

		scanner := bufio.NewScanner(strings.NewReader(string(f)))
		for scanner.Scan() {
			line := scanner.Text()

			r := osReleaseOSRegexp.FindStringSubmatch(line)
			if len(r) == 2 {
				OS = strings.Replace(strings.ToLower(r[1]), "\"", "", -1)
			}

			r = osReleaseVersionRegexp.FindStringSubmatch(line)
			if len(r) == 2 {
				version = strings.Replace(strings.ToLower(r[1]), "\"", "", -1)
			}
		}
	}

	// Determine the VersionFormat.
	var versionFormat string
	switch OS {
	case "debian", "ubuntu":
		versionFormat = dpkg.ParserName
	case "centos", "rhel", "fedora", "amzn", "ol", "oracle", "opensuse", "sles":
		versionFormat = rpm.ParserName
	default:
		return nil, nil
	}

	if OS != "" && version != "" {
		return &database.Distro{
			Name:          OS,
			Version:       version,
			VersionFormat: versionFormat,
		}, nil
	}
	return nil, nil
}

func (d detector) RequiredFilenames() []string {
	return []string{"etc/os-release", "usr/lib/os-release"}
}
