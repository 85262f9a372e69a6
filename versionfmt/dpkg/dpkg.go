package dpkg

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/kongove/scylla-artifact-tests/versionfmt"
)

// ParserName is the name by which the dpkg parser is registered.
const ParserName = "dpkg"

type version struct {
	epoch    int
	version  string
	revision string
}

var (
	minVersion = version{version: versionfmt.MinVersion}
	maxVersion = version{version: versionfmt.MaxVersion}

	upstreamRegexp = regexp.MustCompile(`^[0-9][a-zA-Z0-9.+:~-]*$`)
	revisionRegexp = regexp.MustCompile(`^[a-zA-Z0-9+.~]+$`)
)

type parser struct{}

func init() {
	versionfmt.RegisterParser(ParserName, parser{})
}

// newVersion parses a Debian version string of the form
// [epoch:]upstream-version[-debian-revision].
func newVersion(str string) (version, error) {
	var v version

	str = strings.TrimSpace(str)
	if str == "" {
		return v, versionfmt.ErrInvalidVersion
	}

	if str == versionfmt.MinVersion {
		return minVersion, nil
	}
	if str == versionfmt.MaxVersion {
		return maxVersion, nil
	}

	// Epoch.
	sepepoch := strings.Index(str, ":")
	if sepepoch > -1 {
		intepoch, err := strconv.Atoi(str[:sepepoch])
		if err != nil || intepoch < 0 {
			return v, versionfmt.ErrInvalidVersion
		}
		v.epoch = intepoch
		str = str[sepepoch+1:]
	}

	// Debian revision.
	seprevision := strings.LastIndex(str, "-")
	if seprevision > -1 {
		v.revision = str[seprevision+1:]
		str = str[:seprevision]

		if !revisionRegexp.MatchString(v.revision) {
			return v, versionfmt.ErrInvalidVersion
		}
	}

	v.version = str
	if !upstreamRegexp.MatchString(v.version) {
		return v, versionfmt.ErrInvalidVersion
	}

	return v, nil
}

func (parser) Valid(str string) bool {
	_, err := newVersion(str)
	return err == nil
}

func (parser) Compare(a, b string) (int, error) {
	v1, err := newVersion(a)
	if err != nil {
		return 0, err
	}
	v2, err := newVersion(b)
	if err != nil {
		return 0, err
	}

	// Quick check for the sorting sentinels.
	if v1.version == versionfmt.MinVersion || v2.version == versionfmt.MaxVersion {
		if v1 == v2 {
			return 0, nil
		}
		return -1, nil
	}
	if v1.version == versionfmt.MaxVersion || v2.version == versionfmt.MinVersion {
		if v1 == v2 {
			return 0, nil
		}
		return 1, nil
	}

	if v1.epoch != v2.epoch {
		return sign(v1.epoch - v2.epoch), nil
	}
	if r := verrevcmp(v1.version, v2.version); r != 0 {
		return r, nil
	}
	return verrevcmp(v1.revision, v2.revision), nil
}

// verrevcmp implements the ordering defined in Debian Policy 5.6.12: the
// strings are sliced into alternating non-digit and digit blocks which are
// compared pairwise, with '~' sorting before anything, even the empty part.
func verrevcmp(a, b string) int {
	i, j := 0, 0
	for i < len(a) || j < len(b) {
		for (i < len(a) && !isDigit(a[i])) || (j < len(b) && !isDigit(b[j])) {
			ac, bc := 0, 0
			if i < len(a) {
				ac = charOrder(a[i])
			}
			if j < len(b) {
				bc = charOrder(b[j])
			}
			if ac != bc {
				return sign(ac - bc)
			}
			i++
			j++
		}

		for i < len(a) && a[i] == '0' {
			i++
		}
		for j < len(b) && b[j] == '0' {
			j++
		}

		first := 0
		for i < len(a) && j < len(b) && isDigit(a[i]) && isDigit(b[j]) {
			if first == 0 {
				first = int(a[i]) - int(b[j])
			}
			i++
			j++
		}

		if i < len(a) && isDigit(a[i]) {
			return 1
		}
		if j < len(b) && isDigit(b[j]) {
			return -1
		}
		if first != 0 {
			return sign(first)
		}
	}
	return 0
}

func charOrder(c byte) int {
	switch {
	case c == '~':
		return -1
	case isDigit(c):
		return 0
	case isAlpha(c):
		return int(c)
	default:
		return int(c) + 256
	}
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isAlpha(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func sign(x int) int {
	switch {
	case x < 0:
		return -1
	case x > 0:
		return 1
	}
	return 0
}
