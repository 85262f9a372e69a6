package rpm

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/kongove/scylla-artifact-tests/versionfmt"
)

// ParserName is the name by which the rpm parser is registered.
const ParserName = "rpm"

type version struct {
	epoch   int
	version string
	release string
}

var (
	minVersion = version{version: versionfmt.MinVersion}
	maxVersion = version{version: versionfmt.MaxVersion}

	versionRegexp = regexp.MustCompile(`^[a-zA-Z0-9._+~]+$`)
)

type parser struct{}

func init() {
	versionfmt.RegisterParser(ParserName, parser{})
}

// newVersion parses an RPM version string of the form
// [epoch:]version[-release].
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

	// Epoch. An unversioned epoch such as the "(none):" prefix printed by
	// some rpm queries is treated as zero.
	if sep := strings.Index(str, ":"); sep > -1 {
		epoch := str[:sep]
		if epoch != "" && epoch != "(none)" {
			intepoch, err := strconv.Atoi(epoch)
			if err != nil || intepoch < 0 {
				return v, versionfmt.ErrInvalidVersion
			}
			v.epoch = intepoch
		}
		str = str[sep+1:]
	}

	// Release.
	if sep := strings.LastIndex(str, "-"); sep > -1 {
		v.release = str[sep+1:]
		str = str[:sep]

		if !versionRegexp.MatchString(v.release) {
			return v, versionfmt.ErrInvalidVersion
		}
	}

	v.version = str
	if !versionRegexp.MatchString(v.version) {
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
		if v1.epoch < v2.epoch {
			return -1, nil
		}
		return 1, nil
	}
	if r := rpmvercmp(v1.version, v2.version); r != 0 {
		return r, nil
	}

	// Releases only participate when both sides carry one.
	if v1.release != "" && v2.release != "" {
		return rpmvercmp(v1.release, v2.release), nil
	}
	return 0, nil
}

// rpmvercmp implements the segment-wise comparison used by librpm: runs of
// digits and runs of letters are compared pairwise, numeric segments always
// sort after alphabetic ones, and '~' sorts before everything.
func rpmvercmp(a, b string) int {
	if a == b {
		return 0
	}

	ai, bi := 0, 0
	for ai < len(a) || bi < len(b) {
		// Skip over separators.
		for ai < len(a) && !isAlnum(a[ai]) && a[ai] != '~' {
			ai++
		}
		for bi < len(b) && !isAlnum(b[bi]) && b[bi] != '~' {
			bi++
		}

		// Tilde sorts before everything, including the end of the string.
		aTilde := ai < len(a) && a[ai] == '~'
		bTilde := bi < len(b) && b[bi] == '~'
		if aTilde || bTilde {
			if !bTilde {
				return -1
			}
			if !aTilde {
				return 1
			}
			ai++
			bi++
			continue
		}

		if ai >= len(a) || bi >= len(b) {
			break
		}

		// Grab the next segment of each string. A segment is either all
		// digits or all letters; the type is dictated by the first string.
		isnum := isDigit(a[ai])
		as, bs := ai, bi
		if isnum {
			for ai < len(a) && isDigit(a[ai]) {
				ai++
			}
			for bi < len(b) && isDigit(b[bi]) {
				bi++
			}
		} else {
			for ai < len(a) && isAlpha(a[ai]) {
				ai++
			}
			for bi < len(b) && isAlpha(b[bi]) {
				bi++
			}
		}

		segA, segB := a[as:ai], b[bs:bi]

		if isnum {
			if segB == "" {
				// Numeric segments are newer than alphabetic ones.
				return 1
			}
			segA = strings.TrimLeft(segA, "0")
			segB = strings.TrimLeft(segB, "0")
			if len(segA) != len(segB) {
				if len(segA) < len(segB) {
					return -1
				}
				return 1
			}
		} else if segB == "" {
			return -1
		}

		if c := strings.Compare(segA, segB); c != 0 {
			if c < 0 {
				return -1
			}
			return 1
		}
	}

	// Whichever string has content left is the newer one.
	if ai >= len(a) && bi >= len(b) {
		return 0
	}
	if ai < len(a) {
		return 1
	}
	return -1
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isAlpha(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isAlnum(c byte) bool {
	return isDigit(c) || isAlpha(c)
}
