package versionfmt

import (
	"errors"
	"sync"
)

const (
	// MinVersion is a special package version which is always sorted first.
	MinVersion = "#MINV#"

	// MaxVersion is a special package version which is always sorted last.
	MaxVersion = "#MAXV#"
)

var (
	// ErrUnknownVersionFormat is returned when a parser for the requested
	// version format has not been registered.
	ErrUnknownVersionFormat = errors.New("unknown version format")

	// ErrInvalidVersion is returned when a version string does not parse
	// under the requested format.
	ErrInvalidVersion = errors.New("invalid version")

	parsersM sync.RWMutex
	parsers  = make(map[string]Parser)
)

// Parser represents any object that can parse and compare package versions
// of a particular format.
type Parser interface {
	// Valid attempts to parse a version and returns whether it succeeded.
	Valid(str string) bool

	// Compare parses two versions and compares them.
	// It returns -1, 0, 1 when a is respectively older, equal to, newer
	// than b.
	Compare(a, b string) (int, error)
}

// RegisterParser makes a Parser available by the provided name.
//
// If called twice with the same name, the name is blank, or if the provided
// Parser is nil, this function panics.
func RegisterParser(name string, p Parser) {
	if name == "" {
		panic("versionfmt: could not register a Parser with an empty name")
	}
	if p == nil {
		panic("versionfmt: could not register a nil Parser")
	}

	parsersM.Lock()
	defer parsersM.Unlock()

	if _, dup := parsers[name]; dup {
		panic("versionfmt: RegisterParser called twice for " + name)
	}

	parsers[name] = p
}

// GetParser returns the registered Parser with the given name.
func GetParser(name string) (Parser, bool) {
	parsersM.RLock()
	defer parsersM.RUnlock()

	p, exists := parsers[name]
	return p, exists
}

// Valid is a helper function that will return an error if the version fails
// to validate under the given format.
func Valid(format, version string) error {
	p, exists := GetParser(format)
	if !exists {
		return ErrUnknownVersionFormat
	}

	if !p.Valid(version) {
		return ErrInvalidVersion
	}
	return nil
}

// Compare is a helper function that compares two versions under the given
// format.
func Compare(format, versionA, versionB string) (int, error) {
	p, exists := GetParser(format)
	if !exists {
		return 0, ErrUnknownVersionFormat
	}

	return p.Compare(versionA, versionB)
}
