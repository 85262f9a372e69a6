package database

import (
	"time"
)

// Model is only meant to be used by database implementations and should never
// be used for anything else.
type Model struct {
	ID int
}

// Distro identifies the operating system a run was executed on, such as
// "ubuntu:16.04". VersionFormat names the versionfmt parser that understands
// the package versions of that distro.
type Distro struct {
	Model

	Name          string
	Version       string
	VersionFormat string
}

// String returns the canonical name:version form used to select installers.
func (d Distro) String() string {
	return d.Name + ":" + d.Version
}

// Run statuses.
const (
	StatusRunning = "running"
	StatusPass    = "pass"
	StatusFail    = "fail"
	StatusError   = "error"
)

// Run records one execution of the artifact sanity pipeline on a host.
type Run struct {
	Model

	Artifact   string
	Mode       string
	Distro     Distro
	Status     string
	StartedAt  time.Time
	FinishedAt time.Time

	// For output purposes. Only populated when the run was fetched with its
	// results.
	Results []CheckResult
}

// CheckResult is the outcome of a single named verification or sanity check
// within a run.
type CheckResult struct {
	Model

	Name     string
	Status   string
	Detail   string
	Duration time.Duration
}

// Passed reports whether every result in the list passed.
func Passed(results []CheckResult) bool {
	for _, r := range results {
		if r.Status != StatusPass {
			return false
		}
	}
	return true
}
