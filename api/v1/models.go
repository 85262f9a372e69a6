package v1

import (
	"time"

	"github.com/kongove/scylla-artifact-tests/database"
)

type Error struct {
	Message string `json:"Message,omitempty"`
}

type Distro struct {
	Name          string `json:"Name,omitempty"`
	Version       string `json:"Version,omitempty"`
	VersionFormat string `json:"VersionFormat,omitempty"`
}

func DistroFromDatabaseModel(dbDistro database.Distro) Distro {
	return Distro{
		Name:          dbDistro.Name,
		Version:       dbDistro.Version,
		VersionFormat: dbDistro.VersionFormat,
	}
}

type CheckResult struct {
	Name     string `json:"Name"`
	Status   string `json:"Status"`
	Detail   string `json:"Detail,omitempty"`
	Duration string `json:"Duration,omitempty"`
}

func CheckResultFromDatabaseModel(dbResult database.CheckResult) CheckResult {
	return CheckResult{
		Name:     dbResult.Name,
		Status:   dbResult.Status,
		Detail:   dbResult.Detail,
		Duration: dbResult.Duration.String(),
	}
}

type Run struct {
	ID         int           `json:"ID"`
	Artifact   string        `json:"Artifact"`
	Mode       string        `json:"Mode,omitempty"`
	Distro     *Distro       `json:"Distro,omitempty"`
	Status     string        `json:"Status"`
	StartedAt  string        `json:"StartedAt,omitempty"`
	FinishedAt string        `json:"FinishedAt,omitempty"`
	Results    []CheckResult `json:"Results,omitempty"`
}

func RunFromDatabaseModel(dbRun database.Run, withResults bool) Run {
	run := Run{
		ID:       dbRun.ID,
		Artifact: dbRun.Artifact,
		Mode:     dbRun.Mode,
		Status:   dbRun.Status,
	}

	if dbRun.Distro.Name != "" {
		distro := DistroFromDatabaseModel(dbRun.Distro)
		run.Distro = &distro
	}
	if !dbRun.StartedAt.IsZero() {
		run.StartedAt = dbRun.StartedAt.Format(time.RFC3339)
	}
	if !dbRun.FinishedAt.IsZero() {
		run.FinishedAt = dbRun.FinishedAt.Format(time.RFC3339)
	}

	if withResults {
		for _, dbResult := range dbRun.Results {
			run.Results = append(run.Results, CheckResultFromDatabaseModel(dbResult))
		}
	}

	return run
}

type RunEnvelope struct {
	Run   *Run   `json:"Run,omitempty"`
	Error *Error `json:"Error,omitempty"`
}

type RunsEnvelope struct {
	Runs  []Run  `json:"Runs,omitempty"`
	Error *Error `json:"Error,omitempty"`
}

type DistrosEnvelope struct {
	Distros []Distro `json:"Distros,omitempty"`
	Error   *Error   `json:"Error,omitempty"`
}
