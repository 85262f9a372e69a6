package pgsql

import (
	"time"

	"github.com/guregu/null/zero"
	log "github.com/sirupsen/logrus"

	"github.com/kongove/scylla-artifact-tests/common/commonerr"
	"github.com/kongove/scylla-artifact-tests/database"
)

// InsertRun stores a new run and returns its id. The run's distro is found
// or inserted first so the run can reference it.
func (pgSQL *pgSQL) InsertRun(run database.Run) (int, error) {
	if run.Artifact == "" {
		log.Warning("could not insert a run which has an empty Artifact")
		return 0, commonerr.NewBadRequestError("could not insert a run which has an empty Artifact")
	}

	defer observeQueryTime("InsertRun", "all", time.Now())

	var distroID zero.Int
	if run.Distro.Name != "" {
		id, err := pgSQL.InsertDistro(run.Distro)
		if err != nil {
			return 0, err
		}
		distroID = zero.IntFrom(int64(id))
	}

	if run.Status == "" {
		run.Status = database.StatusRunning
	}
	startedAt := run.StartedAt
	if startedAt.IsZero() {
		startedAt = time.Now()
	}

	var id int
	err := pgSQL.QueryRow(insertRun, run.Artifact, run.Mode, distroID, run.Status, startedAt).Scan(&id)
	if err != nil {
		return 0, handleError("insertRun", err)
	}

	return id, nil
}

// FinishRun closes a run with its final status.
func (pgSQL *pgSQL) FinishRun(id int, status string) error {
	defer observeQueryTime("FinishRun", "all", time.Now())

	r, err := pgSQL.Exec(updateRunStatus, id, status, time.Now())
	if err != nil {
		return handleError("updateRunStatus", err)
	}
	if n, _ := r.RowsAffected(); n == 0 {
		return commonerr.ErrNotFound
	}

	return nil
}

// InsertCheckResult attaches a check result to an existing run.
func (pgSQL *pgSQL) InsertCheckResult(runID int, result database.CheckResult) error {
	if result.Name == "" {
		log.Warning("could not insert a check result which has an empty Name")
		return commonerr.NewBadRequestError("could not insert a check result which has an empty Name")
	}

	defer observeQueryTime("InsertCheckResult", "all", time.Now())

	var id int
	err := pgSQL.QueryRow(insertCheckResult, runID, result.Name, result.Status,
		result.Detail, result.Duration.Milliseconds()).Scan(&id)
	if err != nil {
		return handleError("insertCheckResult", err)
	}

	return nil
}

// FindRun retrieves a run, optionally with its check results.
func (pgSQL *pgSQL) FindRun(id int, withResults bool) (database.Run, error) {
	subquery := "all"
	if withResults {
		subquery += "/with-results"
	}
	defer observeQueryTime("FindRun", subquery, time.Now())

	run := database.Run{Model: database.Model{ID: id}}

	var (
		mode       zero.String
		startedAt  zero.Time
		finishedAt zero.Time
		distroID   zero.Int
		distroName zero.String
		distroVer  zero.String
		distroFmt  zero.String
	)
	err := pgSQL.QueryRow(searchRun, id).Scan(&run.Artifact, &mode, &run.Status,
		&startedAt, &finishedAt, &distroID, &distroName, &distroVer, &distroFmt)
	if err != nil {
		return run, handleError("searchRun", err)
	}

	run.Mode = mode.String
	run.StartedAt = startedAt.Time
	run.FinishedAt = finishedAt.Time
	if distroID.Valid {
		run.Distro = database.Distro{
			Model:         database.Model{ID: int(distroID.Int64)},
			Name:          distroName.String,
			Version:       distroVer.String,
			VersionFormat: distroFmt.String,
		}
	}

	if withResults {
		run.Results, err = pgSQL.findRunResults(id)
		if err != nil {
			return run, err
		}
	}

	return run, nil
}

func (pgSQL *pgSQL) findRunResults(runID int) (results []database.CheckResult, err error) {
	rows, err := pgSQL.Query(searchCheckResults, runID)
	if err != nil {
		return nil, handleError("searchCheckResults", err)
	}
	defer rows.Close()

	for rows.Next() {
		var r database.CheckResult
		var detail zero.String
		var durationMs int64
		err = rows.Scan(&r.ID, &r.Name, &r.Status, &detail, &durationMs)
		if err != nil {
			return nil, handleError("searchCheckResults.Scan()", err)
		}
		r.Detail = detail.String
		r.Duration = time.Duration(durationMs) * time.Millisecond

		results = append(results, r)
	}

	if err = rows.Err(); err != nil {
		return nil, handleError("searchCheckResults.Rows()", err)
	}

	return results, nil
}

// ListRuns returns all recorded runs, most recent first, without their
// check results.
func (pgSQL *pgSQL) ListRuns() (runs []database.Run, err error) {
	defer observeQueryTime("ListRuns", "all", time.Now())

	rows, err := pgSQL.Query(listRun)
	if err != nil {
		return runs, handleError("listRun", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			run        database.Run
			mode       zero.String
			startedAt  zero.Time
			finishedAt zero.Time
			distroID   zero.Int
			distroName zero.String
			distroVer  zero.String
			distroFmt  zero.String
		)
		err = rows.Scan(&run.ID, &run.Artifact, &mode, &run.Status,
			&startedAt, &finishedAt, &distroID, &distroName, &distroVer, &distroFmt)
		if err != nil {
			return runs, handleError("listRun.Scan()", err)
		}

		run.Mode = mode.String
		run.StartedAt = startedAt.Time
		run.FinishedAt = finishedAt.Time
		if distroID.Valid {
			run.Distro = database.Distro{
				Model:         database.Model{ID: int(distroID.Int64)},
				Name:          distroName.String,
				Version:       distroVer.String,
				VersionFormat: distroFmt.String,
			}
		}

		runs = append(runs, run)
	}

	if err = rows.Err(); err != nil {
		return runs, handleError("listRun.Rows()", err)
	}

	return runs, nil
}

// DeleteRun removes a run and its check results.
func (pgSQL *pgSQL) DeleteRun(id int) error {
	defer observeQueryTime("DeleteRun", "all", time.Now())

	result, err := pgSQL.Exec(removeRun, id)
	if err != nil {
		return handleError("removeRun", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return handleError("removeRun.RowsAffected()", err)
	}

	if affected <= 0 {
		return commonerr.ErrNotFound
	}

	return nil
}
