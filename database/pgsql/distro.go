package pgsql

import (
	"time"

	"github.com/guregu/null/zero"

	"github.com/kongove/scylla-artifact-tests/common/commonerr"
	"github.com/kongove/scylla-artifact-tests/database"
)

// InsertDistro finds or creates the distro and returns its id.
func (pgSQL *pgSQL) InsertDistro(distro database.Distro) (int, error) {
	if distro.Name == "" || distro.Version == "" {
		return 0, commonerr.NewBadRequestError("could not find/insert invalid Distro")
	}

	if pgSQL.cache != nil {
		if id, found := pgSQL.cache.Get("distro:" + distro.String()); found {
			return id.(int), nil
		}
	}

	defer observeQueryTime("InsertDistro", "all", time.Now())

	var id int
	err := pgSQL.QueryRow(soiDistro, distro.Name, distro.Version, distro.VersionFormat).Scan(&id)
	if err != nil {
		return 0, handleError("soiDistro", err)
	}

	if pgSQL.cache != nil {
		pgSQL.cache.Add("distro:"+distro.String(), id)
	}

	return id, nil
}

func (pgSQL *pgSQL) ListDistros() (distros []database.Distro, err error) {
	rows, err := pgSQL.Query(listDistro)
	if err != nil {
		return distros, handleError("listDistro", err)
	}
	defer rows.Close()

	for rows.Next() {
		var d database.Distro
		var format zero.String
		err = rows.Scan(&d.ID, &d.Name, &d.Version, &format)
		if err != nil {
			return distros, handleError("listDistro.Scan()", err)
		}
		d.VersionFormat = format.String

		distros = append(distros, d)
	}

	if err = rows.Err(); err != nil {
		return distros, handleError("listDistro.Rows()", err)
	}

	return distros, err
}
