package pgsql

const (
	createSchema = `
		CREATE TABLE IF NOT EXISTS Distro (
			id SERIAL PRIMARY KEY,
			name VARCHAR(128) NOT NULL,
			version VARCHAR(128) NOT NULL,
			version_format VARCHAR(128),
			UNIQUE (name, version));

		CREATE TABLE IF NOT EXISTS Run (
			id SERIAL PRIMARY KEY,
			artifact TEXT NOT NULL,
			mode VARCHAR(32),
			distro_id INT REFERENCES Distro,
			status VARCHAR(32) NOT NULL,
			started_at TIMESTAMP WITH TIME ZONE,
			finished_at TIMESTAMP WITH TIME ZONE NULL);

		CREATE TABLE IF NOT EXISTS CheckResult (
			id SERIAL PRIMARY KEY,
			run_id INT REFERENCES Run ON DELETE CASCADE,
			name VARCHAR(128) NOT NULL,
			status VARCHAR(32) NOT NULL,
			detail TEXT,
			duration_ms BIGINT);

		CREATE TABLE IF NOT EXISTS KeyValue (
			id SERIAL PRIMARY KEY,
			key VARCHAR(128) NOT NULL UNIQUE,
			value TEXT);`

	// distro.go
	soiDistro = `
		WITH new_distro AS (
			INSERT INTO Distro(name, version, version_format)
			SELECT CAST($1 AS VARCHAR), CAST($2 AS VARCHAR), CAST($3 AS VARCHAR)
			WHERE NOT EXISTS (SELECT id FROM Distro WHERE name = $1 AND version = $2)
			RETURNING id
		)
		SELECT id FROM Distro WHERE name = $1 AND version = $2
		UNION
		SELECT id FROM new_distro`

	listDistro = `SELECT id, name, version, version_format FROM Distro ORDER BY name, version`

	// run.go
	insertRun = `
		INSERT INTO Run(artifact, mode, distro_id, status, started_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`

	updateRunStatus = `UPDATE Run SET status = $2, finished_at = $3 WHERE id = $1`

	searchRun = `
		SELECT r.artifact, r.mode, r.status, r.started_at, r.finished_at,
			d.id, d.name, d.version, d.version_format
		FROM Run r LEFT JOIN Distro d ON r.distro_id = d.id
		WHERE r.id = $1`

	listRun = `
		SELECT r.id, r.artifact, r.mode, r.status, r.started_at, r.finished_at,
			d.id, d.name, d.version, d.version_format
		FROM Run r LEFT JOIN Distro d ON r.distro_id = d.id
		ORDER BY r.started_at DESC`

	removeRun = `DELETE FROM Run WHERE id = $1`

	insertCheckResult = `
		INSERT INTO CheckResult(run_id, name, status, detail, duration_ms)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`

	searchCheckResults = `
		SELECT id, name, status, detail, duration_ms
		FROM CheckResult
		WHERE run_id = $1
		ORDER BY id`

	// keyvalue.go
	updateKeyValue = `UPDATE KeyValue SET value = $1 WHERE key = $2`
	insertKeyValue = `INSERT INTO KeyValue(key, value) VALUES ($1, $2)`
	searchKeyValue = `SELECT value FROM KeyValue WHERE key = $1`
)
