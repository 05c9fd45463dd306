package db

import "fmt"

// dialect captures the SQL differences between the supported backends.
type dialect struct {
	name        string
	driver      string
	createTable string
	// placeholder returns the bind marker for the i-th argument, 1-based.
	placeholder func(i int) string
}

var sqliteDialect = dialect{
	name:   "sqlite",
	driver: "sqlite",
	createTable: `
	CREATE TABLE IF NOT EXISTS run_records (
		record_key TEXT PRIMARY KEY,
		runtime_version TEXT NOT NULL,
		created_at DATETIME NOT NULL,
		body TEXT NOT NULL
	);
	`,
	placeholder: func(int) string { return "?" },
}

var postgresDialect = dialect{
	name:   "postgres",
	driver: "postgres",
	createTable: `CREATE TABLE IF NOT EXISTS run_records (
			record_key TEXT PRIMARY KEY,
			runtime_version TEXT NOT NULL,
			created_at TIMESTAMP NOT NULL,
			body TEXT NOT NULL
		);`,
	placeholder: func(i int) string { return fmt.Sprintf("$%d", i) },
}

func (d dialect) insertQuery() string {
	return fmt.Sprintf(
		`INSERT INTO run_records (record_key, runtime_version, created_at, body) VALUES (%s, %s, %s, %s) ON CONFLICT (record_key) DO NOTHING`,
		d.placeholder(1), d.placeholder(2), d.placeholder(3), d.placeholder(4))
}

const selectQuery = `SELECT record_key, body FROM run_records ORDER BY record_key`
