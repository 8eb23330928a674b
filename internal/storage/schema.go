// ABOUTME: SQLite schema definition and initialization.
// ABOUTME: Defines tables for users, uploaded_files, and health_metrics.
package storage

// initSchema creates or updates the database schema.
func (d *DB) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		username TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS uploaded_files (
		id TEXT PRIMARY KEY,
		username TEXT NOT NULL,
		category TEXT NOT NULL,
		filename TEXT NOT NULL,
		filepath TEXT NOT NULL,
		upload_date TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS health_metrics (
		id TEXT PRIMARY KEY,
		username TEXT NOT NULL,
		category TEXT NOT NULL,
		metric_name TEXT NOT NULL,
		metric_value REAL NOT NULL,
		date TEXT NOT NULL,
		source_file_path TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_files_user ON uploaded_files(username, upload_date DESC);
	CREATE INDEX IF NOT EXISTS idx_metrics_user_name_date ON health_metrics(username, metric_name, date);
	CREATE INDEX IF NOT EXISTS idx_metrics_user_category ON health_metrics(username, category);
	`

	_, err := d.db.Exec(schema)
	return err
}
