package storage

// initializeSchema creates all tables. Statements are idempotent so
// reopening an existing database is safe.
func (db *DB) initializeSchema() error {
	schema := `
		CREATE TABLE IF NOT EXISTS patches (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			package TEXT NOT NULL,
			distro TEXT NOT NULL,
			filename TEXT NOT NULL,
			status TEXT NOT NULL,
			hunks INTEGER NOT NULL,
			added_lines INTEGER NOT NULL,
			removed_lines INTEGER NOT NULL,
			raw BLOB,
			raw_compressed INTEGER NOT NULL DEFAULT 0,
			imported_at TEXT NOT NULL,
			UNIQUE(package, distro, filename)
		);
		CREATE INDEX IF NOT EXISTS idx_patches_package ON patches(package, distro);

		CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			distro_a TEXT NOT NULL,
			distro_b TEXT NOT NULL,
			packages INTEGER NOT NULL DEFAULT 0,
			created_at TEXT NOT NULL
		);

		CREATE TABLE IF NOT EXISTS comparisons (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id TEXT NOT NULL,
			package TEXT NOT NULL,
			distro_a TEXT NOT NULL,
			distro_b TEXT NOT NULL,
			strip_a INTEGER NOT NULL,
			strip_b INTEGER NOT NULL,
			ambiguous_strip INTEGER NOT NULL DEFAULT 0,
			identical INTEGER NOT NULL DEFAULT 0,
			similar INTEGER NOT NULL DEFAULT 0,
			partial INTEGER NOT NULL DEFAULT 0,
			unique_a INTEGER NOT NULL DEFAULT 0,
			unique_b INTEGER NOT NULL DEFAULT 0,
			FOREIGN KEY (run_id) REFERENCES runs(id)
		);
		CREATE INDEX IF NOT EXISTS idx_comparisons_run ON comparisons(run_id);
		CREATE UNIQUE INDEX IF NOT EXISTS idx_comparisons_run_pkg ON comparisons(run_id, package);

		CREATE TABLE IF NOT EXISTS matches (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			comparison_id INTEGER NOT NULL,
			patch_a TEXT,
			patch_b TEXT,
			score REAL NOT NULL,
			category TEXT NOT NULL,
			FOREIGN KEY (comparison_id) REFERENCES comparisons(id)
		);
		CREATE INDEX IF NOT EXISTS idx_matches_comparison ON matches(comparison_id);
	`

	_, err := db.conn.Exec(schema)
	return err
}
