package postgresql

// migrations returns the ordered schema migrations for the PostgreSQL backend.
// Aggregates are stored as JSONB documents with the columns the queries need
// promoted for indexing.
func migrations() map[int]string {
	return map[int]string{
		1: `
			CREATE TABLE IF NOT EXISTS workflows (
				id TEXT PRIMARY KEY,
				owner TEXT NOT NULL DEFAULT '',
				stage TEXT NOT NULL,
				status TEXT NOT NULL,
				doc JSONB NOT NULL,
				created_at TIMESTAMP WITH TIME ZONE NOT NULL,
				updated_at TIMESTAMP WITH TIME ZONE NOT NULL
			);
			CREATE INDEX IF NOT EXISTS idx_workflows_updated_at ON workflows (updated_at DESC);

			CREATE TABLE IF NOT EXISTS schedules (
				operator_id TEXT PRIMARY KEY,
				doc JSONB NOT NULL,
				updated_at TIMESTAMP WITH TIME ZONE NOT NULL
			);

			CREATE TABLE IF NOT EXISTS template_snapshots (
				id SMALLINT PRIMARY KEY CHECK (id = 1),
				doc JSONB NOT NULL,
				saved_at TIMESTAMP WITH TIME ZONE NOT NULL
			);

			CREATE TABLE IF NOT EXISTS workflow_rows (
				id TEXT PRIMARY KEY,
				status TEXT NOT NULL DEFAULT '',
				progress INTEGER NOT NULL DEFAULT 0,
				video_ref TEXT NOT NULL DEFAULT '',
				error TEXT NOT NULL DEFAULT '',
				updated_at TIMESTAMP WITH TIME ZONE NOT NULL
			);
		`,
	}
}
