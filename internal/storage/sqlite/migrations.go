package sqlite

// Schema defines the SQLite database schema. Every statement is an
// if-not-exists create so bootstrap stays idempotent across restarts and
// concurrent processes.
const Schema = `
-- Indicator records: flat, time-ordered, append-only
CREATE TABLE IF NOT EXISTS indicators (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	timestamp TIMESTAMP NOT NULL,
	name TEXT NOT NULL,
	slo_target REAL NOT NULL,
	sli_value REAL NOT NULL,
	is_bad BOOLEAN NOT NULL DEFAULT 0,
	period TEXT NOT NULL,
	data_quality TEXT NOT NULL DEFAULT 'ok',
	created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_indicators_timestamp ON indicators(timestamp DESC);
CREATE INDEX IF NOT EXISTS idx_indicators_name ON indicators(name);
`
