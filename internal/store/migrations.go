package store

// migration represents a single schema migration.
type migration struct {
	Version int
	Name    string
	SQL     string
}

// migrations is the ordered list of all schema migrations.
var migrations = []migration{
	{
		Version: 1,
		Name:    "create events",
		SQL: `
			CREATE TABLE events (
				id          TEXT PRIMARY KEY,
				kind        TEXT NOT NULL,
				data        TEXT,
				created_at  TEXT NOT NULL
			);

			CREATE INDEX idx_events_created ON events (created_at);
		`,
	},
	{
		Version: 2,
		Name:    "index events by kind",
		SQL: `
			CREATE INDEX idx_events_kind ON events (kind, created_at);
		`,
	},
}
