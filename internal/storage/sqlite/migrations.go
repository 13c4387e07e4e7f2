package sqlite

import "database/sql"

// migrations contains the SQL statements to set up the database schema.
// These run on startup to ensure tables exist.
// IMPORTANT: circles must be created BEFORE the dependent tables due to
// foreign key constraints.
const schema = `
CREATE TABLE IF NOT EXISTS circles (
    id TEXT PRIMARY KEY,
    cooperative_id TEXT NOT NULL,
    name TEXT NOT NULL,
    amount REAL NOT NULL,
    frequency TEXT NOT NULL,
    strategy TEXT NOT NULL,
    total_cycles INTEGER NOT NULL,
    current_cycle INTEGER NOT NULL DEFAULT 0,
    status TEXT NOT NULL,
    invite_deadline INTEGER NOT NULL DEFAULT 0,
    cancel_reason TEXT,
    created_by TEXT NOT NULL,
    created_at INTEGER NOT NULL,
    activated_at INTEGER NOT NULL DEFAULT 0,
    completed_at INTEGER NOT NULL DEFAULT 0,
    cancelled_at INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS participants (
    id TEXT PRIMARY KEY,
    circle_id TEXT NOT NULL,
    member_id TEXT NOT NULL,
    status TEXT NOT NULL,
    collection_order INTEGER NOT NULL DEFAULT 0,
    has_collected INTEGER NOT NULL DEFAULT 0,
    collection_cycle INTEGER NOT NULL DEFAULT 0,
    responded_at INTEGER NOT NULL DEFAULT 0,
    created_at INTEGER NOT NULL,
    UNIQUE (circle_id, member_id),
    FOREIGN KEY (circle_id) REFERENCES circles(id)
);

CREATE TABLE IF NOT EXISTS contributions (
    id TEXT PRIMARY KEY,
    circle_id TEXT NOT NULL,
    member_id TEXT NOT NULL,
    cycle INTEGER NOT NULL,
    amount REAL NOT NULL,
    method TEXT NOT NULL,
    reference TEXT,
    notes TEXT,
    recorded_by TEXT NOT NULL,
    created_at INTEGER NOT NULL,
    UNIQUE (circle_id, member_id, cycle),
    FOREIGN KEY (circle_id) REFERENCES circles(id)
);

CREATE TABLE IF NOT EXISTS collections (
    id TEXT PRIMARY KEY,
    circle_id TEXT NOT NULL,
    cycle INTEGER NOT NULL,
    total_amount REAL NOT NULL,
    commission REAL NOT NULL,
    net_amount REAL NOT NULL,
    method TEXT NOT NULL,
    reference TEXT,
    notes TEXT,
    collector_id TEXT NOT NULL,
    recorded_by TEXT NOT NULL,
    created_at INTEGER NOT NULL,
    UNIQUE (circle_id, cycle),
    FOREIGN KEY (circle_id) REFERENCES circles(id)
);

CREATE TABLE IF NOT EXISTS cooperative_settings (
    cooperative_id TEXT PRIMARY KEY,
    commission_rate REAL NOT NULL,
    default_frequency TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS users (
    id TEXT PRIMARY KEY,
    email TEXT NOT NULL UNIQUE,
    name TEXT NOT NULL,
    password_hash TEXT NOT NULL,
    created_at INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_circles_cooperative_id ON circles(cooperative_id);
CREATE INDEX IF NOT EXISTS idx_participants_circle_id ON participants(circle_id);
CREATE INDEX IF NOT EXISTS idx_contributions_circle_cycle ON contributions(circle_id, cycle);
CREATE INDEX IF NOT EXISTS idx_collections_circle_id ON collections(circle_id);
CREATE UNIQUE INDEX IF NOT EXISTS idx_participants_order
    ON participants(circle_id, collection_order) WHERE collection_order > 0;
`

// runMigrations executes the schema setup.
func runMigrations(db *sql.DB) error {
	_, err := db.Exec(schema)
	return err
}
