package store

// The scraped archive already has IDs for all of these tables, so those IDs
// are the primary keys. The mirrored_at column on every table reflects the
// time the data was rendered by the original Halomaps, not the import time.
//
// The REFERENCES clauses document intent but are not enforced: posts and
// topics legitimately reference users that were deleted before the mirror
// was taken, so SQLite's foreign_keys pragma stays off during import.
const schema = `
CREATE TABLE IF NOT EXISTS users (
	id            INTEGER PRIMARY KEY,
	name          TEXT NOT NULL,
	joined_at     INTEGER NOT NULL,
	last_visit_at INTEGER NOT NULL,
	-- A header Dennis manually added to a select few users.
	-- Was not displayed in profiles.
	special       TEXT,
	-- References a statically served avatar image name.
	avatar        TEXT,
	quote         TEXT,
	location      TEXT,
	occupation    TEXT,
	interests     TEXT,
	age           TEXT,
	games_played  TEXT,
	mirrored_at   INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS categories (
	id          INTEGER PRIMARY KEY,
	sort_index  INTEGER NOT NULL,
	name        TEXT NOT NULL,
	mirrored_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS forums (
	id          INTEGER PRIMARY KEY,
	sort_index  INTEGER NOT NULL,
	name        TEXT NOT NULL,
	locked      INTEGER NOT NULL DEFAULT 0,
	description TEXT NOT NULL,
	category_id INTEGER NOT NULL REFERENCES categories(id),
	mirrored_at INTEGER NOT NULL
);

-- Stats are extracted from the counters rendered on the forum home page.
-- They are NOT derived from the posts and users we scrape, so they can be
-- used to verify the completeness of the mirror and the extraction.
CREATE TABLE IF NOT EXISTS stats (
	name        TEXT PRIMARY KEY,
	value       INTEGER NOT NULL,
	mirrored_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS topics (
	id          INTEGER PRIMARY KEY,
	name        TEXT NOT NULL,
	views       INTEGER NOT NULL,
	pinned      INTEGER NOT NULL DEFAULT 0,
	locked      INTEGER NOT NULL DEFAULT 0,
	forum_id    INTEGER NOT NULL REFERENCES forums(id),
	author_id   INTEGER REFERENCES users(id),
	author_name TEXT NOT NULL,
	moved_from  INTEGER REFERENCES forums(id),
	created_at  INTEGER,
	mirrored_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS posts (
	id          INTEGER PRIMARY KEY,
	author_id   INTEGER NOT NULL REFERENCES users(id),
	topic_id    INTEGER NOT NULL REFERENCES topics(id),
	created_at  INTEGER NOT NULL,
	-- Contains HTML tags adjusted to work with statically served CSS.
	content     TEXT NOT NULL,
	mirrored_at INTEGER NOT NULL
);
`
