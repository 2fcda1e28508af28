package sqlite

const schema = `
CREATE TABLE IF NOT EXISTS profiles (
    id          TEXT PRIMARY KEY,
    base_url    TEXT NOT NULL UNIQUE,
    created_at  DATETIME NOT NULL,
    last_used   DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS mail_sessions (
    profile_id     TEXT PRIMARY KEY REFERENCES profiles(id) ON DELETE CASCADE,
    integration_id TEXT NOT NULL DEFAULT '',
    filter         TEXT NOT NULL DEFAULT 'all',
    search         TEXT NOT NULL DEFAULT '',
    base_query     TEXT NOT NULL DEFAULT '',
    tokens         TEXT NOT NULL DEFAULT '[""]',
    page_index     INTEGER NOT NULL DEFAULT 0,
    next_token     TEXT NOT NULL DEFAULT '',
    updated_at     DATETIME NOT NULL
);
`
