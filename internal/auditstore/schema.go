package auditstore

const schema = `
CREATE TABLE IF NOT EXISTS qualify_runs (
    id              INTEGER PRIMARY KEY AUTOINCREMENT,
    timestamp_ns    INTEGER NOT NULL,
    passed          INTEGER NOT NULL,
    failure_code    INTEGER NOT NULL,
    duration_ns     INTEGER NOT NULL,
    hostname        TEXT,
    row_hash        BLOB NOT NULL,
    hmac            BLOB NOT NULL
);

CREATE TABLE IF NOT EXISTS selftest_trips (
    id              INTEGER PRIMARY KEY AUTOINCREMENT,
    timestamp_ns    INTEGER NOT NULL,
    collector_osr   INTEGER NOT NULL,
    row_hash        BLOB NOT NULL,
    hmac            BLOB NOT NULL
);

CREATE TABLE IF NOT EXISTS feed_events (
    id              INTEGER PRIMARY KEY AUTOINCREMENT,
    timestamp_ns    INTEGER NOT NULL,
    bytes_fed       INTEGER NOT NULL,
    entropy_bits    INTEGER NOT NULL,
    source          TEXT NOT NULL,
    row_hash        BLOB NOT NULL,
    hmac            BLOB NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_qualify_runs_ts ON qualify_runs(timestamp_ns);
CREATE INDEX IF NOT EXISTS idx_selftest_trips_ts ON selftest_trips(timestamp_ns);
CREATE INDEX IF NOT EXISTS idx_feed_events_ts ON feed_events(timestamp_ns);

CREATE TABLE IF NOT EXISTS chain (
    id              INTEGER PRIMARY KEY CHECK (id = 1),
    chain_hash      BLOB NOT NULL,
    row_count       INTEGER NOT NULL DEFAULT 0,
    hmac            BLOB NOT NULL
);
`
