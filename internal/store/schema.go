package store

const schemaSQL = `
CREATE TABLE IF NOT EXISTS plans (
    id                   TEXT PRIMARY KEY,
    cache_key            TEXT NOT NULL UNIQUE,
    goal_name            TEXT NOT NULL,
    income               REAL NOT NULL,
    expenses             REAL NOT NULL,
    savings              REAL NOT NULL,
    goal_amount          REAL NOT NULL,
    months               INTEGER NOT NULL,
    model                TEXT NOT NULL,
    feasible             INTEGER NOT NULL DEFAULT 0,
    plan                 TEXT NOT NULL,
    created_at           TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_plans_created ON plans(created_at);
`
