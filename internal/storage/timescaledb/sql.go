package timescaledb

const createTableSQL = `
CREATE TABLE IF NOT EXISTS rewards (
    time timestamp WITH TIME ZONE NOT NULL,
    run_id text NOT NULL,
    experiment text NOT NULL,
    agent text NOT NULL,
    dual_axis boolean NOT NULL,
    latitude float8 NOT NULL,
    longitude float8 NOT NULL,
    instance integer NOT NULL,
    episode integer NOT NULL,
    chunk integer NOT NULL,
    reward float8 NOT NULL,
    direct_wh float8 NULL,
    diffuse_wh float8 NULL,
    reflective_wh float8 NULL,
    motion_wh float8 NULL
);`

const createExtensionSQL = `CREATE EXTENSION IF NOT EXISTS timescaledb CASCADE;`

const createHypertableSQL = `SELECT create_hypertable('rewards', 'time', if_not_exists => TRUE, migrate_data => TRUE);`

const createIndexSQL = `CREATE INDEX IF NOT EXISTS rewards_run_idx ON rewards (run_id, agent, instance, episode, chunk);`

// Total reward and energy per run, agent, instance and episode.
const createTotalsViewSQL = `
CREATE OR REPLACE VIEW reward_totals AS
SELECT
    run_id,
    experiment,
    agent,
    dual_axis,
    instance,
    episode,
    min(time) AS started,
    count(*) AS chunks,
    sum(reward) AS total_reward,
    sum(direct_wh) AS direct_wh,
    sum(diffuse_wh) AS diffuse_wh,
    sum(reflective_wh) AS reflective_wh,
    sum(motion_wh) AS motion_wh
FROM rewards
GROUP BY run_id, experiment, agent, dual_axis, instance, episode;`

// setupStatements run in order when the storage starts.
var setupStatements = []struct {
	name string
	sql  string
}{
	{"rewards table", createTableSQL},
	{"TimescaleDB extension", createExtensionSQL},
	{"hypertable", createHypertableSQL},
	{"run index", createIndexSQL},
	{"reward totals view", createTotalsViewSQL},
}
