package store

const postgresSchema = `
CREATE TABLE IF NOT EXISTS locations (
	location_id BIGSERIAL PRIMARY KEY,
	name TEXT NOT NULL UNIQUE,
	latitude DOUBLE PRECISION NOT NULL,
	longitude DOUBLE PRECISION NOT NULL
);

CREATE TABLE IF NOT EXISTS raw_readings (
	id BIGSERIAL PRIMARY KEY,
	location_id BIGINT NOT NULL REFERENCES locations(location_id),
	aqi INTEGER NOT NULL,
	pm2_5 DOUBLE PRECISION,
	pm10 DOUBLE PRECISION,
	co DOUBLE PRECISION,
	no2 DOUBLE PRECISION,
	so2 DOUBLE PRECISION,
	o3 DOUBLE PRECISION,
	nh3 DOUBLE PRECISION,
	recorded_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_raw_readings_recorded_at ON raw_readings(recorded_at);
CREATE INDEX IF NOT EXISTS idx_raw_readings_location_time ON raw_readings(location_id, recorded_at);

CREATE TABLE IF NOT EXISTS hourly_rollup (
	location_id BIGINT NOT NULL REFERENCES locations(location_id),
	hour_bucket TIMESTAMPTZ NOT NULL,
	avg_aqi DOUBLE PRECISION NOT NULL,
	avg_pm2_5 DOUBLE PRECISION,
	avg_pm10 DOUBLE PRECISION,
	avg_co DOUBLE PRECISION,
	avg_no2 DOUBLE PRECISION,
	avg_so2 DOUBLE PRECISION,
	avg_o3 DOUBLE PRECISION,
	avg_nh3 DOUBLE PRECISION,
	UNIQUE (location_id, hour_bucket)
);

CREATE TABLE IF NOT EXISTS daily_features (
	location_id BIGINT NOT NULL REFERENCES locations(location_id),
	feature_date DATE NOT NULL,
	mean_aqi DOUBLE PRECISION NOT NULL,
	std_aqi DOUBLE PRECISION,
	min_aqi DOUBLE PRECISION NOT NULL,
	max_aqi DOUBLE PRECISION NOT NULL,
	mean_pm2_5 DOUBLE PRECISION,
	mean_pm10 DOUBLE PRECISION,
	mean_no2 DOUBLE PRECISION,
	mean_co DOUBLE PRECISION,
	UNIQUE (location_id, feature_date)
);
`

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS locations (
	location_id INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT NOT NULL UNIQUE,
	latitude REAL NOT NULL,
	longitude REAL NOT NULL
);

CREATE TABLE IF NOT EXISTS raw_readings (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	location_id INTEGER NOT NULL REFERENCES locations(location_id),
	aqi INTEGER NOT NULL,
	pm2_5 REAL,
	pm10 REAL,
	co REAL,
	no2 REAL,
	so2 REAL,
	o3 REAL,
	nh3 REAL,
	recorded_at DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_raw_readings_recorded_at ON raw_readings(recorded_at);
CREATE INDEX IF NOT EXISTS idx_raw_readings_location_time ON raw_readings(location_id, recorded_at);

CREATE TABLE IF NOT EXISTS hourly_rollup (
	location_id INTEGER NOT NULL REFERENCES locations(location_id),
	hour_bucket DATETIME NOT NULL,
	avg_aqi REAL NOT NULL,
	avg_pm2_5 REAL,
	avg_pm10 REAL,
	avg_co REAL,
	avg_no2 REAL,
	avg_so2 REAL,
	avg_o3 REAL,
	avg_nh3 REAL,
	UNIQUE (location_id, hour_bucket)
);

CREATE TABLE IF NOT EXISTS daily_features (
	location_id INTEGER NOT NULL REFERENCES locations(location_id),
	feature_date DATE NOT NULL,
	mean_aqi REAL NOT NULL,
	std_aqi REAL,
	min_aqi REAL NOT NULL,
	max_aqi REAL NOT NULL,
	mean_pm2_5 REAL,
	mean_pm10 REAL,
	mean_no2 REAL,
	mean_co REAL,
	UNIQUE (location_id, feature_date)
);
`
