package storage

const (
	initSchemaSQL = `
CREATE TABLE measurements
(
    id        INTEGER PRIMARY KEY AUTOINCREMENT,
    timestamp TIMESTAMP NOT NULL,
    x         REAL      NOT NULL,
    y         REAL      NOT NULL,
    rssi      INTEGER,
    snr       INTEGER,
    noise     INTEGER,
    frequency REAL,
    channel   INTEGER,
    bssid     TEXT
);

CREATE INDEX idx_measurements_position ON measurements (x, y);`

	insertMeasurementSQL = `
INSERT INTO measurements (timestamp,
                          x,
                          y,
                          rssi,
                          snr,
                          noise,
                          frequency,
                          channel,
                          bssid)
VALUES `

	countMeasurementsSQL = `
SELECT 
    COUNT(*) 
FROM measurements`

	// %[1]s is a column name taken from fieldColumns, never user input
	selectPointsSQL = `
SELECT 
    x, 
    y, 
    AVG(%[1]s), 
    COUNT(%[1]s) 
FROM measurements 
WHERE 
    %[1]s IS NOT NULL 
GROUP BY x, y 
ORDER BY x, y`

	selectCoordinateVarianceSQL = `
SELECT 
    x, 
    y, 
    COUNT(rssi), 
    SUM(CAST(rssi AS REAL)), 
    SUM(CAST(rssi AS REAL) * rssi) 
FROM measurements 
WHERE 
    rssi IS NOT NULL 
GROUP BY x, y 
ORDER BY x, y`

	selectWorstSignalSQL = `
SELECT 
    timestamp, 
    x, 
    y, 
    rssi, 
    snr, 
    noise, 
    frequency, 
    channel, 
    bssid 
FROM measurements 
WHERE 
    rssi IS NOT NULL 
ORDER BY rssi, id 
LIMIT 1`
)
