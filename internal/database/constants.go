package database

import "time"

// Pool sizing defaults. MinConns stays above the number of reserved worker
// locks because each held advisory lock pins one connection for a full
// sync cycle.
const (
	DefaultMaxConns        int32 = 10
	DefaultMinConns        int32 = 4
	DefaultMaxConnIdleTime       = 5 * time.Minute
	DefaultMaxConnLifetime       = 30 * time.Minute
	DefaultConnectTimeout        = 5 * time.Second
)

// Error messages
const (
	ErrMsgFailedToParseConnString = "failed to parse connection string"
	ErrMsgFailedToCreatePool      = "failed to create connection pool"
	ErrMsgFailedToPingDatabase    = "failed to ping database"
)

// Log messages
const (
	LogMsgConnectedToDatabase = "Connected to database"
)
