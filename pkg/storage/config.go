package storage

import "time"

// Config describes the backing services: the SQL database holding
// subscription requests, the Redis instance holding checkout state, and
// the S3-compatible bucket holding payment proofs.
type Config struct {
	// SQL database
	DatabaseDriver      string // "postgres" or "sqlite3"
	DatabaseURL         string
	DatabaseMaxConns    int
	DatabaseMinConns    int
	DatabaseTimeout     time.Duration
	DatabaseMaxLifetime time.Duration

	// S3 config
	S3Endpoint      string
	S3Region        string
	S3Bucket        string
	S3AccessKey     string
	S3SecretKey     string
	S3UsePathStyle  bool
	S3PublicBaseURL string // base of the URLs handed to reviewers
	S3CreateBucket  bool

	// Redis config; an empty URL selects the in-process store
	RedisURL        string
	RedisPassword   string
	RedisDB         int
	RedisMaxRetries int
	RedisPoolSize   int
}

// DefaultConfig returns a Config suitable for local development
func DefaultConfig() Config {
	return Config{
		DatabaseDriver:      "sqlite3",
		DatabaseURL:         "file:storedash.db?_foreign_keys=on",
		DatabaseMaxConns:    10,
		DatabaseMinConns:    2,
		DatabaseTimeout:     5 * time.Second,
		DatabaseMaxLifetime: 30 * time.Minute,
		S3Region:            "us-east-1",
		S3Bucket:            "storedash-proofs",
		RedisDB:             -1,
		RedisMaxRetries:     3,
		RedisPoolSize:       10,
	}
}
