// Package storage opens the clients for storedash's backing services.
//
// It owns connection setup only: pool sizes, timeouts, credentials and
// bucket bootstrap. Domain packages receive the resulting *sql.DB,
// *redis.Client and *s3.Client and define their own queries and keys.
//
//	cfg := storage.DefaultConfig()
//	db, err := storage.OpenDB(cfg)
//	rdb, err := storage.NewRedisClient(cfg)
//	s3c, err := storage.NewS3Client(ctx, cfg)
package storage
