// Package kv provides the byte-level key-value repositories the persistence
// adapter (internal/storage) is built on.
//
// # Overview
//
// Repository is the whole contract: Get returns (nil, nil) for an absent
// key, Set upserts, Delete is idempotent. Values are opaque bytes; encoding
// and corruption detection belong to the layer above.
//
// # Implementations
//
//   - MemoryRepository: process-local map, used by tests and the "memory" driver
//   - FileRepository  : one file per key in a directory (closest to browser local storage)
//   - SQLRepository   : kv_store table on SQLite (modernc.org/sqlite) or PostgreSQL (pgx)
//   - RedisRepository : plain string keys on a Redis server
//   - S3Repository    : one object per key in an S3-compatible bucket
//
// SQLRepository also implements Batcher, so several records can be written in
// one transaction.
//
// # Concurrency
//
// Repositories add no cross-process coordination. Two processes sharing one
// backend race, and the later write wins.
//
// # Typical Usage
//
//	db, _ := kv.OpenSQLite(ctx, "storefront.db")
//	repo := kv.NewSQLiteRepository(db)
//	_ = repo.Set(ctx, "cart", []byte(`[]`))
//	v, _ := repo.Get(ctx, "cart")
package kv
