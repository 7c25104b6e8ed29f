// Package kv is the flat string-keyed blob store that record collections are
// persisted into. Each backend stores one value per key.
package kv

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"hrdesk/internal/platform/config"
	"hrdesk/internal/platform/crypto"
)

var (
	ErrQuotaExceeded = errors.New("kv: storage quota exceeded")
	ErrClosed        = errors.New("kv: backend closed")
)

const (
	DriverMemory   = "memory"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverRedis    = "redis"
)

type Backend interface {
	// Get reports ok=false when the key is absent.
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	// SetMulti writes every entry or none of them.
	SetMulti(ctx context.Context, entries map[string]string) error
	Delete(ctx context.Context, key string) error
	Keys(ctx context.Context) ([]string, error)
	Clear(ctx context.Context) error
	Ping(ctx context.Context) error
	Close() error
}

// Open builds the backend selected by cfg.StoreDriver, wrapped with at-rest
// encryption when a data key is configured.
func Open(ctx context.Context, cfg config.Config) (Backend, error) {
	var (
		backend Backend
		err     error
	)
	switch strings.ToLower(strings.TrimSpace(cfg.StoreDriver)) {
	case DriverMemory, "":
		backend = NewMemory(cfg.MemoryQuotaBytes)
	case DriverSQLite:
		backend, err = OpenSQLite(ctx, cfg.SQLitePath)
	case DriverPostgres:
		backend, err = OpenPostgres(ctx, cfg.DatabaseURL)
	case DriverRedis:
		backend, err = OpenRedis(ctx, RedisOptions{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			Prefix:   cfg.StorePrefix,
		})
	default:
		return nil, fmt.Errorf("kv: unknown driver %q", cfg.StoreDriver)
	}
	if err != nil {
		return nil, err
	}

	svc, err := crypto.New(cfg.DataEncryptionKey)
	if err != nil {
		_ = backend.Close()
		return nil, err
	}
	if svc.Configured() {
		return NewEncrypted(backend, svc), nil
	}
	return backend, nil
}
