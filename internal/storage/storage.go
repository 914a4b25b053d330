// Package storage provides string-keyed durable backends. A backend plays the
// role a browser's local storage plays for a web client: one string value per
// key, written in full on every update.
package storage

import (
	"context"
	"strings"

	"github.com/pkg/errors"
)

// ErrNotFound is returned by Get when the key holds no value.
var ErrNotFound = errors.New("storage: key not found")

// Backend stores one string value per key.
type Backend interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Kind names a backend implementation.
type Kind string

const (
	KindMemory Kind = "memory"
	KindFile   Kind = "file"
	KindSQLite Kind = "sqlite"
	KindRedis  Kind = "redis"
)

// Open constructs the backend named by kind. dsn is the directory for file,
// the database DSN for sqlite and the server address for redis.
func Open(ctx context.Context, kind Kind, dsn string) (Backend, error) {
	switch Kind(strings.ToLower(string(kind))) {
	case KindMemory, "":
		return NewMemory(), nil
	case KindFile:
		return NewFile(dsn)
	case KindSQLite:
		return NewSQLite(ctx, dsn)
	case KindRedis:
		return NewRedis(ctx, RedisOptions{Addr: dsn})
	default:
		return nil, errors.Errorf("storage: unknown backend %q", kind)
	}
}

func validKey(key string) error {
	if strings.TrimSpace(key) == "" {
		return errors.New("storage: empty key")
	}
	return nil
}
