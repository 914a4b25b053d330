package storage

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"
	bolt "go.etcd.io/bbolt"
)

// FileName is the database file created inside the File directory.
const FileName = "cureverse.db"

var bucket = []byte("kv")

// File is a single-file bbolt database under a directory. One process holds
// it open at a time.
type File struct {
	dir string
	db  *bolt.DB
}

var _ Backend = (*File)(nil)

// NewFile opens the database inside dir, creating both when missing. An
// empty dir uses the user config directory.
func NewFile(dir string) (*File, error) {
	if dir == "" {
		base, err := os.UserConfigDir()
		if err != nil {
			return nil, errors.Wrap(err, "storage: resolve config dir")
		}
		dir = filepath.Join(base, "cureverse")
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, errors.Wrapf(err, "storage: create %s", dir)
	}

	db, err := bolt.Open(filepath.Join(dir, FileName), 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, errors.Wrapf(err, "storage: open %s", dir)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucket)
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "storage: create bucket")
	}
	return &File{dir: dir, db: db}, nil
}

// Dir returns the directory holding the database.
func (f *File) Dir() string { return f.dir }

func (f *File) Get(_ context.Context, key string) (string, error) {
	if err := validKey(key); err != nil {
		return "", err
	}
	var value string
	found := false
	err := f.db.View(func(tx *bolt.Tx) error {
		if v := tx.Bucket(bucket).Get([]byte(key)); v != nil {
			value, found = string(v), true
		}
		return nil
	})
	if err != nil {
		return "", errors.Wrapf(err, "storage: read %s", key)
	}
	if !found {
		return "", ErrNotFound
	}
	return value, nil
}

func (f *File) Set(_ context.Context, key, value string) error {
	if err := validKey(key); err != nil {
		return err
	}
	err := f.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucket).Put([]byte(key), []byte(value))
	})
	return errors.Wrapf(err, "storage: write %s", key)
}

func (f *File) Delete(_ context.Context, key string) error {
	if err := validKey(key); err != nil {
		return err
	}
	err := f.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucket).Delete([]byte(key))
	})
	return errors.Wrapf(err, "storage: delete %s", key)
}

func (f *File) Close() error { return f.db.Close() }
