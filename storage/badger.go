// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	badgerdb "github.com/dgraph-io/badger/v3"
	"github.com/luxfi/log"

	"github.com/luxfi/fhesdk"
)

var (
	_ fhesdk.Storage = (*Badger)(nil)
	_ Store          = (*Badger)(nil)
)

// Badger persists entries in a BadgerDB directory. An empty directory opens
// an in-memory database.
type Badger struct {
	db *badgerdb.DB
}

func NewBadger(dir string, logger log.Logger) (*Badger, error) {
	if logger == nil {
		logger = log.NewNoOpLogger()
	}
	opts := badgerdb.DefaultOptions(dir).WithInMemory(dir == "")
	opts.Logger = badgerLogger{log: logger}

	db, err := badgerdb.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger at %q: %w", dir, err)
	}
	return &Badger{db: db}, nil
}

func (b *Badger) Get(_ context.Context, key string) (string, bool, error) {
	var value []byte
	err := b.db.View(func(txn *badgerdb.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		value, err = item.ValueCopy(nil)
		return err
	})
	switch {
	case errors.Is(err, badgerdb.ErrKeyNotFound):
		return "", false, nil
	case err != nil:
		return "", false, fmt.Errorf("failed to read %q: %w", key, err)
	}
	return string(value), true, nil
}

func (b *Badger) Set(_ context.Context, key, value string) error {
	err := b.db.Update(func(txn *badgerdb.Txn) error {
		return txn.Set([]byte(key), []byte(value))
	})
	if err != nil {
		return fmt.Errorf("failed to write %q: %w", key, err)
	}
	return nil
}

func (b *Badger) Close() error {
	return b.db.Close()
}

// badgerLogger routes badger's printf-style output into a log.Logger
type badgerLogger struct {
	log log.Logger
}

func (l badgerLogger) Errorf(format string, args ...any) {
	l.log.Error("badger", log.String("msg", strings.TrimSpace(fmt.Sprintf(format, args...))))
}

func (l badgerLogger) Warningf(format string, args ...any) {
	l.log.Warn("badger", log.String("msg", strings.TrimSpace(fmt.Sprintf(format, args...))))
}

func (l badgerLogger) Infof(format string, args ...any) {
	l.log.Debug("badger", log.String("msg", strings.TrimSpace(fmt.Sprintf(format, args...))))
}

func (l badgerLogger) Debugf(format string, args ...any) {
	l.log.Trace("badger", log.String("msg", strings.TrimSpace(fmt.Sprintf(format, args...))))
}
