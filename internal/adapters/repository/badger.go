package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync/atomic"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"

	"github.com/okian/bgxboard/internal/domain/model"
	"github.com/okian/bgxboard/pkg/logger"
)

const visitKeyPrefix = "visit/"

// BadgerStore keeps events in an embedded Badger database under
// visit/<timestamp>/<id>, so key order is chronological.
type BadgerStore struct {
	db     *badger.DB
	log    logger.Logger
	closed atomic.Bool
}

// NewBadgerStore opens the database in dir, or in memory with WithInMemory(true).
func NewBadgerStore(ctx context.Context, dir string, opts ...Option) (*BadgerStore, error) {
	o := newOptions(opts)

	var bopts badger.Options
	if o.inMemory {
		bopts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if dir == "" {
			return nil, errors.New("badger store path is required")
		}
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("create visit store directory %s: %w", dir, err)
		}
		bopts = badger.DefaultOptions(dir)
	}
	bopts = bopts.WithSyncWrites(o.syncWrites && !o.inMemory).
		WithNumVersionsToKeep(1).
		WithLogger(&badgerLogger{ctx: context.WithoutCancel(ctx), log: o.log.Named("badger")})

	db, err := badger.Open(bopts)
	if err != nil {
		return nil, fmt.Errorf("open badger visit store: %w", err)
	}
	o.log.Info(ctx, "visit store opened", logger.String("backend", BackendBadger),
		logger.String("path", dir), logger.Bool("in_memory", o.inMemory))
	return &BadgerStore{db: db, log: o.log}, nil
}

// badgerLogger forwards Badger's internal log lines to the store logger.
type badgerLogger struct {
	ctx context.Context
	log logger.Logger
}

var _ badger.Logger = (*badgerLogger)(nil)

func (l *badgerLogger) Errorf(format string, args ...any) {
	l.log.Error(l.ctx, badgerMessage(format, args))
}

func (l *badgerLogger) Warningf(format string, args ...any) {
	l.log.Warn(l.ctx, badgerMessage(format, args))
}

func (l *badgerLogger) Infof(format string, args ...any) {
	l.log.Info(l.ctx, badgerMessage(format, args))
}

func (l *badgerLogger) Debugf(format string, args ...any) {
	l.log.Debug(l.ctx, badgerMessage(format, args))
}

// Badger terminates most of its messages with a newline.
func badgerMessage(format string, args []any) string {
	return strings.TrimRight(fmt.Sprintf(format, args...), "\n")
}

func visitKey(e model.VisitEvent) []byte {
	return []byte(visitKeyPrefix + e.Timestamp + "/" + e.ID)
}

func (s *BadgerStore) Append(_ context.Context, e model.VisitEvent) error {
	if s.closed.Load() {
		return ErrStoreClosed
	}
	if err := validate(e); err != nil {
		return err
	}
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	val, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("encode visit: %w", err)
	}
	if err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(visitKey(e), val)
	}); err != nil {
		return fmt.Errorf("append visit: %w", err)
	}
	return nil
}

func (s *BadgerStore) ReadAll(ctx context.Context) ([]model.VisitEvent, error) {
	if s.closed.Load() {
		return nil, ErrStoreClosed
	}
	var out []model.VisitEvent
	prefix := []byte(visitKeyPrefix)
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = true
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			item := it.Item()
			var e model.VisitEvent
			err := item.Value(func(val []byte) error {
				return json.Unmarshal(val, &e)
			})
			if err != nil {
				s.log.Warn(ctx, "skipping undecodable visit", logger.String("key", string(item.Key())), logger.Error(err))
				continue
			}
			out = append(out, e)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("read visit store: %w", err)
	}
	return out, nil
}

func (s *BadgerStore) Count(ctx context.Context) (int, error) {
	if s.closed.Load() {
		return 0, ErrStoreClosed
	}
	n := 0
	prefix := []byte(visitKeyPrefix)
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			n++
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("count visits: %w", err)
	}
	return n, nil
}

func (s *BadgerStore) Close() error {
	if !s.closed.CompareAndSwap(false, true) {
		return nil
	}
	return s.db.Close()
}
