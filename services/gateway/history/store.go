// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package history provides the durable chat-history store keyed by session.
//
// BadgerDB gives low-latency embedded storage with no external service
// dependency. The gateway only appends and lists turns; retention and
// summarization are out of scope here.
//
// License: BadgerDB is Apache 2.0 licensed (github.com/dgraph-io/badger).
package history

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
)

// Turn is one stored question/answer exchange.
type Turn struct {
	Question  string `json:"question"`
	Answer    string `json:"answer"`
	Timestamp int64  `json:"timestamp"`
}

// Store defines the contract for the chat-history collaborator.
//
// # Thread Safety
//
// Implementations must be safe for concurrent use.
type Store interface {
	// Append persists one turn under the session. Timestamp is filled with
	// the current time when zero.
	Append(ctx context.Context, sessionID string, turn Turn) error

	// List returns the session's turns in chronological order. A session
	// with no stored turns yields an empty slice, not an error.
	List(ctx context.Context, sessionID string) ([]Turn, error)

	// Clear removes every turn stored for the session.
	Clear(ctx context.Context, sessionID string) error

	// Close releases the underlying database.
	Close() error
}

// Config holds configuration for the Badger-backed store.
type Config struct {
	// Path is the directory for BadgerDB files.
	// Ignored when InMemory is true.
	Path string

	// InMemory enables in-memory mode (no disk persistence).
	// Useful for testing.
	InMemory bool

	// SyncWrites enables synchronous writes for durability.
	SyncWrites bool
}

// DefaultConfig returns the production configuration for the given directory.
func DefaultConfig(path string) Config {
	return Config{Path: path, SyncWrites: true}
}

// InMemoryConfig returns a configuration for tests: no disk I/O, no sync.
func InMemoryConfig() Config {
	return Config{InMemory: true}
}

// BadgerStore implements Store on an embedded BadgerDB.
//
// Keys are "turn/{sessionID}/{nanos}" with zero-padded nanosecond timestamps,
// so lexicographic key order is chronological order and List is a single
// prefix scan.
type BadgerStore struct {
	db *badger.DB
}

// Open opens (or creates) the store described by cfg.
func Open(cfg Config) (*BadgerStore, error) {
	opts := badger.DefaultOptions(cfg.Path).
		WithInMemory(cfg.InMemory).
		WithSyncWrites(cfg.SyncWrites).
		WithLogger(nil)

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open history store: %w", err)
	}
	return &BadgerStore{db: db}, nil
}

// turnKey builds the storage key for a turn recorded at the given nanosecond
// timestamp.
func turnKey(sessionID string, nanos int64) []byte {
	return []byte(fmt.Sprintf("turn/%s/%020d", sessionID, nanos))
}

// sessionPrefix is the key prefix covering every turn of a session.
func sessionPrefix(sessionID string) []byte {
	return []byte(fmt.Sprintf("turn/%s/", sessionID))
}

// Append implements Store.
func (s *BadgerStore) Append(ctx context.Context, sessionID string, turn Turn) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	now := time.Now()
	if turn.Timestamp == 0 {
		turn.Timestamp = now.UnixMilli()
	}

	value, err := json.Marshal(turn)
	if err != nil {
		return fmt.Errorf("failed to marshal turn: %w", err)
	}

	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(turnKey(sessionID, now.UnixNano()), value)
	})
}

// List implements Store.
func (s *BadgerStore) List(ctx context.Context, sessionID string) ([]Turn, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	turns := []Turn{}
	prefix := sessionPrefix(sessionID)

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			err := it.Item().Value(func(val []byte) error {
				var turn Turn
				if err := json.Unmarshal(val, &turn); err != nil {
					return fmt.Errorf("failed to unmarshal turn: %w", err)
				}
				turns = append(turns, turn)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return turns, nil
}

// Clear implements Store.
func (s *BadgerStore) Clear(ctx context.Context, sessionID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	prefix := sessionPrefix(sessionID)

	// Collect keys first; deleting while iterating invalidates the iterator.
	var keys [][]byte
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			keys = append(keys, it.Item().KeyCopy(nil))
		}
		return nil
	})
	if err != nil {
		return err
	}

	wb := s.db.NewWriteBatch()
	defer wb.Cancel()
	for _, key := range keys {
		if err := wb.Delete(key); err != nil {
			return fmt.Errorf("failed to delete turn: %w", err)
		}
	}
	return wb.Flush()
}

// Close implements Store.
func (s *BadgerStore) Close() error {
	return s.db.Close()
}

// Ensure BadgerStore implements Store.
var _ Store = (*BadgerStore)(nil)
