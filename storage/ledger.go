// Package storage persists per-channel ledgers as JSON documents with
// crash-safe atomic writes.
package storage

import (
	"encoding/json"
	"errors"
	"os"
	"time"
)

const lockTimeout = 5 * time.Second

// LedgerStore reads and writes one channel's ledger file. Opening the store
// acquires an advisory lock on the ledger path, so at most one process
// mutates a given ledger at a time.
//
// Save is called synchronously after every semantically meaningful mutation;
// it is the sole recovery mechanism after a crash.
type LedgerStore struct {
	path string
	lock *FileLock
}

// NewLedgerStore opens a store for the ledger at path and acquires its lock.
func NewLedgerStore(path string) (*LedgerStore, error) {
	s := &LedgerStore{
		path: path,
		lock: NewFileLock(path),
	}
	if err := s.lock.Lock(lockTimeout); err != nil {
		return nil, err
	}
	return s, nil
}

// Path returns the ledger file path.
func (s *LedgerStore) Path() string { return s.path }

// Load reads the ledger from disk. A missing file is a fresh channel: an
// empty ledger with the given channel ID and a nil delivery target. A file
// that cannot be parsed is ErrLedgerCorrupt.
func (s *LedgerStore) Load(channelID string) (*Ledger, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return NewLedger(channelID), nil
		}
		return nil, &StorageError{Op: "load", Path: s.path, Err: err}
	}

	var led Ledger
	if err := json.Unmarshal(data, &led); err != nil {
		return nil, &StorageError{Op: "load", Path: s.path, Err: ErrLedgerCorrupt}
	}
	if led.ChannelID == "" {
		led.ChannelID = channelID
	} else if channelID != "" && led.ChannelID != channelID {
		return nil, &StorageError{Op: "load", Path: s.path, Err: ErrChannelMismatch}
	}
	if led.Entries == nil {
		led.Entries = []*Entry{}
	}
	return &led, nil
}

// Save writes the ledger to disk atomically. A crash during Save leaves
// either the prior ledger or the fully written new one.
func (s *LedgerStore) Save(led *Ledger) error {
	writer, err := NewAtomicWriter(s.path)
	if err != nil {
		return &StorageError{Op: "save", Path: s.path, Err: err}
	}

	encoder := json.NewEncoder(writer)
	encoder.SetIndent("", "  ")
	encoder.SetEscapeHTML(false)
	if err := encoder.Encode(led); err != nil {
		writer.Abort()
		return &StorageError{Op: "save", Path: s.path, Err: err}
	}

	if err := writer.Commit(); err != nil {
		return &StorageError{Op: "save", Path: s.path, Err: err}
	}
	return nil
}

// Close releases the advisory lock.
func (s *LedgerStore) Close() error {
	return s.lock.Unlock()
}
