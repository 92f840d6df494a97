package storage

import "errors"

// Sentinel errors for ledger storage operations.
var (
	// ErrLedgerCorrupt indicates the ledger file exists but cannot be parsed.
	// This is fatal: there is no partial-ledger recovery beyond what the
	// atomic save already guarantees.
	ErrLedgerCorrupt = errors.New("storage: ledger corrupt")
	// ErrLockTimeout indicates the advisory file lock could not be acquired.
	ErrLockTimeout = errors.New("storage: lock timeout")
	// ErrChannelMismatch indicates the ledger on disk belongs to a different
	// channel than the one requested.
	ErrChannelMismatch = errors.New("storage: channel mismatch")
)

// StorageError wraps storage failures with operation context.
// Use errors.As() to extract it, or errors.Is() against the sentinels above.
type StorageError struct {
	// Op is the operation that failed ("load", "save", "lock").
	Op string
	// Path is the ledger file path.
	Path string
	// Err is the underlying error.
	Err error
}

func (e *StorageError) Error() string {
	return "storage: " + e.Op + " " + e.Path + ": " + e.Err.Error()
}

func (e *StorageError) Unwrap() error { return e.Err }
