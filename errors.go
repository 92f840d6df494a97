package vodsync

import (
	"vodsync/deliver"
	"vodsync/engine"
	"vodsync/feed"
	"vodsync/retry"
	"vodsync/storage"
	"vodsync/ytdlp"
)

// Type aliases for convenient error handling.
type (
	// SourceError wraps errors during remote entry listing.
	SourceError = feed.SourceError
	// StorageError wraps errors during ledger persistence.
	StorageError = storage.StorageError
	// RetryableError wraps errors that persisted after retries were exhausted.
	RetryableError = retry.RetryableError
)

// Sentinel errors re-exported from sub-packages.
var (
	// ErrChannelNotFound indicates the remote channel does not exist.
	ErrChannelNotFound = feed.ErrChannelNotFound
	// ErrRateLimited indicates the remote source rate limited the listing.
	ErrRateLimited = feed.ErrRateLimited
	// ErrNetworkTimeout indicates a network timeout during listing.
	ErrNetworkTimeout = feed.ErrNetworkTimeout

	// ErrLedgerCorrupt indicates the ledger file exists but cannot be parsed.
	ErrLedgerCorrupt = storage.ErrLedgerCorrupt
	// ErrLockTimeout indicates another process holds the ledger lock.
	ErrLockTimeout = storage.ErrLockTimeout
	// ErrChannelMismatch indicates the ledger belongs to a different channel.
	ErrChannelMismatch = storage.ErrChannelMismatch

	// ErrNoDeliveryTarget indicates an eligible entry has nowhere to go.
	ErrNoDeliveryTarget = engine.ErrNoDeliveryTarget
	// ErrNoDeliverCommand indicates no delivery sink command is configured.
	ErrNoDeliverCommand = deliver.ErrNoCommand
	// ErrYtdlpNotInstalled indicates the yt-dlp binary was not found.
	ErrYtdlpNotInstalled = ytdlp.ErrNotInstalled
)
