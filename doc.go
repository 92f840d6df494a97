// Package vodsync relays newly published channel videos to a delivery sink
// exactly once, surviving process restarts without re-sending or losing
// videos.
//
// It tracks per-channel feeds on two platforms (YouTube via its Atom feed,
// Bilibili via an RSSHub instance) and keeps a durable per-channel ledger of
// every observed video and its delivery status. The ledger is persisted
// atomically after every meaningful state transition, so a crash at any
// point leaves either the prior state or the fully committed new one.
//
// # Quick start
//
// Run one incremental sync for a channel:
//
//	cfg, err := config.Load()
//	if err != nil {
//		log.Fatal(err)
//	}
//	err = vodsync.SyncChannel(ctx, cfg, vodsync.PlatformYouTube, "UCxxxxx", "")
//
// Rebuild a channel's ledger from the complete remote history (no delivery):
//
//	err = vodsync.BackfillChannel(ctx, cfg, vodsync.PlatformYouTube, "UCxxxxx", "",
//		vodsync.BackfillOptions{ResolvePubdate: true})
//
// # Configuration
//
// Configuration is resolved once at startup from VODSYNC_* environment
// variables, an optional vodsync.json, and defaults, in that priority order.
// See the config package for the full surface. TZ, LOG_LEVEL and
// YOUTUBE_API_KEY are honored as fallbacks.
//
// # Error handling
//
// Collaborator failures are not absorbed: a delivery or listing failure
// aborts the run with a non-zero exit, and the next scheduled invocation
// retries from the persisted ledger. The one exception is the metadata
// probe, whose transient failures leave the affected entry pending for the
// next run. Sentinel errors are re-exported here for library users:
//
//	if errors.Is(err, vodsync.ErrLedgerCorrupt) {
//		// operator intervention required
//	}
//
// # Sub-packages
//
//   - engine: reconciliation, classification, delivery driving, backfill
//   - storage: ledger persistence with atomic writes and advisory locking
//   - feed: remote entry listings (Atom, RSS 2.0)
//   - ytdlp, ytapi, deliver: external collaborator adapters
package vodsync
