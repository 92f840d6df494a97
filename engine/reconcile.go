// Package engine implements the reconciliation and crash-safe sync core:
// merging observed remote entries into the per-channel ledger, classifying
// eligibility, and driving idempotent, restart-safe delivery.
//
// The ordering contract is deliberate: remote entries are processed
// oldest-to-newest and inserted at the front of the ledger, so the ledger
// stays newest-first and a crash mid-batch leaves exactly the oldest entries
// of the batch persisted. Every ledger mutation is saved before the next
// suspending call begins; the saved file is the sole recovery mechanism.
package engine

import (
	"context"
	"time"

	"github.com/google/uuid"

	"vodsync/feed"
	"vodsync/internal/logx"
	"vodsync/storage"
)

// Reconciler runs one incremental sync invocation for a channel: drain the
// undelivered backlog, then merge and deliver newly observed remote entries.
type Reconciler struct {
	Store  *storage.LedgerStore
	Source feed.Source
	Driver *Driver
	// Location adjusts normalized timestamps. Nil means UTC.
	Location *time.Location
	Log      *logx.Logger
}

// Run executes one reconciliation. It is idempotent: a second run with an
// unchanged remote listing is a no-op. A hard failure (listing fetch, sink)
// aborts the run; entries persisted before the failure stand and are picked
// up by the next invocation.
func (r *Reconciler) Run(ctx context.Context, channelID string) error {
	runID := uuid.NewString()[:8]
	r.Log.Debugf("run %s: reconciling channel %s", runID, channelID)

	led, err := r.Store.Load(channelID)
	if err != nil {
		return err
	}

	// Backlog first: every stored, not-yet-delivered entry is attempted
	// before new discovery is merged in.
	var drained int
	for _, entry := range led.Entries {
		if entry.Delivered {
			continue
		}
		r.Log.Infof("process unfinished video: [%s] %s", entry.Link, entry.Title)
		out, err := r.Driver.Process(ctx, entry, led)
		if err != nil {
			return err
		}
		if out.Delivered {
			entry.Delivered = true
			entry.Excluded = out.Excluded
			if err := r.Store.Save(led); err != nil {
				return err
			}
			drained++
		}
	}

	remote, err := r.Source.ListRecent(ctx, channelID)
	if err != nil {
		return err
	}

	known := led.Known()
	var added int
	// Oldest to newest, reversing the feed's newest-first order.
	for i := len(remote) - 1; i >= 0; i-- {
		obs := remote[i]
		if known[obs.Link] {
			r.Log.Debugf("skip video in ledger: %s", obs.Title)
			continue
		}
		r.Log.Infof("new video found: [%s] %s", obs.Link, obs.Title)

		entry := &storage.Entry{
			Link:        obs.Link,
			Title:       obs.Title,
			PublishedAt: NormalizeTimestamp(obs.Published, r.Location),
		}
		led.InsertFront(entry)
		known[obs.Link] = true
		// Persist "observed but not yet delivered" before the sink call:
		// a crash from here on leaves the entry as a ledger row.
		if err := r.Store.Save(led); err != nil {
			return err
		}
		added++

		out, err := r.Driver.Process(ctx, entry, led)
		if err != nil {
			return err
		}
		if out.Delivered {
			entry.Delivered = true
			entry.Excluded = out.Excluded
			if err := r.Store.Save(led); err != nil {
				return err
			}
		}
	}

	r.Log.Infof("run %s complete: %d backlog processed, %d new", runID, drained, added)
	return nil
}
