package engine

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"vodsync/feed"
	"vodsync/internal/logx"
	"vodsync/storage"
)

// PlaylistStatus is the tri-state outcome of enumerating a channel's
// playlists tab.
type PlaylistStatus int

const (
	// PlaylistsFound means the channel has playlists and they were listed.
	PlaylistsFound PlaylistStatus = iota
	// PlaylistsNotApplicable means the channel has no playlists tab. This is
	// an expected absence, not an error.
	PlaylistsNotApplicable
)

// PlaylistResult carries the playlists-tab enumeration outcome.
type PlaylistResult struct {
	Status  PlaylistStatus
	Entries []feed.Entry
}

// ChannelEnumerator lists the complete visible content of a channel in
// pieces: the tab sections (uploads, live replays, shorts) and the curated
// playlists.
type ChannelEnumerator interface {
	ListSections(ctx context.Context, channelID string) ([]feed.Entry, error)
	ListPlaylists(ctx context.Context, channelID string) (*PlaylistResult, error)
}

// Snapshotter produces the complete current remote listing for a channel.
type Snapshotter interface {
	Snapshot(ctx context.Context, channelID string) ([]feed.Entry, error)
}

// NewChannelSnapshot builds a Snapshotter that unions an enumerator's
// sections and playlists, de-duplicated by link in discovery order.
func NewChannelSnapshot(enum ChannelEnumerator, log *logx.Logger) Snapshotter {
	return &channelSnapshot{enum: enum, log: log}
}

type channelSnapshot struct {
	enum ChannelEnumerator
	log  *logx.Logger
}

func (s *channelSnapshot) Snapshot(ctx context.Context, channelID string) ([]feed.Entry, error) {
	sections, err := s.enum.ListSections(ctx, channelID)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool, len(sections))
	out := make([]feed.Entry, 0, len(sections))
	for _, e := range sections {
		if seen[e.Link] {
			continue
		}
		seen[e.Link] = true
		out = append(out, e)
	}
	s.log.Infof("found %d section entries for channel %s", len(out), channelID)

	pls, err := s.enum.ListPlaylists(ctx, channelID)
	if err != nil {
		return nil, err
	}
	if pls.Status == PlaylistsNotApplicable {
		s.log.Warnf("channel %s has no playlists, skipping", channelID)
		return out, nil
	}
	for _, e := range pls.Entries {
		if seen[e.Link] {
			continue
		}
		seen[e.Link] = true
		out = append(out, e)
	}
	return out, nil
}

// NewFullSourceSnapshot adapts a feed.FullSource into a Snapshotter for
// platforms whose feed already enumerates the complete history.
func NewFullSourceSnapshot(src feed.FullSource) Snapshotter {
	return fullSourceSnapshot{src: src}
}

type fullSourceSnapshot struct {
	src feed.FullSource
}

func (s fullSourceSnapshot) Snapshot(ctx context.Context, channelID string) ([]feed.Entry, error) {
	return s.src.ListAll(ctx, channelID)
}

// PubDateLookup resolves publish times for a batch of links. The fast
// enrichment path for platforms with an API.
type PubDateLookup interface {
	PublishedAt(ctx context.Context, links []string) (map[string]time.Time, error)
}

// Backfill rebuilds a channel's full entry list from a complete remote
// snapshot, re-attaching prior delivery status by link. It never invokes the
// delivery driver; it only repairs or seeds the ledger.
type Backfill struct {
	Store    *storage.LedgerStore
	Snapshot Snapshotter
	// PubDates is the fast timestamp source; nil when not configured.
	PubDates PubDateLookup
	// Prober is the slow per-item fallback for timestamp enrichment. Probing
	// also re-checks availability: restricted items are marked excluded, and
	// a previously excluded item that now probes normal becomes deliverable
	// again.
	Prober Prober
	// IncludeShorts keeps short-form clips in the rebuilt ledger.
	IncludeShorts bool
	// ResolvePubdate enables timestamp enrichment and newest-first sorting.
	ResolvePubdate bool
	// Target seeds the delivery target on a fresh ledger. An existing target
	// is always preserved verbatim.
	Target   *string
	Location *time.Location
	Log      *logx.Logger
}

// backfillItem is one snapshot entry being assembled into a ledger row.
type backfillItem struct {
	title     string
	link      string
	raw       string    // timestamp as the source reported it
	resolved  time.Time // enriched publish time; zero when unresolved
	delivered bool
	excluded  bool
	probed    bool // availability was freshly checked this run
}

// Run fetches the snapshot, optionally enriches timestamps, carries forward
// prior delivery flags, and replaces the ledger's entries wholesale with a
// single save at the end.
func (b *Backfill) Run(ctx context.Context, channelID string) error {
	runID := uuid.NewString()[:8]
	b.Log.Debugf("run %s: backfilling channel %s", runID, channelID)

	prior, err := b.Store.Load(channelID)
	if err != nil {
		return err
	}

	snap, err := b.Snapshot.Snapshot(ctx, channelID)
	if err != nil {
		return err
	}

	// De-duplicate by link here rather than trusting the snapshot source:
	// links are the ledger's identity key and must stay unique no matter
	// what the remote listing repeats.
	seen := make(map[string]bool, len(snap))
	items := make([]*backfillItem, 0, len(snap))
	for _, e := range snap {
		if seen[e.Link] {
			b.Log.Debugf("skip duplicate snapshot entry: %s", e.Title)
			continue
		}
		seen[e.Link] = true
		if !b.IncludeShorts && IsShortForm(e.Link) {
			b.Log.Warnf("skip short-form video: %s", e.Title)
			continue
		}
		items = append(items, &backfillItem{title: e.Title, link: e.Link, raw: e.Published})
	}

	if b.ResolvePubdate {
		if err := b.enrich(ctx, items); err != nil {
			return err
		}
		// Newest first; unresolved timestamps sort last, never dropped.
		sort.SliceStable(items, func(i, j int) bool {
			ti, tj := items[i].resolved, items[j].resolved
			if tj.IsZero() {
				return !ti.IsZero()
			}
			if ti.IsZero() {
				return false
			}
			return ti.After(tj)
		})
	}

	// Re-attach prior delivery status by link. A freshly excluded item stays
	// excluded; a previously excluded item that now probes normal is
	// deliberately left not-delivered so it gets another delivery attempt.
	for _, it := range items {
		prev := prior.Find(it.link)
		if prev == nil || it.excluded {
			continue
		}
		if it.probed && prev.Excluded {
			b.Log.Infof("previously excluded video now available, will retry: %s", it.title)
			continue
		}
		it.delivered = prev.Delivered
		it.excluded = prev.Excluded
	}

	entries := make([]*storage.Entry, 0, len(items))
	for _, it := range items {
		published := NormalizeTimestamp(it.raw, b.Location)
		if !it.resolved.IsZero() {
			published = FormatLedgerTime(it.resolved, b.Location)
		}
		entries = append(entries, &storage.Entry{
			Link:        it.link,
			Title:       it.title,
			PublishedAt: published,
			Delivered:   it.delivered,
			Excluded:    it.excluded,
		})
	}

	prior.Entries = entries
	if prior.DeliveryTarget == nil && b.Target != nil {
		prior.DeliveryTarget = b.Target
	}

	b.Log.Infof("run %s: saving %d entries for channel %s", runID, len(entries), channelID)
	return b.Store.Save(prior)
}

// enrich resolves publish times, preferring the batch lookup and degrading
// to the slow per-item probe.
func (b *Backfill) enrich(ctx context.Context, items []*backfillItem) error {
	if b.PubDates != nil {
		links := make([]string, len(items))
		for i, it := range items {
			links[i] = it.link
		}
		b.Log.Infof("resolving publish times via batch lookup for %d videos", len(items))
		times, err := b.PubDates.PublishedAt(ctx, links)
		if err != nil {
			return err
		}
		for _, it := range items {
			if t, ok := times[it.link]; ok {
				it.resolved = t
			}
		}
		return nil
	}

	if b.Prober == nil {
		return nil
	}
	b.Log.Warnf("resolving publish times via per-video probe, this is slow")
	for _, it := range items {
		res, err := b.Prober.Probe(ctx, it.link)
		if err != nil {
			b.Log.Warnf("probe failed for %s: %v", it.link, err)
			continue
		}
		it.probed = true
		if !res.PublishedAt.IsZero() {
			it.resolved = res.PublishedAt
		}
		if res.Status == StatusAccessRestricted {
			b.Log.Warnf("mark restricted video as excluded: %s", it.title)
			it.delivered = true
			it.excluded = true
		}
	}
	return nil
}
