package storage

// Ledger is the durable record of one channel: its identity, the delivery
// destination, and every entry that has ever been observed for it.
// Entries are ordered newest-first.
type Ledger struct {
	// ChannelID is the platform channel identifier. Immutable once set.
	ChannelID string `json:"channel_id"`
	// DeliveryTarget is the opaque destination passed to the delivery sink.
	// Nil until an operator sets it; preserved verbatim across every mutation.
	DeliveryTarget *string `json:"delivery_target"`
	// Entries is the ordered list of tracked videos, newest first.
	Entries []*Entry `json:"entries"`
}

// Entry is one video's tracked record.
type Entry struct {
	// Link is the video URL. It is the identity key: unique within a ledger
	// and the sole field used to correlate remote observations with stored
	// entries.
	Link string `json:"link"`
	// Title is descriptive only.
	Title string `json:"title"`
	// PublishedAt is the normalized, timezone-adjusted publish time in
	// RFC1123Z form. Empty when no timestamp could be resolved.
	PublishedAt string `json:"published_at,omitempty"`
	// Delivered is set once the entry has been relayed to the sink, or
	// terminally excluded from delivery. It never reverts to false except
	// for the backfill re-check of previously excluded entries.
	Delivered bool `json:"delivered"`
	// Excluded records that Delivered was set without invoking the sink
	// (access-restricted or filtered content). Distinguishes confirmed
	// delivery from policy exclusion.
	Excluded bool `json:"excluded,omitempty"`
}

// NewLedger returns an empty ledger for a channel: no delivery target, no
// entries.
func NewLedger(channelID string) *Ledger {
	return &Ledger{
		ChannelID: channelID,
		Entries:   []*Entry{},
	}
}

// Known returns the set of links already present in the ledger.
func (l *Ledger) Known() map[string]bool {
	known := make(map[string]bool, len(l.Entries))
	for _, e := range l.Entries {
		known[e.Link] = true
	}
	return known
}

// Find returns the entry with the given link, or nil.
func (l *Ledger) Find(link string) *Entry {
	for _, e := range l.Entries {
		if e.Link == link {
			return e
		}
	}
	return nil
}

// InsertFront prepends an entry. The reconciler inserts new entries
// oldest-first, so the list stays newest-first.
func (l *Ledger) InsertFront(e *Entry) {
	l.Entries = append([]*Entry{e}, l.Entries...)
}
