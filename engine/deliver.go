package engine

import (
	"context"
	"errors"
	"fmt"

	"vodsync/internal/logx"
	"vodsync/storage"
)

// ErrNoDeliveryTarget is returned when an eligible entry reaches the driver
// but the ledger has no delivery target configured.
var ErrNoDeliveryTarget = errors.New("engine: ledger has no delivery target")

// DeliverOptions control how the sink transmits one video.
type DeliverOptions struct {
	// IncludeAudio also relays the extracted audio track alongside the video.
	IncludeAudio bool
	// Collection treats the link as a collection rather than a single item.
	Collection bool
	// UseCookies authenticates the fetch with stored cookies.
	UseCookies bool
}

// Sink is the external delivery collaborator that actually transmits a video
// to its destination.
type Sink interface {
	Deliver(ctx context.Context, link, target string, opts DeliverOptions) error
}

// Outcome reports what the driver decided for one entry.
type Outcome struct {
	// Delivered means the entry is terminal: either the sink confirmed
	// delivery or the entry was excluded by policy.
	Delivered bool
	// Excluded means Delivered was set without invoking the sink.
	Excluded bool
}

// Driver classifies one ledger entry and, when eligible, invokes the
// delivery sink. A sink failure is a hard error: the entry's delivered flag
// stays false and the caller aborts the run, so the entry is retried from
// scratch on the next invocation.
type Driver struct {
	Classifier *Classifier
	Sink       Sink
	// Options are fixed per platform and passed through to the sink.
	Options DeliverOptions
	Log     *logx.Logger
}

// Process runs the classifier and drives delivery for one entry. It does not
// mutate the entry or persist anything; the caller flips the delivered flag
// and saves the ledger based on the outcome.
func (d *Driver) Process(ctx context.Context, entry *storage.Entry, led *storage.Ledger) (Outcome, error) {
	switch d.Classifier.Classify(ctx, entry.Link, entry.Title) {
	case Pending:
		return Outcome{}, nil
	case Excluded:
		return Outcome{Delivered: true, Excluded: true}, nil
	}

	if led.DeliveryTarget == nil {
		return Outcome{}, fmt.Errorf("%w: %s", ErrNoDeliveryTarget, led.ChannelID)
	}

	d.Log.Infof("delivering to %s: %s", *led.DeliveryTarget, entry.Title)
	if err := d.Sink.Deliver(ctx, entry.Link, *led.DeliveryTarget, d.Options); err != nil {
		return Outcome{}, fmt.Errorf("deliver %s: %w", entry.Link, err)
	}
	return Outcome{Delivered: true}, nil
}
