package engine

import (
	"context"
	"strings"
	"time"

	"vodsync/internal/logx"
)

// Classification is the delivery eligibility of a remote entry.
type Classification int

const (
	// Eligible entries proceed to delivery.
	Eligible Classification = iota
	// Excluded entries are terminal: recorded as delivered without ever
	// invoking the sink.
	Excluded
	// Pending entries are not in final form yet (live, upcoming, or the
	// probe failed transiently) and are re-classified on a later run.
	Pending
)

func (c Classification) String() string {
	switch c {
	case Eligible:
		return "eligible"
	case Excluded:
		return "excluded"
	case Pending:
		return "pending"
	}
	return "unknown"
}

// ProbeStatus is the availability state a metadata probe reports for a video.
type ProbeStatus string

const (
	// StatusNormal means the video is publicly available in final form.
	StatusNormal ProbeStatus = "normal"
	// StatusAccessRestricted means the video requires authentication
	// (members-only, private). An explicit signal, not a transient failure.
	StatusAccessRestricted ProbeStatus = "access_restricted"
	// StatusLive means the video is currently broadcasting.
	StatusLive ProbeStatus = "live"
	// StatusUpcoming means the video is scheduled but has not started.
	StatusUpcoming ProbeStatus = "upcoming"
)

// ProbeResult is what a metadata probe learned about one video.
type ProbeResult struct {
	Status ProbeStatus
	// PublishedAt is the publish time when the probe carried one; zero
	// otherwise.
	PublishedAt time.Time
}

// Prober is the best-effort metadata probe collaborator.
type Prober interface {
	Probe(ctx context.Context, link string) (*ProbeResult, error)
}

// Classifier decides whether a remote entry is eligible for delivery,
// excluded by policy, or not yet final.
type Classifier struct {
	// Prober probes video availability. Nil means entries are eligible
	// without probing (platforms without a probe collaborator).
	Prober Prober
	// IncludeShorts controls whether short-form clips are delivered.
	// When false they are excluded.
	IncludeShorts bool
	Log           *logx.Logger
}

// Classify classifies one entry. A transient probe failure yields Pending so
// the entry is retried on the next run; only an explicit restriction signal
// yields Excluded.
func (c *Classifier) Classify(ctx context.Context, link, title string) Classification {
	if !c.IncludeShorts && IsShortForm(link) {
		c.Log.Warnf("skip short-form video: %s", title)
		return Excluded
	}

	if c.Prober == nil {
		return Eligible
	}

	res, err := c.Prober.Probe(ctx, link)
	if err != nil {
		c.Log.Warnf("probe failed, will retry next run: %s: %v", title, err)
		return Pending
	}

	switch res.Status {
	case StatusLive, StatusUpcoming:
		c.Log.Warnf("skip not finished video: %s", title)
		return Pending
	case StatusAccessRestricted:
		c.Log.Warnf("skip restricted video: %s", title)
		return Excluded
	}

	c.Log.Debugf("video eligible for delivery: %s", title)
	return Eligible
}

// IsShortForm reports whether a link points at short-form content.
func IsShortForm(link string) bool {
	return strings.Contains(link, "/shorts/")
}
