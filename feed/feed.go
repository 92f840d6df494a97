// Package feed fetches the currently visible video listings for a channel.
// It is a thin transport adapter: entries come back in the order the remote
// source returns them (newest first for both platforms) and timestamps are
// passed through raw for the core to normalize.
package feed

import (
	"context"
	"errors"
)

// Sentinel errors for listing operations.
var (
	ErrChannelNotFound = errors.New("feed: channel not found")
	ErrRateLimited     = errors.New("feed: rate limited")
	ErrNetworkTimeout  = errors.New("feed: network timeout")
)

// Entry is one remote video observation.
type Entry struct {
	// Title is the video title.
	Title string
	// Link is the stable, globally unique video URL.
	Link string
	// Published is the raw publish timestamp as the source reported it.
	// Empty when the source carries no timestamp.
	Published string
}

// Source yields the recently visible entries for a channel, newest first.
type Source interface {
	ListRecent(ctx context.Context, channelID string) ([]Entry, error)
}

// FullSource yields the complete visible history for a channel, used by the
// backfill path. Not every source supports full enumeration.
type FullSource interface {
	ListAll(ctx context.Context, channelID string) ([]Entry, error)
}

// SourceError wraps listing errors with context about what failed.
// Use errors.As() to extract it:
//
//	var srcErr *feed.SourceError
//	if errors.As(err, &srcErr) {
//		fmt.Printf("listing %s failed: %v\n", srcErr.Channel, srcErr.Err)
//	}
type SourceError struct {
	// Source indicates which source produced the error ("youtube", "bilibili").
	Source string
	// Channel is the channel ID that was being listed.
	Channel string
	// Err is the underlying error.
	Err error
}

func (e *SourceError) Error() string {
	return "feed: " + e.Source + " listing " + e.Channel + ": " + e.Err.Error()
}

func (e *SourceError) Unwrap() error { return e.Err }
