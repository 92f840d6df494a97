// Package ytapi resolves video publish times in bulk through the YouTube
// Data API. It is the fast enrichment path for backfill; without an API key
// the backfill degrades to per-video probing.
package ytapi

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"google.golang.org/api/option"
	youtube "google.golang.org/api/youtube/v3"
)

// maxIDsPerQuery is the API's limit on ids per videos.list call.
const maxIDsPerQuery = 50

// PubDateClient batches videos.list snippet queries.
type PubDateClient struct {
	svc *youtube.Service
}

// NewPubDateClient creates a client authenticated with an API key. Extra
// options (custom endpoint, HTTP client) are for tests.
func NewPubDateClient(ctx context.Context, apiKey string, opts ...option.ClientOption) (*PubDateClient, error) {
	if apiKey != "" {
		opts = append([]option.ClientOption{option.WithAPIKey(apiKey)}, opts...)
	}
	svc, err := youtube.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("ytapi: create service: %w", err)
	}
	return &PubDateClient{svc: svc}, nil
}

// PublishedAt resolves publish times for the given video links, keyed by
// link. Links whose video ID cannot be extracted, or that the API does not
// return, are absent from the result rather than an error.
func (c *PubDateClient) PublishedAt(ctx context.Context, links []string) (map[string]time.Time, error) {
	byID := make(map[string]string, len(links)) // video id -> link
	ids := make([]string, 0, len(links))
	for _, link := range links {
		id, ok := VideoID(link)
		if !ok {
			continue
		}
		if _, dup := byID[id]; dup {
			continue
		}
		byID[id] = link
		ids = append(ids, id)
	}

	out := make(map[string]time.Time, len(ids))
	for start := 0; start < len(ids); start += maxIDsPerQuery {
		end := start + maxIDsPerQuery
		if end > len(ids) {
			end = len(ids)
		}

		resp, err := c.svc.Videos.List([]string{"snippet"}).
			Id(ids[start:end]...).
			MaxResults(maxIDsPerQuery).
			Context(ctx).
			Do()
		if err != nil {
			return nil, fmt.Errorf("ytapi: videos.list: %w", err)
		}

		for _, item := range resp.Items {
			if item.Snippet == nil {
				continue
			}
			t, err := time.Parse(time.RFC3339, item.Snippet.PublishedAt)
			if err != nil {
				continue
			}
			out[byID[item.Id]] = t
		}
	}
	return out, nil
}

// VideoID extracts the video ID from the link forms YouTube uses: watch
// URLs, shorts, live, and youtu.be.
func VideoID(link string) (string, bool) {
	u, err := url.Parse(link)
	if err != nil {
		return "", false
	}

	if strings.HasSuffix(u.Host, "youtu.be") {
		id := strings.Trim(u.Path, "/")
		return id, id != ""
	}

	if v := u.Query().Get("v"); v != "" {
		return v, true
	}

	for _, prefix := range []string{"/shorts/", "/live/", "/embed/"} {
		if rest, ok := strings.CutPrefix(u.Path, prefix); ok {
			id := strings.TrimSuffix(rest, "/")
			if i := strings.IndexByte(id, '/'); i >= 0 {
				id = id[:i]
			}
			return id, id != ""
		}
	}
	return "", false
}
