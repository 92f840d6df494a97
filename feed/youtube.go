package feed

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"

	"vodsync/internal/httpx"
	"vodsync/retry"
)

const youtubeFeedURLTemplate = "https://www.youtube.com/feeds/videos.xml?channel_id=%s"

// YouTubeSource lists a channel's recent videos via YouTube's Atom feed.
// The feed only carries the 15 most recent entries; full history goes through
// the backfill path instead.
type YouTubeSource struct {
	client      *httpx.Client
	RetryConfig retry.Config
}

// NewYouTubeSource creates an Atom feed source.
func NewYouTubeSource(client *httpx.Client) *YouTubeSource {
	return &YouTubeSource{
		client:      client,
		RetryConfig: retry.DefaultConfig(),
	}
}

// ListRecent fetches the channel's Atom feed and returns its entries in feed
// order (newest first). Transient HTTP failures are retried with backoff; a
// 404 is permanent.
func (s *YouTubeSource) ListRecent(ctx context.Context, channelID string) ([]Entry, error) {
	feedURL := fmt.Sprintf(youtubeFeedURLTemplate, channelID)

	var entries []Entry
	err := retry.Do(ctx, s.RetryConfig, nil, func(ctx context.Context) error {
		body, err := fetch(ctx, s.client, feedURL)
		if err != nil {
			return &SourceError{Source: "youtube", Channel: channelID, Err: err}
		}

		feed, err := parseAtomFeed(body)
		if err != nil {
			return retry.Permanent(&SourceError{Source: "youtube", Channel: channelID, Err: err})
		}

		entries = entries[:0]
		for _, item := range feed.Entries {
			link := item.Link.Href
			if link == "" && item.VideoID != "" {
				link = "https://www.youtube.com/watch?v=" + item.VideoID
			}
			entries = append(entries, Entry{
				Title:     item.Title,
				Link:      link,
				Published: item.Published,
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// fetch performs one GET and maps HTTP-level failures to feed sentinels.
// Shared by both feed sources.
func fetch(ctx context.Context, client *httpx.Client, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, retry.Permanent(err)
	}

	resp, err := client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ErrNetworkTimeout
		}
		return nil, err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, retry.Permanent(ErrChannelNotFound)
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, ErrRateLimited
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, resp.Status)
	}

	return io.ReadAll(resp.Body)
}

// atomFeed mirrors the YouTube Atom feed structure.
type atomFeed struct {
	XMLName xml.Name    `xml:"feed"`
	Title   string      `xml:"title"`
	Entries []atomEntry `xml:"entry"`
}

type atomEntry struct {
	ID        string   `xml:"id"`
	VideoID   string   `xml:"http://www.youtube.com/xml/schemas/2015 videoId"`
	ChannelID string   `xml:"http://www.youtube.com/xml/schemas/2015 channelId"`
	Title     string   `xml:"title"`
	Link      atomLink `xml:"link"`
	Published string   `xml:"published"`
	Updated   string   `xml:"updated"`
}

type atomLink struct {
	Href string `xml:"href,attr"`
}

func parseAtomFeed(data []byte) (*atomFeed, error) {
	var feed atomFeed
	if err := xml.Unmarshal(data, &feed); err != nil {
		return nil, fmt.Errorf("parse atom feed: %w", err)
	}
	return &feed, nil
}
