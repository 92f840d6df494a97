package feed

import (
	"context"
	"encoding/xml"
	"fmt"
	"strings"

	"vodsync/internal/httpx"
	"vodsync/retry"
)

// DefaultRSSHubURL is the public RSSHub instance used when no override is
// configured.
const DefaultRSSHubURL = "https://rsshub.app"

// BilibiliSource lists a user's videos through an RSSHub instance.
// The recent route returns the latest uploads; the video-all route enumerates
// the complete history and backs the backfill path.
type BilibiliSource struct {
	client      *httpx.Client
	baseURL     string
	RetryConfig retry.Config
}

// NewBilibiliSource creates a source against the given RSSHub base URL.
// An empty baseURL selects the public instance.
func NewBilibiliSource(client *httpx.Client, baseURL string) *BilibiliSource {
	if baseURL == "" {
		baseURL = DefaultRSSHubURL
	}
	return &BilibiliSource{
		client:      client,
		baseURL:     strings.TrimRight(baseURL, "/"),
		RetryConfig: retry.DefaultConfig(),
	}
}

// ListRecent fetches the user's latest uploads, newest first.
func (s *BilibiliSource) ListRecent(ctx context.Context, uid string) ([]Entry, error) {
	return s.list(ctx, uid, fmt.Sprintf("%s/bilibili/user/video/%s", s.baseURL, uid))
}

// ListAll fetches the user's complete upload history, newest first.
func (s *BilibiliSource) ListAll(ctx context.Context, uid string) ([]Entry, error) {
	return s.list(ctx, uid, fmt.Sprintf("%s/bilibili/user/video-all/%s", s.baseURL, uid))
}

func (s *BilibiliSource) list(ctx context.Context, uid, url string) ([]Entry, error) {
	var entries []Entry
	err := retry.Do(ctx, s.RetryConfig, nil, func(ctx context.Context) error {
		body, err := fetch(ctx, s.client, url)
		if err != nil {
			return &SourceError{Source: "bilibili", Channel: uid, Err: err}
		}

		feed, err := parseRSSFeed(body)
		if err != nil {
			return retry.Permanent(&SourceError{Source: "bilibili", Channel: uid, Err: err})
		}

		entries = entries[:0]
		for _, item := range feed.Channel.Items {
			entries = append(entries, Entry{
				Title:     item.Title,
				Link:      item.Link,
				Published: item.PubDate,
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// rssFeed mirrors the RSS 2.0 structure RSSHub produces.
type rssFeed struct {
	XMLName xml.Name   `xml:"rss"`
	Channel rssChannel `xml:"channel"`
}

type rssChannel struct {
	Title string    `xml:"title"`
	Items []rssItem `xml:"item"`
}

type rssItem struct {
	Title   string `xml:"title"`
	Link    string `xml:"link"`
	PubDate string `xml:"pubDate"`
}

func parseRSSFeed(data []byte) (*rssFeed, error) {
	var feed rssFeed
	if err := xml.Unmarshal(data, &feed); err != nil {
		return nil, fmt.Errorf("parse rss feed: %w", err)
	}
	return &feed, nil
}
