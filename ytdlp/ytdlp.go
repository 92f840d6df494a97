// Package ytdlp adapts the yt-dlp executable as a metadata probe and as the
// full-channel enumerator used by the backfill path.
package ytdlp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"vodsync/engine"
	"vodsync/feed"
	"vodsync/internal/logx"
)

const (
	defaultPath    = "yt-dlp"
	defaultTimeout = 10 * time.Minute
)

// ErrNotInstalled indicates the yt-dlp binary was not found.
var ErrNotInstalled = errors.New("ytdlp: yt-dlp not installed")

// Client runs yt-dlp as a subprocess.
type Client struct {
	// Path is the path to the yt-dlp executable. Defaults to "yt-dlp".
	Path string
	// Timeout is the maximum time to wait per invocation. Defaults to 10
	// minutes.
	Timeout time.Duration
	Log     *logx.Logger
}

// NewClient creates a client with defaults.
func NewClient() *Client {
	return &Client{Path: defaultPath, Timeout: defaultTimeout}
}

// dumpInfo mirrors the subset of yt-dlp's -J output the adapter reads.
// Channel dumps nest one playlist per tab under entries when the channel has
// videos/live/shorts sections.
type dumpInfo struct {
	ID               string     `json:"id"`
	Title            string     `json:"title"`
	URL              string     `json:"url"`
	WebpageURL       string     `json:"webpage_url"`
	ViewCount        *int64     `json:"view_count"`
	LiveStatus       string     `json:"live_status"`
	Availability     string     `json:"availability"`
	ReleaseTimestamp *int64     `json:"release_timestamp"`
	UploadDate       string     `json:"upload_date"`
	Entries          []dumpInfo `json:"entries"`
}

// Probe fetches one video's metadata and maps it onto the probe contract:
// live/upcoming streams, access restriction, or normal availability, plus
// the publish time when yt-dlp carries one.
func (c *Client) Probe(ctx context.Context, link string) (*engine.ProbeResult, error) {
	info, stderr, err := c.dump(ctx, false, link)
	if err != nil {
		// An explicit restriction signal in stderr is a classification,
		// not a transient failure.
		if isRestrictedSignal(stderr) {
			return &engine.ProbeResult{Status: engine.StatusAccessRestricted}, nil
		}
		return nil, err
	}

	res := &engine.ProbeResult{Status: engine.StatusNormal}
	switch info.LiveStatus {
	case "is_upcoming":
		res.Status = engine.StatusUpcoming
	case "is_live", "post_live":
		res.Status = engine.StatusLive
	}
	if info.Availability == "needs_auth" {
		res.Status = engine.StatusAccessRestricted
	}

	if info.ReleaseTimestamp != nil {
		res.PublishedAt = time.Unix(*info.ReleaseTimestamp, 0).UTC()
	} else if info.UploadDate != "" {
		if t, err := time.Parse("20060102", info.UploadDate); err == nil {
			res.PublishedAt = t
		}
	}
	return res, nil
}

// ListSections enumerates the channel page. Channels with videos/live/shorts
// tabs nest one playlist per tab; channels without tabs list videos directly.
func (c *Client) ListSections(ctx context.Context, channelID string) ([]feed.Entry, error) {
	info, _, err := c.dump(ctx, true, "https://www.youtube.com/channel/"+channelID)
	if err != nil {
		return nil, err
	}

	var entries []feed.Entry
	for _, e := range info.Entries {
		if len(e.Entries) == 0 {
			entries = append(entries, toFeedEntry(e))
			continue
		}
		c.Log.Infof("found %d entries in %s", len(e.Entries), e.Title)
		for _, v := range e.Entries {
			entries = append(entries, toFeedEntry(v))
		}
	}
	return entries, nil
}

// ListPlaylists enumerates the channel's playlists tab and the videos inside
// each playlist. A channel without a playlists tab is an expected absence,
// reported as PlaylistsNotApplicable rather than an error.
func (c *Client) ListPlaylists(ctx context.Context, channelID string) (*engine.PlaylistResult, error) {
	info, stderr, err := c.dump(ctx, true, "https://www.youtube.com/channel/"+channelID+"/playlists")
	if err != nil {
		if strings.Contains(stderr, "does not have a playlists tab") {
			return &engine.PlaylistResult{Status: engine.PlaylistsNotApplicable}, nil
		}
		return nil, err
	}

	res := &engine.PlaylistResult{Status: engine.PlaylistsFound}
	for _, pl := range info.Entries {
		items, err := c.listPlaylistEntries(ctx, pl.URL)
		if err != nil {
			return nil, err
		}
		res.Entries = append(res.Entries, items...)
	}
	return res, nil
}

func (c *Client) listPlaylistEntries(ctx context.Context, playlistURL string) ([]feed.Entry, error) {
	info, _, err := c.dump(ctx, true, playlistURL)
	if err != nil {
		return nil, err
	}

	var entries []feed.Entry
	for _, e := range info.Entries {
		// Entries without a view count are unavailable (deleted, private).
		if e.ViewCount == nil || *e.ViewCount == 0 {
			c.Log.Warnf("skip unavailable video [%s]: %s", e.ID, e.Title)
			continue
		}
		entries = append(entries, toFeedEntry(e))
	}
	c.Log.Infof("found %d entries for playlist: %s", len(entries), info.Title)
	return entries, nil
}

// dump runs yt-dlp -J against url and parses the JSON document. flat selects
// --flat-playlist for listing runs; probes omit it to get full metadata.
func (c *Client) dump(ctx context.Context, flat bool, url string) (*dumpInfo, string, error) {
	args := []string{"-J", "--no-warnings"}
	if flat {
		args = append(args, "--flat-playlist")
	} else {
		args = append(args, "--no-playlist")
	}
	args = append(args, url)

	timeout := c.Timeout
	if timeout == 0 {
		timeout = defaultTimeout
	}
	cmdCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	path := c.Path
	if path == "" {
		path = defaultPath
	}
	cmd := exec.CommandContext(cmdCtx, path, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			return nil, "", ErrNotInstalled
		}
		if cmdCtx.Err() != nil {
			return nil, stderr.String(), fmt.Errorf("ytdlp: %s: %w", url, cmdCtx.Err())
		}
		return nil, stderr.String(), fmt.Errorf("ytdlp: %s: %w: %s", url, err, strings.TrimSpace(stderr.String()))
	}

	var info dumpInfo
	if err := json.Unmarshal(stdout.Bytes(), &info); err != nil {
		return nil, stderr.String(), fmt.Errorf("ytdlp: parse output for %s: %w", url, err)
	}
	return &info, stderr.String(), nil
}

func toFeedEntry(e dumpInfo) feed.Entry {
	link := e.URL
	if link == "" {
		link = e.WebpageURL
	}
	if link == "" && e.ID != "" {
		link = "https://www.youtube.com/watch?v=" + e.ID
	}
	return feed.Entry{Title: e.Title, Link: link}
}

// isRestrictedSignal reports whether stderr carries an explicit
// authentication-required message.
func isRestrictedSignal(stderr string) bool {
	for _, marker := range []string{
		"members-only",
		"Join this channel",
		"Private video",
		"Sign in to confirm your age",
	} {
		if strings.Contains(stderr, marker) {
			return true
		}
	}
	return false
}
