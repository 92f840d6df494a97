package ytdlp

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"vodsync/engine"
	"vodsync/internal/logx"
)

// writeStub installs a shell script standing in for the yt-dlp binary.
// Listing and probe invocations pass the URL as the fourth argument.
func writeStub(t *testing.T, script string) *Client {
	t.Helper()
	path := filepath.Join(t.TempDir(), "yt-dlp-stub")
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+script), 0755); err != nil {
		t.Fatal(err)
	}
	return &Client{
		Path:    path,
		Timeout: 10 * time.Second,
		Log:     logx.NewWithWriter("test", logx.LevelError, io.Discard),
	}
}

func stubJSON(body string) string {
	return "cat <<'EOF'\n" + body + "\nEOF\n"
}

func TestProbeStatusMapping(t *testing.T) {
	tests := []struct {
		name string
		json string
		want engine.ProbeStatus
	}{
		{
			"published video",
			`{"id":"abc","title":"t","live_status":"not_live","availability":"public"}`,
			engine.StatusNormal,
		},
		{
			"upcoming premiere",
			`{"id":"abc","title":"t","live_status":"is_upcoming"}`,
			engine.StatusUpcoming,
		},
		{
			"currently live",
			`{"id":"abc","title":"t","live_status":"is_live"}`,
			engine.StatusLive,
		},
		{
			"stream ended but not processed",
			`{"id":"abc","title":"t","live_status":"post_live"}`,
			engine.StatusLive,
		},
		{
			"members only",
			`{"id":"abc","title":"t","availability":"needs_auth"}`,
			engine.StatusAccessRestricted,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := writeStub(t, stubJSON(tt.json))
			res, err := c.Probe(context.Background(), "https://www.youtube.com/watch?v=abc")
			if err != nil {
				t.Fatalf("Probe() error = %v", err)
			}
			if res.Status != tt.want {
				t.Errorf("Status = %q, want %q", res.Status, tt.want)
			}
		})
	}
}

func TestProbePublishTime(t *testing.T) {
	// release_timestamp wins over upload_date.
	c := writeStub(t, stubJSON(`{"id":"abc","release_timestamp":1709294400,"upload_date":"20240201"}`))
	res, err := c.Probe(context.Background(), "https://www.youtube.com/watch?v=abc")
	if err != nil {
		t.Fatalf("Probe() error = %v", err)
	}
	want := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	if !res.PublishedAt.Equal(want) {
		t.Errorf("PublishedAt = %v, want %v", res.PublishedAt, want)
	}

	// Date-only fallback.
	c = writeStub(t, stubJSON(`{"id":"abc","upload_date":"20240201"}`))
	res, err = c.Probe(context.Background(), "https://www.youtube.com/watch?v=abc")
	if err != nil {
		t.Fatalf("Probe() error = %v", err)
	}
	want = time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	if !res.PublishedAt.Equal(want) {
		t.Errorf("PublishedAt = %v, want %v", res.PublishedAt, want)
	}
}

func TestProbeRestrictedStderrIsClassification(t *testing.T) {
	c := writeStub(t, "echo 'ERROR: Join this channel to get access to members-only content' >&2\nexit 1\n")
	res, err := c.Probe(context.Background(), "https://www.youtube.com/watch?v=abc")
	if err != nil {
		t.Fatalf("Probe() error = %v, want restricted classification", err)
	}
	if res.Status != engine.StatusAccessRestricted {
		t.Errorf("Status = %q, want %q", res.Status, engine.StatusAccessRestricted)
	}
}

func TestProbeGenericFailure(t *testing.T) {
	c := writeStub(t, "echo 'ERROR: Unable to download webpage' >&2\nexit 1\n")
	_, err := c.Probe(context.Background(), "https://www.youtube.com/watch?v=abc")
	if err == nil {
		t.Fatal("Probe() error = nil, want failure")
	}
}

func TestProbeNotInstalled(t *testing.T) {
	c := &Client{Path: "definitely-not-a-real-binary-a8f2k"}
	_, err := c.Probe(context.Background(), "https://www.youtube.com/watch?v=abc")
	if !errors.Is(err, ErrNotInstalled) {
		t.Errorf("Probe() error = %v, want ErrNotInstalled", err)
	}
}

func TestListSectionsFlattensTabs(t *testing.T) {
	c := writeStub(t, stubJSON(`{
		"id": "UCexample",
		"title": "Example Channel",
		"entries": [
			{
				"title": "Example Channel - Videos",
				"entries": [
					{"id": "vid1", "title": "First", "url": "https://www.youtube.com/watch?v=vid1", "view_count": 10},
					{"id": "vid2", "title": "Second", "url": "https://www.youtube.com/watch?v=vid2", "view_count": 20}
				]
			},
			{
				"title": "Example Channel - Live",
				"entries": [
					{"id": "vid3", "title": "Replay", "url": "https://www.youtube.com/watch?v=vid3", "view_count": 5}
				]
			}
		]
	}`))

	entries, err := c.ListSections(context.Background(), "UCexample")
	if err != nil {
		t.Fatalf("ListSections() error = %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("entries = %d, want 3", len(entries))
	}
	if entries[0].Link != "https://www.youtube.com/watch?v=vid1" {
		t.Errorf("entries[0].Link = %q", entries[0].Link)
	}
	if entries[2].Title != "Replay" {
		t.Errorf("entries[2].Title = %q", entries[2].Title)
	}
}

func TestListSectionsFlatChannel(t *testing.T) {
	// Channels without tab sections list videos directly.
	c := writeStub(t, stubJSON(`{
		"id": "UCexample",
		"entries": [
			{"id": "vid1", "title": "Only", "view_count": 1}
		]
	}`))

	entries, err := c.ListSections(context.Background(), "UCexample")
	if err != nil {
		t.Fatalf("ListSections() error = %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("entries = %d, want 1", len(entries))
	}
	// Link is rebuilt from the ID when the dump carries no URL.
	if entries[0].Link != "https://www.youtube.com/watch?v=vid1" {
		t.Errorf("Link = %q", entries[0].Link)
	}
}

func TestListPlaylistsSkipsUnavailableVideos(t *testing.T) {
	c := writeStub(t, `case "$4" in
*/playlists)
cat <<'EOF'
{"id": "UCexample-playlists", "entries": [{"id": "PL1", "title": "Favorites", "url": "https://www.youtube.com/playlist?list=PL1"}]}
EOF
;;
*)
cat <<'EOF'
{"id": "PL1", "title": "Favorites", "entries": [
	{"id": "vid1", "title": "Kept", "url": "https://www.youtube.com/watch?v=vid1", "view_count": 42},
	{"id": "vid2", "title": "Deleted", "url": "https://www.youtube.com/watch?v=vid2", "view_count": 0},
	{"id": "vid3", "title": "Private", "url": "https://www.youtube.com/watch?v=vid3"}
]}
EOF
;;
esac
`)

	res, err := c.ListPlaylists(context.Background(), "UCexample")
	if err != nil {
		t.Fatalf("ListPlaylists() error = %v", err)
	}
	if res.Status != engine.PlaylistsFound {
		t.Fatalf("Status = %v, want PlaylistsFound", res.Status)
	}
	if len(res.Entries) != 1 {
		t.Fatalf("entries = %d, want 1 (unavailable videos skipped)", len(res.Entries))
	}
	if res.Entries[0].Title != "Kept" {
		t.Errorf("entries[0].Title = %q", res.Entries[0].Title)
	}
}

func TestListPlaylistsNotApplicable(t *testing.T) {
	c := writeStub(t, "echo 'ERROR: This channel does not have a playlists tab' >&2\nexit 1\n")
	res, err := c.ListPlaylists(context.Background(), "UCexample")
	if err != nil {
		t.Fatalf("ListPlaylists() error = %v", err)
	}
	if res.Status != engine.PlaylistsNotApplicable {
		t.Errorf("Status = %v, want PlaylistsNotApplicable", res.Status)
	}
}

func TestIsRestrictedSignal(t *testing.T) {
	tests := []struct {
		stderr string
		want   bool
	}{
		{"ERROR: Join this channel to get access", true},
		{"ERROR: members-only content", true},
		{"ERROR: Private video. Sign in if you've been granted access", true},
		{"ERROR: Sign in to confirm your age", true},
		{"ERROR: Unable to download webpage", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := isRestrictedSignal(tt.stderr); got != tt.want {
			t.Errorf("isRestrictedSignal(%q) = %v, want %v", tt.stderr, got, tt.want)
		}
	}
}
