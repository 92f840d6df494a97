package ytapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"google.golang.org/api/option"
)

func TestVideoID(t *testing.T) {
	tests := []struct {
		link   string
		wantID string
		wantOK bool
	}{
		{"https://www.youtube.com/watch?v=dQw4w9WgXcQ", "dQw4w9WgXcQ", true},
		{"https://www.youtube.com/watch?v=dQw4w9WgXcQ&list=PL1&index=3", "dQw4w9WgXcQ", true},
		{"https://youtu.be/dQw4w9WgXcQ", "dQw4w9WgXcQ", true},
		{"https://www.youtube.com/shorts/abc123XYZ_-", "abc123XYZ_-", true},
		{"https://www.youtube.com/live/abc123XYZ_-", "abc123XYZ_-", true},
		{"https://www.youtube.com/embed/abc123XYZ_-", "abc123XYZ_-", true},
		{"https://www.youtube.com/shorts/abc123XYZ_-/extra", "abc123XYZ_-", true},
		{"https://www.youtube.com/channel/UCexample", "", false},
		{"https://www.bilibili.com/video/BV1xx411c7mD", "", false},
		{"://bad url", "", false},
		{"https://youtu.be/", "", false},
	}
	for _, tt := range tests {
		id, ok := VideoID(tt.link)
		if id != tt.wantID || ok != tt.wantOK {
			t.Errorf("VideoID(%q) = (%q, %v), want (%q, %v)", tt.link, id, ok, tt.wantID, tt.wantOK)
		}
	}
}

func TestPublishedAt(t *testing.T) {
	var gotIDs string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotIDs = strings.Join(r.URL.Query()["id"], ",")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"items": [
				{"id": "vid1", "snippet": {"publishedAt": "2024-03-01T12:00:00Z"}},
				{"id": "vid2", "snippet": {"publishedAt": "2023-06-15T08:30:00Z"}}
			]
		}`))
	}))
	defer srv.Close()

	client, err := NewPubDateClient(context.Background(), "",
		option.WithEndpoint(srv.URL),
		option.WithHTTPClient(srv.Client()),
	)
	if err != nil {
		t.Fatalf("NewPubDateClient() error = %v", err)
	}

	links := []string{
		"https://www.youtube.com/watch?v=vid1",
		"https://youtu.be/vid2",
		"https://www.youtube.com/watch?v=vid1", // duplicate, queried once
		"https://www.bilibili.com/video/BV1xx", // no extractable id, skipped
	}
	times, err := client.PublishedAt(context.Background(), links)
	if err != nil {
		t.Fatalf("PublishedAt() error = %v", err)
	}

	if gotIDs != "vid1,vid2" {
		t.Errorf("queried ids = %q, want %q", gotIDs, "vid1,vid2")
	}
	if len(times) != 2 {
		t.Fatalf("results = %d, want 2", len(times))
	}

	want1 := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	if got := times["https://www.youtube.com/watch?v=vid1"]; !got.Equal(want1) {
		t.Errorf("vid1 time = %v, want %v", got, want1)
	}
	want2 := time.Date(2023, 6, 15, 8, 30, 0, 0, time.UTC)
	if got := times["https://youtu.be/vid2"]; !got.Equal(want2) {
		t.Errorf("vid2 time = %v, want %v", got, want2)
	}
}

func TestPublishedAtEmptyInput(t *testing.T) {
	client, err := NewPubDateClient(context.Background(), "",
		option.WithEndpoint("http://127.0.0.1:0"),
		option.WithHTTPClient(http.DefaultClient),
	)
	if err != nil {
		t.Fatalf("NewPubDateClient() error = %v", err)
	}

	// No extractable ids means no API call at all.
	times, err := client.PublishedAt(context.Background(), []string{"https://example.com/x"})
	if err != nil {
		t.Fatalf("PublishedAt() error = %v", err)
	}
	if len(times) != 0 {
		t.Errorf("results = %d, want 0", len(times))
	}
}
