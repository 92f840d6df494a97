package engine

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyWithoutProber(t *testing.T) {
	c := &Classifier{IncludeShorts: true, Log: testLogger()}
	assert.Equal(t, Eligible, c.Classify(context.Background(), "https://example.com/a", "a"))
}

func TestClassifyShortForm(t *testing.T) {
	link := "https://www.youtube.com/shorts/abc123"

	c := &Classifier{IncludeShorts: false, Log: testLogger()}
	assert.Equal(t, Excluded, c.Classify(context.Background(), link, "clip"))

	c.IncludeShorts = true
	assert.Equal(t, Eligible, c.Classify(context.Background(), link, "clip"))
}

func TestClassifyProbeStatuses(t *testing.T) {
	tests := []struct {
		name   string
		status ProbeStatus
		want   Classification
	}{
		{"normal video is eligible", StatusNormal, Eligible},
		{"live broadcast waits", StatusLive, Pending},
		{"upcoming premiere waits", StatusUpcoming, Pending},
		{"restricted video is excluded", StatusAccessRestricted, Excluded},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &Classifier{
				Prober: &fakeProber{results: map[string]*ProbeResult{
					"https://example.com/v": {Status: tt.status},
				}},
				IncludeShorts: true,
				Log:           testLogger(),
			}
			assert.Equal(t, tt.want, c.Classify(context.Background(), "https://example.com/v", "v"))
		})
	}
}

func TestClassifyProbeFailureIsPending(t *testing.T) {
	c := &Classifier{
		Prober: &fakeProber{errs: map[string]error{
			"https://example.com/v": errors.New("connection reset"),
		}},
		IncludeShorts: true,
		Log:           testLogger(),
	}
	assert.Equal(t, Pending, c.Classify(context.Background(), "https://example.com/v", "v"))
}

func TestClassificationString(t *testing.T) {
	assert.Equal(t, "eligible", Eligible.String())
	assert.Equal(t, "excluded", Excluded.String())
	assert.Equal(t, "pending", Pending.String())
}
