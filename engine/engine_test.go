package engine

import (
	"context"
	"io"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"vodsync/feed"
	"vodsync/internal/logx"
	"vodsync/storage"
)

func testLogger() *logx.Logger {
	return logx.NewWithWriter("test", logx.LevelError, io.Discard)
}

func newTestStore(t *testing.T) *storage.LedgerStore {
	t.Helper()
	store, err := storage.NewLedgerStore(filepath.Join(t.TempDir(), "ledger.json"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

// seedLedger persists a ledger with a delivery target and optional entries.
func seedLedger(t *testing.T, store *storage.LedgerStore, channelID, target string, entries ...*storage.Entry) {
	t.Helper()
	led := storage.NewLedger(channelID)
	if target != "" {
		led.DeliveryTarget = &target
	}
	led.Entries = append(led.Entries, entries...)
	require.NoError(t, store.Save(led))
}

type fakeSource struct {
	entries []feed.Entry
	err     error
	calls   int
}

func (f *fakeSource) ListRecent(ctx context.Context, channelID string) ([]feed.Entry, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.entries, nil
}

type fakeSink struct {
	delivered []string
	targets   []string
	failOn    map[string]error
}

func (f *fakeSink) Deliver(ctx context.Context, link, target string, opts DeliverOptions) error {
	if err := f.failOn[link]; err != nil {
		return err
	}
	f.delivered = append(f.delivered, link)
	f.targets = append(f.targets, target)
	return nil
}

type fakeProber struct {
	results map[string]*ProbeResult
	errs    map[string]error
	probes  []string
}

func (f *fakeProber) Probe(ctx context.Context, link string) (*ProbeResult, error) {
	f.probes = append(f.probes, link)
	if err := f.errs[link]; err != nil {
		return nil, err
	}
	if res, ok := f.results[link]; ok {
		return res, nil
	}
	return &ProbeResult{Status: StatusNormal}, nil
}

type fakeSnapshot struct {
	entries []feed.Entry
	err     error
}

func (f *fakeSnapshot) Snapshot(ctx context.Context, channelID string) ([]feed.Entry, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.entries, nil
}

func newTestDriver(sink Sink, prober Prober) *Driver {
	return &Driver{
		Classifier: &Classifier{
			Prober:        prober,
			IncludeShorts: true,
			Log:           testLogger(),
		},
		Sink: sink,
		Log:  testLogger(),
	}
}
