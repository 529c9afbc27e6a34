package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/couchcryptid/storm-track-ingest/internal/atcf"
	"github.com/couchcryptid/storm-track-ingest/internal/observability"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testDeck = "AL, 12, 2005082818,   , BEST,   0, 257N,  877W, 145,  909, HU,  34, NEQ,  200,  200,  150,  175\n" +
	"AL, 12, 2005082818,   , BEST,   0, 257N,  877W, 145,  909, HU,  50, NEQ,  120,  120,   75,  100\n" +
	"AL, 12, 2005082900,   , OFCL,  12, 285N,  892W, 125,    0, XX,  34, NEQ,  180,  180,  120,  150\n"

// deck with a blank isotach on the second line
const malformedDeck = "AL, 12, 2005082818,   , BEST,   0, 257N,  877W, 145,  909, HU,  34, NEQ,  200,  200,  150,  175\n" +
	"AL, 12, 2005082900,   , BEST,   0, 285N,  892W, 125,  902, HU,    , NEQ,  180,  180,  120,  150\n"

type fakeFetcher struct {
	mu    sync.Mutex
	calls int
	// errs are returned in order; once exhausted, data is returned.
	errs []error
	data []byte
}

func (f *fakeFetcher) Fetch(_ context.Context, _ string, _ atcf.FileDeck, _ atcf.Mode) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if len(f.errs) > 0 {
		err := f.errs[0]
		f.errs = f.errs[1:]
		return nil, err
	}
	return f.data, nil
}

func (f *fakeFetcher) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type fakeLoader struct {
	mu      sync.Mutex
	batches map[string]atcf.Table
	err     error
}

func newFakeLoader() *fakeLoader {
	return &fakeLoader{batches: make(map[string]atcf.Table)}
}

func (l *fakeLoader) LoadBatch(_ context.Context, stormID string, records atcf.Table) error {
	if l.err != nil {
		return l.err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.batches[stormID] = records
	return nil
}

func newTestPipeline(f Fetcher, loaders []Loader, storms []StormRequest, recordTypes []string) *Pipeline {
	return New(f, loaders, storms, recordTypes, time.Hour, slog.Default(), observability.NewMetricsForTesting())
}

func katrinaRequest() StormRequest {
	return StormRequest{ID: "AL122005", Deck: atcf.DeckBest, Mode: atcf.ModeHistorical}
}

func TestIngestStormLoadsDecodedRecords(t *testing.T) {
	fetcher := &fakeFetcher{data: []byte(testDeck)}
	loader := newFakeLoader()
	p := newTestPipeline(fetcher, []Loader{loader}, []StormRequest{katrinaRequest()}, nil)

	err := p.IngestStorm(context.Background(), katrinaRequest())
	require.NoError(t, err)

	track := loader.batches["AL122005"]
	require.Len(t, track, 3)
	assert.Equal(t, atcf.RecordTypeBest, track[0].RecordType)
	assert.Equal(t, 34, track[0].Isotach)
	assert.Equal(t, 25.7, track[0].Latitude)
	assert.Equal(t, -87.7, track[0].Longitude)
}

func TestIngestStormFiltersRecordTypes(t *testing.T) {
	fetcher := &fakeFetcher{data: []byte(testDeck)}
	loader := newFakeLoader()
	p := newTestPipeline(fetcher, []Loader{loader}, []StormRequest{katrinaRequest()}, []string{atcf.RecordTypeOFCL})

	err := p.IngestStorm(context.Background(), katrinaRequest())
	require.NoError(t, err)

	track := loader.batches["AL122005"]
	require.Len(t, track, 1)
	assert.Equal(t, atcf.RecordTypeOFCL, track[0].RecordType)
}

func TestIngestStormFansOutToAllSinks(t *testing.T) {
	fetcher := &fakeFetcher{data: []byte(testDeck)}
	first := newFakeLoader()
	second := newFakeLoader()
	p := newTestPipeline(fetcher, []Loader{first, second}, []StormRequest{katrinaRequest()}, nil)

	err := p.IngestStorm(context.Background(), katrinaRequest())
	require.NoError(t, err)

	assert.Len(t, first.batches["AL122005"], 3)
	assert.Len(t, second.batches["AL122005"], 3)
}

func TestIngestStormRetriesConnectivityFailures(t *testing.T) {
	fetcher := &fakeFetcher{
		errs: []error{
			fmt.Errorf("%w: dial tcp: connection refused", atcf.ErrConnectivity),
			fmt.Errorf("%w: dial tcp: connection refused", atcf.ErrConnectivity),
		},
		data: []byte(testDeck),
	}
	loader := newFakeLoader()
	p := newTestPipeline(fetcher, []Loader{loader}, []StormRequest{katrinaRequest()}, nil)
	clk := clockwork.NewFakeClock()
	p.clock = clk

	done := make(chan error, 1)
	go func() { done <- p.IngestStorm(context.Background(), katrinaRequest()) }()

	for i := 0; i < 2; i++ {
		clk.BlockUntil(1)
		clk.Advance(5 * time.Second)
	}

	require.NoError(t, <-done)
	assert.Equal(t, 3, fetcher.callCount())
	assert.Len(t, loader.batches["AL122005"], 3)
}

func TestIngestStormDoesNotRetryDecodeFailures(t *testing.T) {
	fetcher := &fakeFetcher{data: []byte(malformedDeck)}
	loader := newFakeLoader()
	p := newTestPipeline(fetcher, []Loader{loader}, []StormRequest{katrinaRequest()}, nil)

	err := p.IngestStorm(context.Background(), katrinaRequest())
	require.Error(t, err)

	var missing *atcf.MissingRadialWindError
	assert.ErrorAs(t, err, &missing)
	assert.Equal(t, 1, fetcher.callCount())
	assert.Empty(t, loader.batches)
}

func TestIngestStormFailsFastOnNonConnectivityError(t *testing.T) {
	fetcher := &fakeFetcher{errs: []error{errors.New("550 file not found")}}
	p := newTestPipeline(fetcher, []Loader{newFakeLoader()}, []StormRequest{katrinaRequest()}, nil)

	err := p.IngestStorm(context.Background(), katrinaRequest())
	require.Error(t, err)
	assert.Equal(t, 1, fetcher.callCount())
}

func TestIngestStormRecordsLoaderFailure(t *testing.T) {
	fetcher := &fakeFetcher{data: []byte(testDeck)}
	loader := newFakeLoader()
	loader.err = errors.New("sink unavailable")
	p := newTestPipeline(fetcher, []Loader{loader}, []StormRequest{katrinaRequest()}, nil)

	err := p.IngestStorm(context.Background(), katrinaRequest())
	require.Error(t, err)

	statuses := p.StormStatuses()
	require.Len(t, statuses, 1)
	assert.False(t, statuses[0].LastSuccess)
	assert.Contains(t, statuses[0].LastError, "sink unavailable")
}

func TestRunHistoricalCompletesAfterOneCycle(t *testing.T) {
	fetcher := &fakeFetcher{data: []byte(testDeck)}
	loader := newFakeLoader()
	p := newTestPipeline(fetcher, []Loader{loader}, []StormRequest{katrinaRequest()}, nil)

	require.Error(t, p.CheckReadiness(context.Background()))

	err := p.Run(context.Background())
	require.NoError(t, err)

	assert.NoError(t, p.CheckReadiness(context.Background()))
	assert.Equal(t, 1, fetcher.callCount())

	statuses := p.StormStatuses()
	require.Len(t, statuses, 1)
	assert.Equal(t, "AL122005", statuses[0].StormID)
	assert.Equal(t, 3, statuses[0].Records)
	assert.True(t, statuses[0].LastSuccess)
}

func TestRunRealtimePollsUntilCancelled(t *testing.T) {
	fetcher := &fakeFetcher{data: []byte(testDeck)}
	loader := newFakeLoader()
	storm := StormRequest{ID: "AL122005", Deck: atcf.DeckBest, Mode: atcf.ModeRealtime}
	p := newTestPipeline(fetcher, []Loader{loader}, []StormRequest{storm}, nil)
	clk := clockwork.NewFakeClock()
	p.clock = clk

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- p.Run(ctx) }()

	// First cycle completes, then the pipeline parks on the poll timer.
	clk.BlockUntil(1)
	clk.Advance(time.Hour)

	// Second cycle, then cancel while parked.
	clk.BlockUntil(1)
	cancel()

	require.NoError(t, <-done)
	assert.Equal(t, 2, fetcher.callCount())
}

func TestStormStatusesFollowConfigurationOrder(t *testing.T) {
	fetcher := &fakeFetcher{data: []byte(testDeck)}
	loader := newFakeLoader()
	storms := []StormRequest{
		{ID: "AL122005", Deck: atcf.DeckBest, Mode: atcf.ModeHistorical},
		{ID: "AL092023", Deck: atcf.DeckBest, Mode: atcf.ModeHistorical},
	}
	p := newTestPipeline(fetcher, []Loader{loader}, storms, nil)

	require.NoError(t, p.Run(context.Background()))

	statuses := p.StormStatuses()
	require.Len(t, statuses, 2)
	assert.Equal(t, "AL122005", statuses[0].StormID)
	assert.Equal(t, "AL092023", statuses[1].StormID)
}
