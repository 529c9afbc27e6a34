package pipeline

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/couchcryptid/storm-track-ingest/internal/atcf"
	"github.com/couchcryptid/storm-track-ingest/internal/observability"
	"github.com/jonboulle/clockwork"
)

// Fetcher downloads the raw deck file for a storm.
type Fetcher interface {
	Fetch(ctx context.Context, stormID string, deck atcf.FileDeck, mode atcf.Mode) ([]byte, error)
}

// Loader writes a storm's decoded records to a destination.
type Loader interface {
	LoadBatch(ctx context.Context, stormID string, records atcf.Table) error
}

// StormRequest identifies one deck to ingest on every poll cycle.
type StormRequest struct {
	ID   string
	Deck atcf.FileDeck
	Mode atcf.Mode
}

// StormStatus is the latest ingestion outcome for one storm.
type StormStatus struct {
	StormID     string
	Records     int
	LastIngest  time.Time
	LastError   string
	LastSuccess bool
}

// Pipeline polls the configured storms, decodes their decks, and loads the
// records into every configured sink.
type Pipeline struct {
	fetcher      Fetcher
	loaders      []Loader
	storms       []StormRequest
	recordTypes  []string
	pollInterval time.Duration
	logger       *slog.Logger
	metrics      *observability.Metrics
	clock        clockwork.Clock
	ready        atomic.Bool

	mu       sync.Mutex
	statuses map[string]StormStatus
}

// New creates a Pipeline over the given storms and sinks.
func New(f Fetcher, loaders []Loader, storms []StormRequest, recordTypes []string, pollInterval time.Duration, logger *slog.Logger, metrics *observability.Metrics) *Pipeline {
	return &Pipeline{
		fetcher:      f,
		loaders:      loaders,
		storms:       storms,
		recordTypes:  recordTypes,
		pollInterval: pollInterval,
		logger:       logger,
		metrics:      metrics,
		clock:        clockwork.NewRealClock(),
		statuses:     make(map[string]StormStatus),
	}
}

// CheckReadiness returns nil once the pipeline has completed at least one
// full poll cycle.
func (p *Pipeline) CheckReadiness(_ context.Context) error {
	if !p.ready.Load() {
		return errors.New("pipeline has not completed an ingestion cycle yet")
	}
	return nil
}

// StormStatuses returns the latest outcome for each configured storm, in
// configuration order.
func (p *Pipeline) StormStatuses() []StormStatus {
	p.mu.Lock()
	defer p.mu.Unlock()

	out := make([]StormStatus, 0, len(p.storms))
	for _, req := range p.storms {
		if st, ok := p.statuses[req.ID]; ok {
			out = append(out, st)
		}
	}
	return out
}

// Run executes poll cycles until the context is cancelled. In historical mode
// a single cycle is enough, so Run returns after the first pass; in realtime
// mode it keeps polling at the configured interval.
func (p *Pipeline) Run(ctx context.Context) error {
	p.logger.Info("pipeline started",
		"storms", len(p.storms),
		"poll_interval", p.pollInterval,
	)
	p.metrics.PipelineRunning.Set(1)
	defer p.metrics.PipelineRunning.Set(0)

	for {
		p.runCycle(ctx)
		if ctx.Err() != nil {
			p.logger.Info("pipeline stopping", "reason", ctx.Err())
			return nil
		}
		p.ready.Store(true)

		if p.oneShot() {
			p.logger.Info("historical ingestion complete")
			return nil
		}
		if !p.sleep(ctx, p.pollInterval) {
			p.logger.Info("pipeline stopping", "reason", ctx.Err())
			return nil
		}
	}
}

// oneShot reports whether every configured storm is historical, in which case
// repeated polling would re-fetch immutable archives.
func (p *Pipeline) oneShot() bool {
	for _, req := range p.storms {
		if req.Mode != atcf.ModeHistorical {
			return false
		}
	}
	return true
}

func (p *Pipeline) runCycle(ctx context.Context) {
	for _, req := range p.storms {
		if ctx.Err() != nil {
			return
		}
		if err := p.IngestStorm(ctx, req); err != nil {
			p.logger.Error("storm ingestion failed",
				"storm_id", req.ID,
				"deck", string(req.Deck),
				"error", err,
			)
		}
	}
}

// IngestStorm runs one fetch-decode-load pass for a single storm. Transient
// connectivity failures are retried with exponential backoff; decode failures
// are not, since re-fetching the same deck cannot fix a malformed line.
func (p *Pipeline) IngestStorm(ctx context.Context, req StormRequest) error {
	start := p.clock.Now()

	raw, err := p.fetchWithRetry(ctx, req)
	if err != nil {
		p.recordOutcome(req.ID, 0, err)
		return err
	}

	track, err := p.decode(raw)
	if err != nil {
		p.metrics.DecodeFailures.Inc()
		p.recordOutcome(req.ID, 0, err)
		return err
	}
	p.metrics.RecordsDecoded.Add(float64(len(track)))
	p.metrics.TrackSize.Observe(float64(len(track)))

	for _, loader := range p.loaders {
		if err := loader.LoadBatch(ctx, req.ID, track); err != nil {
			p.recordOutcome(req.ID, 0, err)
			return err
		}
	}
	p.metrics.RecordsPublished.Add(float64(len(track) * len(p.loaders)))
	p.metrics.IngestDuration.Observe(p.clock.Since(start).Seconds())
	p.recordOutcome(req.ID, len(track), nil)

	p.logger.Info("storm ingested",
		"storm_id", req.ID,
		"records", len(track),
		"sinks", len(p.loaders),
	)
	return nil
}

// fetchWithRetry downloads a deck, retrying connectivity failures with
// exponential backoff from 200ms up to 5s. Non-connectivity errors fail fast.
func (p *Pipeline) fetchWithRetry(ctx context.Context, req StormRequest) ([]byte, error) {
	backoff := 200 * time.Millisecond
	maxBackoff := 5 * time.Second

	for {
		start := p.clock.Now()
		raw, err := p.fetcher.Fetch(ctx, req.ID, req.Deck, req.Mode)
		p.metrics.FetchDuration.Observe(p.clock.Since(start).Seconds())
		if err == nil {
			p.metrics.Fetches.WithLabelValues("success").Inc()
			return raw, nil
		}
		if !errors.Is(err, atcf.ErrConnectivity) {
			p.metrics.Fetches.WithLabelValues("error").Inc()
			return nil, err
		}

		p.metrics.Fetches.WithLabelValues("connectivity").Inc()
		if backoff >= maxBackoff {
			return nil, err
		}
		p.logger.Warn("deck fetch failed, retrying",
			"storm_id", req.ID,
			"backoff", backoff,
			"error", err,
		)
		if !p.sleep(ctx, backoff) {
			return nil, ctx.Err()
		}
		backoff = nextBackoff(backoff, maxBackoff)
	}
}

func (p *Pipeline) decode(raw []byte) (atcf.Table, error) {
	var opts []atcf.ReadOption
	if len(p.recordTypes) > 0 {
		opts = append(opts, atcf.WithRecordTypes(p.recordTypes...))
	}
	return atcf.ReadTrack(atcf.BytesSource(bytes.NewReader(raw)), opts...)
}

func (p *Pipeline) recordOutcome(stormID string, records int, err error) {
	st := StormStatus{
		StormID:     stormID,
		Records:     records,
		LastIngest:  p.clock.Now().UTC(),
		LastSuccess: err == nil,
	}
	if err != nil {
		st.LastError = err.Error()
	}

	p.mu.Lock()
	p.statuses[stormID] = st
	p.mu.Unlock()
}

// sleep waits for d or until the context is cancelled. Returns false on
// cancellation.
func (p *Pipeline) sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}

	timer := p.clock.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.Chan():
		return true
	}
}

func nextBackoff(current, maxBackoff time.Duration) time.Duration {
	next := current * 2
	if next > maxBackoff {
		return maxBackoff
	}
	return next
}
