// Package catalog resolves storm identity queries against the NHC storm
// index. It is a black-box collaborator of the ingestion pipeline: a lookup
// either returns the single best match or fails, and the caller controls
// the client's lifetime (no ambient global state).
package catalog

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/couchcryptid/storm-track-ingest/internal/observability"
	"github.com/jonboulle/clockwork"
)

// DefaultIndexURL is the published index of all ATCF storms.
const DefaultIndexURL = "https://ftp.nhc.noaa.gov/atcf/index/storm_list.txt"

// sourceArchive marks storms whose decks live in the season archive rather
// than the realtime feed.
const sourceArchive = "ARCHIVE"

// Query identifies a storm by name+year or basin+number+year.
type Query struct {
	Basin  string
	Number int
	Name   string
	Year   int
}

func (q Query) String() string {
	if q.Name != "" {
		return fmt.Sprintf("%q in %d", q.Name, q.Year)
	}
	return fmt.Sprintf("%q in %d", fmt.Sprintf("%s%02d", q.Basin, q.Number), q.Year)
}

// Storm is one resolved catalog entry.
type Storm struct {
	ID     string // e.g. "AL092005"
	Name   string
	Basin  string
	Number int
	Year   int
	Source string // sourceArchive or the realtime feed name
}

// Historical reports whether the storm's decks are served from the archive.
func (s Storm) Historical() bool { return s.Source == sourceArchive }

// Catalog looks up storms. Implementations return NotFoundError when zero
// entries match.
type Catalog interface {
	Lookup(ctx context.Context, q Query) (Storm, error)
}

// NotFoundError reports a query that matched no catalog entry.
type NotFoundError struct {
	Query Query
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("catalog: no storms matching %s", e.Query)
}

// Client implements Catalog over the HTTP-published NHC storm index.
type Client struct {
	indexURL   string
	httpClient *http.Client
	logger     *slog.Logger
	metrics    *observability.Metrics
	clock      clockwork.Clock
}

// NewClient creates a catalog client reading the given index URL.
func NewClient(indexURL string, timeout time.Duration, logger *slog.Logger, metrics *observability.Metrics) *Client {
	return &Client{
		indexURL: indexURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger:  logger,
		metrics: metrics,
		clock:   clockwork.NewRealClock(),
	}
}

// Lookup fetches the index and returns the first entry matching the query.
// Basin and name match as case-insensitive substrings of the catalog value,
// number and year exactly; the first index row that satisfies every
// populated criterion wins.
func (c *Client) Lookup(ctx context.Context, q Query) (Storm, error) {
	if q.Name == "" && (q.Basin == "" || q.Number == 0) {
		return Storm{}, fmt.Errorf("catalog: need either storm name + year or basin + storm number + year")
	}

	storms, err := c.fetchIndex(ctx)
	if err != nil {
		c.metrics.CatalogLookups.WithLabelValues("error").Inc()
		return Storm{}, err
	}

	for _, s := range storms {
		if matches(s, q) {
			c.metrics.CatalogLookups.WithLabelValues("success").Inc()
			return s, nil
		}
	}
	c.metrics.CatalogLookups.WithLabelValues("miss").Inc()
	return Storm{}, &NotFoundError{Query: q}
}

func matches(s Storm, q Query) bool {
	if q.Year != 0 && s.Year != q.Year {
		return false
	}
	if q.Basin != "" && !strings.Contains(s.Basin, strings.ToUpper(q.Basin)) {
		return false
	}
	if q.Number != 0 && s.Number != q.Number {
		return false
	}
	if q.Name != "" && !strings.Contains(s.Name, strings.ToUpper(q.Name)) {
		return false
	}
	return true
}

// fetchIndex downloads and parses the storm index. Rows are comma-delimited
// with the storm name first and the storm identifier last; everything
// between varies across index revisions and is ignored.
func (c *Client) fetchIndex(ctx context.Context) ([]Storm, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.indexURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch storm index: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck // read-only body

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch storm index: status %d", resp.StatusCode)
	}

	currentYear := c.clock.Now().UTC().Year()

	var storms []Storm
	sc := bufio.NewScanner(resp.Body)
	for sc.Scan() {
		s, ok := parseIndexRow(sc.Text(), currentYear)
		if !ok {
			continue
		}
		storms = append(storms, s)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read storm index: %w", err)
	}

	c.logger.Debug("storm index fetched", "entries", len(storms))
	return storms, nil
}

// parseIndexRow decodes one index row. Malformed rows (header lines,
// entries without a well-formed trailing identifier) are skipped rather
// than failing the whole index.
func parseIndexRow(row string, currentYear int) (Storm, bool) {
	fields := strings.Split(row, ",")
	if len(fields) < 2 {
		return Storm{}, false
	}

	id := strings.ToUpper(strings.TrimSpace(fields[len(fields)-1]))
	if len(id) != 8 {
		return Storm{}, false
	}
	number, err := strconv.Atoi(id[2:4])
	if err != nil {
		return Storm{}, false
	}
	year, err := strconv.Atoi(id[4:])
	if err != nil {
		return Storm{}, false
	}

	source := sourceArchive
	if year >= currentYear {
		source = "aid_public"
	}

	return Storm{
		ID:     id,
		Name:   strings.ToUpper(strings.TrimSpace(fields[0])),
		Basin:  id[:2],
		Number: number,
		Year:   year,
		Source: source,
	}, true
}
