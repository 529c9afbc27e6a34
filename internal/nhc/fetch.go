package nhc

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/jlaffaye/ftp"

	"github.com/couchcryptid/storm-track-ingest/internal/atcf"
)

// Client retrieves advisory decks over anonymous FTP.
type Client struct {
	host    string
	timeout time.Duration
	logger  *slog.Logger
}

// NewClient creates an FTP client for the given host ("host:port").
// Pass DefaultHost for the production NHC service.
func NewClient(host string, timeout time.Duration, logger *slog.Logger) *Client {
	return &Client{
		host:    host,
		timeout: timeout,
		logger:  logger,
	}
}

// Fetch downloads the deck file for one storm and returns its raw bytes,
// which may be gzip-compressed depending on the feed.
func (c *Client) Fetch(ctx context.Context, stormID string, deck atcf.FileDeck, mode atcf.Mode) ([]byte, error) {
	dir, file, err := deckPath(stormID, deck, mode)
	if err != nil {
		return nil, err
	}

	c.logger.Info("downloading storm data",
		"host", c.host,
		"path", path.Join(dir, file),
	)

	conn, err := c.dial(ctx)
	if err != nil {
		return nil, err
	}
	defer conn.Quit() //nolint:errcheck // best-effort close

	resp, err := conn.Retr(path.Join(dir, file))
	if err != nil {
		return nil, fmt.Errorf("retrieve %s: %w", path.Join(dir, file), err)
	}
	defer resp.Close() //nolint:errcheck // read side fully drained below

	data, err := io.ReadAll(resp)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", file, err)
	}
	return data, nil
}

// StormIDs lists the storm identifiers available in one deck feed, sorted
// most-recent first. year is only consulted in historical mode, where the
// archive is partitioned by season.
func (c *Client) StormIDs(ctx context.Context, deck atcf.FileDeck, mode atcf.Mode, year int) ([]string, error) {
	dir, _, err := deckDir(deck, mode, year)
	if err != nil {
		return nil, err
	}

	conn, err := c.dial(ctx)
	if err != nil {
		return nil, err
	}
	defer conn.Quit() //nolint:errcheck // best-effort close

	entries, err := conn.List(dir)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", dir, err)
	}

	ids := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.Type != ftp.EntryTypeFile {
			continue
		}
		name := e.Name
		if !strings.HasPrefix(name, string(deck)) {
			continue
		}
		// "bal092005.dat.gz" → "AL092005"
		id := strings.ToUpper(strings.SplitN(name, ".", 2)[0][1:])
		ids = append(ids, id)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(ids)))
	return ids, nil
}

// dial opens and authenticates an FTP session, mapping connection failures
// to the connectivity error kind callers are allowed to depend on.
func (c *Client) dial(ctx context.Context) (*ftp.ServerConn, error) {
	conn, err := ftp.Dial(c.host, ftp.DialWithContext(ctx), ftp.DialWithTimeout(c.timeout))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", atcf.ErrConnectivity, c.host, err)
	}
	if err := conn.Login("anonymous", "anonymous"); err != nil {
		conn.Quit() //nolint:errcheck // connection being discarded
		return nil, fmt.Errorf("%w: %s: login: %v", atcf.ErrConnectivity, c.host, err)
	}
	return conn, nil
}
