// Package update polls a release endpoint and logs when a newer version
// is available. It shares no state with the role pipeline.
package update

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/mod/semver"
)

// DefaultInterval is the default time between checks.
const DefaultInterval = time.Hour

// maxResponseBytes bounds the release document.
const maxResponseBytes = 64 * 1024

// ErrInvalidVersion is returned when a version is not valid semver.
var ErrInvalidVersion = errors.New("invalid version")

// release is the document served at the release URL.
type release struct {
	Version string `json:"version"`
}

// Checker compares the running version against the published one.
type Checker struct {
	url      string
	current  string
	interval time.Duration
	client   *http.Client
	log      *zap.Logger

	mu       sync.Mutex
	notified string // last version logged
}

// Option configures a Checker.
type Option func(*Checker)

// WithInterval sets the time between checks. Non-positive values are ignored.
func WithInterval(d time.Duration) Option {
	return func(c *Checker) {
		if d > 0 {
			c.interval = d
		}
	}
}

// WithHTTPClient sets the HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Checker) {
		if client != nil {
			c.client = client
		}
	}
}

// WithLogger sets the logger. Nil disables logging.
func WithLogger(log *zap.Logger) Option {
	return func(c *Checker) {
		c.log = log
	}
}

// New creates a checker for the running version current, which must be
// valid semver ("1.2.3" or "v1.2.3").
func New(url, current string, opts ...Option) (*Checker, error) {
	if url == "" {
		return nil, errors.New("update url is empty")
	}
	cur := canonical(current)
	if cur == "" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidVersion, current)
	}
	c := &Checker{
		url:      url,
		current:  cur,
		interval: DefaultInterval,
		client:   &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	if c.log == nil {
		c.log = zap.NewNop()
	}
	return c, nil
}

// Check fetches the published version and reports whether it is newer
// than the running one.
func (c *Checker) Check(ctx context.Context) (latest string, newer bool, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return "", false, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", false, fmt.Errorf("fetching release: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", false, fmt.Errorf("fetching release: unexpected status %s", resp.Status)
	}

	var rel release
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(&rel); err != nil {
		return "", false, fmt.Errorf("decoding release: %w", err)
	}
	latest = canonical(rel.Version)
	if latest == "" {
		return "", false, fmt.Errorf("%w: %q", ErrInvalidVersion, rel.Version)
	}
	return latest, semver.Compare(latest, c.current) > 0, nil
}

// Run checks immediately and then on every interval until ctx is done.
// Each newer version is logged once; failures are logged at debug level.
func (c *Checker) Run(ctx context.Context) {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		c.checkAndNotify(ctx)
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (c *Checker) checkAndNotify(ctx context.Context) {
	latest, newer, err := c.Check(ctx)
	if err != nil {
		if ctx.Err() == nil {
			c.log.Debug("update check failed", zap.Error(err))
		}
		return
	}
	if !newer {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.notified == latest {
		return
	}
	c.notified = latest
	c.log.Info("a newer version is available",
		zap.String("current", c.current), zap.String("latest", latest))
}

// Notified returns the last version logged as available, or "".
func (c *Checker) Notified() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.notified
}

// canonical returns v with a "v" prefix if valid semver, else "".
func canonical(v string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return ""
	}
	if !strings.HasPrefix(v, "v") {
		v = "v" + v
	}
	if !semver.IsValid(v) {
		return ""
	}
	return v
}
