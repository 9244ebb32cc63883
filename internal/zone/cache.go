package zone

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/appetiteclub/apt"
)

// DefaultExpiration is how long both the cache file and the in-memory
// snapshot stay valid without a refresh.
const DefaultExpiration = time.Hour

// ExpirationEnv is the legacy environment override for the expiration
// window, in seconds. Deployments already set this name.
const ExpirationEnv = "ZONEFILE_EXPIRATION_TIME"

// RefreshHelperEnv optionally names an executable whose stdout replaces the
// cache file on refresh. Same legacy naming as ExpirationEnv.
const RefreshHelperEnv = "ZONEFILE_REFRESH_HELPER"

// ExpirationFromEnv reads the legacy seconds override, falling back to
// DefaultExpiration on absent or unusable values.
func ExpirationFromEnv() time.Duration {
	raw := os.Getenv(ExpirationEnv)
	if raw == "" {
		return DefaultExpiration
	}
	secs, err := strconv.Atoi(raw)
	if err != nil || secs <= 0 {
		return DefaultExpiration
	}
	return time.Duration(secs) * time.Second
}

// Cache resolves location codes to zone ids through a file-backed snapshot.
// The file's mtime is its freshness signal; the in-memory copy carries its
// own load time and is valid only while it postdates the file and is younger
// than the expiration window. Concurrent refreshes are allowed to race, the
// last writer of the file wins.
type Cache struct {
	path       string
	expiration time.Duration
	sources    []Source
	logger     apt.Logger
	now        func() time.Time

	mu       sync.RWMutex
	snapshot map[string]Entry
	loadedAt time.Time
}

func NewCache(path string, expiration time.Duration, sources []Source, logger apt.Logger) *Cache {
	if logger == nil {
		logger = apt.NewNoopLogger()
	}
	if expiration <= 0 {
		expiration = DefaultExpiration
	}
	return &Cache{
		path:       path,
		expiration: expiration,
		sources:    sources,
		logger:     logger,
		now:        time.Now,
	}
}

// Resolve returns the zone id mapped to a location, or nil when the location
// is unknown upstream. An unknown location costs one extra refresh before the
// cache gives up on it; the miss is logged but is not an error.
func (c *Cache) Resolve(ctx context.Context, location string) (*int, error) {
	if err := c.ensureFresh(ctx); err != nil {
		return nil, err
	}
	if id, ok := c.lookup(location); ok {
		return &id, nil
	}

	if err := c.refresh(ctx); err != nil {
		return nil, err
	}
	if err := c.load(); err != nil {
		return nil, err
	}
	if id, ok := c.lookup(location); ok {
		return &id, nil
	}
	c.logger.Info("location has no zone mapping", "location", location, "file", c.path)
	return nil, nil
}

// Refresh rebuilds the cache file from the sources and reloads the
// in-memory snapshot, regardless of current freshness.
func (c *Cache) Refresh(ctx context.Context) error {
	if err := c.refresh(ctx); err != nil {
		return err
	}
	return c.load()
}

func (c *Cache) lookup(location string) (int, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	entry, ok := c.snapshot[location]
	return entry.ID, ok
}

// ensureFresh brings both the file and the in-memory snapshot up to date.
// An unreadable file is rebuilt once: delete, refresh, reload. A second
// consecutive load failure propagates.
func (c *Cache) ensureFresh(ctx context.Context) error {
	if err := c.ensureFile(ctx); err != nil {
		return err
	}
	info, err := os.Stat(c.path)
	if err != nil {
		return fmt.Errorf("cannot stat zone cache file %s: %w", c.path, err)
	}
	if c.memoryFresh(info.ModTime()) {
		return nil
	}

	err = c.load()
	if err == nil {
		return nil
	}
	c.logger.Error("zone cache file unusable, rebuilding", "file", c.path, "error", err)
	_ = os.Remove(c.path)
	if err := c.refresh(ctx); err != nil {
		return err
	}
	return c.load()
}

// ensureFile refreshes when the backing file is missing or older than the
// expiration window.
func (c *Cache) ensureFile(ctx context.Context) error {
	info, err := os.Stat(c.path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		return c.refresh(ctx)
	case err != nil:
		return fmt.Errorf("cannot stat zone cache file %s: %w", c.path, err)
	case c.now().Sub(info.ModTime()) > c.expiration:
		return c.refresh(ctx)
	default:
		return nil
	}
}

func (c *Cache) memoryFresh(mtime time.Time) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.snapshot == nil {
		return false
	}
	if c.loadedAt.Before(mtime) {
		return false
	}
	return c.now().Sub(c.loadedAt) < c.expiration
}

func (c *Cache) load() error {
	raw, err := os.ReadFile(c.path)
	if err != nil {
		return fmt.Errorf("cannot read zone cache file %s: %w", c.path, err)
	}
	var snapshot map[string]Entry
	if err := json.Unmarshal(raw, &snapshot); err != nil {
		return fmt.Errorf("cannot parse zone cache file %s: %w", c.path, err)
	}
	if snapshot == nil {
		snapshot = map[string]Entry{}
	}
	c.mu.Lock()
	c.snapshot = snapshot
	c.loadedAt = c.now()
	c.mu.Unlock()
	return nil
}

// refresh writes a new cache file from the first source that succeeds,
// replacing prior content in full.
func (c *Cache) refresh(ctx context.Context) error {
	var lastErr error
	for _, source := range c.sources {
		payload, err := source.Fetch(ctx)
		if err != nil {
			c.logger.Error("zone source failed", "source", source.Name(), "error", err)
			lastErr = err
			continue
		}
		if err := os.WriteFile(c.path, payload, 0644); err != nil {
			return fmt.Errorf("cannot write zone cache file %s: %w", c.path, err)
		}
		c.logger.Info("zone cache refreshed", "source", source.Name(), "bytes", len(payload))
		return nil
	}
	if lastErr == nil {
		return errors.New("no zone sources configured")
	}
	return fmt.Errorf("all zone sources failed: %w", lastErr)
}
