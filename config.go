package markpost

import (
	"strings"
	"time"

	"github.com/eringen/markpost/post"
	"github.com/eringen/markpost/snapshot"
)

// SiteConfig holds all configuration for a markpost site.
type SiteConfig struct {
	Name        string // Site name (default "Blog")
	URL         string // Canonical URL (default "http://localhost:3000")
	Description string // Site description for RSS and meta tags

	Addr string // Listen address (default ":3000")

	SnapshotDriver   string        // "sqlite" (default), "json" or "postgres"
	SnapshotPath     string        // File for the sqlite/json drivers (default "data/posts.db" or "data/posts.json")
	DatabaseURL      string        // Connection URL for the postgres driver
	AutosaveInterval time.Duration // Snapshot interval (default 4s)

	SessionSecret string // Required: cookie session secret for flash messages
	CookieSecure  bool   // Set true for HTTPS

	LogLevel      string // debug, info, warn, error or off (default "info")
	WriteLimit    int    // Form submissions per IP per minute (default 30)
	ExcerptLength int    // Listing and feed excerpt length in characters (default 200)
}

func (c *SiteConfig) setDefaults() {
	if c.Name == "" {
		c.Name = "Blog"
	}
	if c.URL == "" {
		c.URL = "http://localhost:3000"
	}
	c.URL = strings.TrimRight(c.URL, "/")
	if c.Addr == "" {
		c.Addr = ":3000"
	}
	if c.SnapshotDriver == "" {
		c.SnapshotDriver = snapshot.DriverSQLite
	}
	if c.SnapshotPath == "" {
		switch c.SnapshotDriver {
		case snapshot.DriverJSON:
			c.SnapshotPath = "data/posts.json"
		default:
			c.SnapshotPath = "data/posts.db"
		}
	}
	if c.AutosaveInterval <= 0 {
		c.AutosaveInterval = post.DefaultAutosaveInterval
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.WriteLimit <= 0 {
		c.WriteLimit = 30
	}
	if c.ExcerptLength <= 0 {
		c.ExcerptLength = 200
	}
}

// snapshotDSN returns what snapshot.Open expects for the configured driver.
func (c *SiteConfig) snapshotDSN() string {
	if c.SnapshotDriver == snapshot.DriverPostgres {
		return c.DatabaseURL
	}
	return c.SnapshotPath
}

// Option configures additional App behavior.
type Option func(*App)

// WithCustomRoutes registers additional routes on the Echo instance.
// The callback receives the App after the built-in routes are registered.
func WithCustomRoutes(fn func(*App)) Option {
	return func(a *App) {
		a.customRoutes = append(a.customRoutes, fn)
	}
}

// WithStaticDir sets the directory for user-owned static assets and
// uploaded images (default "public").
func WithStaticDir(dir string) Option {
	return func(a *App) {
		a.staticDir = dir
	}
}

// WithViews replaces the built-in templates.
func WithViews(v ViewFuncs) Option {
	return func(a *App) {
		a.Views = v
	}
}

// WithSnapshotter makes the App load from and autosave to target instead of
// opening one from the configured driver. The App closes it on Close.
func WithSnapshotter(target post.Snapshotter) Option {
	return func(a *App) {
		a.snapshots = target
	}
}

// WithClock sets the clock used for post creation times.
func WithClock(now func() time.Time) Option {
	return func(a *App) {
		a.storeOpts = append(a.storeOpts, post.WithClock(now))
	}
}
