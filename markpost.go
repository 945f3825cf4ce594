// Package markpost is a small blog engine built with Go, Echo, and templ.
// Posts live in memory and are snapshotted to SQLite, a JSON file or
// PostgreSQL on a timer; post content is markdown rendered to sanitized HTML
// on every view.
package markpost

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	glog "github.com/labstack/gommon/log"

	"github.com/eringen/markpost/markdown"
	"github.com/eringen/markpost/post"
	"github.com/eringen/markpost/snapshot"
	"github.com/eringen/markpost/views"
)

// App is the central markpost application. It wires together the post
// store, its autosaver, the renderer, handlers, middleware and templates.
type App struct {
	Config   SiteConfig
	Echo     *echo.Echo
	Store    *post.Store
	Renderer *markdown.Renderer
	Views    ViewFuncs

	snapshots    post.Snapshotter
	autosaver    *post.Autosaver
	writeLimiter *WriteLimiter
	customRoutes []func(*App)
	staticDir    string
	storeOpts    []post.StoreOption
}

// New creates a new markpost App with the given configuration.
func New(cfg SiteConfig, opts ...Option) *App {
	cfg.setDefaults()

	a := &App{
		Config:    cfg,
		Echo:      echo.New(),
		Renderer:  markdown.NewRenderer(),
		Views:     DefaultViews(),
		staticDir: "public",
	}
	a.Echo.HideBanner = true

	for _, opt := range opts {
		opt(a)
	}

	return a
}

// Init loads the post collection, starts the autosaver and registers
// middleware and routes. Start calls it; tests call it directly and drive
// a.Echo with httptest.
func (a *App) Init(ctx context.Context) error {
	if a.Config.SessionSecret == "" {
		return fmt.Errorf("markpost: SessionSecret is required")
	}
	a.Echo.Logger.SetLevel(parseLogLevel(a.Config.LogLevel))

	if a.snapshots == nil {
		target, err := snapshot.Open(ctx, a.Config.SnapshotDriver, a.Config.snapshotDSN())
		if err != nil {
			return fmt.Errorf("markpost: open snapshot: %w", err)
		}
		a.snapshots = target
	}

	// A snapshot that exists but cannot be read stops startup; serving an
	// empty blog would overwrite it on the first autosave.
	store, err := post.Open(ctx, a.snapshots, a.storeOpts...)
	if err != nil {
		return fmt.Errorf("markpost: init store: %w", err)
	}
	a.Store = store
	a.Echo.Logger.Infof("loaded %d posts from %s snapshot", store.Len(), a.Config.SnapshotDriver)

	a.autosaver = post.NewAutosaver(store, a.snapshots, a.Config.AutosaveInterval, a.Echo.Logger)
	a.autosaver.Start()

	a.writeLimiter = NewWriteLimiter(a.Config.WriteLimit, time.Minute)

	a.setupMiddleware()
	a.setupRoutes()

	for _, fn := range a.customRoutes {
		fn(a)
	}
	return nil
}

// Start initializes the app and serves HTTP until the server is shut down.
func (a *App) Start() error {
	if err := a.Init(context.Background()); err != nil {
		return err
	}
	if err := a.Echo.Start(a.Config.Addr); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (a *App) setupRoutes() {
	e := a.Echo

	embeddedFS, _ := fs.Sub(EmbeddedAssets, "embedded")
	embeddedHandler := http.FileServer(http.FS(embeddedFS))
	e.GET("/public/style.css", echo.WrapHandler(http.StripPrefix("/public/", embeddedHandler)))

	// User's static assets and uploaded images
	e.Static("/public", a.staticDir)
	e.GET("/robots.txt", a.handleRobots)
	e.GET("/sitemap.xml", a.handleSitemap)
	e.GET("/feed.xml", a.handleFeed)

	// Posts
	e.GET("/", a.handleIndex)
	e.GET("/new/", a.handleNewPost)
	e.POST("/new/", a.handleCreatePost)
	e.GET("/post/:id/", a.handlePost)
	e.GET("/edit/:id/", a.handleEditPost)
	e.POST("/edit/:id/", a.handleUpdatePost)
	e.POST("/post/:id/delete/", a.handleDeletePost)

	// Images
	e.GET("/images/", a.handleImageList)
	e.POST("/images/upload/", a.handleImageUpload)
	e.POST("/images/:filename/delete/", a.handleImageDelete)

	// Read-only JSON API
	api := e.Group("/api")
	api.GET("/posts/", a.handleAPIList)
	api.GET("/posts/:id/", a.handleAPIPost)
}

// Shutdown stops the HTTP server and then releases everything Close does.
func (a *App) Shutdown(ctx context.Context) error {
	err := a.Echo.Shutdown(ctx)
	return errors.Join(err, a.Close(ctx))
}

// Close stops the autosaver, writing pending changes one last time, and
// closes the snapshot target. Call this when the app is shutting down.
func (a *App) Close(ctx context.Context) error {
	var errs []error
	if a.autosaver != nil {
		if err := a.autosaver.Stop(ctx); err != nil {
			errs = append(errs, fmt.Errorf("markpost: final snapshot: %w", err))
		}
	}
	if a.writeLimiter != nil {
		a.writeLimiter.Stop()
	}
	if a.snapshots != nil {
		if err := a.snapshots.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (a *App) site() views.Site {
	return views.Site{
		Name:        a.Config.Name,
		URL:         a.Config.URL,
		Description: a.Config.Description,
	}
}

func parseLogLevel(level string) glog.Lvl {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return glog.DEBUG
	case "warn", "warning":
		return glog.WARN
	case "error":
		return glog.ERROR
	case "off":
		return glog.OFF
	default:
		return glog.INFO
	}
}

// EnvOr returns the value of the environment variable key, or fallback if empty.
func EnvOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// MustEnv returns the value of the environment variable key, or fatally exits if empty.
func MustEnv(key string) string {
	v := os.Getenv(key)
	if v == "" {
		log.Fatalf("markpost: required environment variable %s is not set", key)
	}
	return v
}

// EnvDuration parses key as a time.Duration ("4s", "1m"), or returns fallback.
func EnvDuration(key string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return d
}

// EnvInt parses key as an integer, or returns fallback.
func EnvInt(key string, fallback int) int {
	n, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return n
}

// EnvBool parses key as a boolean ("1", "true"), or returns fallback.
func EnvBool(key string, fallback bool) bool {
	b, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return b
}
