package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/eringen/markpost"
)

// version is set at build time via ldflags.
var version = "dev"

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "serve":
		if err := serve(); err != nil {
			log.Fatalf("markpost: %v", err)
		}
	case "version":
		fmt.Printf("markpost %s\n", version)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func serve() error {
	// A missing .env is fine; the real environment still applies.
	_ = godotenv.Load()

	app := markpost.New(markpost.SiteConfig{
		Name:             markpost.EnvOr("SITE_NAME", "Blog"),
		URL:              markpost.EnvOr("SITE_URL", "http://localhost:3000"),
		Description:      os.Getenv("SITE_DESCRIPTION"),
		Addr:             markpost.EnvOr("ADDR", ":3000"),
		SnapshotDriver:   os.Getenv("SNAPSHOT_DRIVER"),
		SnapshotPath:     os.Getenv("SNAPSHOT_PATH"),
		DatabaseURL:      os.Getenv("DATABASE_URL"),
		AutosaveInterval: markpost.EnvDuration("AUTOSAVE_INTERVAL", 0),
		SessionSecret:    markpost.MustEnv("SESSION_SECRET"),
		CookieSecure:     markpost.EnvBool("COOKIE_SECURE", false),
		LogLevel:         os.Getenv("LOG_LEVEL"),
		WriteLimit:       markpost.EnvInt("WRITE_LIMIT", 0),
	}, markpost.WithStaticDir(markpost.EnvOr("STATIC_DIR", "public")))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errc := make(chan error, 1)
	go func() { errc <- app.Start() }()

	select {
	case err := <-errc:
		closeCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return errors.Join(err, app.Close(closeCtx))
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	log.Println("markpost: shutting down, writing final snapshot")
	return app.Shutdown(shutdownCtx)
}

func printUsage() {
	fmt.Println(`markpost - A markdown blog built with Go, Echo, and templ

Usage:
  markpost <command>

Commands:
  serve         Start the blog server
  version       Print the markpost version
  help          Show this help message

Environment (also read from .env):
  SESSION_SECRET      Required. Cookie session secret
  SITE_NAME           Site name (default "Blog")
  SITE_URL            Canonical URL (default "http://localhost:3000")
  SITE_DESCRIPTION    Site description
  ADDR                Listen address (default ":3000")
  SNAPSHOT_DRIVER     sqlite (default), json or postgres
  SNAPSHOT_PATH       Snapshot file for sqlite/json
  DATABASE_URL        PostgreSQL URL for the postgres driver
  AUTOSAVE_INTERVAL   Snapshot interval (default 4s)
  COOKIE_SECURE       Set true behind HTTPS
  LOG_LEVEL           debug, info, warn, error or off
  WRITE_LIMIT         Form submissions per IP per minute (default 30)
  STATIC_DIR          Static assets and uploads (default "public")`)
}
