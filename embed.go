package markpost

import "embed"

// EmbeddedAssets contains static assets shipped with the engine: style.css
//
//go:embed embedded/*
var EmbeddedAssets embed.FS
