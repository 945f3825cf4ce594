package views

import (
	"context"
	"io"
	"strconv"

	"github.com/a-h/templ"
)

// htmlWriter accumulates the first write error so templates read top to bottom.
type htmlWriter struct {
	w   io.Writer
	err error
}

func (h *htmlWriter) raw(s string) {
	if h.err != nil {
		return
	}
	_, h.err = io.WriteString(h.w, s)
}

func (h *htmlWriter) text(s string) {
	h.raw(templ.EscapeString(s))
}

func (h *htmlWriter) component(ctx context.Context, c templ.Component) {
	if h.err != nil || c == nil {
		return
	}
	h.err = c.Render(ctx, h.w)
}

// csrfField writes the hidden token echo's CSRF middleware looks up.
func (h *htmlWriter) csrfField(token string) {
	h.raw(`<input type="hidden" name="_csrf" value="`)
	h.text(token)
	h.raw(`"/>`)
}

// PostPath returns the detail page path of a post.
func PostPath(id int64) string {
	return "/post/" + strconv.FormatInt(id, 10) + "/"
}

// EditPath returns the edit form path of a post.
func EditPath(id int64) string {
	return "/edit/" + strconv.FormatInt(id, 10) + "/"
}

// DeletePath returns the delete endpoint of a post.
func DeletePath(id int64) string {
	return "/post/" + strconv.FormatInt(id, 10) + "/delete/"
}

func component(fn func(ctx context.Context, h *htmlWriter)) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &htmlWriter{w: w}
		fn(ctx, h)
		return h.err
	})
}

// layout wraps body in the shared page chrome.
func layout(site Site, meta PageMeta, flash string, body templ.Component) templ.Component {
	return component(func(ctx context.Context, h *htmlWriter) {
		title := site.Name
		if meta.Title != "" && meta.Title != site.Name {
			title = meta.Title + " | " + site.Name
		}
		description := meta.Description
		if description == "" {
			description = site.Description
		}
		ogType := meta.OGType
		if ogType == "" {
			ogType = "website"
		}

		h.raw(`<!DOCTYPE html><html lang="en"><head><meta charset="utf-8"/>`)
		h.raw(`<meta name="viewport" content="width=device-width, initial-scale=1"/>`)
		h.raw(`<title>`)
		h.text(title)
		h.raw(`</title><meta name="description" content="`)
		h.text(description)
		h.raw(`"/><meta property="og:title" content="`)
		h.text(title)
		h.raw(`"/><meta property="og:type" content="`)
		h.text(ogType)
		h.raw(`"/>`)
		if meta.URL != "" {
			h.raw(`<link rel="canonical" href="`)
			h.text(meta.URL)
			h.raw(`"/><meta property="og:url" content="`)
			h.text(meta.URL)
			h.raw(`"/>`)
		}
		h.raw(`<link rel="alternate" type="application/rss+xml" href="/feed.xml" title="`)
		h.text(site.Name)
		h.raw(`"/><link rel="stylesheet" href="/public/style.css"/>`)
		if meta.JSONLD != "" {
			// JSON-LD is produced by encoding/json, which escapes <, > and &.
			h.raw(`<script type="application/ld+json">`)
			h.raw(meta.JSONLD)
			h.raw(`</script>`)
		}
		h.raw(`</head><body><header class="site-header"><a class="brand" href="/">`)
		h.text(site.Name)
		h.raw(`</a><nav><a href="/new/">New Post</a><a href="/images/">Images</a></nav>`)
		h.raw(`<form class="search" method="get" action="/"><input type="search" name="search" placeholder="Search posts"/><button type="submit">Search</button></form>`)
		h.raw(`</header><main>`)
		if flash != "" {
			h.raw(`<p class="flash">`)
			h.text(flash)
			h.raw(`</p>`)
		}
		h.component(ctx, body)
		h.raw(`</main></body></html>`)
	})
}
