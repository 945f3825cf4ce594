package views

import (
	"context"
	"strconv"

	"github.com/a-h/templ"
	"github.com/dustin/go-humanize"

	"github.com/eringen/markpost/post"
)

// Index renders the post listing, filtered or not.
func Index(site Site, meta PageMeta, listing post.Listing, cards []PostCard, flash string) templ.Component {
	return layout(site, meta, flash, component(func(ctx context.Context, h *htmlWriter) {
		h.raw(`<h1>`)
		h.text(listing.Heading)
		h.raw(`</h1>`)
		if listing.Searching() {
			h.raw(`<p class="search-meta"><a href="/">Clear search</a></p>`)
		}
		if len(cards) == 0 {
			if listing.Searching() {
				h.raw(`<p class="empty">No posts match your search.</p>`)
			} else {
				h.raw(`<p class="empty">No posts yet. <a href="/new/">Write the first one.</a></p>`)
			}
			return
		}
		h.raw(`<ul class="posts">`)
		for _, c := range cards {
			h.raw(`<li class="post-card"><h2><a href="`)
			h.text(PostPath(c.Post.ID))
			h.raw(`">`)
			h.text(c.Post.Title)
			h.raw(`</a></h2>`)
			byline(h, c.Post)
			if c.Excerpt != "" {
				h.raw(`<p class="excerpt">`)
				h.text(c.Excerpt)
				h.raw(`</p>`)
			}
			h.raw(`</li>`)
		}
		h.raw(`</ul>`)
	}))
}

func byline(h *htmlWriter, p post.Post) {
	h.raw(`<p class="byline">By `)
	h.text(p.Author)
	h.raw(` · <time datetime="`)
	h.text(p.Date())
	h.raw(`">`)
	h.text(p.Date())
	h.raw(`</time> · `)
	h.text(p.ReadTime)
	h.raw(`</p>`)
}

// PostPage renders a single post. body is the sanitized content.
func PostPage(site Site, meta PageMeta, p post.Post, body templ.Component, csrf, flash string) templ.Component {
	return layout(site, meta, flash, component(func(ctx context.Context, h *htmlWriter) {
		h.raw(`<article class="post"><h1>`)
		h.text(p.Title)
		h.raw(`</h1>`)
		byline(h, p)
		h.raw(`<div class="content">`)
		h.component(ctx, body)
		h.raw(`</div></article><div class="actions"><a href="`)
		h.text(EditPath(p.ID))
		h.raw(`">Edit</a><form method="post" action="`)
		h.text(DeletePath(p.ID))
		h.raw(`">`)
		h.csrfField(csrf)
		h.raw(`<button type="submit">Delete</button></form></div>`)
	}))
}

// PostFormPage renders the new or edit form.
func PostFormPage(site Site, form PostForm) templ.Component {
	title := "New Post"
	action := "/new/"
	if form.Editing() {
		title = "Edit Post"
		action = EditPath(form.ID)
	}
	return layout(site, PageMeta{Title: title}, "", component(func(ctx context.Context, h *htmlWriter) {
		h.raw(`<h1>`)
		h.text(title)
		h.raw(`</h1>`)
		if form.Error != "" {
			h.raw(`<p class="error" role="alert">`)
			h.text(form.Error)
			h.raw(`</p>`)
		}
		h.raw(`<form class="post-form" method="post" action="`)
		h.text(action)
		h.raw(`">`)
		h.csrfField(form.CSRF)
		h.raw(`<label>Title <input type="text" name="title" required value="`)
		h.text(form.Title)
		h.raw(`"/></label><label>Author <input type="text" name="author" required value="`)
		h.text(form.Author)
		h.raw(`"/></label><label>Content (Markdown) <textarea name="content" rows="20" required>`)
		h.text(form.Content)
		h.raw(`</textarea></label><button type="submit">`)
		if form.Editing() {
			h.raw(`Save Changes`)
		} else {
			h.raw(`Publish`)
		}
		h.raw(`</button></form>`)
	}))
}

// Images renders the upload form and the image library.
func Images(site Site, images []Image, csrf, flash string) templ.Component {
	return layout(site, PageMeta{Title: "Images"}, flash, component(func(ctx context.Context, h *htmlWriter) {
		h.raw(`<h1>Images</h1><form class="upload" method="post" action="/images/upload/" enctype="multipart/form-data">`)
		h.csrfField(csrf)
		h.raw(`<input type="file" name="image" accept="image/*" required/><button type="submit">Upload</button></form>`)
		if len(images) == 0 {
			h.raw(`<p class="empty">No images uploaded.</p>`)
			return
		}
		h.raw(`<ul class="images">`)
		for _, img := range images {
			h.raw(`<li><img loading="lazy" src="`)
			h.text(img.URL)
			h.raw(`" alt="`)
			h.text(img.Filename)
			h.raw(`" width="`)
			h.raw(strconv.Itoa(img.Width))
			h.raw(`" height="`)
			h.raw(strconv.Itoa(img.Height))
			h.raw(`"/><code>`)
			h.text(img.Markdown())
			h.raw(`</code><span class="size">`)
			h.text(humanize.Bytes(uint64(img.Size)))
			h.raw(`</span><form method="post" action="/images/`)
			h.text(img.Filename)
			h.raw(`/delete/">`)
			h.csrfField(csrf)
			h.raw(`<button type="submit">Delete</button></form></li>`)
		}
		h.raw(`</ul>`)
	}))
}

// NotFound renders the 404 page.
func NotFound(site Site) templ.Component {
	return layout(site, PageMeta{Title: "Not Found"}, "", component(func(ctx context.Context, h *htmlWriter) {
		h.raw(`<h1>Post not found</h1><p><a href="/">Back to all posts</a></p>`)
	}))
}

// ServerError renders the 500 page.
func ServerError(site Site) templ.Component {
	return layout(site, PageMeta{Title: "Error"}, "", component(func(ctx context.Context, h *htmlWriter) {
		h.raw(`<h1>Something went wrong</h1><p>Please try again later.</p>`)
	}))
}
