package views

import "github.com/eringen/markpost/post"

// Site holds site-wide settings every page needs.
type Site struct {
	Name        string
	URL         string
	Description string
}

// PageMeta carries per-page OpenGraph and SEO metadata into the <head> template.
type PageMeta struct {
	Title       string
	Description string
	URL         string // canonical + og:url
	OGType      string // "website" or "article"
	JSONLD      string
}

// PostCard is a post as shown in the listing.
type PostCard struct {
	Post    post.Post
	Excerpt string
}

// PostForm is the state of the new/edit form. Error is shown above the
// fields when a submission was rejected.
type PostForm struct {
	ID      int64 // zero for a new post
	Title   string
	Author  string
	Content string
	Error   string
	CSRF    string
}

// Editing reports whether the form edits an existing post.
func (f PostForm) Editing() bool {
	return f.ID != 0
}

// Image is an uploaded image available for use in post content.
type Image struct {
	Filename   string
	URL        string
	Width      int
	Height     int
	Size       int64
	UploadedAt string
}

// Markdown returns the snippet to paste into post content.
func (i Image) Markdown() string {
	return "![" + i.Filename + "](" + i.URL + ")"
}
