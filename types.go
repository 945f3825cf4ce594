package markpost

import (
	"github.com/a-h/templ"

	"github.com/eringen/markpost/post"
	"github.com/eringen/markpost/views"
)

// ViewFuncs holds the templ components the handlers render. DefaultViews
// provides the built-in set; WithViews swaps in custom ones.
type ViewFuncs struct {
	Index       func(site views.Site, meta views.PageMeta, listing post.Listing, cards []views.PostCard, flash string) templ.Component
	Post        func(site views.Site, meta views.PageMeta, p post.Post, body templ.Component, csrf, flash string) templ.Component
	PostForm    func(site views.Site, form views.PostForm) templ.Component
	Images      func(site views.Site, images []views.Image, csrf, flash string) templ.Component
	NotFound    func(site views.Site) templ.Component
	ServerError func(site views.Site) templ.Component
}

// DefaultViews returns the built-in templates.
func DefaultViews() ViewFuncs {
	return ViewFuncs{
		Index:       views.Index,
		Post:        views.PostPage,
		PostForm:    views.PostFormPage,
		Images:      views.Images,
		NotFound:    views.NotFound,
		ServerError: views.ServerError,
	}
}
