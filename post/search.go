package post

import (
	"strings"
)

// Filter keeps the posts whose title or content contains term, ignoring case.
// A blank term returns posts unchanged. Order is preserved.
func Filter(posts []Post, term string) []Post {
	if strings.TrimSpace(term) == "" {
		return posts
	}
	needle := strings.ToLower(term)
	matched := make([]Post, 0, len(posts))
	for _, p := range posts {
		if strings.Contains(strings.ToLower(p.Title), needle) ||
			strings.Contains(strings.ToLower(p.Content), needle) {
			matched = append(matched, p)
		}
	}
	return matched
}

// Listing is a possibly filtered list of posts with the heading to show above it.
type Listing struct {
	Heading string
	Query   string
	Posts   []Post
}

// Searching reports whether the listing was filtered.
func (l Listing) Searching() bool {
	return strings.TrimSpace(l.Query) != ""
}

// NewListing filters posts by term and picks the matching heading.
func NewListing(posts []Post, term string) Listing {
	l := Listing{
		Heading: "All Posts",
		Query:   term,
		Posts:   Filter(posts, term),
	}
	if l.Searching() {
		l.Heading = `Search Results for "` + term + `"`
	}
	return l
}
