// Package markdown turns untrusted post content into HTML that is safe to
// embed in a page: goldmark renders it, then bluemonday sanitizes the result.
package markdown

import (
	"bytes"
	"context"
	"fmt"
	"html"
	"io"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/a-h/templ"
	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	gmhtml "github.com/yuin/goldmark/renderer/html"
)

var reCodeLanguage = regexp.MustCompile(`^language-[a-zA-Z0-9_+-]+$`)

// Renderer converts markdown to sanitized HTML. It is safe for concurrent use
// and keeps no cache: every call renders from the source.
type Renderer struct {
	md     goldmark.Markdown
	policy *bluemonday.Policy
	strict *bluemonday.Policy
}

// NewRenderer returns a Renderer with GFM extensions and a user-generated
// content allow-list.
func NewRenderer() *Renderer {
	policy := bluemonday.UGCPolicy()
	policy.AllowAttrs("class").Matching(reCodeLanguage).OnElements("code")
	policy.AllowURLSchemes("http", "https", "mailto", "tel")
	policy.RequireNoFollowOnLinks(true)

	return &Renderer{
		md: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			// Raw HTML is kept here and filtered by the policy afterwards,
			// so inline formatting tags in posts survive.
			goldmark.WithRendererOptions(gmhtml.WithUnsafe()),
		),
		policy: policy,
		strict: bluemonday.StrictPolicy(),
	}
}

// Render returns the sanitized HTML for src.
func (r *Renderer) Render(src string) (string, error) {
	var buf bytes.Buffer
	if err := r.md.Convert([]byte(src), &buf); err != nil {
		return "", fmt.Errorf("markdown parse: %w", err)
	}
	return string(r.policy.SanitizeBytes(buf.Bytes())), nil
}

// Component returns a templ.Component that renders src as sanitized HTML.
func (r *Renderer) Component(src string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		out, err := r.Render(src)
		if err != nil {
			return err
		}
		_, err = io.WriteString(w, out)
		return err
	})
}

// Excerpt returns the plain text of src, whitespace collapsed, cut to at most
// max runes on a word boundary. Truncated text ends with "…".
func (r *Renderer) Excerpt(src string, max int) string {
	var buf bytes.Buffer
	if err := r.md.Convert([]byte(src), &buf); err != nil {
		return ""
	}
	text := html.UnescapeString(r.strict.Sanitize(buf.String()))
	text = strings.Join(strings.Fields(text), " ")
	return Truncate(text, max)
}

// Truncate cuts s to at most max runes, preferring the last space before the
// limit, and appends "…" when anything was removed.
func Truncate(s string, max int) string {
	if max <= 0 || utf8.RuneCountInString(s) <= max {
		return s
	}
	runes := []rune(s)
	cut := string(runes[:max])
	if !unicode.IsSpace(runes[max]) {
		if i := strings.LastIndex(cut, " "); i > 0 {
			cut = cut[:i]
		}
	}
	return strings.TrimRight(cut, " .,;:") + "…"
}
