package markpost

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/eringen/markpost/post"
	"github.com/eringen/markpost/views"
)

const formErrorMessage = "All fields are required."

// parseID reads the :id route parameter. Malformed ids are reported as
// post.ErrNotFound so callers treat them like missing posts.
func parseID(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, post.ErrNotFound
	}
	return id, nil
}

func postInput(c echo.Context) post.Input {
	return post.Input{
		Title:   c.FormValue("title"),
		Author:  c.FormValue("author"),
		Content: c.FormValue("content"),
	}
}

func (a *App) cards(posts []post.Post) []views.PostCard {
	cards := make([]views.PostCard, len(posts))
	for i, p := range posts {
		cards[i] = views.PostCard{Post: p, Excerpt: a.Renderer.Excerpt(p.Content, a.Config.ExcerptLength)}
	}
	return cards
}

func (a *App) handleIndex(c echo.Context) error {
	listing := post.NewListing(a.Store.List(), c.QueryParam("search"))
	meta := views.PageMeta{
		Title:  listing.Heading,
		URL:    BuildURL(a.Config.URL),
		JSONLD: WebsiteJsonLD(a.Config),
	}
	flash := popFlash(c)
	return Render(c, a.Views.Index(a.site(), meta, listing, a.cards(listing.Posts), flash))
}

func (a *App) handlePost(c echo.Context) error {
	id, err := parseID(c)
	if err == nil {
		var p post.Post
		if p, err = a.Store.Get(id); err == nil {
			meta := views.PageMeta{
				Title:       p.Title,
				Description: a.Renderer.Excerpt(p.Content, 160),
				URL:         PostURL(a.Config.URL, p.ID),
				OGType:      "article",
				JSONLD:      BlogPostingJsonLD(p, a.Config),
			}
			flash := popFlash(c)
			return Render(c, a.Views.Post(a.site(), meta, p, a.Renderer.Component(p.Content), CsrfToken(c), flash))
		}
	}
	if errors.Is(err, post.ErrNotFound) {
		return RenderStatus(c, http.StatusNotFound, a.Views.NotFound(a.site()))
	}
	return err
}

func (a *App) handleNewPost(c echo.Context) error {
	return Render(c, a.Views.PostForm(a.site(), views.PostForm{CSRF: CsrfToken(c)}))
}

func (a *App) handleCreatePost(c echo.Context) error {
	in := postInput(c)
	p, err := a.Store.Create(in)
	var verr *post.ValidationError
	if errors.As(err, &verr) {
		return a.renderFormError(c, 0, in)
	}
	if err != nil {
		return err
	}
	c.Logger().Infof("created post %d", p.ID)
	if err := setFlash(c, "Post created."); err != nil {
		return err
	}
	return c.Redirect(http.StatusSeeOther, "/")
}

func (a *App) handleEditPost(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return c.Redirect(http.StatusSeeOther, "/")
	}
	p, err := a.Store.Get(id)
	if err != nil {
		return c.Redirect(http.StatusSeeOther, "/")
	}
	return Render(c, a.Views.PostForm(a.site(), views.PostForm{
		ID:      p.ID,
		Title:   p.Title,
		Author:  p.Author,
		Content: p.Content,
		CSRF:    CsrfToken(c),
	}))
}

func (a *App) handleUpdatePost(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return c.Redirect(http.StatusSeeOther, "/")
	}
	in := postInput(c)
	p, err := a.Store.Update(id, in)
	var verr *post.ValidationError
	switch {
	case errors.Is(err, post.ErrNotFound):
		return c.Redirect(http.StatusSeeOther, "/")
	case errors.As(err, &verr):
		return a.renderFormError(c, id, in)
	case err != nil:
		return err
	}
	c.Logger().Infof("updated post %d", p.ID)
	if err := setFlash(c, "Post updated."); err != nil {
		return err
	}
	return c.Redirect(http.StatusSeeOther, views.PostPath(p.ID))
}

func (a *App) handleDeletePost(c echo.Context) error {
	if id, err := parseID(c); err == nil {
		a.Store.Delete(id)
		c.Logger().Infof("deleted post %d", id)
	}
	if err := setFlash(c, "Post deleted."); err != nil {
		return err
	}
	return c.Redirect(http.StatusSeeOther, "/")
}

func (a *App) renderFormError(c echo.Context, id int64, in post.Input) error {
	return RenderStatus(c, http.StatusUnprocessableEntity, a.Views.PostForm(a.site(), views.PostForm{
		ID:      id,
		Title:   in.Title,
		Author:  in.Author,
		Content: in.Content,
		Error:   formErrorMessage,
		CSRF:    CsrfToken(c),
	}))
}

func (a *App) handleSitemap(c echo.Context) error {
	return a.renderSitemap(c, a.Store.List())
}

func (a *App) handleFeed(c echo.Context) error {
	return a.renderRSS(c, a.Store.List())
}

func (a *App) handleRobots(c echo.Context) error {
	body := fmt.Sprintf("User-agent: *\nAllow: /\nDisallow: /new/\nDisallow: /edit/\nDisallow: /images/\n\nSitemap: %s/sitemap.xml\n", a.Config.URL)
	return c.String(http.StatusOK, body)
}

func (a *App) httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	he, ok := err.(*echo.HTTPError)
	if ok && he.Code == http.StatusNotFound && !isAPIRequest(c) {
		_ = RenderStatus(c, http.StatusNotFound, a.Views.NotFound(a.site()))
		return
	}
	code := http.StatusInternalServerError
	if ok {
		code = he.Code
	}
	if code >= 500 {
		c.Logger().Errorf("server error: %v", err)
		if !isAPIRequest(c) {
			_ = RenderStatus(c, code, a.Views.ServerError(a.site()))
			return
		}
	}
	a.Echo.DefaultHTTPErrorHandler(err, c)
}
