package markpost

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/eringen/markpost/post"
)

type apiListing struct {
	Heading string      `json:"heading"`
	Query   string      `json:"query,omitempty"`
	Posts   []post.Post `json:"posts"`
}

type apiPost struct {
	post.Post
	HTML string `json:"html"`
	URL  string `json:"url"`
}

type apiError struct {
	Error string `json:"error"`
}

func isAPIRequest(c echo.Context) bool {
	return strings.HasPrefix(c.Request().URL.Path, "/api/")
}

func (a *App) handleAPIList(c echo.Context) error {
	listing := post.NewListing(a.Store.List(), c.QueryParam("search"))
	return c.JSON(http.StatusOK, apiListing{
		Heading: listing.Heading,
		Query:   listing.Query,
		Posts:   listing.Posts,
	})
}

func (a *App) handleAPIPost(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return c.JSON(http.StatusNotFound, apiError{Error: "post not found"})
	}
	p, err := a.Store.Get(id)
	if err != nil {
		return c.JSON(http.StatusNotFound, apiError{Error: "post not found"})
	}
	body, err := a.Renderer.Render(p.Content)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, apiPost{Post: p, HTML: body, URL: PostURL(a.Config.URL, p.ID)})
}
