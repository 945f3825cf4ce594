package markpost

import (
	"encoding/xml"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/eringen/markpost/post"
)

type sitemapURLSet struct {
	XMLName xml.Name     `xml:"urlset"`
	XMLNS   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

type sitemapURL struct {
	Loc     string `xml:"loc"`
	LastMod string `xml:"lastmod,omitempty"`
}

func (a *App) renderSitemap(c echo.Context, posts []post.Post) error {
	base := a.Config.URL
	urls := make([]sitemapURL, 0, len(posts)+1)
	home := sitemapURL{Loc: BuildURL(base)}
	if len(posts) > 0 {
		// Listing is newest first.
		home.LastMod = posts[0].Date()
	}
	urls = append(urls, home)
	for _, p := range posts {
		urls = append(urls, sitemapURL{
			Loc:     PostURL(base, p.ID),
			LastMod: p.Date(),
		})
	}
	sitemap := sitemapURLSet{
		XMLNS: "http://www.sitemaps.org/schemas/sitemap/0.9",
		URLs:  urls,
	}
	c.Response().Header().Set(echo.HeaderContentType, "application/xml; charset=utf-8")
	c.Response().WriteHeader(http.StatusOK)
	c.Response().Write([]byte(xml.Header))
	return xml.NewEncoder(c.Response()).Encode(sitemap)
}
