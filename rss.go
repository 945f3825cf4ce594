package markpost

import (
	"encoding/xml"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/eringen/markpost/post"
)

type rssXML struct {
	XMLName xml.Name   `xml:"rss"`
	Version string     `xml:"version,attr"`
	Channel rssChannel `xml:"channel"`
}

type rssChannel struct {
	Title         string    `xml:"title"`
	Link          string    `xml:"link"`
	Description   string    `xml:"description"`
	LastBuildDate string    `xml:"lastBuildDate,omitempty"`
	Generator     string    `xml:"generator"`
	Items         []rssItem `xml:"item"`
}

// feedSize caps the feed to the newest posts.
const feedSize = 20

type rssItem struct {
	Title       string `xml:"title"`
	Link        string `xml:"link"`
	Description string `xml:"description"`
	PubDate     string `xml:"pubDate"`
	GUID        string `xml:"guid"`
}

// renderRSS writes an RSS 2.0 feed of posts, which must be newest first.
func (a *App) renderRSS(c echo.Context, posts []post.Post) error {
	base := a.Config.URL
	if len(posts) > feedSize {
		posts = posts[:feedSize]
	}
	var built string
	if len(posts) > 0 {
		built = posts[0].CreatedAt.Format(time.RFC1123Z)
	}
	items := make([]rssItem, 0, len(posts))
	for _, p := range posts {
		postURL := PostURL(base, p.ID)
		items = append(items, rssItem{
			Title:       p.Title,
			Link:        postURL,
			Description: a.Renderer.Excerpt(p.Content, a.Config.ExcerptLength),
			PubDate:     p.CreatedAt.Format(time.RFC1123Z),
			GUID:        postURL,
		})
	}
	feed := rssXML{
		Version: "2.0",
		Channel: rssChannel{
			Title:         a.Config.Name,
			Link:          BuildURL(base),
			Description:   a.Config.Description,
			LastBuildDate: built,
			Generator:     "markpost",
			Items:         items,
		},
	}
	c.Response().Header().Set(echo.HeaderContentType, "application/rss+xml; charset=utf-8")
	c.Response().WriteHeader(http.StatusOK)
	c.Response().Write([]byte(xml.Header))
	return xml.NewEncoder(c.Response()).Encode(feed)
}
