package minipress

import (
	"encoding/xml"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/minipress/minipress/blog"
	"github.com/minipress/minipress/views"
)

// Feeds include at most this many recent posts.
const feedPostLimit = 10

type rssXML struct {
	XMLName xml.Name   `xml:"rss"`
	Version string     `xml:"version,attr"`
	Channel rssChannel `xml:"channel"`
}

type rssChannel struct {
	Title       string    `xml:"title"`
	Link        string    `xml:"link"`
	Description string    `xml:"description"`
	Items       []rssItem `xml:"item"`
}

type rssItem struct {
	Title       string   `xml:"title"`
	Link        string   `xml:"link"`
	Description string   `xml:"description"`
	PubDate     string   `xml:"pubDate"`
	GUID        string   `xml:"guid"`
	Categories  []string `xml:"category,omitempty"`
}

type atomFeed struct {
	XMLName  xml.Name    `xml:"feed"`
	XMLNS    string      `xml:"xmlns,attr"`
	Title    string      `xml:"title"`
	ID       string      `xml:"id"`
	Updated  string      `xml:"updated"`
	Link     atomLink    `xml:"link"`
	Author   *atomPerson `xml:"author,omitempty"`
	Subtitle string      `xml:"subtitle,omitempty"`
	Entries  []atomEntry `xml:"entry"`
}

type atomLink struct {
	Href string `xml:"href,attr"`
	Rel  string `xml:"rel,attr,omitempty"`
}

type atomPerson struct {
	Name string `xml:"name"`
}

type atomEntry struct {
	Title   string      `xml:"title"`
	ID      string      `xml:"id"`
	Link    atomLink    `xml:"link"`
	Updated string      `xml:"updated"`
	Summary string      `xml:"summary,omitempty"`
	Content atomContent `xml:"content"`
}

type atomContent struct {
	Type string `xml:"type,attr"`
	Body string `xml:",chardata"`
}

func (a *App) handleRssFeed(c echo.Context) error {
	posts, err := a.feedPosts(c)
	if err != nil {
		return err
	}
	base := a.Config.URL
	items := make([]rssItem, 0, len(posts))
	for _, p := range posts {
		postURL := views.BuildURL(base, "blog", p.Slug)
		items = append(items, rssItem{
			Title:       p.Title,
			Link:        postURL,
			Description: p.Excerpt,
			PubDate:     p.PubDate.Format(time.RFC1123Z),
			GUID:        postURL,
			Categories:  p.Categories,
		})
	}
	feed := rssXML{
		Version: "2.0",
		Channel: rssChannel{
			Title:       a.Config.Name,
			Link:        base,
			Description: a.Config.Description,
			Items:       items,
		},
	}
	return writeXML(c, "application/rss+xml; charset=utf-8", feed)
}

func (a *App) handleAtomFeed(c echo.Context) error {
	posts, err := a.feedPosts(c)
	if err != nil {
		return err
	}
	base := a.Config.URL
	updated := time.Now().UTC()
	if len(posts) > 0 {
		updated = posts[0].PubDate
	}
	entries := make([]atomEntry, 0, len(posts))
	for _, p := range posts {
		postURL := views.BuildURL(base, "blog", p.Slug)
		entries = append(entries, atomEntry{
			Title:   p.Title,
			ID:      postURL,
			Link:    atomLink{Href: postURL},
			Updated: p.LastModified.Format(time.RFC3339),
			Summary: p.Excerpt,
			Content: atomContent{Type: "html", Body: blog.RenderContent(p.Content)},
		})
	}
	feed := atomFeed{
		XMLNS:    "http://www.w3.org/2005/Atom",
		Title:    a.Config.Name,
		ID:       views.BuildURL(base),
		Updated:  updated.Format(time.RFC3339),
		Link:     atomLink{Href: strings.TrimRight(base, "/") + "/feed/atom", Rel: "self"},
		Subtitle: a.Config.Description,
		Entries:  entries,
	}
	if a.Config.Author != "" {
		feed.Author = &atomPerson{Name: a.Config.Author}
	}
	return writeXML(c, "application/atom+xml; charset=utf-8", feed)
}

func (a *App) feedPosts(c echo.Context) ([]*blog.Post, error) {
	posts, err := a.Cache.Published(c.Request().Context())
	if err != nil {
		return nil, err
	}
	if len(posts) > feedPostLimit {
		posts = posts[:feedPostLimit]
	}
	return posts, nil
}

func writeXML(c echo.Context, contentType string, doc any) error {
	c.Response().Header().Set(echo.HeaderContentType, contentType)
	c.Response().WriteHeader(http.StatusOK)
	if _, err := c.Response().Write([]byte(xml.Header)); err != nil {
		return err
	}
	return xml.NewEncoder(c.Response()).Encode(doc)
}
