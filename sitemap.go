package minipress

import (
	"encoding/xml"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/minipress/minipress/views"
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

func (a *App) handleSitemap(c echo.Context) error {
	posts, err := a.Cache.Published(c.Request().Context())
	if err != nil {
		return err
	}
	base := a.Config.URL
	urls := []sitemapURL{
		{Loc: views.BuildURL(base)},
	}
	for _, p := range posts {
		urls = append(urls, sitemapURL{
			Loc:     views.BuildURL(base, "blog", p.Slug),
			LastMod: p.LastModified.Format(time.RFC3339),
		})
	}
	sitemap := sitemapURLSet{
		XMLNS: "http://www.sitemaps.org/schemas/sitemap/0.9",
		URLs:  urls,
	}
	return writeXML(c, "application/xml; charset=utf-8", sitemap)
}

func (a *App) handleRobots(c echo.Context) error {
	body := "User-agent: *\nDisallow:\nSitemap: " + strings.TrimRight(a.Config.URL, "/") + "/sitemap.xml\n"
	return c.String(200, body)
}

// Really Simple Discovery document so MetaWeblog clients can find the
// XML-RPC endpoint from the site URL alone.
type rsdXML struct {
	XMLName xml.Name   `xml:"rsd"`
	Version string     `xml:"version,attr"`
	Service rsdService `xml:"service"`
}

type rsdService struct {
	EngineName   string   `xml:"engineName"`
	EngineLink   string   `xml:"engineLink"`
	HomePageLink string   `xml:"homePageLink"`
	APIs         []rsdAPI `xml:"apis>api"`
}

type rsdAPI struct {
	Name      string `xml:"name,attr"`
	Preferred string `xml:"preferred,attr"`
	APILink   string `xml:"apiLink,attr"`
	BlogID    string `xml:"blogID,attr"`
}

func (a *App) handleRsd(c echo.Context) error {
	doc := rsdXML{
		Version: "1.0",
		Service: rsdService{
			EngineName:   "minipress",
			EngineLink:   "https://github.com/minipress/minipress",
			HomePageLink: a.Config.URL,
			APIs: []rsdAPI{{
				Name:      "MetaWeblog",
				Preferred: "true",
				APILink:   a.Config.URL + "/metaweblog",
				BlogID:    "1",
			}},
		},
	}
	return writeXML(c, "application/xml; charset=utf-8", doc)
}
