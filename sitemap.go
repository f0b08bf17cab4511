package askengine

import (
	"encoding/xml"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
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

// renderSitemap lists the indexed pages followed by every published question.
func (a *App) renderSitemap(c echo.Context, questions []Post) error {
	base := a.Config.URL
	var urls []sitemapURL
	for _, p := range a.Pages.Indexed() {
		urls = append(urls, sitemapURL{Loc: BuildURL(base, a.PageLink(p.ID))})
	}
	for _, q := range questions {
		urls = append(urls, sitemapURL{
			Loc:     BuildURL(base, a.Config.BasePath, PageQuestion, strconv.FormatInt(q.ID, 10)),
			LastMod: q.Modified.Format("2006-01-02"),
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
