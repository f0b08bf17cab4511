package askengine

import (
	"encoding/xml"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
)

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
	Title       string `xml:"title"`
	Link        string `xml:"link"`
	Description string `xml:"description"`
	PubDate     string `xml:"pubDate"`
	GUID        string `xml:"guid"`
}

const feedSize = 50

// feedExcerpt keeps RSS descriptions short.
func feedExcerpt(s string) string {
	r := []rune(s)
	if len(r) <= 280 {
		return s
	}
	return string(r[:280]) + "…"
}

func (a *App) renderRSS(c echo.Context, questions []Post) error {
	base := a.Config.URL
	if len(questions) > feedSize {
		questions = questions[:feedSize]
	}
	items := make([]rssItem, 0, len(questions))
	for _, q := range questions {
		link := BuildURL(base, a.Config.BasePath, PageQuestion, strconv.FormatInt(q.ID, 10))
		items = append(items, rssItem{
			Title:       q.Title,
			Link:        link,
			Description: feedExcerpt(q.Content),
			PubDate:     q.Date.Format(time.RFC1123Z),
			GUID:        link,
		})
	}
	feed := rssXML{
		Version: "2.0",
		Channel: rssChannel{
			Title:       a.Config.Name,
			Link:        BuildURL(base, a.Config.BasePath),
			Description: a.Config.Description,
			Items:       items,
		},
	}
	c.Response().Header().Set(echo.HeaderContentType, "application/rss+xml; charset=utf-8")
	c.Response().WriteHeader(http.StatusOK)
	c.Response().Write([]byte(xml.Header))
	return xml.NewEncoder(c.Response()).Encode(feed)
}
