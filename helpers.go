package askengine

import (
	"net/url"
	"path"
	"strconv"
	"strings"
)

// LinkTo returns the site-relative path of segments under the base path,
// with a trailing slash.
func (a *App) LinkTo(segments ...string) string {
	p := path.Join(append([]string{"/", a.Config.BasePath}, segments...)...)
	if !strings.HasSuffix(p, "/") {
		p += "/"
	}
	return p
}

// PageLink returns the path of a registered page.
func (a *App) PageLink(id string) string {
	if id == PageBase {
		return a.LinkTo()
	}
	return a.LinkTo(id)
}

// QuestionLink returns the path of a question.
func (a *App) QuestionLink(id int64) string {
	return a.LinkTo(PageQuestion, strconv.FormatInt(id, 10))
}

// withQuery appends vals to link, dropping empty values.
func withQuery(link string, vals url.Values) string {
	for k, v := range vals {
		if len(v) == 0 || v[0] == "" {
			delete(vals, k)
		}
	}
	if len(vals) == 0 {
		return link
	}
	return link + "?" + vals.Encode()
}

// editLink returns a nonce-protected link to page for post id.
func (a *App) editLink(page string, id int64, nonce string) string {
	return withQuery(a.PageLink(page), url.Values{
		"id":       {strconv.FormatInt(id, 10)},
		nonceParam: {nonce},
	})
}

// BuildURL joins a base URL with path segments, ensuring a trailing slash.
func BuildURL(base string, pathSegments ...string) string {
	u, err := url.Parse(base)
	if err != nil {
		return base
	}
	u.Path = path.Join(u.Path, path.Join(pathSegments...))
	if len(pathSegments) > 0 && !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}
	return u.String()
}

// FilterEmpty removes empty/whitespace-only strings from a slice.
func FilterEmpty(vals []string) []string {
	var out []string
	for _, v := range vals {
		if s := strings.TrimSpace(v); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// splitTags parses a comma separated tag list.
func splitTags(s string) []string {
	return FilterEmpty(strings.Split(s, ","))
}
