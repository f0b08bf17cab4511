package askengine

import (
	"html"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/microcosm-cc/bluemonday"
)

var stripPolicy = bluemonday.StrictPolicy()

// sanitizeInput trims s and strips all markup. The strict policy escapes
// the text it keeps, so entities are decoded back to plain text.
func sanitizeInput(s string) string {
	return strings.TrimSpace(html.UnescapeString(stripPolicy.Sanitize(s)))
}

// QueryValue returns the sanitized query parameter key and whether it was present.
func QueryValue(c echo.Context, key string) (string, bool) {
	vals, ok := c.QueryParams()[key]
	if !ok || len(vals) == 0 {
		return "", false
	}
	return sanitizeInput(vals[0]), true
}

// RequestValue looks key up in the query string and then the form body,
// returning the sanitized value and whether it was present.
func RequestValue(c echo.Context, key string) (string, bool) {
	if v, ok := QueryValue(c, key); ok {
		return v, true
	}
	if c.Request().Method == http.MethodGet || c.Request().Method == http.MethodHead {
		return "", false
	}
	form, err := c.FormParams()
	if err != nil {
		return "", false
	}
	vals, ok := form[key]
	if !ok || len(vals) == 0 {
		return "", false
	}
	return sanitizeInput(vals[0]), true
}

// RequestID parses key as a post id. Missing or malformed values yield 0.
func RequestID(c echo.Context, key string) int64 {
	v, _ := RequestValue(c, key)
	id, err := strconv.ParseInt(v, 10, 64)
	if err != nil || id < 0 {
		return 0
	}
	return id
}

// nonceParam carries nonces in links and forms.
const nonceParam = "__nonce"

func requestNonce(c echo.Context) string {
	v, _ := RequestValue(c, nonceParam)
	return v
}
