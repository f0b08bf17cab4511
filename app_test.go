package askengine

import (
	"context"
	"fmt"
	"io"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"
)

var testNow = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func textComponent(s string) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		_, err := io.WriteString(w, s)
		return err
	})
}

// testViews renders short markers so tests can tell which view ran.
func testViews() ViewFuncs {
	return ViewFuncs{
		QuestionList: func(v ListView) templ.Component {
			titles := make([]string, len(v.List.Questions))
			for i, q := range v.List.Questions {
				titles[i] = q.Title
			}
			return textComponent("list:" + strings.Join(titles, ","))
		},
		Question: func(v QuestionView) templ.Component {
			return textComponent(fmt.Sprintf("question:%s answers=%d", v.Question.Title, len(v.Answers)))
		},
		NoPermission: func(v MessageView) templ.Component {
			return textComponent(`<div class="ap-no-permission">` + v.HTML + `</div>`)
		},
		Message: func(v MessageView) templ.Component {
			return textComponent("message:" + v.HTML)
		},
		Ask: func(v AskView) templ.Component {
			return textComponent("ask:" + v.Editing.Title)
		},
		AnswerForm: func(v AnswerFormView) templ.Component {
			return textComponent("answer-form:" + v.Question.Title + "|" + v.Editing.Content)
		},
		Login:       func(v LoginView) templ.Component { return textComponent("login") },
		NotFound:    func(v PageView) templ.Component { return textComponent("not-found") },
		ServerError: func(v PageView) templ.Component { return textComponent("server-error") },
	}
}

func newTestApp(t *testing.T, opts ...Option) *App {
	t.Helper()
	dir := t.TempDir()
	cfg := SiteConfig{
		DatabasePath:  filepath.Join(dir, "askengine.db"),
		UploadDir:     filepath.Join(dir, "uploads"),
		SessionSecret: "test-secret",
		LogLevel:      "off",
	}
	opts = append([]Option{WithClock(func() time.Time { return testNow })}, opts...)
	a := New(cfg, testViews(), opts...)
	if err := a.Init(); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	t.Cleanup(func() { a.Close() })
	return a
}

// newContext builds a request context for target as user u.
func newContext(a *App, method, target string, u User) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(method, target, nil)
	rec := httptest.NewRecorder()
	c := a.Echo.NewContext(req, rec)
	if !u.IsGuest() {
		c.Set(userContextKey, u)
	}
	return c, rec
}

func mustUser(t *testing.T, a *App, login string, role Role) User {
	t.Helper()
	u, err := a.Store.CreateUser(context.Background(), login, "", "password123", role)
	if err != nil {
		t.Fatalf("CreateUser(%s) failed: %v", login, err)
	}
	return u
}

func mustPost(t *testing.T, a *App, p Post) Post {
	t.Helper()
	if p.Date.IsZero() {
		p.Date = testNow.Add(-time.Hour)
	}
	id, err := a.Store.SavePost(context.Background(), p)
	if err != nil {
		t.Fatalf("SavePost failed: %v", err)
	}
	got, err := a.Store.GetPost(context.Background(), id)
	if err != nil {
		t.Fatalf("GetPost(%d) failed: %v", id, err)
	}
	return got
}

func mustNonce(t *testing.T, a *App, action string, u User) string {
	t.Helper()
	token, err := a.Nonces.New(action, u)
	if err != nil {
		t.Fatalf("Nonces.New failed: %v", err)
	}
	return token
}
