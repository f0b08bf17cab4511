package askengine

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
)

// newFormContext builds a form POST context for target as user u.
func newFormContext(a *App, target string, form url.Values, u User) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	rec := httptest.NewRecorder()
	c := a.Echo.NewContext(req, rec)
	if !u.IsGuest() {
		c.Set(userContextKey, u)
	}
	return c, rec
}

func TestAskSubmitRequiresLogin(t *testing.T) {
	a := newTestApp(t)
	c, rec := newFormContext(a, "/questions/ask/", url.Values{"title": {"t"}, "content": {"c"}}, User{})

	if err := a.handleAskSubmit(c); err != nil {
		t.Fatalf("handleAskSubmit error: %v", err)
	}
	if rec.Code != http.StatusForbidden {
		t.Errorf("status = %d, want 403", rec.Code)
	}
}

func TestAskSubmitCreatesQuestion(t *testing.T) {
	a := newTestApp(t)
	u := mustUser(t, a, "alice", RoleSubscriber)
	form := url.Values{"title": {"<b>Why</b> Go?"}, "content": {"Because."}, "tags": {"Go, web"}}
	c, rec := newFormContext(a, "/questions/ask/", form, u)

	if err := a.handleAskSubmit(c); err != nil {
		t.Fatalf("handleAskSubmit error: %v", err)
	}
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want 303", rec.Code)
	}
	loc := rec.Header().Get(echo.HeaderLocation)
	id, err := strconv.ParseInt(strings.Trim(strings.TrimPrefix(loc, "/questions/question/"), "/"), 10, 64)
	if err != nil {
		t.Fatalf("Location = %q, want question link", loc)
	}

	q, err := a.Store.GetPost(context.Background(), id)
	if err != nil {
		t.Fatalf("GetPost failed: %v", err)
	}
	if q.Title != "Why Go?" || q.Status != StatusPublish || q.AuthorID != u.ID {
		t.Errorf("saved question = %+v", q)
	}
	if len(q.Tags) != 2 || q.Tags[0] != "go" {
		t.Errorf("Tags = %v, want [go web]", q.Tags)
	}
	if !q.Date.Equal(testNow) {
		t.Errorf("Date = %v, want %v", q.Date, testNow)
	}
}

func TestAskSubmitModeration(t *testing.T) {
	a := newTestApp(t)
	a.Config.ModerateNewQuestions = true

	if got := a.newQuestionStatus(User{ID: 1, Role: RoleSubscriber}); got != StatusModerate {
		t.Errorf("subscriber status = %q, want moderate", got)
	}
	if got := a.newQuestionStatus(User{ID: 2, Role: RoleModerator}); got != StatusPublish {
		t.Errorf("moderator status = %q, want publish", got)
	}
}

func TestAskSubmitValidation(t *testing.T) {
	a := newTestApp(t)
	u := mustUser(t, a, "alice", RoleSubscriber)
	c, rec := newFormContext(a, "/questions/ask/", url.Values{"title": {" "}, "content": {"body"}}, u)

	if err := a.handleAskSubmit(c); err != nil {
		t.Fatalf("handleAskSubmit error: %v", err)
	}
	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("status = %d, want 422", rec.Code)
	}
}

func TestAskSubmitEditNeedsNonce(t *testing.T) {
	a := newTestApp(t)
	u := mustUser(t, a, "alice", RoleSubscriber)
	q := mustPost(t, a, Post{Type: PostTypeQuestion, Title: "Old", Content: "x", AuthorID: u.ID})
	id := strconv.FormatInt(q.ID, 10)

	c, rec := newFormContext(a, "/questions/ask/", url.Values{"id": {id}, "title": {"New"}, "content": {"y"}}, u)
	if err := a.handleAskSubmit(c); err != nil {
		t.Fatalf("handleAskSubmit error: %v", err)
	}
	if !strings.HasPrefix(rec.Body.String(), "message:") {
		t.Errorf("body = %q, want error message", rec.Body.String())
	}

	form := url.Values{"id": {id}, nonceParam: {mustNonce(t, a, EditPostAction(q.ID), u)}, "title": {"New"}, "content": {"y"}}
	c, rec = newFormContext(a, "/questions/ask/", form, u)
	if err := a.handleAskSubmit(c); err != nil {
		t.Fatalf("handleAskSubmit error: %v", err)
	}
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want 303", rec.Code)
	}
	got, _ := a.Store.GetPost(context.Background(), q.ID)
	if got.Title != "New" {
		t.Errorf("Title = %q, want New", got.Title)
	}
}

func TestAnswerSubmit(t *testing.T) {
	a := newTestApp(t)
	u := mustUser(t, a, "alice", RoleSubscriber)
	q := mustPost(t, a, Post{Type: PostTypeQuestion, Title: "Q", Status: StatusPublish})
	held := mustPost(t, a, Post{Type: PostTypeQuestion, Title: "Held", Status: StatusModerate})

	c, rec := newFormContext(a, "/questions/answer/", url.Values{"question_id": {strconv.FormatInt(q.ID, 10)}, "content": {"An answer"}}, u)
	if err := a.handleAnswerSubmit(c); err != nil {
		t.Fatalf("handleAnswerSubmit error: %v", err)
	}
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want 303", rec.Code)
	}
	answers, err := a.Store.ListAnswers(context.Background(), q.ID)
	if err != nil || len(answers) != 1 || answers[0].Content != "An answer" {
		t.Fatalf("answers = %v, %v", answers, err)
	}

	c, rec = newFormContext(a, "/questions/answer/", url.Values{"question_id": {strconv.FormatInt(held.ID, 10)}, "content": {"x"}}, u)
	if err := a.handleAnswerSubmit(c); err != nil {
		t.Fatalf("handleAnswerSubmit error: %v", err)
	}
	if rec.Code != http.StatusForbidden {
		t.Errorf("answer to held question: status = %d, want 403", rec.Code)
	}
}

func TestAnswerSubmitEditChecks(t *testing.T) {
	a := newTestApp(t)
	author := mustUser(t, a, "alice", RoleSubscriber)
	other := mustUser(t, a, "bob", RoleSubscriber)
	q := mustPost(t, a, Post{Type: PostTypeQuestion, Title: "Q", Status: StatusPublish})
	ans := mustPost(t, a, Post{Type: PostTypeAnswer, ParentID: q.ID, Content: "v1", Status: StatusPublish, AuthorID: author.ID})
	qid, id := strconv.FormatInt(q.ID, 10), strconv.FormatInt(ans.ID, 10)

	form := url.Values{"question_id": {qid}, "id": {id}, nonceParam: {mustNonce(t, a, EditPostAction(ans.ID), other)}, "content": {"hijack"}}
	c, rec := newFormContext(a, "/questions/answer/", form, other)
	if err := a.handleAnswerSubmit(c); err != nil {
		t.Fatalf("handleAnswerSubmit error: %v", err)
	}
	if rec.Code != http.StatusForbidden {
		t.Errorf("other user edit: status = %d, want 403", rec.Code)
	}

	form = url.Values{"question_id": {qid}, "id": {id}, nonceParam: {mustNonce(t, a, EditPostAction(ans.ID), author)}, "content": {"v2"}}
	c, rec = newFormContext(a, "/questions/answer/", form, author)
	if err := a.handleAnswerSubmit(c); err != nil {
		t.Fatalf("handleAnswerSubmit error: %v", err)
	}
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("author edit: status = %d, want 303", rec.Code)
	}
	got, _ := a.Store.GetPost(context.Background(), ans.ID)
	if got.Content != "v2" {
		t.Errorf("Content = %q, want v2", got.Content)
	}
}

func TestPublicRoutes(t *testing.T) {
	a := newTestApp(t)
	mustPost(t, a, Post{Type: PostTypeQuestion, Title: "Indexed question", Content: "body", Status: StatusPublish})
	mustPost(t, a, Post{Type: PostTypeQuestion, Title: "Hidden question", Status: StatusModerate})

	tests := []struct {
		path     string
		code     int
		contains string
		absent   string
	}{
		{"/", http.StatusFound, "", ""},
		{"/robots.txt", http.StatusOK, "Disallow: /questions/edit/", ""},
		{"/sitemap.xml", http.StatusOK, "/questions/ask/", ""},
		{"/feed.xml", http.StatusOK, "Indexed question", "Hidden question"},
		{"/questions/", http.StatusOK, "list:Indexed question", "Hidden"},
		{"/questions/search/?ap_s=x", http.StatusFound, "", ""},
		{"/questions/unknown/", http.StatusNotFound, "not-found", ""},
	}
	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodGet, tt.path, nil)
		rec := httptest.NewRecorder()
		a.Echo.ServeHTTP(rec, req)

		if rec.Code != tt.code {
			t.Errorf("GET %s status = %d, want %d", tt.path, rec.Code, tt.code)
		}
		body := rec.Body.String()
		if tt.contains != "" && !strings.Contains(body, tt.contains) {
			t.Errorf("GET %s body missing %q", tt.path, tt.contains)
		}
		if tt.absent != "" && strings.Contains(body, tt.absent) {
			t.Errorf("GET %s body contains %q", tt.path, tt.absent)
		}
	}
}

func TestSafeRedirect(t *testing.T) {
	a := newTestApp(t)
	tests := map[string]string{
		"/questions/ask/":      "/questions/ask/",
		"//evil.example":       "/questions/",
		"https://evil.example": "/questions/",
		`/\evil`:               "/questions/",
		"":                     "/questions/",
	}
	for in, want := range tests {
		if got := a.safeRedirect(in); got != want {
			t.Errorf("safeRedirect(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestAskSubmitStatus(t *testing.T) {
	a := newTestApp(t)
	a.Config.ModerateNewQuestions = true
	author := mustUser(t, a, "alice", RoleSubscriber)
	mod := mustUser(t, a, "mod", RoleModerator)
	q := mustPost(t, a, Post{Type: PostTypeQuestion, Title: "Held", Content: "x", Status: StatusModerate, AuthorID: author.ID})
	id := strconv.FormatInt(q.ID, 10)

	tests := []struct {
		name   string
		user   User
		status string
		want   PostStatus
	}{
		{"author cannot publish", author, "publish", StatusModerate},
		{"moderator publishes", mod, "publish", StatusPublish},
		{"moderator cannot schedule", mod, "future", StatusPublish},
		{"unknown status ignored", mod, "bogus", StatusPublish},
		{"moderator drafts", mod, "draft", StatusDraft},
	}
	for _, tt := range tests {
		form := url.Values{
			"id":       {id},
			nonceParam: {mustNonce(t, a, EditPostAction(q.ID), tt.user)},
			"title":    {"Held"},
			"content":  {"x"},
			"status":   {tt.status},
		}
		c, rec := newFormContext(a, "/questions/ask/", form, tt.user)
		if err := a.handleAskSubmit(c); err != nil {
			t.Fatalf("%s: handleAskSubmit error: %v", tt.name, err)
		}
		if rec.Code != http.StatusSeeOther {
			t.Fatalf("%s: status code = %d, want 303", tt.name, rec.Code)
		}
		got, err := a.Store.GetPost(context.Background(), q.ID)
		if err != nil {
			t.Fatalf("GetPost failed: %v", err)
		}
		if got.Status != tt.want {
			t.Errorf("%s: stored status = %q, want %q", tt.name, got.Status, tt.want)
		}
	}
}

func TestAskSubmitNewQuestionStatusFromSubscriberIgnored(t *testing.T) {
	a := newTestApp(t)
	a.Config.ModerateNewQuestions = true
	u := mustUser(t, a, "alice", RoleSubscriber)
	form := url.Values{"title": {"Mine"}, "content": {"body"}, "status": {"publish"}}
	c, rec := newFormContext(a, "/questions/ask/", form, u)

	if err := a.handleAskSubmit(c); err != nil {
		t.Fatalf("handleAskSubmit error: %v", err)
	}
	loc := rec.Header().Get(echo.HeaderLocation)
	id, err := strconv.ParseInt(strings.Trim(strings.TrimPrefix(loc, "/questions/question/"), "/"), 10, 64)
	if err != nil {
		t.Fatalf("Location = %q, want question link", loc)
	}
	got, err := a.Store.GetPost(context.Background(), id)
	if err != nil {
		t.Fatalf("GetPost failed: %v", err)
	}
	if got.Status != StatusModerate {
		t.Errorf("status = %q, want moderate", got.Status)
	}
}
