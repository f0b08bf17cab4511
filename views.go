package askengine

import (
	"io"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"
)

// ViewFuncs holds the templ components the engine calls when rendering
// pages. Callers own every template; the views package has defaults.
type ViewFuncs struct {
	QuestionList func(v ListView) templ.Component
	Question     func(v QuestionView) templ.Component
	NoPermission func(v MessageView) templ.Component
	Message      func(v MessageView) templ.Component
	Ask          func(v AskView) templ.Component
	AnswerForm   func(v AnswerFormView) templ.Component
	Login        func(v LoginView) templ.Component
	NotFound     func(v PageView) templ.Component
	ServerError  func(v PageView) templ.Component
}

// NavLink is one navigation entry built from an indexed page.
type NavLink struct {
	Title  string
	URL    string
	Active bool
}

// PageView is the chrome every page shares.
type PageView struct {
	SiteName    string
	SiteURL     string
	Description string
	Title       string
	User        User
	Nav         []NavLink
	CSRFToken   string
	SearchURL   string
	AskURL      string
	LoginURL    string
	LogoutURL   string
	Lang        string
}

// ListView feeds the base page.
type ListView struct {
	PageView
	List       QuestionList
	Keywords   string
	Tags       []string
	ActiveTags []string
	TagURL     func(tag string) string
	PageURL    func(page int) string
	Question   func(id int64) string
}

// AnswerView is an answer plus the links its viewer may use.
type AnswerView struct {
	Answer   Post
	EditURL  string
	Author   string
	Editable bool
}

// QuestionView feeds the single question page.
type QuestionView struct {
	PageView
	Question     Question
	Answers      []AnswerView
	CanAnswer    bool
	AnswerAction string
}

// Question is a question post with display extras.
type Question struct {
	Post
	Author  string
	EditURL string
}

// MessageView carries pre-escaped HTML for inline messages.
type MessageView struct {
	PageView
	HTML string
}

// AskView feeds the ask form. Editing.ID is zero for a new question.
// Statuses lists the statuses the viewer may set; it is empty for non-moderators.
type AskView struct {
	PageView
	Editing  Post
	Nonce    string
	Action   string
	Error    string
	Statuses []PostStatus
}

// AnswerFormView feeds the answer form bound to a question.
type AnswerFormView struct {
	PageView
	Question Post
	Editing  Post
	EditMode bool
	Nonce    string
	Action   string
	Error    string
}

// LoginView feeds the login form.
type LoginView struct {
	PageView
	ShowError bool
	Message   string
	Redirect  string
}

// AfterQuestionEvent is passed to AfterQuestion actions. Anything written
// to W is appended after the question markup.
type AfterQuestionEvent struct {
	Question Post
	User     User
	W        io.Writer
}

// pageView builds the shared chrome for the current request.
func (a *App) pageView(c echo.Context, title string) PageView {
	active := ""
	if p, ok := CurrentPage(c); ok {
		active = p.ID
	}
	var nav []NavLink
	for _, p := range a.Pages.Indexed() {
		nav = append(nav, NavLink{Title: p.Title, URL: a.PageLink(p.ID), Active: p.ID == active})
	}
	return PageView{
		SiteName:    a.Config.Name,
		SiteURL:     a.Config.URL,
		Description: a.Config.Description,
		Title:       title,
		User:        CurrentUser(c),
		Nav:         nav,
		CSRFToken:   CsrfToken(c),
		SearchURL:   a.PageLink(PageSearch),
		AskURL:      a.PageLink(PageAsk),
		LoginURL:    "/login/",
		LogoutURL:   "/logout/",
		Lang:        a.lang(c).String(),
	}
}
