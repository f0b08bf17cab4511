// Package views contains the default templ components for askengine pages.
// Sites that want their own markup pass their own askengine.ViewFuncs.
package views

import (
	"context"
	"io"
	"strconv"
	"strings"

	"github.com/a-h/templ"

	"github.com/eringen/askengine"
)

// Default returns the built-in component set.
func Default() askengine.ViewFuncs {
	return askengine.ViewFuncs{
		QuestionList: QuestionList,
		Question:     Question,
		NoPermission: NoPermission,
		Message:      Message,
		Ask:          Ask,
		AnswerForm:   AnswerForm,
		Login:        Login,
		NotFound:     NotFound,
		ServerError:  ServerError,
	}
}

// htmlWriter stops writing after the first error.
type htmlWriter struct {
	ctx context.Context
	w   io.Writer
	err error
}

func (h *htmlWriter) raw(parts ...string) {
	for _, s := range parts {
		if h.err != nil {
			return
		}
		_, h.err = io.WriteString(h.w, s)
	}
}

func (h *htmlWriter) text(s string) { h.raw(templ.EscapeString(s)) }

func (h *htmlWriter) attr(name, val string) {
	h.raw(" ", name, `="`, templ.EscapeString(val), `"`)
}

func (h *htmlWriter) component(c templ.Component) {
	if h.err == nil {
		h.err = c.Render(h.ctx, h.w)
	}
}

func component(fn func(h *htmlWriter)) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &htmlWriter{ctx: ctx, w: w}
		fn(h)
		return h.err
	})
}

func layout(v askengine.PageView, body func(h *htmlWriter)) templ.Component {
	return component(func(h *htmlWriter) {
		h.raw("<!doctype html><html")
		h.attr("lang", v.Lang)
		h.raw(`><head><meta charset="utf-8"><meta name="viewport" content="width=device-width, initial-scale=1"><title>`)
		if v.Title != "" {
			h.text(v.Title)
			h.raw(" | ")
		}
		h.text(v.SiteName)
		h.raw("</title>")
		if v.Description != "" {
			h.raw(`<meta name="description"`)
			h.attr("content", v.Description)
			h.raw(">")
		}
		h.raw(`<link rel="alternate" type="application/rss+xml" href="/feed.xml"><link rel="stylesheet" href="/public/style.css"></head><body><header class="ap-header"><nav>`)
		for _, n := range v.Nav {
			h.raw("<a")
			h.attr("href", n.URL)
			if n.Active {
				h.attr("class", "active")
			}
			h.raw(">")
			h.text(n.Title)
			h.raw("</a>")
		}
		h.raw(`</nav><form class="ap-search" method="get"`)
		h.attr("action", v.SearchURL)
		h.raw(`><input type="search" name="ap_s" placeholder="Search questions"></form><div class="ap-user">`)
		if v.User.IsGuest() {
			h.raw("<a")
			h.attr("href", v.LoginURL)
			h.raw(">Log in</a>")
		} else {
			h.text(v.User.Name())
			h.raw(`<form method="post"`)
			h.attr("action", v.LogoutURL)
			h.raw(`><input type="hidden" name="_csrf"`)
			h.attr("value", v.CSRFToken)
			h.raw(`><button type="submit">Log out</button></form>`)
		}
		h.raw(`</div></header><main class="anspress">`)
		body(h)
		h.raw("</main></body></html>")
	})
}

// QuestionList renders the base page.
func QuestionList(v askengine.ListView) templ.Component {
	return layout(v.PageView, func(h *htmlWriter) {
		h.raw("<h1>")
		h.text(v.Title)
		h.raw("</h1>")
		if v.Keywords != "" {
			h.raw(`<p class="ap-search-for">Results for “`)
			h.text(v.Keywords)
			h.raw("”</p>")
		}
		if len(v.Tags) > 0 {
			h.raw(`<ul class="ap-tags">`)
			for _, t := range v.Tags {
				h.raw("<li><a")
				h.attr("href", v.TagURL(t))
				for _, active := range v.ActiveTags {
					if strings.EqualFold(active, t) {
						h.attr("class", "active")
						break
					}
				}
				h.raw(">")
				h.text(t)
				h.raw("</a></li>")
			}
			h.raw("</ul>")
		}
		if len(v.List.Questions) == 0 {
			h.raw(`<p class="ap-no-questions">No questions found.</p>`)
			return
		}
		h.raw(`<ol class="ap-questions">`)
		for _, q := range v.List.Questions {
			h.raw(`<li class="ap-question-item"><a`)
			h.attr("href", v.Question(q.ID))
			h.raw(">")
			h.text(q.Title)
			h.raw("</a>")
			if q.Status != askengine.StatusPublish {
				h.raw(` <span class="ap-status">`)
				h.text(string(q.Status))
				h.raw("</span>")
			}
			h.raw(" <time")
			h.attr("datetime", q.Date.Format("2006-01-02T15:04:05Z07:00"))
			h.raw(">")
			h.text(q.Date.Format("Jan 2, 2006"))
			h.raw("</time></li>")
		}
		h.raw("</ol>")
		if v.List.Page > 1 || v.List.HasMore() {
			h.raw(`<nav class="ap-pagination">`)
			if v.List.Page > 1 {
				h.raw("<a")
				h.attr("href", v.PageURL(v.List.Page-1))
				h.raw(` rel="prev">Newer</a>`)
			}
			if v.List.HasMore() {
				h.raw("<a")
				h.attr("href", v.PageURL(v.List.Page+1))
				h.raw(` rel="next">Older</a>`)
			}
			h.raw("</nav>")
		}
	})
}

// Question renders a question with its answers and the answer form.
func Question(v askengine.QuestionView) templ.Component {
	return layout(v.PageView, func(h *htmlWriter) {
		q := v.Question
		h.raw(`<article class="ap-question"`)
		h.attr("id", "question-"+strconv.FormatInt(q.ID, 10))
		h.raw("><h1>")
		h.text(q.Title)
		h.raw(`</h1><div class="ap-meta">`)
		if q.Author != "" {
			h.text(q.Author)
			h.raw(" · ")
		}
		h.text(q.Date.Format("Jan 2, 2006"))
		if q.EditURL != "" {
			h.raw(" · <a")
			h.attr("href", q.EditURL)
			h.raw(">Edit</a>")
		}
		h.raw(`</div><div class="ap-content">`)
		h.component(Markdown(q.Content))
		h.raw("</div>")
		if len(q.Tags) > 0 {
			h.raw(`<ul class="ap-tags">`)
			for _, t := range q.Tags {
				h.raw("<li>")
				h.text(t)
				h.raw("</li>")
			}
			h.raw("</ul>")
		}
		h.raw("</article>")

		h.raw(`<section class="ap-answers"><h2>`)
		h.text(strconv.Itoa(len(v.Answers)))
		if len(v.Answers) == 1 {
			h.raw(" Answer")
		} else {
			h.raw(" Answers")
		}
		h.raw("</h2>")
		for _, a := range v.Answers {
			h.raw(`<article class="ap-answer"`)
			h.attr("id", "answer-"+strconv.FormatInt(a.Answer.ID, 10))
			h.raw(`><div class="ap-meta">`)
			h.text(a.Author)
			if a.Editable {
				h.raw(" · <a")
				h.attr("href", a.EditURL)
				h.raw(">Edit</a>")
			}
			h.raw(`</div><div class="ap-content">`)
			h.component(Markdown(a.Answer.Content))
			h.raw("</div></article>")
		}
		h.raw("</section>")

		if v.CanAnswer {
			answerForm(h, v.Question.Post, askengine.Post{}, false, "", v.AnswerAction, v.CSRFToken, "")
		}
	})
}

func answerForm(h *htmlWriter, q, editing askengine.Post, editMode bool, nonce, action, csrf, errMsg string) {
	h.raw(`<form class="ap-answer-form" method="post"`)
	h.attr("action", action)
	h.raw(">")
	if errMsg != "" {
		h.raw(`<p class="ap-error">`)
		h.text(errMsg)
		h.raw("</p>")
	}
	h.raw(`<input type="hidden" name="_csrf"`)
	h.attr("value", csrf)
	h.raw(`><input type="hidden" name="question_id"`)
	h.attr("value", strconv.FormatInt(q.ID, 10))
	h.raw(">")
	if editMode {
		h.raw(`<input type="hidden" name="id"`)
		h.attr("value", strconv.FormatInt(editing.ID, 10))
		h.raw(`><input type="hidden" name="__nonce"`)
		h.attr("value", nonce)
		h.raw(">")
	}
	h.raw(`<textarea name="content" rows="10" required>`)
	h.text(editing.Content)
	h.raw(`</textarea><button type="submit">`)
	if editMode {
		h.raw("Update answer")
	} else {
		h.raw("Post answer")
	}
	h.raw("</button></form>")
}

// NoPermission wraps a permission message in its container.
func NoPermission(v askengine.MessageView) templ.Component {
	return layout(v.PageView, func(h *htmlWriter) {
		h.raw(`<div class="ap-no-permission">`, v.HTML, "</div>")
	})
}

// Message renders an inline message. v.HTML is already escaped.
func Message(v askengine.MessageView) templ.Component {
	return layout(v.PageView, func(h *htmlWriter) {
		h.raw(`<div class="ap-message">`, v.HTML, "</div>")
	})
}

// Ask renders the ask form, prefilled when editing.
func Ask(v askengine.AskView) templ.Component {
	return layout(v.PageView, func(h *htmlWriter) {
		h.raw("<h1>")
		h.text(v.Title)
		h.raw("</h1>")
		if v.User.IsGuest() {
			h.raw(`<p class="ap-login-required">Please <a`)
			h.attr("href", v.LoginURL+"?redirect_to="+v.AskURL)
			h.raw(">log in</a> to ask a question.</p>")
			return
		}
		h.raw(`<form class="ap-ask-form" method="post"`)
		h.attr("action", v.Action)
		h.raw(">")
		if v.Error != "" {
			h.raw(`<p class="ap-error">`)
			h.text(v.Error)
			h.raw("</p>")
		}
		h.raw(`<input type="hidden" name="_csrf"`)
		h.attr("value", v.CSRFToken)
		h.raw(">")
		if v.Editing.ID != 0 {
			h.raw(`<input type="hidden" name="id"`)
			h.attr("value", strconv.FormatInt(v.Editing.ID, 10))
			h.raw(`><input type="hidden" name="__nonce"`)
			h.attr("value", v.Nonce)
			h.raw(">")
		}
		h.raw(`<label>Title <input type="text" name="title" required`)
		h.attr("value", v.Editing.Title)
		h.raw(`></label><label>Question <textarea name="content" rows="12" required>`)
		h.text(v.Editing.Content)
		h.raw(`</textarea></label><label>Tags <input type="text" name="tags"`)
		h.attr("value", strings.Join(v.Editing.Tags, ", "))
		h.raw(`></label>`)
		if len(v.Statuses) > 0 {
			h.raw(`<label>Status <select name="status">`)
			for _, st := range v.Statuses {
				h.raw("<option")
				h.attr("value", string(st))
				if st == v.Editing.Status {
					h.raw(" selected")
				}
				h.raw(">")
				h.text(string(st))
				h.raw("</option>")
			}
			h.raw("</select></label>")
		}
		h.raw(`<button type="submit">`)
		if v.Editing.ID != 0 {
			h.raw("Update question")
		} else {
			h.raw("Ask question")
		}
		h.raw("</button></form>")
	})
}

// AnswerForm renders the answer form bound to its question.
func AnswerForm(v askengine.AnswerFormView) templ.Component {
	return layout(v.PageView, func(h *htmlWriter) {
		h.raw("<h1>")
		h.text(v.Title)
		h.raw(`</h1><p class="ap-answer-for">`)
		h.text(v.Question.Title)
		h.raw("</p>")
		answerForm(h, v.Question, v.Editing, v.EditMode, v.Nonce, v.Action, v.CSRFToken, v.Error)
	})
}

// Login renders the login form.
func Login(v askengine.LoginView) templ.Component {
	return layout(v.PageView, func(h *htmlWriter) {
		h.raw(`<h1>Log in</h1><form class="ap-login" method="post" action="/login/">`)
		if v.ShowError {
			h.raw(`<p class="ap-error">Invalid login or password.</p>`)
		}
		if v.Message != "" {
			h.raw(`<p class="ap-message">`)
			h.text(v.Message)
			h.raw("</p>")
		}
		h.raw(`<input type="hidden" name="_csrf"`)
		h.attr("value", v.CSRFToken)
		h.raw(`><input type="hidden" name="redirect_to"`)
		h.attr("value", v.Redirect)
		h.raw(`><label>Login <input type="text" name="login" required></label><label>Password <input type="password" name="password" required></label><button type="submit">Log in</button></form>`)
	})
}

// NotFound renders the 404 page.
func NotFound(v askengine.PageView) templ.Component {
	return layout(v, func(h *htmlWriter) {
		h.raw(`<div class="ap-not-found"><h1>Page not found</h1><p>The page you are looking for does not exist.</p></div>`)
	})
}

// ServerError renders the 500 page.
func ServerError(v askengine.PageView) templ.Component {
	return layout(v, func(h *htmlWriter) {
		h.raw(`<div class="ap-server-error"><h1>Something went wrong</h1><p>Please try again later.</p></div>`)
	})
}
