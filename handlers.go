package askengine

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"
)

// handleQuestionRoute resolves the question id into the current post and
// dispatches the question page.
func (a *App) handleQuestionRoute(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return a.Set404(c)
	}
	q, err := a.Store.GetPost(c.Request().Context(), id)
	if errors.Is(err, ErrNotFound) {
		return a.Set404(c)
	}
	if err != nil {
		return fmt.Errorf("askengine: load question %d: %w", id, err)
	}
	if !q.IsQuestion() || (q.Status == StatusTrash && !CurrentUser(c).IsModerator()) {
		return a.Set404(c)
	}
	SetCurrentPost(c, q)
	return a.dispatch(c, PageQuestion)
}

func (a *App) handleRootRedirect(c echo.Context) error {
	return c.Redirect(http.StatusFound, a.PageLink(PageBase))
}

func (a *App) handleRobots(c echo.Context) error {
	body := "User-agent: *\nDisallow: " + a.PageLink(PageEdit) + "\nSitemap: " + BuildURL(a.Config.URL) + "sitemap.xml\n"
	return c.String(http.StatusOK, body)
}

func (a *App) handleSitemap(c echo.Context) error {
	questions, err := a.Cache.Questions(c.Request().Context())
	if err != nil {
		return err
	}
	return a.renderSitemap(c, questions)
}

func (a *App) handleFeed(c echo.Context) error {
	questions, err := a.Cache.Questions(c.Request().Context())
	if err != nil {
		return err
	}
	return a.renderRSS(c, questions)
}

// newQuestionStatus is the status of a question a user just asked.
func (a *App) newQuestionStatus(u User) PostStatus {
	if a.Config.ModerateNewQuestions && !u.IsModerator() {
		return StatusModerate
	}
	return StatusPublish
}

// handleAskSubmit creates a question, or updates one when an id and its
// edit-post nonce are posted.
func (a *App) handleAskSubmit(c echo.Context) error {
	ctx := c.Request().Context()
	u := CurrentUser(c)
	if u.IsGuest() {
		return a.renderMessage(c, http.StatusForbidden, templ.EscapeString(a.T(c, msgLoginRequired)))
	}

	title := sanitizeInput(c.FormValue("title"))
	content := strings.TrimSpace(c.FormValue("content"))
	tags := splitTags(sanitizeInput(c.FormValue("tags")))
	id := RequestID(c, "id")

	q := Post{Type: PostTypeQuestion, AuthorID: u.ID, Status: a.newQuestionStatus(u), Date: a.now()}
	if id != 0 {
		if !a.Nonces.Verify(requestNonce(c), EditPostAction(id), u) {
			return a.renderMessage(c, http.StatusOK, templ.EscapeString(a.T(c, msgSomethingWrong)))
		}
		existing, err := a.Store.GetPost(ctx, id)
		if errors.Is(err, ErrNotFound) || (err == nil && !existing.IsQuestion()) {
			return a.Set404(c)
		}
		if err != nil {
			return fmt.Errorf("askengine: load question %d: %w", id, err)
		}
		if !canEditQuestion(u, existing) {
			return a.renderMessage(c, http.StatusForbidden, templ.EscapeString(a.T(c, msgCannotEditPost)))
		}
		q = existing
	}
	q.Title, q.Content, q.Tags = title, content, tags
	if status := PostStatus(sanitizeInput(c.FormValue("status"))); canSetStatus(u, status) {
		q.Status = status
	}

	if title == "" || content == "" {
		errMsg := a.T(c, msgTitleRequired)
		if title != "" {
			errMsg = a.T(c, msgContentRequired)
		}
		view := AskView{
			PageView: a.pageView(c, a.T(c, msgAskTitle)),
			Editing:  q,
			Nonce:    requestNonce(c),
			Action:   a.PageLink(PageAsk),
			Error:    errMsg,
			Statuses: statusChoices(u),
		}
		return RenderStatus(c, http.StatusUnprocessableEntity, a.Views.Ask(view))
	}

	saved, err := a.Store.SavePost(ctx, q)
	if err != nil {
		return fmt.Errorf("askengine: save question: %w", err)
	}
	a.Cache.Invalidate()
	return c.Redirect(http.StatusSeeOther, a.QuestionLink(saved))
}

// handleAnswerSubmit adds an answer to a question, or updates one when an
// id is posted. Updates pass the same checks as EditPage.
func (a *App) handleAnswerSubmit(c echo.Context) error {
	ctx := c.Request().Context()
	u := CurrentUser(c)
	if u.IsGuest() {
		return a.renderMessage(c, http.StatusForbidden, templ.EscapeString(a.T(c, msgLoginRequired)))
	}

	qid := RequestID(c, "question_id")
	q, err := a.Store.GetPost(ctx, qid)
	if errors.Is(err, ErrNotFound) || (err == nil && !q.IsQuestion()) {
		return a.Set404(c)
	}
	if err != nil {
		return fmt.Errorf("askengine: load question %d: %w", qid, err)
	}
	if q.Status != StatusPublish || !a.Perms.CanReadQuestion(u, q) {
		return a.renderMessage(c, http.StatusForbidden, templ.EscapeString(a.T(c, msgCannotAnswerHere)))
	}

	content := strings.TrimSpace(c.FormValue("content"))
	ans := Post{Type: PostTypeAnswer, ParentID: q.ID, AuthorID: u.ID, Status: StatusPublish, Date: a.now()}

	if id := RequestID(c, "id"); id != 0 {
		allowed, err := a.editAllowed(ctx, requestNonce(c), u, id)
		if err != nil {
			return err
		}
		if !allowed {
			return a.renderMessage(c, http.StatusForbidden, "<p>"+templ.EscapeString(a.T(c, msgCannotEditAnswer))+"</p>")
		}
		existing, err := a.Store.GetPost(ctx, id)
		if err != nil {
			return fmt.Errorf("askengine: load answer %d: %w", id, err)
		}
		if existing.ParentID != q.ID {
			return a.renderMessage(c, http.StatusForbidden, "<p>"+templ.EscapeString(a.T(c, msgCannotEditAnswer))+"</p>")
		}
		ans = existing
	}
	ans.Content = content

	if content == "" {
		return RenderStatus(c, http.StatusUnprocessableEntity, a.Views.AnswerForm(AnswerFormView{
			PageView: a.pageView(c, q.Title),
			Question: q,
			Editing:  ans,
			EditMode: ans.ID != 0,
			Nonce:    requestNonce(c),
			Action:   a.LinkTo("answer"),
			Error:    a.T(c, msgContentRequired),
		}))
	}

	saved, err := a.Store.SavePost(ctx, ans)
	if err != nil {
		return fmt.Errorf("askengine: save answer: %w", err)
	}
	return c.Redirect(http.StatusSeeOther, a.QuestionLink(q.ID)+"#answer-"+strconv.FormatInt(saved, 10))
}

func (a *App) httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	he, ok := err.(*echo.HTTPError)
	if ok && he.Code == http.StatusNotFound {
		_ = a.Set404(c)
		return
	}
	if errors.Is(err, ErrNotFound) {
		_ = a.Set404(c)
		return
	}
	code := http.StatusInternalServerError
	if ok {
		code = he.Code
	}
	if code >= 500 {
		c.Logger().Errorf("server error: %v", err)
		_ = RenderStatus(c, code, a.Views.ServerError(a.pageView(c, a.T(c, msgServerErrorTitle))))
		return
	}
	a.Echo.DefaultHTTPErrorHandler(err, c)
}
