package askengine

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"
	"golang.org/x/text/language"
)

// BasePage lists questions. It honors the ap_s keyword, the ap_tags tag
// list combined by ap_tax_relation, and the paged page number.
func (a *App) BasePage(c echo.Context) error {
	ctx := c.Request().Context()
	u := CurrentUser(c)

	keywords, hasKeywords := QueryValue(c, "ap_s")
	relation, _ := QueryValue(c, "ap_tax_relation")
	if relation == "" {
		relation = "OR"
	}

	args := QueryArgs{
		TaxQuery: TaxQuery{Relation: relation},
		Page:     1,
		PerPage:  a.Config.QuestionsPerPage,
	}
	if hasKeywords {
		args.Search = keywords
	}
	var activeTags []string
	if raw, ok := QueryValue(c, "ap_tags"); ok {
		activeTags = splitTags(raw)
		if len(activeTags) > 0 {
			args.TaxQuery.Terms = append(args.TaxQuery.Terms, TaxTerm{Taxonomy: TaxonomyTag, Terms: activeTags})
		}
	}
	if raw, ok := QueryValue(c, "paged"); ok {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			args.Page = n
		}
	}

	args = a.Hooks.MainQuestionsArgs.Apply(ctx, args)

	list, err := a.Store.QueryQuestions(ctx, args, u)
	if err != nil {
		return fmt.Errorf("askengine: query questions: %w", err)
	}
	c.Set(questionsContextKey, list)

	tags, err := a.Cache.Tags(ctx)
	if err != nil {
		return fmt.Errorf("askengine: list tags: %w", err)
	}

	title := a.Config.BasePageTitle
	if p, ok := a.Pages.Get(PageBase); ok {
		title = p.Title
	}
	base := a.PageLink(PageBase)
	return Render(c, a.Views.QuestionList(ListView{
		PageView:   a.pageView(c, title),
		List:       list,
		Keywords:   keywords,
		Tags:       tags,
		ActiveTags: activeTags,
		TagURL: func(tag string) string {
			return withQuery(base, url.Values{"ap_tags": {tag}})
		},
		PageURL: func(page int) string {
			return withQuery(base, url.Values{
				"ap_s":            {keywords},
				"ap_tags":         {strings.Join(activeTags, ",")},
				"ap_tax_relation": {relationParam(c)},
				"paged":           {strconv.Itoa(page)},
			})
		},
		Question: a.QuestionLink,
	}))
}

func relationParam(c echo.Context) string {
	v, _ := QueryValue(c, "ap_tax_relation")
	return v
}

// QuestionPermissionMsg returns the message shown instead of question q to
// u in language tag, or "" when u may see the question. The result is HTML;
// every interpolated value is escaped.
func (a *App) QuestionPermissionMsg(ctx context.Context, tag language.Tag, u User, q Post) string {
	p := a.i18n.Printer(tag)
	now := a.now()
	q = q.PublishDue(now)

	var msg string
	if !a.Perms.CanReadQuestion(u, q) {
		if q.Status == StatusModerate {
			msg = templ.EscapeString(p.Sprintf(msgAwaitModeration))
		} else {
			msg = templ.EscapeString(p.Sprintf(msgNotAllowedRead))
		}
	} else if q.Status == StatusFuture {
		remaining := a.i18n.RelTime(tag, now, publishAt(q.Date, now))
		msg = "<strong>" + templ.EscapeString(p.Sprintf(msgPublishedIn, remaining)) + "</strong>"
		msg += "<p>" + templ.EscapeString(p.Sprintf(msgNotPublishedYet)) + "</p>"
	}

	return a.Hooks.QuestionPermissionMsg.Apply(ctx, msg)
}

// publishAt is the publish time used for the countdown, at least a minute away.
func publishAt(date, now time.Time) time.Time {
	if date.Sub(now) < time.Minute {
		return now.Add(time.Minute)
	}
	return date
}

// QuestionPage renders the current question, or the permission message
// when the viewer may not see it. QuestionRendered reports true afterwards.
func (a *App) QuestionPage(c echo.Context) error {
	c.Set(renderedContextKey, false)
	ctx := c.Request().Context()
	u := CurrentUser(c)

	q, ok := CurrentPost(c)
	if !ok || !q.IsQuestion() {
		return a.Set404(c)
	}
	q = q.PublishDue(a.now())

	title := a.T(c, msgQuestionTitle)
	if msg := a.QuestionPermissionMsg(ctx, a.lang(c), u, q); msg != "" {
		err := Render(c, a.Views.NoPermission(MessageView{
			PageView: a.pageView(c, title),
			HTML:     msg,
		}))
		c.Set(renderedContextKey, true)
		return err
	}

	view, err := a.questionView(c, u, q)
	if err != nil {
		return err
	}
	if err := Render(c, a.Views.Question(view)); err != nil {
		return err
	}

	a.Hooks.AfterQuestion.Do(ctx, AfterQuestionEvent{Question: q, User: u, W: c.Response()})

	c.Set(renderedContextKey, true)
	return nil
}

func (a *App) questionView(c echo.Context, u User, q Post) (QuestionView, error) {
	ctx := c.Request().Context()
	answers, err := a.Store.ListAnswers(ctx, q.ID)
	if err != nil {
		return QuestionView{}, fmt.Errorf("askengine: list answers of %d: %w", q.ID, err)
	}

	names := map[int64]string{}
	authorName := func(id int64) string {
		if n, ok := names[id]; ok {
			return n
		}
		n := ""
		if usr, err := a.Store.GetUser(ctx, id); err == nil {
			n = usr.Name()
		}
		names[id] = n
		return n
	}

	view := QuestionView{
		PageView:     a.pageView(c, q.Title),
		Question:     Question{Post: q, Author: authorName(q.AuthorID)},
		CanAnswer:    !u.IsGuest() && q.Status == StatusPublish,
		AnswerAction: a.LinkTo("answer"),
	}
	if canEditQuestion(u, q) {
		nonce, err := a.Nonces.New(EditPostAction(q.ID), u)
		if err != nil {
			return QuestionView{}, fmt.Errorf("askengine: sign nonce: %w", err)
		}
		view.Question.EditURL = a.editLink(PageAsk, q.ID, nonce)
	}
	for _, ans := range answers {
		// Answers follow the question read rules for their own status.
		if !a.Perms.CanReadQuestion(u, ans) {
			continue
		}
		av := AnswerView{Answer: ans, Author: authorName(ans.AuthorID)}
		if a.Perms.CanEditAnswer(u, ans) {
			nonce, err := a.Nonces.New(EditPostAction(ans.ID), u)
			if err != nil {
				return QuestionView{}, fmt.Errorf("askengine: sign nonce: %w", err)
			}
			av.Editable = true
			av.EditURL = a.editLink(PageEdit, ans.ID, nonce)
		}
		view.Answers = append(view.Answers, av)
	}
	return view, nil
}

// AskPage renders the ask form. With an id it edits that question, which
// needs a valid edit-post nonce.
func (a *App) AskPage(c echo.Context) error {
	ctx := c.Request().Context()
	u := CurrentUser(c)
	title := a.T(c, msgAskTitle)

	view := AskView{
		PageView: a.pageView(c, title),
		Action:   a.PageLink(PageAsk),
		Statuses: statusChoices(u),
	}

	// "0" names no post, like an absent id.
	if rawID, _ := RequestValue(c, "id"); rawID != "" && rawID != "0" {
		token := requestNonce(c)
		if !a.Nonces.Verify(token, "edit-post-"+rawID, u) {
			return a.renderMessage(c, http.StatusOK, templ.EscapeString(a.T(c, msgSomethingWrong)))
		}
		id, err := strconv.ParseInt(rawID, 10, 64)
		if err != nil {
			return a.Set404(c)
		}
		q, err := a.Store.GetPost(ctx, id)
		if errors.Is(err, ErrNotFound) || (err == nil && !q.IsQuestion()) {
			return a.Set404(c)
		}
		if err != nil {
			return fmt.Errorf("askengine: load question %d: %w", id, err)
		}
		view.Editing = q
		view.Nonce = token
	}

	return Render(c, a.Views.Ask(view))
}

// SearchPage redirects to the base page carrying the ap_s keyword.
func (a *App) SearchPage(c echo.Context) error {
	keywords, _ := QueryValue(c, "ap_s")
	return c.Redirect(http.StatusFound, withQuery(a.PageLink(PageBase), url.Values{"ap_s": {keywords}}))
}

// EditPage renders the answer form for an existing answer. The nonce, the
// id and the viewer's edit permission must all check out.
func (a *App) EditPage(c echo.Context) error {
	ctx := c.Request().Context()
	u := CurrentUser(c)
	id := RequestID(c, "id")

	allowed, err := a.editAllowed(ctx, requestNonce(c), u, id)
	if err != nil {
		return err
	}
	if !allowed {
		return a.renderMessage(c, http.StatusOK, "<p>"+templ.EscapeString(a.T(c, msgCannotEditAnswer))+"</p>")
	}

	editing, err := a.Store.GetPost(ctx, id)
	if err != nil {
		return fmt.Errorf("askengine: load answer %d: %w", id, err)
	}
	parent, err := a.Store.GetPost(ctx, editing.ParentID)
	if errors.Is(err, ErrNotFound) {
		return a.Set404(c)
	}
	if err != nil {
		return fmt.Errorf("askengine: load question %d: %w", editing.ParentID, err)
	}
	SetCurrentPost(c, editing)

	return Render(c, a.Views.AnswerForm(AnswerFormView{
		PageView: a.pageView(c, a.T(c, msgEditTitle)),
		Question: parent,
		Editing:  editing,
		EditMode: true,
		Nonce:    requestNonce(c),
		Action:   a.LinkTo("answer"),
	}))
}

// editAllowed checks, in order, the edit-post nonce, the id and the edit
// permission. Each check only runs when the previous one passed.
func (a *App) editAllowed(ctx context.Context, token string, u User, id int64) (bool, error) {
	if !a.Nonces.Verify(token, EditPostAction(id), u) {
		return false, nil
	}
	if id == 0 {
		return false, nil
	}
	return a.userCanEditAnswer(ctx, u, id)
}

// Set404 answers with the not-found view and status.
func (a *App) Set404(c echo.Context) error {
	return RenderStatus(c, http.StatusNotFound, a.Views.NotFound(a.pageView(c, a.T(c, msgNotFoundTitle))))
}

func (a *App) renderMessage(c echo.Context, code int, html string) error {
	title := ""
	if p, ok := CurrentPage(c); ok {
		title = p.Title
	}
	return RenderStatus(c, code, a.Views.Message(MessageView{
		PageView: a.pageView(c, title),
		HTML:     html,
	}))
}
