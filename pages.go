package askengine

import (
	"sync"

	"github.com/labstack/echo/v4"
)

// Page is one entry of the page registry.
type Page struct {
	ID      string
	Title   string
	Handler echo.HandlerFunc
	Indexed bool // listed in navigation and the sitemap
}

// PageRegistry maps page identifiers to their handlers, keeping registration order.
type PageRegistry struct {
	mu    sync.RWMutex
	pages map[string]Page
	order []string
}

// NewPageRegistry returns an empty registry.
func NewPageRegistry() *PageRegistry {
	return &PageRegistry{pages: make(map[string]Page)}
}

// Register adds p, replacing any page with the same ID in place.
func (r *PageRegistry) Register(p Page) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.pages[p.ID]; !ok {
		r.order = append(r.order, p.ID)
	}
	r.pages[p.ID] = p
}

// Get returns the page registered under id.
func (r *PageRegistry) Get(id string) (Page, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.pages[id]
	return p, ok
}

// All returns every page in registration order.
func (r *PageRegistry) All() []Page {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Page, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.pages[id])
	}
	return out
}

// Indexed returns the pages flagged for navigation and the sitemap.
func (r *PageRegistry) Indexed() []Page {
	var out []Page
	for _, p := range r.All() {
		if p.Indexed {
			out = append(out, p)
		}
	}
	return out
}

// Page identifiers registered by RegisterCommonPages.
const (
	PageBase     = "base"
	PageQuestion = "question"
	PageAsk      = "ask"
	PageSearch   = "search"
	PageEdit     = "edit"
)

// RegisterCommonPages registers the five built-in pages.
func (a *App) RegisterCommonPages() {
	p := a.i18n.Default()
	a.Pages.Register(Page{ID: PageBase, Title: a.Config.BasePageTitle, Handler: a.BasePage, Indexed: true})
	a.Pages.Register(Page{ID: PageQuestion, Title: p.Sprintf(msgQuestionTitle), Handler: a.QuestionPage})
	a.Pages.Register(Page{ID: PageAsk, Title: p.Sprintf(msgAskTitle), Handler: a.AskPage, Indexed: true})
	a.Pages.Register(Page{ID: PageSearch, Title: p.Sprintf(msgSearchTitle), Handler: a.SearchPage})
	a.Pages.Register(Page{ID: PageEdit, Title: p.Sprintf(msgEditTitle), Handler: a.EditPage})
}

const (
	pageContextKey      = "askengine.page"
	postContextKey      = "askengine.post"
	questionsContextKey = "askengine.questions"
	renderedContextKey  = "askengine.question_rendered"
)

// dispatch runs the handler registered under id, or Set404 when there is none.
func (a *App) dispatch(c echo.Context, id string) error {
	p, ok := a.Pages.Get(id)
	if !ok {
		return a.Set404(c)
	}
	c.Set(pageContextKey, p)
	return p.Handler(c)
}

// CurrentPage returns the page being dispatched.
func CurrentPage(c echo.Context) (Page, bool) {
	p, ok := c.Get(pageContextKey).(Page)
	return p, ok
}

// CurrentPost returns the post the router resolved for this request.
func CurrentPost(c echo.Context) (Post, bool) {
	p, ok := c.Get(postContextKey).(Post)
	return p, ok
}

// SetCurrentPost makes p the request's current post.
func SetCurrentPost(c echo.Context, p Post) {
	c.Set(postContextKey, p)
}

// CurrentQuestions returns the listing produced by BasePage.
func CurrentQuestions(c echo.Context) (QuestionList, bool) {
	l, ok := c.Get(questionsContextKey).(QuestionList)
	return l, ok
}

// QuestionRendered reports whether QuestionPage finished its output.
func QuestionRendered(c echo.Context) bool {
	done, _ := c.Get(renderedContextKey).(bool)
	return done
}
