// Package askengine is a question-and-answer site engine built with Go, Echo, and templ.
// A page registry maps page identifiers (base listing, question, ask, search,
// edit) to handlers that check access, query questions and render views.
//
// Users provide their own templ templates via the ViewFuncs struct, extend
// behavior through Hooks, and askengine handles routing, permissions,
// security tokens and storage.
package askengine

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/crypto/acme/autocert"

	"github.com/eringen/askengine/hooks"
)

// Hooks are the extension points of the page handlers.
type Hooks struct {
	// MainQuestionsArgs rewrites the base page query before it runs.
	MainQuestionsArgs hooks.Filters[QueryArgs]
	// QuestionPermissionMsg rewrites the message shown instead of a question.
	// An empty result shows the question.
	QuestionPermissionMsg hooks.Filters[string]
	// AfterQuestion fires after a question page rendered.
	AfterQuestion hooks.Actions[AfterQuestionEvent]
}

// App is the central askengine application. It wires together the store,
// cache, page registry, handlers, middleware, and user-provided templates.
type App struct {
	Config SiteConfig
	Echo   *echo.Echo
	Store  *Store
	Cache  *QuestionCache
	Views  ViewFuncs
	Pages  *PageRegistry
	Hooks  Hooks
	Perms  Permissions
	Nonces *Nonces

	i18n         *Translator
	loginLimiter *LoginLimiter
	customRoutes []func(*App)
	staticDir    string
	now          func() time.Time
}

// New creates a new askengine App with the given configuration and view functions.
func New(cfg SiteConfig, views ViewFuncs, opts ...Option) *App {
	cfg.setDefaults()

	a := &App{
		Config:    cfg,
		Echo:      echo.New(),
		Views:     views,
		Pages:     NewPageRegistry(),
		Perms:     DefaultPermissions{},
		staticDir: "public",
		now:       time.Now,
	}

	for _, opt := range opts {
		opt(a)
	}

	a.i18n = NewTranslator(a.Config.Language)
	a.Nonces = NewNonces(a.Config.SessionSecret, a.now)
	return a
}

// Init opens the store, registers the common pages, and sets up middleware
// and routes. Start calls it; tests and embedders may call it directly.
func (a *App) Init() error {
	if a.Config.SessionSecret == "" {
		return errors.New("askengine: SessionSecret is required")
	}

	store, err := NewStore(a.Config.DatabasePath)
	if err != nil {
		return fmt.Errorf("askengine: init store: %w", err)
	}
	store.now = a.now
	a.Store = store
	a.Cache = NewQuestionCache(a.Store, a.Config.CacheTTL)
	a.loginLimiter = NewLoginLimiter(5, time.Minute)

	a.RegisterCommonPages()
	a.setupMiddleware()
	a.setupRoutes()

	for _, fn := range a.customRoutes {
		fn(a)
	}
	return nil
}

// Start initializes the app and serves until the server stops.
func (a *App) Start() error {
	if err := a.Init(); err != nil {
		return err
	}
	a.Echo.HideBanner = true

	if a.Config.AutoTLSHost != "" {
		a.Echo.AutoTLSManager.Cache = autocert.DirCache(a.Config.AutoTLSCacheDir)
		a.Echo.AutoTLSManager.HostPolicy = autocert.HostWhitelist(a.Config.AutoTLSHost)
		a.Echo.Pre(middleware.HTTPSRedirect())
		a.Echo.Logger.Infof("askengine: serving %s with AutoTLS", a.Config.AutoTLSHost)
		if err := a.Echo.StartAutoTLS(":443"); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	}

	if err := a.Echo.Start(a.Config.Addr); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (a *App) setupRoutes() {
	e := a.Echo
	base := a.Config.BasePath

	e.Static("/public", a.staticDir)
	e.Static("/uploads", a.Config.UploadDir)
	e.GET("/robots.txt", a.handleRobots)
	e.GET("/sitemap.xml", a.handleSitemap)
	e.GET("/feed.xml", a.handleFeed)
	e.GET("/", a.handleRootRedirect)

	e.GET("/login/", a.handleLoginForm)
	e.POST("/login/", a.handleLogin)
	e.POST("/logout/", a.handleLogout)

	e.GET(base+"/", func(c echo.Context) error { return a.dispatch(c, PageBase) })
	e.GET(base+"/question/:id/", a.handleQuestionRoute)
	e.GET(base+"/:page/", func(c echo.Context) error { return a.dispatch(c, c.Param("page")) })

	e.POST(base+"/ask/", a.handleAskSubmit)
	e.POST(base+"/answer/", a.handleAnswerSubmit)
	e.POST(base+"/upload/", a.handleUpload)
}

// Close cleans up resources. Call this when the app is shutting down.
func (a *App) Close() error {
	if a.loginLimiter != nil {
		a.loginLimiter.Stop()
	}
	if a.Store != nil {
		return a.Store.Close()
	}
	return nil
}
