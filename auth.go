package askengine

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

// safeRedirect keeps post-login redirects on this site.
func (a *App) safeRedirect(target string) string {
	if strings.HasPrefix(target, "/") && !strings.HasPrefix(target, "//") && !strings.Contains(target, "\\") {
		return target
	}
	return a.PageLink(PageBase)
}

func (a *App) handleLoginForm(c echo.Context) error {
	if !CurrentUser(c).IsGuest() {
		return c.Redirect(http.StatusSeeOther, a.PageLink(PageBase))
	}
	redirect, _ := QueryValue(c, "redirect_to")
	return Render(c, a.Views.Login(LoginView{
		PageView: a.pageView(c, a.T(c, msgLoginTitle)),
		Redirect: a.safeRedirect(redirect),
	}))
}

func (a *App) handleLogin(c echo.Context) error {
	ip := c.RealIP()
	if !a.loginLimiter.Check(ip) {
		return c.String(http.StatusTooManyRequests, a.T(c, msgTooManyLogins))
	}
	redirect := a.safeRedirect(c.FormValue("redirect_to"))
	u, ok, err := a.Store.Authenticate(c.Request().Context(), c.FormValue("login"), c.FormValue("password"))
	if err != nil {
		return err
	}
	if !ok {
		a.loginLimiter.Record(ip)
		return RenderStatus(c, http.StatusUnauthorized, a.Views.Login(LoginView{
			PageView:  a.pageView(c, a.T(c, msgLoginTitle)),
			ShowError: true,
			Redirect:  redirect,
		}))
	}
	if err := setUserSession(c, u); err != nil {
		return err
	}
	c.Logger().Infof("askengine: user %s logged in", u.Login)
	return c.Redirect(http.StatusSeeOther, redirect)
}

func (a *App) handleLogout(c echo.Context) error {
	if err := clearUserSession(c); err != nil {
		return err
	}
	return c.Redirect(http.StatusSeeOther, a.PageLink(PageBase))
}
