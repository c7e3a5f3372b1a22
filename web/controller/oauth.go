package controller

import (
	"net/http"
	"text/template"

	"github.com/mhsanaei/taskpanel/logger"
	"github.com/mhsanaei/taskpanel/web/service"
	"github.com/mhsanaei/taskpanel/web/session"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// OAuthController signs users in through the configured OAuth provider.
type OAuthController struct {
	BaseController
}

func NewOAuthController(g *gin.RouterGroup, deps *Deps) *OAuthController {
	a := &OAuthController{BaseController{deps: deps}}
	a.initRouter(g)
	return a
}

func (a *OAuthController) initRouter(g *gin.RouterGroup) {
	g = g.Group("/auth/google")
	g.GET("", a.redirect)
	g.GET("/callback", a.callback)
}

func (a *OAuthController) enabled() bool {
	return a.deps.OAuth != nil && a.deps.OAuth.Enabled()
}

// redirect sends the browser to the provider with a fresh state token.
func (a *OAuthController) redirect(c *gin.Context) {
	if !a.enabled() {
		textMsg(c, "messages.googleDisabled")
		return
	}
	state := uuid.NewString()
	if err := session.SetOAuthState(c, state); err != nil {
		logger.Warning("Unable to save OAuth state:", err)
		c.Redirect(http.StatusFound, "/login")
		return
	}
	c.Redirect(http.StatusFound, a.deps.OAuth.AuthCodeURL(state))
}

// callback completes the sign-in. Every failure lands on the login page.
func (a *OAuthController) callback(c *gin.Context) {
	fail := func(reason string, err error) {
		logger.Warningf("google sign-in failed (%s): %v", reason, err)
		c.Redirect(http.StatusFound, "/login")
	}

	if !a.enabled() {
		fail("disabled", nil)
		return
	}
	expected := session.PopOAuthState(c)
	if expected == "" || c.Query("state") != expected {
		fail("state mismatch", nil)
		return
	}
	if e := c.Query("error"); e != "" {
		fail("provider error", nil)
		return
	}

	ctx := c.Request.Context()
	identity, err := a.deps.OAuth.Identify(ctx, c.Query("code"))
	if err != nil {
		fail("identify", err)
		return
	}
	user, err := a.deps.Users.FindOrCreateOAuth(ctx, identity.Email, identity.Name)
	if err != nil {
		fail("find or create", err)
		return
	}
	if err := a.startSession(c, user); err != nil {
		fail("session", err)
		return
	}

	logger.Infof("%s logged in with google, Ip Address: %s", template.HTMLEscapeString(user.Email), getRemoteIp(c))
	a.audit(c, service.AuditEntry{
		UserID:     user.Id,
		Email:      user.Email,
		Action:     service.ActionOAuthLogin,
		Resource:   service.ResourceUser,
		ResourceID: user.Id,
		Details:    map[string]any{"provider": "google"},
	})
	c.Redirect(http.StatusFound, "/dashboard")
}
