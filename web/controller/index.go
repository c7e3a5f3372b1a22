package controller

import (
	"errors"
	"net/http"
	"text/template"

	"github.com/mhsanaei/taskpanel/database/model"
	"github.com/mhsanaei/taskpanel/logger"
	"github.com/mhsanaei/taskpanel/web/entity"
	"github.com/mhsanaei/taskpanel/web/service"
	"github.com/mhsanaei/taskpanel/web/session"

	"github.com/gin-gonic/gin"
)

// IndexController handles signup, login and logout.
type IndexController struct {
	BaseController
}

// NewIndexController creates a new IndexController and initializes its routes.
func NewIndexController(g *gin.RouterGroup, deps *Deps) *IndexController {
	a := &IndexController{BaseController{deps: deps}}
	a.initRouter(g)
	return a
}

func (a *IndexController) initRouter(g *gin.RouterGroup) {
	throttle := a.deps.LoginLimiter
	if throttle == nil {
		throttle = func(c *gin.Context) { c.Next() }
	}

	g.GET("/", a.index)
	g.GET("/login", a.loginPage)
	g.GET("/logout", a.logout)

	g.POST("/signup", throttle, a.signup)
	g.POST("/login", throttle, a.login)
}

// index renders the signup page, or sends a signed-in user to the dashboard.
func (a *IndexController) index(c *gin.Context) {
	if session.IsLogin(c) {
		c.Redirect(http.StatusFound, "/dashboard")
		return
	}
	html(c, "signup.html", "pages.signup.title", nil)
}

func (a *IndexController) loginPage(c *gin.Context) {
	if session.IsLogin(c) {
		c.Redirect(http.StatusFound, "/dashboard")
		return
	}
	html(c, "login.html", "pages.login.title", gin.H{
		"google_enabled": a.deps.OAuth != nil && a.deps.OAuth.Enabled(),
	})
}

func (a *IndexController) signup(c *gin.Context) {
	var form entity.SignupForm
	if err := c.ShouldBind(&form); err != nil {
		textMsg(c, "messages.signupFailed")
		return
	}

	user, err := a.deps.Users.Register(c.Request.Context(), form.Name, form.Email, form.Password)
	if err != nil {
		if errors.Is(err, service.ErrEmptyField) {
			textMsg(c, "messages.emptyFields")
			return
		}
		logger.Warningf("signup for \"%s\" failed: %v", template.HTMLEscapeString(form.Email), err)
		textMsg(c, "messages.signupFailed")
		return
	}

	logger.Infof("%s signed up, Ip Address: %s", template.HTMLEscapeString(user.Email), getRemoteIp(c))
	a.audit(c, service.AuditEntry{
		UserID:     user.Id,
		Email:      user.Email,
		Action:     service.ActionSignup,
		Resource:   service.ResourceUser,
		ResourceID: user.Id,
	})
	c.Redirect(http.StatusFound, "/login")
}

// login verifies the posted credentials and starts an authenticated session.
func (a *IndexController) login(c *gin.Context) {
	var form entity.LoginForm
	if err := c.ShouldBind(&form); err != nil {
		textMsg(c, "messages.loginError")
		return
	}

	safeUser := template.HTMLEscapeString(form.Email)
	user, err := a.deps.Users.CheckUser(c.Request.Context(), form.Email, form.Password)
	if err != nil {
		a.audit(c, service.AuditEntry{
			Email:    form.Email,
			Action:   service.ActionLoginFailed,
			Resource: service.ResourceUser,
		})
		switch {
		case errors.Is(err, service.ErrWrongPassword):
			logger.Warningf("wrong password for \"%s\", IP: \"%s\"", safeUser, getRemoteIp(c))
			textMsg(c, "messages.wrongPassword")
		case errors.Is(err, service.ErrUserNotFound):
			logger.Warningf("unknown user \"%s\", IP: \"%s\"", safeUser, getRemoteIp(c))
			textMsg(c, "messages.userNotFound")
		default:
			logger.Warning("login lookup failed:", err)
			textMsg(c, "messages.userNotFound")
		}
		return
	}

	if err := a.startSession(c, user); err != nil {
		logger.Warning("Unable to save session:", err)
		textMsg(c, "messages.loginError")
		return
	}

	logger.Infof("%s logged in successfully, Ip Address: %s", safeUser, getRemoteIp(c))
	a.audit(c, service.AuditEntry{
		UserID:     user.Id,
		Email:      user.Email,
		Action:     service.ActionLogin,
		Resource:   service.ResourceUser,
		ResourceID: user.Id,
	})
	c.Redirect(http.StatusFound, "/dashboard")
}

// logout ends the session, if any, and always returns to the login page.
func (a *IndexController) logout(c *gin.Context) {
	if id, ok := session.GetLoginUserID(c); ok {
		logger.Infof("user %d logged out", id)
		a.audit(c, service.AuditEntry{
			UserID:     id,
			Action:     service.ActionLogout,
			Resource:   service.ResourceUser,
			ResourceID: id,
		})
	}
	if err := session.ClearSession(c); err != nil {
		logger.Warning("Unable to save session after clearing:", err)
	}
	c.Redirect(http.StatusFound, "/login")
}

// startSession binds the session to user with the configured lifetime.
func (a *BaseController) startSession(c *gin.Context, user *model.User) error {
	session.SetMaxAge(c, a.deps.SessionMaxAge*60)
	return session.SetLoginUser(c, user)
}
