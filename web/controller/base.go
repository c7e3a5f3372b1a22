// Package controller provides the HTTP handlers of the task panel: signup,
// login and logout, Google sign-in, and the signed-in user's task pages.
package controller

import (
	"errors"
	"net/http"

	"github.com/mhsanaei/taskpanel/database/model"
	"github.com/mhsanaei/taskpanel/logger"
	"github.com/mhsanaei/taskpanel/web/locale"
	"github.com/mhsanaei/taskpanel/web/service"
	"github.com/mhsanaei/taskpanel/web/session"

	"github.com/gin-gonic/gin"
)

const loginUserKey = "login_user"

// Deps holds the services shared by the controllers.
type Deps struct {
	Users *service.UserService
	Tasks *service.TaskService
	Audit *service.AuditLogService
	OAuth service.OAuthProvider

	// SessionMaxAge is the session lifetime in minutes; 0 keeps a browser-session cookie.
	SessionMaxAge int
	// LoginLimiter throttles credential submissions. May be nil.
	LoginLimiter gin.HandlerFunc
}

// BaseController provides common functionality for all controllers, including authentication checks.
type BaseController struct {
	deps *Deps
}

// checkLogin lets the request through only when the session names an existing
// user, which it stores on the context. Everyone else is sent to the login page.
// A lookup failure other than a missing user answers with an error message so
// the session survives.
func (a *BaseController) checkLogin(c *gin.Context) {
	id, ok := session.GetLoginUserID(c)
	if !ok {
		c.Redirect(http.StatusFound, "/login")
		c.Abort()
		return
	}

	user, err := a.deps.Users.GetUser(c.Request.Context(), id)
	if err != nil {
		if !errors.Is(err, service.ErrUserNotFound) {
			logger.Warning("Unable to resolve session user:", err)
			textMsg(c, "messages.loginError")
			c.Abort()
			return
		}
		logger.Infof("session refers to missing user %d, clearing", id)
		if err := session.ClearSession(c); err != nil {
			logger.Warning("Unable to clear session:", err)
		}
		c.Redirect(http.StatusFound, "/login")
		c.Abort()
		return
	}

	c.Set(loginUserKey, user)
	c.Next()
}

// getLoginUser returns the user stored by checkLogin.
func getLoginUser(c *gin.Context) *model.User {
	if v, ok := c.Get(loginUserKey); ok {
		if user, ok := v.(*model.User); ok {
			return user
		}
	}
	return nil
}

// I18nWeb retrieves an internationalized message for the web interface based on the current locale.
func I18nWeb(c *gin.Context, name string, params ...string) string {
	return locale.FromContext(c, name, params...)
}
