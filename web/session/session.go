// Package session reads and writes the signed-in identity on the request's
// server-side session. Only the user id is stored; the full record is
// resolved per request.
package session

import (
	"net/http"

	"github.com/mhsanaei/taskpanel/database/model"
	"github.com/mhsanaei/taskpanel/web/cache"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

// CookieName is the name of the session cookie.
const CookieName = "taskpanel"

const (
	loginUserID = "LOGIN_USER_ID"
	oauthState  = "OAUTH_STATE"
)

// SetLoginUser marks the session as authenticated for user. Any previous
// values are dropped and the session is saved under a new id.
func SetLoginUser(c *gin.Context, user *model.User) error {
	s := sessions.Default(c)
	s.Clear()
	s.Set(cache.RenewIDKey, true)
	s.Set(loginUserID, user.Id)
	return s.Save()
}

// SetMaxAge sets the cookie lifetime in seconds; zero means a browser-session cookie.
func SetMaxAge(c *gin.Context, maxAge int) {
	s := sessions.Default(c)
	s.Options(sessions.Options{
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// GetLoginUserID returns the authenticated user's id, if any.
func GetLoginUserID(c *gin.Context) (int, bool) {
	s := sessions.Default(c)
	if obj := s.Get(loginUserID); obj != nil {
		if id, ok := obj.(int); ok && id > 0 {
			return id, true
		}
	}
	return 0, false
}

// IsLogin reports whether the session carries a signed-in user.
func IsLogin(c *gin.Context) bool {
	_, ok := GetLoginUserID(c)
	return ok
}

// SetOAuthState remembers the state parameter of an outgoing OAuth redirect.
func SetOAuthState(c *gin.Context, state string) error {
	s := sessions.Default(c)
	s.Set(oauthState, state)
	return s.Save()
}

// PopOAuthState returns and forgets the stored OAuth state.
func PopOAuthState(c *gin.Context) string {
	s := sessions.Default(c)
	state, _ := s.Get(oauthState).(string)
	if state != "" {
		s.Delete(oauthState)
		_ = s.Save()
	}
	return state
}

// ClearSession destroys the server-side session and expires the cookie. The
// cookie is expired even when the store cannot be reached.
func ClearSession(c *gin.Context) error {
	s := sessions.Default(c)
	s.Clear()
	s.Options(sessions.Options{
		Path:   "/",
		MaxAge: -1,
	})
	err := s.Save()
	if err != nil {
		c.SetCookie(CookieName, "", -1, "/", "", false, true)
	}
	return err
}
