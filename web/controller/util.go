package controller

import (
	"net/http"

	"github.com/mhsanaei/taskpanel/config"
	"github.com/mhsanaei/taskpanel/logger"
	"github.com/mhsanaei/taskpanel/web/service"

	"github.com/gin-gonic/gin"
)

// getRemoteIp returns the client address. Forwarding headers only count when
// the peer is one of the engine's trusted proxies.
func getRemoteIp(c *gin.Context) string {
	return c.ClientIP()
}

// textMsg answers with a localized plain-text message.
func textMsg(c *gin.Context, key string) {
	c.String(http.StatusOK, I18nWeb(c, key))
}

// html renders an HTML template with the provided data and title.
func html(c *gin.Context, name string, title string, data gin.H) {
	if data == nil {
		data = gin.H{}
	}
	data["title"] = title
	data["request_uri"] = c.Request.RequestURI
	c.HTML(http.StatusOK, name, getContext(data))
}

// getContext adds version and other context data to the provided gin.H.
func getContext(h gin.H) gin.H {
	a := gin.H{
		"cur_ver": config.GetVersion(),
	}
	for key, value := range h {
		a[key] = value
	}
	return a
}

// audit records entry with the request's client address. Failures are only logged.
func (a *BaseController) audit(c *gin.Context, entry service.AuditEntry) {
	if a.deps.Audit == nil {
		return
	}
	entry.IP = getRemoteIp(c)
	entry.UserAgent = c.Request.UserAgent()
	if err := a.deps.Audit.LogAction(c.Request.Context(), entry); err != nil {
		logger.Debug("audit entry dropped:", err)
	}
}
