package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/Skufu/drrisk/internal/auth"
)

const (
	sessionHeader   = "X-Session-ID"
	sessionCtxKey   = "session_id"
	maxSessionIDLen = 128
)

// sessionID reads X-Session-ID or mints a new one, and echoes it back.
func sessionID() gin.HandlerFunc {
	return func(c *gin.Context) {
		sid := strings.TrimSpace(c.GetHeader(sessionHeader))
		if len(sid) > maxSessionIDLen {
			abortError(c, http.StatusBadRequest, "invalid_session", "session id too long")
			return
		}
		if sid == "" {
			sid = uuid.NewString()
		}
		c.Set(sessionCtxKey, sid)
		c.Header(sessionHeader, sid)
		c.Next()
	}
}

// sessionKey scopes the client-chosen id to the signed-in user so one user
// cannot read another's draft by guessing ids.
func sessionKey(c *gin.Context) string {
	sid := c.GetString(sessionCtxKey)
	if u, ok := auth.UserFromGin(c); ok {
		return u.ID + "/" + sid
	}
	return sid
}
