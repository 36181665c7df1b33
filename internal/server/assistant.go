package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Skufu/drrisk/internal/assistant"
	"github.com/Skufu/drrisk/internal/prediction"
	"github.com/Skufu/drrisk/internal/session"
)

type assistantRequest struct {
	Message string `json:"message" binding:"required,max=1000"`
}

func (s *Server) assistantGreeting(c *gin.Context) {
	c.JSON(http.StatusOK, assistant.Greeting())
}

// askAssistant answers a help question. When the caller sends X-Session-ID
// and that session has a report, answers about results mention it.
func (s *Server) askAssistant(c *gin.Context) {
	var req assistantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		abortError(c, http.StatusBadRequest, "invalid_payload", "message is required")
		return
	}

	c.JSON(http.StatusOK, assistant.RespondWithReport(req.Message, s.latestReport(c)))
}

// latestReport is best effort: a missing or unreadable report just means the
// answer carries no personal summary.
func (s *Server) latestReport(c *gin.Context) *prediction.RiskReport {
	sid := strings.TrimSpace(c.GetHeader(sessionHeader))
	if sid == "" || len(sid) > maxSessionIDLen {
		return nil
	}
	c.Set(sessionCtxKey, sid)

	report, err := s.sessions.LoadReport(c.Request.Context(), sessionKey(c))
	if err != nil {
		if !errors.Is(err, session.ErrNotFound) {
			s.logger.Warn().Err(err).Msg("assistant could not load session report")
		}
		return nil
	}
	return report
}
