package server

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/Skufu/drrisk/internal/auth"
	"github.com/Skufu/drrisk/internal/history"
	"github.com/Skufu/drrisk/internal/patient"
	"github.com/Skufu/drrisk/internal/session"
)

const sectionsComplete = "complete"

// saveSection validates one form step and replaces the stored draft with the
// submitted model.
func (s *Server) saveSection(c *gin.Context) {
	section, ok := patient.ParseSection(c.Param("section"))
	if !ok {
		abortError(c, http.StatusNotFound, "unknown_section", "unknown section "+strconv.Quote(c.Param("section")))
		return
	}

	var data patient.Data
	if err := c.ShouldBindJSON(&data); err != nil {
		bindError(c, err)
		return
	}
	if err := data.ValidateSection(section); err != nil {
		s.assessmentError(c, err)
		return
	}

	if err := s.sessions.SavePatient(c.Request.Context(), sessionKey(c), data); err != nil {
		s.internalError(c, err)
		return
	}

	next := sectionsComplete
	if n := section.Next(); n != "" {
		next = string(n)
	}
	c.JSON(http.StatusOK, gin.H{"section": section, "next": next})
}

func (s *Server) getDraft(c *gin.Context) {
	data, err := s.sessions.LoadPatient(c.Request.Context(), sessionKey(c))
	if errors.Is(err, session.ErrNotFound) {
		abortError(c, http.StatusNotFound, "not_found", "no assessment in progress")
		return
	}
	if err != nil {
		s.internalError(c, err)
		return
	}
	c.JSON(http.StatusOK, data)
}

func (s *Server) resetAssessment(c *gin.Context) {
	if err := s.sessions.Clear(c.Request.Context(), sessionKey(c)); err != nil {
		s.internalError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// analyze runs the prediction for the stored draft. The report replaces any
// earlier one for the session and a summary goes to the user's history.
func (s *Server) analyze(c *gin.Context) {
	ctx := c.Request.Context()
	key := sessionKey(c)

	data, err := s.sessions.LoadPatient(ctx, key)
	if errors.Is(err, session.ErrNotFound) {
		abortError(c, http.StatusNotFound, "not_found", "no patient data found; complete the assessment first")
		return
	}
	if err != nil {
		s.internalError(c, err)
		return
	}
	if err := data.Validate(); err != nil {
		s.assessmentError(c, err)
		return
	}

	report, err := s.predictor.PredictRisk(ctx, data)
	if err != nil {
		s.assessmentError(c, err)
		return
	}

	if err := s.sessions.SaveReport(ctx, key, *report); err != nil {
		s.internalError(c, err)
		return
	}

	if u, ok := auth.UserFromGin(c); ok {
		sum := history.NewSummary(u.ID, data, *report)
		if err := s.history.Insert(ctx, sum); err != nil {
			s.logger.Error().Err(err).Str("user_id", u.ID).Msg("failed to record assessment history")
		}
	}

	c.JSON(http.StatusOK, report)
}

func (s *Server) getResult(c *gin.Context) {
	report, err := s.sessions.LoadReport(c.Request.Context(), sessionKey(c))
	if errors.Is(err, session.ErrNotFound) {
		abortError(c, http.StatusNotFound, "not_found", "no assessment result for this session")
		return
	}
	if err != nil {
		s.internalError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// predict is the stateless variant: nothing is stored.
func (s *Server) predict(c *gin.Context) {
	var data patient.Data
	if err := c.ShouldBindJSON(&data); err != nil {
		bindError(c, err)
		return
	}
	if err := data.Validate(); err != nil {
		s.assessmentError(c, err)
		return
	}

	report, err := s.predictor.PredictRisk(c.Request.Context(), data)
	if err != nil {
		s.assessmentError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

func (s *Server) listHistory(c *gin.Context) {
	u, ok := auth.UserFromGin(c)
	if !ok {
		abortError(c, http.StatusUnauthorized, "unauthorized", "not signed in")
		return
	}

	limit := history.DefaultListLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			abortError(c, http.StatusBadRequest, "invalid_limit", "limit must be a positive integer")
			return
		}
		limit = history.ClampLimit(n)
	}

	items, err := s.history.ListByUser(c.Request.Context(), u.ID, limit)
	if err != nil {
		s.internalError(c, err)
		return
	}
	c.JSON(http.StatusOK, items)
}
