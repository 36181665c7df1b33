package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Skufu/drrisk/internal/patient"
	"github.com/Skufu/drrisk/internal/prediction"
)

// statusClientClosedRequest is the nginx convention for a caller that went
// away before the response was ready.
const statusClientClosedRequest = 499

func abortError(c *gin.Context, status int, code, msg string) {
	c.AbortWithStatusJSON(status, gin.H{"error": msg, "code": code})
}

// bindError answers a body that could not be read or decoded.
func bindError(c *gin.Context, err error) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		abortError(c, http.StatusRequestEntityTooLarge, "payload_too_large", "payload too large")
		return
	}
	abortError(c, http.StatusBadRequest, "invalid_payload", "invalid payload")
}

// assessmentError maps validation and prediction failures to responses.
func (s *Server) assessmentError(c *gin.Context, err error) {
	var verr *patient.ValidationError
	var perr *prediction.PredictionError
	var ierr *prediction.InvalidResponseError

	switch {
	case errors.As(err, &verr):
		c.AbortWithStatusJSON(http.StatusUnprocessableEntity, gin.H{
			"error":   verr.Error(),
			"code":    "validation_failed",
			"section": verr.Section,
			"fields":  verr.Fields,
		})
	case errors.As(err, &perr) && perr.Timeout():
		s.logger.Warn().Err(err).Str("prediction_url", s.predictionURL).Msg("prediction backend timed out")
		abortError(c, http.StatusGatewayTimeout, "prediction_timeout",
			"The prediction server at "+s.predictionURL+" did not respond in time. Please try again.")
	case errors.As(err, &perr) && perr.Canceled():
		s.logger.Debug().Err(err).Msg("prediction request canceled by caller")
		abortError(c, statusClientClosedRequest, "request_canceled", "request canceled")
	case errors.As(err, &perr) && perr.Unreachable():
		s.logger.Warn().Err(err).Str("prediction_url", s.predictionURL).Msg("prediction backend unreachable")
		abortError(c, http.StatusBadGateway, "prediction_unreachable",
			"Unable to connect to the prediction server. Please ensure the backend is running on "+s.predictionURL)
	case errors.As(err, &perr):
		s.logger.Warn().Err(err).Int("upstream_status", perr.StatusCode).Msg("prediction backend error")
		c.AbortWithStatusJSON(http.StatusBadGateway, gin.H{
			"error":          perr.Error(),
			"code":           "prediction_failed",
			"upstreamStatus": perr.StatusCode,
		})
	case errors.As(err, &ierr):
		s.logger.Warn().Err(err).Msg("prediction backend returned an unusable response")
		abortError(c, http.StatusBadGateway, "invalid_prediction", ierr.Error())
	default:
		s.internalError(c, err)
	}
}

func (s *Server) internalError(c *gin.Context, err error) {
	_ = c.Error(err)
	abortError(c, http.StatusInternalServerError, "internal", "internal server error")
}
