package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/Skufu/drrisk/internal/auth"
	"github.com/Skufu/drrisk/internal/history"
	"github.com/Skufu/drrisk/internal/logging"
	"github.com/Skufu/drrisk/internal/prediction"
	"github.com/Skufu/drrisk/internal/session"
)

const maxBodyBytes = 1 << 20

type HealthChecker interface {
	Ping(ctx context.Context) error
}

type Options struct {
	Predictor prediction.Predictor
	// PredictionURL is shown to users when the backend cannot be reached.
	PredictionURL string
	Sessions      session.Store
	History       history.Store
	Users         auth.CurrentUserProvider
	// DB is nil when the history database is disabled.
	DB          HealthChecker
	CORSOrigins []string
	Logger      zerolog.Logger
}

type Server struct {
	predictor     prediction.Predictor
	predictionURL string
	sessions      session.Store
	history       history.Store
	users         auth.CurrentUserProvider
	db            HealthChecker
	corsOrigins   []string
	logger        zerolog.Logger
}

func New(opts Options) *Server {
	origins := opts.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	return &Server{
		predictor:     opts.Predictor,
		predictionURL: opts.PredictionURL,
		sessions:      opts.Sessions,
		history:       opts.History,
		users:         opts.Users,
		db:            opts.DB,
		corsOrigins:   origins,
		logger:        opts.Logger,
	}
}

func (s *Server) Router() *gin.Engine {
	router := gin.New()
	router.Use(
		logging.RequestID(),
		logging.Logger(s.logger),
		logging.Recovery(s.logger),
		limitBodySize(maxBodyBytes),
		cors.New(cors.Config{
			AllowOrigins:  s.corsOrigins,
			AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowHeaders:  []string{"Origin", "Content-Type", "Authorization", sessionHeader, logging.RequestIDHeader},
			ExposeHeaders: []string{sessionHeader, logging.RequestIDHeader},
			MaxAge:        12 * time.Hour,
		}),
	)

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/readyz", s.readyz)

	api := router.Group("/api", auth.Middleware(s.users))
	api.POST("/predict", s.predict)
	api.GET("/history", s.listHistory)
	api.GET("/assistant", s.assistantGreeting)
	api.POST("/assistant", s.askAssistant)

	assessment := api.Group("/assessment", sessionID())
	assessment.GET("", s.getDraft)
	assessment.DELETE("", s.resetAssessment)
	assessment.PUT("/sections/:section", s.saveSection)
	assessment.POST("/analyze", s.analyze)
	assessment.GET("/result", s.getResult)

	return router
}

func (s *Server) readyz(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	status := http.StatusOK
	body := gin.H{"status": "ok", "db": "disabled", "sessions": "ok"}

	if s.db != nil {
		body["db"] = "ok"
		if err := s.db.Ping(ctx); err != nil {
			body["db"] = fmt.Sprintf("unhealthy: %v", err)
			status = http.StatusServiceUnavailable
		}
	}
	if err := s.sessions.Ping(ctx); err != nil {
		body["sessions"] = fmt.Sprintf("unhealthy: %v", err)
		status = http.StatusServiceUnavailable
	}

	if status != http.StatusOK {
		body["status"] = "degraded"
	}
	c.JSON(status, body)
}

func limitBodySize(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}
