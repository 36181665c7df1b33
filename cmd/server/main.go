package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/Skufu/drrisk/internal/auth"
	"github.com/Skufu/drrisk/internal/config"
	"github.com/Skufu/drrisk/internal/history"
	"github.com/Skufu/drrisk/internal/logging"
	"github.com/Skufu/drrisk/internal/patient"
	"github.com/Skufu/drrisk/internal/prediction"
	"github.com/Skufu/drrisk/internal/server"
	"github.com/Skufu/drrisk/internal/session"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "drrisk",
		Short:        "Diabetic retinopathy risk assessment service",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}

	root.AddCommand(serveCmd())
	root.AddCommand(assessCmd())
	root.AddCommand(migrateCmd())
	root.AddCommand(tokenCmd())
	return root
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

func assessCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "assess",
		Short: "Validate a patient JSON file, run one prediction and print the report",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, _ := cmd.Flags().GetString("file")

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			logger := logging.NewWithWriter(cmd.ErrOrStderr(), cfg.Env, cfg.LogLevel)

			data, err := readPatientFile(path)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			report, err := assess(ctx, newPredictionClient(cfg, logger), data)
			if err != nil {
				var perr *prediction.PredictionError
				if errors.As(err, &perr) && perr.Timeout() {
					return fmt.Errorf("prediction server at %s did not respond in time: %w", cfg.PredictionAPIURL, err)
				}
				if errors.As(err, &perr) && perr.Unreachable() {
					return fmt.Errorf("unable to connect to the prediction server at %s: %w", cfg.PredictionAPIURL, err)
				}
				return err
			}
			return writeJSON(cmd.OutOrStdout(), report)
		},
	}
	cmd.Flags().StringP("file", "f", "", "Path to a patient JSON file (- for stdin)")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the assessment history table",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if cfg.DatabaseURL == "" {
				return fmt.Errorf("DATABASE_URL is required for migrate")
			}

			ctx := cmd.Context()
			pool, err := history.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			if err := history.NewPGStore(pool).EnsureSchema(ctx); err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "predictions table is up to date.")
			return nil
		},
	}
}

func tokenCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue a signed access token for local testing",
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, _ := cmd.Flags().GetString("user")
			email, _ := cmd.Flags().GetString("email")
			ttl, _ := cmd.Flags().GetDuration("ttl")

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if cfg.JWTSecret == "" {
				return fmt.Errorf("JWT_SECRET is required to issue tokens")
			}

			token, err := auth.NewJWTProvider(cfg.JWTSecret, cfg.JWTIssuer).IssueToken(auth.User{ID: userID, Email: email}, ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().String("user", "", "User id placed in the token subject")
	cmd.Flags().String("email", "", "Optional email claim")
	cmd.Flags().Duration("ttl", 24*time.Hour, "Token lifetime")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}

func runServer() error {
	cfg, err := config.Load()
	if err != nil {
		l := logging.New("", "info")
		l.Error().Err(err).Msg("config error")
		return err
	}
	logger := logging.New(cfg.Env, cfg.LogLevel)
	gin.SetMode(cfg.GinMode)

	ctx := context.Background()
	d, cleanup, err := buildDeps(ctx, cfg, logger)
	if err != nil {
		logger.Error().Err(err).Msg("startup failed")
		return err
	}
	defer cleanup()

	router := server.New(server.Options{
		Predictor:     d.predictor,
		PredictionURL: cfg.PredictionAPIURL,
		Sessions:      d.sessions,
		History:       d.history,
		Users:         d.users,
		DB:            d.db,
		CORSOrigins:   cfg.CORSOrigins,
		Logger:        logger,
	}).Router()

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      writeTimeout(cfg.PredictionTimeout),
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	logger.Info().Str("port", cfg.Port).Str("prediction_api", cfg.PredictionAPIURL).Msg("server listening")
	waitForShutdown(srv, logger)
	return nil
}

type deps struct {
	predictor prediction.Predictor
	sessions  session.Store
	history   history.Store
	users     auth.CurrentUserProvider
	db        server.HealthChecker
}

// buildDeps picks the Redis and Postgres backed stores when configured and
// falls back to in-process stores otherwise.
func buildDeps(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*deps, func(), error) {
	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	d := &deps{predictor: newPredictionClient(cfg, logger)}

	if cfg.RedisURL != "" {
		rdb, err := session.ConnectRedis(ctx, cfg.RedisURL)
		if err != nil {
			return nil, nil, err
		}
		closers = append(closers, func() { _ = rdb.Close() })
		d.sessions = session.NewRedisStore(rdb, cfg.SessionTTL)
		logger.Info().Msg("sessions stored in redis")
	} else {
		d.sessions = session.NewMemoryStore(cfg.SessionTTL)
		logger.Info().Msg("sessions stored in memory")
	}

	if cfg.EnableDB {
		pool, err := history.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("database connection failed: %w", err)
		}
		closers = append(closers, pool.Close)
		store := history.NewPGStore(pool)
		if err := store.EnsureSchema(ctx); err != nil {
			cleanup()
			return nil, nil, err
		}
		d.history = store
		d.db = pool
		logger.Info().Msg("connected to database")
	} else {
		d.history = history.NewMemoryStore()
	}

	if cfg.UseDevAuth() {
		logger.Warn().Msg("development auth is active: every request runs as dev-user")
		d.users = auth.NewDevProvider()
	} else {
		d.users = auth.NewJWTProvider(cfg.JWTSecret, cfg.JWTIssuer)
	}

	return d, cleanup, nil
}

func newPredictionClient(cfg *config.Config, logger zerolog.Logger) *prediction.Client {
	return prediction.NewClient(cfg.PredictionAPIURL, &http.Client{Timeout: cfg.PredictionTimeout}, logger)
}

// writeTimeout leaves room for the upstream prediction call.
func writeTimeout(predictionTimeout time.Duration) time.Duration {
	if predictionTimeout <= 0 {
		return 2 * time.Minute
	}
	return predictionTimeout + 15*time.Second
}

func assess(ctx context.Context, p prediction.Predictor, data patient.Data) (*prediction.RiskReport, error) {
	if err := data.Validate(); err != nil {
		return nil, err
	}
	return p.PredictRisk(ctx, data)
}

func readPatientFile(path string) (patient.Data, error) {
	var r io.Reader
	if path == "-" {
		r = os.Stdin
	} else {
		f, err := os.Open(path)
		if err != nil {
			return patient.Data{}, fmt.Errorf("open patient file: %w", err)
		}
		defer f.Close()
		r = f
	}

	var data patient.Data
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&data); err != nil {
		return patient.Data{}, fmt.Errorf("decode patient file: %w", err)
	}
	return data, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func waitForShutdown(srv *http.Server, logger zerolog.Logger) {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logger.Info().Msg("shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
	}
}
