package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"strideflow/apps/backend/features/pipeline"
	"strideflow/apps/backend/features/project"
	"strideflow/apps/backend/features/stats"
	"strideflow/apps/backend/features/task"
	"strideflow/apps/backend/features/team"
	"strideflow/apps/backend/internal/config"
	"strideflow/apps/backend/internal/middleware"
)

// Database is satisfied by *sql.DB; the interface keeps New mockable with
// sqlmock.
type Database interface {
	Ping() error
	Close() error
}

type App struct {
	Handler         http.Handler
	PipelineService *pipeline.Service

	port int
}

func New(
	cfg *config.Config,
	db Database,
	completer pipeline.Completer,
	events pipeline.EventPublisher,
	logger *slog.Logger,
) (*App, error) {
	// Cast db to *sql.DB for the repositories. The interface in the
	// signature keeps construction testable with sqlmock.
	sqlDB := db.(*sql.DB)

	teamRepo := team.NewPostgresRepo(sqlDB)
	projectRepo := project.NewPostgresRepo(sqlDB)
	taskRepo := task.NewPostgresRepo(sqlDB)

	// Feature: Pipeline
	pipeCfg := pipeline.Config{
		OrgID:              cfg.DefaultOrgID,
		DefaultOwnerID:     cfg.DefaultOwnerID,
		OwnMailDomain:      cfg.OwnMailDomain,
		DuplicateThreshold: cfg.DuplicateThreshold,
		NearDupThreshold:   cfg.NearDupThreshold,
		DedupWindow:        time.Duration(cfg.DedupWindowDays) * 24 * time.Hour,
		TeamSize:           cfg.TeamSize,
		InboxFallback:      cfg.InboxFallback,
		ActionableOnly:     cfg.ActionableOnly,
		Concurrency:        cfg.PipelineConcurrency,
	}
	pipelineService := pipeline.NewService(completer, projectRepo, taskRepo, teamRepo, events, pipeCfg)
	pipelineHandler := pipeline.NewHandler(pipelineService)

	// Feature: Stats
	statsHandler := stats.NewHandler(taskRepo, projectRepo, teamRepo, cfg.DefaultOrgID)

	// Middleware: CORS
	enableCORS := func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", "*")
			w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, x-agent-key")

			if r.Method == "OPTIONS" {
				w.WriteHeader(http.StatusOK)
				return
			}
			next(w, r)
		}
	}

	// Routes
	mux := http.NewServeMux()

	mux.Handle("POST /pipeline/process",
		middleware.CorrelationID(middleware.AgentKey(cfg.AgentSecretKey, enableCORS(pipelineHandler.Process))))

	mux.Handle("GET /stats", middleware.CorrelationID(enableCORS(statsHandler.GetStats)))

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	logger.Info("application wired", "port", cfg.ServerPort, "org", cfg.DefaultOrgID)

	return &App{
		Handler:         mux,
		PipelineService: pipelineService,
		port:            cfg.ServerPort,
	}, nil
}

func (a *App) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", a.port),
		Handler: a.Handler,
	}

	go func() {
		<-ctx.Done()
		slog.Info("shutting down server...")
		if err := srv.Shutdown(context.Background()); err != nil {
			slog.Error("server shutdown failed", "error", err)
		}
	}()

	slog.Info("server starting", "port", a.port)
	if err := srv.ListenAndServe(); err != http.ErrServerClosed {
		return err
	}
	return nil
}
