package stats

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"strideflow/apps/backend/internal/middleware"
)

type TaskRepo interface {
	Count(ctx context.Context, orgID string) (int, error)
}

type ProjectRepo interface {
	Count(ctx context.Context, orgID string) (int, error)
}

type TeamRepo interface {
	Count(ctx context.Context, orgID string) (int, error)
}

type Handler struct {
	taskRepo    TaskRepo
	projectRepo ProjectRepo
	teamRepo    TeamRepo
	orgID       string
}

func NewHandler(t TaskRepo, p ProjectRepo, tm TeamRepo, orgID string) *Handler {
	return &Handler{taskRepo: t, projectRepo: p, teamRepo: tm, orgID: orgID}
}

type StatsResponse struct {
	Tasks       int `json:"tasks"`
	Projects    int `json:"projects"`
	TeamMembers int `json:"team_members"`
}

func (h *Handler) GetStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	correlationID := middleware.GetCorrelationID(ctx)

	orgID := r.URL.Query().Get("organizationId")
	if orgID == "" {
		orgID = h.orgID
	}

	slog.InfoContext(ctx, "getting stats", "correlationId", correlationID)

	tCount, err := h.taskRepo.Count(ctx, orgID)
	if err != nil {
		slog.ErrorContext(ctx, "failed to count tasks", "error", err, "correlationId", correlationID)
		h.writeError(ctx, w, "INTERNAL_ERROR", "failed to count tasks", http.StatusInternalServerError)
		return
	}

	pCount, err := h.projectRepo.Count(ctx, orgID)
	if err != nil {
		slog.ErrorContext(ctx, "failed to count projects", "error", err, "correlationId", correlationID)
		h.writeError(ctx, w, "INTERNAL_ERROR", "failed to count projects", http.StatusInternalServerError)
		return
	}

	mCount, err := h.teamRepo.Count(ctx, orgID)
	if err != nil {
		slog.ErrorContext(ctx, "failed to count team members", "error", err, "correlationId", correlationID)
		h.writeError(ctx, w, "INTERNAL_ERROR", "failed to count team members", http.StatusInternalServerError)
		return
	}

	resp := StatsResponse{
		Tasks:       tCount,
		Projects:    pCount,
		TeamMembers: mCount,
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(map[string]interface{}{"data": resp}); err != nil {
		slog.ErrorContext(ctx, "failed to encode response", "error", err)
	}
}

func (h *Handler) writeError(ctx context.Context, w http.ResponseWriter, code, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	resp := map[string]interface{}{
		"error": map[string]string{
			"code":    code,
			"message": message,
		},
		"correlationId": middleware.GetCorrelationID(ctx),
	}

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("failed to encode error response", "error", err)
	}
}
