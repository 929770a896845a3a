package projects

import (
	"encoding/json"
	"net/http"

	"github.com/onyxandcode/onyx-site/pkg/logging"
)

// Handler serves the public portfolio listing.
type Handler struct {
	repo   Repository
	logger *logging.Logger
}

// NewHandler creates a projects handler.
func NewHandler(repo Repository, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{repo: repo, logger: logger}
}

// ListProjectsResponse wraps a listing.
type ListProjectsResponse struct {
	Projects []Project `json:"projects"`
}

// ListPublic handles GET /api/projects. A read failure yields an empty portfolio.
func (h *Handler) ListPublic(w http.ResponseWriter, r *http.Request) {
	list := PublicList(r, h.repo, h.logger)
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(ListProjectsResponse{Projects: list})
}

// PublicList loads the portfolio in creation order, logging and swallowing errors.
func PublicList(r *http.Request, repo Repository, logger *logging.Logger) []Project {
	list, err := repo.List(r.Context(), OrderCreatedAsc)
	if err != nil {
		logger.Error("error fetching projects", "error", err)
		return []Project{}
	}
	return list
}
