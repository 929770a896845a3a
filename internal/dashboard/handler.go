package dashboard

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/onyxandcode/onyx-site/internal/auth"
	"github.com/onyxandcode/onyx-site/internal/http/middleware"
	"github.com/onyxandcode/onyx-site/internal/projects"
	"github.com/onyxandcode/onyx-site/pkg/logging"
)

// Viewer is the signed-in operator shown in the sidebar.
type Viewer struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// View is everything the dashboard renders.
type View struct {
	User     Viewer             `json:"user"`
	Projects []projects.Project `json:"projects"`
	Stats    Stats              `json:"stats"`
	// StatsAvailable is false when the aggregate queries failed.
	StatsAvailable bool `json:"stats_available"`
}

// Renderer draws the HTML dashboard.
type Renderer interface {
	RenderDashboard(w http.ResponseWriter, view View)
}

// UserLookup resolves the session subject to a stored account.
type UserLookup interface {
	User(ctx context.Context, id string) (*auth.User, error)
}

// HandlerConfig wires the dashboard handler.
type HandlerConfig struct {
	Projects projects.Repository
	Stats    StatsSource
	Users    UserLookup
	Pages    Renderer
	Logger   *logging.Logger
}

// Handler serves the session-gated dashboard. It must be mounted behind
// middleware.RequireSession.
type Handler struct {
	projects projects.Repository
	stats    StatsSource
	users    UserLookup
	pages    Renderer
	logger   *logging.Logger
}

// NewHandler creates a dashboard handler.
func NewHandler(cfg HandlerConfig) *Handler {
	if cfg.Logger == nil {
		cfg.Logger = logging.Default()
	}
	return &Handler{
		projects: cfg.Projects,
		stats:    cfg.Stats,
		users:    cfg.Users,
		pages:    cfg.Pages,
		logger:   cfg.Logger,
	}
}

// Page handles GET /dashboard.
func (h *Handler) Page(w http.ResponseWriter, r *http.Request) {
	view := h.load(r)
	if h.pages == nil {
		writeJSON(w, view)
		return
	}
	h.pages.RenderDashboard(w, view)
}

// API handles GET /api/dashboard.
func (h *Handler) API(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.load(r))
}

func (h *Handler) load(r *http.Request) View {
	ctx := r.Context()
	view := View{Projects: []projects.Project{}}

	if claims, ok := middleware.SessionClaimsFromContext(ctx); ok {
		view.User = Viewer{ID: claims.Subject, Email: claims.Email, Name: claims.Name}
		if h.users != nil {
			if u, err := h.users.User(ctx, claims.Subject); err == nil {
				view.User.Email = u.Email
				view.User.Name = u.DisplayName
			}
		}
	}
	if view.User.Name == "" {
		view.User.Name = view.User.Email
	}

	if h.projects != nil {
		list, err := h.projects.List(ctx, projects.OrderUpdatedDesc)
		if err != nil {
			h.logger.Error("error fetching projects", "error", err)
		} else {
			view.Projects = list
		}
	}

	if h.stats != nil {
		stats, err := h.stats.Stats(ctx)
		if err != nil {
			h.logger.Error("error computing dashboard stats", "error", err)
		} else {
			view.Stats = stats
			view.StatsAvailable = true
		}
	}
	if view.Stats.LeadsByStatus == nil {
		view.Stats.LeadsByStatus = map[string]int{}
	}
	return view
}

func writeJSON(w http.ResponseWriter, payload any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(payload)
}
