package auth

import (
	"encoding/json"
	"errors"
	"mime"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/onyxandcode/onyx-site/pkg/logging"
)

// DashboardPath is where a successful sign-in lands.
const DashboardPath = "/dashboard"

// LoginPath is where a missing session is sent.
const LoginPath = "/login"

// LoginView is the data behind the login page.
type LoginView struct {
	Email     string
	Error     string
	Providers []string
}

// LoginRenderer draws the login page.
type LoginRenderer interface {
	RenderLogin(w http.ResponseWriter, status int, view LoginView)
}

// HandlerConfig wires optional collaborators.
type HandlerConfig struct {
	Providers Providers
	Pages     LoginRenderer
	Logger    *logging.Logger
}

// Handler serves the sign-in surface.
type Handler struct {
	service   *Service
	sessions  *Sessions
	providers Providers
	pages     LoginRenderer
	logger    *logging.Logger
}

// NewHandler creates an auth handler.
func NewHandler(service *Service, sessions *Sessions, cfg HandlerConfig) *Handler {
	if cfg.Logger == nil {
		cfg.Logger = logging.Default()
	}
	if cfg.Pages == nil {
		cfg.Pages = plainLoginRenderer{}
	}
	if cfg.Providers == nil {
		cfg.Providers = Providers{}
	}
	return &Handler{
		service:   service,
		sessions:  sessions,
		providers: cfg.Providers,
		pages:     cfg.Pages,
		logger:    cfg.Logger,
	}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginPage handles GET /login. A failed OAuth round trip comes back with
// ?error=oauth&provider=<name>.
func (h *Handler) LoginPage(w http.ResponseWriter, r *http.Request) {
	view := LoginView{Providers: h.providers.Names()}
	if r.URL.Query().Get("error") != "" {
		provider := r.URL.Query().Get("provider")
		if provider == "" {
			view.Error = UnexpectedErrorMessage
		} else {
			view.Error = ProviderFailureMessage(provider)
		}
	}
	h.pages.RenderLogin(w, http.StatusOK, view)
}

// Login handles POST /auth/login for both the HTML form and JSON clients.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	asJSON := isJSONRequest(r)
	var req loginRequest
	if asJSON {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON body"})
			return
		}
	} else {
		if err := r.ParseForm(); err != nil {
			h.pages.RenderLogin(w, http.StatusBadRequest, LoginView{Error: UnexpectedErrorMessage, Providers: h.providers.Names()})
			return
		}
		req.Email = r.PostFormValue("email")
		req.Password = r.PostFormValue("password")
	}

	user, err := h.service.SignInWithPassword(r.Context(), req.Email, req.Password)
	if err == nil {
		err = h.sessions.Start(w, user)
	}
	if err != nil {
		message := InvalidCredentialsMessage
		status := http.StatusUnauthorized
		if !errors.Is(err, ErrInvalidCredentials) {
			h.logger.Error("sign-in failed", "error", err)
			message = UnexpectedErrorMessage
			status = http.StatusInternalServerError
		}
		if asJSON {
			writeJSON(w, status, map[string]string{"error": message})
			return
		}
		renderStatus := http.StatusOK
		if status == http.StatusInternalServerError {
			renderStatus = status
		}
		h.pages.RenderLogin(w, renderStatus, LoginView{Email: req.Email, Error: message, Providers: h.providers.Names()})
		return
	}

	h.logger.Info("user signed in", "user_id", user.ID)
	if asJSON {
		writeJSON(w, http.StatusOK, map[string]any{"user": user})
		return
	}
	http.Redirect(w, r, DashboardPath, http.StatusSeeOther)
}

// Logout handles POST /auth/logout.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	h.sessions.End(w)
	if isJSONRequest(r) || wantsJSON(r) {
		writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
		return
	}
	http.Redirect(w, r, LoginPath, http.StatusSeeOther)
}

type sessionView struct {
	UserID    string `json:"user_id"`
	Email     string `json:"email"`
	Name      string `json:"name,omitempty"`
	ExpiresAt int64  `json:"expires_at"`
}

// Session handles GET /auth/session.
func (h *Handler) Session(w http.ResponseWriter, r *http.Request) {
	claims, err := h.sessions.FromRequest(r)
	if err != nil {
		writeJSON(w, http.StatusOK, map[string]any{"session": nil})
		return
	}
	view := sessionView{UserID: claims.Subject, Email: claims.Email, Name: claims.Name}
	if claims.ExpiresAt != nil {
		view.ExpiresAt = claims.ExpiresAt.Unix()
	}
	writeJSON(w, http.StatusOK, map[string]any{"session": view})
}

// OAuthStart handles GET /auth/oauth/{provider}.
func (h *Handler) OAuthStart(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "provider")
	provider, ok := h.providers[name]
	if !ok {
		h.logger.Warn("oauth provider not configured", "provider", name)
		h.pages.RenderLogin(w, http.StatusNotFound, LoginView{Error: ProviderFailureMessage(name), Providers: h.providers.Names()})
		return
	}
	state := newOAuthState()
	setStateCookie(w, state, h.sessions.secure)
	http.Redirect(w, r, provider.AuthCodeURL(state), http.StatusFound)
}

// OAuthCallback handles GET /auth/oauth/{provider}/callback.
func (h *Handler) OAuthCallback(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "provider")
	fail := func(reason string, err error) {
		h.logger.Warn("oauth callback failed", "provider", name, "reason", reason, "error", err)
		q := url.Values{"error": {"oauth"}, "provider": {name}}
		http.Redirect(w, r, LoginPath+"?"+q.Encode(), http.StatusFound)
	}

	provider, ok := h.providers[name]
	if !ok {
		fail("unknown_provider", ErrUnknownProvider)
		return
	}
	validState := verifyStateCookie(r)
	clearStateCookie(w)
	if !validState {
		fail("invalid_state", nil)
		return
	}
	code := r.URL.Query().Get("code")
	if code == "" {
		fail("no_code", nil)
		return
	}

	profile, err := provider.Exchange(r.Context(), code)
	if err != nil {
		fail("exchange_failed", err)
		return
	}
	user, err := h.service.UpsertOAuthUser(r.Context(), name, profile)
	if err != nil {
		fail("upsert_failed", err)
		return
	}
	if err := h.sessions.Start(w, user); err != nil {
		fail("session_failed", err)
		return
	}
	http.Redirect(w, r, DashboardPath, http.StatusFound)
}

func isJSONRequest(r *http.Request) bool {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && mediaType == "application/json"
}

func wantsJSON(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "application/json")
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

type plainLoginRenderer struct{}

func (plainLoginRenderer) RenderLogin(w http.ResponseWriter, status int, view LoginView) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	if view.Error != "" {
		_, _ = w.Write([]byte(view.Error))
	}
}
