package intake

import (
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"
	"strings"

	"github.com/onyxandcode/onyx-site/internal/notify"
	"github.com/onyxandcode/onyx-site/pkg/logging"
)

// FailureMessage is the alert text shown when a lead could not be stored.
const FailureMessage = "System error. Please contact directly via WhatsApp."

// DefaultMaxUploadBytes caps the whole multipart body.
const DefaultMaxUploadBytes int64 = 10 << 20

// Fallback names the out-of-band contact channels offered on failure.
type Fallback struct {
	Phone    string `json:"phone"`
	WhatsApp string `json:"whatsapp"`
}

// FailureRenderer renders the blocking-alert page for browser submissions.
type FailureRenderer interface {
	RenderSubmitFailure(w http.ResponseWriter, status int, message string, fallback Fallback)
}

// Handler accepts contact form posts.
type Handler struct {
	submitter *Submitter
	fallback  Fallback
	maxUpload int64
	pages     FailureRenderer
	logger    *logging.Logger
}

// HandlerConfig configures Handler.
type HandlerConfig struct {
	Fallback       Fallback
	MaxUploadBytes int64
	Pages          FailureRenderer
	Logger         *logging.Logger
}

// NewHandler creates the contact form handler.
func NewHandler(submitter *Submitter, cfg HandlerConfig) *Handler {
	if cfg.Logger == nil {
		cfg.Logger = logging.Default()
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = DefaultMaxUploadBytes
	}
	return &Handler{
		submitter: submitter,
		fallback:  cfg.Fallback,
		maxUpload: cfg.MaxUploadBytes,
		pages:     cfg.Pages,
		logger:    cfg.Logger,
	}
}

// submitResponse is the JSON body for API clients.
type submitResponse struct {
	LeadID   string    `json:"lead_id,omitempty"`
	Redirect string    `json:"redirect,omitempty"`
	Error    string    `json:"error,omitempty"`
	Fallback *Fallback `json:"fallback,omitempty"`
}

// Submit handles POST /contact and POST /api/leads.
func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	jsonClient := wantsJSON(r)

	form, err := h.parseForm(w, r)
	if err != nil {
		h.logger.Warn("failed to parse contact form", "error", err)
		status := http.StatusBadRequest
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			status = http.StatusRequestEntityTooLarge
		}
		h.writeError(w, jsonClient, status, "invalid form submission")
		return
	}

	result, err := h.submitter.Submit(r.Context(), form)
	if err != nil {
		var persistErr *PersistenceFailure
		switch {
		case errors.Is(err, ErrInvalidForm):
			h.writeError(w, jsonClient, http.StatusBadRequest, err.Error())
		case errors.As(err, &persistErr):
			h.writeFailure(w, jsonClient)
		default:
			h.logger.Error("unexpected submission error", "error", err)
			h.writeFailure(w, jsonClient)
		}
		return
	}

	if jsonClient {
		writeJSON(w, http.StatusCreated, submitResponse{LeadID: result.LeadID, Redirect: result.Redirect})
		return
	}
	http.Redirect(w, r, result.Redirect, http.StatusSeeOther)
}

func (h *Handler) writeFailure(w http.ResponseWriter, jsonClient bool) {
	if jsonClient || h.pages == nil {
		fb := h.fallback
		writeJSON(w, http.StatusServiceUnavailable, submitResponse{Error: FailureMessage, Fallback: &fb})
		return
	}
	h.pages.RenderSubmitFailure(w, http.StatusServiceUnavailable, FailureMessage, h.fallback)
}

func (h *Handler) writeError(w http.ResponseWriter, jsonClient bool, status int, msg string) {
	if jsonClient {
		writeJSON(w, status, submitResponse{Error: msg})
		return
	}
	http.Error(w, msg, status)
}

func (h *Handler) parseForm(w http.ResponseWriter, r *http.Request) (Form, error) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload)

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch mediaType {
	case "application/json":
		var payload struct {
			Name    string `json:"name"`
			Email   string `json:"email"`
			Message string `json:"message"`
		}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			return Form{}, err
		}
		return Form{Name: payload.Name, Email: payload.Email, Message: payload.Message}, nil
	case "multipart/form-data":
		if err := r.ParseMultipartForm(h.maxUpload); err != nil {
			return Form{}, err
		}
		form := formFromValues(r)
		att, err := readAttachment(r)
		if err != nil {
			return Form{}, err
		}
		form.Attachment = att
		return form, nil
	default:
		if err := r.ParseForm(); err != nil {
			return Form{}, err
		}
		return formFromValues(r), nil
	}
}

func formFromValues(r *http.Request) Form {
	return Form{
		Name:    r.PostFormValue("name"),
		Email:   r.PostFormValue("email"),
		Message: r.PostFormValue("message"),
	}
}

// readAttachment buffers the optional upload so it survives the request.
func readAttachment(r *http.Request) (*notify.Attachment, error) {
	file, header, err := r.FormFile(notify.UploadField)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 && header.Filename == "" {
		return nil, nil
	}
	return &notify.Attachment{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Data:        data,
	}, nil
}

func wantsJSON(r *http.Request) bool {
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		return true
	}
	accept := r.Header.Get("Accept")
	return strings.Contains(accept, "application/json") && !strings.Contains(accept, "text/html")
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
