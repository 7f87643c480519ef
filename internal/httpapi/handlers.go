package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/olegrjumin/privacyparrot/internal/analysis"
	"github.com/olegrjumin/privacyparrot/internal/logging"
	"github.com/olegrjumin/privacyparrot/internal/service"
)

// Relay actions
const (
	ActionAnalyze    = "analyzePagePrivacy"
	ActionUpdateIcon = "updateIcon"
)

type handlers struct {
	svc      *service.Service
	logger   *logging.Logger
	validate *validator.Validate
}

// analyzeRequest represents the JSON request body for /analyze
type analyzeRequest struct {
	URL     string `json:"url" validate:"required,max=8192"`
	HTML    string `json:"html,omitempty"`
	Cookies string `json:"cookies,omitempty" validate:"max=65536"`
	PageID  string `json:"page_id,omitempty" validate:"max=256"`
	Reload  bool   `json:"reload,omitempty"`
}

func (r analyzeRequest) toService() service.Request {
	return service.Request{
		URL:     r.URL,
		HTML:    r.HTML,
		Cookies: r.Cookies,
		PageID:  r.PageID,
		Reload:  r.Reload,
	}
}

// messageRequest represents a relay message sent to /message
type messageRequest struct {
	Action    string `json:"action" validate:"required,oneof=analyzePagePrivacy updateIcon"`
	URL       string `json:"url" validate:"required_if=Action analyzePagePrivacy,max=8192"`
	HTML      string `json:"html,omitempty"`
	Cookies   string `json:"cookies,omitempty" validate:"max=65536"`
	PageID    string `json:"page_id,omitempty" validate:"max=256"`
	Reload    bool   `json:"reload,omitempty"`
	RiskLevel string `json:"riskLevel,omitempty" validate:"required_if=Action updateIcon"`
}

// invalidateRequest names the page whose memoized result is dropped
type invalidateRequest struct {
	PageID string `json:"page_id" validate:"required_without=URL"`
	URL    string `json:"url" validate:"required_without=PageID"`
}

// health handles GET requests to /health
func (h *handlers) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "ok",
		"service": "privacy-parrot",
		"source":  h.svc.SourceName(),
		"cached":  h.svc.Cached(),
	})
}

// message handles the relay: one endpoint, dispatched on action
func (h *handlers) message(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodPost) {
		return
	}

	var req messageRequest
	if !h.decode(w, r, &req) {
		return
	}

	switch req.Action {
	case ActionAnalyze:
		result, err := h.svc.Analyze(r.Context(), service.Request{
			URL:     req.URL,
			HTML:    req.HTML,
			Cookies: req.Cookies,
			PageID:  req.PageID,
			Reload:  req.Reload,
		})
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeSuccess(w, r, result)

	case ActionUpdateIcon:
		b, err := h.svc.Badge(analysis.Level(req.RiskLevel))
		if err != nil {
			writeError(w, r, http.StatusBadRequest, service.KindInvalidRequest, err.Error(), false)
			return
		}
		writeSuccess(w, r, b)
	}
}

// analyze handles POST requests to /analyze
func (h *handlers) analyze(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodPost) {
		return
	}

	var req analyzeRequest
	if !h.decode(w, r, &req) {
		return
	}

	result, err := h.svc.Analyze(r.Context(), req.toService())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeSuccess(w, r, result)
}

// invalidate handles POST requests to /invalidate, modelling a page reload
func (h *handlers) invalidate(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodPost) {
		return
	}

	var req invalidateRequest
	if !h.decode(w, r, &req) {
		return
	}

	key := req.PageID
	if key == "" {
		key = strings.TrimSpace(req.URL)
	}
	writeSuccess(w, r, map[string]bool{"removed": h.svc.Invalidate(key)})
}

// explainDataType handles GET /explain/data-type?name=
func (h *handlers) explainDataType(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodGet) {
		return
	}

	name := strings.TrimSpace(r.URL.Query().Get("name"))
	if name == "" {
		writeError(w, r, http.StatusBadRequest, service.KindInvalidRequest, "name is required", false)
		return
	}
	writeSuccess(w, r, h.svc.ExplainDataType(name))
}

// explainTracker handles GET /explain/tracker?name=&type=
func (h *handlers) explainTracker(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodGet) {
		return
	}

	q := r.URL.Query()
	name := strings.TrimSpace(q.Get("name"))
	if name == "" {
		writeError(w, r, http.StatusBadRequest, service.KindInvalidRequest, "name is required", false)
		return
	}
	writeSuccess(w, r, h.svc.ExplainTracker(name, strings.TrimSpace(q.Get("type"))))
}

// graph handles POST /graph with an analysis result as body
func (h *handlers) graph(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodPost) {
		return
	}

	var result analysis.Result
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBytes)).Decode(&result); err != nil {
		writeError(w, r, http.StatusBadRequest, service.KindInvalidRequest, "Invalid JSON", false)
		return
	}
	writeSuccess(w, r, h.svc.Graph(&result))
}

// decode reads and validates a JSON body, answering 400 on failure
func (h *handlers) decode(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBytes)).Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, r, http.StatusRequestEntityTooLarge, service.KindInvalidRequest, "Request body too large", false)
			return false
		}
		writeError(w, r, http.StatusBadRequest, service.KindInvalidRequest, "Invalid JSON", false)
		return false
	}

	if err := h.validate.Struct(dst); err != nil {
		writeError(w, r, http.StatusBadRequest, service.KindInvalidRequest, validationMessage(err), false)
		return false
	}
	return true
}

// validationMessage reports the first failed field
func validationMessage(err error) string {
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) && len(validationErrors) > 0 {
		ve := validationErrors[0]
		return fmt.Sprintf("validation error: %s - %s", ve.Field(), ve.Tag())
	}
	return "validation error: invalid request"
}

func allowMethod(w http.ResponseWriter, r *http.Request, method string) bool {
	if r.Method == method {
		return true
	}
	w.Header().Set("Allow", method)
	writeError(w, r, http.StatusMethodNotAllowed, service.KindInvalidRequest, "Method not allowed", false)
	return false
}
