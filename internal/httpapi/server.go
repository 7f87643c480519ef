package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/olegrjumin/privacyparrot/internal/logging"
	"github.com/olegrjumin/privacyparrot/internal/service"
)

// maxRequestBytes bounds request bodies; supplied page HTML dominates
const maxRequestBytes = 8 << 20

// NewServer creates and configures a new HTTP server
func NewServer(addr string, logger *logging.Logger, svc *service.Service) *http.Server {
	return &http.Server{
		Addr:    addr,
		Handler: NewHandler(logger, svc),
	}
}

// NewHandler builds the routed handler with middleware applied
func NewHandler(logger *logging.Logger, svc *service.Service) http.Handler {
	h := &handlers{
		svc:      svc,
		logger:   logger,
		validate: validator.New(),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/health", h.health)

	// Extension-style message relay
	mux.HandleFunc("/message", h.message)

	mux.HandleFunc("/analyze", h.analyze)
	mux.HandleFunc("/analyze/stream", h.analyzeStream)
	mux.HandleFunc("/invalidate", h.invalidate)
	mux.HandleFunc("/explain/data-type", h.explainDataType)
	mux.HandleFunc("/explain/tracker", h.explainTracker)
	mux.HandleFunc("/graph", h.graph)

	return requestIDMiddleware(loggingMiddleware(logger, mux))
}

// envelope is the response shape of every JSON endpoint
type envelope struct {
	Status    string      `json:"status"` // "success" or "error"
	Data      interface{} `json:"data,omitempty"`
	Message   string      `json:"message,omitempty"`
	Kind      string      `json:"kind,omitempty"`
	Retryable bool        `json:"retryable,omitempty"`
	RequestID string      `json:"request_id,omitempty"`
}

func writeSuccess(w http.ResponseWriter, r *http.Request, data interface{}) {
	writeJSON(w, http.StatusOK, envelope{
		Status:    "success",
		Data:      data,
		RequestID: logging.RequestID(r.Context()),
	})
}

func writeError(w http.ResponseWriter, r *http.Request, status int, kind, message string, retryable bool) {
	writeJSON(w, status, envelope{
		Status:    "error",
		Message:   message,
		Kind:      kind,
		Retryable: retryable,
		RequestID: logging.RequestID(r.Context()),
	})
}

// writeServiceError maps a service failure onto the error envelope
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	info := service.Classify(err)
	writeError(w, r, info.Status, info.Kind, service.UserMessage(err), info.Retryable)
}

// writeJSON is a helper function to write JSON responses
// It sets the correct Content-Type header and encodes the data as JSON
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	// If encoding fails the status line is already out
	json.NewEncoder(w).Encode(data)
}
