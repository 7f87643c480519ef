package httpapi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/olegrjumin/privacyparrot/internal/service"
)

// analyzeStream handles SSE streaming of one analysis
// GET /analyze/stream?url=&page_id=&reload=
func (h *handlers) analyzeStream(w http.ResponseWriter, r *http.Request) {
	// EventSource only supports GET
	if !allowMethod(w, r, http.MethodGet) {
		return
	}

	q := r.URL.Query()
	url := strings.TrimSpace(q.Get("url"))
	if url == "" {
		writeError(w, r, http.StatusBadRequest, service.KindInvalidRequest, "url is required", false)
		return
	}
	reload, _ := strconv.ParseBool(q.Get("reload"))

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, r, http.StatusInternalServerError, service.KindInternal, "Streaming not supported", false)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no") // Disable nginx buffering

	events := h.svc.AnalyzeStreaming(r.Context(), service.Request{
		URL:    url,
		PageID: q.Get("page_id"),
		Reload: reload,
	})

	log := h.logger.FromContext(r.Context())
	for event := range events {
		data, err := json.Marshal(event)
		if err != nil {
			log.Error("Failed to marshal event", "stage", event.Stage, "error", err)
			continue
		}

		fmt.Fprintf(w, "event: %s\n", event.Stage)
		fmt.Fprintf(w, "data: %s\n\n", data)
		flusher.Flush()
	}
}
