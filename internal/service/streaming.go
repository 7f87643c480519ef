package service

import (
	"context"
	"errors"
	"time"

	"github.com/olegrjumin/privacyparrot/internal/analysis"
)

// StreamEvent represents a progressive event during page analysis
type StreamEvent struct {
	Stage   string      `json:"stage"`   // "start", "snapshot", "complete", "error"
	Message string      `json:"message"` // Human-readable message
	Data    interface{} `json:"data"`    // Stage-specific data or final result
}

// Stream stages
const (
	StageStart    = "start"
	StageSnapshot = "snapshot"
	StageComplete = "complete"
	StageError    = "error"
)

// AnalyzeStreaming runs Analyze and emits progressive events as it goes.
// The channel is closed after the complete or error event, or when ctx ends.
func (s *Service) AnalyzeStreaming(ctx context.Context, req Request) <-chan StreamEvent {
	events := make(chan StreamEvent, 4)

	go func() {
		defer close(events)

		send := func(evt StreamEvent) bool {
			select {
			case events <- evt:
				return true
			case <-ctx.Done():
				return false
			}
		}

		if !send(StreamEvent{
			Stage:   StageStart,
			Message: "Starting analysis...",
			Data:    map[string]string{"url": req.URL, "source": s.sourceFor(req)},
		}) {
			return
		}

		if cached, ok := s.results.get(req.key()); ok && !req.Reload {
			send(StreamEvent{Stage: StageComplete, Message: "Analysis complete", Data: cached})
			return
		}

		if req.HTML == "" && s.source != nil && s.engine.CheckRestricted(req.URL) == nil && req.URL != "" {
			if !send(StreamEvent{
				Stage:   StageSnapshot,
				Message: "Loading page...",
				Data:    map[string]string{"source": s.SourceName()},
			}) {
				return
			}
		}

		start := time.Now()
		result, err := s.Analyze(ctx, req)
		if err != nil {
			send(StreamEvent{Stage: StageError, Message: UserMessage(err), Data: Classify(err)})
			return
		}

		s.logger.FromContext(ctx).Info("Streaming analysis finished", "url", req.URL, "duration_ms", time.Since(start).Milliseconds())
		send(StreamEvent{Stage: StageComplete, Message: "Analysis complete", Data: result})
	}()

	return events
}

// RestrictedPageMessage is shown when analysis is refused on a browser page
const RestrictedPageMessage = "Privacy analysis is not available on Chrome system pages."

// UserMessage returns the message shown to the user for an analysis failure
func UserMessage(err error) string {
	var analysisErr *analysis.AnalysisError
	switch {
	case errors.Is(err, analysis.ErrRestrictedPage):
		return RestrictedPageMessage
	case errors.As(err, &analysisErr):
		return analysisErr.Error()
	}
	return err.Error()
}
