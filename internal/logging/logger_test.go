package logging

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLogger_Levels(t *testing.T) {
	testCases := []struct {
		name     string
		log      func(l *Logger)
		expected string
	}{
		{"info", func(l *Logger) { l.Info("Analysis completed", "risk", "low", "score", 0) }, "[INFO] Analysis completed risk=low score=0\n"},
		{"warn", func(l *Logger) { l.Warn("Fetch retry") }, "[WARN] Fetch retry\n"},
		{"error", func(l *Logger) { l.Error("Fetch failed", "kind", "timeout") }, "[ERROR] Fetch failed kind=timeout\n"},
		{"odd pairs", func(l *Logger) { l.Info("msg", "a", 1, "dangling") }, "[INFO] msg a=1\n"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var buf bytes.Buffer
			tc.log(NewWithWriter(&buf))
			assert.Contains(t, buf.String(), tc.expected)
		})
	}
}

func TestLogger_With(t *testing.T) {
	var buf bytes.Buffer
	base := NewWithWriter(&buf)
	reqLog := base.With("request_id", "r-1")

	reqLog.Info("Analyzing page", "url", "https://example.com/")
	assert.Contains(t, buf.String(), "[INFO] Analyzing page request_id=r-1 url=https://example.com/")

	buf.Reset()
	base.Info("plain")
	assert.NotContains(t, buf.String(), "request_id")
}
