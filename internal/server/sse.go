package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/jonathan/cv-studio/internal/store"
)

// keepAliveInterval spaces the comments that keep idle streams open.
const keepAliveInterval = 25 * time.Second

// SSEWriter helps write Server-Sent Events
type SSEWriter struct {
	w       http.ResponseWriter
	flusher http.Flusher
}

// NewSSEWriter creates a new SSE writer
func NewSSEWriter(w http.ResponseWriter) (*SSEWriter, error) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return nil, fmt.Errorf("streaming not supported")
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	return &SSEWriter{w: w, flusher: flusher}, nil
}

// WriteEvent sends an SSE event
func (s *SSEWriter) WriteEvent(event string, data any) error {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return err
	}

	if _, err := fmt.Fprintf(s.w, "event: %s\n", event); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(s.w, "data: %s\n\n", jsonData); err != nil {
		return err
	}
	s.flusher.Flush()
	return nil
}

// WriteComment sends a comment line, which clients ignore.
func (s *SSEWriter) WriteComment(text string) error {
	if _, err := fmt.Fprintf(s.w, ": %s\n\n", text); err != nil {
		return err
	}
	s.flusher.Flush()
	return nil
}

// WriteError sends an error event
func (s *SSEWriter) WriteError(message string) {
	s.WriteEvent("error", map[string]string{"error": message}) //nolint:errcheck
}

// changeEvent is the payload of a "change" event.
type changeEvent struct {
	Slice store.Slice `json:"slice"`
	Seq   uint64      `json:"seq"`
}

// handleEvents streams a "change" event after every effective state change.
// Changes that arrive faster than the client reads are coalesced into the
// latest one.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	sse, err := NewSSEWriter(w)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}

	changes := make(chan changeEvent, 1)
	unsubscribe := s.store.Subscribe(func(c store.Change) {
		ev := changeEvent{Slice: c.Slice, Seq: c.Seq}
		for {
			select {
			case changes <- ev:
				return
			default:
			}
			// Drop the pending event in favor of the newer one.
			select {
			case <-changes:
			default:
			}
		}
	})
	defer unsubscribe()

	if err := sse.WriteEvent("ready", map[string]uint64{"seq": s.store.Seq()}); err != nil {
		return
	}

	ticker := time.NewTicker(keepAliveInterval)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-s.done:
			return
		case ev := <-changes:
			if err := sse.WriteEvent("change", ev); err != nil {
				s.logger.Debug("event stream closed", "error", err)
				return
			}
		case <-ticker.C:
			if err := sse.WriteComment("keep-alive"); err != nil {
				return
			}
		}
	}
}
