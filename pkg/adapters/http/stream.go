package http

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"

	"github.com/ofekfell/mediaflow/internal/logging"
	"github.com/ofekfell/mediaflow/pkg/domain"
)

// Event is one lifecycle event as sent to stream subscribers.
type Event struct {
	Type     domain.EventType `json:"type"`
	RenderID string           `json:"render_id"`
	Action   string           `json:"action,omitempty"`
	Output   string           `json:"output,omitempty"`
	Source   string           `json:"source,omitempty"`
	Alias    string           `json:"alias,omitempty"`
	Seconds  float64          `json:"seconds,omitempty"`
	Error    string           `json:"error,omitempty"`
}

// StreamManager fans lifecycle events out to SSE subscribers.
type StreamManager struct {
	mu          sync.RWMutex
	subscribers map[chan<- Event]struct{}
	logger      *slog.Logger
}

// NewStreamManager creates an empty manager.
func NewStreamManager() *StreamManager {
	return &StreamManager{
		subscribers: make(map[chan<- Event]struct{}),
		logger:      logging.NewNop(),
	}
}

// Subscribe registers a buffered channel. The returned func unsubscribes
// and closes it.
func (sm *StreamManager) Subscribe() (<-chan Event, func()) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	ch := make(chan Event, 16)
	sm.subscribers[ch] = struct{}{}

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			sm.mu.Lock()
			defer sm.mu.Unlock()
			delete(sm.subscribers, ch)
			close(ch)
		})
	}
}

// Broadcast delivers e to every subscriber. Slow subscribers drop events.
func (sm *StreamManager) Broadcast(e Event) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	for ch := range sm.subscribers {
		select {
		case ch <- e:
		default:
			sm.logger.Warn("SSE: client buffer full, dropping event", "type", e.Type, "render_id", e.RenderID)
		}
	}
}

// Hooks returns lifecycle hooks that broadcast every event.
func (sm *StreamManager) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnRenderStart: func(_ context.Context, e *domain.RenderEvent) {
			sm.Broadcast(Event{Type: e.Type, RenderID: e.RenderID})
		},
		OnRenderEnd: func(_ context.Context, e *domain.RenderEvent) {
			ev := Event{Type: e.Type, RenderID: e.RenderID, Output: e.Output, Seconds: e.Duration.Seconds()}
			if e.Err != nil {
				ev.Error = e.Err.Error()
			}
			sm.Broadcast(ev)
		},
		OnAction: func(_ context.Context, e *domain.ActionEvent) {
			sm.Broadcast(Event{Type: e.Type, RenderID: e.RenderID, Action: string(e.Action)})
		},
		OnCopy: func(_ context.Context, e *domain.CopyEvent) {
			sm.Broadcast(Event{Type: e.Type, RenderID: e.RenderID, Source: e.Source, Alias: e.Alias})
		},
	}
}

// handleEvents streams events as SSE. ?type=render_end,action filters by
// event type.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		return
	}

	want := make(map[domain.EventType]bool)
	if v := r.URL.Query().Get("type"); v != "" {
		for _, t := range strings.Split(v, ",") {
			want[domain.EventType(strings.TrimSpace(t))] = true
		}
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch, cancel := s.streams.Subscribe()
	defer cancel()

	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case e, ok := <-ch:
			if !ok {
				return
			}
			if len(want) > 0 && !want[e.Type] {
				continue
			}
			data, err := json.Marshal(e)
			if err != nil {
				continue
			}
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", e.Type, data)
			flusher.Flush()
		}
	}
}
