package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/atlas-digital/agency-engine/internal/chat"
	"github.com/atlas-digital/agency-engine/internal/models"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

const chatHistoryLimit = 200

type startSessionRequest struct {
	Name string `json:"name"`
}

type chatPostRequest struct {
	SessionID string `json:"session_id"`
	Text      string `json:"text"`
}

func (s *Server) handleStartChatSession(w http.ResponseWriter, r *http.Request) {
	var req startSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	sessionID := s.hub.StartSession(req.Name)
	respondJSON(w, http.StatusCreated, map[string]string{"session_id": sessionID})
}

func (s *Server) handleChatHistory(w http.ResponseWriter, r *http.Request) {
	sessionID := r.URL.Query().Get("session")
	if sessionID == "" {
		respondError(w, http.StatusBadRequest, "invalid_request", "session is required")
		return
	}

	messages, err := s.hub.History(r.Context(), sessionID, chatHistoryLimit)
	if err != nil {
		if errors.Is(err, chat.ErrSessionNotFound) {
			respondError(w, http.StatusNotFound, "session_not_found", "chat session not found")
			return
		}
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to load messages")
		return
	}

	respondJSON(w, http.StatusOK, messages)
}

// handlePostChatMessage is the polling fallback for visitors without a
// websocket or SSE connection
func (s *Server) handlePostChatMessage(w http.ResponseWriter, r *http.Request) {
	s.postChatMessage(w, r, models.SenderVisitor)
}

// handlePostAgentMessage posts an agent reply into a visitor session
func (s *Server) handlePostAgentMessage(w http.ResponseWriter, r *http.Request) {
	s.postChatMessage(w, r, models.SenderAgent)
}

func (s *Server) postChatMessage(w http.ResponseWriter, r *http.Request, sender models.ChatSender) {
	var req chatPostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	if req.SessionID == "" || req.Text == "" {
		respondError(w, http.StatusBadRequest, "validation_error", "session_id and text are required")
		return
	}

	msg, err := s.hub.Post(r.Context(), req.SessionID, sender, req.Text)
	if err != nil {
		if errors.Is(err, chat.ErrSessionNotFound) {
			respondError(w, http.StatusNotFound, "session_not_found", "chat session not found")
			return
		}
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to post message")
		return
	}

	respondJSON(w, http.StatusCreated, msg)
}

// handleChatSocket upgrades the connection and relays messages both ways:
// inbound frames become visitor messages, hub broadcasts become outbound
// frames
func (s *Server) handleChatSocket(w http.ResponseWriter, r *http.Request) {
	sessionID := r.URL.Query().Get("session")
	if sessionID == "" {
		http.Error(w, "session is required", http.StatusBadRequest)
		return
	}

	broadcasts, unsubscribe, err := s.hub.Subscribe(sessionID)
	if err != nil {
		http.Error(w, "chat session not found", http.StatusNotFound)
		return
	}
	defer unsubscribe()

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Error("failed to upgrade to websocket", "error", err)
		return
	}
	defer conn.Close()

	slog.Info("chat websocket connected", "session_id", sessionID)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var wg sync.WaitGroup

	// Hub broadcasts -> WebSocket
	wg.Add(1)
	go func() {
		defer wg.Done()
		defer cancel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-broadcasts:
				if !ok {
					return
				}
				if err := conn.WriteJSON(msg); err != nil {
					slog.Debug("chat websocket write failed", "session_id", sessionID, "error", err)
					return
				}
			}
		}
	}()

	// WebSocket -> hub (visitor messages)
	wg.Add(1)
	go func() {
		defer wg.Done()
		defer cancel()
		for {
			var req chatPostRequest
			if err := conn.ReadJSON(&req); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					slog.Debug("chat websocket read failed", "session_id", sessionID, "error", err)
				}
				return
			}
			if req.Text == "" {
				continue
			}
			if _, err := s.hub.Post(ctx, sessionID, models.SenderVisitor, req.Text); err != nil {
				slog.Warn("failed to post chat message", "session_id", sessionID, "error", err)
				return
			}
		}
	}()

	wg.Wait()
	slog.Info("chat websocket disconnected", "session_id", sessionID)
}

// handleChatEvents streams hub broadcasts as server-sent events for
// clients that cannot hold a websocket open
func (s *Server) handleChatEvents(w http.ResponseWriter, r *http.Request) {
	sessionID := r.URL.Query().Get("session")
	if sessionID == "" {
		respondError(w, http.StatusBadRequest, "invalid_request", "session is required")
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		respondError(w, http.StatusInternalServerError, "internal_error", "streaming unsupported")
		return
	}

	broadcasts, unsubscribe, err := s.hub.Subscribe(sessionID)
	if err != nil {
		respondError(w, http.StatusNotFound, "session_not_found", "chat session not found")
		return
	}
	defer unsubscribe()

	// The stream outlives the server's write timeout, so lift the write
	// deadline for this connection
	if err := http.NewResponseController(w).SetWriteDeadline(time.Time{}); err != nil {
		slog.Debug("failed to clear write deadline for event stream", "error", err)
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case msg, ok := <-broadcasts:
			if !ok {
				return
			}
			payload, err := json.Marshal(msg)
			if err != nil {
				slog.Error("failed to encode chat event", "error", err)
				continue
			}
			if _, err := fmt.Fprintf(w, "event: message\ndata: %s\n\n", payload); err != nil {
				slog.Debug("chat event stream write failed", "session_id", sessionID, "error", err)
				return
			}
			flusher.Flush()
		}
	}
}
