package chat

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/atlas-digital/agency-engine/internal/models"
	"github.com/atlas-digital/agency-engine/internal/notify"
)

// ErrSessionNotFound is returned for operations on unknown or expired
// chat sessions
var ErrSessionNotFound = errors.New("chat session not found")

// MessageStore is the storage surface the hub needs
type MessageStore interface {
	CreateChatMessage(ctx context.Context, msg *models.ChatMessage) error
	ListChatMessages(ctx context.Context, sessionID string, limit int) ([]*models.ChatMessage, error)
}

type session struct {
	id          string
	visitor     string
	lastSeen    time.Time
	subscribers map[chan models.ChatMessage]struct{}
}

// Hub relays support chat messages between visitors and agents. Sessions
// live in memory; messages are persisted through the store. One browser
// session maps to one hub session with any number of push subscribers.
type Hub struct {
	mu       sync.RWMutex
	sessions map[string]*session

	store      MessageStore
	notifier   notify.Notifier
	sessionTTL time.Duration
	now        func() time.Time
}

// NewHub creates a chat hub
func NewHub(store MessageStore, notifier notify.Notifier, sessionTTL time.Duration) *Hub {
	if sessionTTL <= 0 {
		sessionTTL = 30 * time.Minute
	}
	return &Hub{
		sessions:   make(map[string]*session),
		store:      store,
		notifier:   notifier,
		sessionTTL: sessionTTL,
		now:        time.Now,
	}
}

// StartSession opens a new chat session for a visitor and returns its ID
func (h *Hub) StartSession(visitor string) string {
	id := uuid.NewString()

	h.mu.Lock()
	h.sessions[id] = &session{
		id:          id,
		visitor:     visitor,
		lastSeen:    h.now(),
		subscribers: make(map[chan models.ChatMessage]struct{}),
	}
	h.mu.Unlock()

	slog.Info("chat session started", "session_id", id)
	return id
}

// Subscribe registers a push subscriber for a session. The returned
// cancel function must be called when the connection closes.
func (h *Hub) Subscribe(sessionID string) (<-chan models.ChatMessage, func(), error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	s, ok := h.sessions[sessionID]
	if !ok {
		return nil, nil, fmt.Errorf("session %s: %w", sessionID, ErrSessionNotFound)
	}

	// Buffered so a slow consumer cannot block Post; overflow drops the
	// push and the client catches up from history.
	ch := make(chan models.ChatMessage, 32)
	s.subscribers[ch] = struct{}{}
	s.lastSeen = h.now()

	cancel := func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		if s, ok := h.sessions[sessionID]; ok {
			delete(s.subscribers, ch)
		}
	}

	return ch, cancel, nil
}

// Post persists a message and fans it out to the session's subscribers.
// A visitor message additionally triggers a best-effort notification.
func (h *Hub) Post(ctx context.Context, sessionID string, sender models.ChatSender, text string) (*models.ChatMessage, error) {
	h.mu.Lock()
	s, ok := h.sessions[sessionID]
	if !ok {
		h.mu.Unlock()
		return nil, fmt.Errorf("session %s: %w", sessionID, ErrSessionNotFound)
	}
	s.lastSeen = h.now()
	visitor := s.visitor
	h.mu.Unlock()

	msg := &models.ChatMessage{
		SessionID: sessionID,
		Sender:    sender,
		Text:      text,
		SentAt:    h.now().UTC(),
	}

	if err := h.store.CreateChatMessage(ctx, msg); err != nil {
		return nil, fmt.Errorf("failed to persist chat message: %w", err)
	}

	// Re-look-up under the lock: the janitor may have evicted the
	// session (and closed its channels) while the persist call ran
	h.mu.RLock()
	if s, ok := h.sessions[sessionID]; ok {
		for ch := range s.subscribers {
			select {
			case ch <- *msg:
			default:
				slog.Warn("chat subscriber buffer full, dropping push", "session_id", sessionID)
			}
		}
	}
	h.mu.RUnlock()

	if sender == models.SenderVisitor {
		h.notifyVisitorMessage(visitor, text)
	}

	return msg, nil
}

// History returns the persisted messages of a session in send order
func (h *Hub) History(ctx context.Context, sessionID string, limit int) ([]*models.ChatMessage, error) {
	h.mu.RLock()
	_, ok := h.sessions[sessionID]
	h.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("session %s: %w", sessionID, ErrSessionNotFound)
	}

	return h.store.ListChatMessages(ctx, sessionID, limit)
}

// SessionActive reports whether a session is known to the hub
func (h *Hub) SessionActive(sessionID string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	_, ok := h.sessions[sessionID]
	return ok
}

func (h *Hub) notifyVisitorMessage(visitor, text string) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	name := visitor
	if name == "" {
		name = "visitor"
	}

	message := fmt.Sprintf("<b>New chat message</b>\n\nFrom: %s\n%s",
		notify.EscapeText(name), notify.EscapeText(text))

	if err := h.notifier.Send(ctx, message); err != nil {
		slog.Error("failed to dispatch chat notification", "error", err)
	}
}

// StartJanitor begins the idle-session eviction loop in a goroutine
func (h *Hub) StartJanitor(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	go h.runJanitor(ctx, interval)
}

func (h *Hub) runJanitor(ctx context.Context, interval time.Duration) {
	slog.Info("chat janitor started", "interval", interval, "session_ttl", h.sessionTTL)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("chat janitor stopped")
			return
		case <-ticker.C:
			h.evictIdle()
		}
	}
}

// evictIdle drops sessions idle past the TTL and closes their
// subscriber channels so push connections terminate
func (h *Hub) evictIdle() {
	cutoff := h.now().Add(-h.sessionTTL)

	h.mu.Lock()
	defer h.mu.Unlock()

	for id, s := range h.sessions {
		if s.lastSeen.After(cutoff) {
			continue
		}
		for ch := range s.subscribers {
			close(ch)
		}
		delete(h.sessions, id)
		slog.Info("chat session evicted", "session_id", id, "last_seen", s.lastSeen)
	}
}
