package api

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/atlas-digital/agency-engine/internal/chat"
	"github.com/atlas-digital/agency-engine/internal/config"
	"github.com/atlas-digital/agency-engine/internal/models"
	"github.com/atlas-digital/agency-engine/internal/notify"
)

// chatStore is a minimal in-memory chat.MessageStore
type chatStore struct {
	nextID   int64
	messages []*models.ChatMessage
}

func (s *chatStore) CreateChatMessage(ctx context.Context, msg *models.ChatMessage) error {
	s.nextID++
	msg.ID = s.nextID
	copied := *msg
	s.messages = append(s.messages, &copied)
	return nil
}

func (s *chatStore) ListChatMessages(ctx context.Context, sessionID string, limit int) ([]*models.ChatMessage, error) {
	var out []*models.ChatMessage
	for _, m := range s.messages {
		if m.SessionID == sessionID {
			out = append(out, m)
		}
	}
	return out, nil
}

func newChatTestServer(t *testing.T) (*httptest.Server, *chat.Hub) {
	t.Helper()

	hub := chat.NewHub(&chatStore{}, notify.Nop{}, time.Minute)
	s := &Server{
		hub:  hub,
		auth: NewAuth(config.AdminConfig{SessionTTL: time.Hour}),
	}
	s.setupRouter()

	ts := httptest.NewServer(s.Router())
	t.Cleanup(ts.Close)
	return ts, hub
}

func TestChatEventStream(t *testing.T) {
	ts, hub := newChatTestServer(t)
	sessionID := hub.StartSession("joe")

	resp, err := http.Get(ts.URL + "/api/v1/chat/events?session=" + sessionID)
	if err != nil {
		t.Fatalf("GET events: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "text/event-stream" {
		t.Fatalf("Content-Type = %q, want text/event-stream", ct)
	}

	// Headers received means the subscription is registered, so this
	// message must arrive on the stream
	if _, err := hub.Post(context.Background(), sessionID, models.SenderAgent, "hello there"); err != nil {
		t.Fatalf("Post() error = %v", err)
	}

	reader := bufio.NewReader(resp.Body)
	var data string
	for {
		line, err := reader.ReadString('\n')
		if err != nil {
			t.Fatalf("reading event stream: %v", err)
		}
		if strings.HasPrefix(line, "data: ") {
			data = strings.TrimSpace(strings.TrimPrefix(line, "data: "))
			break
		}
	}

	var msg models.ChatMessage
	if err := json.Unmarshal([]byte(data), &msg); err != nil {
		t.Fatalf("unmarshal event payload: %v", err)
	}
	if msg.Text != "hello there" {
		t.Errorf("event text = %q, want %q", msg.Text, "hello there")
	}
	if msg.Sender != models.SenderAgent {
		t.Errorf("event sender = %q, want %q", msg.Sender, models.SenderAgent)
	}
}

func TestChatEventStreamOutlivesWriteTimeout(t *testing.T) {
	if testing.Short() {
		t.Skip("waits out the server write timeout")
	}

	hub := chat.NewHub(&chatStore{}, notify.Nop{}, time.Minute)
	s := &Server{
		hub:  hub,
		auth: NewAuth(config.AdminConfig{SessionTTL: time.Hour}),
	}
	s.setupRouter()

	// An aggressive write timeout, as production sets one. The stream
	// must keep delivering past it.
	ts := httptest.NewUnstartedServer(s.Router())
	ts.Config.WriteTimeout = 250 * time.Millisecond
	ts.Start()
	t.Cleanup(ts.Close)

	sessionID := hub.StartSession("joe")

	resp, err := http.Get(ts.URL + "/api/v1/chat/events?session=" + sessionID)
	if err != nil {
		t.Fatalf("GET events: %v", err)
	}
	defer resp.Body.Close()

	time.Sleep(500 * time.Millisecond)

	if _, err := hub.Post(context.Background(), sessionID, models.SenderAgent, "still here"); err != nil {
		t.Fatalf("Post() error = %v", err)
	}

	reader := bufio.NewReader(resp.Body)
	for {
		line, err := reader.ReadString('\n')
		if err != nil {
			t.Fatalf("stream closed before delivering the late event: %v", err)
		}
		if strings.Contains(line, "still here") {
			return
		}
	}
}

func TestChatEventStreamUnknownSession(t *testing.T) {
	ts, _ := newChatTestServer(t)

	resp, err := http.Get(ts.URL + "/api/v1/chat/events?session=nope")
	if err != nil {
		t.Fatalf("GET events: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusNotFound)
	}
}
