package chat

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/atlas-digital/agency-engine/internal/models"
)

type fakeStore struct {
	messages []*models.ChatMessage
}

func (f *fakeStore) CreateChatMessage(ctx context.Context, msg *models.ChatMessage) error {
	msg.ID = int64(len(f.messages) + 1)
	f.messages = append(f.messages, msg)
	return nil
}

func (f *fakeStore) ListChatMessages(ctx context.Context, sessionID string, limit int) ([]*models.ChatMessage, error) {
	var out []*models.ChatMessage
	for _, m := range f.messages {
		if m.SessionID == sessionID {
			out = append(out, m)
		}
	}
	return out, nil
}

type fakeNotifier struct {
	sent []string
}

func (f *fakeNotifier) Send(ctx context.Context, text string) error {
	f.sent = append(f.sent, text)
	return nil
}

func TestHub_PostFansOutToSubscribers(t *testing.T) {
	store := &fakeStore{}
	hub := NewHub(store, &fakeNotifier{}, time.Minute)

	id := hub.StartSession("Joe")

	ch, cancel, err := hub.Subscribe(id)
	if err != nil {
		t.Fatalf("Subscribe failed: %v", err)
	}
	defer cancel()

	msg, err := hub.Post(context.Background(), id, models.SenderVisitor, "hello")
	if err != nil {
		t.Fatalf("Post failed: %v", err)
	}
	if msg.ID == 0 {
		t.Error("message should be persisted with an ID")
	}

	select {
	case got := <-ch:
		if got.Text != "hello" || got.Sender != models.SenderVisitor {
			t.Errorf("unexpected message: %+v", got)
		}
	case <-time.After(time.Second):
		t.Fatal("subscriber did not receive the message")
	}

	if len(store.messages) != 1 {
		t.Errorf("expected 1 persisted message, got %d", len(store.messages))
	}
}

func TestHub_VisitorMessageNotifies(t *testing.T) {
	notifier := &fakeNotifier{}
	hub := NewHub(&fakeStore{}, notifier, time.Minute)

	id := hub.StartSession("<b>Joe</b>")

	if _, err := hub.Post(context.Background(), id, models.SenderVisitor, "need <help>"); err != nil {
		t.Fatalf("Post failed: %v", err)
	}

	if len(notifier.sent) != 1 {
		t.Fatalf("expected 1 notification, got %d", len(notifier.sent))
	}
	if !strings.Contains(notifier.sent[0], "&lt;b&gt;Joe&lt;/b&gt;") {
		t.Errorf("visitor name must be escaped: %q", notifier.sent[0])
	}
	if !strings.Contains(notifier.sent[0], "need &lt;help&gt;") {
		t.Errorf("message text must be escaped: %q", notifier.sent[0])
	}

	// Agent replies do not notify
	if _, err := hub.Post(context.Background(), id, models.SenderAgent, "on it"); err != nil {
		t.Fatalf("Post failed: %v", err)
	}
	if len(notifier.sent) != 1 {
		t.Errorf("agent reply should not notify, got %d notifications", len(notifier.sent))
	}
}

func TestHub_UnknownSession(t *testing.T) {
	hub := NewHub(&fakeStore{}, &fakeNotifier{}, time.Minute)

	if _, err := hub.Post(context.Background(), "nope", models.SenderVisitor, "hi"); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("Post: expected ErrSessionNotFound, got %v", err)
	}
	if _, _, err := hub.Subscribe("nope"); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("Subscribe: expected ErrSessionNotFound, got %v", err)
	}
	if _, err := hub.History(context.Background(), "nope", 0); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("History: expected ErrSessionNotFound, got %v", err)
	}
}

func TestHub_EvictIdleSessions(t *testing.T) {
	hub := NewHub(&fakeStore{}, &fakeNotifier{}, 10*time.Minute)

	now := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	hub.now = func() time.Time { return now }

	idle := hub.StartSession("idle")
	active := hub.StartSession("active")

	ch, cancel, err := hub.Subscribe(idle)
	if err != nil {
		t.Fatalf("Subscribe failed: %v", err)
	}
	defer cancel()

	// Keep one session fresh, let the other cross the TTL
	now = now.Add(9 * time.Minute)
	if _, err := hub.Post(context.Background(), active, models.SenderVisitor, "still here"); err != nil {
		t.Fatalf("Post failed: %v", err)
	}

	now = now.Add(2 * time.Minute)
	hub.evictIdle()

	if hub.SessionActive(idle) {
		t.Error("idle session should be evicted")
	}
	if !hub.SessionActive(active) {
		t.Error("active session should survive")
	}

	// Subscriber channel of the evicted session is closed
	select {
	case _, ok := <-ch:
		if ok {
			t.Error("expected closed channel, got message")
		}
	case <-time.After(time.Second):
		t.Error("subscriber channel was not closed on eviction")
	}
}

func TestHub_HistoryReturnsSessionMessages(t *testing.T) {
	store := &fakeStore{}
	hub := NewHub(store, &fakeNotifier{}, time.Minute)
	ctx := context.Background()

	a := hub.StartSession("a")
	b := hub.StartSession("b")

	hub.Post(ctx, a, models.SenderVisitor, "first")
	hub.Post(ctx, b, models.SenderVisitor, "other")
	hub.Post(ctx, a, models.SenderAgent, "second")

	history, err := hub.History(ctx, a, 0)
	if err != nil {
		t.Fatalf("History failed: %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(history))
	}
	if history[0].Text != "first" || history[1].Text != "second" {
		t.Errorf("unexpected order: %+v", history)
	}
}

// hookedStore runs a callback before persisting, so tests can interleave
// hub operations with a slow write
type hookedStore struct {
	fakeStore
	onCreate func()
}

func (h *hookedStore) CreateChatMessage(ctx context.Context, msg *models.ChatMessage) error {
	if h.onCreate != nil {
		h.onCreate()
	}
	return h.fakeStore.CreateChatMessage(ctx, msg)
}

func TestHub_PostSurvivesEvictionDuringPersist(t *testing.T) {
	store := &hookedStore{}
	hub := NewHub(store, &fakeNotifier{}, time.Minute)

	current := time.Now()
	hub.now = func() time.Time { return current }

	id := hub.StartSession("Joe")
	ch, cancel, err := hub.Subscribe(id)
	if err != nil {
		t.Fatalf("Subscribe failed: %v", err)
	}
	defer cancel()

	// The session goes idle and is evicted while the persist call is in
	// flight, closing the subscriber channel
	store.onCreate = func() {
		current = current.Add(2 * time.Minute)
		hub.evictIdle()
	}

	msg, err := hub.Post(context.Background(), id, models.SenderAgent, "late reply")
	if err != nil {
		t.Fatalf("Post failed: %v", err)
	}
	if msg.ID == 0 {
		t.Error("message should still be persisted")
	}

	select {
	case _, ok := <-ch:
		if ok {
			t.Error("expected closed channel, got a delivery")
		}
	default:
		t.Error("subscriber channel should be closed after eviction")
	}
}
