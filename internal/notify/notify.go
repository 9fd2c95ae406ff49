package notify

import (
	"context"
	"strings"
)

// Notifier dispatches a pre-formatted message to an external channel.
// Delivery is best-effort: callers log a returned error and move on.
type Notifier interface {
	Send(ctx context.Context, text string) error
}

// EscapeText escapes user-supplied text against the notification
// channel's markup syntax. Exactly three characters are escaped, with
// ampersand first so entities are not double-escaped.
func EscapeText(s string) string {
	s = strings.ReplaceAll(s, "&", "&amp;")
	s = strings.ReplaceAll(s, "<", "&lt;")
	s = strings.ReplaceAll(s, ">", "&gt;")
	return s
}

// Nop is a Notifier that silently drops messages. It is used when no
// notification channel is configured.
type Nop struct{}

// Send discards the message
func (Nop) Send(ctx context.Context, text string) error {
	return nil
}
