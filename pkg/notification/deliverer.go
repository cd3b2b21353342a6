package notification

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
)

// Message is one outbound email.
type Message struct {
	From     string
	To       string
	Subject  string
	TextBody string
	HTMLBody string
}

// Deliverer sends a message or reports why it could not.
type Deliverer interface {
	Deliver(ctx context.Context, msg Message) error
}

// LogDeliverer writes messages to the log instead of sending them. It is
// used when EMAIL_DELIVERY is log.
type LogDeliverer struct{}

func (LogDeliverer) Deliver(_ context.Context, msg Message) error {
	if msg.To == "" {
		return fmt.Errorf("message requires a recipient")
	}
	slog.Info("Email delivery disabled, message logged", "to", msg.To, "subject", msg.Subject)
	slog.Debug("Email body", "to", msg.To, "text", msg.TextBody)
	return nil
}

// MockDeliverer records delivered messages. Err, when set, is returned for
// every delivery.
type MockDeliverer struct {
	mu   sync.Mutex
	Sent []Message
	Err  error
}

func (m *MockDeliverer) Deliver(_ context.Context, msg Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.Sent = append(m.Sent, msg)
	return nil
}

// Last returns the most recent message.
func (m *MockDeliverer) Last() (Message, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.Sent) == 0 {
		return Message{}, false
	}
	return m.Sent[len(m.Sent)-1], true
}

func (m *MockDeliverer) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Sent)
}
