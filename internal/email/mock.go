package email

import (
	"context"
)

// MockSender is a test implementation of Sender that records sent emails.
type MockSender struct {
	Sent []*Email

	SendFunc         func(ctx context.Context, email *Email) (string, error)
	SendTemplateFunc func(ctx context.Context, templateID string, to []string, data map[string]interface{}) (string, error)
}

// Compile-time check that MockSender implements Sender.
var _ Sender = (*MockSender)(nil)

// NewMockSender creates a new mock email sender for testing.
func NewMockSender() *MockSender {
	return &MockSender{}
}

// Send records the email and returns a fixed message id.
func (m *MockSender) Send(ctx context.Context, email *Email) (string, error) {
	if m.SendFunc != nil {
		return m.SendFunc(ctx, email)
	}
	m.Sent = append(m.Sent, email)
	return "mock-message-id", nil
}

// SendTemplate delegates to the configured function or returns an error.
func (m *MockSender) SendTemplate(ctx context.Context, templateID string, to []string, data map[string]interface{}) (string, error) {
	if m.SendTemplateFunc != nil {
		return m.SendTemplateFunc(ctx, templateID, to, data)
	}
	return "", ErrNotImplemented
}
