package messaging

import (
	"context"
	"strings"

	"github.com/google/uuid"
)

// DefaultRequestTemplate is used when the caller does not supply one.
const DefaultRequestTemplate = "Hi {playerName}, your match fee of Rs {dueAmount} is pending. Please pay and share the screenshot."

// Message is one rendered payment-request (or refund notice) addressed to a
// single recipient.
type Message struct {
	MemberID uuid.UUID
	Phone    string
	Body     string
}

// Dispatcher delivers one message to one recipient. Implementations must be
// safe for concurrent use; the fan-out sends many messages at once.
type Dispatcher interface {
	Send(ctx context.Context, msg Message) error
}

// RenderTemplate substitutes the per-recipient placeholders. Unknown
// placeholders are left as-is.
func RenderTemplate(template, playerName, dueAmount string) string {
	if template == "" {
		template = DefaultRequestTemplate
	}
	rendered := strings.ReplaceAll(template, "{playerName}", playerName)
	return strings.ReplaceAll(rendered, "{dueAmount}", dueAmount)
}
