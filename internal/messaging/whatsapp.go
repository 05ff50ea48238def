package messaging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/abhinavece/matchpay-backend/pkg/config"
	apperrors "github.com/abhinavece/matchpay-backend/pkg/errors"
	"github.com/abhinavece/matchpay-backend/pkg/phone"
)

// WhatsAppDispatcher delivers messages through the WhatsApp gateway the
// team-management product already uses.
type WhatsAppDispatcher struct {
	httpClient *http.Client
	baseURL    string
	token      string
	senderID   string
}

// NewWhatsAppDispatcher wires the gateway client from configuration.
func NewWhatsAppDispatcher(cfg config.MessagingConfig) (*WhatsAppDispatcher, error) {
	if strings.TrimSpace(cfg.BaseURL) == "" {
		return nil, errors.New("whatsapp base url is required")
	}
	return &WhatsAppDispatcher{
		httpClient: &http.Client{},
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		token:      cfg.Token,
		senderID:   cfg.SenderID,
	}, nil
}

type sendRequest struct {
	To       string `json:"to"`
	Body     string `json:"body"`
	SenderID string `json:"sender_id,omitempty"`
}

// Send delivers one message. The per-recipient timeout comes from the
// caller's context; the http client itself carries none.
func (d *WhatsAppDispatcher) Send(ctx context.Context, msg Message) error {
	if !phone.Valid(msg.Phone) {
		return apperrors.New(apperrors.CodeValidation, fmt.Sprintf("invalid recipient phone %q", msg.Phone))
	}

	payload, err := json.Marshal(sendRequest{
		To:       phone.Normalize(msg.Phone),
		Body:     msg.Body,
		SenderID: d.senderID,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.baseURL+"/v1/messages", bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if d.token != "" {
		req.Header.Set("Authorization", "Bearer "+d.token)
	}

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return apperrors.Wrap(apperrors.CodeDelivery, err, "whatsapp dispatch failed")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= http.StatusBadRequest {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return apperrors.New(apperrors.CodeDelivery,
			fmt.Sprintf("whatsapp gateway returned %s: %s", resp.Status, strings.TrimSpace(string(body))))
	}
	return nil
}
