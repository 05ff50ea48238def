package messaging

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/abhinavece/matchpay-backend/pkg/config"
	apperrors "github.com/abhinavece/matchpay-backend/pkg/errors"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWhatsAppSend(t *testing.T) {
	var got sendRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/messages", r.URL.Path)
		require.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	dispatcher, err := NewWhatsAppDispatcher(config.MessagingConfig{
		BaseURL:  server.URL,
		Token:    "secret",
		SenderID: "matchpay",
	})
	require.NoError(t, err)

	err = dispatcher.Send(context.Background(), Message{
		MemberID: uuid.New(),
		Phone:    "+91 98765 43210",
		Body:     "fee due",
	})
	require.NoError(t, err)
	assert.Equal(t, "9876543210", got.To)
	assert.Equal(t, "fee due", got.Body)
	assert.Equal(t, "matchpay", got.SenderID)
}

func TestWhatsAppSendGatewayError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer server.Close()

	dispatcher, err := NewWhatsAppDispatcher(config.MessagingConfig{BaseURL: server.URL})
	require.NoError(t, err)

	err = dispatcher.Send(context.Background(), Message{Phone: "9876543210", Body: "x"})
	require.Error(t, err)
	typed := apperrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, apperrors.CodeDelivery, typed.Code())
}

func TestWhatsAppSendRejectsBadPhone(t *testing.T) {
	dispatcher, err := NewWhatsAppDispatcher(config.MessagingConfig{BaseURL: "http://gateway.local"})
	require.NoError(t, err)

	err = dispatcher.Send(context.Background(), Message{Phone: "12345", Body: "x"})
	require.Error(t, err)
	typed := apperrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, apperrors.CodeValidation, typed.Code())
}

func TestNewWhatsAppDispatcherRequiresBaseURL(t *testing.T) {
	_, err := NewWhatsAppDispatcher(config.MessagingConfig{})
	assert.Error(t, err)
}
