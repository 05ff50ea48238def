package routes

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/abhinavece/matchpay-backend/internal/audit"
	internalpayments "github.com/abhinavece/matchpay-backend/internal/payments"
	"github.com/abhinavece/matchpay-backend/internal/roster"
	pkgauth "github.com/abhinavece/matchpay-backend/pkg/auth"
	"github.com/abhinavece/matchpay-backend/pkg/config"
	"github.com/abhinavece/matchpay-backend/pkg/db/models"
	"github.com/abhinavece/matchpay-backend/pkg/logger"
)

type stubPinger struct{}

func (stubPinger) Ping(context.Context) error { return nil }

type stubPaymentsService struct {
	listed bool
}

func (s *stubPaymentsService) CreatePayment(context.Context, uuid.UUID, internalpayments.CreatePaymentInput) (*internalpayments.PaymentView, error) {
	return &internalpayments.PaymentView{}, nil
}

func (s *stubPaymentsService) GetPayment(context.Context, uuid.UUID) (*internalpayments.PaymentView, error) {
	return &internalpayments.PaymentView{}, nil
}

func (s *stubPaymentsService) ListPayments(context.Context) ([]internalpayments.PaymentView, error) {
	s.listed = true
	return []internalpayments.PaymentView{}, nil
}

func (s *stubPaymentsService) ListByMatch(context.Context, string) ([]internalpayments.PaymentView, error) {
	return nil, nil
}

func (s *stubPaymentsService) UpdateTotalAmount(context.Context, uuid.UUID, uuid.UUID, decimal.Decimal) (*internalpayments.PaymentView, error) {
	return nil, nil
}

func (s *stubPaymentsService) AddMember(context.Context, uuid.UUID, uuid.UUID, internalpayments.MemberInput) (*internalpayments.PaymentView, error) {
	return nil, nil
}

func (s *stubPaymentsService) RemoveMember(context.Context, uuid.UUID, uuid.UUID, uuid.UUID) (*internalpayments.RemoveMemberResult, error) {
	return nil, nil
}

func (s *stubPaymentsService) PinMemberAmount(context.Context, uuid.UUID, uuid.UUID, uuid.UUID, *decimal.Decimal) (*internalpayments.PaymentView, error) {
	return nil, nil
}

func (s *stubPaymentsService) RecordPayment(context.Context, uuid.UUID, uuid.UUID, uuid.UUID, internalpayments.RecordPaymentInput) (*internalpayments.PaymentView, error) {
	return nil, nil
}

func (s *stubPaymentsService) MarkUnpaid(context.Context, uuid.UUID, uuid.UUID, uuid.UUID) (*internalpayments.PaymentView, error) {
	return nil, nil
}

func (s *stubPaymentsService) SettleOverpayment(context.Context, uuid.UUID, uuid.UUID, uuid.UUID) (*internalpayments.PaymentView, error) {
	return nil, nil
}

func (s *stubPaymentsService) SendPaymentRequests(context.Context, uuid.UUID, uuid.UUID, internalpayments.SendRequestsInput) (*internalpayments.SendRequestsResult, error) {
	return nil, nil
}

func (s *stubPaymentsService) DeletePayment(context.Context, uuid.UUID, uuid.UUID) error {
	return nil
}

func (s *stubPaymentsService) MarkScreenshotReceived(context.Context, uuid.UUID, uuid.UUID, uuid.UUID) (*internalpayments.PaymentView, error) {
	return nil, nil
}

type stubAuditService struct{}

func (stubAuditService) WithTx(*gorm.DB) audit.Service { return stubAuditService{} }

func (stubAuditService) RecordEvent(context.Context, audit.RecordEventInput) (*models.LedgerEvent, error) {
	return nil, nil
}

func (stubAuditService) History(context.Context, uuid.UUID) ([]models.LedgerEvent, error) {
	return []models.LedgerEvent{}, nil
}

type stubRosterClient struct{}

func (stubRosterClient) LoadSquadFromAvailability(context.Context, string) ([]roster.SquadPlayer, error) {
	return nil, nil
}

func (stubRosterClient) SearchPlayers(context.Context, string) ([]roster.Player, error) {
	return nil, nil
}

func (stubRosterClient) CreatePlayer(context.Context, string, string) (*roster.Player, error) {
	return nil, nil
}

func testRouter(t *testing.T, svc internalpayments.Service) (http.Handler, string) {
	t.Helper()

	cfg := &config.Config{}
	cfg.App.Env = "test"
	cfg.JWT = config.JWTConfig{Secret: "secret", Issuer: "matchpay"}

	token, err := pkgauth.MintAccessToken(cfg.JWT, time.Now(), 10*time.Minute, pkgauth.AccessTokenPayload{
		UserID: uuid.New(),
	})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}

	handler := NewRouter(RouterDeps{
		Config:   cfg,
		Logger:   logger.New(logger.Options{ServiceName: "test"}),
		DB:       stubPinger{},
		Cache:    stubPinger{},
		Payments: svc,
		Audit:    stubAuditService{},
		Roster:   stubRosterClient{},
	})
	return handler, token
}

func TestRouterHealthEndpointsArePublic(t *testing.T) {
	handler, _ := testRouter(t, &stubPaymentsService{})

	for _, path := range []string{"/health/live", "/health/ready"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		resp := httptest.NewRecorder()
		handler.ServeHTTP(resp, req)
		if resp.Code != http.StatusOK {
			t.Fatalf("%s: expected 200 got %d", path, resp.Code)
		}
	}
}

func TestRouterMetricsEndpoint(t *testing.T) {
	handler, _ := testRouter(t, &stubPaymentsService{})

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
}

func TestRouterRequiresAuth(t *testing.T) {
	handler, _ := testRouter(t, &stubPaymentsService{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/payments", nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}

func TestRouterRoutesAuthenticatedRequests(t *testing.T) {
	svc := &stubPaymentsService{}
	handler, token := testRouter(t, svc)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/payments", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
	if !svc.listed {
		t.Fatal("expected list handler to reach the service")
	}

	var payload struct {
		Data []any `json:"data"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}
