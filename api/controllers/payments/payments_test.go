package payments

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/abhinavece/matchpay-backend/api/middleware"
	internalpayments "github.com/abhinavece/matchpay-backend/internal/payments"
	pkgerrors "github.com/abhinavece/matchpay-backend/pkg/errors"
)

type stubService struct {
	create  func(ctx context.Context, actorID uuid.UUID, input internalpayments.CreatePaymentInput) (*internalpayments.PaymentView, error)
	get     func(ctx context.Context, paymentID uuid.UUID) (*internalpayments.PaymentView, error)
	settle  func(ctx context.Context, actorID, paymentID, memberID uuid.UUID) (*internalpayments.PaymentView, error)
	send    func(ctx context.Context, actorID, paymentID uuid.UUID, input internalpayments.SendRequestsInput) (*internalpayments.SendRequestsResult, error)
	receive func(ctx context.Context, actorID, paymentID, memberID uuid.UUID) (*internalpayments.PaymentView, error)
}

func (s *stubService) CreatePayment(ctx context.Context, actorID uuid.UUID, input internalpayments.CreatePaymentInput) (*internalpayments.PaymentView, error) {
	return s.create(ctx, actorID, input)
}

func (s *stubService) GetPayment(ctx context.Context, paymentID uuid.UUID) (*internalpayments.PaymentView, error) {
	return s.get(ctx, paymentID)
}

func (s *stubService) ListPayments(context.Context) ([]internalpayments.PaymentView, error) {
	return nil, nil
}

func (s *stubService) ListByMatch(context.Context, string) ([]internalpayments.PaymentView, error) {
	return nil, nil
}

func (s *stubService) UpdateTotalAmount(context.Context, uuid.UUID, uuid.UUID, decimal.Decimal) (*internalpayments.PaymentView, error) {
	panic("not implemented")
}

func (s *stubService) AddMember(context.Context, uuid.UUID, uuid.UUID, internalpayments.MemberInput) (*internalpayments.PaymentView, error) {
	panic("not implemented")
}

func (s *stubService) RemoveMember(context.Context, uuid.UUID, uuid.UUID, uuid.UUID) (*internalpayments.RemoveMemberResult, error) {
	panic("not implemented")
}

func (s *stubService) PinMemberAmount(context.Context, uuid.UUID, uuid.UUID, uuid.UUID, *decimal.Decimal) (*internalpayments.PaymentView, error) {
	panic("not implemented")
}

func (s *stubService) RecordPayment(context.Context, uuid.UUID, uuid.UUID, uuid.UUID, internalpayments.RecordPaymentInput) (*internalpayments.PaymentView, error) {
	panic("not implemented")
}

func (s *stubService) MarkUnpaid(context.Context, uuid.UUID, uuid.UUID, uuid.UUID) (*internalpayments.PaymentView, error) {
	panic("not implemented")
}

func (s *stubService) SettleOverpayment(ctx context.Context, actorID, paymentID, memberID uuid.UUID) (*internalpayments.PaymentView, error) {
	return s.settle(ctx, actorID, paymentID, memberID)
}

func (s *stubService) SendPaymentRequests(ctx context.Context, actorID, paymentID uuid.UUID, input internalpayments.SendRequestsInput) (*internalpayments.SendRequestsResult, error) {
	return s.send(ctx, actorID, paymentID, input)
}

func (s *stubService) DeletePayment(context.Context, uuid.UUID, uuid.UUID) error {
	return nil
}

func (s *stubService) MarkScreenshotReceived(ctx context.Context, actorID, paymentID, memberID uuid.UUID) (*internalpayments.PaymentView, error) {
	return s.receive(ctx, actorID, paymentID, memberID)
}

func authedRequest(method, target string, body string, params map[string]string) *http.Request {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	}

	ctx := middleware.WithUserID(req.Context(), uuid.NewString())
	rc := chi.NewRouteContext()
	for k, v := range params {
		rc.URLParams.Add(k, v)
	}
	ctx = context.WithValue(ctx, chi.RouteCtxKey, rc)
	return req.WithContext(ctx)
}

func TestCreatePaymentHandler(t *testing.T) {
	var gotInput internalpayments.CreatePaymentInput
	svc := &stubService{
		create: func(_ context.Context, _ uuid.UUID, input internalpayments.CreatePaymentInput) (*internalpayments.PaymentView, error) {
			gotInput = input
			return &internalpayments.PaymentView{ID: uuid.New(), MatchID: input.MatchID}, nil
		},
	}

	body := `{"match_id":"match-7","total_amount":"1000","members":[{"player_name":"Rahul","player_phone":"9876543210"}]}`
	req := authedRequest(http.MethodPost, "/api/v1/payments", body, nil)
	resp := httptest.NewRecorder()
	Create(svc, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", resp.Code, resp.Body.String())
	}
	if gotInput.MatchID != "match-7" {
		t.Fatalf("expected match id to reach service, got %q", gotInput.MatchID)
	}
	if len(gotInput.Members) != 1 {
		t.Fatalf("expected 1 member, got %d", len(gotInput.Members))
	}
}

func TestCreatePaymentHandlerRejectsBadBody(t *testing.T) {
	svc := &stubService{
		create: func(context.Context, uuid.UUID, internalpayments.CreatePaymentInput) (*internalpayments.PaymentView, error) {
			t.Fatal("service should not be called")
			return nil, nil
		},
	}

	req := authedRequest(http.MethodPost, "/api/v1/payments", `{"match_id":""}`, nil)
	resp := httptest.NewRecorder()
	Create(svc, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
	var payload struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode error response: %v", err)
	}
	if payload.Error.Code != string(pkgerrors.CodeValidation) {
		t.Fatalf("expected validation code got %s", payload.Error.Code)
	}
}

func TestCreatePaymentHandlerRequiresActor(t *testing.T) {
	svc := &stubService{}
	req := httptest.NewRequest(http.MethodPost, "/api/v1/payments", strings.NewReader(`{}`))
	resp := httptest.NewRecorder()
	Create(svc, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}

func TestDetailHandlerMapsNotFound(t *testing.T) {
	svc := &stubService{
		get: func(context.Context, uuid.UUID) (*internalpayments.PaymentView, error) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "payment not found")
		},
	}

	req := authedRequest(http.MethodGet, "/api/v1/payments/x", "", map[string]string{
		"paymentID": uuid.NewString(),
	})
	resp := httptest.NewRecorder()
	Detail(svc, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", resp.Code)
	}
}

func TestSettleHandlerMapsConflict(t *testing.T) {
	svc := &stubService{
		settle: func(context.Context, uuid.UUID, uuid.UUID, uuid.UUID) (*internalpayments.PaymentView, error) {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "nothing owed to settle")
		},
	}

	req := authedRequest(http.MethodPost, "/api/v1/payments/x/members/y/settle", "", map[string]string{
		"paymentID": uuid.NewString(),
		"memberID":  uuid.NewString(),
	})
	resp := httptest.NewRecorder()
	Settle(svc, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 got %d", resp.Code)
	}
}

func TestSendRequestsHandler(t *testing.T) {
	svc := &stubService{
		send: func(_ context.Context, _ uuid.UUID, _ uuid.UUID, input internalpayments.SendRequestsInput) (*internalpayments.SendRequestsResult, error) {
			return &internalpayments.SendRequestsResult{Sent: 3, Failed: 1}, nil
		},
	}

	req := authedRequest(http.MethodPost, "/api/v1/payments/x/send-requests", `{}`, map[string]string{
		"paymentID": uuid.NewString(),
	})
	resp := httptest.NewRecorder()
	SendRequests(svc, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusAccepted {
		t.Fatalf("expected 202 got %d: %s", resp.Code, resp.Body.String())
	}
	var payload struct {
		Data internalpayments.SendRequestsResult `json:"data"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if payload.Data.Sent != 3 || payload.Data.Failed != 1 {
		t.Fatalf("unexpected dispatch summary %+v", payload.Data)
	}
}

func TestInvalidPaymentIDParam(t *testing.T) {
	svc := &stubService{
		get: func(context.Context, uuid.UUID) (*internalpayments.PaymentView, error) {
			t.Fatal("service should not be called")
			return nil, nil
		},
	}

	req := authedRequest(http.MethodGet, "/api/v1/payments/nope", "", map[string]string{
		"paymentID": "not-a-uuid",
	})
	resp := httptest.NewRecorder()
	Detail(svc, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}
