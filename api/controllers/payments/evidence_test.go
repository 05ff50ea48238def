package payments

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"

	internalpayments "github.com/abhinavece/matchpay-backend/internal/payments"
)

type stubSigner struct {
	uploads   []string
	downloads []string
}

func (s *stubSigner) SignedUploadURL(object, contentType string) (string, error) {
	s.uploads = append(s.uploads, object)
	return "https://storage.example.com/upload/" + object, nil
}

func (s *stubSigner) SignedDownloadURL(object string) (string, error) {
	s.downloads = append(s.downloads, object)
	return "https://storage.example.com/download/" + object, nil
}

func (s *stubSigner) Bucket() string { return "evidence-bucket" }

func paymentWithMember(paymentID, memberID uuid.UUID, received bool) *internalpayments.PaymentView {
	member := internalpayments.MemberView{ID: memberID}
	if received {
		now := time.Now()
		member.ScreenshotReceivedAt = &now
	}
	return &internalpayments.PaymentView{ID: paymentID, Members: []internalpayments.MemberView{member}}
}

func TestScreenshotUploadURLHandler(t *testing.T) {
	paymentID := uuid.New()
	memberID := uuid.New()
	svc := &stubService{
		get: func(_ context.Context, id uuid.UUID) (*internalpayments.PaymentView, error) {
			return paymentWithMember(paymentID, memberID, false), nil
		},
	}
	signer := &stubSigner{}

	req := authedRequest(http.MethodPost, "/x", `{"content_type":"image/png"}`, map[string]string{
		"paymentID": paymentID.String(),
		"memberID":  memberID.String(),
	})
	resp := httptest.NewRecorder()
	ScreenshotUploadURL(svc, signer, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
	var payload struct {
		Data screenshotURLResponse `json:"data"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if payload.Data.Bucket != "evidence-bucket" {
		t.Fatalf("unexpected bucket %q", payload.Data.Bucket)
	}
	if len(signer.uploads) != 1 {
		t.Fatalf("expected one signed upload, got %d", len(signer.uploads))
	}
}

func TestScreenshotUploadURLRejectsNonImage(t *testing.T) {
	svc := &stubService{
		get: func(context.Context, uuid.UUID) (*internalpayments.PaymentView, error) {
			t.Fatal("service should not be called")
			return nil, nil
		},
	}

	req := authedRequest(http.MethodPost, "/x", `{"content_type":"application/pdf"}`, map[string]string{
		"paymentID": uuid.NewString(),
		"memberID":  uuid.NewString(),
	})
	resp := httptest.NewRecorder()
	ScreenshotUploadURL(svc, &stubSigner{}, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestScreenshotUploadURLWithoutStorage(t *testing.T) {
	req := authedRequest(http.MethodPost, "/x", `{"content_type":"image/png"}`, map[string]string{
		"paymentID": uuid.NewString(),
		"memberID":  uuid.NewString(),
	})
	resp := httptest.NewRecorder()
	ScreenshotUploadURL(&stubService{}, nil, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 got %d", resp.Code)
	}
}

func TestScreenshotDownloadURLRequiresEvidence(t *testing.T) {
	paymentID := uuid.New()
	memberID := uuid.New()
	svc := &stubService{
		get: func(context.Context, uuid.UUID) (*internalpayments.PaymentView, error) {
			return paymentWithMember(paymentID, memberID, false), nil
		},
	}

	req := authedRequest(http.MethodGet, "/x", "", map[string]string{
		"paymentID": paymentID.String(),
		"memberID":  memberID.String(),
	})
	resp := httptest.NewRecorder()
	ScreenshotDownloadURL(svc, &stubSigner{}, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", resp.Code)
	}
}

func TestScreenshotDownloadURLHappyPath(t *testing.T) {
	paymentID := uuid.New()
	memberID := uuid.New()
	svc := &stubService{
		get: func(context.Context, uuid.UUID) (*internalpayments.PaymentView, error) {
			return paymentWithMember(paymentID, memberID, true), nil
		},
	}
	signer := &stubSigner{}

	req := authedRequest(http.MethodGet, "/x", "", map[string]string{
		"paymentID": paymentID.String(),
		"memberID":  memberID.String(),
	})
	resp := httptest.NewRecorder()
	ScreenshotDownloadURL(svc, signer, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
	if len(signer.downloads) != 1 {
		t.Fatalf("expected one signed download, got %d", len(signer.downloads))
	}
}
