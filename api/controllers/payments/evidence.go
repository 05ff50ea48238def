package payments

import (
	"net/http"
	"strings"

	"github.com/abhinavece/matchpay-backend/api/middleware"
	"github.com/abhinavece/matchpay-backend/api/responses"
	"github.com/abhinavece/matchpay-backend/api/validators"
	internalpayments "github.com/abhinavece/matchpay-backend/internal/payments"
	pkgerrors "github.com/abhinavece/matchpay-backend/pkg/errors"
	"github.com/abhinavece/matchpay-backend/pkg/logger"
	"github.com/abhinavece/matchpay-backend/pkg/storage/gcs"
	"github.com/google/uuid"
)

// EvidenceSigner issues signed URLs against the screenshot bucket. Satisfied
// by *gcs.Client.
type EvidenceSigner interface {
	SignedUploadURL(object, contentType string) (string, error)
	SignedDownloadURL(object string) (string, error)
	Bucket() string
}

type screenshotUploadRequest struct {
	ContentType string `json:"content_type" validate:"required"`
}

type screenshotURLResponse struct {
	URL    string `json:"url"`
	Object string `json:"object"`
	Bucket string `json:"bucket"`
}

// ScreenshotUploadURL returns a signed PUT URL so the client uploads payment
// evidence straight to the bucket.
func ScreenshotUploadURL(svc internalpayments.Service, signer EvidenceSigner, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "payments service unavailable"))
			return
		}
		if signer == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeDependency, "evidence storage not configured"))
			return
		}

		paymentID, memberID, err := evidenceIDs(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload screenshotUploadRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if !strings.HasPrefix(payload.ContentType, "image/") {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "content type must be an image"))
			return
		}

		if err := ensureMember(r, svc, paymentID, memberID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		object := gcs.ScreenshotObject(paymentID.String(), memberID.String())
		url, err := signer.SignedUploadURL(object, payload.ContentType)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "sign upload url"))
			return
		}

		responses.WriteSuccess(w, screenshotURLResponse{
			URL:    url,
			Object: object,
			Bucket: signer.Bucket(),
		})
	}
}

// ScreenshotDownloadURL returns a signed GET URL for previously uploaded
// evidence.
func ScreenshotDownloadURL(svc internalpayments.Service, signer EvidenceSigner, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "payments service unavailable"))
			return
		}
		if signer == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeDependency, "evidence storage not configured"))
			return
		}

		paymentID, memberID, err := evidenceIDs(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		view, err := svc.GetPayment(r.Context(), paymentID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var received bool
		for _, m := range view.Members {
			if m.ID == memberID {
				received = m.ScreenshotReceivedAt != nil
				break
			}
		}
		if !received {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "no screenshot recorded for member"))
			return
		}

		object := gcs.ScreenshotObject(paymentID.String(), memberID.String())
		url, err := signer.SignedDownloadURL(object)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "sign download url"))
			return
		}

		responses.WriteSuccess(w, screenshotURLResponse{
			URL:    url,
			Object: object,
			Bucket: signer.Bucket(),
		})
	}
}

// ScreenshotReceived stamps the member after the client finished uploading
// evidence.
func ScreenshotReceived(svc internalpayments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "payments service unavailable"))
			return
		}

		actorID, err := middleware.ActorID(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		paymentID, memberID, err := evidenceIDs(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		view, err := svc.MarkScreenshotReceived(r.Context(), actorID, paymentID, memberID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, view)
	}
}

func evidenceIDs(r *http.Request) (uuid.UUID, uuid.UUID, error) {
	paymentID, err := validators.ParseUUIDParam(r, "paymentID")
	if err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	memberID, err := validators.ParseUUIDParam(r, "memberID")
	if err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	return paymentID, memberID, nil
}

func ensureMember(r *http.Request, svc internalpayments.Service, paymentID, memberID uuid.UUID) error {
	view, err := svc.GetPayment(r.Context(), paymentID)
	if err != nil {
		return err
	}
	for _, m := range view.Members {
		if m.ID == memberID {
			return nil
		}
	}
	return pkgerrors.New(pkgerrors.CodeNotFound, "member not found in payment")
}
