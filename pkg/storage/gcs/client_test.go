package gcs

import (
	"crypto/rand"
	"crypto/rsa"
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T) *Client {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	return &Client{
		httpClient:  http.DefaultClient,
		bucket:      "matchpay-evidence",
		urlExpiry:   15 * time.Minute,
		signerEmail: "svc@test.iam.gserviceaccount.com",
		signerKey:   key,
	}
}

func TestScreenshotObjectNaming(t *testing.T) {
	got := ScreenshotObject("pay-1", "mem-2")
	assert.Equal(t, "screenshots/pay-1/mem-2", got)
}

func TestSignedUploadURLShape(t *testing.T) {
	c := newTestClient(t)

	raw, err := c.SignedUploadURL(ScreenshotObject("p1", "m1"), "image/jpeg")
	require.NoError(t, err)

	u, err := url.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "storage.googleapis.com", u.Host)
	assert.Equal(t, "/matchpay-evidence/screenshots/p1/m1", u.Path)

	q := u.Query()
	assert.Equal(t, "GOOG4-RSA-SHA256", q.Get("X-Goog-Algorithm"))
	assert.Equal(t, "900", q.Get("X-Goog-Expires"))
	assert.Contains(t, q.Get("X-Goog-Credential"), "svc@test.iam.gserviceaccount.com")
	assert.Equal(t, "content-type;host", q.Get("X-Goog-SignedHeaders"))
	assert.NotEmpty(t, q.Get("X-Goog-Signature"))
}

func TestSignedURLRequiresServiceAccountKey(t *testing.T) {
	c := &Client{bucket: "matchpay-evidence", urlExpiry: time.Minute}
	_, err := c.SignedDownloadURL("screenshots/p1/m1")
	assert.ErrorContains(t, err, "service account credentials")
}

func TestEscapeObjectPathKeepsSlashes(t *testing.T) {
	assert.Equal(t, "screenshots/p%201/m1", escapeObjectPath("screenshots/p 1/m1"))
}
