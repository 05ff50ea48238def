// Package types holds the JSON envelopes every matchpay endpoint writes.
// Payment views, squad lists and dispatch summaries all ride under "data";
// failures ride under "error" with a stable machine-readable code.
package types

type SuccessEnvelope struct {
	Data any `json:"data"`
}

// APIError is the wire form of a pkg/errors code. Details carries
// field-level validation hints when the error allows them.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}
