package testutil

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
)

// TestCSRFToken is the token WithCSRFToken places on a request.
const TestCSRFToken = "test-csrf-token-12345"

// csrfKey mirrors the context key gorilla/csrf stores its token under, so
// views that read the token render a value instead of an empty field.
const csrfKey = "gorilla.csrf.Token"

// WithCSRFToken returns r carrying TestCSRFToken in its context.
func WithCSRFToken(r *http.Request) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), csrfKey, TestCSRFToken))
}

// NewFormRequest builds a url-encoded POST to target.
func NewFormRequest(target, body string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return WithCSRFToken(req)
}
