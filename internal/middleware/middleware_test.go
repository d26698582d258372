package middleware_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stylesync/service/internal/auth"
	"github.com/stylesync/service/internal/middleware"
)

// ---------------------------------------------------------------------------
// CORS
// ---------------------------------------------------------------------------

func corsHandler() http.Handler {
	return middleware.CORS(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{}`))
	}))
}

func assertCORSHeaders(t *testing.T, rr *httptest.ResponseRecorder) {
	t.Helper()
	if got := rr.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("Allow-Origin: got %q", got)
	}
	if got := rr.Header().Get("Access-Control-Allow-Methods"); got != "POST, OPTIONS" {
		t.Errorf("Allow-Methods: got %q", got)
	}
	if got := rr.Header().Get("Access-Control-Allow-Headers"); got != "Content-Type, Authorization" {
		t.Errorf("Allow-Headers: got %q", got)
	}
}

func TestCORS_HeadersOnEveryResponse(t *testing.T) {
	rr := httptest.NewRecorder()
	// No Origin header on purpose: the headers are unconditional.
	corsHandler().ServeHTTP(rr, httptest.NewRequest("POST", "/api/generateSas", http.NoBody))

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	assertCORSHeaders(t, rr)
}

func TestCORS_OptionsAlways204(t *testing.T) {
	for _, path := range []string{"/api/generateSas", "/api/deleteBlob"} {
		rr := httptest.NewRecorder()
		req := httptest.NewRequest("OPTIONS", path, http.NoBody)
		req.Header.Set("Access-Control-Request-Method", "POST")
		corsHandler().ServeHTTP(rr, req)

		if rr.Code != http.StatusNoContent {
			t.Fatalf("%s: expected 204, got %d", path, rr.Code)
		}
		if rr.Body.Len() != 0 {
			t.Errorf("%s: expected empty body, got %q", path, rr.Body.String())
		}
		assertCORSHeaders(t, rr)
	}
}

func TestCORS_BareOptions204(t *testing.T) {
	rr := httptest.NewRecorder()
	corsHandler().ServeHTTP(rr, httptest.NewRequest("OPTIONS", "/api/deleteBlob", http.NoBody))

	if rr.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rr.Code)
	}
}

// ---------------------------------------------------------------------------
// RequireAuth
// ---------------------------------------------------------------------------

// stubVerifier returns a fixed result for every credential.
type stubVerifier struct {
	claims *auth.Claims
	err    error
}

func (s *stubVerifier) Verify(_ context.Context, _ string) (*auth.Claims, error) {
	return s.claims, s.err
}

func authHandler(v middleware.TokenVerifier, saw *string) http.Handler {
	return middleware.RequireAuth(v)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if uid, ok := middleware.UserID(r.Context()); ok {
			*saw = uid
		}
		w.WriteHeader(http.StatusOK)
	}))
}

func TestRequireAuth_NoHeader(t *testing.T) {
	var saw string
	rr := httptest.NewRecorder()
	authHandler(&stubVerifier{}, &saw).ServeHTTP(rr, httptest.NewRequest("POST", "/", http.NoBody))

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rr.Code)
	}
	if saw != "" {
		t.Error("handler should not have run")
	}
}

func TestRequireAuth_MalformedHeader(t *testing.T) {
	for _, header := range []string{"token-without-scheme", "Basic abc123", "Bearer "} {
		var saw string
		rr := httptest.NewRecorder()
		req := httptest.NewRequest("POST", "/", http.NoBody)
		req.Header.Set("Authorization", header)
		authHandler(&stubVerifier{}, &saw).ServeHTTP(rr, req)

		if rr.Code != http.StatusUnauthorized {
			t.Fatalf("%q: expected 401, got %d", header, rr.Code)
		}
	}
}

func TestRequireAuth_InvalidToken(t *testing.T) {
	var saw string
	rr := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/", http.NoBody)
	req.Header.Set("Authorization", "Bearer bad-token")
	authHandler(&stubVerifier{err: auth.ErrInvalidCredential}, &saw).ServeHTTP(rr, req)

	if rr.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rr.Code)
	}
	if saw != "" {
		t.Error("handler should not have run")
	}
}

func TestRequireAuth_VerifierUnavailable(t *testing.T) {
	var saw string
	rr := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/", http.NoBody)
	req.Header.Set("Authorization", "Bearer any-token")
	authHandler(&stubVerifier{err: auth.ErrVerifierUnavailable}, &saw).ServeHTTP(rr, req)

	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rr.Code)
	}

	var body map[string]string
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("response is not valid JSON: %v", err)
	}
	if body["error"] == "" {
		t.Error("expected an error message")
	}
}

func TestRequireAuth_ValidToken(t *testing.T) {
	var saw string
	rr := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/", http.NoBody)
	req.Header.Set("Authorization", "Bearer good-token")
	authHandler(&stubVerifier{claims: &auth.Claims{SubjectID: "alice123"}}, &saw).ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if saw != "alice123" {
		t.Errorf("subject in context: got %q", saw)
	}
}
