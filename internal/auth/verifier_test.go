package auth

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/json"
	"encoding/pem"
	"errors"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const testProjectID = "stylesync-test"

var testServiceAccount = `{"type":"service_account","project_id":"` + testProjectID + `"}`

// testSigner bundles a signing key with a fake certificate endpoint serving
// its certificate the way Google's securetoken endpoint does.
type testSigner struct {
	key    *rsa.PrivateKey
	kid    string
	server *httptest.Server
}

func newTestSigner(t *testing.T) *testSigner {
	t.Helper()

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}

	template := x509.Certificate{
		SerialNumber: big.NewInt(1),
		Subject:      pkix.Name{CommonName: "securetoken.system.gserviceaccount.com"},
		NotBefore:    time.Now().Add(-time.Hour),
		NotAfter:     time.Now().Add(time.Hour),
	}
	der, err := x509.CreateCertificate(rand.Reader, &template, &template, &key.PublicKey, key)
	if err != nil {
		t.Fatalf("create certificate: %v", err)
	}
	pemCert := pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: der})

	kid := "test-key-1"
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Cache-Control", "public, max-age=3600")
		_ = json.NewEncoder(w).Encode(map[string]string{kid: string(pemCert)})
	}))
	t.Cleanup(server.Close)

	return &testSigner{key: key, kid: kid, server: server}
}

// token mints a signed ID token with the given claim overrides.
func (s *testSigner) token(t *testing.T, override map[string]interface{}) string {
	t.Helper()

	claims := jwt.MapClaims{
		"iss": "https://securetoken.google.com/" + testProjectID,
		"aud": testProjectID,
		"sub": "alice123",
		"iat": time.Now().Add(-time.Minute).Unix(),
		"exp": time.Now().Add(time.Hour).Unix(),
	}
	for k, v := range override {
		claims[k] = v
	}

	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	token.Header["kid"] = s.kid
	signed, err := token.SignedString(s.key)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

func newTestVerifier(t *testing.T, signer *testSigner) *Verifier {
	t.Helper()
	v := NewVerifier(testServiceAccount)
	if !v.Available() {
		t.Fatal("verifier should be available")
	}
	v.certsURL = signer.server.URL
	return v
}

func TestVerify_ValidToken(t *testing.T) {
	signer := newTestSigner(t)
	v := newTestVerifier(t, signer)

	claims, err := v.Verify(context.Background(), signer.token(t, map[string]interface{}{
		"email": "alice@example.com",
	}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if claims.SubjectID != "alice123" {
		t.Errorf("subject: got %q", claims.SubjectID)
	}
	if claims.Email != "alice@example.com" {
		t.Errorf("email: got %q", claims.Email)
	}
}

func TestVerify_NoCredential(t *testing.T) {
	v := newTestVerifier(t, newTestSigner(t))
	if _, err := v.Verify(context.Background(), ""); !errors.Is(err, ErrNoCredential) {
		t.Fatalf("expected ErrNoCredential, got %v", err)
	}
}

func TestVerify_InvalidTokens(t *testing.T) {
	signer := newTestSigner(t)
	v := newTestVerifier(t, signer)

	cases := []struct {
		name  string
		token string
	}{
		{"garbage", "not.a.token"},
		{"expired", signer.token(t, map[string]interface{}{"exp": time.Now().Add(-time.Hour).Unix()})},
		{"wrong audience", signer.token(t, map[string]interface{}{"aud": "some-other-project"})},
		{"wrong issuer", signer.token(t, map[string]interface{}{"iss": "https://evil.example.com"})},
		{"no subject", signer.token(t, map[string]interface{}{"sub": ""})},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := v.Verify(context.Background(), tc.token); !errors.Is(err, ErrInvalidCredential) {
				t.Fatalf("expected ErrInvalidCredential, got %v", err)
			}
		})
	}
}

func TestVerify_TamperedSignature(t *testing.T) {
	signer := newTestSigner(t)
	v := newTestVerifier(t, signer)

	// Sign with a key the certificate endpoint does not know about.
	otherKey, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	token := jwt.NewWithClaims(jwt.SigningMethodRS256, jwt.MapClaims{
		"iss": "https://securetoken.google.com/" + testProjectID,
		"aud": testProjectID,
		"sub": "alice123",
		"iat": time.Now().Add(-time.Minute).Unix(),
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	token.Header["kid"] = signer.kid
	signed, err := token.SignedString(otherKey)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}

	if _, err := v.Verify(context.Background(), signed); !errors.Is(err, ErrInvalidCredential) {
		t.Fatalf("expected ErrInvalidCredential, got %v", err)
	}
}

func TestVerify_CachesCertificates(t *testing.T) {
	signer := newTestSigner(t)

	resp, err := http.Get(signer.server.URL)
	if err != nil {
		t.Fatalf("fetch certs: %v", err)
	}
	certs := certsFrom(t, resp)
	resp.Body.Close()

	hits := 0
	proxy := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits++
		w.Header().Set("Cache-Control", "public, max-age=3600")
		_ = json.NewEncoder(w).Encode(certs)
	}))
	t.Cleanup(proxy.Close)

	v := NewVerifier(testServiceAccount)
	v.certsURL = proxy.URL

	for i := 0; i < 3; i++ {
		if _, err := v.Verify(context.Background(), signer.token(t, nil)); err != nil {
			t.Fatalf("verify %d: %v", i, err)
		}
	}
	if hits != 1 {
		t.Errorf("certificate endpoint hit %d times, want 1", hits)
	}
}

func certsFrom(t *testing.T, resp *http.Response) map[string]string {
	t.Helper()
	var certs map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&certs); err != nil {
		t.Fatalf("decode certs: %v", err)
	}
	return certs
}

func TestVerify_Unavailable(t *testing.T) {
	cases := []struct {
		name string
		json string
	}{
		{"unset", ""},
		{"malformed", "{not json"},
		{"no project id", `{"type":"service_account"}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			v := NewVerifier(tc.json)
			if v.Available() {
				t.Fatal("verifier should be unavailable")
			}
			// Replayed on every call, even with a syntactically fine token.
			_, err := v.Verify(context.Background(), "a.b.c")
			if !errors.Is(err, ErrVerifierUnavailable) {
				t.Fatalf("expected ErrVerifierUnavailable, got %v", err)
			}
		})
	}
}

func TestCertsTTL(t *testing.T) {
	if got := certsTTL("public, max-age=1800, must-revalidate"); got != 30*time.Minute {
		t.Errorf("got %v, want 30m", got)
	}
	if got := certsTTL(""); got != defaultCertsTTL {
		t.Errorf("got %v, want default", got)
	}
	if got := certsTTL("no-store"); got != defaultCertsTTL {
		t.Errorf("got %v, want default", got)
	}
}
