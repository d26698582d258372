// Package auth verifies Firebase ID tokens against Google's published
// signing certificates.
package auth

import (
	"context"
	"crypto/rsa"
	"crypto/x509"
	"encoding/json"
	"encoding/pem"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// certsURL serves the current X.509 certificates Firebase signs ID tokens with,
// keyed by kid. Google rotates them; the Cache-Control header bounds reuse.
const certsURL = "https://www.googleapis.com/robot/v1/metadata/x509/securetoken@system.gserviceaccount.com"

const defaultCertsTTL = time.Hour

// ErrNoCredential is returned when no bearer token was supplied at all.
var ErrNoCredential = errors.New("no credential supplied")

// ErrInvalidCredential is returned when a token is malformed, expired, or
// fails signature or issuer/audience checks.
var ErrInvalidCredential = errors.New("invalid credential")

// ErrVerifierUnavailable is returned for every call when the verifier's own
// configuration was missing or malformed at startup. Callers must fail
// closed on it; a broken verifier never authenticates anyone.
var ErrVerifierUnavailable = errors.New("token verifier unavailable")

// Claims is the verified identity extracted from an ID token. It lives for
// the duration of one request.
type Claims struct {
	SubjectID string
	Email     string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// serviceAccount is the subset of the Firebase service account descriptor
// the verifier needs.
type serviceAccount struct {
	Type      string `json:"type"`
	ProjectID string `json:"project_id"`
}

// Verifier validates bearer ID tokens for a single Firebase project.
// It is safe for concurrent use: the certificate cache is read-mostly and
// guarded by a RWMutex, refreshed when stale or when an unknown key id shows up.
type Verifier struct {
	projectID string
	certsURL  string
	client    *http.Client
	now       func() time.Time

	// initErr captures a startup configuration failure; it is replayed to
	// every Verify call instead of retrying initialization per request.
	initErr error

	mu           sync.RWMutex
	keys         map[string]*rsa.PublicKey
	keysExpireAt time.Time
}

// NewVerifier parses the service account JSON and binds the verifier to its
// project. A missing or malformed descriptor does not produce a nil verifier
// or an anonymous fallback: the returned Verifier rejects every call with
// ErrVerifierUnavailable.
func NewVerifier(serviceAccountJSON string) *Verifier {
	v := &Verifier{
		certsURL: certsURL,
		client:   &http.Client{Timeout: 10 * time.Second},
		now:      time.Now,
	}

	if serviceAccountJSON == "" {
		v.initErr = fmt.Errorf("%w: FIREBASE_SERVICE_ACCOUNT_JSON is not set", ErrVerifierUnavailable)
		return v
	}

	var sa serviceAccount
	if err := json.Unmarshal([]byte(serviceAccountJSON), &sa); err != nil {
		v.initErr = fmt.Errorf("%w: parse service account descriptor: %v", ErrVerifierUnavailable, err)
		return v
	}
	if sa.ProjectID == "" {
		v.initErr = fmt.Errorf("%w: service account descriptor has no project_id", ErrVerifierUnavailable)
		return v
	}

	v.projectID = sa.ProjectID
	return v
}

// ProjectID returns the Firebase project the verifier accepts tokens for.
// Empty when the verifier is unavailable.
func (v *Verifier) ProjectID() string {
	return v.projectID
}

// Available reports whether the verifier initialized correctly.
func (v *Verifier) Available() bool {
	return v.initErr == nil
}

// Verify checks the credential and returns the verified claims.
// Failure conditions map onto the three sentinel errors: ErrNoCredential for
// an empty credential, ErrVerifierUnavailable for a misconfigured verifier,
// and ErrInvalidCredential for everything wrong with the token itself.
func (v *Verifier) Verify(ctx context.Context, credential string) (*Claims, error) {
	if v.initErr != nil {
		return nil, v.initErr
	}
	if credential == "" {
		return nil, ErrNoCredential
	}

	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{"RS256"}),
		jwt.WithIssuer("https://securetoken.google.com/"+v.projectID),
		jwt.WithAudience(v.projectID),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
	)

	token, err := parser.Parse(credential, func(t *jwt.Token) (interface{}, error) {
		kid, _ := t.Header["kid"].(string)
		if kid == "" {
			return nil, errors.New("token has no kid header")
		}
		return v.publicKey(ctx, kid)
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCredential, err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, fmt.Errorf("%w: unexpected claims type", ErrInvalidCredential)
	}

	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return nil, fmt.Errorf("%w: token has no subject", ErrInvalidCredential)
	}

	out := &Claims{SubjectID: sub}
	if email, _ := claims["email"].(string); email != "" {
		out.Email = email
	}
	if iat, err := claims.GetIssuedAt(); err == nil && iat != nil {
		out.IssuedAt = iat.Time
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		out.ExpiresAt = exp.Time
	}
	return out, nil
}

// publicKey returns the RSA public key for kid, refreshing the certificate
// cache when it is stale or the kid is unknown.
func (v *Verifier) publicKey(ctx context.Context, kid string) (*rsa.PublicKey, error) {
	v.mu.RLock()
	key, ok := v.keys[kid]
	stale := v.now().After(v.keysExpireAt)
	v.mu.RUnlock()

	if ok && !stale {
		return key, nil
	}

	if err := v.refreshKeys(ctx); err != nil {
		return nil, fmt.Errorf("fetch signing certificates: %w", err)
	}

	v.mu.RLock()
	defer v.mu.RUnlock()
	key, ok = v.keys[kid]
	if !ok {
		return nil, fmt.Errorf("no signing certificate for kid %q", kid)
	}
	return key, nil
}

// refreshKeys downloads and parses the current certificate set.
func (v *Verifier) refreshKeys(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, v.certsURL, nil)
	if err != nil {
		return err
	}
	resp, err := v.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("certificate endpoint returned %s", resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	var certs map[string]string
	if err := json.Unmarshal(body, &certs); err != nil {
		return fmt.Errorf("decode certificate response: %w", err)
	}

	keys := make(map[string]*rsa.PublicKey, len(certs))
	for kid, pemCert := range certs {
		block, _ := pem.Decode([]byte(pemCert))
		if block == nil {
			return fmt.Errorf("certificate for kid %q is not PEM", kid)
		}
		cert, err := x509.ParseCertificate(block.Bytes)
		if err != nil {
			return fmt.Errorf("parse certificate for kid %q: %w", kid, err)
		}
		pub, ok := cert.PublicKey.(*rsa.PublicKey)
		if !ok {
			return fmt.Errorf("certificate for kid %q is not RSA", kid)
		}
		keys[kid] = pub
	}

	ttl := certsTTL(resp.Header.Get("Cache-Control"))

	v.mu.Lock()
	v.keys = keys
	v.keysExpireAt = v.now().Add(ttl)
	v.mu.Unlock()
	return nil
}

// certsTTL extracts max-age from a Cache-Control header, falling back to a
// fixed TTL when absent.
func certsTTL(cacheControl string) time.Duration {
	for _, directive := range strings.Split(cacheControl, ",") {
		directive = strings.TrimSpace(directive)
		if age, ok := strings.CutPrefix(directive, "max-age="); ok {
			if secs, err := strconv.Atoi(age); err == nil && secs > 0 {
				return time.Duration(secs) * time.Second
			}
		}
	}
	return defaultCertsTTL
}
