package vsmark

import (
	"crypto"
	"crypto/ed25519"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	// DefaultKeyserverTimeout bounds a single key lookup.
	DefaultKeyserverTimeout = 10 * time.Second

	maxKeyResponseSize = 1 << 20
)

// keyResponse is the wire format returned by GET /v1/keys/{signer_id}.
type keyResponse struct {
	SignerID  string `json:"signer_id"`
	PublicKey string `json:"public_key"` // base64-encoded, 32 bytes
}

// HTTPResolver fetches signer public keys from a keyserver. Lookups are
// synchronous on the calling goroutine and bounded by the client
// timeout.
type HTTPResolver struct {
	baseURL    string
	httpClient *http.Client
}

// NewHTTPResolver creates a resolver against baseURL, which must be an
// absolute http(s) URL.
func NewHTTPResolver(baseURL string) (*HTTPResolver, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse keyserver URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("keyserver URL must be http or https, got %q", baseURL)
	}
	return &HTTPResolver{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: DefaultKeyserverTimeout},
	}, nil
}

// SetHTTPClient replaces the underlying HTTP client, e.g. to change the
// timeout or transport.
func (r *HTTPResolver) SetHTTPClient(c *http.Client) {
	r.httpClient = c
}

func (r *HTTPResolver) ResolvePublicKey(signerID string) (crypto.PublicKey, error) {
	reqURL := r.baseURL + "/v1/keys/" + url.PathEscape(signerID)
	resp, err := r.httpClient.Get(reqURL)
	if err != nil {
		return nil, fmt.Errorf("keyserver lookup for %q: %w", signerID, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxKeyResponseSize))
	if err != nil {
		return nil, fmt.Errorf("keyserver lookup for %q: read response: %w", signerID, err)
	}
	if resp.StatusCode == http.StatusNotFound {
		return nil, &ResolverError{SignerID: signerID, Reason: "keyserver has no key"}
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("keyserver lookup for %q: status %d", signerID, resp.StatusCode)
	}

	var kr keyResponse
	if err := json.Unmarshal(body, &kr); err != nil {
		return nil, fmt.Errorf("keyserver lookup for %q: decode response: %w", signerID, err)
	}
	raw, err := base64.StdEncoding.DecodeString(kr.PublicKey)
	if err != nil {
		return nil, fmt.Errorf("keyserver lookup for %q: decode public key: %w", signerID, err)
	}
	if len(raw) != ed25519.PublicKeySize {
		return nil, fmt.Errorf("keyserver lookup for %q: public key: expected %d bytes, got %d",
			signerID, ed25519.PublicKeySize, len(raw))
	}
	return ed25519.PublicKey(raw), nil
}
