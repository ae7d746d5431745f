package schoolcontent

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

// DefaultVerifyTimeout bounds the reachability probe so a dead storage
// endpoint can never stall an upload request for long.
const DefaultVerifyTimeout = 5 * time.Second

// HTTPVerifier probes a public URL with a HEAD request, falling back to a
// GET when the endpoint does not support HEAD. Any 2xx-3xx response counts
// as reachable.
type HTTPVerifier struct {
	client *http.Client
}

// NewHTTPVerifier creates a verifier with the given probe timeout.
// A non-positive timeout uses DefaultVerifyTimeout.
func NewHTTPVerifier(timeout time.Duration) *HTTPVerifier {
	if timeout <= 0 {
		timeout = DefaultVerifyTimeout
	}
	return &HTTPVerifier{client: &http.Client{Timeout: timeout}}
}

// Verify implements URLVerifier.
func (v *HTTPVerifier) Verify(ctx context.Context, url string) error {
	code, err := v.probe(ctx, http.MethodHead, url)
	if err == nil && reachable(code) {
		return nil
	}
	if err == nil && code != http.StatusMethodNotAllowed && code != http.StatusNotImplemented {
		return fmt.Errorf("unexpected status %d from HEAD %s", code, url)
	}

	// HEAD unsupported or the transport failed: retry as a GET and discard
	// the body without reading it.
	code, err = v.probe(ctx, http.MethodGet, url)
	if err != nil {
		return err
	}
	if !reachable(code) {
		return fmt.Errorf("unexpected status %d from GET %s", code, url)
	}
	return nil
}

func (v *HTTPVerifier) probe(ctx context.Context, method, url string) (int, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, nil)
	if err != nil {
		return 0, err
	}
	resp, err := v.client.Do(req)
	if err != nil {
		return 0, err
	}
	resp.Body.Close()
	return resp.StatusCode, nil
}

func reachable(code int) bool {
	return code >= 200 && code < 400
}
