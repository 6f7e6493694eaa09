package contact

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// DefaultEndpoint is the Formspree form the site posts to.
const DefaultEndpoint = "https://formspree.io/f/mnnbqega"

// Relay delivers one inquiry to whoever forwards it to the site owner.
type Relay interface {
	Deliver(ctx context.Context, p Payload) error
}

// StatusError is returned when the relay answers outside the 2xx range.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("form relay returned %d", e.StatusCode)
	}
	return fmt.Sprintf("form relay returned %d: %s", e.StatusCode, e.Body)
}

// HTTPRelay posts inquiries as JSON to a form-handling endpoint.
type HTTPRelay struct {
	Endpoint string
	Client   *http.Client
}

// NewHTTPRelay returns a relay for endpoint using http.DefaultClient. Deadlines
// come from the context passed to Deliver.
func NewHTTPRelay(endpoint string) *HTTPRelay {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	return &HTTPRelay{Endpoint: endpoint, Client: http.DefaultClient}
}

func (r *HTTPRelay) Deliver(ctx context.Context, p Payload) error {
	body, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("encoding inquiry: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.Endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("building relay request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := r.Client.Do(req)
	if err != nil {
		return fmt.Errorf("posting inquiry: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &StatusError{StatusCode: resp.StatusCode, Body: string(bytes.TrimSpace(snippet))}
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}
