package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/BaoPhun/TreeStore-CustomerWeb/internal/domain"
	"github.com/BaoPhun/TreeStore-CustomerWeb/pkg/circuitbreaker"
)

// Client is the shared JSON/HTTP transport for one backend collaborator.
// Responses use the backend's result envelope: {success, message, data}.
// Transport failures are counted by a circuit breaker; explicit rejections
// (success=false) are not.
type Client struct {
	name    string
	baseURL *url.URL
	http    *http.Client
	breaker *circuitbreaker.Breaker[envelope]
}

func New(name, baseURL string, httpClient *http.Client) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid %s base url %q: %w", name, baseURL, err)
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		name:    name,
		baseURL: u,
		http:    httpClient,
		breaker: circuitbreaker.New[envelope](name),
	}, nil
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// call performs one request and decodes the envelope. A transport-level
// failure maps to ErrTransportFailure, an explicit success=false response to
// ErrBackendRejected. The raw data payload is returned for the caller to
// decode; it may be empty.
func (c *Client) call(ctx context.Context, method, path string, query url.Values, body any) (json.RawMessage, error) {
	rel := &url.URL{Path: path, RawQuery: query.Encode()}
	u := c.baseURL.ResolveReference(rel)

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("%s: marshal request failed: %w", c.name, err)
		}
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), reader)
	if err != nil {
		return nil, fmt.Errorf("%s: build request failed: %w", c.name, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	env, err := c.breaker.Execute(func() (envelope, error) {
		resp, err := c.http.Do(req)
		if err != nil {
			return envelope{}, fmt.Errorf("%w: %s: %v", domain.ErrTransportFailure, c.name, err)
		}
		defer resp.Body.Close()

		if resp.StatusCode >= http.StatusInternalServerError {
			return envelope{}, fmt.Errorf("%w: %s returned status %d", domain.ErrTransportFailure, c.name, resp.StatusCode)
		}

		var env envelope
		if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
			return envelope{}, fmt.Errorf("%w: %s: decode response failed: %v", domain.ErrTransportFailure, c.name, err)
		}
		return env, nil
	})
	if err != nil {
		if errors.Is(err, circuitbreaker.ErrOpen) {
			return nil, fmt.Errorf("%w: %s: %v", domain.ErrTransportFailure, c.name, err)
		}
		return nil, err
	}

	if !env.Success {
		msg := env.Message
		if msg == "" {
			msg = "request failed"
		}
		return nil, fmt.Errorf("%w: %s: %s", domain.ErrBackendRejected, c.name, msg)
	}

	return env.Data, nil
}

func hasData(data json.RawMessage) bool {
	return len(data) > 0 && string(data) != "null"
}
