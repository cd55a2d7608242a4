package helpers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

var httpClient = &http.Client{Timeout: 120 * time.Second}

// SetRequestTimeout adjusts the shared client used by MakeHTTPRequest. Called
// once at startup with the configured provider timeout.
func SetRequestTimeout(d time.Duration) {
	if d > 0 {
		httpClient.Timeout = d
	}
}

// MakeHTTPRequest performs a JSON API call and decodes the response into T.
// The body may be url.Values (form encoding), a raw []byte, or anything
// json-marshalable depending on the Content-Type header.
func MakeHTTPRequest[T any](
	ctx context.Context,
	logger *slog.Logger,
	method string,
	fullURL string,
	headers map[string]string,
	queryParams url.Values,
	body interface{},
) (T, error) {
	var result T

	var bodyReader io.Reader

	if body != nil {
		contentType := headers["Content-Type"]

		switch b := body.(type) {
		case url.Values:
			bodyReader = strings.NewReader(b.Encode())
		case []byte:
			bodyReader = bytes.NewReader(b)
		default:
			if contentType != "" && contentType != "application/json" {
				return result, fmt.Errorf("unsupported Content-Type: %s", contentType)
			}
			encoded, err := json.Marshal(body)
			if err != nil {
				return result, err
			}
			bodyReader = bytes.NewBuffer(encoded)
		}
	}

	u, err := url.Parse(fullURL)
	if err != nil {
		return result, err
	}
	if len(queryParams) > 0 {
		q := u.Query()
		for k, v := range queryParams {
			q[k] = v
		}
		u.RawQuery = q.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), bodyReader)
	if err != nil {
		return result, err
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}
	if body != nil && headers["Content-Type"] == "" {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		return result, err
	}
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return result, err
	}

	if logger != nil {
		logger.Debug("HTTP Request", "method", method, "url", u.Redacted(), "status", resp.StatusCode)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return result, &HTTPError{StatusCode: resp.StatusCode, Status: resp.Status, Body: string(respBytes)}
	}

	if err := json.Unmarshal(respBytes, &result); err != nil {
		return result, err
	}

	return result, nil
}

// HTTPError carries the provider's status and raw body so callers can surface
// it verbatim.
type HTTPError struct {
	StatusCode int
	Status     string
	Body       string
}

func (e *HTTPError) Error() string {
	return e.Status + ": " + e.Body
}
