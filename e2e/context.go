// Package e2e drives a running hadir instance over HTTP with godog.
// Point HADIR_E2E_URL at the server under test; scenarios are skipped
// when it is unset.
package e2e

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// TestContext carries shared state across the steps of one scenario: the
// HTTP client, the last response, and the credentials accumulated so far.
type TestContext struct {
	baseURL string
	client  *http.Client

	accessToken string
	deviceID    string

	lastStatus int
	lastBody   map[string]any
}

func NewTestContext(baseURL string) *TestContext {
	return &TestContext{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

// Reset clears per-scenario state so scenarios stay independent.
func (tc *TestContext) Reset() {
	tc.accessToken = ""
	tc.deviceID = ""
	tc.lastStatus = 0
	tc.lastBody = nil
}

func (tc *TestContext) POST(path string, body any) error {
	return tc.do(http.MethodPost, path, body)
}

func (tc *TestContext) GET(path string) error {
	return tc.do(http.MethodGet, path, nil)
}

func (tc *TestContext) do(method, path string, body any) error {
	var payload io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request body: %w", err)
		}
		payload = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(method, tc.baseURL+path, payload)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if tc.accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+tc.accessToken)
	}
	if tc.deviceID != "" {
		req.Header.Set("X-Device-ID", tc.deviceID)
	}

	resp, err := tc.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	tc.lastStatus = resp.StatusCode
	tc.lastBody = nil
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if len(raw) > 0 {
		// Non-JSON bodies (e.g. /metrics) are fine; assertions on
		// fields will fail with a clear message instead.
		_ = json.Unmarshal(raw, &tc.lastBody)
	}
	return nil
}

func (tc *TestContext) LastStatus() int { return tc.lastStatus }

// GetResponseField resolves a dotted path into the last JSON response.
func (tc *TestContext) GetResponseField(field string) (any, error) {
	if tc.lastBody == nil {
		return nil, fmt.Errorf("no JSON body in last response (status %d)", tc.lastStatus)
	}
	var cur any = tc.lastBody
	for _, part := range strings.Split(field, ".") {
		obj, ok := cur.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("field %q: %q is not an object", field, part)
		}
		cur, ok = obj[part]
		if !ok {
			return nil, fmt.Errorf("field %q not present in response", field)
		}
	}
	return cur, nil
}

func (tc *TestContext) SetAccessToken(token string) { tc.accessToken = token }
func (tc *TestContext) SetDeviceID(id string)       { tc.deviceID = id }
