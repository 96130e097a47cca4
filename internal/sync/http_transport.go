package sync

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/fieldtrack/mileage-backend-go/internal/models"
)

// HTTPTransport implements Transport against the central store's JSON
// API. Server-side uploads are idempotent upserts, so resuming after a
// mid-cycle failure is always safe.
type HTTPTransport struct {
	baseURL string
	client  *http.Client
}

// NewHTTPTransport creates a transport for the given server base URL
func NewHTTPTransport(baseURL string) *HTTPTransport {
	return &HTTPTransport{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

// UploadShift uploads one shift and returns the server-assigned id
func (t *HTTPTransport) UploadShift(ctx context.Context, shift models.Shift) (int64, error) {
	payload := ShiftUpload{
		LocalID:      shift.ID,
		EmployeeID:   shift.EmployeeID,
		ClockedInAt:  shift.ClockedInAt,
		ClockedOutAt: shift.ClockedOutAt,
	}

	var resp struct {
		ServerID int64 `json:"server_id"`
	}
	if err := t.post(ctx, "/api/v1/sync/shifts", payload, &resp); err != nil {
		return 0, err
	}
	return resp.ServerID, nil
}

// UploadPoints uploads one batch and returns per-item outcomes
func (t *HTTPTransport) UploadPoints(ctx context.Context, batch []PointUpload) ([]PointOutcome, error) {
	payload := struct {
		Points []PointUpload `json:"points"`
	}{Points: batch}

	var resp struct {
		Results []PointOutcome `json:"results"`
	}
	if err := t.post(ctx, "/api/v1/sync/points", payload, &resp); err != nil {
		return nil, err
	}
	return resp.Results, nil
}

// UploadGaps uploads capture gaps
func (t *HTTPTransport) UploadGaps(ctx context.Context, gaps []GapUpload) error {
	payload := struct {
		Gaps []GapUpload `json:"gaps"`
	}{Gaps: gaps}
	return t.post(ctx, "/api/v1/sync/gaps", payload, nil)
}

func (t *HTTPTransport) post(ctx context.Context, path string, payload, out interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		return &NetworkError{Err: err}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= 500:
		// Server trouble is indistinguishable from a bad connection
		// for retry purposes.
		return &NetworkError{Err: fmt.Errorf("server returned %d", resp.StatusCode)}
	case resp.StatusCode >= 400:
		return fmt.Errorf("upload rejected: server returned %d", resp.StatusCode)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
