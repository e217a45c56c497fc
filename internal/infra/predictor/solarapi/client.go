package solarapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/yanqian/solar-dashboard/internal/domain/dashboard"
	"github.com/yanqian/solar-dashboard/internal/domain/metrics"
	apperrors "github.com/yanqian/solar-dashboard/pkg/errors"
)

const (
	defaultBaseURL = "http://127.0.0.1:5000"
	predictPath    = "/predict"
)

// Client calls the solar collector prediction service.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient builds an API client.
func NewClient(baseURL string, timeout time.Duration) *Client {
	url := strings.TrimSpace(baseURL)
	if url == "" {
		url = defaultBaseURL
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(url, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Predict posts the collector description and returns the predicted outputs.
// Upstream validation failures come back as invalid_input AppErrors.
func (c *Client) Predict(ctx context.Context, input dashboard.PredictionInput) (metrics.Snapshot, error) {
	payload, err := json.Marshal(input)
	if err != nil {
		return metrics.Snapshot{}, fmt.Errorf("encode prediction request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+predictPath, bytes.NewReader(payload))
	if err != nil {
		return metrics.Snapshot{}, fmt.Errorf("build prediction request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return metrics.Snapshot{}, fmt.Errorf("prediction request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return metrics.Snapshot{}, fmt.Errorf("read prediction response: %w", err)
	}

	var raw apiResponse
	decodeErr := json.Unmarshal(body, &raw)

	if resp.StatusCode >= 300 {
		message := strings.TrimSpace(raw.Error)
		if decodeErr != nil || message == "" {
			message = truncate(string(body), 512)
		}
		if resp.StatusCode == http.StatusBadRequest {
			return metrics.Snapshot{}, apperrors.Wrap(apperrors.CodeInvalidInput, message, nil)
		}
		return metrics.Snapshot{}, fmt.Errorf("prediction error: status=%d body=%s", resp.StatusCode, message)
	}
	if decodeErr != nil {
		return metrics.Snapshot{}, fmt.Errorf("decode prediction response: %w", decodeErr)
	}
	if raw.Error != "" {
		return metrics.Snapshot{}, fmt.Errorf("prediction error: %s", raw.Error)
	}

	snapshot, err := parsePredictedValues(raw.PredictedValues)
	if err != nil {
		return metrics.Snapshot{}, fmt.Errorf("decode predicted values: %w", err)
	}
	return snapshot, nil
}

type apiResponse struct {
	PredictedValues json.RawMessage `json:"predicted_values"`
	Error           string          `json:"error"`
}

// parsePredictedValues accepts both the keyed object form and the positional
// [Qout, Qloss, Efficiency] array form.
func parsePredictedValues(raw json.RawMessage) (metrics.Snapshot, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || string(trimmed) == "null" {
		return metrics.Snapshot{}, errors.New("predicted_values missing")
	}

	var snapshot metrics.Snapshot
	switch trimmed[0] {
	case '{':
		var keyed map[string]*float64
		if err := json.Unmarshal(trimmed, &keyed); err != nil {
			return metrics.Snapshot{}, err
		}
		qout, err := pick(keyed, "Qout")
		if err != nil {
			return metrics.Snapshot{}, err
		}
		qloss, err := pick(keyed, "Qloss")
		if err != nil {
			return metrics.Snapshot{}, err
		}
		eff, err := pick(keyed, "Efficiency(%)", "Efficiency (%)", "Efficiency")
		if err != nil {
			return metrics.Snapshot{}, err
		}
		snapshot = metrics.Snapshot{Qout: qout, Qloss: qloss, Efficiency: eff}
	case '[':
		var values []float64
		if err := json.Unmarshal(trimmed, &values); err != nil {
			return metrics.Snapshot{}, err
		}
		if len(values) != 3 {
			return metrics.Snapshot{}, fmt.Errorf("expected 3 predicted values, got %d", len(values))
		}
		snapshot = metrics.Snapshot{Qout: values[0], Qloss: values[1], Efficiency: values[2]}
	default:
		return metrics.Snapshot{}, errors.New("unsupported predicted_values format")
	}

	for _, v := range []float64{snapshot.Qout, snapshot.Qloss, snapshot.Efficiency} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return metrics.Snapshot{}, errors.New("predicted values must be finite")
		}
	}
	return snapshot, nil
}

func pick(values map[string]*float64, keys ...string) (float64, error) {
	for _, key := range keys {
		if v, ok := values[key]; ok && v != nil {
			return *v, nil
		}
	}
	return 0, fmt.Errorf("missing %s", keys[0])
}

func truncate(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) <= n {
		return s
	}
	return s[:n]
}

var _ dashboard.Predictor = (*Client)(nil)
