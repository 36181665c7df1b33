package prediction

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/Skufu/drrisk/internal/patient"
)

const maxResponseBytes = 1 << 20

// Predictor is the contract the HTTP layer and CLI depend on.
type Predictor interface {
	PredictRisk(ctx context.Context, p patient.Data) (*RiskReport, error)
}

// Client calls the external prediction API. It holds no per-request state;
// every PredictRisk call is a single independent POST with no retry.
type Client struct {
	baseURL string
	http    *http.Client
	logger  zerolog.Logger
}

// NewClient builds a client for baseURL (for example
// "http://127.0.0.1:8000/api"). A nil httpClient gets one with no timeout,
// leaving deadlines to the caller's context.
func NewClient(baseURL string, httpClient *http.Client, logger zerolog.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
		logger:  logger.With().Str("component", "prediction").Logger(),
	}
}

func (c *Client) BaseURL() string { return c.baseURL }

// PredictRisk maps p, posts it to {baseURL}/predict and normalizes the reply.
func (c *Client) PredictRisk(ctx context.Context, p patient.Data) (*RiskReport, error) {
	payload := MapToBackend(p)
	c.logger.Debug().Interface("payload", payload).Msg("sending payload to prediction backend")

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/predict", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build prediction request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		perr := &PredictionError{Message: err.Error(), Err: err}
		if perr.Timeout() {
			c.logger.Error().Err(err).Msg("prediction backend timed out")
		} else {
			c.logger.Error().Err(err).Msg("prediction backend unreachable")
		}
		return nil, perr
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, &PredictionError{StatusCode: resp.StatusCode, Message: fmt.Sprintf("read prediction response: %v", err), Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := errorMessage(resp.StatusCode, resp.Status, data)
		c.logger.Warn().Int("status", resp.StatusCode).Str("error", msg).Msg("prediction backend rejected request")
		return nil, &PredictionError{StatusCode: resp.StatusCode, Message: msg}
	}

	var raw RawResponse
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, &InvalidResponseError{Message: fmt.Sprintf("decode prediction response: %v", err)}
	}
	c.logger.Debug().Interface("response", raw).Msg("raw prediction response")

	report, err := Normalize(raw, p)
	if err != nil {
		return nil, err
	}
	c.logger.Debug().
		Float64("probability", report.RiskProbability).
		Str("risk_level", string(report.RiskLevel)).
		Msg("prediction normalized")
	return report, nil
}

// errorMessage pulls a readable reason out of an error body. FastAPI puts it
// in "detail", which is a list of objects for validation failures; other
// servers use "message".
func errorMessage(code int, status string, body []byte) string {
	fallback := statusFallback(code, status)

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return fallback
	}
	for _, key := range []string{"detail", "message"} {
		raw, ok := fields[key]
		if !ok {
			continue
		}
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			if s != "" {
				return s
			}
			continue
		}
		if text := strings.TrimSpace(string(raw)); text != "" && text != "null" {
			return text
		}
	}
	return fallback
}

// statusFallback prefers the reason phrase the backend sent on its status
// line, so non-standard codes keep their text.
func statusFallback(code int, status string) string {
	reason := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(status), strconv.Itoa(code)))
	if reason == "" {
		reason = http.StatusText(code)
	}
	if reason == "" {
		return fmt.Sprintf("HTTP %d", code)
	}
	return fmt.Sprintf("HTTP %d: %s", code, reason)
}
