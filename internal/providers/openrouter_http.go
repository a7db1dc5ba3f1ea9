package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/avast/retry-go/v4"
)

// doRequest makes an HTTP request to OpenRouter, retrying transient faults
// with exponential backoff and jitter. Auth and malformed-payload errors
// surface immediately.
func (c *OpenRouterClient) doRequest(ctx context.Context, path string, body *openRouterRequest) (*openRouterResponse, error) {
	bodyBytes, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	var resp *openRouterResponse
	err = retry.Do(
		func() error {
			if err := c.limiter.Wait(ctx); err != nil {
				return retry.Unrecoverable(err)
			}
			r, err := c.attempt(ctx, path, bodyBytes)
			if err != nil {
				return err
			}
			resp = r
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(uint(c.maxRetries)),
		retry.Delay(c.retryDelay),
		retry.MaxJitter(c.retryDelay),
		retry.DelayType(retry.CombineDelay(retry.BackOffDelay, retry.RandomDelay)),
		retry.RetryIf(IsTransient),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// attempt performs a single request/decode cycle and classifies failures.
func (c *OpenRouterClient) attempt(ctx context.Context, path string, body []byte) (*openRouterResponse, error) {
	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("X-Title", "Pocketbook")

	httpResp, err := c.client.Do(req)
	if err != nil {
		// Respect the overall deadline: a cancelled context is not retryable.
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, &TransientError{Err: err}
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, &TransientError{Err: fmt.Errorf("failed to read response: %w", err)}
	}

	switch {
	case httpResp.StatusCode == http.StatusUnauthorized || httpResp.StatusCode == http.StatusForbidden:
		return nil, &AuthError{StatusCode: httpResp.StatusCode, Body: string(respBody)}
	case shouldRetryStatus(httpResp.StatusCode):
		return nil, &TransientError{StatusCode: httpResp.StatusCode, Body: string(respBody)}
	case httpResp.StatusCode != http.StatusOK:
		// Surface the body verbatim so the failure can be diagnosed
		// without re-running.
		return nil, fmt.Errorf("completion service error (status %d): %s", httpResp.StatusCode, string(respBody))
	}

	var resp openRouterResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, &MalformedResponseError{Reason: err.Error(), Body: string(respBody)}
	}
	if resp.Error != nil {
		return nil, &MalformedResponseError{
			Reason: fmt.Sprintf("error envelope in 200 response: %s", resp.Error.Message),
			Body:   string(respBody),
		}
	}
	if len(resp.Choices) == 0 {
		return nil, &MalformedResponseError{Reason: "no choices in response", Body: string(respBody)}
	}

	return &resp, nil
}

// shouldRetryStatus returns true for status codes worth retrying.
func shouldRetryStatus(statusCode int) bool {
	switch statusCode {
	case http.StatusTooManyRequests:
		return true
	case http.StatusRequestTimeout:
		return true
	case 520, 521, 522, 523, 524: // Cloudflare errors
		return true
	default:
		return statusCode >= 500
	}
}
