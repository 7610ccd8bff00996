// Package gitlab fires GitLab pipeline triggers.
package gitlab

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/imamik/switchyard/internal/metrics"
)

// UnexpectedStatusError is returned when the trigger call succeeds with a
// 2xx status other than 201 Created.
type UnexpectedStatusError struct {
	StatusCode int
	Body       string
}

func (e *UnexpectedStatusError) Error() string {
	return fmt.Sprintf("pipeline trigger returned status %d, expected 201", e.StatusCode)
}

// Trigger posts to a project's pipeline trigger endpoint.
type Trigger struct {
	url        string
	token      string
	httpClient *http.Client
}

// NewTrigger creates a trigger for triggerURL, e.g.
// https://gitlab.example.com/api/v4/projects/42/trigger/pipeline.
func NewTrigger(triggerURL, token string, timeout time.Duration) (*Trigger, error) {
	if triggerURL == "" {
		return nil, errors.New("pipeline trigger URL is required")
	}
	if _, err := url.Parse(triggerURL); err != nil {
		return nil, fmt.Errorf("invalid pipeline trigger URL: %w", err)
	}
	return &Trigger{
		url:        triggerURL,
		token:      token,
		httpClient: &http.Client{Timeout: timeout},
	}, nil
}

// Fire starts a pipeline with variables[variable]=true. It is not retried.
func (t *Trigger) Fire(ctx context.Context, variable string) error {
	u, err := url.Parse(t.url)
	if err != nil {
		return fmt.Errorf("invalid pipeline trigger URL: %w", err)
	}
	q := u.Query()
	q.Set("token", t.token)
	q.Set("variables["+variable+"]", "true")
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.String(), nil)
	if err != nil {
		return err
	}

	start := time.Now()
	resp, err := t.httpClient.Do(req)
	metrics.ObserveCall("gitlab", start)
	if err != nil {
		return fmt.Errorf("pipeline trigger: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))

	switch {
	case resp.StatusCode == http.StatusCreated:
		return nil
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return &UnexpectedStatusError{StatusCode: resp.StatusCode, Body: string(body)}
	default:
		return fmt.Errorf("pipeline trigger API error (status %d): %s", resp.StatusCode, string(body))
	}
}
