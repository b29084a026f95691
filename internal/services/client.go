package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// Message is the JSON body returned by every service.
type Message struct {
	Message string `json:"message"`
}

// NewClient returns an HTTP client that propagates trace context to the
// services it calls.
func NewClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout:   timeout,
		Transport: otelhttp.NewTransport(http.DefaultTransport),
	}
}

type statusError struct {
	code int
}

func (e statusError) Error() string {
	return fmt.Sprintf("unexpected status code: %v", e.code)
}

func retryable(err error) bool {
	var se statusError
	if errors.As(err, &se) {
		return se.code >= http.StatusInternalServerError
	}
	var ue *url.Error
	if errors.As(err, &ue) {
		return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
	}
	return false
}

func getBackoff() backoff.BackOff {
	boff := backoff.NewExponentialBackOff()
	boff.InitialInterval = 50 * time.Millisecond
	boff.MaxInterval = time.Second
	boff.MaxElapsedTime = 5 * time.Second
	return boff
}

// getMessage fetches target and decodes the Message it responds with. Connection
// errors and server errors are retried with backoff, which covers downstream
// services that are still starting.
func getMessage(ctx context.Context, client *http.Client, target string) (msg Message, err error) {
	boff := getBackoff()
	for {
		if msg, err = getMessageOnce(ctx, client, target); err == nil || !retryable(err) {
			return
		}
		next := boff.NextBackOff()
		if next == backoff.Stop {
			return
		}
		select {
		case <-ctx.Done():
			return msg, ctx.Err()
		case <-time.After(next):
		}
	}
}

func getMessageOnce(ctx context.Context, client *http.Client, target string) (msg Message, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, http.NoBody)
	if err != nil {
		return msg, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return msg, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return msg, statusError{code: resp.StatusCode}
	}
	if err := json.NewDecoder(resp.Body).Decode(&msg); err != nil {
		return msg, fmt.Errorf("decode response: %w", err)
	}
	return msg, nil
}
