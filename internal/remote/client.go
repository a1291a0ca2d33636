// Package remote talks to the messages endpoint: GET for the full list, POST for a new message.
//
// Both operations are best-effort. Failures are logged here and handed back as values so
// callers can show or test them, but nothing upstream ever treats them as fatal.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/pollchat/internal/chat"
)

const (
	headerRequestID = "X-Request-ID"
	userAgent       = "pollchat/1"
	maxBodyBytes    = 4 << 20
)

// ErrBadStatus marks a non-2xx response. Use errors.As with *StatusError for the code.
var ErrBadStatus = errors.New("bad status code")

// StatusError carries the status of a rejected request.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: %d", ErrBadStatus, e.Code)
}

func (e *StatusError) Unwrap() error { return ErrBadStatus }

// Client reads and writes the remote messages resource.
type Client struct {
	endpoint string
	http     *http.Client
	log      *zerolog.Logger
}

// NewClient builds a client for endpoint. A zero timeout leaves the platform default in place.
func NewClient(endpoint string, timeout time.Duration, logger *zerolog.Logger) *Client {
	return &Client{
		endpoint: endpoint,
		http:     &http.Client{Timeout: timeout},
		log:      logger,
	}
}

// Endpoint returns the messages URL this client targets.
func (c *Client) Endpoint() string { return c.endpoint }

// FetchMessages returns the full message list in server order.
// On any failure it logs, then returns an empty non-nil slice along with the error.
func (c *Client) FetchMessages(ctx context.Context) ([]chat.Message, error) {
	reqID := uuid.NewString()

	msgs, err := c.fetch(ctx, reqID)
	if err != nil {
		c.log.Error().Err(err).Str("request_id", reqID).Str("endpoint", c.endpoint).Msg("fetch messages failed")
		return []chat.Message{}, err
	}

	c.log.Debug().Str("request_id", reqID).Int("count", len(msgs)).Msg("messages fetched")
	return msgs, nil
}

func (c *Client) fetch(ctx context.Context, reqID string) ([]chat.Message, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	c.decorate(req, reqID)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("get messages: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))
		return nil, &StatusError{Code: resp.StatusCode}
	}

	var msgs []chat.Message
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodyBytes)).Decode(&msgs); err != nil {
		return nil, fmt.Errorf("decode messages: %w", err)
	}
	if msgs == nil {
		msgs = []chat.Message{}
	}
	return msgs, nil
}

// PostMessage sends draft to the endpoint. The response body is ignored.
func (c *Client) PostMessage(ctx context.Context, draft chat.Draft) error {
	reqID := uuid.NewString()

	if err := c.post(ctx, reqID, draft); err != nil {
		c.log.Error().Err(err).Str("request_id", reqID).Str("sender", draft.Sender).Msg("send message failed")
		return err
	}

	c.log.Debug().Str("request_id", reqID).Str("sender", draft.Sender).Msg("message sent")
	return nil
}

func (c *Client) post(ctx context.Context, reqID string, draft chat.Draft) error {
	body, err := json.Marshal(draft)
	if err != nil {
		return fmt.Errorf("marshal draft: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	c.decorate(req, reqID)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("post message: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &StatusError{Code: resp.StatusCode}
	}
	return nil
}

func (c *Client) decorate(req *http.Request, reqID string) {
	req.Header.Set(headerRequestID, reqID)
	req.Header.Set("User-Agent", userAgent)
}
