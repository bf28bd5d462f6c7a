// Package remote is the JSON client of the grocery API. Every call that acts
// for a signed-in browser goes through a ports.RequestAuthorizer, which picks
// the namespace credential and interprets the answer's status.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/freshcart/storefront/internal/core/domain"
	"github.com/freshcart/storefront/internal/core/ports"
)

const maxBodyBytes = 4 << 20

// Client talks to the remote API at baseURL.
type Client struct {
	baseURL string
	http    *http.Client
	auth    ports.RequestAuthorizer
	metrics ports.MetricsRecorder
	log     zerolog.Logger
}

// New returns a Client. A zero timeout leaves calls bounded only by the
// caller's context.
func New(baseURL string, timeout time.Duration, auth ports.RequestAuthorizer, metrics ports.MetricsRecorder, log zerolog.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		auth:    auth,
		metrics: metrics,
		log:     log,
	}
}

// call describes one remote request. route is the path template used as the
// metrics label; path is the concrete path.
type call struct {
	method string
	route  string
	path   string
	query  url.Values
	body   any
	out    any
	// public calls carry no credential and never end a session.
	public bool
	// errs maps statuses other than 401/403 to domain errors.
	errs map[int]error
}

// errorBody is the error shape of the remote API.
type errorBody struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

func (c *Client) do(ctx context.Context, in call) error {
	req, err := c.newRequest(ctx, in)
	if err != nil {
		return err
	}

	var att ports.Attachment
	if !in.public {
		if att, err = c.auth.Attach(ctx, req); err != nil {
			return err
		}
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.metrics.RecordRemoteCall(in.method, in.route, 0, time.Since(start))
		c.log.Warn().Err(err).Str("method", in.method).Str("path", in.path).Msg("remote call failed")
		return fmt.Errorf("%w: %s %s: %w", domain.ErrRemoteUnavailable, in.method, in.path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	elapsed := time.Since(start)
	c.metrics.RecordRemoteCall(in.method, in.route, resp.StatusCode, elapsed)
	if err != nil {
		return fmt.Errorf("%w: read %s %s: %w", domain.ErrRemoteUnavailable, in.method, in.path, err)
	}

	c.log.Debug().
		Str("method", in.method).
		Str("path", in.path).
		Int("status", resp.StatusCode).
		Bool("credentialed", att.Credentialed).
		Dur("elapsed", elapsed).
		Msg("remote call")

	if err := c.statusError(ctx, in, att, resp.StatusCode, raw); err != nil {
		return err
	}
	if in.out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, in.out); err != nil {
		return fmt.Errorf("decode %s %s: %w", in.method, in.path, err)
	}
	return nil
}

func (c *Client) newRequest(ctx context.Context, in call) (*http.Request, error) {
	u := c.baseURL + in.path
	if len(in.query) > 0 {
		u += "?" + in.query.Encode()
	}

	var body io.Reader
	if in.body != nil {
		b, err := json.Marshal(in.body)
		if err != nil {
			return nil, fmt.Errorf("encode %s %s: %w", in.method, in.path, err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, in.method, u, body)
	if err != nil {
		return nil, fmt.Errorf("build %s %s: %w", in.method, in.path, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req, nil
}

// statusError turns a non-2xx answer into an error. 401 and 403 on
// credentialed calls are left to the authorizer.
func (c *Client) statusError(ctx context.Context, in call, att ports.Attachment, status int, raw []byte) error {
	if status < 400 {
		if !in.public {
			return c.auth.Observe(ctx, att, status)
		}
		return nil
	}

	msg := errorMessage(raw)
	if mapped, ok := in.errs[status]; ok && status != http.StatusUnauthorized && status != http.StatusForbidden {
		return withMessage(mapped, msg)
	}

	if in.public {
		switch status {
		case http.StatusUnauthorized:
			return withMessage(domain.ErrInvalidCredentials, msg)
		case http.StatusForbidden:
			return withMessage(domain.ErrForbidden, msg)
		}
		return &domain.RemoteError{Status: status, Message: msg}
	}

	err := c.auth.Observe(ctx, att, status)
	var re *domain.RemoteError
	if errors.As(err, &re) && re.Message == "" {
		re.Message = msg
	}
	return err
}

func errorMessage(raw []byte) string {
	var eb errorBody
	if json.Unmarshal(raw, &eb) == nil {
		if eb.Message != "" {
			return eb.Message
		}
		if eb.Error != "" {
			return eb.Error
		}
	}
	// some endpoints answer plain text
	s := strings.TrimSpace(string(raw))
	if len(s) > 200 || strings.HasPrefix(s, "{") || strings.HasPrefix(s, "<") {
		return ""
	}
	return s
}

func withMessage(err error, msg string) error {
	if msg == "" {
		return err
	}
	return fmt.Errorf("%w: %s", err, msg)
}

func escape(id string) string { return url.PathEscape(id) }

var _ ports.RemoteAPI = (*Client)(nil)
