package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"roadmap-admin/internal/model"

	"go.uber.org/zap"
)

// Client issues one HTTP request per call against the admin REST API. It keeps no state
// between calls and never retries.
type Client struct {
	baseURL string
	http    *http.Client
	log     *zap.Logger
	timeout *time.Duration
}

type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		if h != nil {
			c.http = h
		}
	}
}

// WithTimeout bounds every request. Zero means no timeout. It applies to a copy of the
// http.Client, whichever option supplies it.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.timeout = &d
	}
}

func WithLogger(l *zap.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.log = l
		}
	}
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		http:    &http.Client{},
		log:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.timeout != nil {
		hc := *c.http
		hc.Timeout = *c.timeout
		c.http = &hc
	}
	return c
}

func (c *Client) BaseURL() string { return c.baseURL }

func (c *Client) ListRoadmaps(ctx context.Context) ([]model.Roadmap, error) {
	const op = "fetch roadmaps"
	env, err := c.do(ctx, op, http.MethodGet, "/admin/roadmaps", nil, "")
	if err != nil {
		return nil, err
	}
	if env.Roadmaps == nil {
		return []model.Roadmap{}, nil
	}
	return env.Roadmaps, nil
}

func (c *Client) CreateRoadmap(ctx context.Context, req CreateRoadmapRequest) error {
	return c.doJSON(ctx, "create roadmap", http.MethodPost, "/roadmap/create", req)
}

func (c *Client) UpdateRoadmap(ctx context.Context, req UpdateRoadmapRequest) error {
	return c.doJSON(ctx, "update roadmap", http.MethodPut, "/roadmap", req)
}

func (c *Client) DeleteRoadmap(ctx context.Context, id model.ID) error {
	return c.doJSON(ctx, "delete roadmap", http.MethodDelete, "/roadmap", deleteRoadmapRequest{RoadmapID: id})
}

func (c *Client) CreateEvent(ctx context.Context, req CreateEventRequest) error {
	const op = "create event"
	body, contentType, err := encodeEventForm(req)
	if err != nil {
		return transportErr(op, 0, err)
	}
	_, err = c.do(ctx, op, http.MethodPost, "/roadmap/event", body, contentType)
	return err
}

func (c *Client) DeleteEvent(ctx context.Context, id model.ID) error {
	return c.doJSON(ctx, "delete event", http.MethodDelete, "/roadmap/event", deleteEventRequest{EventID: id})
}

func (c *Client) ListSubmissions(ctx context.Context, q SubmissionQuery) (SubmissionPage, error) {
	const op = "fetch submissions"
	env, err := c.do(ctx, op, http.MethodGet, q.Endpoint(), nil, "")
	if err != nil {
		return SubmissionPage{}, err
	}
	page := SubmissionPage{Submissions: env.Submissions}
	if page.Submissions == nil {
		page.Submissions = []model.Submission{}
	}
	if env.Pagination != nil {
		page.Pagination = *env.Pagination
	} else {
		page.Pagination = model.Pagination{CurrentPage: q.Page, TotalPages: 1, TotalCount: len(page.Submissions)}
	}
	return page, nil
}

func (c *Client) ReviewSubmission(ctx context.Context, req ReviewRequest) error {
	return c.doJSON(ctx, "review submission", http.MethodPost, "/roadmap/review", req)
}

func (c *Client) doJSON(ctx context.Context, op, method, path string, payload any) error {
	b, err := json.Marshal(payload)
	if err != nil {
		return transportErr(op, 0, err)
	}
	_, err = c.do(ctx, op, method, path, bytes.NewReader(b), "application/json")
	return err
}

func (c *Client) do(ctx context.Context, op, method, path string, body io.Reader, contentType string) (*envelope, error) {
	start := time.Now()
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, transportErr(op, 0, err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Debug("api request failed",
			zap.String("method", method),
			zap.String("path", path),
			zap.Duration("latency", time.Since(start)),
			zap.Error(err),
		)
		return nil, transportErr(op, 0, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, transportErr(op, resp.StatusCode, err)
	}
	c.log.Debug("api request",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("latency", time.Since(start)),
	)

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, transportErr(op, resp.StatusCode, fmt.Errorf("decode response (status %d): %w", resp.StatusCode, err))
	}
	if !env.Success {
		return nil, applicationErr(op, resp.StatusCode, strings.TrimSpace(env.Error))
	}
	return &env, nil
}

func encodeEventForm(req CreateEventRequest) (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	fields := []struct{ k, v string }{
		{"roadmap_id", req.RoadmapID.String()},
		{"title", req.Title},
		{"description", req.Description},
		{"points", strconv.Itoa(req.Points)},
	}
	for _, f := range fields {
		if err := w.WriteField(f.k, f.v); err != nil {
			return nil, "", err
		}
	}

	if path := strings.TrimSpace(req.ImagePath); path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, "", fmt.Errorf("event image: %w", err)
		}
		defer f.Close()
		part, err := w.CreateFormFile("event_image", filepath.Base(path))
		if err != nil {
			return nil, "", err
		}
		if _, err := io.Copy(part, f); err != nil {
			return nil, "", fmt.Errorf("event image: %w", err)
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return &buf, w.FormDataContentType(), nil
}

// IsApplication reports whether err is a success=false answer from the server.
func IsApplication(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Kind == KindApplication
}
