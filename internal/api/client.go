// Package api is the HTTP client for the telemetry resource API.
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
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/arin-jaff/peach-data-tool/internal/model"
)

const defaultTimeout = 30 * time.Second

// StatusError is returned for non-2xx responses.
type StatusError struct {
	Op     string
	Status int
	Detail string
}

func (e *StatusError) Error() string {
	msg := fmt.Sprintf("%s: API error: %d", e.Op, e.Status)
	if e.Detail != "" {
		msg += " (" + e.Detail + ")"
	}
	return msg
}

// IsNotFound reports whether err is a 404 StatusError.
func IsNotFound(err error) bool {
	var se *StatusError
	return errors.As(err, &se) && se.Status == http.StatusNotFound
}

// Health is the health check response.
type Health struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}

// Client talks to a telemetry API rooted at BaseURL.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a client. A zero timeout uses the default.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

func (c *Client) Health(ctx context.Context) (Health, error) {
	var out Health
	err := c.do(ctx, "health check", http.MethodGet, "/api/health", nil, &out)
	return out, err
}

func (c *Client) ListSessions(ctx context.Context) ([]model.Session, error) {
	var out []model.Session
	err := c.do(ctx, "list sessions", http.MethodGet, "/api/sessions", nil, &out)
	return out, err
}

func (c *Client) GetSession(ctx context.Context, id string) (model.SessionDetail, error) {
	var out model.SessionDetail
	err := c.do(ctx, "get session", http.MethodGet, "/api/sessions/"+url.PathEscape(id), nil, &out)
	return out, err
}

// RenameSession sets a session's name and returns the updated session.
func (c *Client) RenameSession(ctx context.Context, id, name string) (model.SessionDetail, error) {
	var out model.SessionDetail
	body := map[string]string{"name": name}
	err := c.do(ctx, "rename session", http.MethodPatch, "/api/sessions/"+url.PathEscape(id), body, &out)
	return out, err
}

// DeleteSession removes a session and everything recorded under it.
func (c *Client) DeleteSession(ctx context.Context, id string) error {
	return c.do(ctx, "delete session", http.MethodDelete, "/api/sessions/"+url.PathEscape(id), nil, nil)
}

// Upload submits a telemetry file with an optional session name.
func (c *Client) Upload(ctx context.Context, filename string, r io.Reader, sessionName string) (model.UploadResult, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return model.UploadResult{}, fmt.Errorf("upload: failed to build form: %w", err)
	}
	if _, err := io.Copy(part, r); err != nil {
		return model.UploadResult{}, fmt.Errorf("upload: failed to read file: %w", err)
	}
	if sessionName != "" {
		if err := mw.WriteField("session_name", sessionName); err != nil {
			return model.UploadResult{}, fmt.Errorf("upload: failed to build form: %w", err)
		}
	}
	if err := mw.Close(); err != nil {
		return model.UploadResult{}, fmt.Errorf("upload: failed to build form: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/upload", &buf)
	if err != nil {
		return model.UploadResult{}, fmt.Errorf("upload: failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	var out model.UploadResult
	err = c.send(req, "upload", &out)
	return out, err
}

func (c *Client) GetPiece(ctx context.Context, id string) (model.Piece, error) {
	var out model.Piece
	err := c.do(ctx, "get piece", http.MethodGet, "/api/pieces/"+url.PathEscape(id), nil, &out)
	return out, err
}

func (c *Client) GetStrokes(ctx context.Context, pieceID string) ([]model.StrokeMetric, error) {
	var out []model.StrokeMetric
	err := c.do(ctx, "get strokes", http.MethodGet, "/api/pieces/"+url.PathEscape(pieceID)+"/strokes", nil, &out)
	return out, err
}

func (c *Client) GetPieceAverages(ctx context.Context, pieceID string) (model.PieceAverages, error) {
	var out model.PieceAverages
	err := c.do(ctx, "get averages", http.MethodGet, "/api/pieces/"+url.PathEscape(pieceID)+"/strokes/averages", nil, &out)
	return out, err
}

// GetPeriodic fetches intra-stroke samples. The stroke bounds are
// time_ms values and Downsample keeps every Nth sample.
func (c *Client) GetPeriodic(ctx context.Context, pieceID string, q model.PeriodicQuery) (model.PeriodicPage, error) {
	params := url.Values{}
	if q.StrokeStart != nil {
		params.Set("stroke_start", strconv.FormatInt(*q.StrokeStart, 10))
	}
	if q.StrokeEnd != nil {
		params.Set("stroke_end", strconv.FormatInt(*q.StrokeEnd, 10))
	}
	if q.Downsample > 1 {
		params.Set("downsample", strconv.Itoa(q.Downsample))
	}
	path := "/api/pieces/" + url.PathEscape(pieceID) + "/periodic"
	if len(params) > 0 {
		path += "?" + params.Encode()
	}
	var out model.PeriodicPage
	err := c.do(ctx, "get periodic data", http.MethodGet, path, nil, &out)
	return out, err
}

func (c *Client) GetForceCurve(ctx context.Context, pieceID string, strokeNumber int) (model.ForceCurve, error) {
	var out model.ForceCurve
	path := "/api/pieces/" + url.PathEscape(pieceID) + "/stroke/" + strconv.Itoa(strokeNumber) + "/force-curve"
	err := c.do(ctx, "get force curve", http.MethodGet, path, nil, &out)
	return out, err
}

func (c *Client) ListAthletes(ctx context.Context) ([]model.GlobalAthlete, error) {
	var out []model.GlobalAthlete
	err := c.do(ctx, "list athletes", http.MethodGet, "/api/athletes", nil, &out)
	return out, err
}

func (c *Client) GetAthlete(ctx context.Context, id string) (model.GlobalAthleteDetail, error) {
	var out model.GlobalAthleteDetail
	err := c.do(ctx, "get athlete", http.MethodGet, "/api/athletes/"+url.PathEscape(id), nil, &out)
	return out, err
}

func (c *Client) UpdateAthlete(ctx context.Context, id string, u model.AthleteUpdate) (model.GlobalAthlete, error) {
	var out model.GlobalAthlete
	err := c.do(ctx, "update athlete", http.MethodPatch, "/api/athletes/"+url.PathEscape(id), u, &out)
	return out, err
}

func (c *Client) GetAthleteTrends(ctx context.Context, id string) (model.AthleteTrends, error) {
	var out model.AthleteTrends
	err := c.do(ctx, "get athlete trends", http.MethodGet, "/api/athletes/"+url.PathEscape(id)+"/trends", nil, &out)
	return out, err
}

func (c *Client) do(ctx context.Context, op, method, path string, in, out interface{}) error {
	var body io.Reader = http.NoBody
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("%s: failed to encode request: %w", op, err)
		}
		body = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("%s: failed to create request: %w", op, err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	return c.send(req, op, out)
}

func (c *Client) send(req *http.Request, op string, out interface{}) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s: request failed: %w", op, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &StatusError{Op: op, Status: resp.StatusCode, Detail: readDetail(resp.Body)}
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%s: failed to decode response: %w", op, err)
	}
	return nil
}

func readDetail(r io.Reader) string {
	var payload struct {
		Detail string `json:"detail"`
	}
	data, err := io.ReadAll(io.LimitReader(r, 4096))
	if err != nil || len(data) == 0 {
		return ""
	}
	if err := json.Unmarshal(data, &payload); err == nil && payload.Detail != "" {
		return payload.Detail
	}
	return strings.TrimSpace(string(data))
}
