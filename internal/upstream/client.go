package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/tunaskarier/portal-api/config"
	"github.com/tunaskarier/portal-api/internal/models"
	apperrors "github.com/tunaskarier/portal-api/pkg/errors"
	"github.com/tunaskarier/portal-api/pkg/httpclient"
	"github.com/tunaskarier/portal-api/pkg/logger"
	"github.com/tunaskarier/portal-api/pkg/metrics"
	"go.uber.org/zap"
)

// maxResponseBody caps upstream response reads.
const maxResponseBody = 10 * 1024 * 1024

// Client talks to the TunasKarier REST backend. All authenticated calls
// attach the session's bearer token; mentor-scoped calls run under the
// tighter mentor timeout from config.
type Client struct {
	httpClient     httpclient.Client
	baseURL        string
	defaultTimeout time.Duration
	mentorTimeout  time.Duration
}

// AuthResult is the outcome of a successful upstream login.
type AuthResult struct {
	Token     string
	UserID    string
	StudentID string
	Role      models.Role
}

// NewClient creates an upstream API client from config.
func NewClient(cfg config.UpstreamConfig, httpClient httpclient.Client) *Client {
	return &Client{
		httpClient:     httpClient,
		baseURL:        cfg.BaseURL,
		defaultTimeout: time.Duration(cfg.TimeoutSeconds) * time.Second,
		mentorTimeout:  time.Duration(cfg.MentorTimeoutSeconds) * time.Second,
	}
}

// loginEnvelope mirrors the upstream auth response:
// { data: { accessToken, user: { id, role, student_id } } }.
type loginEnvelope struct {
	Data struct {
		AccessToken string `json:"accessToken"`
		User        struct {
			ID        json.RawMessage `json:"id"`
			Role      string          `json:"role"`
			StudentID json.RawMessage `json:"student_id"`
		} `json:"user"`
	} `json:"data"`
}

// flexibleID accepts identifiers sent either as JSON strings or numbers.
// The backend is not consistent about which one it uses.
func flexibleID(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String()
	}
	return ""
}

// Login authenticates against the upstream backend.
func (c *Client) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	payload := map[string]string{"email": email, "password": password}

	body, err := c.do(ctx, http.MethodPost, "/auth/login", "", payload, c.defaultTimeout, "login")
	if err != nil {
		return nil, err
	}

	var envelope loginEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, apperrors.InternalError("malformed login response")
	}

	result := &AuthResult{
		Token:     envelope.Data.AccessToken,
		UserID:    flexibleID(envelope.Data.User.ID),
		StudentID: flexibleID(envelope.Data.User.StudentID),
		Role:      models.Role(envelope.Data.User.Role),
	}
	if result.StudentID == "" && result.Role == models.RoleStudent {
		return nil, apperrors.InternalError("login response missing student id")
	}
	if result.Token == "" || result.UserID == "" || !result.Role.IsValid() {
		return nil, apperrors.InternalError("incomplete login response")
	}

	return result, nil
}

// RegisterStudent proxies student self-registration.
func (c *Client) RegisterStudent(ctx context.Context, req *models.RegisterStudentRequest) error {
	_, err := c.do(ctx, http.MethodPost, "/auth/register", "", req, c.defaultTimeout, "register_student")
	return err
}

// List fetches one page of a collection. A malformed data field is
// coerced to an empty list rather than failing the whole page, and every
// record's identifier is normalized to "id".
func (c *Client) List(ctx context.Context, token, resourcePath string, mentorScoped bool, page, limit int) (*models.Page, error) {
	path := fmt.Sprintf("%s?page=%s&limit=%s", resourcePath,
		url.QueryEscape(strconv.Itoa(page)), url.QueryEscape(strconv.Itoa(limit)))

	operation := "list_" + trimPath(resourcePath)
	body, err := c.do(ctx, http.MethodGet, path, token, nil, c.timeoutFor(mentorScoped), operation)
	if err != nil {
		return nil, err
	}

	var envelope models.ListEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, apperrors.InternalError("malformed list response")
	}

	var items []models.Record
	if err := json.Unmarshal(envelope.Data, &items); err != nil || items == nil {
		if len(envelope.Data) > 0 && string(envelope.Data) != "null" {
			logger.Warn("Upstream list data is not an array, coercing to empty",
				zap.String("resource", resourcePath))
		}
		items = []models.Record{}
	}
	for _, item := range items {
		item.NormalizeID()
	}

	return &models.Page{
		Items:      items,
		Total:      envelope.Pagination.Total,
		TotalPages: envelope.Pagination.TotalPages,
		Page:       envelope.Pagination.Page,
		Limit:      envelope.Pagination.Limit,
	}, nil
}

// Get fetches a single record by id.
func (c *Client) Get(ctx context.Context, token, resourcePath string, mentorScoped bool, id string) (models.Record, error) {
	operation := "get_" + trimPath(resourcePath)
	body, err := c.do(ctx, http.MethodGet, resourcePath+"/"+url.PathEscape(id), token, nil, c.timeoutFor(mentorScoped), operation)
	if err != nil {
		return nil, err
	}
	return decodeRecord(body)
}

// Create posts a new record.
func (c *Client) Create(ctx context.Context, token, resourcePath string, mentorScoped bool, payload models.Record) (models.Record, error) {
	operation := "create_" + trimPath(resourcePath)
	body, err := c.do(ctx, http.MethodPost, resourcePath, token, payload, c.timeoutFor(mentorScoped), operation)
	if err != nil {
		return nil, err
	}
	return decodeRecord(body)
}

// Update replaces a record by id.
func (c *Client) Update(ctx context.Context, token, resourcePath string, mentorScoped bool, id string, payload models.Record) (models.Record, error) {
	operation := "update_" + trimPath(resourcePath)
	body, err := c.do(ctx, http.MethodPut, resourcePath+"/"+url.PathEscape(id), token, payload, c.timeoutFor(mentorScoped), operation)
	if err != nil {
		return nil, err
	}
	return decodeRecord(body)
}

// Delete removes a record by id.
func (c *Client) Delete(ctx context.Context, token, resourcePath string, mentorScoped bool, id string) error {
	operation := "delete_" + trimPath(resourcePath)
	_, err := c.do(ctx, http.MethodDelete, resourcePath+"/"+url.PathEscape(id), token, nil, c.timeoutFor(mentorScoped), operation)
	return err
}

// GetProfile fetches the authenticated user's profile.
func (c *Client) GetProfile(ctx context.Context, token string) (models.Record, error) {
	body, err := c.do(ctx, http.MethodGet, "/profile", token, nil, c.defaultTimeout, "get_profile")
	if err != nil {
		return nil, err
	}
	return decodeRecord(body)
}

// UpdateProfile updates the authenticated user's profile.
func (c *Client) UpdateProfile(ctx context.Context, token string, payload models.Record) (models.Record, error) {
	body, err := c.do(ctx, http.MethodPut, "/profile", token, payload, c.defaultTimeout, "update_profile")
	if err != nil {
		return nil, err
	}
	return decodeRecord(body)
}

// UpdatePassword changes the authenticated user's password.
func (c *Client) UpdatePassword(ctx context.Context, token string, req *models.UpdatePasswordRequest) error {
	_, err := c.do(ctx, http.MethodPut, "/profile/password", token, req, c.defaultTimeout, "update_password")
	return err
}

func (c *Client) timeoutFor(mentorScoped bool) time.Duration {
	if mentorScoped {
		return c.mentorTimeout
	}
	return c.defaultTimeout
}

// do executes one upstream call and returns the raw response body.
// Non-2xx responses become *apperrors.UpstreamError; transport failures
// map to ErrTimeout or ErrUnavailable.
func (c *Client) do(ctx context.Context, method, path, token string, payload any, timeout time.Duration, operation string) ([]byte, error) {
	start := time.Now()

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var reqBody io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return nil, apperrors.InternalError("failed to encode request body")
		}
		reqBody = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return nil, apperrors.InternalError("failed to build upstream request")
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		duration := metrics.MeasureDuration(start)
		metrics.UpstreamRequestTotal.WithLabelValues(operation, "error").Inc()
		metrics.UpstreamRequestDuration.WithLabelValues(operation, "error").Observe(duration)
		logger.LogUpstreamCall(operation, "error", duration, zap.Error(err))
		return nil, mapTransportError(err)
	}
	defer resp.Body.Close() //nolint:errcheck

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return nil, mapTransportError(err)
	}

	duration := metrics.MeasureDuration(start)
	status := "success"
	if resp.StatusCode >= 400 {
		status = "error"
	}
	metrics.UpstreamRequestTotal.WithLabelValues(operation, status).Inc()
	metrics.UpstreamRequestDuration.WithLabelValues(operation, status).Observe(duration)
	logger.LogUpstreamCall(operation, status, duration,
		zap.Int("status_code", resp.StatusCode))

	if resp.StatusCode >= 400 {
		return nil, decodeError(resp.StatusCode, body)
	}

	return body, nil
}

// mapTransportError distinguishes timeouts from other transport failures
// so the user sees a dedicated timed-out message.
func mapTransportError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("upstream call: %w", apperrors.ErrTimeout)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return fmt.Errorf("upstream call: %w", apperrors.ErrTimeout)
	}
	return fmt.Errorf("upstream call: %w", apperrors.ErrUnavailable)
}

func decodeError(statusCode int, body []byte) error {
	var envelope models.ErrorEnvelope
	// A non-JSON error body still produces a typed error with the status.
	_ = json.Unmarshal(body, &envelope) //nolint:errcheck
	return &apperrors.UpstreamError{
		StatusCode: statusCode,
		Message:    envelope.Message,
		Errors:     envelope.Errors,
	}
}

func decodeRecord(body []byte) (models.Record, error) {
	var envelope models.ItemEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, apperrors.InternalError("malformed upstream response")
	}

	record := models.Record{}
	if len(envelope.Data) > 0 {
		if err := json.Unmarshal(envelope.Data, &record); err != nil {
			// Defensive: a non-object data field yields an empty record.
			record = models.Record{}
		}
	}
	record.NormalizeID()
	return record, nil
}

func trimPath(resourcePath string) string {
	for len(resourcePath) > 0 && resourcePath[0] == '/' {
		resourcePath = resourcePath[1:]
	}
	return resourcePath
}
