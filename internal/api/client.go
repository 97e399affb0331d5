// Package api implements the HTTP client for the UReserve service.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"

	"ureserve/internal/metrics"
	"ureserve/internal/models"
	"ureserve/internal/session"
)

// Client is an HTTP client for the UReserve reservation API.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	limiter    *rate.Limiter

	redis    *redis.Client
	cacheTTL time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout overrides the default request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

// WithRateLimit caps outbound requests per second.
func WithRateLimit(perSec float64, burst int) Option {
	return func(c *Client) {
		c.limiter = rate.NewLimiter(rate.Limit(perSec), burst)
	}
}

// NewClient constructs a client for the given base URL and API key.
func NewClient(baseURL, apiKey string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// UseRedisCache configures optional Redis caching for GET endpoints.
func (c *Client) UseRedisCache(redisClient *redis.Client, ttl time.Duration) {
	c.redis = redisClient
	c.cacheTTL = ttl
}

// LoginRequest is the request body for POST /api/login.
type LoginRequest struct {
	Email    string `json:"correo"`
	Password string `json:"contrasena"`
}

type loginResponse struct {
	Token     string `json:"token"`
	StudentID string `json:"matricula"`
	Name      string `json:"nombre"`
	Error     string `json:"error,omitempty"`
}

// Login authenticates the student and returns a session for later calls.
func (c *Client) Login(ctx context.Context, email, password string) (session.Session, error) {
	var resp loginResponse
	err := c.doPost(ctx, c.baseURL+"/api/login", LoginRequest{Email: email, Password: password}, &resp, "")
	c.count("login", err)
	if err != nil {
		return session.Session{}, fmt.Errorf("login: %w", err)
	}
	if resp.Token == "" {
		if resp.Error != "" {
			return session.Session{}, fmt.Errorf("login rejected: %s", resp.Error)
		}
		return session.Session{}, fmt.Errorf("login: empty token in response")
	}
	return session.Session{
		Token:     resp.Token,
		StudentID: resp.StudentID,
		Name:      resp.Name,
		Email:     email,
		IssuedAt:  time.Now(),
	}, nil
}

// ListReservations fetches the student's reservations. Date and time
// fields come back as raw strings; the window package interprets them.
func (c *Client) ListReservations(ctx context.Context, sess session.Session) ([]models.Reservation, error) {
	endpoint := fmt.Sprintf("%s/api/reservas?matricula=%s", c.baseURL, url.QueryEscape(sess.StudentID))
	cacheKey := "reservas:" + sess.StudentID

	var wrap struct {
		Reservations []models.Reservation `json:"reservas"`
	}
	if c.readCache(ctx, cacheKey, &wrap) {
		return wrap.Reservations, nil
	}

	err := c.doGet(ctx, endpoint, &wrap, sess.Token)
	c.count("list_reservations", err)
	if err != nil {
		return nil, err
	}
	c.writeCache(ctx, cacheKey, wrap)
	return wrap.Reservations, nil
}

// ListCubicles returns the study cubicles.
func (c *Client) ListCubicles(ctx context.Context, sess session.Session) ([]models.Cubicle, error) {
	var wrap struct {
		Cubicles []models.Cubicle `json:"cubiculos"`
	}
	err := c.getCached(ctx, "/api/cubiculos", "cubiculos", &wrap, sess.Token)
	c.count("list_cubicles", err)
	if err != nil {
		return nil, err
	}
	return wrap.Cubicles, nil
}

// ListLaboratories returns the bookable laboratories.
func (c *Client) ListLaboratories(ctx context.Context, sess session.Session) ([]models.Laboratory, error) {
	var wrap struct {
		Laboratories []models.Laboratory `json:"laboratorios"`
	}
	err := c.getCached(ctx, "/api/laboratorios", "laboratorios", &wrap, sess.Token)
	c.count("list_laboratories", err)
	if err != nil {
		return nil, err
	}
	return wrap.Laboratories, nil
}

// ListProjectors returns the bookable projectors.
func (c *Client) ListProjectors(ctx context.Context, sess session.Session) ([]models.Projector, error) {
	var wrap struct {
		Projectors []models.Projector `json:"proyectores"`
	}
	err := c.getCached(ctx, "/api/proyectores", "proyectores", &wrap, sess.Token)
	c.count("list_projectors", err)
	if err != nil {
		return nil, err
	}
	return wrap.Projectors, nil
}

// ListRestaurantSpaces returns the restaurant and meeting spaces.
func (c *Client) ListRestaurantSpaces(ctx context.Context, sess session.Session) ([]models.RestaurantSpace, error) {
	var wrap struct {
		Spaces []models.RestaurantSpace `json:"espacios"`
	}
	err := c.getCached(ctx, "/api/espacios", "espacios", &wrap, sess.Token)
	c.count("list_spaces", err)
	if err != nil {
		return nil, err
	}
	return wrap.Spaces, nil
}

// CreateReservationRequest is the request body for POST /api/reservas.
type CreateReservationRequest struct {
	RequestID  string          `json:"request_id"`
	Type       models.TypeCode `json:"tipo"`
	FacilityID int64           `json:"recurso_id"`
	Date       string          `json:"fecha"`
	StartTime  string          `json:"hora_inicio"`
	EndTime    string          `json:"hora_fin"`
	StudentID  string          `json:"matricula"`
}

// CreateReservationResponse is the response from POST /api/reservas.
type CreateReservationResponse struct {
	Success bool   `json:"success"`
	Code    string `json:"codigo,omitempty"`
	Error   string `json:"error,omitempty"`
}

// CreateReservation creates a reservation. The request carries a
// client-generated ID so a retried POST is not booked twice.
func (c *Client) CreateReservation(ctx context.Context, sess session.Session, req CreateReservationRequest) (*CreateReservationResponse, error) {
	if req.RequestID == "" {
		req.RequestID = uuid.NewString()
	}
	if req.StudentID == "" {
		req.StudentID = sess.StudentID
	}

	var resp CreateReservationResponse
	err := c.doPost(ctx, c.baseURL+"/api/reservas", req, &resp, sess.Token)
	c.count("create_reservation", err)
	if err != nil {
		return nil, err
	}
	if resp.Success {
		metrics.IncReservationCreated(string(req.Type))
		c.invalidate(ctx, "reservas:"+req.StudentID)
	}
	return &resp, nil
}

// CancelReservation cancels a reservation by code.
func (c *Client) CancelReservation(ctx context.Context, sess session.Session, code string) error {
	endpoint := fmt.Sprintf("%s/api/reservas/%s", c.baseURL, url.PathEscape(code))
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, endpoint, http.NoBody)
	if err != nil {
		return err
	}
	c.addHeaders(req, sess.Token)
	err = c.do(ctx, req, nil)
	c.count("cancel_reservation", err)
	if err != nil {
		return err
	}
	c.invalidate(ctx, "reservas:"+sess.StudentID)
	return nil
}

// HealthCheck checks if the reservation API is reachable.
func (c *Client) HealthCheck(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/healthz", http.NoBody)
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check failed: %d", resp.StatusCode)
	}
	return nil
}

func (c *Client) getCached(ctx context.Context, path, cacheKey string, out any, token string) error {
	if c.readCache(ctx, cacheKey, out) {
		return nil
	}
	if err := c.doGet(ctx, c.baseURL+path, out, token); err != nil {
		return err
	}
	c.writeCache(ctx, cacheKey, out)
	return nil
}

func (c *Client) readCache(ctx context.Context, key string, out any) bool {
	if c.redis == nil || c.cacheTTL <= 0 {
		return false
	}
	val, err := c.redis.Get(ctx, key).Result()
	if err != nil {
		return false
	}
	if err := json.Unmarshal([]byte(val), out); err != nil {
		return false
	}
	return true
}

func (c *Client) writeCache(ctx context.Context, key string, val any) {
	if c.redis == nil || c.cacheTTL <= 0 {
		return
	}
	data, err := json.Marshal(val)
	if err != nil {
		return
	}
	_ = c.redis.Set(ctx, key, data, c.cacheTTL).Err()
}

func (c *Client) invalidate(ctx context.Context, key string) {
	if c.redis == nil {
		return
	}
	_ = c.redis.Del(ctx, key).Err()
}

func (c *Client) doGet(ctx context.Context, endpoint string, out any, token string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, http.NoBody)
	if err != nil {
		return err
	}
	c.addHeaders(req, token)
	return c.do(ctx, req, out)
}

func (c *Client) doPost(ctx context.Context, endpoint string, body, out any, token string) error {
	data, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(string(data)))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	c.addHeaders(req, token)
	return c.do(ctx, req, out)
}

func (c *Client) do(ctx context.Context, req *http.Request, out any) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return fmt.Errorf("unauthorized: session token rejected")
	}
	if resp.StatusCode >= 300 {
		return fmt.Errorf("http %d", resp.StatusCode)
	}
	if out == nil {
		return nil
	}
	dec := json.NewDecoder(resp.Body)
	return dec.Decode(out)
}

func (c *Client) addHeaders(req *http.Request, token string) {
	if c.apiKey != "" {
		req.Header.Set("x-api-key", c.apiKey)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
}

func (c *Client) count(endpoint string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	metrics.IncAPIRequest(endpoint, outcome)
}
