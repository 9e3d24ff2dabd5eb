package device

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/oshokin/thermo-verify/internal/config"
)

// API paths exposed by the controller firmware.
const (
	AlarmConfigPath = "/api/alarm-config"
	StatusPath      = "/api/status"
	SensorsPath     = "/api/sensors"
	ResetMinMaxPath = "/api/reset-minmax"
)

// Client wraps the controller's HTTP API with convenience helpers.
type Client struct {
	// baseURL is the normalized controller base URL, without trailing slash.
	baseURL string
	// httpClient performs the actual HTTP calls.
	httpClient *http.Client
	// callTimeout is the bounded wait applied to each call.
	callTimeout time.Duration
}

// Option configures client behaviour.
type Option func(*Client)

// WithCallTimeout sets the bounded wait for individual calls.
func WithCallTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.callTimeout = timeout
		}
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		if httpClient != nil {
			c.httpClient = httpClient
		}
	}
}

var (
	// errAddressRequired is returned when a required address value is missing.
	errAddressRequired = errors.New("device address must be provided")
	// ErrNoPointsField indicates the alarm-config response lacked the points list.
	ErrNoPointsField = errors.New("no \"points\" field in response")
)

// StatusError is returned when the device answers with a non-success HTTP
// status. The raw body is preserved for diagnostics output.
type StatusError struct {
	// Code is the HTTP status code.
	Code int
	// Body is the raw response body text.
	Body string
}

// Error implements the error interface.
func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.Code, e.Body)
}

// New creates a client for the controller at the given address.
// The address may be a bare host, host:port, or a full http(s) URL.
func New(address string, opts ...Option) (*Client, error) {
	if address == "" {
		return nil, errAddressRequired
	}

	client := &Client{
		baseURL:     normalizeBaseURL(address),
		httpClient:  &http.Client{},
		callTimeout: config.DefaultTimeout,
	}

	for _, opt := range opts {
		opt(client)
	}

	return client, nil
}

// BaseURL returns the normalized controller base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// GetAlarmConfig fetches the alarm configuration for all measurement points.
// Both the decoded points and their raw field sets are returned so callers
// can check field presence without conflating absence with zero values.
func (c *Client) GetAlarmConfig(ctx context.Context) (*ConfigSnapshot, error) {
	body, err := c.get(ctx, AlarmConfigPath)
	if err != nil {
		return nil, fmt.Errorf("get alarm config: %w", err)
	}

	var envelope struct {
		Points *[]json.RawMessage `json:"points"`
	}

	if err = json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("decode alarm config: %w", err)
	}

	if envelope.Points == nil {
		return nil, ErrNoPointsField
	}

	snapshot := &ConfigSnapshot{
		Points:    make([]MeasurementPoint, 0, len(*envelope.Points)),
		RawPoints: make([]RawPoint, 0, len(*envelope.Points)),
	}

	for i, raw := range *envelope.Points {
		var point MeasurementPoint
		if err = json.Unmarshal(raw, &point); err != nil {
			return nil, fmt.Errorf("decode point %d: %w", i, err)
		}

		fields := make(RawPoint)
		if err = json.Unmarshal(raw, &fields); err != nil {
			return nil, fmt.Errorf("decode point %d fields: %w", i, err)
		}

		snapshot.Points = append(snapshot.Points, point)
		snapshot.RawPoints = append(snapshot.RawPoints, fields)
	}

	return snapshot, nil
}

// ApplyAlarmConfig posts partial point updates to the controller.
// The response body is returned raw: the device does not commit to any
// particular shape for it, so callers may only display it.
func (c *Client) ApplyAlarmConfig(ctx context.Context, changes []PointChange) (json.RawMessage, error) {
	body, err := c.post(ctx, AlarmConfigPath, ConfigChangeRequest{Changes: changes})
	if err != nil {
		return nil, fmt.Errorf("apply alarm config: %w", err)
	}

	return body, nil
}

// GetStatus fetches device identity and counters.
func (c *Client) GetStatus(ctx context.Context) (*DeviceStatus, error) {
	body, err := c.get(ctx, StatusPath)
	if err != nil {
		return nil, fmt.Errorf("get status: %w", err)
	}

	var status DeviceStatus
	if err = json.Unmarshal(body, &status); err != nil {
		return nil, fmt.Errorf("decode status: %w", err)
	}

	return &status, nil
}

// GetSensors fetches the sensor inventory with binding information.
func (c *Client) GetSensors(ctx context.Context) ([]SensorInfo, error) {
	body, err := c.get(ctx, SensorsPath)
	if err != nil {
		return nil, fmt.Errorf("get sensors: %w", err)
	}

	var envelope struct {
		Sensors []SensorInfo `json:"sensors"`
	}

	if err = json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("decode sensors: %w", err)
	}

	return envelope.Sensors, nil
}

// ResetMinMax clears the recorded min/max temperatures on every point.
// The device answers with plain text, which is discarded.
func (c *Client) ResetMinMax(ctx context.Context) error {
	if _, err := c.post(ctx, ResetMinMaxPath, nil); err != nil {
		return fmt.Errorf("reset min/max: %w", err)
	}

	return nil
}

// get issues a bounded-wait GET and returns the body of a 200 response.
func (c *Client) get(ctx context.Context, path string) ([]byte, error) {
	callCtx, cancel := c.callContext(ctx)
	defer cancel()

	request, err := http.NewRequestWithContext(callCtx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, err
	}

	return c.do(request)
}

// post issues a bounded-wait POST with an optional JSON payload
// and returns the body of a 200 response.
func (c *Client) post(ctx context.Context, path string, payload any) ([]byte, error) {
	callCtx, cancel := c.callContext(ctx)
	defer cancel()

	var body io.Reader

	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}

		body = bytes.NewReader(encoded)
	}

	request, err := http.NewRequestWithContext(callCtx, http.MethodPost, c.baseURL+path, body)
	if err != nil {
		return nil, err
	}

	if payload != nil {
		request.Header.Set("Content-Type", "application/json")
	}

	return c.do(request)
}

// do executes the request, reads the whole body, and converts non-success
// statuses into a StatusError carrying the raw body text.
func (c *Client) do(request *http.Request) ([]byte, error) {
	response, err := c.httpClient.Do(request)
	if err != nil {
		return nil, err
	}

	defer func() {
		_ = response.Body.Close()
	}()

	body, err := io.ReadAll(response.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if response.StatusCode != http.StatusOK {
		return nil, &StatusError{Code: response.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	return body, nil
}

// callContext returns a context with the client's bounded wait if configured,
// otherwise a cancellable child context without a deadline.
func (c *Client) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.callTimeout <= 0 {
		return context.WithCancel(ctx)
	}

	return context.WithTimeout(ctx, c.callTimeout)
}

// normalizeBaseURL turns a bare host or host:port into an http URL
// and strips any trailing slash.
func normalizeBaseURL(address string) string {
	if !strings.Contains(address, "://") {
		address = "http://" + address
	}

	return strings.TrimRight(address, "/")
}
