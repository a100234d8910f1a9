// Package client is the non-browser counterpart of the camp's registration
// SPA: a session manager, the multi-step registration workflow and the card
// capture adapter, all speaking to the REST API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/fastbreakhq/fastbreak/core/guardian"
	"github.com/fastbreakhq/fastbreak/core/payment"
	"github.com/fastbreakhq/fastbreak/core/player"
	"github.com/fastbreakhq/fastbreak/core/season"
)

// APIError is a non-2xx backend response.
type APIError struct {
	StatusCode int
	Message    string
	Fields     map[string]string // per-field validation errors, when present
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("api: %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("api: %d: %v", e.StatusCode, e.Fields)
}

// Client is a minimal JSON client for the camp API.
type Client struct {
	baseURL string
	http    *http.Client

	mutex sync.RWMutex
	token string
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

// SetToken installs the bearer token used on authenticated calls.
func (c *Client) SetToken(token string) {
	c.mutex.Lock()
	c.token = token
	c.mutex.Unlock()
}

func (c *Client) bearer() string {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return c.token
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return errors.Wrap(err, "encoding request")
		}
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return errors.Wrap(err, "building request")
	}
	req.Header.Set("Content-Type", "application/json")
	if token := c.bearer(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	res, err := c.http.Do(req)
	if err != nil {
		return errors.Wrap(err, "submitting request")
	}
	defer func() { _ = res.Body.Close() }()

	if res.StatusCode >= http.StatusBadRequest {
		return decodeAPIError(res)
	}
	if out == nil {
		return nil
	}
	return errors.Wrap(json.NewDecoder(res.Body).Decode(out), "decoding response")
}

func decodeAPIError(res *http.Response) error {
	apiErr := &APIError{StatusCode: res.StatusCode}

	var raw map[string]interface{}
	if err := json.NewDecoder(res.Body).Decode(&raw); err != nil {
		apiErr.Message = http.StatusText(res.StatusCode)
		return apiErr
	}
	if msg, ok := raw["message"].(string); ok {
		apiErr.Message = msg
		return apiErr
	}
	if msg, ok := raw["error"].(string); ok {
		apiErr.Message = msg
		return apiErr
	}
	// a bare object is a field-error map
	fields := make(map[string]string, len(raw))
	for k, v := range raw {
		if s, ok := v.(string); ok {
			fields[k] = s
		}
	}
	apiErr.Fields = fields
	return apiErr
}

// API payloads mirroring the server's request/response shapes.
type (
	LoginResult struct {
		Token      string `json:"token"`
		GuardianID string `json:"parentId"`
	}

	RegisterResult struct {
		Token    string            `json:"token"`
		Guardian guardian.Guardian `json:"parent"`
	}

	RegisterPlayersRequest struct {
		Season  season.Season      `json:"season"`
		Year    int                `json:"year"`
		Players []player.NewPlayer `json:"players"`
	}

	UpdateSeasonsRequest struct {
		PlayerIDs   []string      `json:"playerIds"`
		Season      season.Season `json:"season"`
		Year        int           `json:"year"`
		PackageType string        `json:"packageType,omitempty"`
	}
)

func (c *Client) Login(ctx context.Context, email, password string) (LoginResult, error) {
	var out LoginResult
	err := c.do(ctx, http.MethodPost, "/v1/login", guardian.Login{Email: email, Password: password}, &out)
	if err == nil {
		c.SetToken(out.Token)
	}
	return out, err
}

func (c *Client) Register(ctx context.Context, ng guardian.NewGuardian) (RegisterResult, error) {
	var out RegisterResult
	err := c.do(ctx, http.MethodPost, "/v1/register", ng, &out)
	if err == nil {
		c.SetToken(out.Token)
	}
	return out, err
}

func (c *Client) RefreshToken(ctx context.Context) (string, error) {
	var out LoginResult
	if err := c.do(ctx, http.MethodPost, "/v1/guardians/token-refresh", nil, &out); err != nil {
		return "", err
	}
	c.SetToken(out.Token)
	return out.Token, nil
}

func (c *Client) Guardian(ctx context.Context, id string) (guardian.Guardian, error) {
	var out guardian.Guardian
	err := c.do(ctx, http.MethodGet, "/v1/guardians/"+id, nil, &out)
	return out, err
}

func (c *Client) UpdateGuardian(ctx context.Context, id string, ug guardian.UpdateGuardian) (guardian.Guardian, error) {
	var out guardian.Guardian
	err := c.do(ctx, http.MethodPut, "/v1/guardians/"+id, ug, &out)
	return out, err
}

// Players returns the signed-in account's roster.
func (c *Client) Players(ctx context.Context) ([]player.Player, error) {
	var out []player.Player
	err := c.do(ctx, http.MethodGet, "/v1/players", nil, &out)
	return out, err
}

func (c *Client) RegisterPlayers(ctx context.Context, req RegisterPlayersRequest) ([]player.Player, error) {
	var out []player.Player
	err := c.do(ctx, http.MethodPost, "/v1/players/register", req, &out)
	return out, err
}

func (c *Client) UpdateSeasons(ctx context.Context, req UpdateSeasonsRequest) ([]player.Player, error) {
	var out []player.Player
	err := c.do(ctx, http.MethodPost, "/v1/players/update-seasons", req, &out)
	return out, err
}

func (c *Client) CapturePayment(ctx context.Context, cp payment.CapturePayment) (payment.Record, error) {
	var out payment.Record
	err := c.do(ctx, http.MethodPost, "/v1/payments/square", cp, &out)
	return out, err
}
