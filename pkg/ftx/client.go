package ftx

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"ftxwidget/pkg/config"
	"ftxwidget/pkg/logger"

	"github.com/sirupsen/logrus"
)

// ErrUnauthorized is wrapped by API errors for rejected credentials.
var ErrUnauthorized = errors.New("ftx: unauthorized")

// APIError is a non-success response from the exchange.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("ftx: http %d", e.Status)
	}
	return fmt.Sprintf("ftx: http %d: %s", e.Status, e.Message)
}

func (e *APIError) Unwrap() error {
	if e.Status == http.StatusUnauthorized || e.Status == http.StatusForbidden {
		return ErrUnauthorized
	}
	return nil
}

type envelope struct {
	Success bool            `json:"success"`
	Result  json.RawMessage `json:"result"`
	Error   string          `json:"error"`
}

// Client talks to the FTX REST API.
type Client struct {
	baseURL    string
	apiKey     string
	apiSecret  string
	subaccount string
	oauth      config.OAuthConfig

	httpClient *http.Client
	now        func() time.Time
	log        *logrus.Entry
}

// NewClient creates a client from cfg. Requests without credentials are
// limited to public endpoints.
func NewClient(cfg config.Config, log *logrus.Entry) *Client {
	if log == nil {
		log = logrus.NewEntry(logger.Discard())
	}
	base := cfg.Exchange.BaseURL
	if base == "" {
		base = config.DefaultBaseURL
	}
	return &Client{
		baseURL:    strings.TrimRight(base, "/"),
		apiKey:     cfg.Exchange.APIKey,
		apiSecret:  cfg.Exchange.APISecret,
		subaccount: cfg.Exchange.Subaccount,
		oauth:      cfg.OAuth,
		httpClient: &http.Client{Timeout: cfg.RequestTimeout()},
		now:        time.Now,
		log:        log,
	}
}

// SetClock overrides the time source used for request timestamps.
func (c *Client) SetClock(now func() time.Time) {
	c.now = now
}

// HasCredentials reports whether signed endpoints can be called.
func (c *Client) HasCredentials() bool {
	return c.apiKey != "" && c.apiSecret != ""
}

// Sign returns the FTX-SIGN value for a request.
func Sign(secret, ts, method, requestURI string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(ts + method + requestURI))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body interface{}, signed bool, out interface{}) error {
	if signed && !c.HasCredentials() {
		return config.ErrNoCredentials
	}

	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode %s %s: %w", method, path, err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if signed {
		ts := strconv.FormatInt(c.now().UnixMilli(), 10)
		req.Header.Set("FTX-KEY", c.apiKey)
		req.Header.Set("FTX-TS", ts)
		req.Header.Set("FTX-SIGN", Sign(c.apiSecret, ts, method, req.URL.RequestURI(), payload))
		if c.subaccount != "" {
			req.Header.Set("FTX-SUBACCOUNT", url.PathEscape(c.subaccount))
		}
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	c.log.WithFields(logrus.Fields{
		"method":   method,
		"path":     path,
		"status":   resp.StatusCode,
		"duration": time.Since(start).String(),
	}).Debug("ftx request")

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%s %s: read body: %w", method, path, err)
	}

	var env envelope
	decodeErr := json.Unmarshal(raw, &env)
	if resp.StatusCode >= http.StatusBadRequest {
		return &APIError{Status: resp.StatusCode, Message: env.Error}
	}
	if decodeErr != nil {
		return fmt.Errorf("%s %s: decode response: %w", method, path, decodeErr)
	}
	if !env.Success {
		return &APIError{Status: resp.StatusCode, Message: env.Error}
	}
	if out == nil || len(env.Result) == 0 || string(env.Result) == "null" {
		return nil
	}
	if err := json.Unmarshal(env.Result, out); err != nil {
		return fmt.Errorf("%s %s: decode result: %w", method, path, err)
	}
	return nil
}
