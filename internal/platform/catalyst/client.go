// Package catalyst queries Cisco Catalyst Center (DNA Center) Plug and Play
// for the bootstrap address of onboarding switches.
package catalyst

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/imamik/switchyard/internal/metrics"
)

var (
	// ErrAuthentication is returned by Connect when no token could be obtained.
	ErrAuthentication = errors.New("catalyst center authentication failed")
	// ErrClosed is returned by calls made after Close.
	ErrClosed = errors.New("catalyst center session closed")
)

// ClientAddressHeader is the PnP HTTP header carrying the device's address.
const ClientAddressHeader = "clientAddress"

// Config holds the controller connection settings.
type Config struct {
	Host     string
	Username string
	Password string
	// Insecure disables TLS certificate verification.
	Insecure bool
	Timeout  time.Duration
}

// Client is an authenticated Catalyst Center session.
type Client struct {
	host       string
	httpClient *http.Client

	mu    sync.Mutex
	token string
}

// Connect exchanges the credentials for an API token.
func Connect(ctx context.Context, cfg Config) (*Client, error) {
	if cfg.Host == "" {
		return nil, fmt.Errorf("%w: host is required", ErrAuthentication)
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	if cfg.Insecure {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec // lab controllers use self-signed certificates
	}
	c := &Client{
		host:       cfg.Host,
		httpClient: &http.Client{Transport: transport, Timeout: cfg.Timeout},
	}

	token, err := c.authenticate(ctx, cfg.Username, cfg.Password)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAuthentication, err)
	}
	c.token = token
	return c, nil
}

func (c *Client) authenticate(ctx context.Context, username, password string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		fmt.Sprintf("https://%s/dna/system/api/v1/auth/token", c.host), nil)
	if err != nil {
		return "", err
	}
	req.SetBasicAuth(username, password)
	req.Header.Set("Content-Type", "application/json")

	var out struct {
		Token string `json:"Token"`
	}
	if err := c.do(req, &out); err != nil {
		return "", err
	}
	if out.Token == "" {
		return "", errors.New("response did not contain a token")
	}
	return out.Token, nil
}

type pnpDevice struct {
	DeviceInfo struct {
		SerialNumber string `json:"serialNumber"`
		HTTPHeaders  []struct {
			Key   string `json:"key"`
			Value string `json:"value"`
		} `json:"httpHeaders"`
	} `json:"deviceInfo"`
}

// DeviceIP returns the address the device with serial reported during PnP.
// It returns "" when the controller does not know the serial yet.
func (c *Client) DeviceIP(ctx context.Context, serial string) (string, error) {
	c.mu.Lock()
	token := c.token
	c.mu.Unlock()
	if token == "" {
		return "", ErrClosed
	}

	q := url.Values{}
	q.Set("serialNumber", serial)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		fmt.Sprintf("https://%s/dna/intent/api/v1/onboarding/pnp-device?%s", c.host, q.Encode()), nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("x-auth-token", token)

	var devices []pnpDevice
	if err := c.do(req, &devices); err != nil {
		return "", fmt.Errorf("pnp lookup for %s: %w", serial, err)
	}
	if len(devices) == 0 {
		return "", nil
	}

	var first string
	for _, h := range devices[0].DeviceInfo.HTTPHeaders {
		if h.Value == "" {
			continue
		}
		if strings.EqualFold(h.Key, ClientAddressHeader) {
			return h.Value, nil
		}
		if first == "" {
			first = h.Value
		}
	}
	return first, nil
}

// Close forgets the token. Catalyst Center has no logout endpoint; tokens
// expire on the controller after an hour.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = ""
	return nil
}

func (c *Client) do(req *http.Request, out any) error {
	start := time.Now()
	resp, err := c.httpClient.Do(req)
	metrics.ObserveCall("catalyst", start)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("API error (status %d): %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("parse response: %w", err)
	}
	return nil
}
