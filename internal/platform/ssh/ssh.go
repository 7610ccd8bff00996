// Package ssh runs show commands on network devices over SSH.
//
// Switches authenticate with a password; IOS-XE offers it either as the
// password method or as keyboard-interactive, so both are tried. Connection
// establishment is retried because freshly onboarded switches can still be
// generating their host keys. Authentication failures are not retried.
//
// Host key verification is disabled unless HostKeyCallback is set; lab and
// freshly provisioned switches present self-generated keys.
package ssh

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"golang.org/x/crypto/ssh"

	"github.com/imamik/switchyard/internal/metrics"
	"github.com/imamik/switchyard/internal/util/retry"
)

const (
	defaultPort        = 22
	defaultDialTimeout = 10 * time.Second
	defaultAttempts    = 3
	defaultRetryDelay  = 5 * time.Second
	defaultMaxDelay    = 30 * time.Second
)

// Config holds SSH client configuration.
type Config struct {
	Host     string
	Port     int
	User     string
	Password string

	// DialTimeout bounds the TCP connect and SSH handshake.
	// If zero, defaultDialTimeout is used.
	DialTimeout time.Duration

	// Attempts is the maximum number of connection attempts.
	// If zero, defaultAttempts is used.
	Attempts int

	// RetryDelay is the initial delay between attempts.
	// If zero, defaultRetryDelay is used.
	RetryDelay time.Duration

	// HostKeyCallback handles host key verification.
	// If nil, ssh.InsecureIgnoreHostKey() is used.
	HostKeyCallback ssh.HostKeyCallback
}

// Client executes commands on one device. Each Execute opens its own
// connection.
type Client struct {
	config *Config
}

// NewClient validates cfg and applies defaults.
func NewClient(cfg *Config) (*Client, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if cfg.Host == "" {
		return nil, fmt.Errorf("config host cannot be empty")
	}
	if cfg.User == "" {
		return nil, fmt.Errorf("config user cannot be empty")
	}

	// Copy config to avoid mutating caller's struct
	configCopy := *cfg
	if configCopy.Port == 0 {
		configCopy.Port = defaultPort
	}
	if configCopy.DialTimeout == 0 {
		configCopy.DialTimeout = defaultDialTimeout
	}
	if configCopy.Attempts == 0 {
		configCopy.Attempts = defaultAttempts
	}
	if configCopy.RetryDelay == 0 {
		configCopy.RetryDelay = defaultRetryDelay
	}
	if configCopy.HostKeyCallback == nil {
		configCopy.HostKeyCallback = ssh.InsecureIgnoreHostKey() //nolint:gosec // switches present self-generated keys
	}

	return &Client{config: &configCopy}, nil
}

// Addr returns host:port of the device.
func (c *Client) Addr() string {
	return net.JoinHostPort(c.config.Host, strconv.Itoa(c.config.Port))
}

// Execute runs command and returns its combined output.
func (c *Client) Execute(ctx context.Context, command string) (string, error) {
	start := time.Now()
	defer metrics.ObserveCall("ssh", start)

	client, err := c.connect(ctx)
	if err != nil {
		return "", err
	}
	defer func() { _ = client.Close() }()

	return c.runCommand(ctx, client, command)
}

func (c *Client) clientConfig() *ssh.ClientConfig {
	password := c.config.Password
	return &ssh.ClientConfig{
		User: c.config.User,
		Auth: []ssh.AuthMethod{
			ssh.Password(password),
			ssh.KeyboardInteractive(func(_, _ string, questions []string, _ []bool) ([]string, error) {
				answers := make([]string, len(questions))
				for i := range answers {
					answers[i] = password
				}
				return answers, nil
			}),
		},
		HostKeyCallback: c.config.HostKeyCallback,
		Timeout:         c.config.DialTimeout,
	}
}

// connect establishes the SSH connection with retry logic.
func (c *Client) connect(ctx context.Context) (*ssh.Client, error) {
	config := c.clientConfig()
	addr := c.Addr()

	var client *ssh.Client
	err := retry.Do(ctx, func(ctx context.Context) error {
		var dialErr error
		client, dialErr = dial(ctx, addr, config)
		if dialErr != nil && isAuthError(dialErr) {
			return retry.Fatal(dialErr)
		}
		return dialErr
	},
		retry.WithAttempts(c.config.Attempts),
		retry.WithInitialDelay(c.config.RetryDelay),
		retry.WithMaxDelay(defaultMaxDelay),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to establish SSH connection to %s: %w", addr, err)
	}
	return client, nil
}

// dial is ssh.Dial with a cancellable TCP connect.
func dial(ctx context.Context, addr string, config *ssh.ClientConfig) (*ssh.Client, error) {
	d := net.Dialer{Timeout: config.Timeout}
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, err
	}
	if config.Timeout > 0 {
		_ = conn.SetDeadline(time.Now().Add(config.Timeout))
	}
	sshConn, chans, reqs, err := ssh.NewClientConn(conn, addr, config)
	if err != nil {
		_ = conn.Close()
		return nil, err
	}
	_ = conn.SetDeadline(time.Time{})
	return ssh.NewClient(sshConn, chans, reqs), nil
}

func isAuthError(err error) bool {
	return strings.Contains(err.Error(), "unable to authenticate")
}

// runCommand executes a command on an established SSH session. The session
// is closed when ctx is done.
func (c *Client) runCommand(ctx context.Context, client *ssh.Client, command string) (string, error) {
	session, err := client.NewSession()
	if err != nil {
		return "", fmt.Errorf("failed to create SSH session on %s: %w", c.config.Host, err)
	}
	defer func() { _ = session.Close() }()

	stop := context.AfterFunc(ctx, func() { _ = session.Close() })
	defer stop()

	output, err := session.CombinedOutput(command)
	if ctxErr := ctx.Err(); ctxErr != nil {
		return string(output), fmt.Errorf("command %q on %s: %w", command, c.config.Host, ctxErr)
	}
	if err != nil {
		var exitErr *ssh.ExitMissingError
		if errors.As(err, &exitErr) && len(output) > 0 {
			// IOS closes exec channels without an exit status.
			return string(output), nil
		}
		return string(output), fmt.Errorf("command failed on %s: %w\nCommand: %s\nOutput: %s",
			c.config.Host, err, command, string(output))
	}
	return string(output), nil
}
