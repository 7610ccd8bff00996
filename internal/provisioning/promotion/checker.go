package promotion

import (
	"context"
	"fmt"
	"time"

	"github.com/imamik/switchyard/internal/ntp"
	"github.com/imamik/switchyard/internal/platform/ssh"
)

// DefaultCommand shows the NTP association table.
const DefaultCommand = "show ntp associations"

// Runner executes one CLI command. Implemented by ssh.Client.
type Runner interface {
	Execute(ctx context.Context, command string) (string, error)
}

// Checker decides whether a device is ready for promotion. A non-nil error
// fails the device with the error text as reason.
type Checker interface {
	Check(ctx context.Context, target Target) error
}

// NTPChecker passes devices whose clock is synchronized to Peer.
type NTPChecker struct {
	Peer    string
	Command string
	// Dial opens a Runner for target; SSH with the configured timeouts when nil.
	Dial func(target Target) (Runner, error)

	DialTimeout time.Duration
	Attempts    int
	RetryDelay  time.Duration
}

// Check implements Checker.
func (c *NTPChecker) Check(ctx context.Context, target Target) error {
	dial := c.Dial
	if dial == nil {
		dial = c.dialSSH
	}
	runner, err := dial(target)
	if err != nil {
		return fmt.Errorf("failed to connect to %s: %w", target.Name, err)
	}

	command := c.Command
	if command == "" {
		command = DefaultCommand
	}
	output, err := runner.Execute(ctx, command)
	if err != nil {
		return fmt.Errorf("failed to run %q on %s: %w", command, target.Name, err)
	}

	assoc, err := ntp.ParseAssociations(output)
	if err != nil {
		return fmt.Errorf("failed to parse NTP associations on %s: %w", target.Name, err)
	}
	return c.evaluate(target.Name, assoc)
}

func (c *NTPChecker) evaluate(device string, assoc *ntp.Associations) error {
	if _, ok := assoc.Peers[c.Peer]; !ok {
		return fmt.Errorf("expected NTP peer %s not found on %s", c.Peer, device)
	}
	state := assoc.ClockState
	if state.State != ntp.StateSynchronized || state.AssociationsAddress != c.Peer {
		return fmt.Errorf("NTP peer %s is configured but not synchronized on %s (clock state %s, sys.peer %q)",
			c.Peer, device, state.State, state.AssociationsAddress)
	}
	return nil
}

func (c *NTPChecker) dialSSH(target Target) (Runner, error) {
	return ssh.NewClient(&ssh.Config{
		Host:        target.Host,
		Port:        target.Port,
		User:        target.Username,
		Password:    target.Password,
		DialTimeout: c.DialTimeout,
		Attempts:    c.Attempts,
		RetryDelay:  c.RetryDelay,
	})
}
