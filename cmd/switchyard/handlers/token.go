package handlers

import (
	"fmt"
	"time"

	"github.com/imamik/switchyard/internal/api"
)

// Token prints a signed API token for subject. A zero ttl uses api.token_ttl.
func Token(opts Options, subject string, ttl time.Duration) error {
	cfg, err := loadConfig(opts.ConfigPath)
	if err != nil {
		return err
	}
	if err := cfg.RequireAPIAuth(); err != nil {
		return err
	}
	if ttl == 0 {
		ttl = cfg.API.TokenTTL
	}
	token, err := api.IssueToken([]byte(cfg.API.JWTSecret), subject, ttl)
	if err != nil {
		return fmt.Errorf("failed to issue token: %w", err)
	}
	_, err = fmt.Fprintln(stdout, token)
	return err
}
