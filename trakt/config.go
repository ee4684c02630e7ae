package trakt

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/madari-app/madari/constant"
	"github.com/madari-app/madari/filesystem"
	"github.com/madari-app/madari/log"
	"github.com/madari-app/madari/where"
	"github.com/zalando/go-keyring"
)

// Keyring entry names for token mirroring.
const (
	keyringAccessToken  = "trakt-access-token"
	keyringRefreshToken = "trakt-refresh-token"
)

// Config is the locally persisted tracking-service state.
type Config struct {
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"client_secret"`
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresAt    int64  `json:"expires_at"`
	Enabled      bool   `json:"enabled"`

	SyncWatchlist bool `json:"sync_watchlist"`
	SyncHistory   bool `json:"sync_history"`
	SyncProgress  bool `json:"sync_progress"`

	Username  *string `json:"username,omitempty"`
	AvatarURL *string `json:"avatar_url,omitempty"`
}

// IsConfigured reports whether API credentials are present.
func (c *Config) IsConfigured() bool {
	return c.ClientID != "" && c.ClientSecret != ""
}

// IsAuthenticated reports whether a user token has been obtained.
func (c *Config) IsAuthenticated() bool {
	return c.AccessToken != "" && c.ExpiresAt > 0
}

// IsTokenExpired reports whether the access token needs refreshing.
func (c *Config) IsTokenExpired() bool {
	return time.Now().Unix() >= c.ExpiresAt
}

// loadConfig reads trakt.json. A missing file yields a zero config. Tokens
// stored in the system keyring take precedence over the JSON copy, which
// remains the fallback for platforms without a keyring daemon.
func loadConfig() Config {
	var cfg Config

	data, err := filesystem.API().ReadFile(where.Trakt())
	if err == nil {
		if err := json.Unmarshal(data, &cfg); err != nil {
			log.Warnf("trakt config is malformed, starting empty: %v", err)
			cfg = Config{}
		}
	}

	if token, err := keyring.Get(constant.Madari, keyringAccessToken); err == nil && token != "" {
		cfg.AccessToken = token
	}
	if token, err := keyring.Get(constant.Madari, keyringRefreshToken); err == nil && token != "" {
		cfg.RefreshToken = token
	}

	return cfg
}

// saveConfig persists trakt.json and mirrors the tokens to the keyring.
func saveConfig(cfg Config) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("encode trakt config: %w", err)
	}
	if err := filesystem.API().WriteFile(where.Trakt(), data, 0600); err != nil {
		return fmt.Errorf("write trakt config: %w", err)
	}

	// Keyring mirroring is best-effort: headless systems may not have one.
	if cfg.AccessToken != "" {
		if err := keyring.Set(constant.Madari, keyringAccessToken, cfg.AccessToken); err != nil {
			log.Debugf("keyring mirror failed: %v", err)
		}
	} else {
		_ = keyring.Delete(constant.Madari, keyringAccessToken)
	}
	if cfg.RefreshToken != "" {
		if err := keyring.Set(constant.Madari, keyringRefreshToken, cfg.RefreshToken); err != nil {
			log.Debugf("keyring mirror failed: %v", err)
		}
	} else {
		_ = keyring.Delete(constant.Madari, keyringRefreshToken)
	}

	return nil
}
