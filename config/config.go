package config

import (
	"encoding/json"
	"log"
	"os"
	"strconv"
)

// RateLimitConfig holds the sliding-window abuse guard parameters.
type RateLimitConfig struct {
	WindowMS         int `json:"window_ms"`
	MaxMessages      int `json:"max_messages"`
	CooldownMS       int `json:"cooldown_ms"`
	SweepIntervalSec int `json:"sweep_interval_sec"`
}

// Config holds all configurable server and game parameters.
type Config struct {
	TrackLen    int `json:"track_len"`
	HomePathLen int `json:"home_path_len"`

	TurnLimitSec      int `json:"turn_limit_sec"`
	ReconnectGraceSec int `json:"reconnect_grace_sec"`
	RoomIdleSweepSec  int `json:"room_idle_sweep_sec"`
	BotDelayMS        int `json:"bot_delay_ms"`

	MaxNameLength int `json:"max_name_length"`
	WSPort        int `json:"ws_port"`

	RateLimit RateLimitConfig `json:"rate_limit"`

	// AuthBaseURL is the JWKS issuer base URL; empty disables token
	// validation and clients play anonymously.
	AuthBaseURL string `json:"auth_base_url"`

	// DatabaseURL enables match-history persistence; empty disables it.
	DatabaseURL string `json:"-"`
}

// Defaults returns a Config with all default values.
func Defaults() *Config {
	return &Config{
		TrackLen:          52,
		HomePathLen:       5,
		TurnLimitSec:      30,
		ReconnectGraceSec: 60,
		RoomIdleSweepSec:  120,
		BotDelayMS:        600,
		MaxNameLength:     24,
		WSPort:            8080,
		RateLimit: RateLimitConfig{
			WindowMS:         10000,
			MaxMessages:      30,
			CooldownMS:       30000,
			SweepIntervalSec: 60,
		},
	}
}

// Load reads configuration from an optional config.json file, then applies
// environment variable overrides. Fields not set in either source retain
// their default values.
func Load() *Config {
	cfg := Defaults()

	if f, err := os.Open("config.json"); err == nil {
		defer f.Close()
		if err := json.NewDecoder(f).Decode(cfg); err != nil {
			log.Printf("Warning: failed to parse config.json: %v", err)
		}
	}

	overrideInt(&cfg.TrackLen, "TRACK_LEN")
	overrideInt(&cfg.HomePathLen, "HOME_PATH_LEN")
	overrideInt(&cfg.TurnLimitSec, "TURN_LIMIT_SEC")
	overrideInt(&cfg.ReconnectGraceSec, "RECONNECT_GRACE_SEC")
	overrideInt(&cfg.RoomIdleSweepSec, "ROOM_IDLE_SWEEP_SEC")
	overrideInt(&cfg.BotDelayMS, "BOT_DELAY_MS")
	overrideInt(&cfg.MaxNameLength, "MAX_NAME_LENGTH")
	overrideInt(&cfg.WSPort, "WS_PORT")
	overrideInt(&cfg.RateLimit.WindowMS, "RATE_LIMIT_WINDOW_MS")
	overrideInt(&cfg.RateLimit.MaxMessages, "RATE_LIMIT_MAX_MESSAGES")
	overrideInt(&cfg.RateLimit.CooldownMS, "RATE_LIMIT_COOLDOWN_MS")
	overrideInt(&cfg.RateLimit.SweepIntervalSec, "RATE_LIMIT_SWEEP_INTERVAL_SEC")
	overrideString(&cfg.AuthBaseURL, "AUTH_BASE_URL")
	overrideString(&cfg.DatabaseURL, "DATABASE_URL")

	return cfg
}

func overrideInt(field *int, envKey string) {
	if val := os.Getenv(envKey); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			*field = n
		} else {
			log.Printf("Warning: invalid value for %s: %q", envKey, val)
		}
	}
}

func overrideString(field *string, envKey string) {
	if val := os.Getenv(envKey); val != "" {
		*field = val
	}
}
