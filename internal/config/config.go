package config

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"
)

// ServerConfig holds the process configuration. Values come from an
// optional JSON file with environment overrides on top.
type ServerConfig struct {
	Addr string `json:"addr"`
	// RoomTTLMinutes bounds how long a room abandoned mid-game is kept
	// for reconnection before the sweep reclaims it.
	RoomTTLMinutes int `json:"room_ttl_minutes"`
	// SweepIntervalSeconds is how often the abandoned-room sweep runs.
	SweepIntervalSeconds int `json:"sweep_interval_seconds"`
	// ResumeTokenHours is the lifetime of signed resume tokens.
	ResumeTokenHours int    `json:"resume_token_hours"`
	TokenSecret      string `json:"token_secret"`
	LogLevel         string `json:"log_level"`
}

var (
	cfg      *ServerConfig
	loadOnce sync.Once
	loadErr  error
)

func defaults() *ServerConfig {
	return &ServerConfig{
		Addr:                 ":8080",
		RoomTTLMinutes:       30,
		SweepIntervalSeconds: 60,
		ResumeTokenHours:     12,
		TokenSecret:          "dev-only-secret",
		LogLevel:             "info",
	}
}

// Load reads the config file at path (ignored when empty or missing)
// and applies environment overrides.
func Load(path string) error {
	loadOnce.Do(func() {
		c := defaults()
		if path != "" {
			data, err := os.ReadFile(path)
			if err == nil {
				if err := json.Unmarshal(data, c); err != nil {
					loadErr = fmt.Errorf("failed to unmarshal server config: %w", err)
					return
				}
			} else if !os.IsNotExist(err) {
				loadErr = fmt.Errorf("failed to read server config: %w", err)
				return
			}
		}
		applyEnv(c)
		cfg = c
	})
	return loadErr
}

func applyEnv(c *ServerConfig) {
	if v := os.Getenv("ADDR"); v != "" {
		c.Addr = v
	} else if v := os.Getenv("PORT"); v != "" {
		c.Addr = ":" + v
	}
	if v := os.Getenv("TOKEN_SECRET"); v != "" {
		c.TokenSecret = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
}

// Get returns the loaded configuration, or defaults when Load was
// never called.
func Get() *ServerConfig {
	if cfg == nil {
		return defaults()
	}
	return cfg
}

// RoomTTL returns the abandoned-room retention as a duration.
func (c *ServerConfig) RoomTTL() time.Duration {
	return time.Duration(c.RoomTTLMinutes) * time.Minute
}

// SweepInterval returns the sweep cadence as a duration.
func (c *ServerConfig) SweepInterval() time.Duration {
	return time.Duration(c.SweepIntervalSeconds) * time.Second
}

// ResumeTokenTTL returns the resume-token lifetime as a duration.
func (c *ServerConfig) ResumeTokenTTL() time.Duration {
	return time.Duration(c.ResumeTokenHours) * time.Hour
}
