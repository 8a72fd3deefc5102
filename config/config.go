// Package config reads storefront settings from the environment.
package config

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Dismissal selects when the order confirmation is dismissed after a
// successful checkout.
type Dismissal string

const (
	// DismissImmediate resets progress and clears the order result as soon
	// as the order succeeds.
	DismissImmediate Dismissal = "immediate"
	// DismissDelayed keeps the confirmation visible for DismissDelay.
	DismissDelayed Dismissal = "delayed"
	// DismissManual keeps the confirmation until the user dismisses it.
	DismissManual Dismissal = "manual"
)

func ParseDismissal(s string) (Dismissal, error) {
	switch d := Dismissal(strings.ToLower(strings.TrimSpace(s))); d {
	case "":
		return DismissImmediate, nil
	case DismissImmediate, DismissDelayed, DismissManual:
		return d, nil
	default:
		return "", fmt.Errorf("unknown confirmation dismissal %q", s)
	}
}

const (
	DefaultAPIURL          = "http://localhost:3000"
	DefaultTemporalAddress = "localhost:7233"
	DefaultDismissDelay    = 3 * time.Second
	DefaultHTTPTimeout     = 10 * time.Second
	DefaultDevServerPort   = "3000"
)

type Config struct {
	APIURL          string
	TemporalAddress string
	EncryptionKey   []byte
	// GeneratedKey is set when ENCRYPTION_KEY was empty and a random key was
	// generated for this process.
	GeneratedKey  bool
	Dev           bool
	Dismissal     Dismissal
	DismissDelay  time.Duration
	HTTPTimeout   time.Duration
	DevServerPort string
}

// Load reads the configuration from the environment.
func Load() (Config, error) {
	return load(os.Getenv)
}

func load(getenv func(string) string) (Config, error) {
	cfg := Config{
		APIURL:          DefaultAPIURL,
		TemporalAddress: DefaultTemporalAddress,
		Dismissal:       DismissImmediate,
		DismissDelay:    DefaultDismissDelay,
		HTTPTimeout:     DefaultHTTPTimeout,
		DevServerPort:   DefaultDevServerPort,
	}

	if v := getenv("STOREFRONT_API_URL"); v != "" {
		cfg.APIURL = strings.TrimRight(v, "/")
	}
	if v := getenv("TEMPORAL_ADDRESS"); v != "" {
		cfg.TemporalAddress = v
	}
	if v := getenv("DEVSERVER_PORT"); v != "" {
		cfg.DevServerPort = v
	}

	if v := getenv("STOREFRONT_DEV"); v != "" {
		dev, err := strconv.ParseBool(v)
		if err != nil {
			return Config{}, fmt.Errorf("failed to parse STOREFRONT_DEV: %w", err)
		}
		cfg.Dev = dev
	}

	dismissal, err := ParseDismissal(getenv("CONFIRMATION_DISMISSAL"))
	if err != nil {
		return Config{}, fmt.Errorf("failed to parse CONFIRMATION_DISMISSAL: %w", err)
	}
	cfg.Dismissal = dismissal

	if v := getenv("CONFIRMATION_DISMISS_DELAY"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("failed to parse CONFIRMATION_DISMISS_DELAY: %w", err)
		}
		cfg.DismissDelay = d
	}
	if v := getenv("HTTP_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("failed to parse HTTP_TIMEOUT: %w", err)
		}
		cfg.HTTPTimeout = d
	}

	if v := getenv("ENCRYPTION_KEY"); v != "" {
		key, err := hex.DecodeString(v)
		if err != nil {
			return Config{}, fmt.Errorf("failed to decode encryption key: %w", err)
		}
		cfg.EncryptionKey = key
	} else {
		// Random 32-byte key for AES-256
		key := make([]byte, 32)
		if _, err := rand.Read(key); err != nil {
			return Config{}, fmt.Errorf("failed to generate encryption key: %w", err)
		}
		cfg.EncryptionKey = key
		cfg.GeneratedKey = true
	}

	return cfg, nil
}

// MealsURL is the menu endpoint.
func (c Config) MealsURL() string { return c.APIURL + "/meals" }

// OrdersURL is the order submission endpoint.
func (c Config) OrdersURL() string { return c.APIURL + "/orders" }
