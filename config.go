package aspxauth

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/MrEthical07/aspxauth/internal/machinekey"
)

// Mode selects the cookie protection scheme.
type Mode string

const (
	// ModeLegacy signs and encrypts with the configured keys, a fixed IV, a random header
	// and an inner signature over the payload.
	ModeLegacy Mode = "legacy"
	// ModeKDF derives purpose-specific keys from the configured ones and prefixes each
	// cookie with a random IV.
	ModeKDF Mode = "dotnet45"
)

const (
	defaultValidationMethod = "sha1"
	defaultDecryptionMethod = "aes"
	defaultTTL              = 24 * time.Hour
	defaultCookiePath       = "/"
)

// Config holds the machine key and ticket policy of an Engine.
//
// Keys and the IV are hex strings in the form found in a machineKey element. Zero
// values select the documented defaults.
type Config struct {
	ValidationMethod string // "sha1" (default)
	ValidationKey    string
	DecryptionMethod string // "aes" (default)
	DecryptionIV     string // legacy mode only; defaults to all zeros
	DecryptionKey    string

	// TicketVersion, when nonzero, is required on decode and written on encode.
	TicketVersion          uint8
	DisableExpirationCheck bool

	// RawOutput makes Encode return raw cookie bytes instead of hex text.
	RawOutput bool

	DefaultTTL        time.Duration
	DefaultPersistent bool
	DefaultCookiePath string

	Mode    Mode
	Metrics MetricsConfig
}

// MetricsConfig controls the in-process counters of an Engine.
type MetricsConfig struct {
	Enabled                 bool
	EnableLatencyHistograms bool
}

/*
====================================
DEFAULT CONFIG
====================================
*/

// DefaultConfig returns a Config with every optional field set to its default. The keys
// are left empty and must be supplied.
func DefaultConfig() Config {
	return Config{
		ValidationMethod:  defaultValidationMethod,
		DecryptionMethod:  defaultDecryptionMethod,
		DefaultTTL:        defaultTTL,
		DefaultCookiePath: defaultCookiePath,
		Mode:              ModeLegacy,
	}
}

func (c Config) withDefaults() Config {
	if c.ValidationMethod == "" {
		c.ValidationMethod = defaultValidationMethod
	}
	if c.DecryptionMethod == "" {
		c.DecryptionMethod = defaultDecryptionMethod
	}
	if c.DefaultTTL == 0 {
		c.DefaultTTL = defaultTTL
	}
	if c.DefaultCookiePath == "" {
		c.DefaultCookiePath = defaultCookiePath
	}
	if c.Mode == "" {
		c.Mode = ModeLegacy
	}
	return c
}

/*
====================================
VALIDATION
====================================
*/

// Validate checks the configuration after defaults are applied. It reports the first
// problem found.
func (c *Config) Validate() error {
	cfg := c.withDefaults()

	if !strings.EqualFold(cfg.ValidationMethod, defaultValidationMethod) {
		return fmt.Errorf("unsupported ValidationMethod %q", cfg.ValidationMethod)
	}
	if !strings.EqualFold(cfg.DecryptionMethod, defaultDecryptionMethod) {
		return fmt.Errorf("unsupported DecryptionMethod %q", cfg.DecryptionMethod)
	}
	if cfg.Mode != ModeLegacy && cfg.Mode != ModeKDF {
		return fmt.Errorf("unsupported Mode %q", cfg.Mode)
	}

	if cfg.ValidationKey == "" {
		return errors.New("ValidationKey is required")
	}
	if cfg.DecryptionKey == "" {
		return errors.New("DecryptionKey is required")
	}
	if cfg.DefaultTTL < 0 {
		return errors.New("DefaultTTL must be >= 0")
	}

	keys, err := cfg.keys()
	if err != nil {
		return err
	}
	if len(keys.Decryption) != machinekey.KeySize {
		return fmt.Errorf("DecryptionKey must be %d bytes, got %d", machinekey.KeySize, len(keys.Decryption))
	}
	if keys.IV != nil && len(keys.IV) != machinekey.IVSize {
		return fmt.Errorf("DecryptionIV must be %d bytes, got %d", machinekey.IVSize, len(keys.IV))
	}

	return nil
}

func (c *Config) keys() (machinekey.Keys, error) {
	var keys machinekey.Keys
	var err error

	if keys.Validation, err = hex.DecodeString(c.ValidationKey); err != nil {
		return keys, fmt.Errorf("ValidationKey is not valid hex: %w", err)
	}
	if keys.Decryption, err = hex.DecodeString(c.DecryptionKey); err != nil {
		return keys, fmt.Errorf("DecryptionKey is not valid hex: %w", err)
	}
	if c.DecryptionIV != "" {
		if keys.IV, err = hex.DecodeString(c.DecryptionIV); err != nil {
			return keys, fmt.Errorf("DecryptionIV is not valid hex: %w", err)
		}
	}
	return keys, nil
}

func (m Mode) protection() machinekey.Mode {
	if m == ModeKDF {
		return machinekey.KDF
	}
	return machinekey.Legacy
}

/*
====================================
LINT
====================================
*/

// LintWarning is a configuration that is accepted but weak.
type LintWarning struct {
	Code    string
	Message string
}

// LintResult collects the warnings produced by Lint.
type LintResult []LintWarning

// Codes returns the warning codes in order.
func (r LintResult) Codes() []string {
	out := make([]string, 0, len(r))
	for _, w := range r {
		out = append(out, w.Code)
	}
	return out
}

// Lint reports settings that Validate accepts but that weaken cookie protection.
func (c *Config) Lint() LintResult {
	cfg := c.withDefaults()
	var out LintResult

	if cfg.DisableExpirationCheck {
		out = append(out, LintWarning{"expiration_check_disabled", "expired tickets are accepted"})
	}
	if cfg.TicketVersion == 0 {
		out = append(out, LintWarning{"ticket_version_unchecked", "any embedded ticket version is accepted"})
	}
	if cfg.DefaultTTL > 30*24*time.Hour {
		out = append(out, LintWarning{"ttl_long", "DefaultTTL exceeds 30 days"})
	}
	if cfg.Mode == ModeLegacy && strings.Trim(cfg.DecryptionIV, "0") == "" {
		out = append(out, LintWarning{"legacy_zero_iv", "legacy mode encrypts under an all-zero IV"})
	}
	if key, err := hex.DecodeString(cfg.ValidationKey); err == nil && len(key) < 64 {
		out = append(out, LintWarning{"validation_key_short", "ValidationKey is shorter than 64 bytes"})
	}

	return out
}
