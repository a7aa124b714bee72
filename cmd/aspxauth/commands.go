package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/MrEthical07/aspxauth"
	"github.com/MrEthical07/aspxauth/internal/machinekey"
	"go.uber.org/zap"
)

// ticketView is the JSON form printed by decode.
type ticketView struct {
	Version        uint8     `json:"version"`
	Name           string    `json:"name"`
	IssueDate      time.Time `json:"issueDate"`
	ExpirationDate time.Time `json:"expirationDate"`
	IsPersistent   bool      `json:"isPersistent"`
	CustomData     string    `json:"customData"`
	CookiePath     string    `json:"cookiePath"`
	Expired        bool      `json:"expired,omitempty"`
}

// config turns the global flags into an engine configuration. Keys absent from the
// flags are read from the environment.
func (f cliFlags) config() (aspxauth.Config, error) {
	cfg := aspxauth.DefaultConfig()

	cfg.ValidationKey = f.validationKey
	if cfg.ValidationKey == "" {
		cfg.ValidationKey = os.Getenv(envValidationKey)
	}
	cfg.DecryptionKey = f.decryptionKey
	if cfg.DecryptionKey == "" {
		cfg.DecryptionKey = os.Getenv(envDecryptionKey)
	}
	if cfg.ValidationKey == "" {
		return cfg, fmt.Errorf("validation key is required (-k or %s)", envValidationKey)
	}
	if cfg.DecryptionKey == "" {
		return cfg, fmt.Errorf("decryption key is required (-d or %s)", envDecryptionKey)
	}

	cfg.DecryptionIV = f.iv
	cfg.Mode = aspxauth.Mode(strings.ToLower(f.mode))
	cfg.DisableExpirationCheck = f.noExpiry

	if f.ticketVersion < 0 || f.ticketVersion > 255 {
		return cfg, fmt.Errorf("ticket version must be 0-255, got %d", f.ticketVersion)
	}
	cfg.TicketVersion = uint8(f.ticketVersion)

	if f.ttl != "" {
		ttl, err := time.ParseDuration(f.ttl)
		if err != nil {
			return cfg, fmt.Errorf("invalid ttl: %w", err)
		}
		cfg.DefaultTTL = ttl
	}
	if f.path != "" {
		cfg.DefaultCookiePath = f.path
	}
	cfg.DefaultPersistent = f.persistent

	return cfg, nil
}

func (f cliFlags) logger() *zap.Logger {
	if !f.verbose {
		return zap.NewNop()
	}
	logger, err := zap.NewDevelopment()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}

func (f cliFlags) engine() (*aspxauth.Engine, error) {
	cfg, err := f.config()
	if err != nil {
		return nil, err
	}
	return aspxauth.New().
		WithConfig(cfg).
		WithLogger(f.logger()).
		Build()
}

// cmdDecode prints the ticket carried by each cookie argument.
func cmdDecode(w io.Writer, args []string) error {
	if len(args) == 0 {
		return errors.New("cookie required (hex)")
	}

	engine, err := flags.engine()
	if err != nil {
		return err
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	for _, cookie := range args {
		t, err := engine.DecodeString(strings.TrimSpace(cookie))
		if err != nil {
			return err
		}
		view := ticketView{
			Version:        t.Version,
			Name:           t.Name,
			IssueDate:      t.IssueDate,
			ExpirationDate: t.ExpirationDate,
			IsPersistent:   t.IsPersistent,
			CustomData:     t.CustomData,
			CookiePath:     t.CookiePath,
			Expired:        t.Expired(time.Now()),
		}
		if err := enc.Encode(view); err != nil {
			return err
		}
	}
	return nil
}

// cmdEncode issues a cookie for the ticket described by the flags.
func cmdEncode(w io.Writer) error {
	if flags.name == "" {
		return errors.New("name is required (-n)")
	}

	engine, err := flags.engine()
	if err != nil {
		return err
	}

	cookie, err := engine.EncodeString(aspxauth.TicketRequest{
		Version:      uint8(flags.ticketVersion),
		IsPersistent: aspxauth.Bool(flags.persistent),
		Name:         flags.name,
		CustomData:   flags.customData,
	})
	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(w, strings.ToUpper(cookie))
	return err
}

// cmdKeygen prints a validation key of --size bytes and a 32-byte decryption key.
func cmdKeygen(w io.Writer) error {
	validation, err := machinekey.GenerateKey(flags.keySize)
	if err != nil {
		return err
	}
	decryption, err := machinekey.GenerateKey(machinekey.KeySize)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "%s=%s\n%s=%s\n", envValidationKey, validation, envDecryptionKey, decryption)
	return err
}
