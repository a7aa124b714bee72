package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/MrEthical07/aspxauth/jwt"
)

const tokenIssuer = "aspxauth"

// cmdToken decodes a cookie and prints an HS256 access token minted from its ticket.
func cmdToken(w io.Writer, args []string) error {
	if len(args) != 1 {
		return errors.New("exactly one cookie required (hex)")
	}

	manager, err := flags.tokenManager()
	if err != nil {
		return err
	}
	engine, err := flags.engine()
	if err != nil {
		return err
	}

	t, err := engine.DecodeString(strings.TrimSpace(args[0]))
	if err != nil {
		return err
	}

	access, err := manager.CreateAccess(t)
	if err != nil {
		return fmt.Errorf("mint access token: %w", err)
	}
	_, err = fmt.Fprintln(w, access)
	return err
}

func (f cliFlags) tokenManager() (*jwt.Manager, error) {
	secret := f.jwtSecret
	if secret == "" {
		secret = os.Getenv(envJWTSecret)
	}
	if secret == "" {
		return nil, fmt.Errorf("jwt secret is required (-j or %s)", envJWTSecret)
	}

	ttl := 5 * time.Minute
	if f.jwtTTL != "" {
		var err error
		if ttl, err = time.ParseDuration(f.jwtTTL); err != nil {
			return nil, fmt.Errorf("invalid jwt ttl: %w", err)
		}
	}

	return jwt.NewManager(jwt.Config{
		AccessTTL:     ttl,
		SigningMethod: jwt.MethodHS256,
		PrivateKey:    []byte(secret),
		Issuer:        tokenIssuer,
	})
}
