package jwt

import (
	"crypto/ed25519"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/MrEthical07/aspxauth/ticket"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// SigningMethod selects the access token signature algorithm.
type SigningMethod string

const (
	// MethodEd25519 signs with EdDSA over Ed25519.
	MethodEd25519 SigningMethod = "ed25519"
	// MethodHS256 signs with HMAC-SHA256.
	MethodHS256 SigningMethod = "hs256"
)

// ErrTicketExpired is returned by CreateAccess for a ticket whose expiration has passed.
var ErrTicketExpired = errors.New("ticket already expired")

// Config configures a Manager. AccessTTL caps the token lifetime; the token never
// outlives the ticket it was minted from.
type Config struct {
	AccessTTL     time.Duration
	SigningMethod SigningMethod
	PrivateKey    []byte
	PublicKey     []byte
	Issuer        string
	Audience      string
	Leeway        time.Duration
	RequireIAT    bool
	MaxFutureIAT  time.Duration
	KeyID         string
	VerifyKeys    map[string][]byte

	// Now overrides the clock used for issuing and verifying. Nil means time.Now.
	Now func() time.Time
}

// Manager mints and verifies access tokens carrying forms-authentication ticket fields.
// Keys are parsed once by NewManager.
type Manager struct {
	config     Config
	method     jwt.SigningMethod
	signKey    any
	verifyKey  any
	verifyKeys map[string]any
}

// TicketClaims are the claims of an access token minted from a ticket.
type TicketClaims struct {
	Name       string `json:"name"`
	CustomData string `json:"cd,omitempty"`
	Persistent bool   `json:"pst,omitempty"`
	Version    uint8  `json:"tv"`
	CookiePath string `json:"path,omitempty"`
	jwt.RegisteredClaims
}

// NewManager validates cfg, parses its keys and returns a Manager.
func NewManager(cfg Config) (*Manager, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	m := &Manager{config: cfg}
	if err := m.loadKeys(); err != nil {
		return nil, err
	}
	return m, nil
}

func (c *Config) validate() error {
	if c.AccessTTL <= 0 {
		return errors.New("AccessTTL must be > 0")
	}
	if c.Leeway < 0 || c.Leeway > 2*time.Minute {
		return errors.New("Leeway must be between 0 and 2m")
	}
	if c.MaxFutureIAT == 0 {
		c.MaxFutureIAT = 10 * time.Minute
	}
	if c.MaxFutureIAT < 0 || c.MaxFutureIAT > 24*time.Hour {
		return errors.New("MaxFutureIAT must be between 0 and 24h")
	}
	if c.Now == nil {
		c.Now = time.Now
	}
	c.KeyID = strings.TrimSpace(c.KeyID)
	if c.KeyID != "" && len(c.VerifyKeys) > 0 {
		if _, ok := c.VerifyKeys[c.KeyID]; !ok {
			return errors.New("KeyID is not present in VerifyKeys")
		}
	}
	for kid := range c.VerifyKeys {
		if strings.TrimSpace(kid) == "" {
			return errors.New("VerifyKeys contains an empty kid")
		}
	}
	return nil
}

func (m *Manager) loadKeys() error {
	cfg := m.config
	m.verifyKeys = make(map[string]any, len(cfg.VerifyKeys))

	switch cfg.SigningMethod {
	case MethodHS256:
		if len(cfg.PrivateKey) == 0 {
			return errors.New("hs256 requires PrivateKey")
		}
		m.method = jwt.SigningMethodHS256
		m.signKey = cfg.PrivateKey
		m.verifyKey = cfg.PrivateKey
		for kid, key := range cfg.VerifyKeys {
			m.verifyKeys[kid] = key
		}

	case MethodEd25519:
		if len(cfg.VerifyKeys) == 0 && len(cfg.PublicKey) == 0 {
			return errors.New("ed25519 requires PublicKey or VerifyKeys")
		}
		m.method = jwt.SigningMethodEdDSA
		if len(cfg.PrivateKey) > 0 {
			priv, err := parseEdPrivateKey(cfg.PrivateKey)
			if err != nil {
				return err
			}
			m.signKey = priv
		}
		if len(cfg.PublicKey) > 0 {
			pub, err := parseEdPublicKey(cfg.PublicKey)
			if err != nil {
				return err
			}
			m.verifyKey = pub
		}
		for kid, key := range cfg.VerifyKeys {
			pub, err := parseEdPublicKey(key)
			if err != nil {
				return fmt.Errorf("verify key %q: %w", kid, err)
			}
			m.verifyKeys[kid] = pub
		}

	default:
		return fmt.Errorf("unsupported signing method %q", cfg.SigningMethod)
	}
	return nil
}

// CreateAccess mints a signed access token for t. The token subject is the ticket name
// and its expiry is the earlier of the ticket expiration and now plus AccessTTL.
func (m *Manager) CreateAccess(t *ticket.Ticket) (string, error) {
	if t == nil {
		return "", errors.New("nil ticket")
	}
	if m.signKey == nil {
		return "", errors.New("manager has no signing key")
	}

	now := m.config.Now()
	if !t.ExpirationDate.After(now) {
		return "", ErrTicketExpired
	}
	exp := now.Add(m.config.AccessTTL)
	if t.ExpirationDate.Before(exp) {
		exp = t.ExpirationDate
	}

	claims := TicketClaims{
		Name:       t.Name,
		CustomData: t.CustomData,
		Persistent: t.IsPersistent,
		Version:    t.Version,
		CookiePath: t.CookiePath,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   t.Name,
			ExpiresAt: jwt.NewNumericDate(exp),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    m.config.Issuer,
			ID:        uuid.NewString(),
		},
	}
	if m.config.Audience != "" {
		claims.Audience = jwt.ClaimStrings{m.config.Audience}
	}

	token := jwt.NewWithClaims(m.method, claims)
	if m.config.KeyID != "" {
		token.Header["kid"] = m.config.KeyID
	}
	return token.SignedString(m.signKey)
}

// ParseAccess verifies tokenStr and returns its claims.
func (m *Manager) ParseAccess(tokenStr string) (*TicketClaims, error) {
	options := []jwt.ParserOption{
		jwt.WithValidMethods([]string{m.method.Alg()}),
		jwt.WithTimeFunc(m.config.Now),
		jwt.WithExpirationRequired(),
	}
	if m.config.Leeway > 0 {
		options = append(options, jwt.WithLeeway(m.config.Leeway))
	}
	if m.config.RequireIAT {
		options = append(options, jwt.WithIssuedAt())
	}
	if m.config.Issuer != "" {
		options = append(options, jwt.WithIssuer(m.config.Issuer))
	}
	if m.config.Audience != "" {
		options = append(options, jwt.WithAudience(m.config.Audience))
	}

	parser := jwt.NewParser(options...)
	token, err := parser.ParseWithClaims(tokenStr, &TicketClaims{}, m.resolveKey)
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*TicketClaims)
	if !ok || !token.Valid {
		return nil, jwt.ErrTokenInvalidClaims
	}
	if claims.IssuedAt != nil && m.config.MaxFutureIAT > 0 {
		maxAllowed := m.config.Now().Add(m.config.MaxFutureIAT)
		if claims.IssuedAt.Time.After(maxAllowed) {
			return nil, errors.New("token iat too far in the future")
		}
	}

	return claims, nil
}

// ClaimsTicket rebuilds a ticket from verified claims. Dates carry the token's second
// precision and the expiration is the token expiry, not the source ticket's.
func ClaimsTicket(c *TicketClaims) ticket.Ticket {
	t := ticket.Ticket{
		Version:      c.Version,
		IsPersistent: c.Persistent,
		Name:         c.Name,
		CustomData:   c.CustomData,
		CookiePath:   c.CookiePath,
	}
	if c.IssuedAt != nil {
		t.IssueDate = c.IssuedAt.Time.UTC()
	}
	if c.ExpiresAt != nil {
		t.ExpirationDate = c.ExpiresAt.Time.UTC()
	}
	return t
}

func (m *Manager) resolveKey(t *jwt.Token) (any, error) {
	if t.Method.Alg() != m.method.Alg() {
		return nil, fmt.Errorf("unexpected signing algorithm: %s", t.Method.Alg())
	}

	kid, _ := t.Header["kid"].(string)
	if len(m.verifyKeys) == 0 && m.config.KeyID == "" {
		return m.verifyKey, nil
	}
	if kid == "" {
		return nil, errors.New("missing kid")
	}
	if len(m.verifyKeys) > 0 {
		key, ok := m.verifyKeys[kid]
		if !ok {
			return nil, errors.New("unknown kid")
		}
		return key, nil
	}
	if kid != m.config.KeyID {
		return nil, errors.New("unknown kid")
	}
	return m.verifyKey, nil
}

func parseEdPrivateKey(key []byte) (ed25519.PrivateKey, error) {
	if len(key) == ed25519.PrivateKeySize {
		return ed25519.PrivateKey(key), nil
	}
	parsed, err := jwt.ParseEdPrivateKeyFromPEM(key)
	if err != nil {
		return nil, fmt.Errorf("ed25519 private key: %w", err)
	}
	priv, ok := parsed.(ed25519.PrivateKey)
	if !ok {
		return nil, errors.New("ed25519 private key: unexpected key type")
	}
	return priv, nil
}

func parseEdPublicKey(key []byte) (ed25519.PublicKey, error) {
	if len(key) == ed25519.PublicKeySize {
		return ed25519.PublicKey(key), nil
	}
	parsed, err := jwt.ParseEdPublicKeyFromPEM(key)
	if err != nil {
		return nil, fmt.Errorf("ed25519 public key: %w", err)
	}
	pub, ok := parsed.(ed25519.PublicKey)
	if !ok {
		return nil, errors.New("ed25519 public key: unexpected key type")
	}
	return pub, nil
}
