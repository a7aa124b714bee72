package aspxauth

import (
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/MrEthical07/aspxauth/internal/machinekey"
	"github.com/MrEthical07/aspxauth/ticket"
	"go.uber.org/zap"
)

// Engine encodes and decodes forms-authentication cookies for one machine key.
//
// An Engine is immutable after Build and safe for concurrent use.
type Engine struct {
	config    Config
	protector machinekey.Protector
	metrics   *Metrics
	logger    *zap.Logger
	now       func() time.Time
}

// Mode returns the protection mode the engine was built with.
func (e *Engine) Mode() Mode {
	if e == nil {
		return ""
	}
	return e.config.Mode
}

// MetricsSnapshot returns a copy of the engine counters.
func (e *Engine) MetricsSnapshot() MetricsSnapshot {
	if e == nil || e.metrics == nil {
		return MetricsSnapshot{
			Counters:   map[MetricID]uint64{},
			Histograms: map[MetricID][]uint64{},
		}
	}
	return e.metrics.Snapshot()
}

func (e *Engine) metricInc(id MetricID) {
	if e == nil || e.metrics == nil {
		return
	}
	e.metrics.Inc(id)
}

func (e *Engine) ready() bool {
	return e != nil && e.protector != nil
}

/*
====================================
DECODE
====================================
*/

// Decode opens a cookie given as raw bytes, whatever RawOutput says. Hex text goes
// through DecodeString.
//
// Every failure returns a nil ticket with ErrTicketInvalid, or ErrTicketExpired when the
// ticket is authentic but past its expiration.
func (e *Engine) Decode(cookie []byte) (*Ticket, error) {
	if !e.ready() {
		return nil, ErrEngineNotReady
	}
	return e.decode(cookie)
}

// DecodeString opens a hex-encoded cookie. Upper and lower case digits are accepted.
func (e *Engine) DecodeString(cookie string) (*Ticket, error) {
	if !e.ready() {
		return nil, ErrEngineNotReady
	}
	raw, err := hex.DecodeString(cookie)
	if err != nil {
		e.reject(MetricDecodeCryptoFailure, "hex", err)
		return nil, ErrTicketInvalid
	}
	return e.decode(raw)
}

func (e *Engine) decode(raw []byte) (*Ticket, error) {
	if e.metrics.LatencyEnabled() {
		start := time.Now()
		defer func() { e.metrics.Observe(MetricDecodeLatency, time.Since(start)) }()
	}

	plain, err := e.protector.Unprotect(raw)
	if err != nil {
		if errors.Is(err, machinekey.ErrSignature) {
			e.reject(MetricDecodeSignatureFailure, "signature", err)
		} else {
			e.reject(MetricDecodeCryptoFailure, "decrypt", err)
		}
		return nil, ErrTicketInvalid
	}

	t, err := ticket.Unmarshal(plain, ticket.UnmarshalOptions{
		HeaderSize:      e.protector.HeaderSize(),
		RequiredVersion: e.config.TicketVersion,
		CheckExpiration: !e.config.DisableExpirationCheck,
		Now:             e.now(),
	})
	switch {
	case err == nil:
		e.metricInc(MetricDecodeSuccess)
		return t, nil
	case errors.Is(err, ticket.ErrExpired):
		e.reject(MetricDecodeExpired, "expired", err)
		return nil, ErrTicketExpired
	case errors.Is(err, ticket.ErrVersionMismatch):
		e.reject(MetricDecodeVersionMismatch, "version", err)
		return nil, ErrTicketInvalid
	default:
		e.reject(MetricDecodeFormatFailure, "format", err)
		return nil, ErrTicketInvalid
	}
}

func (e *Engine) reject(id MetricID, reason string, err error) {
	e.metricInc(id)
	e.logger.Debug("ticket rejected",
		zap.String("reason", reason),
		zap.String("mode", string(e.config.Mode)),
		zap.Error(err),
	)
}

/*
====================================
ENCODE
====================================
*/

// Encode issues a cookie for req in the configured form: raw bytes when RawOutput is
// set, otherwise lowercase hex text.
func (e *Engine) Encode(req TicketRequest) ([]byte, error) {
	blob, err := e.seal(req)
	if err != nil {
		return nil, err
	}
	if e.config.RawOutput {
		return blob, nil
	}
	out := make([]byte, hex.EncodedLen(len(blob)))
	hex.Encode(out, blob)
	return out, nil
}

// EncodeString issues a cookie for req as lowercase hex, regardless of RawOutput.
func (e *Engine) EncodeString(req TicketRequest) (string, error) {
	blob, err := e.seal(req)
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(blob), nil
}

func (e *Engine) seal(req TicketRequest) ([]byte, error) {
	if !e.ready() {
		return nil, ErrEngineNotReady
	}

	t, err := e.resolve(req)
	if err != nil {
		e.metricInc(MetricEncodeFailure)
		return nil, err
	}

	payload, err := ticket.Marshal(t)
	if err != nil {
		e.metricInc(MetricEncodeFailure)
		return nil, err
	}

	blob, err := e.protector.Protect(payload)
	if err != nil {
		e.metricInc(MetricEncodeFailure)
		return nil, fmt.Errorf("protect ticket: %w", err)
	}

	e.metricInc(MetricEncodeSuccess)
	return blob, nil
}

// resolve fills the request's absent fields from the configuration.
func (e *Engine) resolve(req TicketRequest) (*Ticket, error) {
	version := req.Version
	if required := e.config.TicketVersion; required != 0 {
		if version != 0 && version != required {
			return nil, fmt.Errorf("%w %d, expected %d", ErrTicketVersionMismatch, version, required)
		}
		version = required
	} else if version == 0 {
		version = ticket.DefaultVersion
	}

	issue := req.IssueDate
	if issue.IsZero() {
		issue = e.now()
	}
	expiration := req.ExpirationDate
	if expiration.IsZero() {
		expiration = issue.Add(e.config.DefaultTTL)
	}

	persistent := e.config.DefaultPersistent
	if req.IsPersistent != nil {
		persistent = *req.IsPersistent
	}

	path := req.CookiePath
	if path == "" {
		path = e.config.DefaultCookiePath
	}

	return &Ticket{
		Version:        version,
		IssueDate:      issue,
		ExpirationDate: expiration,
		IsPersistent:   persistent,
		Name:           req.Name,
		CustomData:     req.CustomData,
		CookiePath:     path,
	}, nil
}
