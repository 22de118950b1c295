// Package jwt emite y verifica los tokens locales (HS256): el session token
// que liga al usuario verificado externamente y el token de admin.
package jwt

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	jwtv5 "github.com/golang-jwt/jwt/v5"

	"github.com/dropDatabas3/authhub/internal/observability/logger"
)

const (
	MinSecretLen    = 32
	DefaultTTL      = 24 * time.Hour
	DefaultAdminTTL = time.Hour
	adminSubject    = "admin"
)

var (
	ErrSecretRequired = errors.New("jwt: signing secret is required")
	ErrSecretTooShort = fmt.Errorf("jwt: signing secret must be at least %d bytes", MinSecretLen)

	// ErrInvalidToken cubre firma inválida, payload malformado, expiración y tipo incorrecto.
	ErrInvalidToken = errors.New("invalid or expired token")
)

type Issuer struct {
	secret   []byte
	issuer   string
	ttl      time.Duration
	adminTTL time.Duration
	now      func() time.Time
}

type Option func(*Issuer)

func WithTTL(d time.Duration) Option {
	return func(i *Issuer) {
		if d > 0 {
			i.ttl = d
		}
	}
}

func WithAdminTTL(d time.Duration) Option {
	return func(i *Issuer) {
		if d > 0 {
			i.adminTTL = d
		}
	}
}

func WithIssuer(iss string) Option {
	return func(i *Issuer) {
		if iss != "" {
			i.issuer = iss
		}
	}
}

// WithTimeFunc inyecta el reloj (tests).
func WithTimeFunc(now func() time.Time) Option {
	return func(i *Issuer) {
		if now != nil {
			i.now = now
		}
	}
}

// NewIssuer falla si el secreto falta o es corto: nunca hay secreto por defecto.
func NewIssuer(secret string, opts ...Option) (*Issuer, error) {
	switch {
	case secret == "":
		return nil, ErrSecretRequired
	case len(secret) < MinSecretLen:
		return nil, ErrSecretTooShort
	}
	i := &Issuer{
		secret:   []byte(secret),
		issuer:   "authhub",
		ttl:      DefaultTTL,
		adminTTL: DefaultAdminTTL,
		now:      time.Now,
	}
	for _, o := range opts {
		o(i)
	}
	return i, nil
}

func (i *Issuer) TTL() time.Duration { return i.ttl }

func (i *Issuer) registered(sub string, ttl time.Duration) (jwtv5.RegisteredClaims, time.Time) {
	now := i.now().UTC()
	exp := now.Add(ttl)
	return jwtv5.RegisteredClaims{
		Issuer:    i.issuer,
		Subject:   sub,
		IssuedAt:  jwtv5.NewNumericDate(now),
		NotBefore: jwtv5.NewNumericDate(now),
		ExpiresAt: jwtv5.NewNumericDate(exp),
	}, exp
}

// Issue firma un session token {userId, email} con el TTL configurado.
func (i *Issuer) Issue(userID int64, email string) (string, time.Time, error) {
	rc, exp := i.registered(strconv.FormatInt(userID, 10), i.ttl)
	tk := jwtv5.NewWithClaims(jwtv5.SigningMethodHS256, SessionClaims{
		UserID:           userID,
		Email:            email,
		Type:             TypeSession,
		RegisteredClaims: rc,
	})
	signed, err := tk.SignedString(i.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("jwt: sign session: %w", err)
	}
	return signed, exp, nil
}

// Verify valida un session token. Todo fallo es ErrInvalidToken; la causa
// concreta solo va al log.
func (i *Issuer) Verify(ctx context.Context, token string) (*SessionClaims, error) {
	var claims SessionClaims
	if err := i.parse(ctx, token, &claims); err != nil {
		return nil, err
	}
	if claims.Type != TypeSession || claims.UserID == 0 {
		i.logReject(ctx, "wrong_type", nil)
		return nil, ErrInvalidToken
	}
	return &claims, nil
}

// IssueAdmin firma un token de admin (TTL corto).
func (i *Issuer) IssueAdmin() (string, time.Time, error) {
	rc, exp := i.registered(adminSubject, i.adminTTL)
	tk := jwtv5.NewWithClaims(jwtv5.SigningMethodHS256, AdminClaims{Type: TypeAdmin, RegisteredClaims: rc})
	signed, err := tk.SignedString(i.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("jwt: sign admin: %w", err)
	}
	return signed, exp, nil
}

// VerifyAdmin no acepta session tokens.
func (i *Issuer) VerifyAdmin(ctx context.Context, token string) (*AdminClaims, error) {
	var claims AdminClaims
	if err := i.parse(ctx, token, &claims); err != nil {
		return nil, err
	}
	if claims.Type != TypeAdmin || claims.Subject != adminSubject {
		i.logReject(ctx, "wrong_type", nil)
		return nil, ErrInvalidToken
	}
	return &claims, nil
}

func (i *Issuer) parse(ctx context.Context, token string, claims jwtv5.Claims) error {
	keyfunc := func(*jwtv5.Token) (any, error) { return i.secret, nil }
	_, err := jwtv5.ParseWithClaims(token, claims, keyfunc,
		jwtv5.WithValidMethods([]string{jwtv5.SigningMethodHS256.Alg()}),
		jwtv5.WithIssuer(i.issuer),
		jwtv5.WithExpirationRequired(),
		jwtv5.WithTimeFunc(i.now),
	)
	if err != nil {
		i.logReject(ctx, rejectReason(err), err)
		return ErrInvalidToken
	}
	return nil
}

func rejectReason(err error) string {
	switch {
	case errors.Is(err, jwtv5.ErrTokenExpired):
		return "expired"
	case errors.Is(err, jwtv5.ErrTokenSignatureInvalid):
		return "bad_signature"
	case errors.Is(err, jwtv5.ErrTokenMalformed):
		return "malformed"
	case errors.Is(err, jwtv5.ErrTokenNotValidYet):
		return "not_valid_yet"
	case errors.Is(err, jwtv5.ErrTokenInvalidIssuer):
		return "bad_issuer"
	default:
		return "invalid"
	}
}

func (i *Issuer) logReject(ctx context.Context, reason string, err error) {
	l := logger.From(ctx).With(logger.Component("jwt"), logger.String("reason", reason))
	if err != nil {
		l = l.With(logger.Err(err))
	}
	l.Debug("token rejected")
}
