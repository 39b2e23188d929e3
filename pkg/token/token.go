// Package token issues and verifies the HS256 bearer tokens handed out at
// login. The subject is the veterinarian id.
package token

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/iequus/iequus_backend/config"
	"github.com/iequus/iequus_backend/pkg/constants"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token expired")
)

type Config struct {
	Secret []byte
	Issuer string
	TTL    time.Duration
}

func FromCentralConfig(c config.AuthenticationConfig) Config {
	ttl := constants.TokenLifetime
	if c.JWT.TTLDays > 0 {
		ttl = time.Duration(c.JWT.TTLDays) * 24 * time.Hour
	}
	return Config{Secret: []byte(c.JWT.Secret), Issuer: c.JWT.Issuer, TTL: ttl}
}

// Claims is the verified token payload.
type Claims struct {
	VeterinarianID int64
	TokenID        string
	IssuedAt       time.Time
	ExpiresAt      time.Time
}

type Manager struct {
	cfg    Config
	parser *jwt.Parser
	now    func() time.Time
}

func New(cfg Config) (*Manager, error) {
	if len(cfg.Secret) == 0 {
		return nil, errors.New("token: secret is required")
	}
	if cfg.TTL <= 0 {
		cfg.TTL = constants.TokenLifetime
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
	}
	if cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(cfg.Issuer))
	}

	return &Manager{cfg: cfg, parser: jwt.NewParser(opts...), now: time.Now}, nil
}

// Issue signs a token for the veterinarian and returns it with its expiry.
func (m *Manager) Issue(veterinarianID int64) (string, time.Time, error) {
	now := m.now()
	exp := now.Add(m.cfg.TTL)

	claims := jwt.RegisteredClaims{
		Subject:   strconv.FormatInt(veterinarianID, 10),
		Issuer:    m.cfg.Issuer,
		ID:        uuid.NewString(),
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(exp),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.cfg.Secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, exp, nil
}

func (m *Manager) Verify(raw string) (*Claims, error) {
	var rc jwt.RegisteredClaims
	_, err := m.parser.ParseWithClaims(raw, &rc, func(*jwt.Token) (any, error) {
		return m.cfg.Secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	id, err := strconv.ParseInt(rc.Subject, 10, 64)
	if err != nil || id <= 0 {
		return nil, fmt.Errorf("%w: bad subject", ErrInvalidToken)
	}

	c := &Claims{VeterinarianID: id, TokenID: rc.ID}
	if rc.IssuedAt != nil {
		c.IssuedAt = rc.IssuedAt.Time
	}
	if rc.ExpiresAt != nil {
		c.ExpiresAt = rc.ExpiresAt.Time
	}
	return c, nil
}
