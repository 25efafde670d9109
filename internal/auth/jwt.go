package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

var (
	ErrInvalidSignature = errors.New("invalid token signature")
	ErrExpired          = errors.New("token expired")
	ErrTokenType        = errors.New("unexpected token type")
)

// Claims carries sub (email), exp, iat and jti through RegisteredClaims.
type Claims struct {
	TokenType string `json:"typ"`
	jwt.RegisteredClaims
}

type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
}

type Manager struct {
	secret     []byte
	method     jwt.SigningMethod
	accessTTL  time.Duration
	refreshTTL time.Duration
	parser     *jwt.Parser
}

func NewManager(secret, algorithm string, accessTTL, refreshTTL time.Duration) (*Manager, error) {
	if secret == "" {
		return nil, errors.New("jwt secret must not be empty")
	}

	var method jwt.SigningMethod
	switch strings.ToUpper(algorithm) {
	case "", "HS256":
		method = jwt.SigningMethodHS256
	case "HS384":
		method = jwt.SigningMethodHS384
	case "HS512":
		method = jwt.SigningMethodHS512
	default:
		return nil, fmt.Errorf("unsupported signing algorithm %q", algorithm)
	}

	return &Manager{
		secret:     []byte(secret),
		method:     method,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		// Expiry is checked against the caller's clock below, not the library's.
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{method.Alg()}),
			jwt.WithoutClaimsValidation(),
			jwt.WithStrictDecoding(),
		),
	}, nil
}

func (m *Manager) AccessTTL() time.Duration { return m.accessTTL }

func (m *Manager) IssueAccessToken(subject string, now time.Time) (string, error) {
	return m.issue(subject, TokenTypeAccess, now, m.accessTTL)
}

func (m *Manager) IssueRefreshToken(subject string, now time.Time) (string, error) {
	return m.issue(subject, TokenTypeRefresh, now, m.refreshTTL)
}

func (m *Manager) IssuePair(subject string, now time.Time) (TokenPair, error) {
	access, err := m.IssueAccessToken(subject, now)
	if err != nil {
		return TokenPair{}, fmt.Errorf("issue access token: %w", err)
	}

	refresh, err := m.IssueRefreshToken(subject, now)
	if err != nil {
		return TokenPair{}, fmt.Errorf("issue refresh token: %w", err)
	}

	return TokenPair{AccessToken: access, RefreshToken: refresh, TokenType: "bearer"}, nil
}

func (m *Manager) issue(subject, typ string, now time.Time, ttl time.Duration) (string, error) {
	now = now.UTC()

	claims := Claims{
		TokenType: typ,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        uuid.NewString(),
		},
	}

	return jwt.NewWithClaims(m.method, claims).SignedString(m.secret)
}

// VerifyAndDecode checks signature and expiry. A token is still valid at exactly exp.
func (m *Manager) VerifyAndDecode(raw string, now time.Time) (*Claims, error) {
	token, err := m.parser.ParseWithClaims(raw, &Claims{}, func(*jwt.Token) (interface{}, error) {
		return m.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidSignature
	}

	// a payload without sub or exp cannot be parsed into usable claims
	if claims.Subject == "" || claims.ExpiresAt == nil {
		return nil, fmt.Errorf("%w: missing sub or exp", ErrInvalidSignature)
	}

	if now.After(claims.ExpiresAt.Time) {
		return nil, ErrExpired
	}

	return claims, nil
}

func (m *Manager) VerifyAccess(raw string, now time.Time) (*Claims, error) {
	claims, err := m.VerifyAndDecode(raw, now)
	if err != nil {
		return nil, err
	}
	if claims.TokenType != TokenTypeAccess {
		return nil, ErrTokenType
	}
	return claims, nil
}

func (m *Manager) VerifyRefresh(raw string, now time.Time) (*Claims, error) {
	claims, err := m.VerifyAndDecode(raw, now)
	if err != nil {
		return nil, err
	}
	if claims.TokenType != TokenTypeRefresh {
		return nil, ErrTokenType
	}
	if claims.ID == "" {
		return nil, fmt.Errorf("%w: missing jti", ErrInvalidSignature)
	}
	return claims, nil
}
