package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Token validation failures. The gate collapses all of them into one generic
// response so callers cannot probe which check failed.
var (
	ErrTokenMalformed = errors.New("token is malformed")
	ErrTokenSignature = errors.New("token signature is invalid")
	ErrTokenExpired   = errors.New("token is expired")
	ErrTokenClaims    = errors.New("token claims are invalid")
)

// Identity is the verified caller of a request. It is only trustworthy when
// produced by TokenService.Validate during the current request.
type Identity struct {
	Subject string
	Email   string
}

type TokenConfig struct {
	Secret   string
	Issuer   string
	Audience string
	Expiry   time.Duration
}

// TokenService issues and validates stateless HMAC-SHA256 bearer tokens.
// Validation is a pure function of the token, the configuration, and the
// clock; there is no issued-token store and no revocation.
type TokenService struct {
	secret   []byte
	issuer   string
	audience string
	expiry   time.Duration
}

func NewTokenService(cfg TokenConfig) (*TokenService, error) {
	if strings.TrimSpace(cfg.Secret) == "" {
		return nil, errors.New("token signing secret is required")
	}
	if cfg.Expiry <= 0 {
		return nil, errors.New("token expiry must be positive")
	}

	return &TokenService{
		secret:   []byte(cfg.Secret),
		issuer:   cfg.Issuer,
		audience: cfg.Audience,
		expiry:   cfg.Expiry,
	}, nil
}

type accessClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// Issue signs a token for subject with a fresh jti and the configured
// issuer, audience, and expiry.
func (s *TokenService) Issue(subject, email string) (string, error) {
	now := time.Now().UTC()
	claims := accessClaims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ID:        uuid.NewString(),
			Issuer:    s.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.expiry)),
		},
	}
	if s.audience != "" {
		claims.Audience = jwt.ClaimStrings{s.audience}
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}

	return signed, nil
}

// Validate parses and verifies tokenString: HS256 signature, configured
// issuer and audience, expiry with zero clock-skew tolerance, and the
// presence of the subject, email, and jti claims.
func (s *TokenService) Validate(tokenString string) (Identity, error) {
	options := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if s.issuer != "" {
		options = append(options, jwt.WithIssuer(s.issuer))
	}
	if s.audience != "" {
		options = append(options, jwt.WithAudience(s.audience))
	}

	claims := &accessClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return s.secret, nil
	}, options...)
	if err != nil {
		return Identity{}, mapTokenError(err)
	}
	if !token.Valid {
		return Identity{}, ErrTokenClaims
	}
	if claims.Subject == "" || claims.Email == "" || claims.ID == "" {
		return Identity{}, ErrTokenClaims
	}

	return Identity{Subject: claims.Subject, Email: claims.Email}, nil
}

func mapTokenError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenMalformed):
		return ErrTokenMalformed
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return ErrTokenSignature
	case errors.Is(err, jwt.ErrTokenExpired):
		return ErrTokenExpired
	case errors.Is(err, jwt.ErrTokenInvalidIssuer),
		errors.Is(err, jwt.ErrTokenInvalidAudience),
		errors.Is(err, jwt.ErrTokenRequiredClaimMissing),
		errors.Is(err, jwt.ErrTokenNotValidYet),
		errors.Is(err, jwt.ErrTokenUsedBeforeIssued):
		return ErrTokenClaims
	default:
		return fmt.Errorf("validate token: %w", err)
	}
}
