// Package auth validates bearer tokens issued by the external identity
// collaborator. This service never issues tokens: students authenticate
// against the platform's identity service, which signs a JWT with a secret
// shared with this API.
package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/revisehq/revision-api/internal/config"
	"github.com/revisehq/revision-api/internal/platform/logger"
)

// Claims represents the validated identity extracted from a bearer token.
type Claims struct {
	// StudentID is the unique identifier of the student the token was issued for.
	StudentID uuid.UUID `json:"sid,omitempty"`

	// Standard registered JWT claims
	Subject   string    `json:"sub,omitempty"`
	IssuedAt  time.Time `json:"iat,omitempty"`
	ExpiresAt time.Time `json:"exp,omitempty"`
	ID        string    `json:"jti,omitempty"`
}

// TokenValidator verifies externally issued student tokens.
type TokenValidator interface {
	// ValidateToken validates the provided token string and extracts the
	// claims. Returns the claims containing the student identity if the token
	// is valid, or an error if validation fails (expired, invalid signature,
	// missing identity claim).
	ValidateToken(ctx context.Context, tokenString string) (*Claims, error)
}

// hmacTokenValidator validates tokens signed with HMAC-SHA256.
type hmacTokenValidator struct {
	signingKey []byte
	timeFunc   func() time.Time // Injectable for testing
	clockSkew  time.Duration    // Allowed time difference for validation to handle clock drift
}

// jwtCustomClaims defines the claim structure the identity collaborator signs.
type jwtCustomClaims struct {
	StudentID uuid.UUID `json:"sid"`
	jwt.RegisteredClaims
}

// Ensure hmacTokenValidator implements TokenValidator interface
var _ TokenValidator = (*hmacTokenValidator)(nil)

// NewTokenValidator creates a validator for tokens signed with the shared
// HMAC-SHA256 secret.
func NewTokenValidator(cfg config.AuthConfig) (TokenValidator, error) {
	if len(cfg.JWTSecret) < 32 {
		return nil, fmt.Errorf("jwt secret must be at least 32 characters")
	}

	return &hmacTokenValidator{
		signingKey: []byte(cfg.JWTSecret),
		timeFunc:   time.Now,
		clockSkew:  2 * time.Minute, // Allow 2 minutes of clock skew to handle minor time drifts
	}, nil
}

// ValidateToken implements TokenValidator.ValidateToken.
func (s *hmacTokenValidator) ValidateToken(
	ctx context.Context,
	tokenString string,
) (*Claims, error) {
	log := logger.FromContext(ctx)
	now := s.timeFunc()

	parserOpts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}),
		jwt.WithLeeway(s.clockSkew),
		jwt.WithTimeFunc(func() time.Time {
			return now
		}),
	}

	token, err := jwt.ParseWithClaims(
		tokenString,
		&jwtCustomClaims{},
		func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return s.signingKey, nil
		},
		parserOpts...)

	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			log.Debug("token validation failed: token expired", "error", err)
			return nil, ErrExpiredToken
		case errors.Is(err, jwt.ErrTokenNotValidYet):
			log.Debug("token validation failed: token not yet valid", "error", err)
			return nil, ErrTokenNotYetValid
		default:
			log.Debug("token validation failed", "error", err)
			return nil, ErrInvalidToken
		}
	}

	claims, ok := token.Claims.(*jwtCustomClaims)
	if !ok || !token.Valid {
		log.Debug("token validation failed: invalid claims")
		return nil, ErrInvalidToken
	}

	if claims.StudentID == uuid.Nil {
		log.Debug("token validation failed: missing student ID claim")
		return nil, ErrMissingStudentID
	}

	validated := &Claims{
		StudentID: claims.StudentID,
		Subject:   claims.Subject,
	}
	if claims.IssuedAt != nil {
		validated.IssuedAt = claims.IssuedAt.Time
	}
	if claims.ExpiresAt != nil {
		validated.ExpiresAt = claims.ExpiresAt.Time
	}
	validated.ID = claims.ID

	log.Debug("token validated successfully",
		"student_id", claims.StudentID,
		"token_id", claims.ID)

	return validated, nil
}
