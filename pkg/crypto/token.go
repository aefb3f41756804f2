// Package crypto provides signing utilities for installation and feedback tokens.
package crypto

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"

	"github.com/ekaya-inc/proposal-relay/pkg/apperrors"
	"github.com/ekaya-inc/proposal-relay/pkg/models"
)

var (
	// ErrInvalidKey is returned when the signing secret is empty.
	ErrInvalidKey = errors.New("invalid signing key: must not be empty")
	// ErrInvalidToken is returned when a token fails verification or parsing.
	ErrInvalidToken = errors.New("invalid token")
)

// TokenCodec signs claim sets as HS256 JWTs and verifies them again.
// Installation configs and feedback entries are both stored this way, so the
// stored blob is self-describing and tamper-evident without a second store.
type TokenCodec struct {
	key    []byte
	parser *jwt.Parser
}

// NewTokenCodec creates a codec for the given shared secret. The secret is
// used as raw HMAC key bytes so tokens issued by other HS256 implementations
// with the same secret remain readable.
func NewTokenCodec(secret string) (*TokenCodec, error) {
	if secret == "" {
		return nil, ErrInvalidKey
	}

	return &TokenCodec{
		key: []byte(secret),
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
			jwt.WithStrictDecoding(),
		),
	}, nil
}

// Encode signs claims and returns the compact token.
func (c *TokenCodec) Encode(claims map[string]any) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims(claims))
	signed, err := token.SignedString(c.key)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Decode verifies the token signature and returns its claims.
// Any verification or parsing failure is an integrity error.
func (c *TokenCodec) Decode(tokenString string) (map[string]any, error) {
	token, err := c.parser.Parse(tokenString, func(*jwt.Token) (any, error) {
		return c.key, nil
	})
	if err != nil {
		return nil, integrityError(err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, integrityError(errors.New("invalid claims type"))
	}

	return map[string]any(claims), nil
}

// EncodeInstallation signs an installation config.
func (c *TokenCodec) EncodeInstallation(cfg models.InstallationConfig) (string, error) {
	return c.Encode(cfg.Claims())
}

// DecodeInstallation verifies and reads an installation config token.
func (c *TokenCodec) DecodeInstallation(tokenString string) (models.InstallationConfig, error) {
	claims, err := c.Decode(tokenString)
	if err != nil {
		return models.InstallationConfig{}, err
	}
	return models.InstallationConfigFromClaims(claims), nil
}

// EncodeFeedback signs a feedback ledger entry.
func (c *TokenCodec) EncodeFeedback(fb models.Feedback) (string, error) {
	return c.Encode(fb.Claims())
}

// DecodeFeedback verifies and reads a feedback ledger entry.
func (c *TokenCodec) DecodeFeedback(tokenString string) (models.Feedback, error) {
	claims, err := c.Decode(tokenString)
	if err != nil {
		return models.Feedback{}, err
	}
	return models.FeedbackFromClaims(claims), nil
}

func integrityError(cause error) *apperrors.Error {
	return &apperrors.Error{
		Kind:    apperrors.KindIntegrity,
		Message: fmt.Sprintf("%v: %v", ErrInvalidToken, cause),
		Cause:   fmt.Errorf("%w: %w", ErrInvalidToken, cause),
	}
}
