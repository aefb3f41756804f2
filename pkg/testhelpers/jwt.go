// Package testhelpers provides utilities for testing proposal-relay components.
package testhelpers

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/ekaya-inc/proposal-relay/pkg/crypto"
)

// TestSecret is the signing secret used by NewTestCodec.
const TestSecret = "test-secret-key"

// NewTestCodec returns a token codec keyed with TestSecret.
func NewTestCodec(t *testing.T) *crypto.TokenCodec {
	t.Helper()

	codec, err := crypto.NewTokenCodec(TestSecret)
	if err != nil {
		t.Fatalf("failed to create token codec: %v", err)
	}
	return codec
}

// GenerateUnsignedJWT creates a token with a valid structure but no signature
// (alg: none). The relay must reject these as integrity failures.
func GenerateUnsignedJWT(claims map[string]any) string {
	header := base64.RawURLEncoding.EncodeToString([]byte(`{"alg":"none","typ":"JWT"}`))

	payload, err := json.Marshal(claims)
	if err != nil {
		panic(fmt.Sprintf("marshal claims: %v", err))
	}

	return fmt.Sprintf("%s.%s.", header, base64.RawURLEncoding.EncodeToString(payload))
}
