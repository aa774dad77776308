package testutil

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// signingKey only needs to produce well-formed tokens; sessions never verify
// signatures.
var signingKey = []byte("test-signing-key")

// TokenClaims are the claim inputs for MakeToken.
type TokenClaims struct {
	UserID   string
	Username string
	Vars     map[string]string
	ExpireAt time.Time
}

// MakeToken builds a signed JWT carrying session claims.
func MakeToken(t *testing.T, claims TokenClaims) string {
	t.Helper()
	payload := jwt.MapClaims{
		"uid": claims.UserID,
		"usn": claims.Username,
	}
	if claims.Vars != nil {
		payload["vrs"] = claims.Vars
	}
	if !claims.ExpireAt.IsZero() {
		payload["exp"] = claims.ExpireAt.Unix()
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, payload).SignedString(signingKey)
	if err != nil {
		t.Fatalf("signing token: %v", err)
	}
	return token
}
