package providers

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"tsd/internal/models"
	"tsd/internal/structures"
)

const SignatureHeader = "X-Signature"

// AuthProviderInterface is the "require proof of principal" capability.
// Verification of real signatures happens outside this daemon; here a
// request proves a principal by presenting an HMAC over it under a shared
// secret. An empty secret disables the check.
type AuthProviderInterface interface {
	RequireAuth(r *http.Request, principal string) error
}

type AuthProvider struct {
	secret []byte
}

func NewAuthProvider(conf *structures.Config, logger Logger) AuthProviderInterface {
	if conf.Ledger.AuthSecret == "" {
		logger.Warnf(TypeApp, "Auth secret not set, principal verification disabled")
	}
	return &AuthProvider{secret: []byte(conf.Ledger.AuthSecret)}
}

// Sign returns the signature a caller must present for principal.
func Sign(secret, principal string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(principal))
	return hex.EncodeToString(mac.Sum(nil))
}

func (a *AuthProvider) RequireAuth(r *http.Request, principal string) error {
	if principal == "" {
		return models.ErrUnauthorized
	}
	if len(a.secret) == 0 {
		return nil
	}
	want := Sign(string(a.secret), principal)
	got := r.Header.Get(SignatureHeader)
	if got == "" || !hmac.Equal([]byte(want), []byte(got)) {
		return models.ErrUnauthorized
	}
	return nil
}
