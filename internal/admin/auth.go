package admin

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"net/http"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// bcryptCost for operator token hashes. The operator token set is tiny and
// authentication is not on the buyer-facing hot path.
const bcryptCost = 12

// GenerateToken returns a new random credential as a hex string.
// 32 random bytes (256 bits), used for operator and download tokens alike.
func GenerateToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

// HashOperatorToken creates the bcrypt hash stored for an operator token.
func HashOperatorToken(token string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(token), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// TokenAuthMiddleware validates the Authorization bearer token against the
// stored operator tokens. bcrypt hashes are not directly comparable, so every
// stored hash is tried in turn; the token set stays small enough for that.
func (h *Handler) TokenAuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			WriteError(w, http.StatusUnauthorized, ErrCodeInvalidCredentials, "Missing operator token")
			return
		}

		ok, err := h.validateOperatorToken(r.Context(), token)
		if err != nil {
			h.logger.Error("operator token validation failed", "error", err)
			WriteError(w, http.StatusInternalServerError, ErrCodeInternalError, "Internal error")
			return
		}
		if !ok {
			h.logger.Warn("invalid operator token attempt", "remote_addr", r.RemoteAddr)
			WriteError(w, http.StatusUnauthorized, ErrCodeInvalidCredentials, "Invalid operator token")
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (h *Handler) validateOperatorToken(ctx context.Context, token string) (bool, error) {
	tokens, err := h.storage.ListOperatorTokens(ctx)
	if err != nil {
		return false, err
	}
	for _, t := range tokens {
		if bcrypt.CompareHashAndPassword([]byte(t.TokenHash), []byte(token)) == nil {
			return true, nil
		}
	}
	return false, nil
}

func bearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if !strings.HasPrefix(auth, prefix) {
		return ""
	}
	return strings.TrimSpace(auth[len(prefix):])
}

// Bootstrap creates an initial operator token from a configured plaintext
// value when no operator tokens exist yet. Subsequent starts are no-ops, so
// the configured value can stay in the environment.
func Bootstrap(ctx context.Context, store Storage, token string) error {
	if token == "" {
		return nil
	}

	count, err := store.CountOperatorTokens(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	hash, err := HashOperatorToken(token)
	if err != nil {
		return err
	}
	_, err = store.CreateOperatorToken(ctx, "bootstrap", hash)
	return err
}
