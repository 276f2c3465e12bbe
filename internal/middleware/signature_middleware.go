package middleware

import (
	"bytes"
	"crypto/ed25519"
	"encoding/hex"
	"io"
	"net/http"
)

// NewSignatureMiddleware verifies the ed25519 request signature Discord
// attaches to every interactions webhook call. Requests that fail
// verification are rejected with 401, which Discord requires before it
// will register the endpoint.
// See: https://discord.com/developers/docs/interactions/overview#setting-up-an-endpoint
func NewSignatureMiddleware(publicKey ed25519.PublicKey) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			signature, err := hex.DecodeString(r.Header.Get("X-Signature-Ed25519"))
			if err != nil || len(signature) != ed25519.SignatureSize {
				http.Error(w, "invalid request signature", http.StatusUnauthorized)
				return
			}
			timestamp := r.Header.Get("X-Signature-Timestamp")
			if timestamp == "" {
				http.Error(w, "invalid request signature", http.StatusUnauthorized)
				return
			}

			body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
			if err != nil {
				http.Error(w, "could not read body", http.StatusBadRequest)
				return
			}
			r.Body.Close()

			signed := append([]byte(timestamp), body...)
			if !ed25519.Verify(publicKey, signed, signature) {
				http.Error(w, "invalid request signature", http.StatusUnauthorized)
				return
			}

			// Re-arm the body for the handler.
			r.Body = io.NopCloser(bytes.NewReader(body))
			next.ServeHTTP(w, r)
		})
	}
}
