package main

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

const (
	csrfTokenMaxAge = 1 * time.Hour
	visitorCookie   = "visitor_id"
)

var (
	csrfSecret     []byte
	csrfSecretOnce sync.Once
)

// getCSRFSecret returns the CSRF secret, loading from env var or generating randomly
func getCSRFSecret() []byte {
	csrfSecretOnce.Do(func() {
		if secret := os.Getenv("CSRF_SECRET"); secret != "" {
			csrfSecret = []byte(secret)
		} else {
			// Generate random secret for local/dev use
			csrfSecret = make([]byte, 32)
			if _, err := rand.Read(csrfSecret); err != nil {
				panic("failed to generate CSRF secret: " + err.Error())
			}
		}
	})
	return csrfSecret
}

// visitorID returns the caller's anonymous visitor ID, assigning one when
// absent. Tokens and report ownership are bound to it.
func visitorID(w http.ResponseWriter, r *http.Request) string {
	if cookie, err := r.Cookie(visitorCookie); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	id := uuid.NewString()
	SetSessionCookie(w, r, visitorCookie, id, int((24 * time.Hour).Seconds()))
	return id
}

// generateCSRFToken creates a signed CSRF token for the given visitor ID
// Format: timestamp.signature (base64 encoded)
func generateCSRFToken(visitor string) string {
	timestamp := time.Now().Unix()
	signature := computeCSRFSignature(visitor, timestamp)
	return fmt.Sprintf("%d.%s", timestamp, signature)
}

// validateCSRFToken checks if a CSRF token is valid for the given visitor ID
func validateCSRFToken(visitor string, token string) bool {
	parts := strings.SplitN(token, ".", 2)
	if len(parts) != 2 {
		return false
	}

	timestamp, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return false
	}

	// Check if token has expired
	if time.Now().Unix()-timestamp > int64(csrfTokenMaxAge.Seconds()) {
		return false
	}

	// Verify signature
	expectedSignature := computeCSRFSignature(visitor, timestamp)
	return hmac.Equal([]byte(parts[1]), []byte(expectedSignature))
}

// computeCSRFSignature generates the HMAC signature for a visitor ID and timestamp
func computeCSRFSignature(visitor string, timestamp int64) string {
	secret := getCSRFSecret()
	data := fmt.Sprintf("%s.%d", visitor, timestamp)

	h := hmac.New(sha256.New, secret)
	h.Write([]byte(data))
	return base64.URLEncoding.EncodeToString(h.Sum(nil))
}
