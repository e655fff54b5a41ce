// Package tokens genera los valores aleatorios del flujo OAuth.
package tokens

import (
	"strings"

	"github.com/google/uuid"
)

// NewState genera un state CSRF opaco (UUIDv4, crypto/rand).
func NewState() string {
	return uuid.NewString()
}

// NewNonce genera un nonce OAuth1.0a: UUIDv4 sin guiones.
func NewNonce() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}
