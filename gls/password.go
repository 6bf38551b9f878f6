package gls

import (
	"crypto/sha512"
	"strconv"
	"strings"
)

// passwordHash is the SHA-512 digest of a password. The service expects it as
// a JSON array of byte values, not base64 or hex.
type passwordHash [sha512.Size]byte

func hashOf(password string) passwordHash {
	return passwordHash(sha512.Sum512([]byte(password)))
}

func (h passwordHash) String() string {
	var sb strings.Builder
	sb.Grow(len(h)*4 + 2)
	sb.WriteByte('[')
	for i, b := range h {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(strconv.Itoa(int(b)))
	}
	sb.WriteByte(']')
	return sb.String()
}

// MarshalJSON implements json.Marshaler
func (h passwordHash) MarshalJSON() ([]byte, error) {
	return []byte(h.String()), nil
}

// HashPassword returns the SHA-512 digest of password as a byte array
// literal, e.g. "[207,131,225,...,62]".
func HashPassword(password string) string {
	return hashOf(password).String()
}
