package random

import (
	mrand "math/rand"
)

const charset = "0123456789abcdefghijklmnopqrstuvwxyz"

// String returns a non cryptographic random string. It is only meant to keep
// client side keys generated within the same millisecond apart.
func String(length int) string {
	if length <= 0 {
		return ""
	}
	b := make([]byte, length)
	for i := range b {
		b[i] = charset[mrand.Intn(len(charset))]
	}
	return string(b)
}
