// Package gatesig signs and verifies gate device request bodies. It has no
// project imports so both the server middleware and the API client can use it.
package gatesig

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

const (
	Header = "X-Gate-Signature"
	prefix = "sha256="
)

// Sign returns the hex HMAC-SHA256 of body.
func Sign(body []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

// HeaderValue is what a device puts in Header.
func HeaderValue(body []byte, secret string) string {
	return prefix + Sign(body, secret)
}

// Parse strips the optional "sha256=" prefix from a header value.
func Parse(header string) string {
	header = strings.TrimSpace(header)
	if signature, found := strings.CutPrefix(header, prefix); found {
		return signature
	}
	return header
}

func Verify(body []byte, received string, secret string) bool {
	return hmac.Equal([]byte(Sign(body, secret)), []byte(strings.ToLower(received)))
}
