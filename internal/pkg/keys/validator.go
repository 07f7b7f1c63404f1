package keys

import (
	"encoding/hex"
	"strings"
)

// privateKeyHexLength is the number of hex characters in a raw secp256k1 key.
const privateKeyHexLength = 64

// placeholderCredentials are values that look like credentials but are known
// template leftovers and must never be treated as usable keys.
var placeholderCredentials = map[string]struct{}{
	"0x":    {},
	"0x...": {},
}

// IsPlaceholder reports whether raw is blank or one of the known placeholder
// strings left by configuration templates.
func IsPlaceholder(raw string) bool {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return true
	}
	_, ok := placeholderCredentials[trimmed]
	return ok
}

// IsValidCredential validates a private key string's format before use.
// It strips an optional "0x" prefix and requires exactly 64 hexadecimal
// characters (case-insensitive). Pure, no side effects, no I/O.
func IsValidCredential(raw string) bool {
	trimmed := strings.TrimSpace(raw)
	if IsPlaceholder(trimmed) {
		return false
	}

	trimmed = strings.TrimPrefix(trimmed, "0x")
	trimmed = strings.TrimPrefix(trimmed, "0X")
	if len(trimmed) != privateKeyHexLength {
		return false
	}

	_, err := hex.DecodeString(trimmed)
	return err == nil
}
