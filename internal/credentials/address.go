package credentials

import (
	"fmt"
	"strings"
)

// macHexDigits is the number of hex digits in a 6-byte MAC field.
const macHexDigits = 12

// CanonicalAddress converts a raw factory MAC field into the canonical
// address form used as the cache join key.
//
// The factory record carries the MAC as 12 hex digits, sometimes with
// hyphen or colon separators. The canonical form is colon-separated
// uppercase hex pairs:
//
//	"aabbccddeeff"  -> "AA:BB:CC:DD:EE:FF"
//	"aa-bb-cc-dd-ee-ff" -> "AA:BB:CC:DD:EE:FF"
//
// Returns:
//   - string: The canonical address
//   - error: ErrInvalidAddress if the field is not a 12-hex-digit MAC
func CanonicalAddress(raw string) (string, error) {
	hex := strings.NewReplacer("-", "", ":", "").Replace(raw)
	if len(hex) != macHexDigits {
		return "", fmt.Errorf("%w: %q is not a 12-hex-digit MAC", ErrInvalidAddress, raw)
	}
	for _, r := range hex {
		if !isHexDigit(r) {
			return "", fmt.Errorf("%w: %q contains non-hex characters", ErrInvalidAddress, raw)
		}
	}

	pairs := make([]string, 0, macHexDigits/2)
	for i := 0; i < macHexDigits; i += 2 {
		pairs = append(pairs, hex[i:i+2])
	}
	return strings.ToUpper(strings.Join(pairs, ":")), nil
}

func isHexDigit(r rune) bool {
	switch {
	case r >= '0' && r <= '9':
		return true
	case r >= 'a' && r <= 'f':
		return true
	case r >= 'A' && r <= 'F':
		return true
	}
	return false
}
