package credentials

import (
	"encoding/json"
	"strings"
)

// DeriveKey turns a configuration record into a stable cache key.
//
// Exactly the six login context fields are read, in the canonical order
// of LoginFields; an absent field serializes as null. Two records that
// agree on those six fields always derive the same key, regardless of
// any other fields present. The function is pure and never fails -
// partial configuration is legal while probing.
//
// The key is a canonical JSON object, so it is stable across processes
// and safe to use directly as a map key.
func DeriveKey(data Data) string {
	var b strings.Builder
	b.WriteByte('{')
	for i, key := range LoginFields {
		if i > 0 {
			b.WriteString(", ")
		}
		writeJSON(&b, key)
		b.WriteString(": ")
		v, ok := data[key]
		if !ok {
			v = nil
		}
		writeJSON(&b, v)
	}
	b.WriteByte('}')
	return b.String()
}

// writeJSON marshals v into b, falling back to null for values that
// cannot be marshalled (functions, channels - never expected in config
// data, but the key derivation must not error).
func writeJSON(b *strings.Builder, v any) {
	raw, err := json.Marshal(v)
	if err != nil {
		b.WriteString("null")
		return
	}
	b.Write(raw)
}
