package credentials

import (
	"errors"
	"testing"
)

func TestCanonicalAddress(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    string
		wantErr bool
	}{
		{
			name: "bare lowercase hex",
			raw:  "aabbccddeeff",
			want: "AA:BB:CC:DD:EE:FF",
		},
		{
			name: "hyphenated",
			raw:  "aa-bb-cc-dd-ee-ff",
			want: "AA:BB:CC:DD:EE:FF",
		},
		{
			name: "already canonical",
			raw:  "AA:BB:CC:DD:EE:FF",
			want: "AA:BB:CC:DD:EE:FF",
		},
		{
			name: "mixed case",
			raw:  "Aa1B2c3D4e5F",
			want: "AA:1B:2C:3D:4E:5F",
		},
		{
			name:    "too short",
			raw:     "aabbccddee",
			wantErr: true,
		},
		{
			name:    "too long",
			raw:     "aabbccddeeff00",
			wantErr: true,
		},
		{
			name:    "non-hex characters",
			raw:     "aabbccddeegg",
			wantErr: true,
		},
		{
			name:    "empty",
			raw:     "",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := CanonicalAddress(tt.raw)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidAddress) {
					t.Errorf("CanonicalAddress(%q) error = %v, want ErrInvalidAddress", tt.raw, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("CanonicalAddress(%q) error = %v", tt.raw, err)
			}
			if got != tt.want {
				t.Errorf("CanonicalAddress(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}
