package credentials

import "testing"

func fullLogin() Data {
	return Data{
		FieldEndpoint:     "https://openapi.tuyaeu.com",
		FieldAccessID:     "access-id",
		FieldAccessSecret: "access-secret",
		FieldUsername:     "user@example.com",
		FieldPassword:     "secret",
		FieldCountryCode:  "44",
	}
}

func TestDeriveKey_IgnoresExtraFields(t *testing.T) {
	base := fullLogin()

	extended := fullLogin()
	extended[FieldAddress] = "AA:BB:CC:DD:EE:FF"
	extended[FieldUUID] = "some-uuid"
	extended["unrelated"] = 42

	if DeriveKey(base) != DeriveKey(extended) {
		t.Error("DeriveKey() differs for records agreeing on all six login fields")
	}
}

func TestDeriveKey_DistinctForDifferentLogins(t *testing.T) {
	base := fullLogin()

	for _, field := range LoginFields {
		changed := fullLogin()
		changed[field] = "other-value"
		if DeriveKey(base) == DeriveKey(changed) {
			t.Errorf("DeriveKey() collides when %s differs", field)
		}
	}
}

func TestDeriveKey_AbsentFieldIsNull(t *testing.T) {
	partial := Data{
		FieldEndpoint: "https://openapi.tuyaeu.com",
	}

	explicit := Data{
		FieldEndpoint:     "https://openapi.tuyaeu.com",
		FieldAccessID:     nil,
		FieldAccessSecret: nil,
		FieldUsername:     nil,
		FieldPassword:     nil,
		FieldCountryCode:  nil,
	}

	if DeriveKey(partial) != DeriveKey(explicit) {
		t.Error("DeriveKey() treats absent and nil fields differently")
	}
}

func TestDeriveKey_Deterministic(t *testing.T) {
	data := fullLogin()
	first := DeriveKey(data)
	for i := 0; i < 10; i++ {
		if got := DeriveKey(data); got != first {
			t.Fatalf("DeriveKey() not deterministic: %q != %q", got, first)
		}
	}
}

func TestHasLogin(t *testing.T) {
	tests := []struct {
		name string
		data Data
		want bool
	}{
		{
			name: "complete login",
			data: fullLogin(),
			want: true,
		},
		{
			name: "missing field",
			data: Data{
				FieldEndpoint: "https://openapi.tuyaeu.com",
				FieldAccessID: "access-id",
			},
			want: false,
		},
		{
			name: "nil field",
			data: func() Data {
				d := fullLogin()
				d[FieldPassword] = nil
				return d
			}(),
			want: false,
		},
		{
			name: "empty data",
			data: Data{},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := HasLogin(tt.data); got != tt.want {
				t.Errorf("HasLogin() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestHasCredentials(t *testing.T) {
	complete := Data{
		FieldUUID:      "uuid",
		FieldLocalKey:  "key",
		FieldDeviceID:  "id",
		FieldCategory:  "co2bj",
		FieldProductID: "pid",
	}
	if !HasCredentials(complete) {
		t.Error("HasCredentials() = false for complete record")
	}

	for _, field := range MandatoryCredentialFields {
		partial := Data{}
		for k, v := range complete {
			if k != field {
				partial[k] = v
			}
		}
		if HasCredentials(partial) {
			t.Errorf("HasCredentials() = true with %s missing", field)
		}
	}
}
