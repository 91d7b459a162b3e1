package credentials

// Configuration field names shared across config entries, the cloud API,
// and the credential cache. These match the keys used in stored config
// entry data, so renaming one is a breaking change for persisted entries.
const (
	FieldAddress = "address"

	// Login context fields. All six together identify one cloud account.
	FieldEndpoint     = "endpoint"
	FieldAccessID     = "access_id"
	FieldAccessSecret = "access_secret"
	FieldUsername     = "username"
	FieldPassword     = "password"
	FieldCountryCode  = "country_code"

	// Mandatory credential fields. A record missing any of these cannot
	// open an encrypted session to the device.
	FieldUUID      = "uuid"
	FieldLocalKey  = "local_key"
	FieldDeviceID  = "device_id"
	FieldCategory  = "category"
	FieldProductID = "product_id"

	// Optional descriptive fields carried alongside credentials.
	FieldDeviceName   = "device_name"
	FieldProductModel = "product_model"
	FieldProductName  = "product_name"
)

// LoginFields lists the six login context fields in canonical order.
// Key derivation depends on this order; do not reorder.
var LoginFields = []string{
	FieldEndpoint,
	FieldAccessID,
	FieldAccessSecret,
	FieldUsername,
	FieldPassword,
	FieldCountryCode,
}

// MandatoryCredentialFields lists the five fields a valid credential
// record must carry.
var MandatoryCredentialFields = []string{
	FieldUUID,
	FieldLocalKey,
	FieldDeviceID,
	FieldCategory,
	FieldProductID,
}

// Data is a loosely-typed configuration record, as read from a stored
// config entry or supplied by a caller probing with partial information.
// Missing fields are legal; helpers like HasLogin report completeness.
type Data map[string]any

// stringField returns the string value of a field, or "" if the field
// is absent, nil, or not a string.
func stringField(data Data, key string) string {
	v, ok := data[key]
	if !ok || v == nil {
		return ""
	}
	s, ok := v.(string)
	if !ok {
		return ""
	}
	return s
}

// HasLogin reports whether data contains all six login context fields
// with non-nil values.
func HasLogin(data Data) bool {
	for _, key := range LoginFields {
		if v, ok := data[key]; !ok || v == nil {
			return false
		}
	}
	return true
}

// HasCredentials reports whether data contains all five mandatory
// credential fields with non-nil values.
func HasCredentials(data Data) bool {
	for _, key := range MandatoryCredentialFields {
		if v, ok := data[key]; !ok || v == nil {
			return false
		}
	}
	return true
}
