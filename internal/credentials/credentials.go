package credentials

import "fmt"

// DeviceCredentials holds the secrets required to open an encrypted
// session to one BLE device. Immutable once constructed; build with
// New or FromData so mandatory fields are always validated.
type DeviceCredentials struct {
	UUID      string
	LocalKey  string
	DeviceID  string
	Category  string
	ProductID string

	// Descriptive fields, may be empty.
	DeviceName   string
	ProductModel string
	ProductName  string
}

// New constructs a credential set, rejecting records missing any
// mandatory field.
//
// Returns:
//   - DeviceCredentials: Validated credential set
//   - error: ErrIncompleteCredentials if a mandatory field is empty
func New(uuid, localKey, deviceID, category, productID, deviceName, productModel, productName string) (DeviceCredentials, error) {
	switch {
	case uuid == "":
		return DeviceCredentials{}, fmt.Errorf("%w: uuid", ErrIncompleteCredentials)
	case localKey == "":
		return DeviceCredentials{}, fmt.Errorf("%w: local_key", ErrIncompleteCredentials)
	case deviceID == "":
		return DeviceCredentials{}, fmt.Errorf("%w: device_id", ErrIncompleteCredentials)
	case category == "":
		return DeviceCredentials{}, fmt.Errorf("%w: category", ErrIncompleteCredentials)
	case productID == "":
		return DeviceCredentials{}, fmt.Errorf("%w: product_id", ErrIncompleteCredentials)
	}

	return DeviceCredentials{
		UUID:         uuid,
		LocalKey:     localKey,
		DeviceID:     deviceID,
		Category:     category,
		ProductID:    productID,
		DeviceName:   deviceName,
		ProductModel: productModel,
		ProductName:  productName,
	}, nil
}

// FromData builds a credential set from a configuration record.
//
// Returns:
//   - DeviceCredentials: Validated credential set
//   - error: ErrIncompleteCredentials if a mandatory field is missing
func FromData(data Data) (DeviceCredentials, error) {
	return New(
		stringField(data, FieldUUID),
		stringField(data, FieldLocalKey),
		stringField(data, FieldDeviceID),
		stringField(data, FieldCategory),
		stringField(data, FieldProductID),
		stringField(data, FieldDeviceName),
		stringField(data, FieldProductModel),
		stringField(data, FieldProductName),
	)
}

// ToData returns the credential fields as a configuration record,
// suitable for merging into a caller's stored data.
func (c DeviceCredentials) ToData() Data {
	data := Data{
		FieldUUID:      c.UUID,
		FieldLocalKey:  c.LocalKey,
		FieldDeviceID:  c.DeviceID,
		FieldCategory:  c.Category,
		FieldProductID: c.ProductID,
	}
	if c.DeviceName != "" {
		data[FieldDeviceName] = c.DeviceName
	}
	if c.ProductModel != "" {
		data[FieldProductModel] = c.ProductModel
	}
	if c.ProductName != "" {
		data[FieldProductName] = c.ProductName
	}
	return data
}

// String implements fmt.Stringer with secrets redacted. Credentials
// routinely end up in debug logs; the secret fields must never.
func (c DeviceCredentials) String() string {
	return fmt.Sprintf(
		"uuid: xxxxxxxxxxxxxxxx, local_key: xxxxxxxxxxxxxxxx, device_id: xxxxxxxxxxxxxxxx, "+
			"category: %s, product_id: %s, device_name: %s, product_model: %s, product_name: %s",
		c.Category, c.ProductID, c.DeviceName, c.ProductModel, c.ProductName,
	)
}
