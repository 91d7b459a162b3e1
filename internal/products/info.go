package products

import (
	"fmt"
	"strings"
)

// Identity is the slice of a live device handle the info builders need.
// The presence package's Device satisfies it.
type Identity interface {
	Address() string
	Name() string
	Category() string
	ProductID() string
	ProductModel() string
	HardwareVersion() string
	DeviceVersion() string
	ProtocolVersion() string
}

// DeviceInfo is the registry-facing description of one device, built
// from the live handle plus the product catalogue. Registry sync pushes
// it out on every genuine connect edge so version fields track firmware
// updates.
type DeviceInfo struct {
	Address         string
	Name            string
	Manufacturer    string
	Model           string
	HardwareVersion string
	SoftwareVersion string
}

// ShortAddress returns the last three octets of a hardware address
// without separators, used to disambiguate device names.
//
//	"AA:BB:CC:DD:EE:FF" -> "DDEEFF"
func ShortAddress(address string) string {
	parts := strings.Split(strings.ToUpper(strings.ReplaceAll(address, "-", ":")), ":")
	if len(parts) < 3 {
		return strings.ToUpper(address)
	}
	short := parts[len(parts)-3] + parts[len(parts)-2] + parts[len(parts)-1]
	if len(short) > 6 {
		short = short[len(short)-6:]
	}
	return short
}

// ReadableName builds a user-facing device name: the product's
// catalogue name when known, the given fallback otherwise, suffixed
// with the short address.
func ReadableName(category, productID, fallback, address string) string {
	name := fallback
	if product := InfoByIDs(category, productID); product != nil {
		name = product.Name
	}
	return fmt.Sprintf("%s %s", name, ShortAddress(address))
}

// InfoFor builds the registry description for a device.
func InfoFor(d Identity) DeviceInfo {
	var product *ProductInfo
	if d.Category() != "" && d.ProductID() != "" {
		product = InfoByIDs(d.Category(), d.ProductID())
	}

	name := d.Name()
	if product != nil {
		name = product.Name
	}

	model := d.ProductModel()
	if model == "" {
		model = name
	}

	return DeviceInfo{
		Address:         d.Address(),
		Name:            fmt.Sprintf("%s %s", name, ShortAddress(d.Address())),
		Manufacturer:    ManufacturerOf(product),
		Model:           fmt.Sprintf("%s (%s)", model, d.ProductID()),
		HardwareVersion: d.HardwareVersion(),
		SoftwareVersion: fmt.Sprintf("%s (protocol %s)", d.DeviceVersion(), d.ProtocolVersion()),
	}
}
