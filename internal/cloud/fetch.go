package cloud

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/openble/tuya-ble-bridge/internal/credentials"
)

// deviceRecord is one entry of the account's device list.
type deviceRecord struct {
	ID          string `json:"id"`
	UUID        string `json:"uuid"`
	LocalKey    string `json:"local_key"`
	Category    string `json:"category"`
	ProductID   string `json:"product_id"`
	Name        string `json:"name"`
	Model       string `json:"model"`
	ProductName string `json:"product_name"`
}

// factoryInfo is one factory record; the MAC field joins the cloud
// device to its physical hardware address.
type factoryInfo struct {
	ID  string `json:"id"`
	MAC string `json:"mac"`
}

// FetchCredentials retrieves the full credential table for a session's
// account: the device list, then one factory-info request per device to
// obtain the MAC address that keys the table.
//
// Partial failures never abort the batch. A device whose factory record
// is missing, unreadable, or has no usable MAC is skipped - it cannot
// be matched to a physical address later, so caching it is pointless.
//
// Parameters:
//   - ctx: Context for timeout/cancellation
//   - session: Session from a successful Login (must be *Session)
//
// Returns:
//   - map[string]credentials.Data: Credential records keyed by canonical address
//   - error: Only when the device list itself cannot be fetched
func (a *OpenAPI) FetchCredentials(ctx context.Context, session credentials.Session) (map[string]credentials.Data, error) {
	s, ok := session.(*Session)
	if !ok || s == nil {
		return nil, ErrNotAuthenticated
	}

	resp, err := a.get(ctx, s, fmt.Sprintf(devicesPathFmt, s.uid))
	if err != nil {
		return nil, err
	}
	if !resp.Success {
		return nil, fmt.Errorf("%w: listing devices: code %d: %s", ErrRequestFailed, resp.Code, resp.Msg)
	}

	var devices []deviceRecord
	if err := json.Unmarshal(resp.Result, &devices); err != nil {
		return nil, fmt.Errorf("%w: decoding device list: %w", ErrBadResponse, err)
	}

	table := make(map[string]credentials.Data, len(devices))
	for _, device := range devices {
		address, ok := a.resolveAddress(ctx, s, device.ID)
		if !ok {
			continue
		}
		table[address] = credentials.Data{
			credentials.FieldAddress:      address,
			credentials.FieldUUID:         device.UUID,
			credentials.FieldLocalKey:     device.LocalKey,
			credentials.FieldDeviceID:     device.ID,
			credentials.FieldCategory:     device.Category,
			credentials.FieldProductID:    device.ProductID,
			credentials.FieldDeviceName:   device.Name,
			credentials.FieldProductModel: device.Model,
			credentials.FieldProductName:  device.ProductName,
		}
	}
	return table, nil
}

// resolveAddress fetches a device's factory record and canonicalizes
// its MAC field. Returns false for any device that cannot be joined to
// a hardware address.
func (a *OpenAPI) resolveAddress(ctx context.Context, s *Session, deviceID string) (string, bool) {
	resp, err := a.get(ctx, s, fmt.Sprintf(factoryInfoPathFmt, deviceID))
	if err != nil {
		a.logger.Warn("factory info request failed", "device_id", deviceID, "error", err)
		return "", false
	}
	if !resp.Success {
		a.logger.Warn("factory info rejected", "device_id", deviceID, "code", resp.Code, "msg", resp.Msg)
		return "", false
	}

	var infos []factoryInfo
	if err := json.Unmarshal(resp.Result, &infos); err != nil {
		a.logger.Warn("factory info undecodable", "device_id", deviceID, "error", err)
		return "", false
	}
	if len(infos) == 0 || infos[0].MAC == "" {
		return "", false
	}

	address, err := credentials.CanonicalAddress(infos[0].MAC)
	if err != nil {
		a.logger.Warn("factory MAC not canonicalizable", "device_id", deviceID, "error", err)
		return "", false
	}
	return address, true
}
