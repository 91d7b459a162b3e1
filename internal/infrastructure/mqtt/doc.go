// Package mqtt provides MQTT client infrastructure for the Tuya BLE bridge.
//
// It wraps eclipse/paho.mqtt.golang with bridge-specific functionality:
//
//   - Connection management with auto-reconnect and exponential backoff
//   - Last Will and Testament (LWT) for offline detection
//   - Subscription tracking and restoration on reconnect
//   - Retained availability state for late subscribers
//   - Panic recovery in message handlers
//
// # Topic Scheme
//
// All topics live under the "tuyable" prefix:
//
//	tuyable/system/status              Bridge online/offline (retained, LWT)
//	tuyable/availability/{address}     Device availability state (retained)
//	tuyable/registry/{address}         Device registry description (retained)
//	tuyable/datapoints/{address}       Device datapoint updates
//	tuyable/event/{type}               Domain events (button presses, etc.)
//	tuyable/command/{address}          Inbound datapoint commands (bridge subscribes)
//
// Use the Topics helper to build topic strings rather than formatting
// them by hand.
//
// # Usage
//
//	client, err := mqtt.Connect(cfg.MQTT)
//	if err != nil {
//	    return fmt.Errorf("mqtt connect: %w", err)
//	}
//	defer client.Close()
//
//	topic := mqtt.Topics{}.DeviceAvailability(address)
//	err = client.PublishRetained(topic, payload)
package mqtt
