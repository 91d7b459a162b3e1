package bridge

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/openble/tuya-ble-bridge/internal/infrastructure/mqtt"
	"github.com/openble/tuya-ble-bridge/internal/presence"
	"github.com/openble/tuya-ble-bridge/internal/products"
)

// Publisher is the MQTT surface the hub publishes through.
// *mqtt.Client satisfies it.
type Publisher interface {
	Publish(topic string, payload []byte, qos byte, retained bool) error
	PublishRetained(topic string, payload []byte) error
}

// History is the optional time-series sink for availability and event
// records. *influxdb.Client satisfies it.
type History interface {
	WriteAvailability(address, deviceID string, available bool)
	WriteDeviceEvent(eventType, address, deviceID string)
}

// Subscriber is the inbound MQTT surface for device commands.
// *mqtt.Client satisfies it.
type Subscriber interface {
	Subscribe(topic string, qos byte, handler mqtt.MessageHandler) error
}

// DatapointWriter is the optional write surface of a device handle.
// Attached devices implementing it receive datapoint commands from the
// command topic. The transport enforces its own write timeout.
type DatapointWriter interface {
	WriteDatapoint(id int, value any) error
}

// Logger is the minimal logging surface the hub needs.
type Logger interface {
	Debug(msg string, args ...any)
	Warn(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Warn(string, ...any)  {}

// Option configures optional hub collaborators.
type Option func(*Hub)

// WithHistory wires a time-series sink. Availability transitions and
// domain events are recorded alongside the MQTT publishes.
func WithHistory(history History) Option {
	return func(h *Hub) { h.history = history }
}

// WithLogger wires a logger. Silent without one.
func WithLogger(logger Logger) Option {
	return func(h *Hub) { h.logger = logger }
}

// WithDisconnectGrace overrides the disconnect debounce delay applied
// to every attached device.
func WithDisconnectGrace(grace time.Duration) Option {
	return func(h *Hub) { h.grace = grace }
}

// WithScheduler overrides the timer capability used by coordinators.
func WithScheduler(scheduler presence.Scheduler) Option {
	return func(h *Hub) { h.scheduler = scheduler }
}

// Hub is the attachment point between live device sessions and the
// bridge's outputs. Attaching a device creates a presence coordinator
// for it and wires its side effects: availability state to a retained
// MQTT topic, registry descriptions on connect edges, fingerbot button
// events, and optional time-series history.
type Hub struct {
	publisher Publisher
	history   History
	scheduler presence.Scheduler
	grace     time.Duration
	logger    Logger
	topics    mqtt.Topics

	mu      sync.Mutex
	devices map[string]*attachment
}

type attachment struct {
	device      presence.Device
	coordinator *presence.Coordinator
	unlisten    presence.CancelFunc
}

// availabilityPayload is the retained availability message body.
type availabilityPayload struct {
	Available bool   `json:"available"`
	Address   string `json:"address"`
	DeviceID  string `json:"device_id,omitempty"`
}

// eventPayload is the domain event message body.
type eventPayload struct {
	Type     string `json:"type"`
	Address  string `json:"address"`
	DeviceID string `json:"device_id"`
}

// datapointsPayload is the datapoint update message body.
type datapointsPayload struct {
	Address    string           `json:"address"`
	DeviceID   string           `json:"device_id"`
	Datapoints []datapointEntry `json:"datapoints"`
}

type datapointEntry struct {
	ID              int  `json:"id"`
	ChangedByDevice bool `json:"changed_by_device"`
}

// commandPayload is the inbound datapoint command message body.
type commandPayload struct {
	ID    int `json:"id"`
	Value any `json:"value"`
}

// registryPayload is the retained registry description message body.
type registryPayload struct {
	Address         string `json:"address"`
	Name            string `json:"name"`
	Manufacturer    string `json:"manufacturer"`
	Model           string `json:"model"`
	HardwareVersion string `json:"hardware_version"`
	SoftwareVersion string `json:"software_version"`
}

// NewHub creates a hub publishing through the given publisher. The
// default scheduler uses real timers with the default disconnect grace.
func NewHub(publisher Publisher, opts ...Option) *Hub {
	h := &Hub{
		publisher: publisher,
		scheduler: presence.NewTimerScheduler(),
		grace:     presence.DefaultDisconnectGrace,
		logger:    noopLogger{},
		devices:   make(map[string]*attachment),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Attach creates a presence coordinator for the device and wires its
// outputs. Attaching an address that is already attached replaces the
// previous attachment.
func (h *Hub) Attach(device presence.Device) *presence.Coordinator {
	coordinator := presence.NewCoordinator(device, h.scheduler, h.grace,
		presence.WithRegistrySync(h),
		presence.WithEventSink(&deviceSink{hub: h, device: device}),
		presence.WithDatapointSink(h),
	)
	unlisten := coordinator.AddListener(func() {
		h.publishAvailability(device, coordinator.Connected())
	})

	h.mu.Lock()
	if previous, ok := h.devices[device.Address()]; ok {
		previous.unlisten()
	}
	h.devices[device.Address()] = &attachment{
		device:      device,
		coordinator: coordinator,
		unlisten:    unlisten,
	}
	h.mu.Unlock()

	h.logger.Debug("device attached", "address", device.Address())
	return coordinator
}

// Detach removes a device's attachment and publishes a final
// unavailable state. Unknown addresses are a no-op.
func (h *Hub) Detach(address string) {
	h.mu.Lock()
	att, ok := h.devices[address]
	if ok {
		att.unlisten()
		delete(h.devices, address)
	}
	h.mu.Unlock()

	if !ok {
		return
	}
	h.publishAvailability(att.device, false)
	h.logger.Debug("device detached", "address", address)
}

// Coordinator returns the coordinator for an attached address.
func (h *Hub) Coordinator(address string) (*presence.Coordinator, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	att, ok := h.devices[address]
	if !ok {
		return nil, false
	}
	return att.coordinator, true
}

// Len returns the number of attached devices.
func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.devices)
}

// SyncDevice publishes a retained registry description for the device.
// Called by coordinators on every genuine connect edge so version
// fields track firmware updates.
func (h *Hub) SyncDevice(info products.DeviceInfo) {
	payload, err := json.Marshal(registryPayload{
		Address:         info.Address,
		Name:            info.Name,
		Manufacturer:    info.Manufacturer,
		Model:           info.Model,
		HardwareVersion: info.HardwareVersion,
		SoftwareVersion: info.SoftwareVersion,
	})
	if err != nil {
		h.logger.Warn("failed to encode registry description", "address", info.Address, "error", err)
		return
	}
	if err := h.publisher.PublishRetained(h.topics.DeviceRegistry(info.Address), payload); err != nil {
		h.logger.Warn("failed to publish registry description", "address", info.Address, "error", err)
	}
}

// publishAvailability publishes the retained availability state and
// records it in history.
func (h *Hub) publishAvailability(device presence.Device, available bool) {
	payload, err := json.Marshal(availabilityPayload{
		Available: available,
		Address:   device.Address(),
		DeviceID:  device.DeviceID(),
	})
	if err != nil {
		h.logger.Warn("failed to encode availability", "address", device.Address(), "error", err)
		return
	}
	if err := h.publisher.PublishRetained(h.topics.DeviceAvailability(device.Address()), payload); err != nil {
		h.logger.Warn("failed to publish availability", "address", device.Address(), "error", err)
	}
	if h.history != nil {
		h.history.WriteAvailability(device.Address(), device.DeviceID(), available)
	}
}

// PublishDatapoints publishes a device's datapoint changes (not
// retained, QoS 1). Called by coordinators on every non-empty update.
func (h *Hub) PublishDatapoints(address, deviceID string, changes []presence.DatapointChange) {
	entries := make([]datapointEntry, 0, len(changes))
	for _, change := range changes {
		entries = append(entries, datapointEntry{
			ID:              change.ID,
			ChangedByDevice: change.ChangedByDevice,
		})
	}
	payload, err := json.Marshal(datapointsPayload{
		Address:    address,
		DeviceID:   deviceID,
		Datapoints: entries,
	})
	if err != nil {
		h.logger.Warn("failed to encode datapoints", "address", address, "error", err)
		return
	}
	if err := h.publisher.Publish(h.topics.DeviceDatapoints(address), payload, 1, false); err != nil {
		h.logger.Warn("failed to publish datapoints", "address", address, "error", err)
	}
}

// ListenCommands subscribes to the device command topic and routes
// datapoint writes to attached devices. Call once after the hub is
// constructed; the subscription survives broker reconnects.
func (h *Hub) ListenCommands(subscriber Subscriber) error {
	return subscriber.Subscribe(h.topics.AllCommands(), 1, h.handleCommand)
}

// handleCommand applies one inbound datapoint command. Returned errors
// are logged by the MQTT client's handler wrapper.
func (h *Hub) handleCommand(topic string, payload []byte) error {
	address, ok := h.topics.CommandAddress(topic)
	if !ok {
		return fmt.Errorf("unexpected command topic %q", topic)
	}

	h.mu.Lock()
	att, attached := h.devices[address]
	h.mu.Unlock()
	if !attached {
		return fmt.Errorf("command for unattached device %s", address)
	}

	writer, ok := att.device.(DatapointWriter)
	if !ok {
		return fmt.Errorf("device %s does not accept datapoint writes", address)
	}

	var cmd commandPayload
	if err := json.Unmarshal(payload, &cmd); err != nil {
		return fmt.Errorf("decoding command for %s: %w", address, err)
	}
	if err := writer.WriteDatapoint(cmd.ID, cmd.Value); err != nil {
		return fmt.Errorf("writing datapoint %d to %s: %w", cmd.ID, address, err)
	}

	h.logger.Debug("datapoint command applied", "address", address, "datapoint", cmd.ID)
	return nil
}

// publishEvent publishes a domain event (not retained, QoS 1) and
// records it in history.
func (h *Hub) publishEvent(event presence.Event) {
	payload, err := json.Marshal(eventPayload{
		Type:     event.Type,
		Address:  event.Address,
		DeviceID: event.DeviceID,
	})
	if err != nil {
		h.logger.Warn("failed to encode event", "type", event.Type, "error", err)
		return
	}
	if err := h.publisher.Publish(h.topics.Event(event.Type), payload, 1, false); err != nil {
		h.logger.Warn("failed to publish event", "type", event.Type, "error", err)
	}
	if h.history != nil {
		h.history.WriteDeviceEvent(event.Type, event.Address, event.DeviceID)
	}
}

// deviceSink adapts the hub to one device's event sink.
type deviceSink struct {
	hub    *Hub
	device presence.Device
}

func (s *deviceSink) Publish(event presence.Event) {
	s.hub.publishEvent(event)
}
