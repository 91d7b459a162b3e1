package presence

import (
	"testing"
	"time"

	"github.com/openble/tuya-ble-bridge/internal/products"
)

// fakeTimer is one scheduled callback under test control.
type fakeTimer struct {
	delay     time.Duration
	fn        func()
	cancelled bool
}

// fakeScheduler records scheduled callbacks and fires them on demand.
type fakeScheduler struct {
	timers []*fakeTimer
}

func (s *fakeScheduler) ScheduleAfter(delay time.Duration, fn func()) CancelFunc {
	timer := &fakeTimer{delay: delay, fn: fn}
	s.timers = append(s.timers, timer)
	return func() { timer.cancelled = true }
}

// fire runs timer i if it has not been cancelled.
func (s *fakeScheduler) fire(t *testing.T, i int) {
	t.Helper()
	if i >= len(s.timers) {
		t.Fatalf("no timer %d (have %d)", i, len(s.timers))
	}
	timer := s.timers[i]
	if timer.cancelled {
		t.Fatalf("timer %d already cancelled", i)
	}
	timer.fn()
}

// leakyScheduler models a real timer whose Stop loses the race with
// its own callback: cancellation never prevents a later fire.
type leakyScheduler struct {
	timers []func()
}

func (s *leakyScheduler) ScheduleAfter(delay time.Duration, fn func()) CancelFunc {
	s.timers = append(s.timers, fn)
	return func() {}
}

// fakeDevice captures the coordinator's callback registrations so the
// test can raise transport signals directly.
type fakeDevice struct {
	category  string
	productID string

	onConnect    func()
	onDisconnect func()
	onUpdate     func([]DatapointChange)
}

func (d *fakeDevice) Address() string         { return "AA:BB:CC:DD:EE:FF" }
func (d *fakeDevice) Name() string            { return "test device" }
func (d *fakeDevice) Category() string        { return d.category }
func (d *fakeDevice) ProductID() string       { return d.productID }
func (d *fakeDevice) ProductModel() string    { return "" }
func (d *fakeDevice) HardwareVersion() string { return "1.0" }
func (d *fakeDevice) DeviceVersion() string   { return "2.0" }
func (d *fakeDevice) ProtocolVersion() string { return "3.3" }
func (d *fakeDevice) DeviceID() string        { return "dev-1" }

func (d *fakeDevice) RegisterConnectedCallback(fn func())    { d.onConnect = fn }
func (d *fakeDevice) RegisterDisconnectedCallback(fn func()) { d.onDisconnect = fn }
func (d *fakeDevice) RegisterUpdateCallback(fn func([]DatapointChange)) {
	d.onUpdate = fn
}

// recordingRegistry counts sync calls.
type recordingRegistry struct {
	synced []products.DeviceInfo
}

func (r *recordingRegistry) SyncDevice(info products.DeviceInfo) {
	r.synced = append(r.synced, info)
}

// recordingDatapoints collects forwarded datapoint changes.
type recordingDatapoints struct {
	address  string
	deviceID string
	changes  [][]DatapointChange
}

func (r *recordingDatapoints) PublishDatapoints(address, deviceID string, changes []DatapointChange) {
	r.address = address
	r.deviceID = deviceID
	r.changes = append(r.changes, changes)
}

// recordingSink collects published events.
type recordingSink struct {
	events []Event
}

func (s *recordingSink) Publish(event Event) {
	s.events = append(s.events, event)
}

func newTestCoordinator(t *testing.T, device *fakeDevice, opts ...Option) (*Coordinator, *fakeScheduler, *int) {
	t.Helper()
	scheduler := &fakeScheduler{}
	c := NewCoordinator(device, scheduler, 30*time.Second, opts...)

	notifications := 0
	c.AddListener(func() { notifications++ })
	return c, scheduler, &notifications
}

func TestCoordinator_InitiallyDisconnected(t *testing.T) {
	device := &fakeDevice{}
	c, _, _ := newTestCoordinator(t, device)

	if c.Connected() {
		t.Error("Connected() = true before any signal")
	}
	if device.onConnect == nil || device.onDisconnect == nil || device.onUpdate == nil {
		t.Error("coordinator did not register all transport callbacks")
	}
}

func TestCoordinator_ConnectEdge(t *testing.T) {
	device := &fakeDevice{category: "wsdcg", productID: "ojzlzzsw"}
	registry := &recordingRegistry{}
	c, _, notifications := newTestCoordinator(t, device, WithRegistrySync(registry))

	device.onConnect()

	if !c.Connected() {
		t.Error("Connected() = false after connect signal")
	}
	if len(registry.synced) != 1 {
		t.Fatalf("registry synced %d times, want 1", len(registry.synced))
	}
	if registry.synced[0].Name != "Soil moisture sensor DDEEFF" {
		t.Errorf("synced info name = %q", registry.synced[0].Name)
	}
	if *notifications != 1 {
		t.Errorf("notifications = %d, want 1", *notifications)
	}

	// Idempotent connect while already connected: no re-sync, no
	// re-notify.
	device.onConnect()
	if len(registry.synced) != 1 || *notifications != 1 {
		t.Errorf("idempotent connect re-fired side effects: syncs=%d notifications=%d",
			len(registry.synced), *notifications)
	}
}

func TestCoordinator_DisconnectDebounce(t *testing.T) {
	device := &fakeDevice{}
	c, scheduler, notifications := newTestCoordinator(t, device)

	device.onConnect()
	*notifications = 0

	device.onDisconnect()
	if len(scheduler.timers) != 1 {
		t.Fatalf("timers = %d, want 1", len(scheduler.timers))
	}
	if !c.Connected() {
		t.Error("Connected() = false before grace elapsed")
	}
	if *notifications != 0 {
		t.Error("listeners notified before grace elapsed")
	}

	// A second disconnect within the window must not restart or stack.
	device.onDisconnect()
	if len(scheduler.timers) != 1 {
		t.Errorf("second disconnect armed another timer: %d", len(scheduler.timers))
	}

	scheduler.fire(t, 0)
	if c.Connected() {
		t.Error("Connected() = true after timer fired")
	}
	if *notifications != 1 {
		t.Errorf("notifications = %d, want 1", *notifications)
	}
}

func TestCoordinator_ConnectCancelsPendingTimer(t *testing.T) {
	device := &fakeDevice{}
	c, scheduler, notifications := newTestCoordinator(t, device)

	device.onConnect()
	device.onDisconnect()
	*notifications = 0

	// Reconnect within the grace window: timer cancelled, state stays
	// connected, and since no edge fired there is nothing to notify.
	device.onConnect()

	if !scheduler.timers[0].cancelled {
		t.Error("pending timer not cancelled by connect signal")
	}
	if !c.Connected() {
		t.Error("Connected() = false after reconnect within grace")
	}
	if *notifications != 0 {
		t.Errorf("notifications = %d, want 0 (no edge)", *notifications)
	}

	// A later disconnect arms a fresh timer.
	device.onDisconnect()
	if len(scheduler.timers) != 2 {
		t.Errorf("timers = %d, want 2", len(scheduler.timers))
	}
}

func TestCoordinator_DisconnectAfterFiredTimerRearms(t *testing.T) {
	device := &fakeDevice{}
	c, scheduler, _ := newTestCoordinator(t, device)

	device.onConnect()
	device.onDisconnect()
	scheduler.fire(t, 0)

	if c.Connected() {
		t.Fatal("Connected() = true after fired timer")
	}

	// The fired timer's reference was cleared, so a new disconnect
	// signal can arm again.
	device.onDisconnect()
	if len(scheduler.timers) != 2 {
		t.Errorf("timers = %d, want 2", len(scheduler.timers))
	}
}

func TestCoordinator_LateFiringCancelledTimerIgnored(t *testing.T) {
	device := &fakeDevice{}
	scheduler := &leakyScheduler{}
	c := NewCoordinator(device, scheduler, 30*time.Second)

	notifications := 0
	c.AddListener(func() { notifications++ })

	device.onConnect()
	device.onDisconnect()
	device.onConnect()
	notifications = 0

	// The reconnect cancelled the timer, but the callback was already in
	// flight. It must not force a disconnect.
	scheduler.timers[0]()

	if !c.Connected() {
		t.Error("Connected() = false after cancelled timer fired late")
	}
	if notifications != 0 {
		t.Errorf("notifications = %d, want 0", notifications)
	}
}

func TestCoordinator_StaleTimerDoesNotPreemptRearmed(t *testing.T) {
	device := &fakeDevice{}
	scheduler := &leakyScheduler{}
	c := NewCoordinator(device, scheduler, 30*time.Second)

	device.onConnect()
	device.onDisconnect()
	device.onConnect()
	device.onDisconnect()

	// The first window's callback fires late: the re-armed window is
	// still running, so the state must not flip early.
	scheduler.timers[0]()
	if !c.Connected() {
		t.Fatal("Connected() = false before the current grace window elapsed")
	}

	// The current window's timer is the one that counts.
	scheduler.timers[1]()
	if c.Connected() {
		t.Error("Connected() = true after the current timer fired")
	}
}

func TestCoordinator_UpdateForcesConnectPath(t *testing.T) {
	device := &fakeDevice{}
	registry := &recordingRegistry{}
	c, scheduler, notifications := newTestCoordinator(t, device, WithRegistrySync(registry))

	// Update while disconnected is an implicit connect edge plus a data
	// notification.
	device.onUpdate(nil)

	if !c.Connected() {
		t.Error("Connected() = false after update signal")
	}
	if len(registry.synced) != 1 {
		t.Errorf("registry synced %d times, want 1", len(registry.synced))
	}
	if *notifications != 2 {
		t.Errorf("notifications = %d, want 2 (edge + data)", *notifications)
	}

	// Update while a disconnect is pending cancels the timer.
	device.onDisconnect()
	device.onUpdate(nil)
	if !scheduler.timers[0].cancelled {
		t.Error("update did not cancel pending disconnect timer")
	}
}

func TestCoordinator_UpdateForwardsDatapoints(t *testing.T) {
	device := &fakeDevice{}
	sink := &recordingDatapoints{}
	_, _, _ = newTestCoordinator(t, device, WithDatapointSink(sink))

	device.onUpdate([]DatapointChange{{ID: 4, ChangedByDevice: true}, {ID: 5}})

	if len(sink.changes) != 1 {
		t.Fatalf("forwarded batches = %d, want 1", len(sink.changes))
	}
	if sink.address != "AA:BB:CC:DD:EE:FF" || sink.deviceID != "dev-1" {
		t.Errorf("sink identity = %s/%s", sink.address, sink.deviceID)
	}
	if len(sink.changes[0]) != 2 || sink.changes[0][0].ID != 4 || !sink.changes[0][0].ChangedByDevice {
		t.Errorf("forwarded changes = %+v", sink.changes[0])
	}

	// An update carrying no changes forwards nothing.
	device.onUpdate(nil)
	if len(sink.changes) != 1 {
		t.Errorf("empty update forwarded a batch: %d", len(sink.changes))
	}
}

func TestCoordinator_FingerbotButtonEvent(t *testing.T) {
	device := &fakeDevice{category: "szjqr", productID: "blliqpsj"}
	sink := &recordingSink{}
	_, _, _ = newTestCoordinator(t, device, WithEventSink(sink))

	// Switch datapoint (2 for this product), changed by the device.
	device.onUpdate([]DatapointChange{{ID: 2, ChangedByDevice: true}})

	if len(sink.events) != 1 {
		t.Fatalf("events = %d, want 1", len(sink.events))
	}
	event := sink.events[0]
	if event.Type != EventTypeFingerbotButton {
		t.Errorf("event type = %q", event.Type)
	}
	if event.Address != "AA:BB:CC:DD:EE:FF" || event.DeviceID != "dev-1" {
		t.Errorf("event = %+v, want device address and id", event)
	}
}

func TestCoordinator_NoButtonEventCases(t *testing.T) {
	tests := []struct {
		name    string
		device  *fakeDevice
		changes []DatapointChange
	}{
		{
			name:    "change not by device",
			device:  &fakeDevice{category: "szjqr", productID: "blliqpsj"},
			changes: []DatapointChange{{ID: 2, ChangedByDevice: false}},
		},
		{
			name:    "different datapoint",
			device:  &fakeDevice{category: "szjqr", productID: "blliqpsj"},
			changes: []DatapointChange{{ID: 8, ChangedByDevice: true}},
		},
		{
			name:    "product without manual control",
			device:  &fakeDevice{category: "szjqr", productID: "ltak7e1p"},
			changes: []DatapointChange{{ID: 2, ChangedByDevice: true}},
		},
		{
			name:    "unknown product",
			device:  &fakeDevice{category: "nope", productID: "nope"},
			changes: []DatapointChange{{ID: 2, ChangedByDevice: true}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sink := &recordingSink{}
			_, _, _ = newTestCoordinator(t, tt.device, WithEventSink(sink))

			tt.device.onUpdate(tt.changes)

			if len(sink.events) != 0 {
				t.Errorf("events = %v, want none", sink.events)
			}
		})
	}
}

func TestCoordinator_RemoveListener(t *testing.T) {
	device := &fakeDevice{}
	scheduler := &fakeScheduler{}
	c := NewCoordinator(device, scheduler, 30*time.Second)

	calls := 0
	remove := c.AddListener(func() { calls++ })

	device.onConnect()
	if calls != 1 {
		t.Fatalf("calls = %d, want 1", calls)
	}

	remove()
	device.onDisconnect()
	scheduler.fire(t, 0)
	if calls != 1 {
		t.Errorf("removed listener still invoked: calls = %d", calls)
	}
}
