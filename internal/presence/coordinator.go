package presence

import (
	"sync"
	"time"

	"github.com/openble/tuya-ble-bridge/internal/products"
)

// DefaultDisconnectGrace is the debounce delay applied before a
// disconnect signal is surfaced as unavailability. BLE transports
// report spurious brief disconnects; collapsing them prevents flapping
// availability from reaching dependents.
const DefaultDisconnectGrace = 30 * time.Second

// Logger is the minimal logging surface the coordinator needs.
type Logger interface {
	Debug(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}

// Option configures optional coordinator collaborators.
type Option func(*Coordinator)

// WithRegistrySync wires the registry synchronized on connect edges.
func WithRegistrySync(registry RegistrySync) Option {
	return func(c *Coordinator) { c.registry = registry }
}

// WithEventSink wires the sink domain events are published to.
func WithEventSink(events EventSink) Option {
	return func(c *Coordinator) { c.events = events }
}

// WithDatapointSink wires the sink datapoint changes are forwarded to.
func WithDatapointSink(datapoints DatapointSink) Option {
	return func(c *Coordinator) { c.datapoints = datapoints }
}

// WithLogger wires a logger. Silent without one.
func WithLogger(logger Logger) Option {
	return func(c *Coordinator) { c.logger = logger }
}

// Coordinator converts one device's noisy connect/disconnect signals
// into a debounced availability state with exactly-once side effects
// per transition.
//
// State machine: Disconnected (initial) and Connected, with a pending
// grace timer as a transient sub-condition of Connected. A connect
// signal always cancels a pending timer but synchronizes the registry
// and notifies listeners only on a genuine edge. A disconnect signal
// arms the grace timer if none is pending; further disconnects within
// the window are no-ops. The timer firing uncancelled is the only path
// to Disconnected.
//
// Thread Safety:
//   - Transport callbacks and the timer may run on different
//     goroutines; all state is guarded by one mutex. Listeners are
//     invoked outside the lock and must not call back into the
//     coordinator synchronously from the same goroutine chain.
type Coordinator struct {
	device     Device
	scheduler  Scheduler
	grace      time.Duration
	registry   RegistrySync
	events     EventSink
	datapoints DatapointSink
	logger     Logger

	mu               sync.Mutex
	disconnected     bool
	cancelDisconnect CancelFunc
	disconnectSeq    int
	listeners        map[int]func()
	nextListenerID   int
}

// NewCoordinator creates a coordinator for one device and registers its
// transport callbacks. The initial state is disconnected.
//
// Parameters:
//   - device: The live transport handle to observe
//   - scheduler: Timer capability for the disconnect grace period
//   - grace: Debounce delay (use DefaultDisconnectGrace when unsure)
//   - opts: Optional registry sync, event sink, and logger
func NewCoordinator(device Device, scheduler Scheduler, grace time.Duration, opts ...Option) *Coordinator {
	c := &Coordinator{
		device:       device,
		scheduler:    scheduler,
		grace:        grace,
		logger:       noopLogger{},
		disconnected: true,
		listeners:    make(map[int]func()),
	}
	for _, opt := range opts {
		opt(c)
	}

	device.RegisterConnectedCallback(c.handleConnect)
	device.RegisterDisconnectedCallback(c.handleDisconnect)
	device.RegisterUpdateCallback(c.handleUpdate)

	return c
}

// Connected reports the debounced availability state.
func (c *Coordinator) Connected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return !c.disconnected
}

// AddListener registers a no-payload state-change notification.
// Returns a function that removes the listener.
func (c *Coordinator) AddListener(fn func()) CancelFunc {
	c.mu.Lock()
	id := c.nextListenerID
	c.nextListenerID++
	c.listeners[id] = fn
	c.mu.Unlock()

	return func() {
		c.mu.Lock()
		delete(c.listeners, id)
		c.mu.Unlock()
	}
}

// handleConnect processes a connect signal. Cancelling a pending grace
// timer is signal-triggered; registry sync and notification are
// edge-triggered.
func (c *Coordinator) handleConnect() {
	c.mu.Lock()
	if c.cancelDisconnect != nil {
		c.cancelDisconnect()
		c.cancelDisconnect = nil
	}
	edge := c.disconnected
	if edge {
		c.disconnected = false
	}
	c.mu.Unlock()

	if !edge {
		return
	}

	c.logger.Debug("device connected", "address", c.device.Address())
	if c.registry != nil {
		c.registry.SyncDevice(products.InfoFor(c.device))
	}
	c.notifyListeners()
}

// handleDisconnect arms the grace timer. A second disconnect while one
// is pending neither restarts nor stacks timers.
func (c *Coordinator) handleDisconnect() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cancelDisconnect != nil {
		return
	}
	c.logger.Debug("device disconnect signalled, grace timer armed",
		"address", c.device.Address(),
		"grace", c.grace,
	)
	c.disconnectSeq++
	seq := c.disconnectSeq
	c.cancelDisconnect = c.scheduler.ScheduleAfter(c.grace, func() {
		c.setDisconnected(seq)
	})
}

// setDisconnected runs when the grace timer fires. A real timer's
// cancel can lose the race with its own callback already in flight, so
// firing alone does not prove the timer was uncancelled: a cleared
// timer reference or a stale sequence number means a connect signal
// got there first, and the firing must be ignored.
func (c *Coordinator) setDisconnected(seq int) {
	c.mu.Lock()
	if c.cancelDisconnect == nil || seq != c.disconnectSeq {
		c.mu.Unlock()
		return
	}
	c.disconnected = true
	c.cancelDisconnect = nil
	c.mu.Unlock()

	c.logger.Debug("device disconnected", "address", c.device.Address())
	c.notifyListeners()
}

// handleUpdate processes a datapoint update. Any update is an implicit
// connect signal: it forces the connected path before delivering the
// payload. Changes are forwarded to the datapoint sink, and
// device-initiated changes to a fingerbot's switch datapoint
// additionally emit a domain event.
func (c *Coordinator) handleUpdate(changes []DatapointChange) {
	c.handleConnect()
	c.notifyListeners()

	if c.datapoints != nil && len(changes) > 0 {
		c.datapoints.PublishDatapoints(c.device.Address(), c.device.DeviceID(), changes)
	}

	if c.events == nil {
		return
	}
	info := products.InfoByIDs(c.device.Category(), c.device.ProductID())
	if info == nil || info.Fingerbot == nil || info.Fingerbot.ManualControl == 0 {
		return
	}
	for _, change := range changes {
		if change.ID == info.Fingerbot.Switch && change.ChangedByDevice {
			c.events.Publish(Event{
				Type:     EventTypeFingerbotButton,
				Address:  c.device.Address(),
				DeviceID: c.device.DeviceID(),
			})
		}
	}
}

// notifyListeners invokes every registered listener outside the lock.
func (c *Coordinator) notifyListeners() {
	c.mu.Lock()
	fns := make([]func(), 0, len(c.listeners))
	for _, fn := range c.listeners {
		fns = append(fns, fn)
	}
	c.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
}
