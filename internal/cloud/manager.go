package cloud

import (
	"context"
	"maps"
	"time"

	"github.com/openble/tuya-ble-bridge/internal/credentials"
)

// LoginResult is the remote service's verdict on a login attempt.
// Rejections are results, not errors: Code and Message carry the
// platform's diagnostics for the consuming surface to display.
type LoginResult struct {
	Success bool
	Code    int
	Message string

	// Session is the authenticated handle, set only on success.
	Session credentials.Session
}

// API is the remote service contract the Manager drives: a black-box
// login plus a full credential fetch for an authenticated session.
// OpenAPI is the production implementation; tests substitute fakes.
type API interface {
	Login(ctx context.Context, login credentials.Data) LoginResult
	FetchCredentials(ctx context.Context, session credentials.Session) (map[string]credentials.Data, error)
}

// Logger is the minimal logging surface the cloud package needs.
// Compatible with logging.Logger and slog.Logger.
type Logger interface {
	Debug(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// noopLogger discards all log output. Used when no logger is injected.
type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// FetchObserver is notified after each completed credential fetch.
// Wired to the history sink by the caller; may be nil.
type FetchObserver func(cacheKey string, deviceCount int, elapsed time.Duration)

// Manager resolves device credentials for one configuration record.
//
// Each Manager owns a local data record (typically one config entry's
// stored fields) and shares the process-wide credential store with all
// other Managers. Resolution follows a strict precedence: the local
// record itself, then a direct login match, then a scan of every cached
// entry for the requested address.
//
// Thread Safety:
//   - The shared store is safe for concurrent use. The local data
//     record is not; use one Manager per cooperating flow.
type Manager struct {
	data    credentials.Data
	store   *credentials.Store
	api     API
	logger  Logger
	onFetch FetchObserver
}

// NewManager creates a credential manager for one configuration record.
//
// Parameters:
//   - data: The caller's local configuration record. The Manager keeps
//     the reference: save-data resolutions update it in place.
//   - store: The shared process-wide credential store
//   - api: Remote service client
//   - logger: Optional logger (nil for silent operation)
func NewManager(data credentials.Data, store *credentials.Store, api API, logger Logger) *Manager {
	if data == nil {
		data = credentials.Data{}
	}
	if logger == nil {
		logger = noopLogger{}
	}
	return &Manager{
		data:   data,
		store:  store,
		api:    api,
		logger: logger,
	}
}

// SetFetchObserver registers a callback invoked after each credential
// fetch completes, with the cache key, record count, and elapsed time.
func (m *Manager) SetFetchObserver(observer FetchObserver) {
	m.onFetch = observer
}

// Data returns the manager's local configuration record. Mutated in
// place by save-data resolutions and GetLoginFromCache.
func (m *Manager) Data() credentials.Data {
	return m.data
}

// Login authenticates the manager's own configuration record.
//
// When cache is true, a successful login creates or refreshes the
// store entry for the record's derived key, keeping any credentials
// already discovered under that key. A failed login leaves the store
// untouched.
func (m *Manager) Login(ctx context.Context, cache bool) LoginResult {
	return m.login(ctx, m.data, cache)
}

// HasCachedLogin reports whether the store already has an entry for
// the manager's own derived key.
func (m *Manager) HasCachedLogin() bool {
	return m.store.Has(credentials.DeriveKey(m.data))
}

// login authenticates an arbitrary record and optionally caches the
// resulting session under its derived key.
func (m *Manager) login(ctx context.Context, data credentials.Data, cache bool) LoginResult {
	if len(data) == 0 {
		return LoginResult{}
	}

	result := m.api.Login(ctx, data)
	if !result.Success {
		m.logger.Error("tuya cloud login failed",
			"username", stringValue(data[credentials.FieldUsername]),
			"code", result.Code,
			"msg", result.Message,
		)
		return result
	}

	m.logger.Debug("tuya cloud login succeeded",
		"username", stringValue(data[credentials.FieldUsername]),
	)
	if cache {
		m.store.UpsertLogin(credentials.DeriveKey(data), result.Session, data)
	}
	return result
}

// fillEntry fetches the full credential table for an entry's session
// and merges it into the store. Fetch failures are logged and absorbed;
// the entry keeps whatever it already had.
func (m *Manager) fillEntry(ctx context.Context, key string) {
	session, ok := m.store.Session(key)
	if !ok {
		return
	}

	start := time.Now()
	table, err := m.api.FetchCredentials(ctx, session)
	if err != nil {
		m.logger.Warn("credential fetch failed", "error", err)
		return
	}
	m.store.Fill(key, table)

	if m.onFetch != nil {
		m.onFetch(key, len(table), time.Since(start))
	}
}

// findCacheKeyForAddress determines which store entry should answer a
// resolution for address: the manager's own derived key when its local
// record is a complete login context, otherwise the first cached entry
// whose credential table already contains the address.
func (m *Manager) findCacheKeyForAddress(address string) (string, bool) {
	if credentials.HasLogin(m.data) {
		return credentials.DeriveKey(m.data), true
	}
	return m.store.FindKeyForAddress(address)
}

// ensureEntry makes sure the entry for key exists and has been filled:
// logging in with the manager's own record if the entry is missing,
// then fetching credentials into it.
func (m *Manager) ensureEntry(ctx context.Context, key string) {
	if !m.store.Has(key) {
		if !m.Login(ctx, true).Success {
			return
		}
	}
	if m.store.Has(key) {
		m.fillEntry(ctx, key)
	}
}

// GetDeviceCredentials resolves the credential set for a hardware
// address.
//
// Precedence, first success wins:
//  1. Unless forceUpdate is set, a complete credential set already in
//     the manager's local record is returned directly - no store or
//     network access.
//  2. A cache key is determined (direct login match, else address
//     scan). No key means a definitive miss.
//  3. If the entry is missing or forceUpdate is set, a login and a
//     full fetch populate it. An entry that already exists is used
//     as-is - no redundant login.
//  4. The address is looked up in the entry's credential table.
//
// When saveData is set, a successful resolution merges the entry's
// login snapshot and the credential fields into the manager's local
// record, so the next resolution short-circuits at step 1.
//
// Returns:
//   - credentials.DeviceCredentials: The resolved credential set
//   - bool: false on a miss (not an error - the address is unknown)
func (m *Manager) GetDeviceCredentials(ctx context.Context, address string, forceUpdate, saveData bool) (credentials.DeviceCredentials, bool) {
	var record credentials.Data
	var entryKey string
	var fromEntry bool

	if !forceUpdate && credentials.HasCredentials(m.data) {
		record = maps.Clone(m.data)
	} else {
		key, ok := m.findCacheKeyForAddress(address)
		if ok {
			if forceUpdate || !m.store.Has(key) {
				m.ensureEntry(ctx, key)
			}
			if m.store.Has(key) {
				entryKey = key
				fromEntry = true
				record, _ = m.store.Credentials(key, address)
			}
		}
	}

	if record == nil {
		return credentials.DeviceCredentials{}, false
	}

	creds, err := credentials.FromData(record)
	if err != nil {
		m.logger.Warn("cached record incomplete", "address", address, "error", err)
		return credentials.DeviceCredentials{}, false
	}
	m.logger.Debug("credentials resolved", "address", address, "credentials", creds)

	if saveData {
		if fromEntry {
			if login, ok := m.store.Login(entryKey); ok {
				maps.Copy(m.data, login)
			}
		}
		maps.Copy(m.data, record)
	}

	return creds, true
}

// BuildCache pre-warms the store from external configuration record
// sources (account-level and device-level config entries).
//
// Every record that is a complete login context gets its entry ensured
// and filled exactly once per derived key: keys whose entries already
// hold a non-empty credential table are skipped, so two records sharing
// an account cost one login and one fetch. Failed logins are logged and
// skipped; the sweep never aborts.
func (m *Manager) BuildCache(ctx context.Context, sources ...[]credentials.Data) {
	for _, source := range sources {
		for _, data := range source {
			if !credentials.HasLogin(data) {
				continue
			}
			key := credentials.DeriveKey(data)
			if m.store.Has(key) && m.store.CredentialCount(key) > 0 {
				continue
			}
			if !m.login(ctx, data, true).Success {
				continue
			}
			if m.store.CredentialCount(key) == 0 {
				m.fillEntry(ctx, key)
			}
		}
	}
}

// GetLoginFromCache pre-fills the manager's local record with the login
// snapshot of an arbitrary cached entry. Best effort for new
// configuration flows; which entry is chosen is unspecified.
func (m *Manager) GetLoginFromCache() {
	if login, ok := m.store.FirstLogin(); ok {
		maps.Copy(m.data, login)
	}
}
