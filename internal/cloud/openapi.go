package cloud

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/md5" // #nosec G501 -- the Tuya login API requires an MD5 password digest
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/openble/tuya-ble-bridge/internal/credentials"
)

// Tuya OpenAPI paths.
const (
	// loginPath authenticates a smart-home account and returns an
	// access token plus the account owner uid.
	loginPath = "/v1.0/iot-01/associated-users/actions/authorized-login"

	// devicesPathFmt lists all devices paired to an account owner.
	devicesPathFmt = "/v1.0/users/%s/devices"

	// factoryInfoPathFmt returns factory records (including the MAC
	// field) for a device id.
	factoryInfoPathFmt = "/v1.0/devices/factory-infos?device_ids=%s"
)

const (
	signMethod     = "HMAC-SHA256"
	devChannel     = "tuyabridge"
	requestTimeout = 30 * time.Second
)

// apiResponse is the envelope every OpenAPI endpoint answers with.
type apiResponse struct {
	Success bool            `json:"success"`
	Code    int             `json:"code"`
	Msg     string          `json:"msg"`
	Result  json.RawMessage `json:"result"`
	T       int64           `json:"t"`
}

// tokenResult is the payload of a successful login.
type tokenResult struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	UID          string `json:"uid"`
	ExpireTime   int64  `json:"expire_time"`
}

// Session is one authenticated handle to the Tuya OpenAPI. It carries
// the signing material and access token for a single account and
// satisfies credentials.Session.
type Session struct {
	api          *OpenAPI
	endpoint     string
	accessID     string
	accessSecret string
	accessToken  string
	uid          string
}

// OwnerID returns the account owner uid the session authenticated as.
func (s *Session) OwnerID() string { return s.uid }

// OpenAPI is the HTTP client for the Tuya IoT platform. It implements
// the API contract consumed by Manager: black-box login plus paginated
// credential retrieval. One OpenAPI instance serves any number of
// accounts; per-account state lives in the Session it returns.
type OpenAPI struct {
	httpClient *http.Client
	logger     Logger
}

// NewOpenAPI creates an OpenAPI client. Pass nil to use a default
// HTTP client with a 30 second timeout.
func NewOpenAPI(httpClient *http.Client, logger Logger) *OpenAPI {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: requestTimeout}
	}
	if logger == nil {
		logger = noopLogger{}
	}
	return &OpenAPI{
		httpClient: httpClient,
		logger:     logger,
	}
}

// Login authenticates a smart-home account against the Tuya OpenAPI.
//
// An empty login record short-circuits to a neutral unsuccessful result
// without a network call - probing with no configuration is legal. A
// rejected login is likewise not an error: the remote code and message
// are carried in the result for the caller to surface.
//
// Parameters:
//   - ctx: Context for timeout/cancellation
//   - login: Configuration record with the six login context fields
//
// Returns:
//   - LoginResult: Verdict plus a Session on success
func (a *OpenAPI) Login(ctx context.Context, login credentials.Data) LoginResult {
	if len(login) == 0 {
		return LoginResult{}
	}

	endpoint := stringValue(login[credentials.FieldEndpoint])
	accessID := stringValue(login[credentials.FieldAccessID])
	accessSecret := stringValue(login[credentials.FieldAccessSecret])
	username := stringValue(login[credentials.FieldUsername])
	password := stringValue(login[credentials.FieldPassword])
	countryCode := stringValue(login[credentials.FieldCountryCode])

	a.logger.Debug("tuya api login attempt",
		"endpoint", endpoint,
		"access_id", accessID,
		"username", username,
		"country_code", countryCode,
	)

	// The platform expects an MD5 digest of the password, not the
	// password itself.
	digest := md5.Sum([]byte(password)) // #nosec G401

	body, err := json.Marshal(map[string]string{
		"username":     username,
		"password":     hex.EncodeToString(digest[:]),
		"country_code": countryCode,
		"schema":       devChannel,
	})
	if err != nil {
		return LoginResult{Message: err.Error()}
	}

	session := &Session{
		api:          a,
		endpoint:     endpoint,
		accessID:     accessID,
		accessSecret: accessSecret,
	}

	resp, err := a.request(ctx, session, http.MethodPost, loginPath, body)
	if err != nil {
		return LoginResult{Message: err.Error()}
	}
	if !resp.Success {
		return LoginResult{Code: resp.Code, Message: resp.Msg}
	}

	var token tokenResult
	if err := json.Unmarshal(resp.Result, &token); err != nil {
		return LoginResult{Message: fmt.Sprintf("decoding token: %v", err)}
	}

	session.accessToken = token.AccessToken
	session.uid = token.UID

	return LoginResult{Success: true, Session: session}
}

// get performs a signed GET against the OpenAPI using a session.
func (a *OpenAPI) get(ctx context.Context, s *Session, path string) (*apiResponse, error) {
	if s.accessToken == "" {
		return nil, ErrNotAuthenticated
	}
	return a.request(ctx, s, http.MethodGet, path, nil)
}

// request signs and executes one OpenAPI call.
//
// Signature scheme (per the platform's HMAC-SHA256 contract):
//
//	stringToSign = method + "\n" + sha256(body) + "\n" + "" + "\n" + path
//	sign = HMAC-SHA256(accessID + accessToken + t + nonce + stringToSign, accessSecret)
//
// where accessToken is empty for the login call itself.
func (a *OpenAPI) request(ctx context.Context, s *Session, method, path string, body []byte) (*apiResponse, error) {
	req, err := http.NewRequestWithContext(ctx, method, s.endpoint+path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRequestFailed, err)
	}

	t := strconv.FormatInt(time.Now().UnixMilli(), 10)
	nonce := uuid.NewString()

	bodyHash := sha256.Sum256(body)
	stringToSign := strings.Join([]string{
		method,
		hex.EncodeToString(bodyHash[:]),
		"",
		path,
	}, "\n")

	mac := hmac.New(sha256.New, []byte(s.accessSecret))
	mac.Write([]byte(s.accessID + s.accessToken + t + nonce + stringToSign))
	sign := strings.ToUpper(hex.EncodeToString(mac.Sum(nil)))

	req.Header.Set("client_id", s.accessID)
	req.Header.Set("sign", sign)
	req.Header.Set("sign_method", signMethod)
	req.Header.Set("t", t)
	req.Header.Set("nonce", nonce)
	req.Header.Set("dev_channel", devChannel)
	req.Header.Set("Content-Type", "application/json")
	if s.accessToken != "" {
		req.Header.Set("access_token", s.accessToken)
	}

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRequestFailed, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading body: %w", ErrBadResponse, err)
	}

	var decoded apiResponse
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBadResponse, err)
	}
	return &decoded, nil
}

// stringValue coerces a configuration field to string, tolerating
// absent or non-string values.
func stringValue(v any) string {
	s, _ := v.(string)
	return s
}
