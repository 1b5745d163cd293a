package cometchat

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/goliatone/go-yetichat"
	"github.com/tidwall/gjson"
)

var _ yetichat.Platform = (*Platform)(nil)

// Platform implements yetichat.Platform over the CometChat REST API.
type Platform struct {
	config Config

	mu       sync.RWMutex
	settings yetichat.Settings
	baseURL  string
	ready    bool
}

// New creates a platform client. Init must run before any session call.
func New(cfg Config) *Platform {
	return &Platform{config: cfg.withDefaults()}
}

// Init implements yetichat.Platform.
func (p *Platform) Init(_ context.Context, settings yetichat.Settings) error {
	if strings.TrimSpace(settings.AppID) == "" {
		return &yetichat.PlatformError{Code: yetichat.CodeAppNotFound, Message: "app id is required"}
	}
	if strings.TrimSpace(settings.Region) == "" {
		return &yetichat.PlatformError{Code: "ERR_INVALID_REGION", Message: "region is required"}
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	p.settings = settings
	p.baseURL = p.config.baseURL(settings.Region)
	p.ready = true
	return nil
}

// Login implements yetichat.Platform. It reads the user profile, mints an
// auth token and stores both as the local session.
func (p *Platform) Login(ctx context.Context, uid string) (*yetichat.User, error) {
	settings, err := p.currentSettings()
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(settings.AuthKey) == "" {
		return nil, &yetichat.PlatformError{
			Code:    yetichat.CodeAuthTokenNotFound,
			Message: "auth key is required to login",
		}
	}

	user, err := p.fetchUser(ctx, uid)
	if err != nil {
		return nil, err
	}

	token, err := p.createAuthToken(ctx, uid)
	if err != nil {
		return nil, err
	}

	session := &yetichat.LocalSession{
		UID:       user.UID,
		AuthToken: token,
		User:      user,
		CreatedAt: p.config.Clock(),
	}
	if err := p.config.Store.Save(ctx, session); err != nil {
		return nil, fmt.Errorf("cometchat: failed to persist session: %w", err)
	}

	return user.Clone(), nil
}

// Logout implements yetichat.Platform. Without a session it is a no-op.
func (p *Platform) Logout(ctx context.Context) error {
	if _, err := p.currentSettings(); err != nil {
		return err
	}

	session, err := p.config.Store.Load(ctx)
	if err != nil {
		return fmt.Errorf("cometchat: failed to load session: %w", err)
	}
	if session == nil {
		return nil
	}

	if session.AuthToken != "" {
		path := fmt.Sprintf("/v3/users/%s/auth_tokens/%s", url.PathEscape(session.UID), url.PathEscape(session.AuthToken))
		if _, err := p.do(ctx, http.MethodDelete, path, nil); err != nil {
			// a token the platform no longer knows is as good as revoked
			if yetichat.PlatformCode(err) != yetichat.CodeAuthTokenNotFound {
				return err
			}
		}
	}

	if err := p.config.Store.Clear(ctx); err != nil {
		return fmt.Errorf("cometchat: failed to clear session: %w", err)
	}
	return nil
}

// LoggedInUser implements yetichat.Platform.
func (p *Platform) LoggedInUser(ctx context.Context) (*yetichat.User, error) {
	session, err := p.config.Store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("cometchat: failed to load session: %w", err)
	}
	if session == nil {
		return nil, nil
	}
	if session.User != nil {
		return session.User.Clone(), nil
	}
	return &yetichat.User{UID: session.UID}, nil
}

func (p *Platform) currentSettings() (yetichat.Settings, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if !p.ready {
		return yetichat.Settings{}, &yetichat.PlatformError{Message: yetichat.MsgNotInitialized}
	}
	return p.settings, nil
}

func (p *Platform) fetchUser(ctx context.Context, uid string) (*yetichat.User, error) {
	raw, err := p.do(ctx, http.MethodGet, "/v3/users/"+url.PathEscape(uid), nil)
	if err != nil {
		return nil, err
	}

	var envelope struct {
		Data *yetichat.User `json:"data"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, &yetichat.PlatformError{Message: "failed to decode user response", Err: err}
	}
	if envelope.Data == nil || envelope.Data.UID == "" {
		return nil, &yetichat.PlatformError{Code: yetichat.CodeUIDNotFound, Message: "user not found"}
	}
	return envelope.Data, nil
}

func (p *Platform) createAuthToken(ctx context.Context, uid string) (string, error) {
	raw, err := p.do(ctx, http.MethodPost, "/v3/users/"+url.PathEscape(uid)+"/auth_tokens", map[string]any{})
	if err != nil {
		return "", err
	}

	token := gjson.GetBytes(raw, "data.authToken").String()
	if token == "" {
		return "", &yetichat.PlatformError{Code: yetichat.CodeAuthTokenNotFound, Message: "missing auth token in response"}
	}
	return token, nil
}

func (p *Platform) do(ctx context.Context, method, path string, payload any) ([]byte, error) {
	p.mu.RLock()
	settings, base := p.settings, p.baseURL
	p.mu.RUnlock()

	var body io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		body = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, base+path, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("appId", settings.AppID)
	req.Header.Set("apiKey", settings.AuthKey)

	resp, err := p.config.HTTPClient.Do(req)
	if err != nil {
		return nil, &yetichat.PlatformError{
			Code:    yetichat.CodeInternetUnavailable,
			Message: err.Error(),
			Err:     err,
		}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &yetichat.PlatformError{
			Code:    yetichat.CodeInternetUnavailable,
			Message: err.Error(),
			Status:  resp.StatusCode,
			Err:     err,
		}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, parseError(resp.StatusCode, raw)
	}
	return raw, nil
}

func parseError(status int, raw []byte) *yetichat.PlatformError {
	perr := &yetichat.PlatformError{
		Status:  status,
		Code:    gjson.GetBytes(raw, "error.code").String(),
		Message: gjson.GetBytes(raw, "error.message").String(),
	}
	if perr.Message == "" {
		perr.Message = http.StatusText(status)
	}
	return perr
}
