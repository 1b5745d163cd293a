package yetichat

import (
	"context"
	"strings"
	"sync"

	goerrors "github.com/goliatone/go-errors"
	"golang.org/x/sync/singleflight"
)

// GatewayStatus is the lifecycle state of the platform connection
type GatewayStatus string

const (
	GatewayUninitialized GatewayStatus = "uninitialized"
	GatewayInitializing  GatewayStatus = "initializing"
	GatewayInitialized   GatewayStatus = "initialized"
)

const textCodeInvalidGatewayTransition = "INVALID_GATEWAY_TRANSITION"

var gatewayTransitions = map[GatewayStatus]map[GatewayStatus]struct{}{
	GatewayUninitialized: {
		GatewayInitializing: {},
	},
	GatewayInitializing: {
		GatewayInitialized:   {},
		GatewayUninitialized: {},
	},
}

var _ SessionGateway = (*Gateway)(nil)

// Gateway wraps the chat platform session primitives with uniform errors
type Gateway struct {
	platform Platform
	settings Settings
	logger   Logger

	mu         sync.RWMutex
	status     GatewayStatus
	sessionUID string

	initGroup singleflight.Group
}

// NewGateway returns a Gateway in the uninitialized state
func NewGateway(platform Platform, settings Settings) *Gateway {
	return &Gateway{
		platform: platform,
		settings: settings,
		logger:   defLogger{},
		status:   GatewayUninitialized,
	}
}

func (g *Gateway) WithLogger(logger Logger) *Gateway {
	g.logger = normalizeLogger(logger)
	return g
}

// Initialize performs the one time platform setup. Calls after a successful
// initialization return nil without touching the platform.
func (g *Gateway) Initialize(ctx context.Context) error {
	if g.IsInitialized() {
		g.logger.Debug("CometChat already initialized")
		return nil
	}

	_, err, _ := g.initGroup.Do("init", func() (any, error) {
		return nil, g.initialize(ctx)
	})
	return err
}

func (g *Gateway) initialize(ctx context.Context) error {
	if g.IsInitialized() {
		return nil
	}

	g.logger.Info("initializing CometChat: app_id=%s region=%s auth_key=%s",
		g.settings.AppID, g.settings.Region, maskSecret(g.settings.AuthKey))

	var missing []string
	if strings.TrimSpace(g.settings.AppID) == "" {
		missing = append(missing, "app_id")
	}
	if strings.TrimSpace(g.settings.Region) == "" {
		missing = append(missing, "region")
	}
	if len(missing) > 0 {
		g.logger.Error("CometChat initialization failed: missing %s", strings.Join(missing, ", "))
		return newConfigError(missing)
	}

	if err := g.transition(GatewayInitializing); err != nil {
		return err
	}

	if err := g.platform.Init(ctx, g.settings); err != nil {
		g.logger.Error("CometChat initialization failed: %v", err)
		_ = g.transition(GatewayUninitialized)
		return rawPlatformError(err, "Failed to initialize CometChat")
	}

	if err := g.transition(GatewayInitialized); err != nil {
		return err
	}

	g.logger.Info("CometChat initialized successfully")
	return nil
}

// LoginUser logs uid in. When uid already holds the session the cached user
// is returned and no login call is made.
func (g *Gateway) LoginUser(ctx context.Context, uid string) (*User, error) {
	if !g.IsInitialized() {
		return nil, newNotInitializedError()
	}

	g.logger.Info("logging in user: %s", uid)

	current, err := g.platform.LoggedInUser(ctx)
	if err != nil {
		g.logger.Error("user login failed reading current session: %v", err)
		return nil, mapPlatformError(err, MsgLoginFailed)
	}

	if current != nil && current.UID == uid {
		g.logger.Info("user already logged in: %s", uid)
		g.setSessionUID(uid)
		return current.Clone(), nil
	}

	if current != nil {
		g.logger.Info("logging out %s before new login", current.UID)
		if err := g.platform.Logout(ctx); err != nil {
			g.logger.Error("user login failed logging out %s: %v", current.UID, err)
			return nil, mapPlatformError(err, MsgLoginFailed)
		}
		g.setSessionUID("")
	}

	user, err := g.platform.Login(ctx, uid)
	if err != nil {
		g.logger.Error("user login failed: code=%s error=%v", PlatformCode(err), err)
		return nil, mapPlatformError(err, MsgLoginFailed)
	}
	if user == nil {
		return nil, mapPlatformError(&PlatformError{Message: MsgLoginFailed}, MsgLoginFailed)
	}

	g.setSessionUID(user.UID)
	g.logger.Info("user login successful: %s", user.DisplayName())

	return user.Clone(), nil
}

// LogoutUser ends the current platform session
func (g *Gateway) LogoutUser(ctx context.Context) error {
	if !g.IsInitialized() {
		return newNotInitializedError()
	}

	g.logger.Info("logging out user")
	if err := g.platform.Logout(ctx); err != nil {
		g.logger.Error("user logout failed: %v", err)
		return rawPlatformError(err, MsgLogoutFailed)
	}

	g.setSessionUID("")
	g.logger.Info("user logout successful")
	return nil
}

// CurrentUser returns the logged in user, or nil when there is no session
func (g *Gateway) CurrentUser(ctx context.Context) (*User, error) {
	if !g.IsInitialized() {
		return nil, nil
	}

	user, err := g.platform.LoggedInUser(ctx)
	if err != nil {
		g.logger.Error("failed to get current user: %v", err)
		return nil, rawPlatformError(err, "Failed to get current user")
	}

	if user == nil {
		g.setSessionUID("")
		return nil, nil
	}

	g.setSessionUID(user.UID)
	return user.Clone(), nil
}

func (g *Gateway) IsInitialized() bool {
	return g.Status() == GatewayInitialized
}

func (g *Gateway) Status() GatewayStatus {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.status
}

// SessionUID is the uid the gateway last saw holding the session, empty when logged out
func (g *Gateway) SessionUID() string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.sessionUID
}

func (g *Gateway) setSessionUID(uid string) {
	g.mu.Lock()
	g.sessionUID = uid
	g.mu.Unlock()
}

func (g *Gateway) transition(target GatewayStatus) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, ok := gatewayTransitions[g.status][target]; !ok {
		return goerrors.New("invalid gateway state transition", goerrors.CategoryInternal).
			WithTextCode(textCodeInvalidGatewayTransition).
			WithMetadata(map[string]any{
				"from": g.status,
				"to":   target,
			})
	}

	g.status = target
	return nil
}

func maskSecret(secret string) string {
	if secret == "" {
		return "NOT_PROVIDED"
	}
	return "***PROVIDED***"
}
