package yetichat

import (
	"context"
	"fmt"
)

type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Warn(format string, args ...any)
	Error(format string, args ...any)
}

// Settings is the bundle handed to the chat platform on initialization
type Settings struct {
	AppID   string
	Region  string
	AuthKey string
}

// Config holds the credentials needed to reach the chat platform
type Config interface {
	GetAppID() string
	GetRegion() string
	GetAuthKey() string
	GetRestAPIKey() string
	GetAPIDomain() string
	GetAPIBaseURL() string
}

// SettingsFromConfig extracts the platform settings bundle from a Config
func SettingsFromConfig(cfg Config) Settings {
	if cfg == nil {
		return Settings{}
	}
	return Settings{
		AppID:   cfg.GetAppID(),
		Region:  cfg.GetRegion(),
		AuthKey: cfg.GetAuthKey(),
	}
}

// Platform is the client surface of the external chat platform.
// Implementations return *PlatformError for failures that carry a platform code.
type Platform interface {
	Init(ctx context.Context, settings Settings) error
	Login(ctx context.Context, uid string) (*User, error)
	Logout(ctx context.Context) error
	LoggedInUser(ctx context.Context) (*User, error)
}

// SessionGateway owns the connection lifecycle to the chat platform
type SessionGateway interface {
	Initialize(ctx context.Context) error
	LoginUser(ctx context.Context, uid string) (*User, error)
	LogoutUser(ctx context.Context) error
	CurrentUser(ctx context.Context) (*User, error)
}

// AccountProvisioner creates user records on the chat platform ahead of login
type AccountProvisioner interface {
	CreateUser(ctx context.Context, req CreateUserRequest) (ProvisionResult, error)
	EnsureUserExists(ctx context.Context, uid, name string) (ProvisionResult, error)
}

// SessionStore keeps the locally known platform session between calls
type SessionStore interface {
	Load(ctx context.Context) (*LocalSession, error)
	Save(ctx context.Context, session *LocalSession) error
	Clear(ctx context.Context) error
}

type defLogger struct{}

func (d defLogger) Error(format string, args ...any) {
	fmt.Printf("[ERR] YETICHAT "+newline(format), args...)
}

func (d defLogger) Warn(format string, args ...any) {
	fmt.Printf("[WRN] YETICHAT "+newline(format), args...)
}

func (d defLogger) Info(format string, args ...any) {
	fmt.Printf("[INF] YETICHAT "+newline(format), args...)
}

func (d defLogger) Debug(format string, args ...any) {
	fmt.Printf("[DBG] YETICHAT "+newline(format), args...)
}

func newline(s string) string {
	if len(s) > 0 && s[len(s)-1] != '\n' {
		s += "\n"
	}
	return s
}

func normalizeLogger(logger Logger) Logger {
	if logger == nil {
		return defLogger{}
	}
	return logger
}
