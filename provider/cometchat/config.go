package cometchat

import (
	"net/http"
	"strings"
	"time"

	"github.com/goliatone/go-yetichat"
)

// Config holds the CometChat platform client settings.
type Config struct {
	// APIDomain is the platform domain, default "cometchat.io".
	APIDomain string

	// BaseURL overrides the regional endpoint (optional).
	// Default: "https://api-{region}.{APIDomain}".
	BaseURL string

	// HTTPClient is used for every request.
	// Default: client with a 10 second timeout.
	HTTPClient *http.Client

	// Store keeps the logged in session.
	// Default: in-memory store.
	Store yetichat.SessionStore

	// Clock stamps new sessions.
	// Default: time.Now.
	Clock func() time.Time
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		APIDomain:  yetichat.DefaultAPIDomain,
		HTTPClient: &http.Client{Timeout: 10 * time.Second},
		Store:      yetichat.NewMemorySessionStore(),
		Clock:      time.Now,
	}
}

func (c Config) withDefaults() Config {
	def := DefaultConfig()
	if strings.TrimSpace(c.APIDomain) == "" {
		c.APIDomain = def.APIDomain
	}
	if c.HTTPClient == nil {
		c.HTTPClient = def.HTTPClient
	}
	if c.Store == nil {
		c.Store = def.Store
	}
	if c.Clock == nil {
		c.Clock = def.Clock
	}
	return c
}

func (c Config) baseURL(region string) string {
	if base := strings.TrimSpace(c.BaseURL); base != "" {
		return strings.TrimSuffix(base, "/")
	}
	return yetichat.APIBaseURL(region, c.APIDomain)
}
