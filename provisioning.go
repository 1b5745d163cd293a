package yetichat

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/tidwall/gjson"
)

const (
	DefaultAPIDomain   = "cometchat.io"
	DefaultSeedDelay   = 200 * time.Millisecond
	defaultHTTPTimeout = 10 * time.Second
	usersPath          = "/v3/users"
)

// TestUsers are the demo accounts created by CreateTestUsers
var TestUsers = []CreateUserRequest{
	{UID: "cometchat-uid-1", Name: "John Doe"},
	{UID: "cometchat-uid-2", Name: "Jane Smith"},
	{UID: "cometchat-uid-3", Name: "Bob Wilson"},
	{UID: "cometchat-uid-4", Name: "Alice Brown"},
	{UID: "cometchat-uid-5", Name: "Charlie Davis"},
}

// ProvisionerConfig holds the management API settings.
type ProvisionerConfig struct {
	AppID     string
	Region    string
	APIKey    string
	APIDomain string
	// BaseURL overrides the regional endpoint built from Region and APIDomain.
	BaseURL    string
	HTTPClient *http.Client
	SeedDelay  time.Duration
}

// ProvisionerConfigFromConfig builds the provisioning settings from a Config
func ProvisionerConfigFromConfig(cfg Config) ProvisionerConfig {
	if cfg == nil {
		return ProvisionerConfig{}
	}
	return ProvisionerConfig{
		AppID:     cfg.GetAppID(),
		Region:    cfg.GetRegion(),
		APIKey:    cfg.GetRestAPIKey(),
		APIDomain: cfg.GetAPIDomain(),
		BaseURL:   cfg.GetAPIBaseURL(),
	}
}

// APIBaseURL returns the regional REST endpoint, e.g. https://api-us.cometchat.io
func APIBaseURL(region, domain string) string {
	if domain == "" {
		domain = DefaultAPIDomain
	}
	return fmt.Sprintf("https://api-%s.%s", strings.TrimSpace(region), strings.TrimSpace(domain))
}

var _ AccountProvisioner = (*Provisioner)(nil)

// Provisioner creates platform users through the management REST API
type Provisioner struct {
	config     ProvisionerConfig
	httpClient *http.Client
	logger     Logger
}

// NewProvisioner returns a provisioning client
func NewProvisioner(cfg ProvisionerConfig) *Provisioner {
	if cfg.BaseURL == "" {
		cfg.BaseURL = APIBaseURL(cfg.Region, cfg.APIDomain)
	}
	cfg.BaseURL = strings.TrimSuffix(cfg.BaseURL, "/")

	if cfg.SeedDelay < 0 {
		cfg.SeedDelay = 0
	}

	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: defaultHTTPTimeout}
	}

	return &Provisioner{
		config:     cfg,
		httpClient: client,
		logger:     defLogger{},
	}
}

func (p *Provisioner) WithLogger(logger Logger) *Provisioner {
	p.logger = normalizeLogger(logger)
	return p
}

type createUserPayload struct {
	UID           string   `json:"uid"`
	Name          string   `json:"name"`
	Avatar        string   `json:"avatar"`
	Link          string   `json:"link"`
	StatusMessage string   `json:"statusMessage"`
	Tags          []string `json:"tags"`
}

func newCreateUserPayload(req CreateUserRequest) createUserPayload {
	payload := createUserPayload{
		UID:           req.UID,
		Name:          req.Name,
		Avatar:        req.Avatar,
		Link:          req.Link,
		StatusMessage: req.StatusMessage,
		Tags:          req.Tags,
	}
	if payload.Name == "" {
		payload.Name = req.UID
	}
	if payload.StatusMessage == "" {
		payload.StatusMessage = DefaultStatusMessage
	}
	if payload.Tags == nil {
		payload.Tags = []string{}
	}
	return payload
}

type userEnvelope struct {
	Data *User `json:"data"`
}

// CreateUser issues a single create call. An existing uid is reported as
// success with Created set to false.
func (p *Provisioner) CreateUser(ctx context.Context, req CreateUserRequest) (ProvisionResult, error) {
	p.logger.Info("creating user via REST API: %s", req.UID)

	body, err := json.Marshal(newCreateUserPayload(req))
	if err != nil {
		return ProvisionResult{}, newProvisioningError("failed to encode create user request", 0, "")
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.config.BaseURL+usersPath, bytes.NewReader(body))
	if err != nil {
		return ProvisionResult{}, newNetworkError(err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("appId", p.config.AppID)
	httpReq.Header.Set("apiKey", p.config.APIKey)

	resp, err := p.httpClient.Do(httpReq)
	if err != nil {
		p.logger.Error("user creation failed: %v", err)
		return ProvisionResult{}, newNetworkError(err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		p.logger.Error("user creation failed reading response: %v", err)
		return ProvisionResult{}, newNetworkError(err)
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		var envelope userEnvelope
		if len(raw) > 0 {
			if err := json.Unmarshal(raw, &envelope); err != nil {
				p.logger.Error("user creation returned an invalid body: %v", err)
				return ProvisionResult{}, newProvisioningError("invalid response from user management API", resp.StatusCode, "")
			}
		}
		p.logger.Info("user created successfully: %s", req.UID)
		return ProvisionResult{Created: true, User: envelope.Data}, nil
	}

	code := gjson.GetBytes(raw, "error.code").String()
	message := gjson.GetBytes(raw, "error.message").String()

	if code == CodeUIDAlreadyExists {
		p.logger.Info("user already exists: %s", req.UID)
		return ProvisionResult{Created: false}, nil
	}

	p.logger.Warn("user creation rejected: status=%d code=%s message=%s", resp.StatusCode, code, message)
	return ProvisionResult{}, newProvisioningError(message, resp.StatusCode, code)
}

// EnsureUserExists creates uid when missing; name falls back to uid
func (p *Provisioner) EnsureUserExists(ctx context.Context, uid, name string) (ProvisionResult, error) {
	if name == "" {
		name = uid
	}
	return p.CreateUser(ctx, CreateUserRequest{UID: uid, Name: name})
}

// CreateTestUsers seeds TestUsers one at a time, pausing between requests.
// Individual failures are reported per outcome, only cancellation aborts.
func (p *Provisioner) CreateTestUsers(ctx context.Context) ([]ProvisionOutcome, error) {
	p.logger.Info("creating %d test users", len(TestUsers))

	outcomes := make([]ProvisionOutcome, 0, len(TestUsers))
	for i, u := range TestUsers {
		if i > 0 && p.config.SeedDelay > 0 {
			timer := time.NewTimer(p.config.SeedDelay)
			select {
			case <-ctx.Done():
				timer.Stop()
				return outcomes, ctx.Err()
			case <-timer.C:
			}
		}

		if err := ctx.Err(); err != nil {
			return outcomes, err
		}

		result, err := p.CreateUser(ctx, u)
		outcomes = append(outcomes, ProvisionOutcome{UID: u.UID, Result: result, Err: err})
	}

	p.logger.Info("test users creation completed")
	return outcomes, nil
}
