package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/goliatone/go-yetichat"
	"github.com/goliatone/go-yetichat/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCometChat struct {
	mu      sync.Mutex
	users   map[string]yetichat.User
	tokens  map[string]string
	revoked []string
}

func newFakeCometChat(t *testing.T) (*fakeCometChat, *httptest.Server) {
	t.Helper()

	fake := &fakeCometChat{
		users:  map[string]yetichat.User{},
		tokens: map[string]string{},
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /v3/users", fake.createUser)
	mux.HandleFunc("GET /v3/users/{uid}", fake.getUser)
	mux.HandleFunc("POST /v3/users/{uid}/auth_tokens", fake.createToken)
	mux.HandleFunc("DELETE /v3/users/{uid}/auth_tokens/{token}", fake.deleteToken)

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return fake, srv
}

func (f *fakeCometChat) createUser(w http.ResponseWriter, r *http.Request) {
	var body yetichat.User
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "ERR_BAD_REQUEST", err.Error())
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.users[body.UID]; ok {
		writeError(w, http.StatusConflict, yetichat.CodeUIDAlreadyExists, "The uid already exists")
		return
	}
	f.users[body.UID] = body
	writeJSON(w, http.StatusOK, map[string]any{"data": body})
}

func (f *fakeCometChat) getUser(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	user, ok := f.users[r.PathValue("uid")]
	if !ok {
		writeError(w, http.StatusNotFound, yetichat.CodeUIDNotFound, "The uid does not exist")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": user})
}

func (f *fakeCometChat) createToken(w http.ResponseWriter, r *http.Request) {
	uid := r.PathValue("uid")
	token := "token-" + uid

	f.mu.Lock()
	f.tokens[token] = uid
	f.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]any{"data": map[string]any{"uid": uid, "authToken": token}})
}

func (f *fakeCometChat) deleteToken(w http.ResponseWriter, r *http.Request) {
	token := r.PathValue("token")

	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.tokens[token]; !ok {
		writeError(w, http.StatusNotFound, yetichat.CodeAuthTokenNotFound, "token not found")
		return
	}
	delete(f.tokens, token)
	f.revoked = append(f.revoked, token)
	writeJSON(w, http.StatusOK, map[string]any{"data": map[string]any{"success": true}})
}

func (f *fakeCometChat) hasUser(uid string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.users[uid]
	return ok
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, map[string]any{"error": map[string]any{"code": code, "message": message}})
}

func testConfig(t *testing.T, baseURL string) *config.Config {
	t.Helper()
	return &config.Config{
		AppID:       "app-123",
		Region:      "us",
		AuthKey:     "auth-key",
		RestAPIKey:  "rest-key",
		APIDomain:   "cometchat.io",
		APIBaseURL:  baseURL,
		HTTPTimeout: 5 * time.Second,
		SessionDSN:  "file:" + filepath.Join(t.TempDir(), "sessions.db"),
		SessionSlot: "default",
		LogLevel:    "error",
	}
}

func runCLI(t *testing.T, cfg *config.Config, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer
	cmd := newRootCmd(rootOptions{
		out:       &out,
		logOutput: io.Discard,
		loadConfig: func([]string) (*config.Config, error) {
			c := *cfg
			return &c, nil
		},
	})
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestLoginCreatesUserAndPersistsSession(t *testing.T) {
	fake, srv := newFakeCometChat(t)
	cfg := testConfig(t, srv.URL)

	out, err := runCLI(t, cfg, "login", "alice_1")
	require.NoError(t, err)
	assert.Equal(t, "Logged in as alice_1 (alice_1)\n", out)
	assert.True(t, fake.hasUser("alice_1"))

	out, err = runCLI(t, cfg, "whoami")
	require.NoError(t, err)
	assert.Equal(t, "alice_1 (alice_1)\n", out)
}

func TestRegisterThenLogout(t *testing.T) {
	fake, srv := newFakeCometChat(t)
	cfg := testConfig(t, srv.URL)

	out, err := runCLI(t, cfg, "register", "bob_2", "Bob", "Builder")
	require.NoError(t, err)
	assert.Equal(t, "Registered and logged in as Bob Builder (bob_2)\n", out)

	out, err = runCLI(t, cfg, "logout")
	require.NoError(t, err)
	assert.Equal(t, "Logged out\n", out)
	assert.Equal(t, []string{"token-bob_2"}, fake.revoked)

	out, err = runCLI(t, cfg, "whoami")
	require.NoError(t, err)
	assert.Equal(t, "Not logged in\n", out)
}

func TestRegisterExistingUIDFails(t *testing.T) {
	_, srv := newFakeCometChat(t)
	cfg := testConfig(t, srv.URL)

	_, err := runCLI(t, cfg, "register", "carol_3", "Carol")
	require.NoError(t, err)

	_, err = runCLI(t, cfg, "register", "carol_3", "Carol Again")
	require.Error(t, err)
	assert.True(t, yetichat.IsUIDTakenError(err))
	assert.Equal(t, yetichat.MsgUIDTaken, yetichat.ErrorMessage(err))
	assert.Equal(t, ExitCodeError, exitCode(err))
}

func TestLoginValidationFailsWithoutNetwork(t *testing.T) {
	fake, srv := newFakeCometChat(t)
	cfg := testConfig(t, srv.URL)

	_, err := runCLI(t, cfg, "login", "a!")
	require.Error(t, err)
	assert.Equal(t, yetichat.MsgUIDTooShort, yetichat.ErrorMessage(err))
	assert.Equal(t, ExitCodeValidation, exitCode(err))
	assert.False(t, fake.hasUser("a!"))
}

func TestLoginMissingCredentials(t *testing.T) {
	_, srv := newFakeCometChat(t)
	cfg := testConfig(t, srv.URL)
	cfg.AppID = ""

	_, err := runCLI(t, cfg, "login", "alice_1")
	require.Error(t, err)
	assert.True(t, yetichat.IsConfigError(err))
	assert.Equal(t, ExitCodeConfig, exitCode(err))
}

func TestSeedReportsOutcomes(t *testing.T) {
	fake, srv := newFakeCometChat(t)
	cfg := testConfig(t, srv.URL)

	_, err := runCLI(t, cfg, "login", "cometchat-uid-2")
	require.NoError(t, err)

	out, err := runCLI(t, cfg, "seed")
	require.NoError(t, err)
	assert.Contains(t, out, "cometchat-uid-1\tcreated\n")
	assert.Contains(t, out, "cometchat-uid-2\texists\n")
	assert.Contains(t, out, "cometchat-uid-5\tcreated\n")
	assert.True(t, fake.hasUser("cometchat-uid-5"))
}

func TestSeedRequiresRestAPIKey(t *testing.T) {
	_, srv := newFakeCometChat(t)
	cfg := testConfig(t, srv.URL)
	cfg.RestAPIKey = ""

	_, err := runCLI(t, cfg, "seed")
	assert.Error(t, err)
}

func TestValidateCommand(t *testing.T) {
	cfg := &config.Config{}

	out, err := runCLI(t, cfg, "validate", "dave_4", "--name", "Dave")
	require.NoError(t, err)
	assert.Equal(t, "OK\n", out)

	_, err = runCLI(t, cfg, "validate", "abc!")
	require.Error(t, err)
	assert.Equal(t, yetichat.MsgUIDCharset, yetichat.ErrorMessage(err))

	_, err = runCLI(t, cfg, "validate", "dave_4", "--name", "  ")
	require.Error(t, err)
	assert.Equal(t, yetichat.MsgNameEmpty, yetichat.ErrorMessage(err))
}
