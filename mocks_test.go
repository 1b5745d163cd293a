package yetichat_test

import (
	"context"
	"fmt"
	"sync"

	"github.com/goliatone/go-yetichat"
	"github.com/stretchr/testify/mock"
)

// MockPlatform implements yetichat.Platform
type MockPlatform struct {
	mock.Mock
}

func (m *MockPlatform) Init(ctx context.Context, settings yetichat.Settings) error {
	args := m.Called(ctx, settings)
	return args.Error(0)
}

func (m *MockPlatform) Login(ctx context.Context, uid string) (*yetichat.User, error) {
	args := m.Called(ctx, uid)
	user, _ := args.Get(0).(*yetichat.User)
	return user, args.Error(1)
}

func (m *MockPlatform) Logout(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockPlatform) LoggedInUser(ctx context.Context) (*yetichat.User, error) {
	args := m.Called(ctx)
	user, _ := args.Get(0).(*yetichat.User)
	return user, args.Error(1)
}

// MockGateway implements yetichat.SessionGateway
type MockGateway struct {
	mock.Mock
}

func (m *MockGateway) Initialize(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockGateway) LoginUser(ctx context.Context, uid string) (*yetichat.User, error) {
	args := m.Called(ctx, uid)
	user, _ := args.Get(0).(*yetichat.User)
	return user, args.Error(1)
}

func (m *MockGateway) LogoutUser(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockGateway) CurrentUser(ctx context.Context) (*yetichat.User, error) {
	args := m.Called(ctx)
	user, _ := args.Get(0).(*yetichat.User)
	return user, args.Error(1)
}

// MockProvisioner implements yetichat.AccountProvisioner
type MockProvisioner struct {
	mock.Mock
}

func (m *MockProvisioner) CreateUser(ctx context.Context, req yetichat.CreateUserRequest) (yetichat.ProvisionResult, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(yetichat.ProvisionResult), args.Error(1)
}

func (m *MockProvisioner) EnsureUserExists(ctx context.Context, uid, name string) (yetichat.ProvisionResult, error) {
	args := m.Called(ctx, uid, name)
	return args.Get(0).(yetichat.ProvisionResult), args.Error(1)
}

// recordingLogger collects formatted log lines
type recordingLogger struct {
	mu    sync.Mutex
	lines []string
}

func (l *recordingLogger) record(level, format string, args ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.lines = append(l.lines, level+" "+fmt.Sprintf(format, args...))
}

func (l *recordingLogger) Debug(format string, args ...any) { l.record("DBG", format, args...) }
func (l *recordingLogger) Info(format string, args ...any)  { l.record("INF", format, args...) }
func (l *recordingLogger) Warn(format string, args ...any)  { l.record("WRN", format, args...) }
func (l *recordingLogger) Error(format string, args ...any) { l.record("ERR", format, args...) }

func (l *recordingLogger) Lines() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.lines...)
}

// stateRecorder subscribes to an orchestrator and keeps every published state
type stateRecorder struct {
	mu     sync.Mutex
	states []yetichat.AuthState
}

func (r *stateRecorder) listen(state yetichat.AuthState) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.states = append(r.states, state)
}

func (r *stateRecorder) States() []yetichat.AuthState {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]yetichat.AuthState(nil), r.states...)
}

func (r *stateRecorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.states = nil
}

// activityRecorder is an ActivitySink that keeps every event
type activityRecorder struct {
	mu     sync.Mutex
	events []yetichat.ActivityEvent
}

func (r *activityRecorder) Record(_ context.Context, event yetichat.ActivityEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return nil
}

func (r *activityRecorder) Types() []yetichat.ActivityEventType {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]yetichat.ActivityEventType, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.EventType)
	}
	return out
}
