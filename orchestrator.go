package yetichat

import (
	"context"
	"strings"
	"sync"
)

// Orchestrator sequences provisioning and session login and is the single
// source of truth for who is logged in.
//
// Overlapping Login, Register and Logout calls are not serialized; callers
// should not start a new operation while State().IsLoading is true.
type Orchestrator struct {
	gateway      SessionGateway
	provisioner  AccountProvisioner
	logger       Logger
	activitySink ActivitySink
	publisher    *statePublisher

	mu    sync.RWMutex
	state AuthState
}

// NewOrchestrator returns an Orchestrator in the loading state
func NewOrchestrator(gateway SessionGateway, provisioner AccountProvisioner) *Orchestrator {
	return &Orchestrator{
		gateway:      gateway,
		provisioner:  provisioner,
		logger:       defLogger{},
		activitySink: noopActivitySink{},
		publisher:    newStatePublisher(defLogger{}),
		state:        AuthState{IsLoading: true},
	}
}

func (o *Orchestrator) WithLogger(logger Logger) *Orchestrator {
	o.logger = normalizeLogger(logger)
	o.publisher.logger = o.logger
	return o
}

// WithActivitySink configures an ActivitySink for emitting auth events.
func (o *Orchestrator) WithActivitySink(sink ActivitySink) *Orchestrator {
	o.activitySink = normalizeActivitySink(sink)
	return o
}

// Initialize sets up the platform connection and restores an existing
// session. Failures end up in the published state, nothing is returned.
func (o *Orchestrator) Initialize(ctx context.Context) {
	if err := o.gateway.Initialize(ctx); err != nil {
		o.logger.Error("auth service initialization failed: %v", err)
		o.transition(AuthState{Error: ErrorMessage(err)})
		return
	}

	user, err := o.gateway.CurrentUser(ctx)
	if err != nil {
		o.logger.Error("auth service initialization failed reading current user: %v", err)
		o.transition(AuthState{Error: ErrorMessage(err)})
		return
	}

	if user != nil {
		o.logger.Info("restored session for %s", user.UID)
		o.transition(AuthState{IsAuthenticated: true, User: user})
		return
	}

	o.transition(AuthState{})
}

// Login provisions uid on a best effort basis and then logs it in
func (o *Orchestrator) Login(ctx context.Context, uid string) (*User, error) {
	if err := ValidateUID(uid); err != nil {
		o.failValidation(err)
		return nil, err
	}
	uid = strings.TrimSpace(uid)

	o.logger.Info("starting login process for UID: %s", uid)
	o.transition(AuthState{IsLoading: true})

	// the account may already exist, a provisioning failure does not stop the login
	result, err := o.provisioner.EnsureUserExists(ctx, uid, "")
	o.recordProvisioning(ctx, uid, result, err)

	return o.completeLogin(ctx, uid, ActivityEventLoginSuccess, ActivityEventLoginFailure)
}

// Register creates a fresh account and logs it in. A uid that already
// exists fails the registration.
func (o *Orchestrator) Register(ctx context.Context, uid, name string) (*User, error) {
	if err := ValidateUID(uid); err != nil {
		o.failValidation(err)
		return nil, err
	}
	if err := ValidateName(name); err != nil {
		o.failValidation(err)
		return nil, err
	}
	uid = strings.TrimSpace(uid)
	name = strings.TrimSpace(name)

	o.logger.Info("starting registration for UID: %s", uid)
	o.transition(AuthState{IsLoading: true})

	result, err := o.provisioner.CreateUser(ctx, CreateUserRequest{UID: uid, Name: name})
	o.recordProvisioning(ctx, uid, result, err)
	if err != nil {
		return nil, o.fail(ctx, uid, ActivityEventRegisterFailure, err)
	}

	if !result.Created {
		return nil, o.fail(ctx, uid, ActivityEventRegisterFailure, newUIDTakenError(uid))
	}

	return o.completeLogin(ctx, uid, ActivityEventRegisterSuccess, ActivityEventRegisterFailure)
}

// Logout ends the session. The final state is always unauthenticated.
func (o *Orchestrator) Logout(ctx context.Context) error {
	prev := o.State()
	o.transition(AuthState{IsLoading: true})

	var uid string
	if prev.User != nil {
		uid = prev.User.UID
	}

	if err := o.gateway.LogoutUser(ctx); err != nil {
		o.logger.Error("logout failed: %v", err)
		o.transition(AuthState{Error: ErrorMessage(err)})
		emitActivity(ctx, o.activitySink, o.logger, ActivityEventLogout, uid, map[string]any{
			"error": ErrorMessage(err),
		})
		return err
	}

	o.transition(AuthState{})
	emitActivity(ctx, o.activitySink, o.logger, ActivityEventLogout, uid, nil)
	return nil
}

// Subscribe registers listener for every state change. The returned
// function removes it and is safe to call more than once.
func (o *Orchestrator) Subscribe(listener Listener) func() {
	return o.publisher.subscribe(listener)
}

// ClearError republishes the current state without its error
func (o *Orchestrator) ClearError() {
	state := o.State()
	if !state.HasError() {
		return
	}
	state.Error = ""
	o.transition(state)
}

// State returns a snapshot of the current authentication state
func (o *Orchestrator) State() AuthState {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.state.clone()
}

// CurrentAuthState derives the state from the gateway's view of the session
func (o *Orchestrator) CurrentAuthState(ctx context.Context) AuthState {
	user, err := o.gateway.CurrentUser(ctx)
	if err != nil {
		return AuthState{Error: ErrorMessage(err)}
	}
	return AuthState{IsAuthenticated: user != nil, User: user}
}

// Refresh publishes a loading state followed by the gateway derived state
func (o *Orchestrator) Refresh(ctx context.Context) AuthState {
	loading := o.State()
	loading.IsLoading = true
	o.transition(loading)

	current := o.CurrentAuthState(ctx)
	o.transition(current)
	return current
}

func (o *Orchestrator) ValidateUID(uid string) error {
	return ValidateUID(uid)
}

func (o *Orchestrator) ValidateName(name string) error {
	return ValidateName(name)
}

func (o *Orchestrator) completeLogin(ctx context.Context, uid string, success, failure ActivityEventType) (*User, error) {
	user, err := o.gateway.LoginUser(ctx, uid)
	if err != nil {
		return nil, o.fail(ctx, uid, failure, err)
	}

	o.logger.Info("login successful for %s", user.UID)
	o.transition(AuthState{IsAuthenticated: true, User: user})
	emitActivity(ctx, o.activitySink, o.logger, success, user.UID, nil)

	return user, nil
}

func (o *Orchestrator) fail(ctx context.Context, uid string, eventType ActivityEventType, err error) error {
	message := ErrorMessage(err)
	o.logger.Error("%s for %s: %s", eventType, uid, message)
	o.transition(AuthState{Error: message})
	emitActivity(ctx, o.activitySink, o.logger, eventType, uid, map[string]any{
		"error": message,
	})
	return err
}

// failValidation keeps the session fields and reports the validation message.
// An authenticated state never carries an error, so there it is only returned.
func (o *Orchestrator) failValidation(err error) {
	state := o.State()
	state.IsLoading = false
	if !state.IsAuthenticated {
		state.Error = ErrorMessage(err)
	}
	o.transition(state)
}

func (o *Orchestrator) recordProvisioning(ctx context.Context, uid string, result ProvisionResult, err error) {
	switch {
	case err != nil:
		o.logger.Warn("user provisioning failed for %s: %s", uid, ErrorMessage(err))
		emitActivity(ctx, o.activitySink, o.logger, ActivityEventProvisionFailure, uid, map[string]any{
			"error": ErrorMessage(err),
		})
	case result.Created:
		o.logger.Info("user provisioned: %s", uid)
		emitActivity(ctx, o.activitySink, o.logger, ActivityEventProvisionCreated, uid, nil)
	default:
		o.logger.Info("user already exists: %s", uid)
		emitActivity(ctx, o.activitySink, o.logger, ActivityEventProvisionExists, uid, nil)
	}
}

// transition is the only writer of o.state
func (o *Orchestrator) transition(next AuthState) {
	if next.IsAuthenticated {
		next.Error = ""
		if next.User == nil {
			next.IsAuthenticated = false
		}
	} else {
		next.User = nil
	}

	o.mu.Lock()
	o.state = next.clone()
	o.mu.Unlock()

	o.publisher.publish(next)
}
