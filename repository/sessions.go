package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/goliatone/go-yetichat"
	"github.com/uptrace/bun"
)

// DefaultSlot is the session slot used when none is configured.
const DefaultSlot = "default"

// LocalSessionModel is the Bun model for the locally kept platform session.
type LocalSessionModel struct {
	bun.BaseModel `bun:"table:local_sessions"`

	Slot      string         `bun:"slot,pk"`
	UID       string         `bun:"uid,notnull"`
	AuthToken string         `bun:"auth_token"`
	User      *yetichat.User `bun:"user_data,type:jsonb"`
	CreatedAt time.Time      `bun:"created_at,notnull"`
	UpdatedAt time.Time      `bun:"updated_at,notnull"`
}

var _ yetichat.SessionStore = (*SessionRepository)(nil)

// SessionRepository implements yetichat.SessionStore using Bun. Each slot
// holds at most one session.
type SessionRepository struct {
	db   bun.IDB
	slot string
	now  func() time.Time
}

// SessionOption customizes a SessionRepository.
type SessionOption func(*SessionRepository)

// WithSlot selects the slot the repository reads and writes.
func WithSlot(slot string) SessionOption {
	return func(r *SessionRepository) {
		if slot != "" {
			r.slot = slot
		}
	}
}

// WithClock injects a custom clock (useful for tests).
func WithClock(clock func() time.Time) SessionOption {
	return func(r *SessionRepository) {
		if clock != nil {
			r.now = clock
		}
	}
}

// NewSessionRepository creates a new repository.
func NewSessionRepository(db bun.IDB, opts ...SessionOption) *SessionRepository {
	r := &SessionRepository{
		db:   db,
		slot: DefaultSlot,
		now:  time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

// CreateTable creates the sessions table when missing.
func (r *SessionRepository) CreateTable(ctx context.Context) error {
	_, err := r.db.NewCreateTable().
		Model((*LocalSessionModel)(nil)).
		IfNotExists().
		Exec(ctx)
	return err
}

// Load implements yetichat.SessionStore.
func (r *SessionRepository) Load(ctx context.Context) (*yetichat.LocalSession, error) {
	var model LocalSessionModel
	err := r.db.NewSelect().
		Model(&model).
		Where("slot = ?", r.slot).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return toLocalSession(&model), nil
}

// Save implements yetichat.SessionStore.
func (r *SessionRepository) Save(ctx context.Context, session *yetichat.LocalSession) error {
	if session == nil {
		return r.Clear(ctx)
	}

	model := r.fromLocalSession(session)

	_, err := r.db.NewInsert().
		Model(model).
		On("CONFLICT (slot) DO UPDATE").
		Set("uid = EXCLUDED.uid").
		Set("auth_token = EXCLUDED.auth_token").
		Set("user_data = EXCLUDED.user_data").
		Set("created_at = EXCLUDED.created_at").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	return err
}

// Clear implements yetichat.SessionStore.
func (r *SessionRepository) Clear(ctx context.Context) error {
	_, err := r.db.NewDelete().
		Model((*LocalSessionModel)(nil)).
		Where("slot = ?", r.slot).
		Exec(ctx)
	return err
}

func toLocalSession(m *LocalSessionModel) *yetichat.LocalSession {
	return &yetichat.LocalSession{
		UID:       m.UID,
		AuthToken: m.AuthToken,
		User:      m.User,
		CreatedAt: m.CreatedAt,
	}
}

func (r *SessionRepository) fromLocalSession(s *yetichat.LocalSession) *LocalSessionModel {
	now := r.now()
	created := s.CreatedAt
	if created.IsZero() {
		created = now
	}
	return &LocalSessionModel{
		Slot:      r.slot,
		UID:       s.UID,
		AuthToken: s.AuthToken,
		User:      s.User.Clone(),
		CreatedAt: created,
		UpdatedAt: now,
	}
}
