package repository

import (
	"context"
	"errors"
	"log"

	"github.com/uptrace/bun"
)

// Manager exposes all repositories
type Manager interface {
	Validate() error
	MustValidate()
	Migrate(ctx context.Context) error
	Sessions() *SessionRepository
}

type mngr struct {
	db       *bun.DB
	sessions *SessionRepository
}

func NewManager(db *bun.DB, opts ...SessionOption) Manager {
	return &mngr{
		db:       db,
		sessions: NewSessionRepository(db, opts...),
	}
}

func (m mngr) Validate() error {
	if m.db == nil {
		return errors.New("repository db should be initialized")
	}

	if m.sessions == nil {
		return errors.New("repository sessions should be initialized")
	}

	return nil
}

func (m mngr) MustValidate() {
	if err := m.Validate(); err != nil {
		log.Panic(err)
	}
}

// Migrate creates the tables used by the repositories
func (m mngr) Migrate(ctx context.Context) error {
	if err := m.Validate(); err != nil {
		return err
	}
	return m.sessions.CreateTable(ctx)
}

func (m mngr) Sessions() *SessionRepository {
	return m.sessions
}
