// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"

	"github.com/teedon/cooperative-manager-sub000/internal/models"
)

// ErrNotFound is returned when a requested entity does not exist.
var ErrNotFound = errors.New("not found")

// Store defines the interface for circle storage operations. This abstraction
// allows swapping storage backends (SQLite, PostgreSQL, etc.) without changing
// the engine.
type Store interface {
	// CreateCircle persists a new circle together with its initial
	// participant rows, atomically. The circle.ID field will be populated by
	// the store if unset, and each participant's CircleID is stamped from
	// it.
	CreateCircle(ctx context.Context, circle *models.Circle, participants []*models.Participant) error

	// GetCircle retrieves a circle by its ID.
	// Returns ErrNotFound if the circle does not exist.
	GetCircle(ctx context.Context, circleID string) (*models.Circle, error)

	// ListCircles retrieves every circle owned by a cooperative, newest
	// first.
	ListCircles(ctx context.Context, cooperativeID string) ([]*models.Circle, error)

	// ListParticipants retrieves every participant of a circle, ordered by
	// collection order then member ID.
	ListParticipants(ctx context.Context, circleID string) ([]*models.Participant, error)

	// ListCollections retrieves every collection record of a circle in cycle
	// order.
	ListCollections(ctx context.Context, circleID string) ([]*models.CollectionRecord, error)

	// WithCircleTx runs fn inside a transaction that holds the circle's
	// write lock for its whole duration, serializing all read-check-write
	// sequences on that circle. The transaction commits iff fn returns nil;
	// any error aborts the whole transaction with no partial writes.
	// Returns ErrNotFound before invoking fn if the circle does not exist.
	WithCircleTx(ctx context.Context, circleID string, fn func(tx CircleTx) error) error

	// Close releases any resources held by the store.
	Close() error
}

// CircleTx is the view of one circle's data inside a WithCircleTx transaction.
// All reads observe a consistent snapshot; all writes become visible together
// at commit.
type CircleTx interface {
	// Circle returns the locked circle row.
	Circle(ctx context.Context) (*models.Circle, error)

	// UpdateCircle writes the circle's mutable fields (status, cycles,
	// timestamps, cancel reason).
	UpdateCircle(ctx context.Context, circle *models.Circle) error

	// Participants returns every participant of the circle.
	Participants(ctx context.Context) ([]*models.Participant, error)

	// AddParticipants inserts new participant rows.
	AddParticipants(ctx context.Context, participants []*models.Participant) error

	// UpdateParticipant writes a participant's mutable fields (status,
	// collection order, collected flags, response timestamp).
	UpdateParticipant(ctx context.Context, participant *models.Participant) error

	// Contributions returns every contribution record for one cycle.
	Contributions(ctx context.Context, cycle int) ([]*models.ContributionRecord, error)

	// AddContribution inserts a contribution record. The record.ID field
	// will be populated if unset.
	AddContribution(ctx context.Context, record *models.ContributionRecord) error

	// Collection returns the collection record for one cycle.
	// Returns ErrNotFound if the cycle has not been processed.
	Collection(ctx context.Context, cycle int) (*models.CollectionRecord, error)

	// AddCollection inserts a collection record. The record.ID field will be
	// populated if unset.
	AddCollection(ctx context.Context, record *models.CollectionRecord) error
}

// SettingsStore defines persistence for per-cooperative settings.
type SettingsStore interface {
	// GetSettings retrieves a cooperative's settings.
	// Returns ErrNotFound if none have been configured.
	GetSettings(ctx context.Context, cooperativeID string) (*models.CooperativeSettings, error)

	// PutSettings creates or replaces a cooperative's settings.
	PutSettings(ctx context.Context, settings *models.CooperativeSettings) error
}

// UserStore defines persistence for platform administrator accounts.
type UserStore interface {
	// CreateUser persists a new user.
	CreateUser(ctx context.Context, user *models.User) error

	// GetUserByEmail retrieves a user by email.
	// Returns ErrNotFound if no account exists for the address.
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)

	// GetUserByID retrieves a user by ID.
	// Returns ErrNotFound if the user does not exist.
	GetUserByID(ctx context.Context, id string) (*models.User, error)
}
