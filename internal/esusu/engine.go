// Package esusu implements the rotating savings circle engine: invitation
// lifecycle, collection-order assignment, per-cycle contribution tracking and
// at-most-once pot disbursement.
//
// Every mutating operation runs inside a per-circle exclusive transaction
// provided by the store, so concurrent admin actions on the same circle are
// serialized and each operation is all-or-nothing.
package esusu

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/teedon/cooperative-manager-sub000/internal/models"
	"github.com/teedon/cooperative-manager-sub000/internal/storage"
)

// SettingsProvider supplies per-cooperative configuration. It is an explicit
// dependency so the engine stays testable in isolation.
type SettingsProvider interface {
	// CommissionRate returns the administrative fee as a percentage of the
	// pot (e.g., 5 means 5%).
	CommissionRate(ctx context.Context, cooperativeID string) (float64, error)

	// DefaultFrequency returns the cadence circles default to when the
	// creator does not choose one.
	DefaultFrequency(ctx context.Context, cooperativeID string) (models.Frequency, error)
}

// Notifier delivers notifications after successful state changes. Calls are
// fire-and-forget: they run after commit and never block or fail the engine.
type Notifier interface {
	NotifyInvitation(circleID string, memberIDs []string)
	NotifyCollectionProcessed(circleID string, cycle int, collectorID string)
}

// minCircleSize is the smallest number of accepted participants a circle can
// activate with.
const minCircleSize = 3

// Engine coordinates the savings circle lifecycle. It is the only component
// that mutates circle status and current cycle.
type Engine struct {
	store    storage.Store
	settings SettingsProvider
	notifier Notifier
}

// New creates an engine with the given collaborators.
func New(store storage.Store, settings SettingsProvider, notifier Notifier) *Engine {
	return &Engine{store: store, settings: settings, notifier: notifier}
}

// CreateCircleParams holds the inputs for CreateCircle.
type CreateCircleParams struct {
	CooperativeID  string
	Name           string
	Amount         float64
	Frequency      models.Frequency // zero value: cooperative default
	Strategy       models.OrderStrategy
	MemberIDs      []string // initial invitations, one participant each
	InviteDeadline int64    // unix, 0 = no deadline
	CreatedBy      string
}

// CreateCircle creates a pending circle and one pending participant per
// invited member. TotalCycles starts as the invited count; it is pinned to
// the accepted count when the order is assigned.
func (e *Engine) CreateCircle(ctx context.Context, params CreateCircleParams) (*models.Circle, error) {
	if params.CooperativeID == "" || params.Name == "" {
		return nil, newError(KindInvalidState, "", "", "cooperative and name are required")
	}
	if params.Amount <= 0 {
		return nil, newError(KindInvalidState, "", "", "contribution amount must be positive")
	}
	if !params.Strategy.Valid() {
		return nil, newError(KindInvalidState, "", "", "unknown order strategy %q", params.Strategy)
	}
	if len(params.MemberIDs) == 0 {
		return nil, newError(KindInvalidState, "", "", "at least one member must be invited")
	}
	if hasDuplicates(params.MemberIDs) {
		return nil, newError(KindInvalidState, "", "", "duplicate member in invitation list")
	}

	frequency := params.Frequency
	if frequency == "" {
		def, err := e.settings.DefaultFrequency(ctx, params.CooperativeID)
		if err != nil {
			return nil, err
		}
		frequency = def
	}
	if !frequency.Valid() {
		return nil, newError(KindInvalidState, "", "", "unknown frequency %q", frequency)
	}

	circle := &models.Circle{
		CooperativeID:  params.CooperativeID,
		Name:           params.Name,
		Amount:         params.Amount,
		Frequency:      frequency,
		Strategy:       params.Strategy,
		TotalCycles:    len(params.MemberIDs),
		Status:         models.CirclePending,
		InviteDeadline: params.InviteDeadline,
		CreatedBy:      params.CreatedBy,
	}

	participants := make([]*models.Participant, len(params.MemberIDs))
	for i, memberID := range params.MemberIDs {
		participants[i] = &models.Participant{
			MemberID: memberID,
			Status:   models.InvitePending,
		}
	}

	if err := e.store.CreateCircle(ctx, circle, participants); err != nil {
		return nil, err
	}

	slog.Info("circle created",
		"circle_id", circle.ID,
		"cooperative_id", circle.CooperativeID,
		"strategy", circle.Strategy,
		"invited", len(participants),
	)

	e.notifier.NotifyInvitation(circle.ID, params.MemberIDs)

	return circle, nil
}

// Circle returns a circle and its participants.
func (e *Engine) Circle(ctx context.Context, circleID string) (*models.Circle, []*models.Participant, error) {
	circle, err := e.store.GetCircle(ctx, circleID)
	if err != nil {
		return nil, nil, mapStorageErr(err, circleID)
	}
	participants, err := e.store.ListParticipants(ctx, circleID)
	if err != nil {
		return nil, nil, err
	}
	return circle, participants, nil
}

// Circles returns every circle owned by a cooperative.
func (e *Engine) Circles(ctx context.Context, cooperativeID string) ([]*models.Circle, error) {
	return e.store.ListCircles(ctx, cooperativeID)
}

// Collections returns a circle's disbursement history in cycle order.
func (e *Engine) Collections(ctx context.Context, circleID string) ([]*models.CollectionRecord, error) {
	if _, err := e.store.GetCircle(ctx, circleID); err != nil {
		return nil, mapStorageErr(err, circleID)
	}
	return e.store.ListCollections(ctx, circleID)
}

// Cancel puts the circle in the terminal cancelled state. Every status except
// completed (and cancelled itself) may be cancelled; afterwards all mutating
// operations fail with KindCircleCancelled.
func (e *Engine) Cancel(ctx context.Context, circleID, reason string) error {
	err := e.store.WithCircleTx(ctx, circleID, func(tx storage.CircleTx) error {
		circle, err := tx.Circle(ctx)
		if err != nil {
			return err
		}
		switch circle.Status {
		case models.CircleCompleted:
			return newError(KindInvalidState, circleID, "", "completed circles cannot be cancelled")
		case models.CircleCancelled:
			return newError(KindCircleCancelled, circleID, "", "circle is already cancelled")
		}

		circle.Status = models.CircleCancelled
		circle.CancelReason = reason
		circle.CancelledAt = time.Now().Unix()
		return tx.UpdateCircle(ctx, circle)
	})
	if err != nil {
		return mapStorageErr(err, circleID)
	}

	slog.Info("circle cancelled", "circle_id", circleID, "reason", reason)
	return nil
}

// guardMutable rejects operations on cancelled circles up front so every
// mutating path reports cancellation with the same kind.
func guardMutable(circle *models.Circle) error {
	if circle.Status == models.CircleCancelled {
		return newError(KindCircleCancelled, circle.ID, "", "circle is cancelled")
	}
	return nil
}

// mapStorageErr converts storage lookups of missing circles into the engine's
// NotFound kind; everything else passes through.
func mapStorageErr(err error, circleID string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, storage.ErrNotFound) {
		return newError(KindNotFound, circleID, "", "circle not found")
	}
	return err
}

func hasDuplicates(ids []string) bool {
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if seen[id] {
			return true
		}
		seen[id] = true
	}
	return false
}
