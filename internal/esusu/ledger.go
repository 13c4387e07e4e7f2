package esusu

import (
	"context"
	"log/slog"

	"github.com/teedon/cooperative-manager-sub000/internal/models"
	"github.com/teedon/cooperative-manager-sub000/internal/storage"
)

// ContributionParams holds the inputs for RecordContribution.
type ContributionParams struct {
	CircleID   string
	MemberID   string
	Amount     float64
	Method     models.PaymentMethod
	Reference  string
	Notes      string
	RecordedBy string
}

// RecordContribution records one member's payment for the current cycle.
// The amount is stored as submitted; it is not reconciled against the
// circle's nominal amount (pot math uses the nominal amount), so over- and
// under-payments are a reporting concern, not an engine invariant.
func (e *Engine) RecordContribution(ctx context.Context, params ContributionParams) (*models.ContributionRecord, error) {
	if !params.Method.Valid() {
		return nil, newError(KindInvalidState, params.CircleID, params.MemberID, "unknown payment method %q", params.Method)
	}
	if params.Method.RequiresReference() && params.Reference == "" {
		return nil, newError(KindMissingReference, params.CircleID, params.MemberID,
			"reference is required for %s payments", params.Method)
	}
	if params.Amount <= 0 {
		return nil, newError(KindInvalidState, params.CircleID, params.MemberID, "amount must be positive")
	}

	var record *models.ContributionRecord
	err := e.store.WithCircleTx(ctx, params.CircleID, func(tx storage.CircleTx) error {
		circle, err := tx.Circle(ctx)
		if err != nil {
			return err
		}
		if err := guardMutable(circle); err != nil {
			return err
		}
		if circle.Status != models.CircleActive {
			return newError(KindCircleNotActive, params.CircleID, params.MemberID,
				"contributions require an active circle, status is %s", circle.Status)
		}

		participants, err := tx.Participants(ctx)
		if err != nil {
			return err
		}
		if !isAccepted(participants, params.MemberID) {
			return newError(KindInvalidState, params.CircleID, params.MemberID, "member is not an accepted participant")
		}

		existing, err := tx.Contributions(ctx, circle.CurrentCycle)
		if err != nil {
			return err
		}
		for _, rec := range existing {
			if rec.MemberID == params.MemberID {
				return newError(KindAlreadyProcessed, params.CircleID, params.MemberID,
					"contribution already recorded for cycle %d", circle.CurrentCycle)
			}
		}

		record = &models.ContributionRecord{
			CircleID:   params.CircleID,
			MemberID:   params.MemberID,
			Cycle:      circle.CurrentCycle,
			Amount:     params.Amount,
			Method:     params.Method,
			Reference:  params.Reference,
			Notes:      params.Notes,
			RecordedBy: params.RecordedBy,
		}
		return tx.AddContribution(ctx, record)
	})
	if err != nil {
		return nil, mapStorageErr(err, params.CircleID)
	}

	slog.Info("contribution recorded",
		"circle_id", params.CircleID,
		"member_id", params.MemberID,
		"cycle", record.Cycle,
		"amount", record.Amount,
		"method", record.Method,
	)
	return record, nil
}

// CycleStatus describes how far the current cycle's collection round has
// progressed.
type CycleStatus struct {
	// Cycle is the current 1-indexed cycle.
	Cycle int `json:"cycle"`

	// ContributedCount is how many accepted participants have paid.
	ContributedCount int `json:"contributed_count"`

	// AcceptedCount is how many participants must pay.
	AcceptedCount int `json:"accepted_count"`

	// Outstanding lists the member IDs who have not paid this cycle.
	Outstanding []string `json:"outstanding"`

	// CollectorID is the member whose collection order equals the current
	// cycle.
	CollectorID string `json:"collector_id"`

	// IsComplete is true once every accepted participant has contributed.
	IsComplete bool `json:"is_complete"`
}

// GetCycleStatus reports the current cycle's progress and designated
// collector.
func (e *Engine) GetCycleStatus(ctx context.Context, circleID string) (*CycleStatus, error) {
	var status *CycleStatus
	err := e.store.WithCircleTx(ctx, circleID, func(tx storage.CircleTx) error {
		circle, err := tx.Circle(ctx)
		if err != nil {
			return err
		}
		if circle.Status != models.CircleActive {
			return newError(KindCircleNotActive, circleID, "",
				"cycle status requires an active circle, status is %s", circle.Status)
		}

		participants, err := tx.Participants(ctx)
		if err != nil {
			return err
		}
		contributions, err := tx.Contributions(ctx, circle.CurrentCycle)
		if err != nil {
			return err
		}
		status = buildCycleStatus(circle, participants, contributions)
		return nil
	})
	if err != nil {
		return nil, mapStorageErr(err, circleID)
	}
	return status, nil
}

func buildCycleStatus(circle *models.Circle, participants []*models.Participant, contributions []*models.ContributionRecord) *CycleStatus {
	paid := make(map[string]bool, len(contributions))
	for _, rec := range contributions {
		paid[rec.MemberID] = true
	}

	status := &CycleStatus{Cycle: circle.CurrentCycle}
	for _, p := range participants {
		if p.Status != models.InviteAccepted {
			continue
		}
		status.AcceptedCount++
		if paid[p.MemberID] {
			status.ContributedCount++
		} else {
			status.Outstanding = append(status.Outstanding, p.MemberID)
		}
		if p.CollectionOrder == circle.CurrentCycle {
			status.CollectorID = p.MemberID
		}
	}
	status.IsComplete = status.AcceptedCount > 0 && status.ContributedCount == status.AcceptedCount
	return status
}

func isAccepted(participants []*models.Participant, memberID string) bool {
	for _, p := range participants {
		if p.MemberID == memberID {
			return p.Status == models.InviteAccepted
		}
	}
	return false
}
