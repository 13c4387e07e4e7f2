package esusu

import (
	"context"
	"errors"
	"log/slog"

	"github.com/teedon/cooperative-manager-sub000/internal/models"
	"github.com/teedon/cooperative-manager-sub000/internal/storage"
)

// CollectionParams holds the inputs for ProcessCollection.
type CollectionParams struct {
	CircleID   string
	Method     models.PaymentMethod
	Reference  string
	Notes      string
	RecordedBy string
}

// PotBreakdown is the money split of one cycle's disbursement.
type PotBreakdown struct {
	TotalAmount float64
	Commission  float64
	NetAmount   float64
}

// SplitPot computes the pot breakdown from the nominal contribution amount,
// the accepted-participant count and the commission rate (a percentage).
// Conservation holds by construction: Commission + NetAmount == TotalAmount.
func SplitPot(contributionAmount float64, acceptedCount int, commissionRate float64) PotBreakdown {
	total := contributionAmount * float64(acceptedCount)
	commission := total * commissionRate / 100
	return PotBreakdown{
		TotalAmount: total,
		Commission:  commission,
		NetAmount:   total - commission,
	}
}

// ProcessCollection disburses the current cycle's pot to the designated
// collector, exactly once, and advances the cycle. Record creation, the
// collector's flags and the cycle advance commit together or not at all.
func (e *Engine) ProcessCollection(ctx context.Context, params CollectionParams) (*models.CollectionRecord, error) {
	if !params.Method.Valid() {
		return nil, newError(KindInvalidState, params.CircleID, "", "unknown payment method %q", params.Method)
	}
	if params.Method.RequiresReference() && params.Reference == "" {
		return nil, newError(KindMissingReference, params.CircleID, "",
			"reference is required for %s disbursements", params.Method)
	}

	rate, err := e.commissionRate(ctx, params.CircleID)
	if err != nil {
		return nil, err
	}

	var (
		record    *models.CollectionRecord
		completed bool
	)
	err = e.store.WithCircleTx(ctx, params.CircleID, func(tx storage.CircleTx) error {
		circle, err := tx.Circle(ctx)
		if err != nil {
			return err
		}
		if err := guardMutable(circle); err != nil {
			return err
		}
		if circle.Status != models.CircleActive {
			return newError(KindCircleNotActive, params.CircleID, "",
				"collections require an active circle, status is %s", circle.Status)
		}

		if _, err := tx.Collection(ctx, circle.CurrentCycle); err == nil {
			return newError(KindAlreadyProcessed, params.CircleID, "",
				"collection already processed for cycle %d", circle.CurrentCycle)
		} else if !errors.Is(err, storage.ErrNotFound) {
			return err
		}

		participants, err := tx.Participants(ctx)
		if err != nil {
			return err
		}
		contributions, err := tx.Contributions(ctx, circle.CurrentCycle)
		if err != nil {
			return err
		}
		status := buildCycleStatus(circle, participants, contributions)
		if !status.IsComplete {
			return newError(KindCycleNotComplete, params.CircleID, "",
				"cycle %d has %d of %d contributions", circle.CurrentCycle,
				status.ContributedCount, status.AcceptedCount)
		}

		var collector *models.Participant
		for _, p := range participants {
			if p.Status == models.InviteAccepted && p.CollectionOrder == circle.CurrentCycle {
				collector = p
				break
			}
		}
		if collector == nil {
			// Should be unreachable once the permutation invariant holds.
			return newError(KindInvalidState, params.CircleID, "",
				"no collector holds slot %d", circle.CurrentCycle)
		}

		// Pot math uses the nominal amount, not the sum of recorded
		// amounts; over/under-payments are reconciled outside the engine.
		pot := SplitPot(circle.Amount, status.AcceptedCount, rate)
		record = &models.CollectionRecord{
			CircleID:    params.CircleID,
			Cycle:       circle.CurrentCycle,
			TotalAmount: pot.TotalAmount,
			Commission:  pot.Commission,
			NetAmount:   pot.NetAmount,
			Method:      params.Method,
			Reference:   params.Reference,
			Notes:       params.Notes,
			CollectorID: collector.MemberID,
			RecordedBy:  params.RecordedBy,
		}
		if err := tx.AddCollection(ctx, record); err != nil {
			return err
		}

		collector.HasCollected = true
		collector.CollectionCycle = circle.CurrentCycle
		if err := tx.UpdateParticipant(ctx, collector); err != nil {
			return err
		}

		if circle.CurrentCycle < circle.TotalCycles {
			circle.CurrentCycle++
		} else {
			circle.Status = models.CircleCompleted
			circle.CompletedAt = record.CreatedAt
			completed = true
		}
		return tx.UpdateCircle(ctx, circle)
	})
	if err != nil {
		return nil, mapStorageErr(err, params.CircleID)
	}

	slog.Info("collection processed",
		"circle_id", params.CircleID,
		"cycle", record.Cycle,
		"collector", record.CollectorID,
		"total", record.TotalAmount,
		"commission", record.Commission,
		"net", record.NetAmount,
		"completed", completed,
	)

	e.notifier.NotifyCollectionProcessed(params.CircleID, record.Cycle, record.CollectorID)
	return record, nil
}

// commissionRate resolves the commission percentage for the circle's
// cooperative before opening the circle transaction; the settings provider is
// an external collaborator and must not run under the engine's lock.
func (e *Engine) commissionRate(ctx context.Context, circleID string) (float64, error) {
	circle, err := e.store.GetCircle(ctx, circleID)
	if err != nil {
		return 0, mapStorageErr(err, circleID)
	}
	rate, err := e.settings.CommissionRate(ctx, circle.CooperativeID)
	if err != nil {
		return 0, err
	}
	if rate < 0 || rate > 100 {
		return 0, newError(KindInvalidState, circleID, "", "commission rate %v is outside 0..100", rate)
	}
	return rate, nil
}
