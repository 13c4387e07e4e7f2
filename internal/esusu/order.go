package esusu

import (
	"context"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/teedon/cooperative-manager-sub000/internal/models"
	"github.com/teedon/cooperative-manager-sub000/internal/storage"
)

// OrderSlot is one (member, order) pair of a manual assignment.
type OrderSlot struct {
	MemberID string
	Order    int
}

// AssignOrder assigns the immutable collection order to the accepted
// participants and activates the circle. The manual list is consulted only
// for the manual strategy and must be a permutation of 1..N over exactly the
// accepted participants. On success the circle transitions pending -> active
// with CurrentCycle 1; the order can never be assigned again.
func (e *Engine) AssignOrder(ctx context.Context, circleID string, manual []OrderSlot) (*models.Circle, error) {
	var activated *models.Circle
	err := e.store.WithCircleTx(ctx, circleID, func(tx storage.CircleTx) error {
		circle, err := tx.Circle(ctx)
		if err != nil {
			return err
		}
		if err := guardMutable(circle); err != nil {
			return err
		}
		switch circle.Status {
		case models.CirclePending:
		case models.CircleActive, models.CircleCompleted:
			return newError(KindOrderAlreadySet, circleID, "", "collection order is already assigned")
		default:
			return newError(KindInvalidState, circleID, "", "order cannot be assigned while the circle is %s", circle.Status)
		}

		participants, err := tx.Participants(ctx)
		if err != nil {
			return err
		}
		accepted := acceptedOf(participants)
		if len(accepted) < minCircleSize {
			return newError(KindInvalidState, circleID, "",
				"at least %d accepted participants are required, have %d", minCircleSize, len(accepted))
		}

		switch circle.Strategy {
		case models.StrategyRandom:
			assignRandom(accepted)
		case models.StrategyFirstCome:
			if err := verifyFirstCome(circle, accepted); err != nil {
				return err
			}
		case models.StrategyManual:
			if err := applyManual(circle, accepted, manual); err != nil {
				return err
			}
		}

		for _, p := range accepted {
			if err := tx.UpdateParticipant(ctx, p); err != nil {
				return err
			}
		}

		// totalCycles is pinned to the accepted count from here on.
		circle.TotalCycles = len(accepted)
		circle.CurrentCycle = 1
		circle.Status = models.CircleActive
		circle.ActivatedAt = time.Now().Unix()
		if err := tx.UpdateCircle(ctx, circle); err != nil {
			return err
		}
		activated = circle
		return nil
	})
	if err != nil {
		return nil, mapStorageErr(err, circleID)
	}

	slog.Info("circle activated",
		"circle_id", circleID,
		"strategy", activated.Strategy,
		"cycles", activated.TotalCycles,
	)
	return activated, nil
}

func acceptedOf(participants []*models.Participant) []*models.Participant {
	var accepted []*models.Participant
	for _, p := range participants {
		if p.Status == models.InviteAccepted {
			accepted = append(accepted, p)
		}
	}
	return accepted
}

// assignRandom gives the accepted participants a uniform random permutation
// of 1..N. rand.Perm is a bijection, so every slot is used exactly once.
func assignRandom(accepted []*models.Participant) {
	for i, slot := range rand.Perm(len(accepted)) {
		accepted[i].CollectionOrder = slot + 1
	}
}

// verifyFirstCome checks that incremental reservation filled every slot.
// Unfilled slots are a policy problem for the caller (extend the deadline or
// fall back to random); the engine never auto-resolves them.
func verifyFirstCome(circle *models.Circle, accepted []*models.Participant) error {
	seen := make(map[int]bool, len(accepted))
	for _, p := range accepted {
		if p.CollectionOrder < 1 || p.CollectionOrder > len(accepted) {
			return newError(KindIncompleteAssignment, circle.ID, p.MemberID,
				"member holds slot %d outside 1..%d", p.CollectionOrder, len(accepted))
		}
		if seen[p.CollectionOrder] {
			return newError(KindIncompleteAssignment, circle.ID, p.MemberID,
				"slot %d is held twice", p.CollectionOrder)
		}
		seen[p.CollectionOrder] = true
	}
	return nil
}

// applyManual validates and applies an explicit (member, order) list:
// a permutation of 1..N covering exactly the accepted participants.
// Any violation fails with no partial writes.
func applyManual(circle *models.Circle, accepted []*models.Participant, manual []OrderSlot) error {
	if len(manual) != len(accepted) {
		return newError(KindInvalidOrder, circle.ID, "",
			"order list has %d entries, need %d", len(manual), len(accepted))
	}

	byMember := make(map[string]*models.Participant, len(accepted))
	for _, p := range accepted {
		byMember[p.MemberID] = p
	}

	usedSlots := make(map[int]bool, len(manual))
	assignedMembers := make(map[string]bool, len(manual))
	for _, slot := range manual {
		p, ok := byMember[slot.MemberID]
		if !ok {
			return newError(KindInvalidOrder, circle.ID, slot.MemberID, "member is not an accepted participant")
		}
		if assignedMembers[slot.MemberID] {
			return newError(KindInvalidOrder, circle.ID, slot.MemberID, "member appears twice in order list")
		}
		if slot.Order < 1 || slot.Order > len(accepted) {
			return newError(KindInvalidOrder, circle.ID, slot.MemberID,
				"order %d is outside 1..%d", slot.Order, len(accepted))
		}
		if usedSlots[slot.Order] {
			return newError(KindInvalidOrder, circle.ID, slot.MemberID, "order %d is used twice", slot.Order)
		}
		assignedMembers[slot.MemberID] = true
		usedSlots[slot.Order] = true
		p.CollectionOrder = slot.Order
	}
	return nil
}
