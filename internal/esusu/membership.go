package esusu

import (
	"context"
	"log/slog"
	"time"

	"github.com/teedon/cooperative-manager-sub000/internal/models"
	"github.com/teedon/cooperative-manager-sub000/internal/storage"
)

// Invite adds pending participants to a circle. Only allowed while the circle
// is pending and the collection order has not been assigned.
func (e *Engine) Invite(ctx context.Context, circleID string, memberIDs []string) error {
	if len(memberIDs) == 0 {
		return newError(KindInvalidState, circleID, "", "no members to invite")
	}
	if hasDuplicates(memberIDs) {
		return newError(KindInvalidState, circleID, "", "duplicate member in invitation list")
	}

	err := e.store.WithCircleTx(ctx, circleID, func(tx storage.CircleTx) error {
		circle, err := tx.Circle(ctx)
		if err != nil {
			return err
		}
		if err := guardMutable(circle); err != nil {
			return err
		}
		if circle.Status != models.CirclePending {
			return newError(KindInvalidState, circleID, "", "invitations are closed once the circle is %s", circle.Status)
		}

		existing, err := tx.Participants(ctx)
		if err != nil {
			return err
		}
		invited := make(map[string]bool, len(existing))
		for _, p := range existing {
			invited[p.MemberID] = true
		}

		participants := make([]*models.Participant, 0, len(memberIDs))
		for _, memberID := range memberIDs {
			if invited[memberID] {
				return newError(KindInvalidState, circleID, memberID, "member is already invited")
			}
			participants = append(participants, &models.Participant{
				CircleID: circleID,
				MemberID: memberID,
				Status:   models.InvitePending,
			})
		}
		if err := tx.AddParticipants(ctx, participants); err != nil {
			return err
		}

		// totalCycles tracks the invited count until order assignment pins
		// it to the accepted count.
		circle.TotalCycles = len(existing) + len(participants)
		return tx.UpdateCircle(ctx, circle)
	})
	if err != nil {
		return mapStorageErr(err, circleID)
	}

	slog.Info("members invited", "circle_id", circleID, "count", len(memberIDs))
	e.notifier.NotifyInvitation(circleID, memberIDs)
	return nil
}

// Decision is a member's answer to a circle invitation.
type Decision string

const (
	DecisionAccept  Decision = "accepted"
	DecisionDecline Decision = "declined"
)

// RespondParams holds the inputs for Respond.
type RespondParams struct {
	CircleID string
	MemberID string
	Decision Decision

	// PreferredSlot is the collection slot the member wants. Only consulted
	// on acceptance in first_come circles, where it is required.
	PreferredSlot int
}

// Respond records a member's invitation answer. In first_come circles an
// acceptance reserves the preferred collection slot immediately; reservation
// happens here, not at bulk order assignment.
func (e *Engine) Respond(ctx context.Context, params RespondParams) (*models.Participant, error) {
	if params.Decision != DecisionAccept && params.Decision != DecisionDecline {
		return nil, newError(KindInvalidState, params.CircleID, params.MemberID, "unknown decision %q", params.Decision)
	}

	var responded *models.Participant
	err := e.store.WithCircleTx(ctx, params.CircleID, func(tx storage.CircleTx) error {
		circle, err := tx.Circle(ctx)
		if err != nil {
			return err
		}
		if err := guardMutable(circle); err != nil {
			return err
		}
		if circle.Status != models.CirclePending {
			return newError(KindInvalidState, params.CircleID, params.MemberID, "responses are closed once the circle is %s", circle.Status)
		}

		// Deadline expiry is evaluated lazily here, not by a timer.
		if circle.InviteDeadline > 0 && time.Now().Unix() > circle.InviteDeadline {
			return newError(KindInvitationExpired, params.CircleID, params.MemberID, "invitation deadline has passed")
		}

		participants, err := tx.Participants(ctx)
		if err != nil {
			return err
		}

		var participant *models.Participant
		for _, p := range participants {
			if p.MemberID == params.MemberID {
				participant = p
				break
			}
		}
		if participant == nil {
			return newError(KindNotFound, params.CircleID, params.MemberID, "member was not invited")
		}
		if participant.Status != models.InvitePending {
			return newError(KindAlreadyResponded, params.CircleID, params.MemberID, "invitation already %s", participant.Status)
		}

		participant.RespondedAt = time.Now().Unix()
		if params.Decision == DecisionDecline {
			participant.Status = models.InviteDeclined
			responded = participant
			return tx.UpdateParticipant(ctx, participant)
		}

		participant.Status = models.InviteAccepted
		if circle.Strategy == models.StrategyFirstCome {
			if err := reserveSlot(circle, participants, participant, params.PreferredSlot); err != nil {
				return err
			}
		}
		responded = participant
		return tx.UpdateParticipant(ctx, participant)
	})
	if err != nil {
		return nil, mapStorageErr(err, params.CircleID)
	}

	slog.Info("invitation response recorded",
		"circle_id", params.CircleID,
		"member_id", params.MemberID,
		"decision", params.Decision,
		"slot", responded.CollectionOrder,
	)
	return responded, nil
}

// reserveSlot assigns a first-come collection slot at acceptance time.
func reserveSlot(circle *models.Circle, participants []*models.Participant, participant *models.Participant, slot int) error {
	if slot < 1 || slot > circle.TotalCycles {
		return newError(KindInvalidOrder, circle.ID, participant.MemberID,
			"slot %d is outside 1..%d", slot, circle.TotalCycles)
	}
	for _, p := range participants {
		if p.Status == models.InviteAccepted && p.CollectionOrder == slot && p.MemberID != participant.MemberID {
			return newError(KindSlotTaken, circle.ID, participant.MemberID,
				"slot %d is already reserved by another member", slot)
		}
	}
	participant.CollectionOrder = slot
	return nil
}
