package esusu

import (
	"errors"
	"fmt"
)

// Kind categorizes engine validation failures. Every precondition violation
// surfaces as an *Error carrying one of these kinds, specific enough for the
// calling layer to present an actionable message.
type Kind string

const (
	// KindInvalidState means the operation is not valid for the circle's
	// current status.
	KindInvalidState Kind = "INVALID_STATE"

	// KindInvitationExpired means the circle's invitation deadline passed.
	KindInvitationExpired Kind = "INVITATION_EXPIRED"

	// KindAlreadyResponded means the member already accepted or declined.
	KindAlreadyResponded Kind = "ALREADY_RESPONDED"

	// KindSlotTaken means the requested first-come slot is reserved.
	KindSlotTaken Kind = "SLOT_TAKEN"

	// KindIncompleteAssignment means first-come slots are unfilled at
	// assignment time.
	KindIncompleteAssignment Kind = "INCOMPLETE_ASSIGNMENT"

	// KindInvalidOrder means a supplied order list is not a permutation of
	// 1..N over exactly the accepted participants, or a slot is out of
	// range.
	KindInvalidOrder Kind = "INVALID_ORDER"

	// KindOrderAlreadySet means the collection order was already assigned.
	KindOrderAlreadySet Kind = "ORDER_ALREADY_SET"

	// KindMissingReference means a non-cash payment has no reference.
	KindMissingReference Kind = "MISSING_REFERENCE"

	// KindCycleNotComplete means some accepted participant has not
	// contributed this cycle.
	KindCycleNotComplete Kind = "CYCLE_NOT_COMPLETE"

	// KindAlreadyProcessed means the record already exists: a second
	// contribution for the same (member, cycle) or a second collection for
	// the same cycle.
	KindAlreadyProcessed Kind = "ALREADY_PROCESSED"

	// KindCircleNotActive means the operation requires an active circle.
	KindCircleNotActive Kind = "CIRCLE_NOT_ACTIVE"

	// KindCircleCancelled means the circle was cancelled and rejects all
	// mutating operations.
	KindCircleCancelled Kind = "CIRCLE_CANCELLED"

	// KindNotFound means the circle or participant does not exist.
	KindNotFound Kind = "NOT_FOUND"
)

// Error is a validation failure detected by the engine. It aborts the entire
// operation with no partial writes.
type Error struct {
	// Kind identifies the failure category.
	Kind Kind

	// Message is a human-readable description.
	Message string

	// CircleID identifies the affected circle.
	CircleID string

	// MemberID identifies the affected member, when one is involved.
	MemberID string
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.MemberID != "" {
		return fmt.Sprintf("%s: %s (circle=%s, member=%s)", e.Kind, e.Message, e.CircleID, e.MemberID)
	}
	if e.CircleID != "" {
		return fmt.Sprintf("%s: %s (circle=%s)", e.Kind, e.Message, e.CircleID)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// ErrKind returns the engine error kind, or "" if err is not an engine error.
// Uses errors.As to handle wrapped errors.
func ErrKind(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// IsKind reports whether err is an engine error of the given kind.
func IsKind(err error, kind Kind) bool {
	return ErrKind(err) == kind
}

func newError(kind Kind, circleID, memberID, format string, args ...interface{}) *Error {
	return &Error{
		Kind:     kind,
		Message:  fmt.Sprintf(format, args...),
		CircleID: circleID,
		MemberID: memberID,
	}
}
