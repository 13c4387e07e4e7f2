package models

// InviteStatus is the invitation state of a participant.
type InviteStatus string

const (
	// InvitePending means the member has not responded yet.
	InvitePending InviteStatus = "pending"

	// InviteAccepted means the member accepted and will contribute.
	InviteAccepted InviteStatus = "accepted"

	// InviteDeclined means the member declined. Declined participants keep
	// their row but never receive a collection order.
	InviteDeclined InviteStatus = "declined"
)

// Valid reports whether the status is one of the known invitation states.
func (s InviteStatus) Valid() bool {
	switch s {
	case InvitePending, InviteAccepted, InviteDeclined:
		return true
	}
	return false
}

// Participant is one invited member of a circle. A participant row is created
// at invitation time and never deleted; invitation response and order
// assignment mutate it.
type Participant struct {
	// ID is the unique identifier for the participant row (UUID format).
	ID string `json:"id"`

	// CircleID is the circle this participant belongs to.
	CircleID string `json:"circle_id"`

	// MemberID identifies the cooperative member who was invited.
	MemberID string `json:"member_id"`

	// Status is the invitation state.
	Status InviteStatus `json:"status"`

	// CollectionOrder is the 1-indexed slot at which this participant
	// collects the pot. Zero until assigned. Among accepted participants the
	// assigned values form a contiguous permutation of 1..TotalCycles.
	CollectionOrder int `json:"collection_order"`

	// HasCollected is true once the pot for this participant's slot has been
	// disbursed.
	HasCollected bool `json:"has_collected"`

	// CollectionCycle is the cycle number at which this participant
	// collected. Zero unless HasCollected.
	CollectionCycle int `json:"collection_cycle"`

	// RespondedAt is the Unix timestamp of the invitation response.
	// Zero while pending.
	RespondedAt int64 `json:"responded_at"`

	// CreatedAt is the Unix timestamp when the invitation was recorded.
	CreatedAt int64 `json:"created_at"`
}
