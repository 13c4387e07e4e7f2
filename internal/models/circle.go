package models

// CircleStatus is the lifecycle state of a savings circle.
type CircleStatus string

const (
	// CirclePending means invitations are open and the collection order has
	// not been assigned yet.
	CirclePending CircleStatus = "pending"

	// CircleActive means the order is set and cycles are running.
	CircleActive CircleStatus = "active"

	// CircleCompleted means every cycle's pot has been disbursed.
	CircleCompleted CircleStatus = "completed"

	// CircleCancelled is a terminal administrative state. Cancelled circles
	// reject every mutating operation but are never physically removed.
	CircleCancelled CircleStatus = "cancelled"
)

// Valid reports whether the status is one of the known circle states.
func (s CircleStatus) Valid() bool {
	switch s {
	case CirclePending, CircleActive, CircleCompleted, CircleCancelled:
		return true
	}
	return false
}

// OrderStrategy determines how collection order is assigned to accepted
// participants.
type OrderStrategy string

const (
	// StrategyRandom assigns a uniform random permutation at activation.
	StrategyRandom OrderStrategy = "random"

	// StrategyFirstCome reserves slots incrementally as members accept.
	StrategyFirstCome OrderStrategy = "first_come"

	// StrategyManual takes an explicit (member, order) list from the caller.
	StrategyManual OrderStrategy = "manual"
)

// Valid reports whether the strategy is one of the known strategies.
func (s OrderStrategy) Valid() bool {
	switch s {
	case StrategyRandom, StrategyFirstCome, StrategyManual:
		return true
	}
	return false
}

// Frequency is the contribution cadence of a circle.
type Frequency string

const (
	FrequencyWeekly  Frequency = "weekly"
	FrequencyMonthly Frequency = "monthly"
)

// Valid reports whether the frequency is one of the known cadences.
func (f Frequency) Valid() bool {
	return f == FrequencyWeekly || f == FrequencyMonthly
}

// Circle represents one rotating-savings instance (an Esusu plan).
// A circle runs exactly TotalCycles cycles; in each cycle every accepted
// participant contributes Amount and one participant collects the pot.
type Circle struct {
	// ID is the unique identifier for the circle (UUID format).
	ID string `json:"id"`

	// CooperativeID is the cooperative that owns this circle.
	CooperativeID string `json:"cooperative_id"`

	// Name is the display name of the circle (e.g., "Market Women Q3").
	Name string `json:"name"`

	// Amount is the fixed per-cycle contribution each participant pays.
	Amount float64 `json:"amount"`

	// Frequency is the contribution cadence (weekly or monthly).
	Frequency Frequency `json:"frequency"`

	// Strategy determines how collection order is assigned.
	Strategy OrderStrategy `json:"strategy"`

	// TotalCycles is the number of cycles the circle will run. It starts as
	// the invited-member count and is pinned to the accepted-member count
	// when the order is assigned.
	TotalCycles int `json:"total_cycles"`

	// CurrentCycle is the 1-indexed cycle now collecting contributions.
	// Zero until the circle activates.
	CurrentCycle int `json:"current_cycle"`

	// Status is the lifecycle state of the circle.
	Status CircleStatus `json:"status"`

	// InviteDeadline is the Unix timestamp after which invitation responses
	// are rejected. Zero means no deadline.
	InviteDeadline int64 `json:"invite_deadline"`

	// CancelReason records why the circle was cancelled, if it was.
	CancelReason string `json:"cancel_reason"`

	// CreatedBy is the administrator who created the circle.
	CreatedBy string `json:"created_by"`

	// CreatedAt is the Unix timestamp when the circle was created.
	CreatedAt int64 `json:"created_at"`

	// ActivatedAt is the Unix timestamp when the order was assigned and the
	// circle went active. Zero until then.
	ActivatedAt int64 `json:"activated_at"`

	// CompletedAt is the Unix timestamp when the final cycle's pot was
	// disbursed. Zero until then.
	CompletedAt int64 `json:"completed_at"`

	// CancelledAt is the Unix timestamp when the circle was cancelled.
	// Zero unless cancelled.
	CancelledAt int64 `json:"cancelled_at"`
}
