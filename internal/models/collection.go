package models

// CollectionRecord is the disbursement of one cycle's pot to that cycle's
// designated collector. Exactly one record exists per (circle, cycle) once
// the cycle is processed. Records are immutable once created.
type CollectionRecord struct {
	// ID is the unique identifier for the record (UUID format).
	ID string `json:"id"`

	// CircleID is the circle the collection belongs to.
	CircleID string `json:"circle_id"`

	// Cycle is the 1-indexed cycle whose pot was disbursed.
	Cycle int `json:"cycle"`

	// TotalAmount is the pot: nominal contribution amount times the number
	// of accepted participants.
	TotalAmount float64 `json:"total_amount"`

	// Commission is the cooperative's administrative fee, a configured
	// percentage of TotalAmount.
	Commission float64 `json:"commission"`

	// NetAmount is what the collector receives: TotalAmount - Commission.
	NetAmount float64 `json:"net_amount"`

	// Method is the disbursement channel.
	Method PaymentMethod `json:"method"`

	// Reference is the disbursement reference number.
	Reference string `json:"reference"`

	// Notes is free-form text entered by the recorder.
	Notes string `json:"notes"`

	// CollectorID is the member who received the pot.
	CollectorID string `json:"collector_id"`

	// RecordedBy is the administrator who processed the disbursement.
	RecordedBy string `json:"recorded_by"`

	// CreatedAt is the Unix timestamp when the record was created.
	CreatedAt int64 `json:"created_at"`
}
