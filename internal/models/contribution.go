package models

// PaymentMethod is the channel a payment came through.
type PaymentMethod string

const (
	MethodCash         PaymentMethod = "cash"
	MethodBankTransfer PaymentMethod = "bank_transfer"
	MethodMobileMoney  PaymentMethod = "mobile_money"
	MethodCheque       PaymentMethod = "cheque"
)

// Valid reports whether the method is one of the known payment channels.
func (m PaymentMethod) Valid() bool {
	switch m {
	case MethodCash, MethodBankTransfer, MethodMobileMoney, MethodCheque:
		return true
	}
	return false
}

// RequiresReference reports whether a payment reference is mandatory for this
// method. Only cash payments may omit one.
func (m PaymentMethod) RequiresReference() bool {
	return m != MethodCash
}

// ContributionRecord is one member's payment into the pot for one cycle.
// At most one record exists per (member, cycle) pair. Records are immutable
// once created; corrections require a reversal at the policy layer.
type ContributionRecord struct {
	// ID is the unique identifier for the record (UUID format).
	ID string `json:"id"`

	// CircleID is the circle the contribution belongs to.
	CircleID string `json:"circle_id"`

	// MemberID is the contributing member.
	MemberID string `json:"member_id"`

	// Cycle is the 1-indexed cycle the contribution was made for.
	Cycle int `json:"cycle"`

	// Amount is the amount actually recorded. It is not forced to equal the
	// circle's nominal Amount; reconciliation is a reporting concern.
	Amount float64 `json:"amount"`

	// Method is the payment channel.
	Method PaymentMethod `json:"method"`

	// Reference is the payment reference number. Required unless Method is
	// cash.
	Reference string `json:"reference"`

	// Notes is free-form text entered by the recorder.
	Notes string `json:"notes"`

	// RecordedBy is the administrator who recorded the payment.
	RecordedBy string `json:"recorded_by"`

	// CreatedAt is the Unix timestamp when the record was created.
	CreatedAt int64 `json:"created_at"`
}
