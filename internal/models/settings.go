package models

// CooperativeSettings holds the per-cooperative knobs the engine consumes.
type CooperativeSettings struct {
	// CooperativeID is the cooperative these settings belong to.
	CooperativeID string `json:"cooperative_id"`

	// CommissionRate is the administrative fee as a percentage of the pot
	// (e.g., 5 means 5%).
	CommissionRate float64 `json:"commission_rate"`

	// DefaultFrequency is the cadence new circles start with when the
	// creator does not choose one.
	DefaultFrequency Frequency `json:"default_frequency"`
}
