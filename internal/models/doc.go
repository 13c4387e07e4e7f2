// Package models defines the core domain models for the rotating savings
// (Esusu) engine of the cooperative-management platform.
//
// # Entities
//
//   - Circle: one rotating-savings instance owned by a cooperative
//   - Participant: one invited member of a circle, with invitation state and
//     an assigned collection order
//   - ContributionRecord: one member's payment into the pot for one cycle
//   - CollectionRecord: the disbursement of one cycle's pot to its collector
//   - CooperativeSettings: per-cooperative commission rate and default frequency
//   - User: a platform administrator account
//
// # Design Principles
//
// 1. **Closed status types**: circle status, invitation status, order strategy,
// frequency and payment method are all typed constants with Valid() checks, so
// illegal states stay out of the engine.
//
// 2. **Immutable money records**: ContributionRecord and CollectionRecord are
// never updated once written; corrections happen at the policy layer.
//
// 3. **Avoid circular references**: entities reference each other by ID
// strings, never by pointer.
package models
