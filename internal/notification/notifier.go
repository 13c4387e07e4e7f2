// Package notification delivers invitation and disbursement notices.
// Delivery is fire-and-forget: the engine never blocks on or fails because of
// a notification.
package notification

import "log/slog"

// LogNotifier writes notifications to the structured log instead of sending
// them. Used in development and tests, and as the fallback when SMTP is not
// configured.
type LogNotifier struct{}

// NotifyInvitation logs an invitation notice.
func (LogNotifier) NotifyInvitation(circleID string, memberIDs []string) {
	slog.Info("invitation notice", "circle_id", circleID, "members", len(memberIDs))
}

// NotifyCollectionProcessed logs a disbursement notice.
func (LogNotifier) NotifyCollectionProcessed(circleID string, cycle int, collectorID string) {
	slog.Info("collection notice", "circle_id", circleID, "cycle", cycle, "collector", collectorID)
}
