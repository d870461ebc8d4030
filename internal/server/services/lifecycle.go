package services

import (
	"time"

	"github.com/dmitrijs2005/fitkeeper/internal/server/models"
)

// RenewalPeriod is how far a renewal pushes the end date.
const RenewalPeriod = 30 * 24 * time.Hour

// RenewedEnd returns the end date after one renewal. The new window starts at
// the later of the current end and now: an unexpired membership is extended
// from its end, a lapsed one from now.
func RenewedEnd(currentEnd, now time.Time) time.Time {
	anchor := currentEnd
	if now.After(anchor) {
		anchor = now
	}
	return anchor.Add(RenewalPeriod)
}

// ApplyRenewal renews m in place and reactivates it. Start is untouched.
func ApplyRenewal(m *models.Membership, now time.Time) {
	m.End = RenewedEnd(m.End, now)
	m.Status = true
}

// HistoryOf projects a membership into its start and end events.
func HistoryOf(m *models.Membership) []models.HistoryEvent {
	return []models.HistoryEvent{
		{
			EventType: models.EventMembershipStart,
			Date:      m.Start,
			Details:   "Initial membership start",
		},
		{
			EventType: models.EventMembershipEnd,
			Date:      m.End,
			Details:   "Current membership end date",
		},
	}
}
