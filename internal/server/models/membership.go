package models

import "time"

// Membership is the single membership record of an account.
//
// Status is stored and authoritative; it is not derived from End.
type Membership struct {
	ID        int64      `json:"id" db:"id"`
	AccountID int64      `json:"user_id" db:"user_id"`
	Status    bool       `json:"membership_status" db:"membership_status"`
	Start     time.Time  `json:"membership_start" db:"membership_start"`
	End       time.Time  `json:"membership_end" db:"membership_end"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt *time.Time `json:"updated_at" db:"updated_at"`
}

// ValidPeriod reports whether Start is not after End.
func (m *Membership) ValidPeriod() bool {
	return !m.Start.After(m.End)
}

// MembershipPatch carries the fields of a partial update. Nil fields are
// left as they are.
type MembershipPatch struct {
	Status *bool      `json:"membership_status"`
	Start  *time.Time `json:"membership_start"`
	End    *time.Time `json:"membership_end"`
}

// Empty reports whether the patch changes nothing.
func (p MembershipPatch) Empty() bool {
	return p.Status == nil && p.Start == nil && p.End == nil
}

// Apply copies the set fields onto m.
func (p MembershipPatch) Apply(m *Membership) {
	if p.Status != nil {
		m.Status = *p.Status
	}
	if p.Start != nil {
		m.Start = *p.Start
	}
	if p.End != nil {
		m.End = *p.End
	}
}

// History event types.
const (
	EventMembershipStart = "membership_start"
	EventMembershipEnd   = "membership_end"
)

// HistoryEvent is one entry of the projected membership history.
type HistoryEvent struct {
	EventType string    `json:"event_type"`
	Date      time.Time `json:"date"`
	Details   string    `json:"details"`
}
