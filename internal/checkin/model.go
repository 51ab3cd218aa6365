package checkin

import "time"

// CheckinToken is a single-use admission credential rendered as a QR code.
// Used flips from false to true at most once and the row is never deleted.
type CheckinToken struct {
	Token      string     `db:"token" json:"token"`
	MemberID   int        `db:"member_id" json:"member_id"`
	FacilityID int        `db:"facility_id" json:"facility_id"`
	ExpiresAt  time.Time  `db:"expires_at" json:"expires_at"`
	Used       bool       `db:"used" json:"used"`
	UsedAt     *time.Time `db:"used_at" json:"used_at,omitempty"`
	UsedBy     *int       `db:"used_by" json:"used_by,omitempty"`
	CreatedBy  int        `db:"created_by" json:"created_by"`
	CreatedAt  time.Time  `db:"created_at" json:"created_at"`
}

// Expired reports whether the token is past its expiry at now. A token is
// still valid at exactly ExpiresAt.
func (t *CheckinToken) Expired(now time.Time) bool {
	return now.After(t.ExpiresAt)
}

type CheckinRecord struct {
	ID          int       `db:"id" json:"checkin_id"`
	Token       string    `db:"token" json:"-"`
	MemberID    int       `db:"member_id" json:"member_id"`
	FacilityID  int       `db:"facility_id" json:"facility_id"`
	StaffID     int       `db:"staff_id" json:"staff_id"`
	CheckedInAt time.Time `db:"checked_in_at" json:"checked_in_at"`
}

type IssueTokenRequest struct {
	FacilityID int `json:"facility_id" binding:"required,gt=0"`
}

type IssueTokenResponse struct {
	Token      string    `json:"token"`
	FacilityID int       `json:"facility_id"`
	ExpiresAt  time.Time `json:"expires_at"`
}

type RedeemRequest struct {
	Token string `json:"token" binding:"required"`
}
