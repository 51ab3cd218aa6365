package member

import "time"

type Status string

const (
	StatusActive    Status = "active"
	StatusInactive  Status = "inactive"
	StatusSuspended Status = "suspended"
)

type AccessState string

const (
	AccessActive     AccessState = "active"
	AccessRestricted AccessState = "restricted"
)

type Member struct {
	ID          int         `db:"id" json:"id"`
	UserID      int         `db:"user_id" json:"user_id"`
	Name        string      `db:"name" json:"name"`
	Email       string      `db:"email" json:"email"`
	Status      Status      `db:"status" json:"status"`
	AccessState AccessState `db:"access_state" json:"access_state"`
	CreatedAt   time.Time   `db:"created_at" json:"created_at"`
}

// CanEnter reports whether the member may be admitted to a facility: the
// membership must be active and billing must not have restricted access.
func (m *Member) CanEnter() bool {
	return m.Status == StatusActive && m.AccessState != AccessRestricted
}

type Staff struct {
	ID         int       `db:"id" json:"id"`
	UserID     int       `db:"user_id" json:"user_id"`
	FacilityID int       `db:"facility_id" json:"facility_id"`
	Name       string    `db:"name" json:"name"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}
