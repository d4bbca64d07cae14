package visitor

import (
	"context"
	"time"
)

// Status of a visitor authorization. Transitions are forward-only:
// Pending -> Checked-In -> Checked-Out. Expired is reached only by the
// overdue sweep, never by check-in/out.
type Status string

const (
	StatusPending    Status = "Pending"
	StatusCheckedIn  Status = "Checked-In"
	StatusCheckedOut Status = "Checked-Out"
	StatusExpired    Status = "Expired"
)

// Visitor is one pre-authorized visit.
type Visitor struct {
	ID                string     `json:"id" db:"id"`
	Name              string     `json:"name" db:"name"`
	Purpose           string     `json:"purpose" db:"purpose"`
	AccessCode        string     `json:"accessCode" db:"access_code"`
	AuthorizedBy      string     `json:"authorizedBy" db:"authorized_by"`
	Status            Status     `json:"status" db:"status"`
	AuthorizationDate time.Time  `json:"authorizationDate" db:"authorization_date"`
	VisitDate         time.Time  `json:"visitDate" db:"visit_date"`
	EntryTime         *time.Time `json:"entryTime,omitempty" db:"entry_time"`
	ExitTime          *time.Time `json:"exitTime,omitempty" db:"exit_time"`
}

// Store is the authoritative collection of visitor records. List returns
// records newest-first (by authorization date). Delete of an absent id
// is a no-op.
type Store interface {
	List(ctx context.Context) ([]Visitor, error)
	Get(ctx context.Context, id string) (*Visitor, error)
	Insert(ctx context.Context, v Visitor) error
	Update(ctx context.Context, v Visitor) error
	Delete(ctx context.Context, id string) error
}

// SameCalendarDay compares two timestamps by calendar day, ignoring the
// time of day. Verification and expiry both work on day granularity.
func SameCalendarDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
