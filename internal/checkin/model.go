package checkin

import "time"

// CheckIn is one gym visit. CheckOutTime and Duration are set together when
// the visit is closed; Duration is in whole minutes.
type CheckIn struct {
	ID           string     `db:"id" json:"id"`
	UserID       string     `db:"user_id" json:"user_id"`
	CheckInTime  time.Time  `db:"check_in_time" json:"check_in_time"`
	CheckOutTime *time.Time `db:"check_out_time" json:"check_out_time,omitempty"`
	Duration     *int       `db:"duration" json:"duration,omitempty"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
}

func (c *CheckIn) IsOpen() bool {
	return c.CheckOutTime == nil
}

type Status struct {
	IsCheckedIn    bool     `json:"is_checked_in"`
	CurrentCheckIn *CheckIn `json:"current_check_in"`
}

type HistoryQuery struct {
	StartDate string `form:"start_date"`
	EndDate   string `form:"end_date"`
}
