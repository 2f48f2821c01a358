package report

import "time"

type PopularClass struct {
	ClassID     string    `db:"class_id" json:"class_id"`
	Name        string    `db:"name" json:"name"`
	TrainerName string    `db:"trainer_name" json:"trainer_name"`
	StartTime   time.Time `db:"start_time" json:"start_time"`
	BookedCount int       `db:"booked_count" json:"booked_count"`
}

type DashboardStats struct {
	TotalMembers   int64          `json:"total_members"`
	ActiveMembers  int64          `json:"active_members"`
	TotalRevenue   int64          `json:"total_revenue"`
	MonthlyRevenue int64          `json:"monthly_revenue"`
	TodayCheckIns  int64          `json:"today_check_ins"`
	PopularClasses []PopularClass `json:"popular_classes"`
}

// RangeQuery holds calendar dates as YYYY-MM-DD strings.
type RangeQuery struct {
	StartDate string `form:"start_date"`
	EndDate   string `form:"end_date"`
}

type DailyRevenue struct {
	Date             time.Time `db:"date"`
	Revenue          int64     `db:"revenue"`
	TransactionCount int       `db:"transaction_count"`
}

type RevenueData struct {
	TotalRevenue int64
	Daily        []DailyRevenue
}

type DailyAttendance struct {
	Date          time.Time `db:"date"`
	CheckIns      int       `db:"check_ins"`
	UniqueMembers int       `db:"unique_members"`
}

type AttendanceData struct {
	TotalCheckIns int64
	AveragePerDay float64
	Daily         []DailyAttendance
}

type RevenueDay struct {
	Date             string `json:"date"`
	Revenue          int64  `json:"revenue"`
	TransactionCount int    `json:"transaction_count"`
}

type RevenueReport struct {
	StartDate    time.Time    `json:"start_date"`
	EndDate      time.Time    `json:"end_date"`
	TotalRevenue int64        `json:"total_revenue"`
	Daily        []RevenueDay `json:"daily"`
}

type AttendanceDay struct {
	Date          string `json:"date"`
	CheckIns      int    `json:"check_ins"`
	UniqueMembers int    `json:"unique_members"`
}

type AttendanceReport struct {
	StartDate     time.Time       `json:"start_date"`
	EndDate       time.Time       `json:"end_date"`
	TotalCheckIns int64           `json:"total_check_ins"`
	AveragePerDay float64         `json:"average_per_day"`
	Daily         []AttendanceDay `json:"daily"`
}
