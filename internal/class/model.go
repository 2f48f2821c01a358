package class

import "time"

const (
	BookingBooked    = "booked"
	BookingCancelled = "cancelled"
)

type Class struct {
	ID          string    `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	TrainerName string    `db:"trainer_name" json:"trainer_name"`
	StartTime   time.Time `db:"start_time" json:"start_time"`
	EndTime     time.Time `db:"end_time" json:"end_time"`
	Capacity    int       `db:"capacity" json:"capacity"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

type ClassWithAvailability struct {
	Class
	BookedCount    int  `db:"booked_count" json:"booked_count"`
	AvailableSlots int  `db:"-" json:"available_slots"`
	IsBookable     bool `db:"-" json:"is_bookable"`
}

// fillAvailability derives the free seats from capacity and bookings.
func (c *ClassWithAvailability) fillAvailability() {
	c.AvailableSlots = c.Capacity - c.BookedCount
	if c.AvailableSlots < 0 {
		c.AvailableSlots = 0
	}
	c.IsBookable = c.AvailableSlots > 0
}

type Booking struct {
	ID        string    `db:"id" json:"id"`
	UserID    string    `db:"user_id" json:"user_id"`
	ClassID   string    `db:"class_id" json:"class_id"`
	Status    string    `db:"status" json:"status"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

type BookingWithClass struct {
	Booking
	ClassName   string    `db:"class_name" json:"class_name"`
	TrainerName string    `db:"trainer_name" json:"trainer_name"`
	StartTime   time.Time `db:"start_time" json:"start_time"`
	EndTime     time.Time `db:"end_time" json:"end_time"`
}

type CreateClassRequest struct {
	Name        string `json:"name" binding:"required" validate:"min=2,max=255"`
	TrainerName string `json:"trainer_name" validate:"max=255"`
	StartTime   string `json:"start_time" binding:"required"`
	EndTime     string `json:"end_time" binding:"required"`
	Capacity    int    `json:"capacity" binding:"required" validate:"gte=1,lte=500"`
}

type CancelBookingResponse struct {
	Message string `json:"message" example:"Booking cancelled successfully"`
}
