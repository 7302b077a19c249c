package model

import (
	"time"

	"github.com/google/uuid"
)

// Class is a recurring fitness class scheduled every day in [StartDate, EndDate].
type Class struct {
	ID        uuid.UUID       `json:"id"`
	Name      string          `json:"name"`
	StartDate time.Time       `json:"startDate"`
	EndDate   time.Time       `json:"endDate"`
	StartTime string          `json:"startTime"` // HH:MM, 24-hour
	Duration  int             `json:"duration"`  // minutes
	Capacity  int             `json:"capacity"`
	CreatedAt time.Time       `json:"createdAt"`
	Instances []ClassInstance `json:"instances,omitempty"`
}

// ClassInstance is the occurrence of a Class on a single calendar day.
type ClassInstance struct {
	ID             uuid.UUID `json:"id"`
	ClassID        uuid.UUID `json:"classId"`
	Date           time.Time `json:"date"`
	Bookings       []Booking `json:"bookings"`
	BookedCount    int       `json:"bookedCount"`
	AvailableSeats int       `json:"availableSeats"`
}

// CreateClassRequest is the payload for creating a class.
type CreateClassRequest struct {
	Name      string `json:"name" binding:"required,min=1,max=255"`
	StartDate string `json:"startDate" binding:"required,calendardate,futuredate"`
	EndDate   string `json:"endDate" binding:"required,calendardate,futuredate,dateafter=StartDate"`
	StartTime string `json:"startTime" binding:"required,hhmm"`
	Duration  int    `json:"duration" binding:"required,min=1,max=2147483647"`
	Capacity  int    `json:"capacity" binding:"required,min=1,max=2147483647"`
}
