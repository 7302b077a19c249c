package model

import (
	"time"

	"github.com/google/uuid"
)

// Booking is one member's reservation of a seat in a ClassInstance.
type Booking struct {
	ID                uuid.UUID `json:"id"`
	MemberName        string    `json:"memberName"`
	ParticipationDate time.Time `json:"participationDate"`
	ClassInstanceID   uuid.UUID `json:"classInstanceId"`
	CreatedAt         time.Time `json:"createdAt"`
}

// BookingDetail is a booking flattened with the display fields of its class.
type BookingDetail struct {
	ID                uuid.UUID `json:"id"`
	MemberName        string    `json:"memberName"`
	ParticipationDate time.Time `json:"participationDate"`
	ClassInstanceID   uuid.UUID `json:"classInstanceId"`
	ClassID           uuid.UUID `json:"classId"`
	ClassName         string    `json:"className"`
	ClassStartTime    string    `json:"classStartTime"`
	ClassDuration     int       `json:"classDuration"`
	ClassCapacity     int       `json:"classCapacity"`
	CreatedAt         time.Time `json:"createdAt"`
}

// BookingFilter narrows a booking search. Zero values mean "no filter".
type BookingFilter struct {
	MemberName string
	StartDate  *time.Time
	EndDate    *time.Time
}

// CreateBookingRequest is the payload for booking a seat.
type CreateBookingRequest struct {
	MemberName        string `json:"memberName" binding:"required,min=1,max=255"`
	ClassID           string `json:"classId" binding:"required,uuid"`
	ParticipationDate string `json:"participationDate" binding:"required,calendardate,futuredate"`
}

// SearchBookingsQuery holds the optional query-string filters of a booking search.
type SearchBookingsQuery struct {
	MemberName string `form:"memberName" binding:"omitempty,max=255"`
	StartDate  string `form:"startDate" binding:"omitempty,calendardate"`
	EndDate    string `form:"endDate" binding:"omitempty,calendardate"`
}
