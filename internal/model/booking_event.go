package model

import (
	"time"

	"github.com/google/uuid"
)

// BookingEvent is emitted after a booking commits. It feeds the audit log,
// the live availability stream and the message broker.
type BookingEvent struct {
	BookingID         uuid.UUID `json:"bookingId"`
	ClassID           uuid.UUID `json:"classId"`
	ClassInstanceID   uuid.UUID `json:"classInstanceId"`
	ClassName         string    `json:"className"`
	MemberName        string    `json:"memberName"`
	ParticipationDate string    `json:"participationDate"` // YYYY-MM-DD
	BookedCount       int       `json:"bookedCount"`
	Capacity          int       `json:"capacity"`
	OccurredAt        time.Time `json:"occurredAt"`
}
