package websocket

import (
	"github.com/google/uuid"
	"github.com/stemsi/ignite-backend/internal/calendar"
	"github.com/stemsi/ignite-backend/internal/model"
)

// ─── Actions (Client → Server) ──────────────────────────────────────

type Action string

const (
	ActionPing Action = "ping"
)

// RequestEnvelope is used to peek at the action before full parsing.
type RequestEnvelope struct {
	Action Action `json:"action"`
}

// ─── Events (Server → Client) ───────────────────────────────────────

type Event string

const (
	EventError    Event = "error"
	EventSnapshot Event = "snapshot"
	EventBooking  Event = "booking"
	EventPong     Event = "pong"
)

// InstanceAvailability is the seat count of one class day.
type InstanceAvailability struct {
	InstanceID     uuid.UUID `json:"instanceId"`
	Date           string    `json:"date"`
	BookedCount    int       `json:"bookedCount"`
	AvailableSeats int       `json:"availableSeats"`
}

// SnapshotResponse is sent once on connect with the seat counts of every day.
type SnapshotResponse struct {
	Event     Event                  `json:"event"`
	ClassID   uuid.UUID              `json:"classId"`
	Capacity  int                    `json:"capacity"`
	Instances []InstanceAvailability `json:"instances"`
}

// BookingResponse is pushed after every booking on the class.
type BookingResponse struct {
	Event    Event                `json:"event"`
	ClassID  uuid.UUID            `json:"classId"`
	Capacity int                  `json:"capacity"`
	Instance InstanceAvailability `json:"instance"`
}

type ErrorResponse struct {
	Event Event  `json:"event"`
	Error string `json:"error"`
}

type PongResponse struct {
	Event Event `json:"event"`
}

// NewSnapshot builds the connect-time snapshot from a class with its instances.
func NewSnapshot(c *model.Class) SnapshotResponse {
	out := SnapshotResponse{
		Event:     EventSnapshot,
		ClassID:   c.ID,
		Capacity:  c.Capacity,
		Instances: make([]InstanceAvailability, 0, len(c.Instances)),
	}
	for _, inst := range c.Instances {
		booked := len(inst.Bookings)
		out.Instances = append(out.Instances, InstanceAvailability{
			InstanceID:     inst.ID,
			Date:           calendar.Format(inst.Date),
			BookedCount:    booked,
			AvailableSeats: max(c.Capacity-booked, 0),
		})
	}
	return out
}

// NewBookingUpdate converts a booking event into the pushed update.
func NewBookingUpdate(ev model.BookingEvent) BookingResponse {
	return BookingResponse{
		Event:    EventBooking,
		ClassID:  ev.ClassID,
		Capacity: ev.Capacity,
		Instance: InstanceAvailability{
			InstanceID:     ev.ClassInstanceID,
			Date:           ev.ParticipationDate,
			BookedCount:    ev.BookedCount,
			AvailableSeats: max(ev.Capacity-ev.BookedCount, 0),
		},
	}
}
