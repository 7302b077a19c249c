package config

type WorkerKeyStruct struct {
	PersistBookingEventsQueue string
	BookingConfirmedQueue     string
}

var WorkerKey = &WorkerKeyStruct{
	PersistBookingEventsQueue: "persist_booking_events_queue",
	BookingConfirmedQueue:     "booking.confirmed",
}
