package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stemsi/ignite-backend/internal/calendar"
	"github.com/stemsi/ignite-backend/internal/model"
	"github.com/stemsi/ignite-backend/internal/repository"
)

// BookingStore is the persistence contract of BookingService.
type BookingStore interface {
	CreateWithinCapacity(ctx context.Context, b *model.Booking, capacity int) (int, error)
	GetDetailByID(ctx context.Context, id uuid.UUID) (*model.BookingDetail, error)
	Search(ctx context.Context, f model.BookingFilter) ([]model.BookingDetail, error)
}

// EventPublisher receives a BookingEvent after each committed booking.
type EventPublisher interface {
	Publish(ctx context.Context, ev model.BookingEvent) error
}

// ClassCacheInvalidator drops cached class views after their bookings change.
type ClassCacheInvalidator interface {
	InvalidateClass(ctx context.Context, id uuid.UUID)
}

// NewBookingInput carries an already-validated booking request.
type NewBookingInput struct {
	MemberName        string
	ClassID           uuid.UUID
	ParticipationDate time.Time
}

// BookingService applies the booking rules and records bookings.
type BookingService struct {
	classRepo   ClassStore
	bookingRepo BookingStore
	cache       ClassCacheInvalidator
	publisher   EventPublisher
	log         zerolog.Logger
	now         func() time.Time
}

// NewBookingService creates a new BookingService. cache and publisher may be nil.
func NewBookingService(
	classRepo ClassStore,
	bookingRepo BookingStore,
	cache ClassCacheInvalidator,
	publisher EventPublisher,
	log zerolog.Logger,
) *BookingService {
	return &BookingService{
		classRepo:   classRepo,
		bookingRepo: bookingRepo,
		cache:       cache,
		publisher:   publisher,
		log:         log.With().Str("component", "booking_service").Logger(),
		now:         time.Now,
	}
}

// Create books a seat for a member on one day of a class.
//
// Checks run in a fixed order and the first failure wins:
// class exists, date not in the past, date within the class range,
// an instance exists for the date, the instance has a free seat.
func (s *BookingService) Create(ctx context.Context, in NewBookingInput) (*model.BookingDetail, error) {
	class, err := s.classRepo.GetByID(ctx, in.ClassID, true)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrClassNotFound
		}
		return nil, fmt.Errorf("load class: %w", err)
	}

	date := calendar.Truncate(in.ParticipationDate)
	if date.Before(calendar.Today(s.now())) {
		return nil, ErrInvalidDate
	}

	if date.Before(calendar.Truncate(class.StartDate)) || date.After(calendar.Truncate(class.EndDate)) {
		return nil, fmt.Errorf("%w: class runs %s to %s",
			ErrOutOfRange, calendar.Format(class.StartDate), calendar.Format(class.EndDate))
	}

	instance := findInstance(class.Instances, date)
	if instance == nil {
		return nil, fmt.Errorf("%w %s", ErrNoInstance, calendar.Format(date))
	}

	if len(instance.Bookings) >= class.Capacity {
		return nil, fmt.Errorf("%w: %d of %d seats taken",
			ErrCapacityExceeded, len(instance.Bookings), class.Capacity)
	}

	booking := &model.Booking{
		MemberName:        in.MemberName,
		ParticipationDate: date,
		ClassInstanceID:   instance.ID,
	}
	bookedCount, err := s.bookingRepo.CreateWithinCapacity(ctx, booking, class.Capacity)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrCapacityReached):
			return nil, fmt.Errorf("%w: %d of %d seats taken", ErrCapacityExceeded, bookedCount, class.Capacity)
		case errors.Is(err, repository.ErrNotFound):
			return nil, fmt.Errorf("%w %s", ErrNoInstance, calendar.Format(date))
		}
		s.log.Error().Err(err).Str("class_id", class.ID.String()).Msg("failed to create booking")
		return nil, fmt.Errorf("create booking: %w", err)
	}

	detail := &model.BookingDetail{
		ID:                booking.ID,
		MemberName:        booking.MemberName,
		ParticipationDate: booking.ParticipationDate,
		ClassInstanceID:   booking.ClassInstanceID,
		ClassID:           class.ID,
		ClassName:         class.Name,
		ClassStartTime:    class.StartTime,
		ClassDuration:     class.Duration,
		ClassCapacity:     class.Capacity,
		CreatedAt:         booking.CreatedAt,
	}

	s.log.Info().
		Str("booking_id", booking.ID.String()).
		Str("class_id", class.ID.String()).
		Str("date", calendar.Format(date)).
		Int("booked", bookedCount).
		Int("capacity", class.Capacity).
		Msg("Booking created")

	if s.cache != nil {
		s.cache.InvalidateClass(ctx, class.ID)
	}
	s.publish(ctx, detail, bookedCount)

	return detail, nil
}

// Search returns bookings matching the filter, ordered by participation date.
func (s *BookingService) Search(ctx context.Context, f model.BookingFilter) ([]model.BookingDetail, error) {
	bookings, err := s.bookingRepo.Search(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("search bookings: %w", err)
	}
	return bookings, nil
}

// ListAll returns every booking.
func (s *BookingService) ListAll(ctx context.Context) ([]model.BookingDetail, error) {
	return s.Search(ctx, model.BookingFilter{})
}

// GetByID retrieves a single booking.
func (s *BookingService) GetByID(ctx context.Context, id uuid.UUID) (*model.BookingDetail, error) {
	b, err := s.bookingRepo.GetDetailByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrBookingNotFound
		}
		return nil, fmt.Errorf("get booking: %w", err)
	}
	return b, nil
}

// publish hands the event to the publisher. The booking is already
// committed, so failures are logged and not returned.
func (s *BookingService) publish(ctx context.Context, d *model.BookingDetail, bookedCount int) {
	if s.publisher == nil {
		return
	}
	ev := model.BookingEvent{
		BookingID:         d.ID,
		ClassID:           d.ClassID,
		ClassInstanceID:   d.ClassInstanceID,
		ClassName:         d.ClassName,
		MemberName:        d.MemberName,
		ParticipationDate: calendar.Format(d.ParticipationDate),
		BookedCount:       bookedCount,
		Capacity:          d.ClassCapacity,
		OccurredAt:        s.now().UTC(),
	}
	if err := s.publisher.Publish(ctx, ev); err != nil {
		s.log.Warn().Err(err).Str("booking_id", d.ID.String()).Msg("failed to publish booking event")
	}
}

func findInstance(instances []model.ClassInstance, date time.Time) *model.ClassInstance {
	for i := range instances {
		if calendar.SameDay(instances[i].Date, date) {
			return &instances[i]
		}
	}
	return nil
}
