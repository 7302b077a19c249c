// Package events delivers BookingEvents to the systems that react to bookings:
// the audit queue, the live availability channel and the message broker.
package events

import (
	"context"
	"errors"

	"github.com/stemsi/ignite-backend/internal/model"
)

// Publisher delivers a single booking event.
type Publisher interface {
	Publish(ctx context.Context, ev model.BookingEvent) error
}

// Fanout publishes to every publisher in order. All publishers are tried;
// their errors are joined.
type Fanout []Publisher

// Publish implements Publisher.
func (f Fanout) Publish(ctx context.Context, ev model.BookingEvent) error {
	var errs []error
	for _, p := range f {
		if p == nil {
			continue
		}
		if err := p.Publish(ctx, ev); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
