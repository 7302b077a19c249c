package events

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stemsi/ignite-backend/internal/model"
)

type stubPublisher struct {
	calls int
	err   error
}

func (s *stubPublisher) Publish(context.Context, model.BookingEvent) error {
	s.calls++
	return s.err
}

func TestFanoutReachesEveryPublisher(t *testing.T) {
	failing := &stubPublisher{err: errors.New("broker down")}
	ok := &stubPublisher{}

	err := Fanout{failing, nil, ok}.Publish(context.Background(), model.BookingEvent{BookingID: uuid.New()})

	if failing.calls != 1 || ok.calls != 1 {
		t.Fatalf("calls: failing=%d ok=%d", failing.calls, ok.calls)
	}
	if !errors.Is(err, failing.err) {
		t.Fatalf("want joined error, got %v", err)
	}
}

func TestEmptyFanout(t *testing.T) {
	if err := (Fanout{}).Publish(context.Background(), model.BookingEvent{}); err != nil {
		t.Fatalf("want nil, got %v", err)
	}
}
