package worker

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog"
	"github.com/stemsi/ignite-backend/internal/model"
)

type fakeEventStore struct {
	copyErr  error
	copied   [][]any
	execErrs map[uuid.UUID]error
	inserted []uuid.UUID
}

func (f *fakeEventStore) CopyFrom(_ context.Context, _ pgx.Identifier, _ []string, src pgx.CopyFromSource) (int64, error) {
	if f.copyErr != nil {
		return 0, f.copyErr
	}
	var n int64
	for src.Next() {
		vals, err := src.Values()
		if err != nil {
			return n, err
		}
		f.copied = append(f.copied, vals)
		n++
	}
	return n, nil
}

func (f *fakeEventStore) Exec(_ context.Context, _ string, args ...any) (pgconn.CommandTag, error) {
	id := args[0].(uuid.UUID)
	if err := f.execErrs[id]; err != nil {
		return pgconn.CommandTag{}, err
	}
	f.inserted = append(f.inserted, id)
	return pgconn.NewCommandTag("INSERT 0 1"), nil
}

func sampleEvent() model.BookingEvent {
	return model.BookingEvent{
		BookingID:         uuid.New(),
		ClassID:           uuid.New(),
		ClassInstanceID:   uuid.New(),
		ClassName:         "Yoga",
		MemberName:        "Alice",
		ParticipationDate: "2025-12-02",
		BookedCount:       1,
		Capacity:          10,
		OccurredAt:        time.Date(2025, 11, 1, 9, 0, 0, 0, time.UTC),
	}
}

func TestDecodeEvent(t *testing.T) {
	ev := sampleEvent()
	raw, _ := json.Marshal(ev)

	got, err := decodeEvent(string(raw))
	if err != nil {
		t.Fatal(err)
	}
	if got.BookingID != ev.BookingID || got.ParticipationDate != ev.ParticipationDate {
		t.Fatalf("decoded mismatch: %+v", got)
	}

	if _, err := decodeEvent("{not json"); err == nil {
		t.Fatal("want error for malformed json")
	}

	ev.ParticipationDate = "12/02/2025"
	raw, _ = json.Marshal(ev)
	if _, err := decodeEvent(string(raw)); err == nil {
		t.Fatal("want error for malformed date")
	}
}

func TestEventRowMatchesColumns(t *testing.T) {
	row := eventRow(sampleEvent())
	if len(row) != len(bookingEventColumns) {
		t.Fatalf("row has %d values for %d columns", len(row), len(bookingEventColumns))
	}
	d, ok := row[4].(time.Time)
	if !ok || !d.Equal(time.Date(2025, 12, 2, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("participation date: %v", row[4])
	}
}

func TestBulkInsertCopiesBatch(t *testing.T) {
	store := &fakeEventStore{}
	w := NewBookingEventsWorker(store, nil, zerolog.Nop())

	batch := []model.BookingEvent{sampleEvent(), sampleEvent()}
	w.flushSafe(context.Background(), batch)

	if len(store.copied) != 2 {
		t.Fatalf("copied rows: want 2, got %d", len(store.copied))
	}
	if len(store.inserted) != 0 {
		t.Fatal("fallback should not run when copy succeeds")
	}
}

func TestFallbackDropsDataErrorsAndRetriesOthers(t *testing.T) {
	good, bad, flaky := sampleEvent(), sampleEvent(), sampleEvent()
	store := &fakeEventStore{
		copyErr: errors.New("copy failed"),
		execErrs: map[uuid.UUID]error{
			bad.BookingID:   &pgconn.PgError{Code: "23514"},
			flaky.BookingID: errors.New("connection refused"),
		},
	}
	w := NewBookingEventsWorker(store, nil, zerolog.Nop())

	retry := w.fallbackInsert(context.Background(), []model.BookingEvent{good, bad, flaky})

	if len(store.inserted) != 1 || store.inserted[0] != good.BookingID {
		t.Fatalf("inserted: %v", store.inserted)
	}
	if len(retry) != 1 || retry[0].BookingID != flaky.BookingID {
		t.Fatalf("retry: %v", retry)
	}
}

func TestIsDataError(t *testing.T) {
	cases := []struct {
		err  error
		want bool
	}{
		{&pgconn.PgError{Code: "23505"}, true},
		{&pgconn.PgError{Code: "22007"}, true},
		{&pgconn.PgError{Code: "57P01"}, false},
		{errors.New("timeout"), false},
	}
	for _, tc := range cases {
		if got := isDataError(tc.err); got != tc.want {
			t.Fatalf("isDataError(%v): want %v, got %v", tc.err, tc.want, got)
		}
	}
}
