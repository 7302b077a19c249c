package repository

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stemsi/ignite-backend/internal/model"
)

func TestEscapeLike(t *testing.T) {
	cases := map[string]string{
		"Alice":   "Alice",
		"50%":     `50\%`,
		"a_b":     `a\_b`,
		`back\sl`: `back\\sl`,
		`%_\`:     `\%\_\\`,
		"":        "",
	}
	for in, want := range cases {
		if got := escapeLike(in); got != want {
			t.Fatalf("escapeLike(%q): want=%q got=%q", in, want, got)
		}
	}
}

func TestBuildSearchQueryNoFilter(t *testing.T) {
	query, args := buildSearchQuery(model.BookingFilter{})
	if strings.Contains(query, "WHERE") {
		t.Fatalf("unexpected WHERE in %q", query)
	}
	if len(args) != 0 {
		t.Fatalf("args: want none, got %v", args)
	}
	if !strings.HasSuffix(query, "ORDER BY b.participation_date ASC, b.created_at ASC") {
		t.Fatalf("missing ordering: %q", query)
	}
}

func TestBuildSearchQueryAllFilters(t *testing.T) {
	start := time.Date(2025, 12, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 12, 2, 0, 0, 0, 0, time.UTC)

	query, args := buildSearchQuery(model.BookingFilter{
		MemberName: "an_a",
		StartDate:  &start,
		EndDate:    &end,
	})

	for _, frag := range []string{
		`b.member_name LIKE '%' || $1 || '%'`,
		`b.participation_date >= $2`,
		`b.participation_date <= $3`,
	} {
		if !strings.Contains(query, frag) {
			t.Fatalf("query missing %q:\n%s", frag, query)
		}
	}
	if len(args) != 3 {
		t.Fatalf("args: want 3, got %d", len(args))
	}
	if args[0] != `an\_a` {
		t.Fatalf("member name arg not escaped: %v", args[0])
	}
	if args[1] != start || args[2] != end {
		t.Fatalf("date args: got %v, %v", args[1], args[2])
	}
}

func TestBuildSearchQueryPlaceholdersFollowSuppliedFilters(t *testing.T) {
	end := time.Date(2025, 12, 2, 0, 0, 0, 0, time.UTC)

	query, args := buildSearchQuery(model.BookingFilter{EndDate: &end})
	if !strings.Contains(query, `b.participation_date <= $1`) {
		t.Fatalf("end-only filter should use $1:\n%s", query)
	}
	if strings.Contains(query, ">=") || strings.Contains(query, "LIKE") {
		t.Fatalf("unexpected extra conditions:\n%s", query)
	}
	if len(args) != 1 {
		t.Fatalf("args: want 1, got %d", len(args))
	}
}

func TestAttachInstancesDerivesSeatCounters(t *testing.T) {
	c := &model.Class{Capacity: 2}
	instances := []model.ClassInstance{
		{ID: uuid.New(), Bookings: []model.Booking{}},
		{ID: uuid.New(), Bookings: []model.Booking{{ID: uuid.New()}}},
		{ID: uuid.New(), Bookings: []model.Booking{{ID: uuid.New()}, {ID: uuid.New()}, {ID: uuid.New()}}},
	}

	attachInstances(c, instances)

	wantBooked := []int{0, 1, 3}
	wantAvail := []int{2, 1, 0}
	for i, inst := range c.Instances {
		if inst.BookedCount != wantBooked[i] || inst.AvailableSeats != wantAvail[i] {
			t.Fatalf("instance %d: booked=%d avail=%d", i, inst.BookedCount, inst.AvailableSeats)
		}
	}
}

func TestAttachInstancesNilBecomesEmpty(t *testing.T) {
	c := &model.Class{Capacity: 5}
	attachInstances(c, nil)
	if c.Instances == nil || len(c.Instances) != 0 {
		t.Fatalf("want empty slice, got %v", c.Instances)
	}
}

func TestNotFoundTranslatesNoRows(t *testing.T) {
	if !errors.Is(notFound(pgx.ErrNoRows), ErrNotFound) {
		t.Fatal("pgx.ErrNoRows should become ErrNotFound")
	}
	if !errors.Is(notFound(fmt.Errorf("wrapped: %w", pgx.ErrNoRows)), ErrNotFound) {
		t.Fatal("wrapped pgx.ErrNoRows should become ErrNotFound")
	}
	other := errors.New("boom")
	if notFound(other) != other {
		t.Fatal("other errors must pass through unchanged")
	}
}
