package worker

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stemsi/ignite-backend/internal/calendar"
	"github.com/stemsi/ignite-backend/internal/config"
	"github.com/stemsi/ignite-backend/internal/model"
)

const (
	BatchSize    = 50
	BatchTimeout = 2 * time.Second
	PollTimeout  = 1 * time.Second // Must be >= 1s to satisfy Redis
)

var bookingEventColumns = []string{
	"booking_id", "class_id", "class_instance_id", "member_name",
	"participation_date", "booked_count", "capacity", "occurred_at",
}

// eventStore is the subset of pgxpool.Pool the worker writes through.
type eventStore interface {
	CopyFrom(ctx context.Context, table pgx.Identifier, columns []string, src pgx.CopyFromSource) (int64, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// BookingEventsWorker drains the booking event queue into the booking_events
// audit table in batches.
type BookingEventsWorker struct {
	db  eventStore
	rdb *redis.Client
	log zerolog.Logger
}

func NewBookingEventsWorker(db eventStore, rdb *redis.Client, log zerolog.Logger) *BookingEventsWorker {
	return &BookingEventsWorker{
		db:  db,
		rdb: rdb,
		log: log.With().Str("component", "booking_events_worker").Logger(),
	}
}

func (w *BookingEventsWorker) Start(ctx context.Context) {
	w.log.Info().Msg("BookingEventsWorker started")

	buffer := make([]model.BookingEvent, 0, BatchSize)
	lastFlush := time.Now()

	for {
		// 1. Flush on size or age
		if len(buffer) > 0 && (len(buffer) >= BatchSize || time.Since(lastFlush) >= BatchTimeout) {
			w.flushSafe(ctx, buffer)
			buffer = buffer[:0]
			lastFlush = time.Now()
		}

		// 2. Graceful shutdown
		select {
		case <-ctx.Done():
			w.shutdown(buffer)
			return
		default:
		}

		// 3. Fetch
		result, err := w.rdb.BLPop(ctx, PollTimeout, config.WorkerKey.PersistBookingEventsQueue).Result()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				continue
			}
			if ctx.Err() != nil {
				w.shutdown(buffer)
				return
			}
			w.log.Error().Err(err).Msg("Redis connection error, sleeping 3s")
			time.Sleep(3 * time.Second)
			continue
		}

		// 4. Decode
		if len(result) < 2 {
			continue
		}
		ev, err := decodeEvent(result[1])
		if err != nil {
			w.log.Error().Err(err).Str("data", result[1]).Msg("Discarding malformed booking event")
			continue
		}
		buffer = append(buffer, ev)
	}
}

func decodeEvent(raw string) (model.BookingEvent, error) {
	var ev model.BookingEvent
	if err := json.Unmarshal([]byte(raw), &ev); err != nil {
		return ev, err
	}
	if _, err := calendar.ParseDate(ev.ParticipationDate); err != nil {
		return ev, err
	}
	return ev, nil
}

func eventRow(ev model.BookingEvent) []any {
	date, _ := calendar.ParseDate(ev.ParticipationDate)
	return []any{
		ev.BookingID, ev.ClassID, ev.ClassInstanceID, ev.MemberName,
		date, ev.BookedCount, ev.Capacity, ev.OccurredAt,
	}
}

// flushSafe attempts a bulk copy, then row-by-row inserts, then requeues
// whatever could not be written.
func (w *BookingEventsWorker) flushSafe(ctx context.Context, batch []model.BookingEvent) {
	if err := w.bulkInsert(ctx, batch); err != nil {
		w.log.Warn().Err(err).Int("count", len(batch)).Msg("Bulk insert failed, attempting row-by-row recovery")
		if retry := w.fallbackInsert(ctx, batch); len(retry) > 0 {
			w.requeue(ctx, retry)
		}
		return
	}
	w.log.Debug().Int("count", len(batch)).Msg("Booking events persisted")
}

func (w *BookingEventsWorker) bulkInsert(ctx context.Context, batch []model.BookingEvent) error {
	rows := make([][]any, 0, len(batch))
	for _, ev := range batch {
		rows = append(rows, eventRow(ev))
	}
	_, err := w.db.CopyFrom(ctx, pgx.Identifier{"booking_events"}, bookingEventColumns, pgx.CopyFromRows(rows))
	return err
}

// fallbackInsert writes events one at a time and returns those worth retrying.
// Events already recorded are skipped; events the database rejects as invalid
// data are dropped.
func (w *BookingEventsWorker) fallbackInsert(ctx context.Context, batch []model.BookingEvent) []model.BookingEvent {
	var retry []model.BookingEvent

	for _, ev := range batch {
		_, err := w.db.Exec(ctx,
			`INSERT INTO booking_events
			   (booking_id, class_id, class_instance_id, member_name, participation_date, booked_count, capacity, occurred_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			 ON CONFLICT (booking_id) DO NOTHING`,
			eventRow(ev)...,
		)
		if err == nil {
			continue
		}

		if isDataError(err) {
			w.log.Error().Err(err).Str("booking_id", ev.BookingID.String()).Msg("Dropping booking event rejected by database")
			continue
		}
		w.log.Error().Err(err).Str("booking_id", ev.BookingID.String()).Msg("Insert failed, requeueing")
		retry = append(retry, ev)
	}
	return retry
}

// isDataError reports whether Postgres refused the row itself (classes 22
// and 23) rather than failing to process it.
func isDataError(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || len(pgErr.Code) < 2 {
		return false
	}
	class := pgErr.Code[:2]
	return class == "22" || class == "23"
}

func (w *BookingEventsWorker) requeue(ctx context.Context, items []model.BookingEvent) {
	pipe := w.rdb.Pipeline()
	for _, ev := range items {
		data, _ := json.Marshal(ev)
		pipe.RPush(ctx, config.WorkerKey.PersistBookingEventsQueue, data)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		w.log.Error().Err(err).Int("count", len(items)).Msg("CRITICAL: Failed to requeue booking events. Data loss occurred.")
		return
	}
	w.log.Info().Int("count", len(items)).Msg("Requeued failed booking events")
	// back off while the database recovers
	time.Sleep(2 * time.Second)
}

func (w *BookingEventsWorker) shutdown(buffer []model.BookingEvent) {
	w.log.Info().Int("pending", len(buffer)).Msg("Worker stopping, flushing remaining buffer...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if len(buffer) > 0 {
		w.flushSafe(shutdownCtx, buffer)
	}
}
