package repository

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stemsi/ignite-backend/internal/model"
)

const bookingDetailColumns = `b.id, b.member_name, b.participation_date, b.class_instance_id,
		c.id, c.name, c.start_time, c.duration_minutes, c.capacity, b.created_at`

const bookingDetailFrom = `FROM bookings b
		 JOIN class_instances ci ON ci.id = b.class_instance_id
		 JOIN classes c ON c.id = ci.class_id`

// BookingRepository handles booking data access.
type BookingRepository struct {
	pool *pgxpool.Pool
}

// NewBookingRepository creates a new BookingRepository.
func NewBookingRepository(pool *pgxpool.Pool) *BookingRepository {
	return &BookingRepository{pool: pool}
}

// CreateWithinCapacity inserts b unless its instance already holds capacity
// bookings. The instance row is locked FOR UPDATE for the duration of the
// count-and-insert, so concurrent requests for the same instance serialize.
// Returns the instance's booking count after the insert.
func (r *BookingRepository) CreateWithinCapacity(ctx context.Context, b *model.Booking, capacity int) (int, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var locked uuid.UUID
	err = tx.QueryRow(ctx,
		`SELECT id FROM class_instances WHERE id = $1 FOR UPDATE`, b.ClassInstanceID,
	).Scan(&locked)
	if err != nil {
		return 0, notFound(err)
	}

	count, err := countForInstance(ctx, tx, b.ClassInstanceID)
	if err != nil {
		return 0, fmt.Errorf("count bookings: %w", err)
	}
	if count >= capacity {
		return count, ErrCapacityReached
	}

	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	err = tx.QueryRow(ctx,
		`INSERT INTO bookings (id, member_name, participation_date, class_instance_id)
		 VALUES ($1, $2, $3, $4)
		 RETURNING created_at`,
		b.ID, b.MemberName, b.ParticipationDate, b.ClassInstanceID,
	).Scan(&b.CreatedAt)
	if err != nil {
		return 0, fmt.Errorf("insert booking: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return count + 1, nil
}

// CountForInstance returns the number of bookings held by an instance.
func (r *BookingRepository) CountForInstance(ctx context.Context, instanceID uuid.UUID) (int, error) {
	return countForInstance(ctx, r.pool, instanceID)
}

func countForInstance(ctx context.Context, q querier, instanceID uuid.UUID) (int, error) {
	var n int
	err := q.QueryRow(ctx,
		`SELECT COUNT(*) FROM bookings WHERE class_instance_id = $1`, instanceID,
	).Scan(&n)
	return n, err
}

// GetDetailByID retrieves a booking joined with its class display fields.
func (r *BookingRepository) GetDetailByID(ctx context.Context, id uuid.UUID) (*model.BookingDetail, error) {
	d := &model.BookingDetail{}
	err := r.pool.QueryRow(ctx,
		`SELECT `+bookingDetailColumns+` `+bookingDetailFrom+` WHERE b.id = $1`, id,
	).Scan(detailDest(d)...)
	if err != nil {
		return nil, notFound(err)
	}
	return d, nil
}

// Search retrieves bookings matching the filter, ordered by participation date.
func (r *BookingRepository) Search(ctx context.Context, f model.BookingFilter) ([]model.BookingDetail, error) {
	query, args := buildSearchQuery(f)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	details := []model.BookingDetail{}
	for rows.Next() {
		var d model.BookingDetail
		if err := rows.Scan(detailDest(&d)...); err != nil {
			return nil, err
		}
		details = append(details, d)
	}
	return details, rows.Err()
}

// buildSearchQuery renders the WHERE clause for f. Bounds are inclusive and
// member names match as a case-sensitive substring.
func buildSearchQuery(f model.BookingFilter) (string, []any) {
	query := `SELECT ` + bookingDetailColumns + ` ` + bookingDetailFrom
	var (
		conds []string
		args  []any
	)
	argIdx := 1

	if f.MemberName != "" {
		conds = append(conds, `b.member_name LIKE '%' || $`+strconv.Itoa(argIdx)+` || '%' ESCAPE '\'`)
		args = append(args, escapeLike(f.MemberName))
		argIdx++
	}
	if f.StartDate != nil {
		conds = append(conds, `b.participation_date >= $`+strconv.Itoa(argIdx))
		args = append(args, *f.StartDate)
		argIdx++
	}
	if f.EndDate != nil {
		conds = append(conds, `b.participation_date <= $`+strconv.Itoa(argIdx))
		args = append(args, *f.EndDate)
	}

	if len(conds) > 0 {
		query += ` WHERE ` + strings.Join(conds, ` AND `)
	}
	query += ` ORDER BY b.participation_date ASC, b.created_at ASC`
	return query, args
}

// escapeLike neutralizes LIKE wildcards so user input matches literally.
func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

func detailDest(d *model.BookingDetail) []any {
	return []any{
		&d.ID, &d.MemberName, &d.ParticipationDate, &d.ClassInstanceID,
		&d.ClassID, &d.ClassName, &d.ClassStartTime, &d.ClassDuration, &d.ClassCapacity, &d.CreatedAt,
	}
}
