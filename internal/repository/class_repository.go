package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stemsi/ignite-backend/internal/model"
)

// ClassRepository handles class and class instance data access.
type ClassRepository struct {
	pool *pgxpool.Pool
}

// NewClassRepository creates a new ClassRepository.
func NewClassRepository(pool *pgxpool.Pool) *ClassRepository {
	return &ClassRepository{pool: pool}
}

// CreateWithInstances inserts the class and one instance per date in a single
// transaction. Either everything is written or nothing is. On success c.ID,
// c.CreatedAt and c.Instances are populated.
func (r *ClassRepository) CreateWithInstances(ctx context.Context, c *model.Class, dates []time.Time) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}

	err = tx.QueryRow(ctx,
		`INSERT INTO classes (id, name, start_date, end_date, start_time, duration_minutes, capacity)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING created_at`,
		c.ID, c.Name, c.StartDate, c.EndDate, c.StartTime, c.Duration, c.Capacity,
	).Scan(&c.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert class: %w", err)
	}

	instances := make([]model.ClassInstance, 0, len(dates))
	rows := make([][]any, 0, len(dates))
	for _, d := range dates {
		inst := model.ClassInstance{
			ID:             uuid.New(),
			ClassID:        c.ID,
			Date:           d,
			Bookings:       []model.Booking{},
			AvailableSeats: c.Capacity,
		}
		instances = append(instances, inst)
		rows = append(rows, []any{inst.ID, inst.ClassID, inst.Date})
	}

	copied, err := tx.CopyFrom(
		ctx,
		pgx.Identifier{"class_instances"},
		[]string{"id", "class_id", "instance_date"},
		pgx.CopyFromRows(rows),
	)
	if err != nil {
		return fmt.Errorf("insert class instances: %w", err)
	}
	if copied != int64(len(rows)) {
		return fmt.Errorf("insert class instances: wrote %d of %d rows", copied, len(rows))
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	c.Instances = instances
	return nil
}

// GetByID retrieves a class by its ID, optionally with its instances and
// their bookings. Returns ErrNotFound when the class does not exist.
func (r *ClassRepository) GetByID(ctx context.Context, id uuid.UUID, withInstances bool) (*model.Class, error) {
	c := &model.Class{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, name, start_date, end_date, start_time, duration_minutes, capacity, created_at
		 FROM classes WHERE id = $1`, id,
	).Scan(&c.ID, &c.Name, &c.StartDate, &c.EndDate, &c.StartTime, &c.Duration, &c.Capacity, &c.CreatedAt)
	if err != nil {
		return nil, notFound(err)
	}

	if withInstances {
		byClass, err := loadInstances(ctx, r.pool, []uuid.UUID{c.ID})
		if err != nil {
			return nil, err
		}
		attachInstances(c, byClass[c.ID])
	}
	return c, nil
}

// List retrieves all classes ordered by start date.
func (r *ClassRepository) List(ctx context.Context, withInstances bool) ([]model.Class, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, name, start_date, end_date, start_time, duration_minutes, capacity, created_at
		 FROM classes ORDER BY start_date ASC, created_at ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	classes := []model.Class{}
	for rows.Next() {
		var c model.Class
		if err := rows.Scan(&c.ID, &c.Name, &c.StartDate, &c.EndDate, &c.StartTime, &c.Duration, &c.Capacity, &c.CreatedAt); err != nil {
			return nil, err
		}
		classes = append(classes, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if !withInstances || len(classes) == 0 {
		return classes, nil
	}

	ids := make([]uuid.UUID, len(classes))
	for i := range classes {
		ids[i] = classes[i].ID
	}
	byClass, err := loadInstances(ctx, r.pool, ids)
	if err != nil {
		return nil, err
	}
	for i := range classes {
		attachInstances(&classes[i], byClass[classes[i].ID])
	}
	return classes, nil
}

// loadInstances fetches the instances of the given classes together with
// their bookings, grouped by class and ordered by instance date.
func loadInstances(ctx context.Context, q querier, classIDs []uuid.UUID) (map[uuid.UUID][]model.ClassInstance, error) {
	rows, err := q.Query(ctx,
		`SELECT ci.id, ci.class_id, ci.instance_date,
		        b.id, b.member_name, b.participation_date, b.created_at
		 FROM class_instances ci
		 LEFT JOIN bookings b ON b.class_instance_id = ci.id
		 WHERE ci.class_id = ANY($1::uuid[])
		 ORDER BY ci.class_id, ci.instance_date ASC, b.created_at ASC`,
		classIDs,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[uuid.UUID][]model.ClassInstance, len(classIDs))
	for rows.Next() {
		var (
			inst        model.ClassInstance
			bookingID   *uuid.UUID
			memberName  *string
			partDate    *time.Time
			bookingTime *time.Time
		)
		if err := rows.Scan(&inst.ID, &inst.ClassID, &inst.Date, &bookingID, &memberName, &partDate, &bookingTime); err != nil {
			return nil, err
		}

		list := out[inst.ClassID]
		if n := len(list); n == 0 || list[n-1].ID != inst.ID {
			inst.Bookings = []model.Booking{}
			list = append(list, inst)
		}
		if bookingID != nil {
			last := &list[len(list)-1]
			last.Bookings = append(last.Bookings, model.Booking{
				ID:                *bookingID,
				MemberName:        *memberName,
				ParticipationDate: *partDate,
				ClassInstanceID:   last.ID,
				CreatedAt:         *bookingTime,
			})
		}
		out[inst.ClassID] = list
	}
	return out, rows.Err()
}

// attachInstances sets c.Instances and derives the per-instance seat counters.
func attachInstances(c *model.Class, instances []model.ClassInstance) {
	if instances == nil {
		instances = []model.ClassInstance{}
	}
	for i := range instances {
		instances[i].BookedCount = len(instances[i].Bookings)
		instances[i].AvailableSeats = max(c.Capacity-instances[i].BookedCount, 0)
	}
	c.Instances = instances
}
