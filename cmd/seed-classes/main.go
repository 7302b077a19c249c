package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/stemsi/ignite-backend/internal/calendar"
	"github.com/stemsi/ignite-backend/internal/config"
	"github.com/stemsi/ignite-backend/internal/database"
	"github.com/stemsi/ignite-backend/internal/logger"
	"github.com/stemsi/ignite-backend/internal/model"
	"github.com/stemsi/ignite-backend/internal/repository"
	"github.com/stemsi/ignite-backend/internal/service"
)

type seedClass struct {
	name      string
	offset    int // first day, relative to tomorrow
	days      int
	startTime string
	duration  int
	capacity  int
}

var classes = []seedClass{
	{"Morning Yoga", 0, 14, "07:00", 60, 12},
	{"Spin Express", 0, 7, "12:15", 30, 20},
	{"HIIT Bootcamp", 2, 10, "18:30", 45, 15},
	{"Evening Pilates", 1, 21, "19:45", 50, 8},
}

var members = []string{
	"Alice Johnson", "Bob Smith", "Carmen Diaz", "Deepak Rao", "Elena Petrova",
	"Farid Haddad", "Grace Kim", "Hiro Tanaka", "Ines Moreau", "Jamal Carter",
}

func main() {
	cfg := config.Load()
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	classRepo := repository.NewClassRepository(pool)
	bookingRepo := repository.NewBookingRepository(pool)

	// No cache and no publishers: seeding writes straight to the database.
	classService := service.NewClassService(classRepo, nil, 0, log)
	bookingService := service.NewBookingService(classRepo, bookingRepo, nil, nil, zerolog.Nop())

	tomorrow := calendar.Today(time.Now()).AddDate(0, 0, 1)

	fmt.Printf("=== Seeding %d classes ===\n", len(classes))
	var created []*model.Class
	for _, sc := range classes {
		start := tomorrow.AddDate(0, 0, sc.offset)
		c, err := classService.Create(ctx, service.NewClassInput{
			Name:      sc.name,
			StartDate: start,
			EndDate:   start.AddDate(0, 0, sc.days-1),
			StartTime: sc.startTime,
			Duration:  sc.duration,
			Capacity:  sc.capacity,
		})
		if err != nil {
			log.Fatal().Err(err).Str("class", sc.name).Msg("Failed to create class")
		}
		created = append(created, c)
		fmt.Printf("  %-16s %s → %s  (%d instances)\n",
			c.Name, calendar.Format(c.StartDate), calendar.Format(c.EndDate), len(c.Instances))
	}

	fmt.Println("=== Seeding bookings ===")
	booked, full := 0, 0
	for i, m := range members {
		c := created[i%len(created)]
		for d := 0; d < 3; d++ {
			date := c.StartDate.AddDate(0, 0, (i+d)%len(c.Instances))
			_, err := bookingService.Create(ctx, service.NewBookingInput{
				MemberName:        m,
				ClassID:           c.ID,
				ParticipationDate: date,
			})
			switch {
			case err == nil:
				booked++
			case errors.Is(err, service.ErrCapacityExceeded):
				full++
			default:
				log.Fatal().Err(err).Str("member", m).Msg("Failed to create booking")
			}
		}
	}

	fmt.Printf("Done: %d bookings created, %d refused as full\n", booked, full)
}
