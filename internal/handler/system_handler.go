package handler

import (
	"context"
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stemsi/ignite-backend/internal/config"
	"github.com/stemsi/ignite-backend/internal/response"
)

const healthTimeout = 2 * time.Second

// Pinger is satisfied by *pgxpool.Pool.
type Pinger interface {
	Ping(ctx context.Context) error
}

// SystemHandler serves the service index and health report.
type SystemHandler struct {
	db        Pinger
	rdb       *redis.Client
	startTime time.Time
	log       zerolog.Logger
}

func NewSystemHandler(db Pinger, rdb *redis.Client, log zerolog.Logger) *SystemHandler {
	return &SystemHandler{
		db:        db,
		rdb:       rdb,
		startTime: time.Now(),
		log:       log.With().Str("component", "system_handler").Logger(),
	}
}

// Root godoc
// GET /
func (h *SystemHandler) Root(c *gin.Context) {
	response.Success(c, http.StatusOK, gin.H{
		"service": "ignite-backend",
		"message": "Fitness class booking API",
		"endpoints": gin.H{
			"health":         "GET /api/health",
			"createClass":    "POST /api/classes",
			"listClasses":    "GET /api/classes",
			"getClass":       "GET /api/classes/:id",
			"createBooking":  "POST /api/bookings",
			"searchBookings": "GET /api/bookings?memberName=&startDate=&endDate=",
			"listBookings":   "GET /api/bookings/all",
			"getBooking":     "GET /api/bookings/:id",
			"availability":   "WS /ws/v1/classes/:id/availability",
		},
	})
}

type healthReport struct {
	Status          string `json:"status"`
	Timestamp       string `json:"timestamp"`
	Uptime          string `json:"uptime"`
	Database        string `json:"database"`
	Redis           string `json:"redis"`
	AuditQueueDepth int64  `json:"auditQueueDepth"`
	Goroutines      int    `json:"goroutines"`
	HeapAlloc       uint64 `json:"heapAlloc"`
	GoVersion       string `json:"goVersion"`
}

// Health godoc
// GET /api/health
// 200 when every dependency answers, 503 otherwise.
func (h *SystemHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), healthTimeout)
	defer cancel()

	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	report := healthReport{
		Status:     "ok",
		Timestamp:  time.Now().UTC().Format(time.RFC3339),
		Uptime:     formatDuration(time.Since(h.startTime)),
		Database:   "up",
		Redis:      "up",
		Goroutines: runtime.NumGoroutine(),
		HeapAlloc:  mem.HeapAlloc,
		GoVersion:  runtime.Version(),
	}

	if h.db == nil {
		report.Database = "disabled"
	} else if err := h.db.Ping(ctx); err != nil {
		h.log.Warn().Err(err).Msg("Database ping failed")
		report.Database, report.Status = "down", "degraded"
	}

	if h.rdb == nil {
		report.Redis = "disabled"
	} else if err := h.rdb.Ping(ctx).Err(); err != nil {
		h.log.Warn().Err(err).Msg("Redis ping failed")
		report.Redis, report.Status = "down", "degraded"
	} else {
		report.AuditQueueDepth, _ = h.rdb.LLen(ctx, config.WorkerKey.PersistBookingEventsQueue).Result()
	}

	status := http.StatusOK
	if report.Status != "ok" {
		status = http.StatusServiceUnavailable
	}
	response.Success(c, status, report)
}

// NotFound godoc
// Fallback for unknown routes.
func (h *SystemHandler) NotFound(c *gin.Context) {
	response.FailWithDetail(c, http.StatusNotFound, response.ErrRouteNotFound,
		fmt.Sprintf("%s %s", c.Request.Method, c.Request.URL.Path))
}

func formatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	days := int(d.Hours()) / 24
	hours := int(d.Hours()) % 24
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60
	if days > 0 {
		return fmt.Sprintf("%dd %dh %dm %ds", days, hours, minutes, seconds)
	}
	if hours > 0 {
		return fmt.Sprintf("%dh %dm %ds", hours, minutes, seconds)
	}
	return fmt.Sprintf("%dm %ds", minutes, seconds)
}
