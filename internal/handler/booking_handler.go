package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stemsi/ignite-backend/internal/calendar"
	"github.com/stemsi/ignite-backend/internal/model"
	"github.com/stemsi/ignite-backend/internal/response"
	"github.com/stemsi/ignite-backend/internal/service"
	"github.com/stemsi/ignite-backend/internal/validator"
)

type BookingHandler struct {
	bookingService *service.BookingService
	log            zerolog.Logger
}

func NewBookingHandler(bookingService *service.BookingService, log zerolog.Logger) *BookingHandler {
	return &BookingHandler{
		bookingService: bookingService,
		log:            log.With().Str("component", "booking_handler").Logger(),
	}
}

// Create godoc
// POST /api/bookings
func (h *BookingHandler) Create(c *gin.Context) {
	var req model.CreateBookingRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	classID, _ := uuid.Parse(req.ClassID)
	date, _ := calendar.ParseDate(req.ParticipationDate)

	booking, err := h.bookingService.Create(c.Request.Context(), service.NewBookingInput{
		MemberName:        req.MemberName,
		ClassID:           classID,
		ParticipationDate: date,
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"booking": booking})
}

// Search godoc
// GET /api/bookings?memberName=&startDate=&endDate=
func (h *BookingHandler) Search(c *gin.Context) {
	var q model.SearchBookingsQuery
	if fields := validator.BindQuery(c, &q); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	filter, ok := toFilter(q)
	if !ok {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidRange)
		return
	}

	bookings, err := h.bookingService.Search(c.Request.Context(), filter)
	if err != nil {
		h.fail(c, err)
		return
	}
	respondBookings(c, bookings)
}

// GetAll godoc
// GET /api/bookings/all
func (h *BookingHandler) GetAll(c *gin.Context) {
	bookings, err := h.bookingService.ListAll(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	respondBookings(c, bookings)
}

// GetByID godoc
// GET /api/bookings/:id
func (h *BookingHandler) GetByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	booking, err := h.bookingService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"booking": booking})
}

// toFilter converts validated query params into a filter. It reports false
// when both bounds are given and the end precedes the start.
func toFilter(q model.SearchBookingsQuery) (model.BookingFilter, bool) {
	f := model.BookingFilter{MemberName: q.MemberName}
	if q.StartDate != "" {
		d, _ := calendar.ParseDate(q.StartDate)
		f.StartDate = &d
	}
	if q.EndDate != "" {
		d, _ := calendar.ParseDate(q.EndDate)
		f.EndDate = &d
	}
	if f.StartDate != nil && f.EndDate != nil && f.EndDate.Before(*f.StartDate) {
		return f, false
	}
	return f, true
}

func respondBookings(c *gin.Context, bookings []model.BookingDetail) {
	if bookings == nil {
		bookings = []model.BookingDetail{}
	}
	response.Success(c, http.StatusOK, gin.H{
		"bookings":   bookings,
		"totalFound": len(bookings),
	})
}

// fail maps booking service errors to HTTP responses.
func (h *BookingHandler) fail(c *gin.Context, err error) {
	status, code := http.StatusInternalServerError, response.ErrInternal
	switch {
	case errors.Is(err, service.ErrClassNotFound), errors.Is(err, service.ErrBookingNotFound):
		status, code = http.StatusNotFound, response.ErrNotFound
	case errors.Is(err, service.ErrInvalidDate):
		status, code = http.StatusBadRequest, response.ErrInvalidDate
	case errors.Is(err, service.ErrOutOfRange):
		status, code = http.StatusBadRequest, response.ErrOutOfRange
	case errors.Is(err, service.ErrNoInstance):
		status, code = http.StatusBadRequest, response.ErrNoInstance
	case errors.Is(err, service.ErrCapacityExceeded):
		status, code = http.StatusBadRequest, response.ErrCapacityExceeded
	}

	if code == response.ErrInternal {
		h.log.Error().Err(err).Str("path", c.FullPath()).Msg("booking request failed")
		response.Fail(c, status, code)
		return
	}
	response.FailWithDetail(c, status, code, err.Error())
}
