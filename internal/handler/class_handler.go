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

type ClassHandler struct {
	classService *service.ClassService
	log          zerolog.Logger
}

func NewClassHandler(classService *service.ClassService, log zerolog.Logger) *ClassHandler {
	return &ClassHandler{
		classService: classService,
		log:          log.With().Str("component", "class_handler").Logger(),
	}
}

// Create godoc
// POST /api/classes
func (h *ClassHandler) Create(c *gin.Context) {
	var req model.CreateClassRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	// Both dates passed the calendardate rule.
	start, _ := calendar.ParseDate(req.StartDate)
	end, _ := calendar.ParseDate(req.EndDate)

	class, err := h.classService.Create(c.Request.Context(), service.NewClassInput{
		Name:      req.Name,
		StartDate: start,
		EndDate:   end,
		StartTime: req.StartTime,
		Duration:  req.Duration,
		Capacity:  req.Capacity,
	})
	if err != nil {
		if errors.Is(err, service.ErrInvalidClass) {
			response.FailWithDetail(c, http.StatusBadRequest, response.ErrValidation, err.Error())
			return
		}
		h.log.Error().Err(err).Msg("create class failed")
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{
		"class":          class,
		"totalInstances": len(class.Instances),
	})
}

// GetAll godoc
// GET /api/classes
func (h *ClassHandler) GetAll(c *gin.Context) {
	classes, err := h.classService.List(c.Request.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("list classes failed")
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	if classes == nil {
		classes = []model.Class{}
	}
	response.Success(c, http.StatusOK, gin.H{"classes": classes})
}

// GetByID godoc
// GET /api/classes/:id
func (h *ClassHandler) GetByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	class, err := h.classService.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrClassNotFound) {
			response.FailWithDetail(c, http.StatusNotFound, response.ErrNotFound, err.Error())
			return
		}
		h.log.Error().Err(err).Str("class_id", id.String()).Msg("get class failed")
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"class": class})
}
