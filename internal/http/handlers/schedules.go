package handlers

import (
	"net/http"
	"strconv"
	"time"

	"intercity/internal/domain/models"
	"intercity/internal/services"

	"github.com/gin-gonic/gin"
)

type scheduleResponse struct {
	ID             int64  `json:"id"`
	OperatorID     int64  `json:"operatorId"`
	RouteFrom      string `json:"routeFrom"`
	RouteTo        string `json:"routeTo"`
	DepartureAt    string `json:"departureAt"`
	PricePerSeat   int64  `json:"pricePerSeat"`
	TotalSeats     int    `json:"totalSeats"`
	BookedSeats    int    `json:"bookedSeats"`
	AvailableSeats int    `json:"availableSeats"`
	Status         string `json:"status"`
}

func toScheduleResponse(s models.Schedule) scheduleResponse {
	return scheduleResponse{
		ID:             s.ID,
		OperatorID:     s.OperatorID,
		RouteFrom:      s.RouteFrom,
		RouteTo:        s.RouteTo,
		DepartureAt:    s.DepartureAt.UTC().Format(time.RFC3339),
		PricePerSeat:   s.PricePerSeat,
		TotalSeats:     s.TotalSeats,
		BookedSeats:    s.BookedSeats,
		AvailableSeats: s.AvailableSeats,
		Status:         s.Status,
	}
}

// GET /api/schedules
func ListSchedules(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	schedules, err := scheduleService(c).ListUpcoming(limit)
	if err != nil {
		RespondDomainError(c, err)
		return
	}

	out := make([]scheduleResponse, 0, len(schedules))
	for _, s := range schedules {
		out = append(out, toScheduleResponse(s))
	}
	c.JSON(http.StatusOK, gin.H{"schedules": out})
}

// GET /api/schedules/:id
func GetSchedule(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}

	sched, err := scheduleService(c).Get(id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, toScheduleResponse(sched))
}

type createScheduleRequest struct {
	OperatorID   int64  `json:"operatorId"`
	RouteFrom    string `json:"routeFrom"`
	RouteTo      string `json:"routeTo"`
	DepartureAt  string `json:"departureAt"` // RFC3339
	PricePerSeat int64  `json:"pricePerSeat"`
	TotalSeats   int    `json:"totalSeats"`
}

// POST /api/schedules (operator)
func CreateSchedule(c *gin.Context) {
	var req createScheduleRequest
	if !BindJSONOrError(c, &req) {
		return
	}

	departureAt, err := time.Parse(time.RFC3339, req.DepartureAt)
	if err != nil {
		respondError(c, http.StatusBadRequest, "validation_error", "departureAt: must be RFC3339", nil)
		return
	}

	sched, err := scheduleService(c).Create(services.CreateScheduleInput{
		OperatorID:   req.OperatorID,
		RouteFrom:    req.RouteFrom,
		RouteTo:      req.RouteTo,
		DepartureAt:  departureAt,
		PricePerSeat: req.PricePerSeat,
		TotalSeats:   req.TotalSeats,
	})
	if err != nil {
		RespondDomainError(c, err)
		return
	}

	c.JSON(http.StatusCreated, toScheduleResponse(sched))
}

type updateScheduleRequest struct {
	RouteFrom    *string `json:"routeFrom"`
	RouteTo      *string `json:"routeTo"`
	DepartureAt  *string `json:"departureAt"`
	PricePerSeat *int64  `json:"pricePerSeat"`
	TotalSeats   *int    `json:"totalSeats"`
}

// PUT /api/schedules/:id (operator) — rejected once departed/arrived.
func UpdateSchedule(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}

	var req updateScheduleRequest
	if !BindJSONOrError(c, &req) {
		return
	}

	input := services.UpdateScheduleInput{
		RouteFrom:    req.RouteFrom,
		RouteTo:      req.RouteTo,
		PricePerSeat: req.PricePerSeat,
		TotalSeats:   req.TotalSeats,
	}
	if req.DepartureAt != nil {
		parsed, err := time.Parse(time.RFC3339, *req.DepartureAt)
		if err != nil {
			respondError(c, http.StatusBadRequest, "validation_error", "departureAt: must be RFC3339", nil)
			return
		}
		input.DepartureAt = &parsed
	}

	sched, err := scheduleService(c).Update(id, input)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, toScheduleResponse(sched))
}

type transitionScheduleRequest struct {
	Status string `json:"status"`
}

// PUT /api/schedules/:id/status (operator)
func TransitionScheduleStatus(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}

	var req transitionScheduleRequest
	if !BindJSONOrError(c, &req) {
		return
	}

	sched, err := scheduleService(c).TransitionStatus(id, req.Status)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, toScheduleResponse(sched))
}

// DELETE /api/schedules/:id (operator) — bulk-cancels active reservations.
func DeleteSchedule(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}

	result, err := scheduleService(c).CancelSchedule(c.Request.Context(), id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// GET /api/schedules/:id/reconcile (operator)
func ReconcileSchedule(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}

	report, err := scheduleService(c).Reconcile(id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}
