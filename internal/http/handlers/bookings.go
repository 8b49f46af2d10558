package handlers

import (
	"net/http"

	"intercity/internal/domain/models"
	"intercity/internal/http/middleware"
	"intercity/internal/services"
	"intercity/internal/utils"

	"github.com/gin-gonic/gin"
)

type passengerDetails struct {
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
}

type createBookingRequest struct {
	ScheduleID       int64            `json:"scheduleId"`
	PassengerDetails passengerDetails `json:"passengerDetails"`
	NumberOfSeats    int              `json:"numberOfSeats"`
	SeatNumbers      []string         `json:"seatNumbers"`
	SpecialRequests  string           `json:"specialRequests"`
}

type bookingResponse struct {
	ID              int64            `json:"id"`
	Reference       string           `json:"reference"`
	ScheduleID      int64            `json:"scheduleId"`
	RouteFrom       string           `json:"routeFrom"`
	RouteTo         string           `json:"routeTo"`
	Passenger       passengerDetails `json:"passenger"`
	NumberOfSeats   int              `json:"numberOfSeats"`
	SeatNumbers     []string         `json:"seatNumbers,omitempty"`
	SpecialRequests string           `json:"specialRequests,omitempty"`
	PricePerSeat    int64            `json:"pricePerSeat"`
	TotalAmount     int64            `json:"totalAmount"`
	PaymentStatus   string           `json:"paymentStatus"`
	Status          string           `json:"status"`
	Refundable      bool             `json:"refundable"`
	CheckedInAt     string           `json:"checkedInAt,omitempty"`
	CancelledAt     string           `json:"cancelledAt,omitempty"`
	CancelReason    string           `json:"cancellationReason,omitempty"`
	CreatedAt       string           `json:"createdAt"`
}

func toBookingResponse(b models.Booking) bookingResponse {
	resp := bookingResponse{
		ID:         b.ID,
		Reference:  b.Reference,
		ScheduleID: b.ScheduleID,
		RouteFrom:  b.RouteFrom,
		RouteTo:    b.RouteTo,
		Passenger: passengerDetails{
			FullName: b.PassengerName,
			Email:    b.PassengerEmail,
			Phone:    b.PassengerPhone,
		},
		NumberOfSeats:   b.SeatCount,
		SpecialRequests: b.SpecialRequests,
		PricePerSeat:    b.PricePerSeat,
		TotalAmount:     b.TotalAmount,
		PaymentStatus:   b.PaymentStatus,
		Status:          b.Status,
		Refundable:      b.Refundable(utils.NowUTC()),
		CancelReason:    b.CancellationReason,
		CreatedAt:       utils.FormatDateTime(b.CreatedAt),
	}
	if b.SeatNumbers != "" {
		resp.SeatNumbers = utils.SplitSeatList(b.SeatNumbers)
	}
	if b.CheckedInAt != nil {
		resp.CheckedInAt = utils.FormatDateTime(*b.CheckedInAt)
	}
	if b.CancellationDate != nil {
		resp.CancelledAt = utils.FormatDateTime(*b.CancellationDate)
	}
	return resp
}

// POST /api/bookings
func CreateBooking(c *gin.Context) {
	var req createBookingRequest
	if !BindJSONOrError(c, &req) {
		return
	}

	booking, err := bookingService(c).Create(c.Request.Context(), services.CreateBookingInput{
		ScheduleID:      req.ScheduleID,
		UserID:          middleware.GetUserID(c),
		FullName:        req.PassengerDetails.FullName,
		Email:           req.PassengerDetails.Email,
		Phone:           req.PassengerDetails.Phone,
		SeatCount:       req.NumberOfSeats,
		SeatNumbers:     req.SeatNumbers,
		SpecialRequests: req.SpecialRequests,
	})
	if err != nil {
		RespondDomainError(c, err)
		return
	}

	c.JSON(http.StatusCreated, toBookingResponse(booking))
}

// GET /api/bookings/:id
func GetBooking(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}

	booking, err := bookingService(c).Get(id, middleware.GetUserID(c))
	if err != nil {
		RespondDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, toBookingResponse(booking))
}

type cancelBookingRequest struct {
	Reason string `json:"reason"`
}

// POST /api/bookings/:id/cancel
func CancelBooking(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}

	var req cancelBookingRequest
	if c.Request.ContentLength > 0 {
		if !BindJSONOrError(c, &req) {
			return
		}
	}

	booking, err := bookingService(c).Cancel(c.Request.Context(), id, middleware.GetUserID(c), req.Reason)
	if err != nil {
		RespondDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, toBookingResponse(booking))
}

// POST /api/bookings/:id/check-in (operator)
func CheckInBooking(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}

	booking, err := bookingService(c).CheckIn(c.Request.Context(), id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, toBookingResponse(booking))
}

// GET /api/bookings/:id/e-ticket
func GetBookingETicket(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}

	svc := services.DocsService{RequestID: middleware.GetRequestID(c)}
	pdf, filename, err := svc.ETicket(id, middleware.GetUserID(c))
	if err != nil {
		RespondDomainError(c, err)
		return
	}

	c.Header("Content-Disposition", `inline; filename="`+filename+`"`)
	c.Data(http.StatusOK, "application/pdf", pdf)
}
