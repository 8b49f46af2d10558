package services

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/phpdave11/gofpdf"

	"intercity/internal/domain/models"
	"intercity/internal/repositories"
	"intercity/internal/utils"
)

// DocsService renders the e-ticket PDF for a booking.
type DocsService struct {
	BookingRepo  repositories.BookingRepository
	ScheduleRepo repositories.ScheduleRepository
	RequestID    string
}

// ETicket builds the PDF for a booking owned by userID (0 skips the scope).
func (s DocsService) ETicket(bookingID, userID int64) ([]byte, string, error) {
	booking, err := BookingService{BookingRepo: s.BookingRepo}.Get(bookingID, userID)
	if err != nil {
		return nil, "", err
	}

	var sched models.Schedule
	scheduleSvc := ScheduleService{ScheduleRepo: s.ScheduleRepo}
	if loaded, err := scheduleSvc.Get(booking.ScheduleID); err == nil {
		sched = loaded
	}

	utils.LogEvent(s.RequestID, "docs", "generate_eticket", fmt.Sprintf("booking_id=%d", bookingID))
	return buildETicketPDF(booking, sched)
}

func buildETicketPDF(b models.Booking, sched models.Schedule) ([]byte, string, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("E-Ticket", false)
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, "E-TICKET")
	pdf.Ln(12)

	departure := "-"
	if !sched.DepartureAt.IsZero() {
		departure = utils.FormatDateTime(sched.DepartureAt) + " UTC"
	}

	pdf.SetFont("Helvetica", "", 12)
	lines := []string{
		fmt.Sprintf("Booking Ref    : %s", b.Reference),
		fmt.Sprintf("Passenger      : %s", safe(b.PassengerName, "-")),
		fmt.Sprintf("Phone          : %s", safe(b.PassengerPhone, "-")),
		fmt.Sprintf("Route          : %s -> %s", safe(b.RouteFrom, "-"), safe(b.RouteTo, "-")),
		fmt.Sprintf("Departure      : %s", departure),
		fmt.Sprintf("Seats          : %d (%s)", b.SeatCount, safe(b.SeatNumbers, "unassigned")),
		fmt.Sprintf("Total          : %s", utils.FormatMinorUnits(b.TotalAmount)),
		fmt.Sprintf("Status         : %s / %s", b.Status, b.PaymentStatus),
	}
	for _, line := range lines {
		pdf.Cell(0, 7, line)
		pdf.Ln(7)
	}

	pdf.Ln(6)
	pdf.SetFont("Helvetica", "I", 10)
	pdf.MultiCell(0, 6, "Present this e-ticket at boarding. Valid for the passenger and seats listed above.", "", "", false)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, "", err
	}
	filename := fmt.Sprintf("eticket-%s.pdf", strings.ToLower(b.Reference))
	return buf.Bytes(), filename, nil
}

func safe(s, fallback string) string {
	if strings.TrimSpace(s) == "" {
		return fallback
	}
	return s
}
