package appointment

import (
	"context"
	"time"

	"github.com/hackgods/patient-intake-scheduling/internal/scheduling"
)

// Repository contains all DB interactions needed by the service.
type Repository interface {
	// Schedule template
	ListScheduleBlocks(ctx context.Context, from, to time.Time) ([]scheduling.Block, error)

	// Booking log
	ListBookedStarts(ctx context.Context, from, to time.Time) ([]time.Time, error)
	IsBooked(ctx context.Context, doctorName string, start time.Time) (bool, error)
	InsertAppointment(ctx context.Context, a Appointment) error

	// Admin export
	ListReport(ctx context.Context) ([]ReportRow, error)

	// Event logging
	InsertEvent(ctx context.Context, ev EventLog) error
}
