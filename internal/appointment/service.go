package appointment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/hackgods/patient-intake-scheduling/internal/config"
	"github.com/hackgods/patient-intake-scheduling/internal/db"
	redisclient "github.com/hackgods/patient-intake-scheduling/internal/redis"
	"github.com/hackgods/patient-intake-scheduling/internal/scheduling"
	"github.com/hackgods/patient-intake-scheduling/pkg/logging"
)

const (
	EventAppointmentBooked = "APPOINTMENT_BOOKED"
)

var (
	ErrSlotAlreadyBooked = errors.New("slot already has a confirmed appointment")
	ErrSlotBeingBooked   = errors.New("slot is currently being booked, please retry")
	ErrInvalidSlot       = errors.New("slot is missing a doctor or a valid time window")
	ErrMissingPatient    = errors.New("booking requires a patient id")
)

var bookingTracer = otel.Tracer("intake.internal.appointment")

// BookingRequest is everything the writer needs to append one booking.
type BookingRequest struct {
	PatientID    string
	IsNewPatient bool
	Slot         scheduling.Slot
}

type Service struct {
	repo   Repository
	locker redisclient.Locker
	cfg    config.Config
	loc    *time.Location
	logger *logging.Logger
	now    func() time.Time
}

func NewService(repo Repository, locker redisclient.Locker, cfg config.Config, logger *logging.Logger) *Service {
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{
		repo:   repo,
		locker: locker,
		cfg:    cfg,
		loc:    cfg.Location(),
		logger: logger,
		now:    time.Now,
	}
}

// SlotLength is the appointment length for the patient type.
func (s *Service) SlotLength(isNewPatient bool) time.Duration {
	if isNewPatient {
		return s.cfg.NewPatientDuration
	}
	return s.cfg.ReturningPatientDuration
}

// AvailableSlots lists open slots in the search window starting now. When
// preferredDoctor names a scheduled doctor only that doctor's slots are
// offered.
func (s *Service) AvailableSlots(ctx context.Context, isNewPatient bool, preferredDoctor string) ([]scheduling.Slot, error) {
	from := s.now().In(s.loc)
	to := from.Add(s.cfg.SlotSearchWindow)

	blocks, err := s.repo.ListScheduleBlocks(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("load schedule: %w", err)
	}

	starts, err := s.repo.ListBookedStarts(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("load bookings: %w", err)
	}

	blocks = scheduling.FilterByDoctor(blocks, preferredDoctor)
	return scheduling.FindSlots(blocks, s.SlotLength(isNewPatient), scheduling.NewBookedSet(starts...), from, to), nil
}

// Book appends a confirmed appointment for the slot. The slot lock plus the
// re-check inside it make this reserve-if-free: of two concurrent bookings
// for the same doctor and start, exactly one succeeds.
func (s *Service) Book(ctx context.Context, req BookingRequest) (*Appointment, error) {
	ctx, span := bookingTracer.Start(ctx, "appointment.book")
	defer span.End()
	span.SetAttributes(
		attribute.String("intake.patient_id", req.PatientID),
		attribute.String("intake.doctor", req.Slot.DoctorName),
	)

	if strings.TrimSpace(req.PatientID) == "" {
		return nil, ErrMissingPatient
	}
	if !req.Slot.Valid() {
		return nil, ErrInvalidSlot
	}

	var created *Appointment

	key := redisclient.SlotLockKey(req.Slot.DoctorName, req.Slot.Start)
	err := s.locker.WithLock(ctx, key, func(lockCtx context.Context) error {
		booked, err := s.repo.IsBooked(lockCtx, req.Slot.DoctorName, req.Slot.Start)
		if err != nil {
			return err
		}
		if booked {
			return ErrSlotAlreadyBooked
		}

		now := s.now()
		appt := Appointment{
			ID:           NewAppointmentID(now.In(s.loc), req.PatientID),
			PatientID:    req.PatientID,
			DoctorName:   req.Slot.DoctorName,
			Location:     req.Slot.Location,
			Start:        req.Slot.Start.In(s.loc),
			IsNewPatient: req.IsNewPatient,
			Status:       StatusConfirmed,
			CreatedAt:    now,
		}
		if err := s.repo.InsertAppointment(lockCtx, appt); err != nil {
			if db.IsUniqueViolationOf(err, slotUniqueIndex) {
				return ErrSlotAlreadyBooked
			}
			return err
		}

		created = &appt

		s.logEvent(lockCtx, appt.ID, EventAppointmentBooked, map[string]any{
			"patient_id":     appt.PatientID,
			"doctor_name":    appt.DoctorName,
			"start":          appt.Start,
			"is_new_patient": appt.IsNewPatient,
		})

		return nil
	})

	if err != nil {
		span.RecordError(err)
		if errors.Is(err, redisclient.ErrLockNotAcquired) {
			return nil, ErrSlotBeingBooked
		}
		return nil, err
	}

	s.logger.Info("appointment booked",
		"appointment_id", created.ID,
		"patient_id", created.PatientID,
		"doctor", created.DoctorName,
		"start", created.Start,
	)
	return created, nil
}

// Report returns every booking joined with patient contact details.
func (s *Service) Report(ctx context.Context) ([]ReportRow, error) {
	rows, err := s.repo.ListReport(ctx)
	if err != nil {
		return nil, fmt.Errorf("build report: %w", err)
	}
	return rows, nil
}

// NewAppointmentID is "APP" + YYYYMMDDhhmmss + the last four characters of
// the patient id.
func NewAppointmentID(now time.Time, patientID string) string {
	suffix := patientID
	if len(suffix) > 4 {
		suffix = suffix[len(suffix)-4:]
	}
	return "APP" + now.Format("20060102150405") + suffix
}

func (s *Service) logEvent(ctx context.Context, appointmentID, eventType string, payload map[string]any) {
	data, err := json.Marshal(payload)
	if err != nil {
		s.logger.Warn("failed to marshal event payload", "event_type", eventType, "error", err)
		data = []byte("{}")
	}

	ev := EventLog{
		EventType:     eventType,
		AppointmentID: &appointmentID,
		Payload:       data,
		CreatedAt:     s.now(),
	}

	if err := s.repo.InsertEvent(ctx, ev); err != nil {
		s.logger.Warn("failed to insert event log", "event_type", eventType, "appointment_id", appointmentID, "error", err)
	}
}
