package intake

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/hackgods/patient-intake-scheduling/internal/appointment"
	"github.com/hackgods/patient-intake-scheduling/internal/extract"
	"github.com/hackgods/patient-intake-scheduling/internal/observability/metrics"
	"github.com/hackgods/patient-intake-scheduling/internal/patient"
	"github.com/hackgods/patient-intake-scheduling/internal/scheduling"
	"github.com/hackgods/patient-intake-scheduling/pkg/logging"
)

// maxSteps bounds the handlers run for one turn. A legal turn runs at most
// three (confirmed summary, lookup, slot search).
const maxSteps = 16

var (
	// ErrStageFailed wraps an unexpected handler error. The patient has
	// already been sent an apology and the stage is unchanged.
	ErrStageFailed = errors.New("intake: stage failed")
	ErrStepLimit   = errors.New("intake: conversation did not settle")
)

var emailPattern = regexp.MustCompile(`[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}`)

type Extractor interface {
	PatientInfo(ctx context.Context, history []extract.ChatMessage) (extract.PatientInfo, error)
	SlotSelection(ctx context.Context, options []string, reply string) (extract.Selection, error)
	Email(ctx context.Context, history []extract.ChatMessage) (string, error)
}

type PatientFinder interface {
	Find(ctx context.Context, fullName, dob string) (*patient.Match, error)
}

type SlotSource interface {
	AvailableSlots(ctx context.Context, isNewPatient bool, preferredDoctor string) ([]scheduling.Slot, error)
}

type Booker interface {
	Book(ctx context.Context, req appointment.BookingRequest) (*appointment.Appointment, error)
}

type FormSender interface {
	Send(ctx context.Context, to, patientName string) bool
}

// Dependencies are the collaborators a Machine calls. Extractor, Patients,
// Slots, Bookings and Forms are required.
type Dependencies struct {
	Extractor  Extractor
	Patients   PatientFinder
	Slots      SlotSource
	Bookings   Booker
	Forms      FormSender
	Classifier IntentClassifier
	Metrics    *metrics.IntakeMetrics
	Logger     *logging.Logger

	// NewPatientID names patients the lookup could not find.
	NewPatientID func() string
}

type Machine struct {
	deps Dependencies
}

func NewMachine(deps Dependencies) *Machine {
	if deps.Classifier == nil {
		deps.Classifier = NewKeywordClassifier()
	}
	if deps.Logger == nil {
		deps.Logger = logging.Default()
	}
	if deps.NewPatientID == nil {
		deps.NewPatientID = NewPatientID
	}
	return &Machine{deps: deps}
}

// NewPatientID returns "NP" followed by eight upper-case hex digits.
func NewPatientID() string {
	hex := strings.ReplaceAll(uuid.NewString(), "-", "")
	return "NP" + strings.ToUpper(hex[:8])
}

// Advance runs stages until the router says to wait for the patient.
func (m *Machine) Advance(ctx context.Context, st *State) error {
	for i := 0; i < maxSteps; i++ {
		ran, err := m.Step(ctx, st)
		if err != nil {
			return err
		}
		if !ran {
			return nil
		}
	}
	m.deps.Logger.Error("conversation did not settle", "conversation_id", st.ConversationID, "stage", st.Stage)
	return ErrStepLimit
}

// Step runs at most one stage handler. It reports false when the router
// suspends the conversation.
func (m *Machine) Step(ctx context.Context, st *State) (bool, error) {
	stage, ok := Route(st)
	if !ok {
		return false, nil
	}

	before := st.Stage
	if err := m.handle(ctx, stage, st); err != nil {
		m.deps.Logger.Error("stage handler failed",
			"conversation_id", st.ConversationID,
			"stage", stage,
			"error", err,
		)
		st.Stage = stage
		st.AddAssistant(genericErrorMessage)
		return true, fmt.Errorf("%w: %s: %v", ErrStageFailed, stage, err)
	}

	m.deps.Metrics.ObserveTransition(string(before), string(st.Stage))
	return true, nil
}

func (m *Machine) handle(ctx context.Context, stage Stage, st *State) error {
	switch stage {
	case StageGreeting:
		return m.greeting(ctx, st)
	case StageInformationConfirmation:
		m.informationConfirmation(st)
		return nil
	case StagePatientLookup:
		return m.patientLookup(ctx, st)
	case StageFindSlots:
		return m.findSlots(ctx, st)
	case StageSelectionParser:
		return m.selectionParser(ctx, st)
	case StageConfirmation:
		m.confirmation(ctx, st)
		return nil
	case StageEmailCollection:
		return m.emailCollection(ctx, st)
	default:
		return fmt.Errorf("unknown stage %q", stage)
	}
}

func (m *Machine) greeting(ctx context.Context, st *State) error {
	fresh, err := m.deps.Extractor.PatientInfo(ctx, st.Messages)
	if err != nil {
		if !errors.Is(err, extract.ErrUnparseable) {
			return fmt.Errorf("extract patient info: %w", err)
		}
		fresh = extract.PatientInfo{}
	}

	merged := Merge(st.PatientInfo, fresh)
	if !st.Greeted && merged == (extract.PatientInfo{}) {
		st.Greeted = true
		st.AddAssistant(welcomeMessage)
		return nil
	}

	st.Greeted = true
	st.PatientInfo = merged

	if Complete(merged) {
		st.ConfirmationPending = false
		st.Stage = StageInformationConfirmation
		return nil
	}

	st.AddAssistant(MissingInfoMessage(merged))
	st.Stage = StageGreeting
	return nil
}

// informationConfirmation shows the summary once, then classifies the reply
// to it. Classifying before the summary was shown would read the message
// that supplied the details as the answer.
func (m *Machine) informationConfirmation(st *State) {
	if !st.ConfirmationPending {
		st.ConfirmationPending = true
		st.AddAssistant(confirmationMessage(st.PatientInfo))
		return
	}

	switch m.deps.Classifier.Classify(st.LastUserMessage()) {
	case IntentAffirm:
		st.ConfirmationPending = false
		st.Stage = StagePatientLookup
	case IntentDeny:
		st.ConfirmationPending = false
		st.AddAssistant(updateInfoMessage)
		st.Stage = StageGreeting
	default:
		st.AddAssistant(confirmationMessage(st.PatientInfo))
	}
}

func (m *Machine) patientLookup(ctx context.Context, st *State) error {
	if st.PatientID != "" {
		st.Stage = StageFindSlots
		return nil
	}

	info := st.PatientInfo
	match, err := m.deps.Patients.Find(ctx, info.FullName, info.DateOfBirth)
	switch {
	case err == nil:
		st.PatientID = match.Patient.ID
		st.IsNewPatient = match.IsNew
		st.AddAssistant(lookupMessage(true, match.IsNew, info))
	case errors.Is(err, patient.ErrPatientNotFound):
		st.PatientID = m.deps.NewPatientID()
		st.IsNewPatient = true
		st.AddAssistant(lookupMessage(false, true, info))
	default:
		return fmt.Errorf("patient lookup: %w", err)
	}

	m.deps.Logger.Info("patient identified",
		"conversation_id", st.ConversationID,
		"patient_id", st.PatientID,
		"new_patient", st.IsNewPatient,
	)
	st.Stage = StageFindSlots
	return nil
}

func (m *Machine) findSlots(ctx context.Context, st *State) error {
	slots, err := m.deps.Slots.AvailableSlots(ctx, st.IsNewPatient, st.PatientInfo.PreferredDoctor)
	if err != nil {
		return fmt.Errorf("find slots: %w", err)
	}

	st.AvailableSlots = slots
	st.ChosenSlot = nil

	if len(slots) == 0 {
		st.AddAssistant(noSlotsMessage(st.PatientInfo))
		st.Stage = StageNoAvailability
		return nil
	}

	st.AddAssistant(slotsMessage(slots, st.PatientInfo))
	st.Stage = StageSelectionParser
	return nil
}

func (m *Machine) selectionParser(ctx context.Context, st *State) error {
	slot, ok, err := m.resolveSelection(ctx, st.DisplayedSlots(), st.LastUserMessage())
	if err != nil {
		return err
	}
	if !ok {
		st.ChosenSlot = nil
		st.AddAssistant(selectionRetryMessage)
		st.Stage = StageFindSlots
		return nil
	}

	st.ChosenSlot = &slot
	st.Stage = StageConfirmation
	return nil
}

// resolveSelection maps a reply onto one of the displayed slots: a bare
// number first, then the extractor's slot number, then its slot text.
func (m *Machine) resolveSelection(ctx context.Context, displayed []scheduling.Slot, reply string) (scheduling.Slot, bool, error) {
	if len(displayed) == 0 {
		return scheduling.Slot{}, false, nil
	}

	if n, err := strconv.Atoi(strings.TrimSpace(reply)); err == nil {
		if n >= 1 && n <= len(displayed) {
			return displayed[n-1], true, nil
		}
		return scheduling.Slot{}, false, nil
	}

	options := make([]string, len(displayed))
	for i, s := range displayed {
		options[i] = s.Display()
	}

	sel, err := m.deps.Extractor.SlotSelection(ctx, options, reply)
	if err != nil {
		if !errors.Is(err, extract.ErrUnparseable) {
			return scheduling.Slot{}, false, fmt.Errorf("extract slot selection: %w", err)
		}
		sel = extract.Selection{}
	}

	if sel.Number >= 1 && sel.Number <= len(displayed) {
		return displayed[sel.Number-1], true, nil
	}

	text := strings.ToLower(strings.TrimSpace(sel.Text))
	if text == "" {
		return scheduling.Slot{}, false, nil
	}
	for i, opt := range options {
		opt = strings.ToLower(opt)
		if strings.Contains(opt, text) || strings.Contains(text, opt) {
			return displayed[i], true, nil
		}
	}
	for _, s := range displayed {
		parsed, err := scheduling.ParseDisplay(sel.Text, s.Start.Year(), s.Start.Location())
		if err != nil {
			continue
		}
		if s.Equal(scheduling.Slot{DoctorName: parsed.DoctorName, Start: parsed.Start}) {
			return s, true, nil
		}
	}
	return scheduling.Slot{}, false, nil
}

// confirmation books the chosen slot. Any booking failure sends the patient
// back to slot selection with a fresh list.
func (m *Machine) confirmation(ctx context.Context, st *State) {
	if st.ChosenSlot == nil {
		st.Stage = StageFindSlots
		return
	}

	appt, err := m.deps.Bookings.Book(ctx, appointment.BookingRequest{
		PatientID:    st.PatientID,
		IsNewPatient: st.IsNewPatient,
		Slot:         *st.ChosenSlot,
	})
	if err != nil {
		status, msg := "failed", bookingFailedMessage
		if errors.Is(err, appointment.ErrSlotAlreadyBooked) || errors.Is(err, appointment.ErrSlotBeingBooked) {
			status, msg = "conflict", slotTakenMessage
		}
		m.deps.Logger.Warn("booking failed",
			"conversation_id", st.ConversationID,
			"patient_id", st.PatientID,
			"slot", st.ChosenSlot.Display(),
			"error", err,
		)
		m.deps.Metrics.ObserveBooking(status, st.IsNewPatient)

		st.ChosenSlot = nil
		st.AddAssistant(msg)
		st.Stage = StageFindSlots
		return
	}

	m.deps.Metrics.ObserveBooking("booked", st.IsNewPatient)
	st.AppointmentID = appt.ID
	st.AddAssistant(bookedMessage(appt.ID, *st.ChosenSlot, st.PatientInfo))
	st.Stage = StageEmailCollection
}

func (m *Machine) emailCollection(ctx context.Context, st *State) error {
	email, oracleErr := m.deps.Extractor.Email(ctx, st.Messages)
	if oracleErr != nil && errors.Is(oracleErr, extract.ErrUnparseable) {
		oracleErr = nil
	}
	if !ValidEmail(email) {
		email = emailPattern.FindString(st.LastUserMessage())
	}

	if email == "" {
		if oracleErr != nil {
			return fmt.Errorf("extract email: %w", oracleErr)
		}
		st.AddAssistant(emailRetryMessage)
		return nil
	}

	st.PatientEmail = email
	st.IntakeFormSent = m.deps.Forms.Send(ctx, email, st.PatientInfo.FullName)
	m.deps.Metrics.ObserveIntakeForm(st.IntakeFormSent)

	st.AddAssistant(completedMessage(st, st.IntakeFormSent))
	st.Stage = StageCompleted
	return nil
}

// ValidEmail reports whether s is exactly one plausible address.
func ValidEmail(s string) bool {
	s = strings.TrimSpace(s)
	return s != "" && emailPattern.FindString(s) == s
}
