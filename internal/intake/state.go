// Package intake runs the appointment intake conversation: a fixed sequence
// of stages that collects identity details, finds the patient, offers slots,
// books one and sends the intake form.
package intake

import (
	"time"

	"github.com/hackgods/patient-intake-scheduling/internal/extract"
	"github.com/hackgods/patient-intake-scheduling/internal/scheduling"
)

type Stage string

const (
	StageGreeting                Stage = "greeting"
	StageInformationConfirmation Stage = "information_confirmation"
	StagePatientLookup           Stage = "patient_lookup"
	StageFindSlots               Stage = "find_slots"
	StageSelectionParser         Stage = "selection_parser"
	StageConfirmation            Stage = "confirmation"
	StageEmailCollection         Stage = "email_collection"
	StageCompleted               Stage = "completed"
	StageNoAvailability          Stage = "no_availability"
)

// Terminal reports whether the conversation has ended. Both a finished
// booking and an empty slot search end it; they are kept apart so callers can
// tell success from failure.
func (s Stage) Terminal() bool {
	return s == StageCompleted || s == StageNoAvailability
}

// State is everything known about one conversation. It is persisted between
// turns as JSON.
type State struct {
	ConversationID string                `json:"conversation_id"`
	Messages       []extract.ChatMessage `json:"messages"`
	PatientInfo    extract.PatientInfo   `json:"patient_info"`
	PatientID      string                `json:"patient_id,omitempty"`
	IsNewPatient   bool                  `json:"is_new_patient"`
	AvailableSlots []scheduling.Slot     `json:"available_slots,omitempty"`
	ChosenSlot     *scheduling.Slot      `json:"chosen_slot,omitempty"`
	AppointmentID  string                `json:"appointment_id,omitempty"`
	PatientEmail   string                `json:"patient_email,omitempty"`
	Stage          Stage                 `json:"conversation_stage"`

	// Greeted is set once the welcome has been sent.
	Greeted bool `json:"greeted"`
	// ConfirmationPending is set while the summary is waiting for a yes or no.
	ConfirmationPending bool `json:"confirmation_pending"`
	IntakeFormSent      bool `json:"intake_form_sent"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func NewState(conversationID string, now time.Time) *State {
	return &State{
		ConversationID: conversationID,
		Stage:          StageGreeting,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

func (s *State) AddUser(text string) {
	s.Messages = append(s.Messages, extract.ChatMessage{Role: extract.ChatRoleUser, Content: text})
}

func (s *State) AddAssistant(text string) {
	s.Messages = append(s.Messages, extract.ChatMessage{Role: extract.ChatRoleAssistant, Content: text})
}

// LastUserMessage returns the most recent user text, or "".
func (s *State) LastUserMessage() string {
	for i := len(s.Messages) - 1; i >= 0; i-- {
		if s.Messages[i].Role == extract.ChatRoleUser {
			return s.Messages[i].Content
		}
	}
	return ""
}

// DisplayedSlots is the prefix of AvailableSlots the patient was shown.
func (s *State) DisplayedSlots() []scheduling.Slot {
	return scheduling.Presented(s.AvailableSlots)
}
