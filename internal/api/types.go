package api

import (
	"strings"
	"time"

	"github.com/hackgods/patient-intake-scheduling/internal/extract"
	"github.com/hackgods/patient-intake-scheduling/internal/intake"
)

type MessageRequest struct {
	Message string `json:"message"`
}

type MessageResponse struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type SlotResponse struct {
	Doctor   string    `json:"doctor"`
	Location string    `json:"location,omitempty"`
	Start    time.Time `json:"start"`
	End      time.Time `json:"end"`
	Display  string    `json:"display"`
}

type ConversationResponse struct {
	ConversationID string            `json:"conversation_id"`
	Stage          string            `json:"stage"`
	Reply          string            `json:"reply,omitempty"`
	Completed      bool              `json:"completed"`
	PatientID      string            `json:"patient_id,omitempty"`
	IsNewPatient   bool              `json:"is_new_patient"`
	AppointmentID  string            `json:"appointment_id,omitempty"`
	ChosenSlot     *SlotResponse     `json:"chosen_slot,omitempty"`
	IntakeFormSent bool              `json:"intake_form_sent"`
	Messages       []MessageResponse `json:"messages"`
	UpdatedAt      time.Time         `json:"updated_at"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

func newConversationResponse(st *intake.State) ConversationResponse {
	resp := ConversationResponse{
		ConversationID: st.ConversationID,
		Stage:          string(st.Stage),
		Completed:      st.Stage.Terminal(),
		PatientID:      st.PatientID,
		IsNewPatient:   st.IsNewPatient,
		AppointmentID:  st.AppointmentID,
		IntakeFormSent: st.IntakeFormSent,
		Messages:       make([]MessageResponse, 0, len(st.Messages)),
		UpdatedAt:      st.UpdatedAt,
	}

	for _, m := range st.Messages {
		resp.Messages = append(resp.Messages, MessageResponse{Role: m.Role, Content: m.Content})
	}

	// Reply is everything the assistant said since the patient last spoke.
	start := len(st.Messages)
	for start > 0 && st.Messages[start-1].Role != extract.ChatRoleUser {
		start--
	}
	reply := make([]string, 0, len(st.Messages)-start)
	for _, m := range st.Messages[start:] {
		reply = append(reply, m.Content)
	}
	resp.Reply = strings.Join(reply, "\n\n")

	if s := st.ChosenSlot; s != nil {
		resp.ChosenSlot = &SlotResponse{
			Doctor:   s.DoctorName,
			Location: s.Location,
			Start:    s.Start,
			End:      s.End,
			Display:  s.Display(),
		}
	}
	return resp
}
