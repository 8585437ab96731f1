package intake

import (
	"fmt"
	"strings"

	"github.com/hackgods/patient-intake-scheduling/internal/extract"
	"github.com/hackgods/patient-intake-scheduling/internal/scheduling"
)

const (
	welcomeMessage = "Hello! I'm here to help you schedule a medical appointment. To get started, please provide me with the following information:\n\n" +
		"- Your full name\n- Your date of birth\n- Your preferred doctor\n- Your preferred location\n\n" +
		"You can provide all this information at once or we can go through it step by step."
	updateInfoMessage     = "No problem! Please tell me what information you'd like to update, and I'll make the changes."
	selectionRetryMessage = "I'm sorry, I couldn't determine which slot you prefer. Please reply with the number of your chosen option (e.g., '1', 'Option 2')."
	bookingFailedMessage  = "I'm sorry, there was an error while trying to book your appointment. Please try again."
	slotTakenMessage      = "I'm sorry, that slot was just booked by someone else. Please choose another one."
	emailRetryMessage     = "I didn't catch a valid email address. Could you please provide it so I can send the forms?"
	genericErrorMessage   = "I'm sorry, something went wrong on our side. Please send your last message again in a moment."
)

// MissingInfoMessage asks for whatever is still missing, or returns "" when
// nothing is.
func MissingInfoMessage(info extract.PatientInfo) string {
	missing := MissingFields(info)

	var list string
	switch len(missing) {
	case 0:
		return ""
	case 1:
		list = missing[0]
	case 2:
		list = missing[0] + " and " + missing[1]
	default:
		list = strings.Join(missing[:len(missing)-1], ", ") + ", and " + missing[len(missing)-1]
	}
	return "I still need " + list + ". Could you please provide that information?"
}

func confirmationMessage(info extract.PatientInfo) string {
	return fmt.Sprintf("Thank you! Let me confirm the information you've provided:\n\n"+
		"Name: %s\nDate of Birth: %s\nPreferred Doctor: %s\nPreferred Location: %s\n\n"+
		"Is this information correct? Please say 'yes' to confirm or 'no' if you need to make any changes.",
		info.FullName, info.DateOfBirth, info.PreferredDoctor, info.PreferredLocation)
}

func lookupMessage(found, isNew bool, info extract.PatientInfo) string {
	if !found {
		return fmt.Sprintf("Thank you! It seems this is your first time with us. Welcome! Let me check available appointment slots with %s at %s.",
			info.PreferredDoctor, info.PreferredLocation)
	}
	kind := "returning"
	if isNew {
		kind = "new"
	}
	return fmt.Sprintf("Perfect! I've found your file. You are a %s patient. Now let me check available appointment slots with %s at %s.",
		kind, info.PreferredDoctor, info.PreferredLocation)
}

func slotsMessage(slots []scheduling.Slot, info extract.PatientInfo) string {
	minutes := int(slots[0].Duration().Minutes())
	return fmt.Sprintf("Great! Here are some available %d minute appointment slots near %s:\n\n%s\n\n"+
		"Which slot would you prefer? Please select by number or tell me which one works best for you.",
		minutes, info.PreferredLocation, scheduling.DisplayList(slots))
}

func noSlotsMessage(info extract.PatientInfo) string {
	return fmt.Sprintf("I'm sorry, but I couldn't find any available slots with %s at %s in the next two weeks. Please contact the clinic and we will find a time that works for you.",
		info.PreferredDoctor, info.PreferredLocation)
}

func bookedMessage(appointmentID string, slot scheduling.Slot, info extract.PatientInfo) string {
	return fmt.Sprintf("Excellent! Your appointment is confirmed with ID %s for:\n\n%s\nLocation: %s\n\n"+
		"What is a good email address to send the intake form to?",
		appointmentID, slot.Display(), slotLocation(slot, info))
}

func completedMessage(st *State, sent bool) string {
	var first string
	if sent {
		first = fmt.Sprintf("Perfect! I've sent the intake form to %s. Your appointment is all set!", st.PatientEmail)
	} else {
		first = fmt.Sprintf("Your appointment is all set! I couldn't send the intake form to %s right now; the clinic will follow up with it.", st.PatientEmail)
	}

	when := ""
	location := st.PatientInfo.PreferredLocation
	if st.ChosenSlot != nil {
		when = st.ChosenSlot.Display()
		location = slotLocation(*st.ChosenSlot, st.PatientInfo)
	}
	return fmt.Sprintf("%s\n\nAppointment Summary:\n- ID: %s\n- Patient: %s\n- Date/Time: %s\n- Location: %s\n\nIs there anything else I can help you with?",
		first, st.AppointmentID, st.PatientInfo.FullName, when, location)
}

func slotLocation(slot scheduling.Slot, info extract.PatientInfo) string {
	if slot.Location != "" {
		return slot.Location
	}
	return info.PreferredLocation
}
