package intake

import "github.com/hackgods/patient-intake-scheduling/internal/extract"

// Route picks the stage to run next. ok is false when the conversation must
// wait for the patient: the stage is terminal, or the assistant spoke last.
// find_slots never waits because slot search is server work, not a turn.
func Route(st *State) (Stage, bool) {
	stage := st.Stage
	if stage == "" {
		stage = StageGreeting
	}

	if stage.Terminal() {
		return stage, false
	}
	if stage == StageFindSlots {
		return stage, true
	}
	if n := len(st.Messages); n > 0 && st.Messages[n-1].Role == extract.ChatRoleAssistant {
		return stage, false
	}
	return stage, true
}
