package extract

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/hackgods/patient-intake-scheduling/pkg/logging"
)

// ErrUnparseable means the model answered with something that is not a JSON
// object. Callers treat it as "nothing extracted" and ask the patient again.
var ErrUnparseable = errors.New("extract: model response is not a JSON object")

const ambiguousSelection = "AMBIGUOUS"

// PatientInfo holds the four identity fields. An empty string means the
// patient has not given that field yet.
type PatientInfo struct {
	FullName          string `json:"full_name,omitempty"`
	DateOfBirth       string `json:"date_of_birth,omitempty"`
	PreferredDoctor   string `json:"preferred_doctor,omitempty"`
	PreferredLocation string `json:"preferred_location,omitempty"`
}

// Selection is the model's reading of a slot choice. Number is 1-based and
// zero when absent; Text is empty when the choice was ambiguous.
type Selection struct {
	Number int
	Text   string
}

// Oracle asks a language model for structured fields.
type Oracle struct {
	client LLMClient
	model  string
	logger *logging.Logger
}

func NewOracle(client LLMClient, model string, logger *logging.Logger) *Oracle {
	if logger == nil {
		logger = logging.Default()
	}
	return &Oracle{client: client, model: model, logger: logger}
}

func (o *Oracle) PatientInfo(ctx context.Context, history []ChatMessage) (PatientInfo, error) {
	rec, err := o.ask(ctx, patientInfoPrompt, "Here is the conversation history:\n\n"+FlattenHistory(history))
	if err != nil {
		return PatientInfo{}, err
	}
	return PatientInfo{
		FullName:          rec.String(FieldFullName),
		DateOfBirth:       rec.String(FieldDateOfBirth),
		PreferredDoctor:   rec.String(FieldPreferredDoctor),
		PreferredLocation: rec.String(FieldPreferredLocation),
	}, nil
}

// SlotSelection interprets reply against the numbered options the patient saw.
func (o *Oracle) SlotSelection(ctx context.Context, options []string, reply string) (Selection, error) {
	lines := make([]string, len(options))
	for i, opt := range options {
		lines[i] = fmt.Sprintf("%d. %s", i+1, opt)
	}
	input := "Available slots:\n" + strings.Join(lines, "\n") + "\n\nUser's response: " + reply

	rec, err := o.ask(ctx, slotSelectionPrompt, input)
	if err != nil {
		return Selection{}, err
	}

	var sel Selection
	if n, ok := rec.Int(FieldSlotNumber); ok {
		sel.Number = n
	}
	if text := rec.String(FieldSelectedSlot); !strings.EqualFold(text, ambiguousSelection) {
		sel.Text = text
	}
	return sel, nil
}

func (o *Oracle) Email(ctx context.Context, history []ChatMessage) (string, error) {
	rec, err := o.ask(ctx, emailPrompt, "Here is the conversation history:\n\n"+FlattenHistory(history))
	if err != nil {
		return "", err
	}
	return rec.String(FieldPatientEmail), nil
}

func (o *Oracle) ask(ctx context.Context, taskPrompt, input string) (Record, error) {
	resp, err := o.client.Complete(ctx, LLMRequest{
		Model:       o.model,
		System:      []string{basePrompt, taskPrompt},
		Messages:    []ChatMessage{{Role: ChatRoleUser, Content: input}},
		MaxTokens:   512,
		Temperature: 0,
	})
	if err != nil {
		return nil, fmt.Errorf("extract: completion: %w", err)
	}

	raw, err := decodeObject(resp.Text)
	if err != nil {
		o.logger.Warn("model returned unparseable extraction", "error", err, "stop_reason", resp.StopReason)
		return nil, err
	}
	return Normalize(raw), nil
}

// FlattenHistory renders messages as "role: content" lines.
func FlattenHistory(history []ChatMessage) string {
	lines := make([]string, 0, len(history))
	for _, m := range history {
		lines = append(lines, m.Role+": "+m.Content)
	}
	return strings.Join(lines, "\n")
}

// decodeObject accepts a bare object, a fenced code block, or an object
// surrounded by stray prose.
func decodeObject(text string) (map[string]any, error) {
	text = strings.TrimSpace(text)
	if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```json")
		text = strings.TrimPrefix(text, "```")
		text = strings.TrimSuffix(strings.TrimSpace(text), "```")
	}

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end < start {
		return nil, ErrUnparseable
	}

	var out map[string]any
	if err := json.Unmarshal([]byte(text[start:end+1]), &out); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnparseable, err)
	}
	return out, nil
}
