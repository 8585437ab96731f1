package extract

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubLLMClient struct {
	responses []LLMResponse
	err       error
	requests  []LLMRequest
}

func (s *stubLLMClient) Complete(ctx context.Context, req LLMRequest) (LLMResponse, error) {
	s.requests = append(s.requests, req)
	if s.err != nil {
		return LLMResponse{}, s.err
	}
	if len(s.responses) == 0 {
		return LLMResponse{}, errors.New("no scripted response")
	}
	resp := s.responses[0]
	s.responses = s.responses[1:]
	return resp, nil
}

func TestOracle_PatientInfo(t *testing.T) {
	client := &stubLLMClient{responses: []LLMResponse{{
		Text: `{"fullName": "Jane Doe", "dob": "1985-03-15", "preferred_doctor": "Dr. Smith", "preferredLocation": null}`,
	}}}
	oracle := NewOracle(client, "test-model", nil)

	history := []ChatMessage{
		{Role: ChatRoleAssistant, Content: "Hello! What is your name?"},
		{Role: ChatRoleUser, Content: "Jane Doe, born 15 March 1985, I'd like Dr. Smith"},
	}
	info, err := oracle.PatientInfo(context.Background(), history)
	require.NoError(t, err)

	assert.Equal(t, PatientInfo{FullName: "Jane Doe", DateOfBirth: "1985-03-15", PreferredDoctor: "Dr. Smith"}, info)

	require.Len(t, client.requests, 1)
	req := client.requests[0]
	assert.Equal(t, "test-model", req.Model)
	assert.Contains(t, req.Messages[0].Content, "assistant: Hello! What is your name?\nuser: Jane Doe")
}

func TestOracle_SlotSelection(t *testing.T) {
	tests := []struct {
		name string
		text string
		want Selection
	}{
		{name: "number", text: `{"slotNumber": 2, "selectedSlot": "Dr. Reed on Monday, October 19 at 11:00 AM"}`, want: Selection{Number: 2, Text: "Dr. Reed on Monday, October 19 at 11:00 AM"}},
		{name: "ambiguous", text: `{"slotNumber": null, "selectedSlot": "AMBIGUOUS"}`, want: Selection{}},
		{name: "fenced", text: "```json\n{\"slot_number\": \"1\"}\n```", want: Selection{Number: 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := &stubLLMClient{responses: []LLMResponse{{Text: tt.text}}}
			sel, err := NewOracle(client, "", nil).SlotSelection(context.Background(), []string{"a", "b"}, "option 2")
			require.NoError(t, err)
			assert.Equal(t, tt.want, sel)
			assert.True(t, strings.Contains(client.requests[0].Messages[0].Content, "1. a\n2. b"))
		})
	}
}

func TestOracle_Email(t *testing.T) {
	client := &stubLLMClient{responses: []LLMResponse{{Text: `Sure! {"email": "jane@example.com"}`}}}
	email, err := NewOracle(client, "", nil).Email(context.Background(), []ChatMessage{{Role: ChatRoleUser, Content: "jane@example.com"}})
	require.NoError(t, err)
	assert.Equal(t, "jane@example.com", email)
}

func TestOracle_Unparseable(t *testing.T) {
	client := &stubLLMClient{responses: []LLMResponse{{Text: "I could not find anything."}}}
	_, err := NewOracle(client, "", nil).PatientInfo(context.Background(), nil)
	assert.ErrorIs(t, err, ErrUnparseable)

	client = &stubLLMClient{responses: []LLMResponse{{Text: `{"fullName": "Jane"`}}}
	_, err = NewOracle(client, "", nil).PatientInfo(context.Background(), nil)
	assert.ErrorIs(t, err, ErrUnparseable)
}

func TestOracle_ClientErrorIsNotUnparseable(t *testing.T) {
	boom := errors.New("throttled")
	_, err := NewOracle(&stubLLMClient{err: boom}, "", nil).Email(context.Background(), nil)
	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, ErrUnparseable)
}
