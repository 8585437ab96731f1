package notify

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSender struct {
	sent []EmailMessage
	err  error
}

func (r *recordingSender) Send(ctx context.Context, msg EmailMessage) error {
	if r.err != nil {
		return r.err
	}
	r.sent = append(r.sent, msg)
	return nil
}

func writeForm(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "New Patient Intake Form.pdf")
	require.NoError(t, os.WriteFile(path, []byte("%PDF-1.4 intake"), 0o600))
	return path
}

func TestIntakeForms_Send(t *testing.T) {
	sender := &recordingSender{}
	forms := NewIntakeForms(sender, writeForm(t), nil)

	ok := forms.Send(context.Background(), "jane@example.com", "Jane Doe")
	require.True(t, ok)

	require.Len(t, sender.sent, 1)
	msg := sender.sent[0]
	assert.Equal(t, "jane@example.com", msg.To)
	assert.Equal(t, intakeFormSubject, msg.Subject)
	assert.Contains(t, msg.Body, "Dear Jane Doe")
	require.Len(t, msg.Attachments, 1)
	assert.Equal(t, "New Patient Intake Form.pdf", msg.Attachments[0].Filename)
	assert.Equal(t, "application/pdf", msg.Attachments[0].ContentType)
	assert.Equal(t, []byte("%PDF-1.4 intake"), msg.Attachments[0].Content)
}

func TestIntakeForms_SendFailuresReturnFalse(t *testing.T) {
	forms := NewIntakeForms(&recordingSender{err: errors.New("smtp down")}, writeForm(t), nil)
	assert.False(t, forms.Send(context.Background(), "jane@example.com", "Jane Doe"))

	sender := &recordingSender{}
	forms = NewIntakeForms(sender, filepath.Join(t.TempDir(), "missing.pdf"), nil)
	assert.False(t, forms.Send(context.Background(), "jane@example.com", "Jane Doe"))
	assert.Empty(t, sender.sent)
}

func TestBuildSendGridMessage_Attachments(t *testing.T) {
	msg := buildSendGridMessage(nil, EmailMessage{
		To:      "jane@example.com",
		Subject: "hello",
		Body:    "body",
		Attachments: []Attachment{{
			Filename:    "form.pdf",
			ContentType: "application/pdf",
			Content:     []byte("abc"),
		}},
	})

	require.Len(t, msg.Attachments, 1)
	assert.Equal(t, "YWJj", msg.Attachments[0].Content)
	assert.Equal(t, "attachment", msg.Attachments[0].Disposition)
}

func TestNewSendGridSender_RequiresKey(t *testing.T) {
	assert.Nil(t, NewSendGridSender(SendGridConfig{}, nil))

	var s *SendGridSender
	assert.Error(t, s.Send(context.Background(), EmailMessage{}))
}

func TestStubEmailSender(t *testing.T) {
	assert.NoError(t, NewStubEmailSender(nil).Send(context.Background(), EmailMessage{To: "a@b.co"}))
}
