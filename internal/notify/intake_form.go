package notify

import (
	"context"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/hackgods/patient-intake-scheduling/pkg/logging"
)

const intakeFormSubject = "Your Upcoming Appointment & Patient Intake Form"

// IntakeForms emails the new-patient intake form. Delivery is fire and
// forget: failures are logged and reported as false, never retried.
type IntakeForms struct {
	sender   EmailSender
	formPath string
	readFile func(string) ([]byte, error)
	logger   *logging.Logger
}

func NewIntakeForms(sender EmailSender, formPath string, logger *logging.Logger) *IntakeForms {
	if logger == nil {
		logger = logging.Default()
	}
	return &IntakeForms{
		sender:   sender,
		formPath: formPath,
		readFile: os.ReadFile,
		logger:   logger,
	}
}

func (f *IntakeForms) Send(ctx context.Context, to, patientName string) bool {
	content, err := f.readFile(f.formPath)
	if err != nil {
		f.logger.Error("intake form unreadable", "path", f.formPath, "error", err)
		return false
	}

	filename := filepath.Base(f.formPath)
	contentType := mime.TypeByExtension(strings.ToLower(filepath.Ext(filename)))
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	err = f.sender.Send(ctx, EmailMessage{
		To:      to,
		ToName:  patientName,
		Subject: intakeFormSubject,
		Body:    fmt.Sprintf("Dear %s,\n\nPlease find your patient intake form attached.\n\nBest regards,\nClinic Staff", patientName),
		Attachments: []Attachment{{
			Filename:    filename,
			ContentType: contentType,
			Content:     content,
		}},
	})
	if err != nil {
		f.logger.Error("intake form email failed", "to", to, "error", err)
		return false
	}
	return true
}
