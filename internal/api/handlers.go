package api

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/hackgods/patient-intake-scheduling/internal/appointment"
	"github.com/hackgods/patient-intake-scheduling/internal/intake"
	"github.com/hackgods/patient-intake-scheduling/pkg/logging"
)

// ConversationService is the part of intake.Runner the API needs.
type ConversationService interface {
	Start(ctx context.Context, text string) (*intake.State, error)
	Converse(ctx context.Context, conversationID, text string) (*intake.State, error)
	Get(ctx context.Context, conversationID string) (*intake.State, error)
}

type ReportService interface {
	Report(ctx context.Context) ([]appointment.ReportRow, error)
}

var reportHeader = []string{
	"appointment_id", "patient_id", "first_name", "last_name",
	"appointment_date", "appointment_time", "doctor_name", "status",
	"is_new_patient", "phone", "email",
}

func startConversationHandler(svc ConversationService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req MessageRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}

		st, err := svc.Start(r.Context(), req.Message)
		if err != nil {
			handleConversationError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, newConversationResponse(st))
	}
}

func postMessageHandler(svc ConversationService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		var req MessageRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}

		st, err := svc.Converse(r.Context(), id, req.Message)
		if err != nil {
			handleConversationError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, newConversationResponse(st))
	}
}

func getConversationHandler(svc ConversationService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		st, err := svc.Get(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			handleConversationError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, newConversationResponse(st))
	}
}

func reportHandler(svc ReportService, logger *logging.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rows, err := svc.Report(r.Context())
		if err != nil {
			logger.Error("appointment report failed", "error", err, "request_id", GetRequestID(r.Context()))
			writeError(w, http.StatusInternalServerError, "internal_error", "could not build report")
			return
		}

		filename := "appointments_" + time.Now().Format("20060102") + ".csv"
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
		w.WriteHeader(http.StatusOK)

		cw := csv.NewWriter(w)
		_ = cw.Write(reportHeader)
		for _, row := range rows {
			_ = cw.Write([]string{
				row.AppointmentID,
				row.PatientID,
				deref(row.FirstName),
				deref(row.LastName),
				row.Date,
				row.Time,
				row.DoctorName,
				string(row.Status),
				strconv.FormatBool(row.IsNewPatient),
				deref(row.Phone),
				deref(row.Email),
			})
		}
		cw.Flush()
		if err := cw.Error(); err != nil {
			logger.Warn("write appointment report", "error", err)
		}
	}
}

func handleConversationError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, intake.ErrEmptyMessage):
		writeError(w, http.StatusBadRequest, "empty_message", err.Error())
	case errors.Is(err, intake.ErrConversationNotFound):
		writeError(w, http.StatusNotFound, "conversation_not_found", err.Error())
	case errors.Is(err, intake.ErrConversationBusy):
		writeError(w, http.StatusConflict, "conversation_busy", err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		writeError(w, http.StatusGatewayTimeout, "turn_timeout", "the assistant took too long to answer, please retry")
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", "could not process message")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, details string) {
	writeJSON(w, status, ErrorResponse{Error: code, Details: details})
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
