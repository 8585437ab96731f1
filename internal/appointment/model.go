package appointment

import "time"

type Status string

const (
	StatusConfirmed Status = "Confirmed"
)

const (
	dateLayout = "2006-01-02"
	timeLayout = "15:04"
)

// Appointment is one row of the booking log. Rows are appended, never updated.
type Appointment struct {
	ID           string
	PatientID    string
	DoctorName   string
	Location     string
	Start        time.Time
	IsNewPatient bool
	Status       Status
	CreatedAt    time.Time
}

// Date is the clinic-local appointment date (YYYY-MM-DD).
func (a Appointment) Date() string {
	return a.Start.Format(dateLayout)
}

// Time is the clinic-local start time (HH:MM).
func (a Appointment) Time() string {
	return a.Start.Format(timeLayout)
}

type EventLog struct {
	ID            int64
	EventType     string
	AppointmentID *string
	Payload       []byte
	CreatedAt     time.Time
}

// ReportRow is an appointment joined with whatever contact details the
// patient store holds. Patients booked through the new-patient path have none.
type ReportRow struct {
	AppointmentID string
	PatientID     string
	FirstName     *string
	LastName      *string
	Date          string
	Time          string
	DoctorName    string
	Status        Status
	IsNewPatient  bool
	Phone         *string
	Email         *string
}
