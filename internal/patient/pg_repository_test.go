package patient

import (
	"context"
	"errors"
	"testing"

	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var patientCols = []string{"patient_id", "first_name", "last_name", "date_of_birth", "visit_history", "phone", "email"}

func TestPgRepository_ListPatients(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	phone := "+15550100"
	email := "john@example.com"
	mock.ExpectQuery("SELECT patient_id, first_name, last_name, date_of_birth, visit_history, phone, email\\s+FROM patients").
		WillReturnRows(pgxmock.NewRows(patientCols).
			AddRow("P-1", "John", "Smith", "1980-04-12", 2, &phone, &email).
			AddRow("P-2", "Ada", "Lovelace", "1990-12-10", 0, nil, nil))

	repo := NewPgRepository(mock)
	patients, err := repo.ListPatients(context.Background())
	require.NoError(t, err)

	require.Len(t, patients, 2)
	assert.Equal(t, "John Smith", patients[0].FullName())
	assert.True(t, patients[0].Returning())
	require.NotNil(t, patients[0].Email)
	assert.Equal(t, email, *patients[0].Email)
	assert.Nil(t, patients[1].Phone)
	assert.False(t, patients[1].Returning())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPgRepository_ListPatientsQueryError(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery("FROM patients").WillReturnError(errors.New("connection reset"))

	_, err = NewPgRepository(mock).ListPatients(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "query patients")
	assert.NoError(t, mock.ExpectationsWereMet())
}
