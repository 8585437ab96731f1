package patient

import (
	"context"
	"errors"
	"testing"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hackgods/patient-intake-scheduling/pkg/logging"
)

type stubRepository struct {
	patients []Patient
	err      error
}

func (s *stubRepository) ListPatients(ctx context.Context) ([]Patient, error) {
	return s.patients, s.err
}

// roster builds a fake patient list that cannot collide with the fixtures below.
func roster(t *testing.T, n int) []Patient {
	t.Helper()
	faker := gofakeit.New(42)
	out := make([]Patient, 0, n)
	for i := 0; i < n; i++ {
		first := faker.FirstName()
		last := faker.LastName()
		if Score(first+" "+last, "John Smith") >= MatchThreshold {
			continue
		}
		out = append(out, Patient{
			ID:           faker.UUID(),
			FirstName:    first,
			LastName:     last,
			DateOfBirth:  faker.Date().Format("2006-01-02"),
			VisitHistory: faker.Number(0, 5),
		})
	}
	return out
}

func TestLookupFind_FuzzyNameExactDOB(t *testing.T) {
	john := Patient{ID: "P-10042", FirstName: "John", LastName: "Smith", DateOfBirth: "1980-04-12", VisitHistory: 3}
	repo := &stubRepository{patients: append(roster(t, 50), john)}
	lookup := NewLookup(repo, logging.Default())

	match, err := lookup.Find(context.Background(), "Jon Smith", "1980-04-12")
	require.NoError(t, err)

	assert.Equal(t, "P-10042", match.Patient.ID)
	assert.False(t, match.IsNew)
	assert.GreaterOrEqual(t, match.Score, MatchThreshold)
}

func TestLookupFind_DOBMismatchIsNotFound(t *testing.T) {
	john := Patient{ID: "P-10042", FirstName: "John", LastName: "Smith", DateOfBirth: "1980-04-12", VisitHistory: 3}
	lookup := NewLookup(&stubRepository{patients: []Patient{john}}, nil)

	_, err := lookup.Find(context.Background(), "John Smith", "1980-04-13")
	assert.ErrorIs(t, err, ErrPatientNotFound)
}

func TestLookupFind_NoVisitsIsNewPatient(t *testing.T) {
	p := Patient{ID: "P-20001", FirstName: "Ada", LastName: "Lovelace", DateOfBirth: "1990-12-10", VisitHistory: 0}
	lookup := NewLookup(&stubRepository{patients: []Patient{p}}, nil)

	match, err := lookup.Find(context.Background(), "ada lovelace", "1990-12-10")
	require.NoError(t, err)
	assert.True(t, match.IsNew)
}

func TestLookupFind_SharedNamePicksMatchingDOB(t *testing.T) {
	patients := []Patient{
		{ID: "P-1", FirstName: "John", LastName: "Smith", DateOfBirth: "1970-01-01", VisitHistory: 1},
		{ID: "P-2", FirstName: "John", LastName: "Smith", DateOfBirth: "1985-06-30", VisitHistory: 2},
	}
	lookup := NewLookup(&stubRepository{patients: patients}, nil)

	match, err := lookup.Find(context.Background(), "John Smith", "1985-06-30")
	require.NoError(t, err)
	assert.Equal(t, "P-2", match.Patient.ID)
}

func TestLookupFind_NoCandidates(t *testing.T) {
	lookup := NewLookup(&stubRepository{}, nil)

	_, err := lookup.Find(context.Background(), "John Smith", "1980-04-12")
	assert.ErrorIs(t, err, ErrPatientNotFound)

	lookup = NewLookup(&stubRepository{patients: roster(t, 20)}, nil)
	_, err = lookup.Find(context.Background(), "John Smith", "1980-04-12")
	assert.ErrorIs(t, err, ErrPatientNotFound)
}

func TestLookupFind_RepositoryError(t *testing.T) {
	boom := errors.New("connection reset")
	lookup := NewLookup(&stubRepository{err: boom}, nil)

	_, err := lookup.Find(context.Background(), "John Smith", "1980-04-12")
	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, ErrPatientNotFound)
}
