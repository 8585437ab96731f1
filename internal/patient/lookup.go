package patient

import (
	"context"
	"fmt"
	"strings"

	"github.com/hackgods/patient-intake-scheduling/pkg/logging"
)

// Match is a successful lookup.
type Match struct {
	Patient Patient
	Score   int
	IsNew   bool
}

type Lookup struct {
	repo   Repository
	cutoff int
	logger *logging.Logger
}

func NewLookup(repo Repository, logger *logging.Logger) *Lookup {
	if logger == nil {
		logger = logging.Default()
	}
	return &Lookup{repo: repo, cutoff: MatchThreshold, logger: logger}
}

// Find locates a patient by approximate full name and exact date of birth.
// The best name candidate must clear the threshold, then its date of birth
// must match exactly; anything else is ErrPatientNotFound.
func (l *Lookup) Find(ctx context.Context, fullName, dob string) (*Match, error) {
	patients, err := l.repo.ListPatients(ctx)
	if err != nil {
		return nil, fmt.Errorf("list patients: %w", err)
	}
	if len(patients) == 0 {
		return nil, ErrPatientNotFound
	}

	names := make([]string, len(patients))
	for i, p := range patients {
		names[i] = p.FullName()
	}

	idx, score, ok := BestMatch(fullName, names, l.cutoff)
	if !ok {
		l.logger.Info("no close patient name match", "score", score)
		return nil, ErrPatientNotFound
	}

	matched := names[idx]
	dob = strings.TrimSpace(dob)
	for _, p := range patients {
		if p.FullName() == matched && p.DateOfBirth == dob {
			l.logger.Info("patient found", "patient_id", p.ID, "score", score, "returning", p.Returning())
			return &Match{Patient: p, Score: score, IsNew: !p.Returning()}, nil
		}
	}

	l.logger.Info("patient name matched but date of birth did not", "score", score)
	return nil, ErrPatientNotFound
}
