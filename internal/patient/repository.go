package patient

import (
	"context"
	"errors"
)

var (
	ErrPatientNotFound = errors.New("patient not found")
)

// Repository is the read-only patient store.
type Repository interface {
	ListPatients(ctx context.Context) ([]Patient, error)
}
