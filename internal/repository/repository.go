package repository

import (
	"context"
	"errors"

	"github.com/medwatch/go-vitals-alerts/internal/models"
)

var (
	ErrNotFound   = errors.New("record not found")
	ErrNoPatients = errors.New("no patients exist")
)

type ReadingFilter struct {
	UserID string
	Limit  int
}

type AlertFilter struct {
	UserID     string
	UnreadOnly bool
	Limit      int
}

type ReadingRepository interface {
	AddReading(ctx context.Context, r *models.Reading) error
	ListReadings(ctx context.Context, opts ReadingFilter) ([]models.Reading, error)
}

type AlertRepository interface {
	AddAlert(ctx context.Context, a *models.Alert) error
	GetAlertByID(ctx context.Context, id string) (*models.Alert, error)
	ListAlerts(ctx context.Context, opts AlertFilter) ([]models.Alert, error)
	// MarkAlertRead returns ErrNotFound for unknown ids and is idempotent
	// for known ones.
	MarkAlertRead(ctx context.Context, id string) error
}

type UserRepository interface {
	AddUser(ctx context.Context, u *models.User) error
	GetUser(ctx context.Context, id string) (*models.User, error)
	AssignDoctor(ctx context.Context, patientID, doctorID string) error
	UnassignDoctor(ctx context.Context, patientID, doctorID string) error
	// FindAssignedDoctors is re-queried at the moment of each alert; callers
	// must not cache the result across alerts.
	FindAssignedDoctors(ctx context.Context, patientID string) ([]string, error)
	FindRandomPatient(ctx context.Context) (string, error)
}
