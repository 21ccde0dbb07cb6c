package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/medwatch/go-vitals-alerts/internal/broadcast"
	"github.com/medwatch/go-vitals-alerts/internal/classifier"
	"github.com/medwatch/go-vitals-alerts/internal/models"
	"github.com/medwatch/go-vitals-alerts/internal/repository"
)

const (
	EventHealthUpdate = "healthUpdate"
	EventHealthAlert  = "healthAlert"
)

// Store is the slice of the persistence collaborator the pipeline consumes.
type Store interface {
	repository.ReadingRepository
	repository.AlertRepository
	GetUser(ctx context.Context, id string) (*models.User, error)
	FindAssignedDoctors(ctx context.Context, patientID string) ([]string, error)
	FindRandomPatient(ctx context.Context) (string, error)
}

// Pipeline classifies readings, durably records resulting alerts, and fans
// them out to the patient and every doctor currently assigned to them.
// Persistence always completes before broadcast, so every delivered alert
// carries the identity it was stored under.
type Pipeline struct {
	store Store
	b     *broadcast.Broadcaster
}

func New(store Store, b *broadcast.Broadcaster) *Pipeline {
	return &Pipeline{store: store, b: b}
}

type HealthUpdatePayload struct {
	UserID  string          `json:"user_id"`
	Reading *models.Reading `json:"reading"`
	Status  string          `json:"status"`
}

type HealthAlertPayload struct {
	UserID string        `json:"user_id"`
	Alert  *models.Alert `json:"alert"`
}

// IngestReading runs the full pipeline for one human-submitted reading:
// persist, classify, broadcast a live update, and raise an alert when the
// reading classifies Abnormal or worse.
func (p *Pipeline) IngestReading(ctx context.Context, userID string, kind models.VitalKind, value, unit, notes string) (*models.Reading, models.Severity, error) {
	user, err := p.store.GetUser(ctx, userID)
	if err != nil {
		return nil, models.SeverityNormal, fmt.Errorf("resolving subject %s: %w", userID, err)
	}

	reading := &models.Reading{
		ID:        uuid.NewString(),
		UserID:    userID,
		DataType:  kind,
		Value:     value,
		Unit:      unit,
		Notes:     notes,
		CreatedAt: time.Now(),
	}
	if err := p.store.AddReading(ctx, reading); err != nil {
		return nil, models.SeverityNormal, fmt.Errorf("persisting reading: %w", err)
	}

	severity := classifier.Classify(kind, value)

	// Recipients are resolved per alert, never cached, so care-team changes
	// take effect on the very next alert.
	recipients := p.recipients(ctx, userID)

	p.b.Deliver(recipients, EventHealthUpdate, &HealthUpdatePayload{
		UserID:  userID,
		Reading: reading,
		Status:  severity.String(),
	})

	if severity >= models.SeverityAbnormal {
		alert := &models.Alert{
			ID:        uuid.NewString(),
			UserID:    userID,
			Category:  models.AlertCategoryHealthRisk,
			Message:   fmt.Sprintf("%s's %s reading of %s %s requires attention", user.Name, kind, value, unit),
			Severity:  alertSeverity(severity),
			CreatedAt: time.Now(),
		}
		if err := p.store.AddAlert(ctx, alert); err != nil {
			return reading, severity, fmt.Errorf("persisting alert: %w", err)
		}
		p.b.Deliver(recipients, EventHealthAlert, &HealthAlertPayload{UserID: userID, Alert: alert})
		slog.Info("health risk alert raised", "alert_id", alert.ID, "user_id", userID, "kind", kind, "severity", severity.String())
	}

	return reading, severity, nil
}

// IngestSyntheticVitals emits one generator sample as a live update to every
// connected subject, whatever the sample's severity.
func (p *Pipeline) IngestSyntheticVitals(v models.SyntheticVitals) {
	p.b.DeliverAll(EventHealthUpdate, v)
}

// IngestSyntheticAlert assigns a generator breach to a patient picked
// uniformly at random and runs the usual persist-then-broadcast sequence.
func (p *Pipeline) IngestSyntheticAlert(ctx context.Context, message string) (*models.Alert, error) {
	userID, err := p.store.FindRandomPatient(ctx)
	if err != nil {
		return nil, fmt.Errorf("selecting subject for synthetic alert: %w", err)
	}

	alert := &models.Alert{
		ID:        uuid.NewString(),
		UserID:    userID,
		Category:  models.AlertCategoryHealthAlert,
		Message:   message,
		Severity:  syntheticSeverity(message),
		CreatedAt: time.Now(),
	}
	if err := p.store.AddAlert(ctx, alert); err != nil {
		return nil, fmt.Errorf("persisting synthetic alert: %w", err)
	}

	p.b.Deliver(p.recipients(ctx, userID), EventHealthAlert, &HealthAlertPayload{UserID: userID, Alert: alert})
	return alert, nil
}

// CreateManualAlert records an operator-raised alert, bypassing
// classification. Unknown subjects fail with repository.ErrNotFound.
func (p *Pipeline) CreateManualAlert(ctx context.Context, userID, category, message string, severity models.AlertSeverity, actor string) (*models.Alert, error) {
	if _, err := p.store.GetUser(ctx, userID); err != nil {
		return nil, fmt.Errorf("resolving subject %s: %w", userID, err)
	}

	alert := &models.Alert{
		ID:        uuid.NewString(),
		UserID:    userID,
		Category:  category,
		Message:   message,
		Severity:  severity,
		CreatedAt: time.Now(),
	}
	if err := p.store.AddAlert(ctx, alert); err != nil {
		return nil, fmt.Errorf("persisting manual alert: %w", err)
	}

	p.b.Deliver(p.recipients(ctx, userID), EventHealthAlert, &HealthAlertPayload{UserID: userID, Alert: alert})
	slog.Info("manual alert created", "alert_id", alert.ID, "user_id", userID, "actor", actor)
	return alert, nil
}

// MarkRead flips an alert's read flag. Idempotent for known ids.
func (p *Pipeline) MarkRead(ctx context.Context, alertID string) error {
	return p.store.MarkAlertRead(ctx, alertID)
}

// recipients is {subject} plus the doctors assigned to them right now. A
// lookup failure degrades to patient-only delivery rather than dropping the
// alert.
func (p *Pipeline) recipients(ctx context.Context, userID string) []string {
	doctors, err := p.store.FindAssignedDoctors(ctx, userID)
	if err != nil {
		slog.Error("assigned-doctor lookup failed", "user_id", userID, "error", err)
		return []string{userID}
	}
	return append([]string{userID}, doctors...)
}

func alertSeverity(s models.Severity) models.AlertSeverity {
	if s == models.SeverityCritical {
		return models.AlertSeverityCritical
	}
	return models.AlertSeverityMedium
}

// syntheticSeverity grades a breach by its message text: messages flagging a
// High or Low extreme are Critical, anything else Medium.
func syntheticSeverity(message string) models.AlertSeverity {
	if strings.Contains(message, "High") || strings.Contains(message, "Low") {
		return models.AlertSeverityCritical
	}
	return models.AlertSeverityMedium
}
