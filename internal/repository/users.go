package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/medwatch/go-vitals-alerts/internal/models"
)

func (s *SQLiteDB) AddUser(ctx context.Context, u *models.User) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (id, name, role, created_at) VALUES (?, ?, ?, ?)`,
		u.ID, u.Name, string(u.Role), u.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("error inserting user: %w", err)
	}
	return nil
}

func (s *SQLiteDB) GetUser(ctx context.Context, id string) (*models.User, error) {
	var u models.User
	var role string
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, role, created_at FROM users WHERE id = ?`, id,
	).Scan(&u.ID, &u.Name, &role, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("error getting user: %w", err)
	}
	u.Role = models.Role(role)
	return &u, nil
}

func (s *SQLiteDB) AssignDoctor(ctx context.Context, patientID, doctorID string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO patient_doctors (patient_id, doctor_id) VALUES (?, ?)`,
		patientID, doctorID,
	)
	if err != nil {
		return fmt.Errorf("error assigning doctor: %w", err)
	}
	return nil
}

func (s *SQLiteDB) UnassignDoctor(ctx context.Context, patientID, doctorID string) error {
	_, err := s.db.ExecContext(ctx, `
		DELETE FROM patient_doctors WHERE patient_id = ? AND doctor_id = ?`,
		patientID, doctorID,
	)
	if err != nil {
		return fmt.Errorf("error unassigning doctor: %w", err)
	}
	return nil
}

func (s *SQLiteDB) FindAssignedDoctors(ctx context.Context, patientID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT doctor_id FROM patient_doctors WHERE patient_id = ?`, patientID,
	)
	if err != nil {
		return nil, fmt.Errorf("error finding assigned doctors: %w", err)
	}
	defer rows.Close()

	var doctors []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("error scanning doctor id: %w", err)
		}
		doctors = append(doctors, id)
	}
	return doctors, rows.Err()
}

func (s *SQLiteDB) FindRandomPatient(ctx context.Context) (string, error) {
	var id string
	err := s.db.QueryRowContext(ctx, `
		SELECT id FROM users WHERE role = ? ORDER BY RANDOM() LIMIT 1`,
		string(models.RolePatient),
	).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNoPatients
	}
	if err != nil {
		return "", fmt.Errorf("error finding random patient: %w", err)
	}
	return id, nil
}
