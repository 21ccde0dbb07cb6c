package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/medwatch/go-vitals-alerts/internal/models"
)

func (s *SQLiteDB) AddAlert(ctx context.Context, a *models.Alert) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO alerts (id, user_id, category, message, severity, read, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.UserID, a.Category, a.Message, string(a.Severity), a.Read, a.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("error inserting alert: %w", err)
	}
	return nil
}

func (s *SQLiteDB) GetAlertByID(ctx context.Context, id string) (*models.Alert, error) {
	var a models.Alert
	var severity string
	err := s.db.QueryRowContext(ctx, `
		SELECT id, user_id, category, message, severity, read, created_at
		FROM alerts WHERE id = ?`, id,
	).Scan(&a.ID, &a.UserID, &a.Category, &a.Message, &severity, &a.Read, &a.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("error getting alert: %w", err)
	}
	a.Severity = models.AlertSeverity(severity)
	return &a, nil
}

func (s *SQLiteDB) ListAlerts(ctx context.Context, opts AlertFilter) ([]models.Alert, error) {
	query := `SELECT id, user_id, category, message, severity, read, created_at FROM alerts WHERE 1=1`
	args := []any{}

	if opts.UserID != "" {
		query += ` AND user_id = ?`
		args = append(args, opts.UserID)
	}
	if opts.UnreadOnly {
		query += ` AND read = 0`
	}
	query += ` ORDER BY created_at DESC`
	if opts.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, opts.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error listing alerts: %w", err)
	}
	defer rows.Close()

	var alerts []models.Alert
	for rows.Next() {
		var a models.Alert
		var severity string
		if err := rows.Scan(&a.ID, &a.UserID, &a.Category, &a.Message, &severity, &a.Read, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("error scanning alert: %w", err)
		}
		a.Severity = models.AlertSeverity(severity)
		alerts = append(alerts, a)
	}
	return alerts, rows.Err()
}

// MarkAlertRead flips the read flag. The UPDATE matches the row whether or
// not the flag is already set, so repeated calls succeed; zero affected rows
// means the id is unknown.
func (s *SQLiteDB) MarkAlertRead(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `UPDATE alerts SET read = 1 WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("error marking alert read: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("error reading affected rows: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
