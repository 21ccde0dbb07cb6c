package repository

import (
	"context"
	"fmt"

	"github.com/medwatch/go-vitals-alerts/internal/models"
)

func (s *SQLiteDB) AddReading(ctx context.Context, r *models.Reading) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO readings (id, user_id, data_type, value, unit, notes, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.UserID, string(r.DataType), r.Value, r.Unit, r.Notes, r.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("error inserting reading: %w", err)
	}
	return nil
}

func (s *SQLiteDB) ListReadings(ctx context.Context, opts ReadingFilter) ([]models.Reading, error) {
	query := `SELECT id, user_id, data_type, value, unit, notes, created_at FROM readings`
	args := []any{}

	if opts.UserID != "" {
		query += ` WHERE user_id = ?`
		args = append(args, opts.UserID)
	}
	query += ` ORDER BY created_at DESC`
	if opts.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, opts.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error listing readings: %w", err)
	}
	defer rows.Close()

	var readings []models.Reading
	for rows.Next() {
		var r models.Reading
		var kind string
		if err := rows.Scan(&r.ID, &r.UserID, &kind, &r.Value, &r.Unit, &r.Notes, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("error scanning reading: %w", err)
		}
		r.DataType = models.VitalKind(kind)
		readings = append(readings, r)
	}
	return readings, rows.Err()
}
