package repository

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

type SQLiteDB struct {
	db *sql.DB
}

func NewSQLiteDB(path string) (*SQLiteDB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("error opening database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("error while pinging database: %w", err)
	}

	s := &SQLiteDB{
		db: db,
	}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("error while migrating to database: %w", err)
	}

	return s, nil
}

func (s *SQLiteDB) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS users (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			role TEXT NOT NULL,
			created_at DATETIME NOT NULL
		);

		CREATE TABLE IF NOT EXISTS patient_doctors (
			patient_id TEXT NOT NULL,
			doctor_id TEXT NOT NULL,
			PRIMARY KEY (patient_id, doctor_id),
			FOREIGN KEY (patient_id) REFERENCES users(id),
			FOREIGN KEY (doctor_id) REFERENCES users(id)
		);

		CREATE TABLE IF NOT EXISTS readings (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			data_type TEXT NOT NULL,
			value TEXT NOT NULL,
			unit TEXT,
			notes TEXT,
			created_at DATETIME NOT NULL,
			FOREIGN KEY (user_id) REFERENCES users(id)
		);

		CREATE TABLE IF NOT EXISTS alerts (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			category TEXT NOT NULL,
			message TEXT NOT NULL,
			severity TEXT NOT NULL,
			read INTEGER NOT NULL DEFAULT 0,
			created_at DATETIME NOT NULL,
			FOREIGN KEY (user_id) REFERENCES users(id)
		);

		CREATE INDEX IF NOT EXISTS idx_readings_user_id ON readings(user_id);
		CREATE INDEX IF NOT EXISTS idx_alerts_user_id ON alerts(user_id);
		CREATE INDEX IF NOT EXISTS idx_patient_doctors_patient ON patient_doctors(patient_id);
  	`

	_, err := s.db.Exec(schema)
	return err
}

// Ping probes store connectivity for the system_health heartbeat.
func (s *SQLiteDB) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *SQLiteDB) Close() error {
	return s.db.Close()
}
