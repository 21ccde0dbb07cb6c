package models

import "time"

type AlertSeverity string

const (
	AlertSeverityMedium   AlertSeverity = "Medium"
	AlertSeverityCritical AlertSeverity = "Critical"
)

const (
	AlertCategoryHealthRisk  = "Health Risk"  // automatic, from classified readings
	AlertCategoryHealthAlert = "Health Alert" // synthetic telemetry breaches
)

type Alert struct {
	ID        string        `json:"id"`
	UserID    string        `json:"user_id"`
	Category  string        `json:"type"`
	Message   string        `json:"message"`
	Severity  AlertSeverity `json:"severity"`
	Read      bool          `json:"read"`
	CreatedAt time.Time     `json:"created_at"`
}
